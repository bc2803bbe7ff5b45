package math

/**
 * @brief Creates an identity quaternion.
 */
func NewQuatIdentity() Quaternion {
	return Quaternion{0, 0, 0, 1.0}
}

/**
 * @brief Creates a quaternion from the given axis and angle.
 *
 * @param axis The axis of rotation.
 * @param angle The angle of rotation in radians.
 * @param normalize Indicates if the quaternion should be normalized.
 */
func NewQuatFromAxisAngle(axis Vec3, angle float32, normalize bool) Quaternion {
	a := axis.Normalize()
	half := 0.5 * angle
	s := ksin(half)
	c := kcos(half)
	q := Quaternion{s * a.X, s * a.Y, s * a.Z, c}
	if normalize {
		return q.Normalize()
	}
	return q
}

/**
 * @brief Returns the normal of the provided quaternion.
 */
func (q Quaternion) Normal() float32 {
	return ksqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

/**
 * @brief Returns a normalized copy of the provided quaternion.
 */
func (q Quaternion) Normalize() Quaternion {
	n := q.Normal()
	return Quaternion{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

/**
 * @brief Returns the conjugate of the provided quaternion. That is,
 * The x, y and z elements are negated, but the w element is untouched.
 */
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, q.W}
}

/**
 * @brief Returns an inverse copy of the provided quaternion.
 */
func (q Quaternion) Inverse() Quaternion {
	return q.Conjugate().Normalize()
}

/**
 * @brief Hamilton product q * other.
 */
func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

/**
 * @brief Calculates the dot product of the provided quaternions.
 */
func (q Quaternion) Dot(other Quaternion) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

/**
 * @brief Creates a rotation matrix from the given quaternion, laid out for
 * row vectors like every other builder in this package.
 */
func (q Quaternion) ToMat4() Mat4 {
	n := q.Normalize()
	x, y, z, w := n.X, n.Y, n.Z, n.W

	out := NewMat4Identity()
	out.Data[0] = 1.0 - 2.0*(y*y+z*z)
	out.Data[1] = 2.0 * (x*y + z*w)
	out.Data[2] = 2.0 * (x*z - y*w)

	out.Data[4] = 2.0 * (x*y - z*w)
	out.Data[5] = 1.0 - 2.0*(x*x+z*z)
	out.Data[6] = 2.0 * (y*z + x*w)

	out.Data[8] = 2.0 * (x*z + y*w)
	out.Data[9] = 2.0 * (y*z - x*w)
	out.Data[10] = 1.0 - 2.0*(x*x+y*y)
	return out
}

/**
 * @brief Calculates spherical linear interpolation of a given percentage
 * between two quaternions.
 *
 * @param other The second quaternion.
 * @param percentage The percentage of interpolation, typically a value from 0.0f-1.0f.
 */
func (q Quaternion) Slerp(other Quaternion, percentage float32) Quaternion {
	// Source: https://en.Wikipedia.org/wiki/Slerp
	v0 := q.Normalize()
	v1 := other.Normalize()

	dot := v0.Dot(v1)

	// v1 and -v1 are the same rotation; take the shorter arc.
	if dot < 0.0 {
		v1 = Quaternion{-v1.X, -v1.Y, -v1.Z, -v1.W}
		dot = -dot
	}

	const dotThreshold float32 = 0.9995
	if dot > dotThreshold {
		qt := Quaternion{
			v0.X + ((v1.X - v0.X) * percentage),
			v0.Y + ((v1.Y - v0.Y) * percentage),
			v0.Z + ((v1.Z - v0.Z) * percentage),
			v0.W + ((v1.W - v0.W) * percentage)}
		return qt.Normalize()
	}

	theta0 := kacos(dot)
	theta := theta0 * percentage
	sinTheta := ksin(theta)
	sinTheta0 := ksin(theta0)

	s0 := kcos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quaternion{
		(v0.X * s0) + (v1.X * s1),
		(v0.Y * s0) + (v1.Y * s1),
		(v0.Z * s0) + (v1.Z * s1),
		(v0.W * s0) + (v1.W * s1)}
}

// NewQuatFromEuler composes rotations about x, then y, then z (radians).
func NewQuatFromEuler(xRadians, yRadians, zRadians float32) Quaternion {
	qx := NewQuatFromAxisAngle(NewVec3(1, 0, 0), xRadians, false)
	qy := NewQuatFromAxisAngle(NewVec3(0, 1, 0), yRadians, false)
	qz := NewQuatFromAxisAngle(NewVec3(0, 0, 1), zRadians, false)
	// Row-vector matrices of a*b apply b first, so z*y*x applies x first.
	return qz.Mul(qy).Mul(qx).Normalize()
}
