package math

/**
 * All builders start from a zeroed matrix and fill only the entries they need.
 * Convention: row vectors multiply on the left (v' = v * M), so a product
 * a.Mul(b) applies a first and b second, and translation sits in the last row.
 */

/**
 * @brief Creates and returns an identity matrix:
 *
 * {
 *   {1, 0, 0, 0},
 *   {0, 1, 0, 0},
 *   {0, 0, 1, 0},
 *   {0, 0, 0, 1}
 * }
 */
func NewMat4Identity() Mat4 {
	var out Mat4
	out.Data[0] = 1.0
	out.Data[5] = 1.0
	out.Data[10] = 1.0
	out.Data[15] = 1.0
	return out
}

// NewMat4FromRows builds a matrix from four row vectors.
func NewMat4FromRows(rows [4]Vec4) Mat4 {
	var out Mat4
	for r, row := range rows {
		out.Data[r*4+0] = row.X
		out.Data[r*4+1] = row.Y
		out.Data[r*4+2] = row.Z
		out.Data[r*4+3] = row.W
	}
	return out
}

// Rows returns the matrix as four row vectors.
func (mt Mat4) Rows() [4]Vec4 {
	var rows [4]Vec4
	for r := 0; r < 4; r++ {
		rows[r] = Vec4{mt.Data[r*4+0], mt.Data[r*4+1], mt.Data[r*4+2], mt.Data[r*4+3]}
	}
	return rows
}

/**
 * @brief Returns the result of multiplying mt and other: mt is applied first.
 */
func (mt Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.Data[r*4+c] = mt.Data[r*4+0]*other.Data[0*4+c] +
				mt.Data[r*4+1]*other.Data[1*4+c] +
				mt.Data[r*4+2]*other.Data[2*4+c] +
				mt.Data[r*4+3]*other.Data[3*4+c]
		}
	}
	return out
}

// Mat4Chain multiplies the matrices left to right. An empty chain is the identity.
func Mat4Chain(ms ...Mat4) Mat4 {
	out := NewMat4Identity()
	for _, m := range ms {
		out = out.Mul(m)
	}
	return out
}

/**
 * @brief Multiplies the row vector v by mt. The result is not divided by w.
 */
func (mt Mat4) MulVec4(v Vec4) Vec4 {
	d := &mt.Data
	return Vec4{
		X: v.X*d[0] + v.Y*d[4] + v.Z*d[8] + v.W*d[12],
		Y: v.X*d[1] + v.Y*d[5] + v.Z*d[9] + v.W*d[13],
		Z: v.X*d[2] + v.Y*d[6] + v.Z*d[10] + v.W*d[14],
		W: v.X*d[3] + v.Y*d[7] + v.Z*d[11] + v.W*d[15],
	}
}

/**
 * @brief Creates and returns a perspective projection matrix for a view space
 * looking toward +z. After multiplying and dividing by w, x and y of visible
 * points land in [-1, 1] and z grows with distance.
 *
 * @param fovDegrees The full vertical field of view in degrees.
 * @param aspectRatio Viewport width divided by height.
 * @param near The near clipping plane distance, > 0.
 * @param far The far clipping plane distance, > near.
 */
func NewMat4Projection(fovDegrees, aspectRatio, near, far float32) Mat4 {
	f := 1.0 / ktan(DegToRad(fovDegrees)*0.5)
	var out Mat4
	out.Data[0] = f / aspectRatio
	out.Data[5] = f
	out.Data[10] = far / (far - near)
	out.Data[11] = 1.0
	out.Data[14] = (-far * near) / (far - near)
	return out
}

// NewMat4Orthographic maps the box [left,right] x [bottom,top] x [near,far]
// onto [-1,1] in x and y and [0,1] in z.
func NewMat4Orthographic(left, right, bottom, top, near, far float32) Mat4 {
	out := NewMat4Identity()
	out.Data[0] = 2 / (right - left)
	out.Data[5] = 2 / (top - bottom)
	out.Data[10] = 1 / (far - near)
	out.Data[12] = -(right + left) / (right - left)
	out.Data[13] = -(top + bottom) / (top - bottom)
	out.Data[14] = -near / (far - near)
	return out
}

/**
 * @brief Builds the placement matrix of an object at pos facing target.
 * The rows are right, up, forward and the translation. up is re-orthogonalised
 * against forward. When invertForward is set the forward axis points away from
 * target instead.
 */
func NewMat4PointAt(pos, target, up Vec3, invertForward bool) Mat4 {
	forward := target.Sub(pos).Normalize()
	if invertForward {
		forward = forward.MulScalar(-1)
	}
	a := forward.MulScalar(up.Dot(forward))
	newUp := up.Sub(a).Normalize()
	right := newUp.Cross(forward)

	return NewMat4FromRows([4]Vec4{
		right.ToVec4(0),
		newUp.ToVec4(0),
		forward.ToVec4(0),
		pos.ToVec4(1),
	})
}

/**
 * @brief Returns a transposed copy of the provided matrix (rows->colums).
 * Used when a consumer wants column-major memory.
 */
func (mt Mat4) Transposed() Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.Data[c*4+r] = mt.Data[r*4+c]
		}
	}
	return out
}

/**
 * @brief Inverts a rigid transform (rotation + translation only) by
 * transposing the rotation block and rotating the negated translation.
 * The result is meaningless for matrices holding scale or projection.
 */
func (mt Mat4) QuickInverse() Mat4 {
	d := &mt.Data
	var out Mat4
	out.Data[0], out.Data[1], out.Data[2] = d[0], d[4], d[8]
	out.Data[4], out.Data[5], out.Data[6] = d[1], d[5], d[9]
	out.Data[8], out.Data[9], out.Data[10] = d[2], d[6], d[10]
	out.Data[12] = -(d[12]*out.Data[0] + d[13]*out.Data[4] + d[14]*out.Data[8])
	out.Data[13] = -(d[12]*out.Data[1] + d[13]*out.Data[5] + d[14]*out.Data[9])
	out.Data[14] = -(d[12]*out.Data[2] + d[13]*out.Data[6] + d[14]*out.Data[10])
	out.Data[15] = 1.0
	return out
}

/**
 * @brief Inverts any invertible matrix with Gauss-Jordan elimination and
 * partial pivoting. Returns ErrSingularMatrix when a pivot is exactly zero.
 */
func (mt Mat4) Inverse() (Mat4, error) {
	a := mt.Data
	inv := NewMat4Identity().Data

	for col := 0; col < 4; col++ {
		pivot := col
		for r := col + 1; r < 4; r++ {
			if kabs(a[r*4+col]) > kabs(a[pivot*4+col]) {
				pivot = r
			}
		}
		if a[pivot*4+col] == 0 {
			return Mat4{}, ErrSingularMatrix
		}
		if pivot != col {
			for c := 0; c < 4; c++ {
				a[col*4+c], a[pivot*4+c] = a[pivot*4+c], a[col*4+c]
				inv[col*4+c], inv[pivot*4+c] = inv[pivot*4+c], inv[col*4+c]
			}
		}

		p := a[col*4+col]
		for c := 0; c < 4; c++ {
			a[col*4+c] /= p
			inv[col*4+c] /= p
		}

		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			f := a[r*4+col]
			if f == 0 {
				continue
			}
			for c := 0; c < 4; c++ {
				a[r*4+c] -= f * a[col*4+c]
				inv[r*4+c] -= f * inv[col*4+c]
			}
		}
	}
	return Mat4{Data: inv}, nil
}

/**
 * @brief Creates and returns a translation matrix from the given position.
 */
func NewMat4Translation(position Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[12] = position.X
	out.Data[13] = position.Y
	out.Data[14] = position.Z
	return out
}

/**
 * @brief Returns a scale matrix using the provided scale.
 */
func NewMat4Scale(scale Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[0] = scale.X
	out.Data[5] = scale.Y
	out.Data[10] = scale.Z
	return out
}

/**
 * @brief Rotation about the x axis, right-handed (y turns toward z).
 */
func NewMat4RotationX(angleRadians float32) Mat4 {
	c := kcos(angleRadians)
	s := ksin(angleRadians)
	var out Mat4
	out.Data[0] = 1.0
	out.Data[5] = c
	out.Data[6] = s
	out.Data[9] = -s
	out.Data[10] = c
	out.Data[15] = 1.0
	return out
}

/**
 * @brief Rotation about the y axis, right-handed (z turns toward x).
 */
func NewMat4RotationY(angleRadians float32) Mat4 {
	c := kcos(angleRadians)
	s := ksin(angleRadians)
	var out Mat4
	out.Data[0] = c
	out.Data[2] = -s
	out.Data[5] = 1.0
	out.Data[8] = s
	out.Data[10] = c
	out.Data[15] = 1.0
	return out
}

/**
 * @brief Rotation about the z axis, right-handed (x turns toward y).
 */
func NewMat4RotationZ(angleRadians float32) Mat4 {
	c := kcos(angleRadians)
	s := ksin(angleRadians)
	var out Mat4
	out.Data[0] = c
	out.Data[1] = s
	out.Data[4] = -s
	out.Data[5] = c
	out.Data[10] = 1.0
	out.Data[15] = 1.0
	return out
}

// NewMat4RotationXYZ applies x, then y, then z.
func NewMat4RotationXYZ(xRadians, yRadians, zRadians float32) Mat4 {
	return Mat4Chain(NewMat4RotationX(xRadians), NewMat4RotationY(yRadians), NewMat4RotationZ(zRadians))
}

/**
 * @brief Rodrigues rotation about an arbitrary axis. Agrees with
 * Vec3.RotateByAxis and Quaternion.ToMat4 for the same axis and angle.
 */
func NewMat4RotationAxis(axis Vec3, angleRadians float32) Mat4 {
	k := axis.Normalize()
	c := kcos(angleRadians)
	s := ksin(angleRadians)
	t := 1 - c

	var out Mat4
	out.Data[0] = c + k.X*k.X*t
	out.Data[1] = k.X*k.Y*t + k.Z*s
	out.Data[2] = k.X*k.Z*t - k.Y*s

	out.Data[4] = k.X*k.Y*t - k.Z*s
	out.Data[5] = c + k.Y*k.Y*t
	out.Data[6] = k.Y*k.Z*t + k.X*s

	out.Data[8] = k.X*k.Z*t + k.Y*s
	out.Data[9] = k.Y*k.Z*t - k.X*s
	out.Data[10] = c + k.Z*k.Z*t

	out.Data[15] = 1.0
	return out
}

/**
 * @brief Returns the forward vector (third row) of the provided matrix.
 */
func (mt Mat4) Forward() Vec3 {
	return Vec3{mt.Data[8], mt.Data[9], mt.Data[10]}.Normalize()
}

/**
 * @brief Returns the up vector (second row) of the provided matrix.
 */
func (mt Mat4) Up() Vec3 {
	return Vec3{mt.Data[4], mt.Data[5], mt.Data[6]}.Normalize()
}

/**
 * @brief Returns the right vector (first row) of the provided matrix.
 */
func (mt Mat4) Right() Vec3 {
	return Vec3{mt.Data[0], mt.Data[1], mt.Data[2]}.Normalize()
}

// Position returns the translation row.
func (mt Mat4) Position() Vec3 {
	return Vec3{mt.Data[12], mt.Data[13], mt.Data[14]}
}

// Compare reports whether every element differs by at most tolerance.
func (mt Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := range mt.Data {
		if kabs(mt.Data[i]-other.Data[i]) > tolerance {
			return false
		}
	}
	return true
}
