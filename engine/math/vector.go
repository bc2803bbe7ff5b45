package math

// ------------------------------------------
// Vector 2
// ------------------------------------------

/**
 * @brief Creates and returns a new 2-element vector using the supplied values.
 */
func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Cross returns the z component of the 3D cross product of two vectors in the xy plane.
func (v Vec2) Cross(other Vec2) float32 {
	return v.X*other.Y - v.Y*other.X
}

// ------------------------------------------
// Vector 3
// ------------------------------------------

/**
 * @brief Creates and returns a new 3-element vector using the supplied values.
 *
 * @param x The x value.
 * @param y The y value.
 * @param z The z value.
 * @return A new 3-element vector.
 */
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

/**
 * @brief Returns a new Vec3 containing the x, y and z components of the
 * supplied Vec4, essentially dropping the w component.
 */
func NewVec3FromVec4(vector Vec4) Vec3 {
	return Vec3{vector.X, vector.Y, vector.Z}
}

/**
 * @brief Returns a new Vec4 using vector as the x, y and z components and w for w.
 */
func (v Vec3) ToVec4(w float32) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

/** @brief Creates and returns a 3-component vector with all components set to 0.0f. */
func NewVec3Zero() Vec3 {
	return Vec3{0.0, 0.0, 0.0}
}

/** @brief Creates and returns a 3-component vector with all components set to 1.0f. */
func NewVec3One() Vec3 {
	return Vec3{1.0, 1.0, 1.0}
}

/** @brief Creates and returns a 3-component vector pointing up (0, 1, 0). */
func NewVec3Up() Vec3 {
	return Vec3{0.0, 1.0, 0.0}
}

/** @brief Creates and returns a 3-component vector pointing forward into view space (0, 0, 1). */
func NewVec3Forward() Vec3 {
	return Vec3{0.0, 0.0, 1.0}
}

/**
 * @brief Adds other to v and returns a copy of the result.
 */
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		v.X + other.X,
		v.Y + other.Y,
		v.Z + other.Z}
}

/**
 * @brief Subtracts other from v and returns a copy of the result.
 */
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		v.X - other.X,
		v.Y - other.Y,
		v.Z - other.Z}
}

/**
 * @brief Multiplies v by other component-wise and returns a copy of the result.
 */
func (v Vec3) Mul(other Vec3) Vec3 {
	return Vec3{
		v.X * other.X,
		v.Y * other.Y,
		v.Z * other.Z}
}

/**
 * @brief Divides v by other component-wise and returns a copy of the result.
 */
func (v Vec3) Div(other Vec3) Vec3 {
	return Vec3{
		v.X / other.X,
		v.Y / other.Y,
		v.Z / other.Z}
}

func (v Vec3) AddScalar(scalar float32) Vec3 {
	return Vec3{v.X + scalar, v.Y + scalar, v.Z + scalar}
}

func (v Vec3) SubScalar(scalar float32) Vec3 {
	return Vec3{v.X - scalar, v.Y - scalar, v.Z - scalar}
}

/**
 * @brief Multiplies all elements of v by scalar and returns a copy of the result.
 */
func (v Vec3) MulScalar(scalar float32) Vec3 {
	return Vec3{
		v.X * scalar,
		v.Y * scalar,
		v.Z * scalar}
}

func (v Vec3) DivScalar(scalar float32) Vec3 {
	return Vec3{v.X / scalar, v.Y / scalar, v.Z / scalar}
}

/**
 * @brief Returns the squared length of the provided vector.
 */
func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

/**
 * @brief Returns the length of the provided vector.
 */
func (v Vec3) Length() float32 {
	return ksqrt(v.LengthSquared())
}

/**
 * @brief Returns a unit-length copy of the vector. A zero-length vector
 * yields non-finite components; callers that may see one must check.
 */
func (v Vec3) Normalize() Vec3 {
	return v.DivScalar(v.Length())
}

/**
 * @brief Returns the dot product between the provided vectors. Typically used
 * to calculate the difference in direction.
 */
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

/**
 * @brief Calculates and returns the cross product of the supplied vectors.
 * The cross product is a new vector which is orthoganal to both provided vectors.
 */
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X}
}

// Reflect mirrors v about the plane with the given unit normal.
func (v Vec3) Reflect(normal Vec3) Vec3 {
	return v.Sub(normal.MulScalar(2 * v.Dot(normal)))
}

/**
 * @brief Compares all elements of v and other and ensures the difference
 * is less than tolerance.
 */
func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	return kabs(v.X-other.X) <= tolerance &&
		kabs(v.Y-other.Y) <= tolerance &&
		kabs(v.Z-other.Z) <= tolerance
}

/**
 * @brief Returns the distance between v and other.
 */
func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

/**
 * @brief Rotates v around axis by angle radians using a quaternion
 * (q * v * q^-1). The real part of the product is discarded.
 */
func (v Vec3) RotateByAxis(axis Vec3, angle float32) Vec3 {
	q := NewQuatFromAxisAngle(axis, angle, true)
	p := Quaternion{v.X, v.Y, v.Z, 0}
	r := q.Mul(p).Mul(q.Conjugate())
	return Vec3{r.X, r.Y, r.Z}
}

/**
 * @brief Transform v by m, treating v as a point (w = 1).
 */
func (v Vec3) Transform(m Mat4) Vec3 {
	return m.MulVec4(v.ToVec4(1)).ToVec3()
}

// ------------------------------------------
// Vector 4
// ------------------------------------------

/**
 * @brief Creates and returns a new 4-element vector using the supplied values.
 */
func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

// NewPoint returns a homogeneous point (w = 1).
func NewPoint(x, y, z float32) Vec4 {
	return Vec4{x, y, z, 1}
}

/**
 * @brief Returns a new Vec3 containing the x, y and z components of the
 * supplied Vec4, essentially dropping the w component.
 */
func (v Vec4) ToVec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

/*
 * Vec4 arithmetic combines all four components, w included, under the same
 * rule as x, y and z. Scalar variants broadcast the scalar to every component.
 */

func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{v.X + other.X, v.Y + other.Y, v.Z + other.Z, v.W + other.W}
}

func (v Vec4) Sub(other Vec4) Vec4 {
	return Vec4{v.X - other.X, v.Y - other.Y, v.Z - other.Z, v.W - other.W}
}

func (v Vec4) Mul(other Vec4) Vec4 {
	return Vec4{v.X * other.X, v.Y * other.Y, v.Z * other.Z, v.W * other.W}
}

func (v Vec4) Div(other Vec4) Vec4 {
	return Vec4{v.X / other.X, v.Y / other.Y, v.Z / other.Z, v.W / other.W}
}

func (v Vec4) AddScalar(scalar float32) Vec4 {
	return Vec4{v.X + scalar, v.Y + scalar, v.Z + scalar, v.W + scalar}
}

func (v Vec4) SubScalar(scalar float32) Vec4 {
	return Vec4{v.X - scalar, v.Y - scalar, v.Z - scalar, v.W - scalar}
}

func (v Vec4) MulScalar(scalar float32) Vec4 {
	return Vec4{v.X * scalar, v.Y * scalar, v.Z * scalar, v.W * scalar}
}

func (v Vec4) DivScalar(scalar float32) Vec4 {
	return Vec4{v.X / scalar, v.Y / scalar, v.Z / scalar, v.W / scalar}
}

// Dot uses x, y and z only.
func (v Vec4) Dot(other Vec4) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Length uses x, y and z only.
func (v Vec4) Length() float32 {
	return ksqrt(v.Dot(v))
}

// Normalize scales x, y and z to unit length and keeps w.
func (v Vec4) Normalize() Vec4 {
	l := v.Length()
	return Vec4{v.X / l, v.Y / l, v.Z / l, v.W}
}

// Cross is the 3D cross product; the result is a direction (w = 0).
func (v Vec4) Cross(other Vec4) Vec4 {
	c := v.ToVec3().Cross(other.ToVec3())
	return c.ToVec4(0)
}

// PerspectiveDivide returns v / v.W.
func (v Vec4) PerspectiveDivide() Vec4 {
	return v.DivScalar(v.W)
}

/**
 * @brief Compares all elements of v and other and ensures the difference
 * is less than tolerance.
 */
func (v Vec4) Compare(other Vec4, tolerance float32) bool {
	return kabs(v.X-other.X) <= tolerance &&
		kabs(v.Y-other.Y) <= tolerance &&
		kabs(v.Z-other.Z) <= tolerance &&
		kabs(v.W-other.W) <= tolerance
}

/**
 * @brief Returns the point where the segment from lineStart to lineEnd crosses
 * the plane through planeP with normal planeN, together with the interpolation
 * factor t along the segment. A segment parallel to the plane produces
 * non-finite output.
 */
func IntersectLineWithPlane(planeP, planeN, lineStart, lineEnd Vec4) (Vec4, float32) {
	n := planeN.Normalize()
	d := -n.Dot(planeP)
	ad := lineStart.Dot(n)
	bd := lineEnd.Dot(n)
	t := (-d - ad) / (bd - ad)
	line := lineEnd.Sub(lineStart)
	return lineStart.Add(line.MulScalar(t)), t
}
