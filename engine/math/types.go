package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector. Used for directions, normals and colours.
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a homogeneous 4D vector. W is 1 for points and 0 for directions.
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion Vec4

/**
 * @brief a 4x4 matrix stored row-major (row r, column c at r*4+c).
 * Vectors multiply on the left as rows, so translation lives in Data[12..14].
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

/**
 * @brief A single triangle. Vertex order defines winding and therefore the
 * face normal; Colour is the flat shade attached by the pipeline.
 */
type Triangle struct {
	Points [3]Vec4
	Colour Vec4
}

/** @brief An ordered list of triangles with no shared-vertex topology. */
type Mesh struct {
	Triangles []Triangle
}

/**
 * @brief Represents the transform of an object in the world.
 * Transforms can have a parent whose own transform is then
 * taken into account. NOTE: The properties of this should not
 * be edited directly, but done via the functions in transform.go
 * to ensure proper matrix generation.
 */
type Transform struct {
	/** @brief The position in the world. */
	Position Vec3
	/** @brief The rotation in the world. */
	Rotation Quaternion
	/** @brief The scale in the world. */
	Scale Vec3
	/**
	 * @brief Indicates if the position, rotation or scale have changed,
	 * thus indicating if the local matrix needs to be recalculated.
	 */
	IsDirty bool
	/**
	 * @brief The local transformation matrix, updated whenever
	 * the position, rotation or scale have changed.
	 */
	Local Mat4
	/** @brief A pointer to a parent transform if one is assigned. Can also be nil. */
	Parent *Transform
}
