package math

// Normal returns the unnormalised face normal cross(p1-p0, p2-p0).
func (t Triangle) Normal() Vec3 {
	e1 := t.Points[1].Sub(t.Points[0]).ToVec3()
	e2 := t.Points[2].Sub(t.Points[0]).ToVec3()
	return e1.Cross(e2)
}

// Transform multiplies every vertex by m and keeps the colour.
func (t Triangle) Transform(m Mat4) Triangle {
	return Triangle{
		Points: [3]Vec4{
			m.MulVec4(t.Points[0]),
			m.MulVec4(t.Points[1]),
			m.MulVec4(t.Points[2]),
		},
		Colour: t.Colour,
	}
}

// AreaXY returns the signed area of the triangle projected onto the xy plane.
func (t Triangle) AreaXY() float32 {
	a := Vec2{t.Points[1].X - t.Points[0].X, t.Points[1].Y - t.Points[0].Y}
	b := Vec2{t.Points[2].X - t.Points[0].X, t.Points[2].Y - t.Points[0].Y}
	return 0.5 * a.Cross(b)
}

// NewTriangle builds a triangle from three points (w = 1) with a white colour.
func NewTriangle(p0, p1, p2 Vec3) Triangle {
	return Triangle{
		Points: [3]Vec4{p0.ToVec4(1), p1.ToVec4(1), p2.ToVec4(1)},
		Colour: Vec4{1, 1, 1, 1},
	}
}

// Transform returns a copy of the mesh with every triangle multiplied by m.
func (ms *Mesh) Transform(m Mat4) *Mesh {
	out := &Mesh{Triangles: make([]Triangle, len(ms.Triangles))}
	for i, t := range ms.Triangles {
		out.Triangles[i] = t.Transform(m)
	}
	return out
}

// SetColour paints every triangle with colour.
func (ms *Mesh) SetColour(colour Vec4) {
	for i := range ms.Triangles {
		ms.Triangles[i].Colour = colour
	}
}

// Extents returns the axis-aligned bounds of the mesh.
func (ms *Mesh) Extents() Extents3D {
	if len(ms.Triangles) == 0 {
		return Extents3D{}
	}
	first := ms.Triangles[0].Points[0].ToVec3()
	e := Extents3D{Min: first, Max: first}
	for _, t := range ms.Triangles {
		for _, p := range t.Points {
			e.Min = Vec3{min(e.Min.X, p.X), min(e.Min.Y, p.Y), min(e.Min.Z, p.Z)}
			e.Max = Vec3{max(e.Max.X, p.X), max(e.Max.Y, p.Y), max(e.Max.Z, p.Z)}
		}
	}
	return e
}

/**
 * @brief An indexed vertex list: every three indices form one triangle.
 */
type IndexedMesh struct {
	Vertices []Vec3
	Indices  []uint32
}

/**
 * @brief Expands the indexed mesh into a flat triangle list. Trailing indices
 * that do not make a whole triangle are ignored.
 */
func (im *IndexedMesh) ToMesh(colour Vec4) *Mesh {
	indexCount := uint32(len(im.Indices))
	mesh := &Mesh{Triangles: make([]Triangle, 0, indexCount/3)}
	for i := uint32(0); i+2 < indexCount; i += 3 {
		i0 := im.Indices[i+0]
		i1 := im.Indices[i+1]
		i2 := im.Indices[i+2]

		t := NewTriangle(im.Vertices[i0], im.Vertices[i1], im.Vertices[i2])
		t.Colour = colour
		mesh.Triangles = append(mesh.Triangles, t)
	}
	return mesh
}

// cubeFaces lists each face as normal n and in-plane axes u, v with u x v = -n,
// which makes the emitted triangles wind outward.
var cubeFaces = [6][3]Vec3{
	{{0, 0, -1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}},
	{{1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, -1, 0}, {0, 0, 1}, {1, 0, 0}},
}

/**
 * @brief Generates an axis-aligned cube centred on the origin with the given
 * edge length: 12 triangles whose normals point outward.
 */
func GenerateCube(size float32) *Mesh {
	h := size * 0.5
	im := &IndexedMesh{}
	for _, f := range cubeFaces {
		n, u, v := f[0].MulScalar(h), f[1].MulScalar(h), f[2].MulScalar(h)
		base := uint32(len(im.Vertices))
		im.Vertices = append(im.Vertices,
			n.Sub(u).Sub(v),
			n.Sub(u).Add(v),
			n.Add(u).Add(v),
			n.Add(u).Sub(v),
		)
		im.Indices = append(im.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return im.ToMesh(Vec4{1, 1, 1, 1})
}

/**
 * @brief Generates a square-based pyramid of the given base size and height,
 * base centred on the origin in the xz plane, apex on +y.
 */
func GeneratePyramid(base, height float32) *Mesh {
	h := base * 0.5
	apex := Vec3{0, height, 0}
	// Base corners counter-clockwise seen from +y.
	c := [4]Vec3{{-h, 0, -h}, {-h, 0, h}, {h, 0, h}, {h, 0, -h}}
	im := &IndexedMesh{Vertices: []Vec3{c[0], c[1], c[2], c[3], apex}}
	for i := uint32(0); i < 4; i++ {
		im.Indices = append(im.Indices, i, (i+1)%4, 4)
	}
	// Base faces -y.
	im.Indices = append(im.Indices, 0, 2, 1, 0, 3, 2)
	return im.ToMesh(Vec4{1, 1, 1, 1})
}

/**
 * @brief Generates a flat grid in the xz plane facing +y, centred on the
 * origin, with cells x cells quads of the given total size.
 */
func GenerateGrid(size float32, cells int) *Mesh {
	if cells < 1 {
		cells = 1
	}
	step := size / float32(cells)
	start := -size * 0.5
	im := &IndexedMesh{}
	for z := 0; z <= cells; z++ {
		for x := 0; x <= cells; x++ {
			im.Vertices = append(im.Vertices, Vec3{start + float32(x)*step, 0, start + float32(z)*step})
		}
	}
	row := uint32(cells + 1)
	for z := uint32(0); z < uint32(cells); z++ {
		for x := uint32(0); x < uint32(cells); x++ {
			i := z*row + x
			im.Indices = append(im.Indices, i, i+row, i+row+1, i, i+row+1, i+1)
		}
	}
	return im.ToMesh(Vec4{1, 1, 1, 1})
}
