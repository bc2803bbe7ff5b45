package scene

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
)

// Object is a mesh placed in the world.
type Object struct {
	ID        uuid.UUID
	Name      string
	Mesh      *math.Mesh
	Transform *math.Transform
	// Spin in radians per second around x, y and z.
	Spin math.Vec3
}

type Scene struct {
	Name    string
	Objects []*Object
	byName  map[string]*Object
}

// Build generates the meshes of every object and links parents.
func Build(desc *Description) (*Scene, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	s := &Scene{
		Name:    desc.Name,
		Objects: make([]*Object, 0, len(desc.Objects)),
		byName:  make(map[string]*Object, len(desc.Objects)),
	}
	for _, od := range desc.Objects {
		mesh, err := generate(od)
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", od.Name, err)
		}
		o := &Object{
			ID:        uuid.New(),
			Name:      od.Name,
			Mesh:      mesh,
			Transform: math.TransformFromPositionRotationScale(vec3(od.Position), eulerDegrees(od.Rotation), scaleOf(od)),
			Spin:      math.NewVec3(math.DegToRad(od.Spin[0]), math.DegToRad(od.Spin[1]), math.DegToRad(od.Spin[2])),
		}
		if od.Parent != "" {
			o.Transform.Parent = s.byName[od.Parent].Transform
		}
		s.Objects = append(s.Objects, o)
		s.byName[o.Name] = o
	}
	core.LogDebug("scene %q built: %d objects, %d triangles", s.Name, len(s.Objects), s.TriangleCount())
	return s, nil
}

func (s *Scene) Find(name string) (*Object, bool) {
	o, ok := s.byName[name]
	return o, ok
}

func (s *Scene) TriangleCount() int {
	n := 0
	for _, o := range s.Objects {
		n += len(o.Mesh.Triangles)
	}
	return n
}

// Update advances every spinning object by dt seconds.
func (s *Scene) Update(dt float64) {
	step := float32(dt)
	for _, o := range s.Objects {
		if o.Spin == math.NewVec3Zero() || step == 0 {
			continue
		}
		o.Transform.Rotate(math.NewQuatFromEuler(o.Spin.X*step, o.Spin.Y*step, o.Spin.Z*step))
	}
}

// Submit hands every object to the pipeline with its world matrix.
func (s *Scene) Submit(p *pipeline.Pipeline) {
	for _, o := range s.Objects {
		p.Submit(o.Mesh, o.Transform.GetWorld())
	}
}

func vec3(a [3]float32) math.Vec3 {
	return math.NewVec3(a[0], a[1], a[2])
}

func eulerDegrees(a [3]float32) math.Quaternion {
	return math.NewQuatFromEuler(math.DegToRad(a[0]), math.DegToRad(a[1]), math.DegToRad(a[2]))
}

func scaleOf(od ObjectDesc) math.Vec3 {
	if od.Scale == ([3]float32{}) {
		return math.NewVec3One()
	}
	return vec3(od.Scale)
}

func colourOf(od ObjectDesc) math.Vec4 {
	if od.Colour == ([4]float32{}) {
		return math.NewVec4(1, 1, 1, 1)
	}
	return math.NewVec4(od.Colour[0], od.Colour[1], od.Colour[2], od.Colour[3])
}

func generate(od ObjectDesc) (*math.Mesh, error) {
	size := od.Size
	if size <= 0 {
		size = 1
	}
	var mesh *math.Mesh
	switch od.Primitive {
	case PrimitiveCube:
		mesh = math.GenerateCube(size)
	case PrimitivePyramid:
		height := od.Height
		if height <= 0 {
			height = size
		}
		mesh = math.GeneratePyramid(size, height)
	case PrimitivePlane:
		mesh = math.GenerateGrid(size, 1)
	case PrimitiveGrid:
		mesh = math.GenerateGrid(size, od.Cells)
	case PrimitiveScatter:
		return scatter(od, size), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownPrimitive, od.Primitive)
	}
	mesh.SetColour(colourOf(od))
	return mesh, nil
}

// scatter merges Count randomly placed cubes into one mesh.
func scatter(od ObjectDesc, size float32) *math.Mesh {
	radius := od.Radius
	if radius <= 0 {
		radius = 1
	}
	rng := math.NewRandom(od.Seed)
	randomColour := od.Colour == ([4]float32{})
	cube := math.GenerateCube(size)

	out := &math.Mesh{Triangles: make([]math.Triangle, 0, od.Count*len(cube.Triangles))}
	for i := 0; i < od.Count; i++ {
		at := math.NewVec3(rng.InRange(-radius, radius), rng.InRange(-radius, radius), rng.InRange(-radius, radius))
		spin := math.NewMat4RotationY(rng.InRange(0, math.K_PI_2))
		placed := cube.Transform(spin.Mul(math.NewMat4Translation(at)))
		if randomColour {
			placed.SetColour(math.NewVec4(rng.InRange(0.2, 1), rng.InRange(0.2, 1), rng.InRange(0.2, 1), 1))
		} else {
			placed.SetColour(colourOf(od))
		}
		out.Triangles = append(out.Triangles, placed.Triangles...)
	}
	return out
}
