package scene

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPrimitive  = errors.New("unknown primitive")
	ErrUnknownParent     = errors.New("unknown parent")
	ErrDuplicateObject   = errors.New("duplicate object name")
	ErrUnsupportedFormat = errors.New("unsupported scene format")
	ErrNegativeCount     = errors.New("negative count")
)

// Primitive names accepted in scene files.
const (
	PrimitiveCube    = "cube"
	PrimitivePyramid = "pyramid"
	PrimitivePlane   = "plane"
	PrimitiveGrid    = "grid"
	PrimitiveScatter = "scatter"
)

/**
 * ObjectDesc is one entry of a scene file. Size is the cube edge, the pyramid
 * base or the plane/grid extent. Rotation and Spin are in degrees and degrees
 * per second around x, y and z. Scatter objects place Count cubes of edge
 * Size at random inside a cube of half-extent Radius, seeded by Seed. An
 * all-zero Scale means unit scale; an all-zero Colour means white, or random
 * colours for scatter.
 */
type ObjectDesc struct {
	Name      string     `toml:"name" yaml:"name"`
	Primitive string     `toml:"primitive" yaml:"primitive"`
	Parent    string     `toml:"parent,omitempty" yaml:"parent,omitempty"`
	Size      float32    `toml:"size" yaml:"size"`
	Height    float32    `toml:"height,omitempty" yaml:"height,omitempty"`
	Cells     int        `toml:"cells,omitempty" yaml:"cells,omitempty"`
	Count     int        `toml:"count,omitempty" yaml:"count,omitempty"`
	Seed      uint64     `toml:"seed,omitempty" yaml:"seed,omitempty"`
	Radius    float32    `toml:"radius,omitempty" yaml:"radius,omitempty"`
	Position  [3]float32 `toml:"position" yaml:"position"`
	Rotation  [3]float32 `toml:"rotation" yaml:"rotation"`
	Scale     [3]float32 `toml:"scale" yaml:"scale"`
	Colour    [4]float32 `toml:"colour" yaml:"colour"`
	Spin      [3]float32 `toml:"spin" yaml:"spin"`
}

type Description struct {
	Name    string       `toml:"name" yaml:"name"`
	Objects []ObjectDesc `toml:"objects" yaml:"objects"`
}

// Validate checks names, counts and parents. Parents must be declared before their children.
func (d *Description) Validate() error {
	seen := make(map[string]bool, len(d.Objects))
	for i, o := range d.Objects {
		if o.Name == "" {
			return fmt.Errorf("object %d: missing name", i)
		}
		if seen[o.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateObject, o.Name)
		}
		switch o.Primitive {
		case PrimitiveCube, PrimitivePyramid, PrimitivePlane, PrimitiveGrid, PrimitiveScatter:
		default:
			return fmt.Errorf("object %s: %w %q", o.Name, ErrUnknownPrimitive, o.Primitive)
		}
		if o.Count < 0 || o.Cells < 0 {
			return fmt.Errorf("object %s: %w (count %d, cells %d)", o.Name, ErrNegativeCount, o.Count, o.Cells)
		}
		if o.Parent != "" && !seen[o.Parent] {
			return fmt.Errorf("object %s: %w %q", o.Name, ErrUnknownParent, o.Parent)
		}
		seen[o.Name] = true
	}
	return nil
}

// DefaultDescription is the scene used when no scene file is configured.
func DefaultDescription() *Description {
	return &Description{
		Name: "default",
		Objects: []ObjectDesc{
			{
				Name:      "cube",
				Primitive: PrimitiveCube,
				Size:      1,
				Spin:      [3]float32{20, 45, 0},
				Colour:    [4]float32{0.9, 0.6, 0.2, 1},
			},
			{
				Name:      "pyramid",
				Primitive: PrimitivePyramid,
				Parent:    "cube",
				Size:      0.6,
				Height:    0.8,
				Position:  [3]float32{2, 0, 0},
				Colour:    [4]float32{0.3, 0.7, 0.9, 1},
			},
			{
				Name:      "floor",
				Primitive: PrimitiveGrid,
				Size:      12,
				Cells:     6,
				Position:  [3]float32{0, -1.5, 0},
				Colour:    [4]float32{0.5, 0.5, 0.5, 1},
			},
			{
				Name:      "debris",
				Primitive: PrimitiveScatter,
				Size:      0.2,
				Count:     24,
				Seed:      7,
				Radius:    5,
				Position:  [3]float32{0, 1, 4},
			},
		},
	}
}
