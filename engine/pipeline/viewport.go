package pipeline

import "github.com/spaghettifunk/prism/engine/math"

// Viewport is the pixel size of the render target.
type Viewport struct {
	Width  uint32
	Height uint32
}

// AspectRatio is width over height; an empty viewport reports 1.
func (vp Viewport) AspectRatio() float32 {
	if vp.Width == 0 || vp.Height == 0 {
		return 1
	}
	return float32(vp.Width) / float32(vp.Height)
}

func (vp Viewport) IsEmpty() bool {
	return vp.Width == 0 || vp.Height == 0
}

/**
 * ToScreen maps a point already divided by w from normalised device
 * coordinates to pixels. x and y are negated before the [-1,1] -> [0,2]
 * offset: view space looks down +z with x to the viewer's left, and screen y
 * grows downward. Flipping both axes keeps the triangle winding.
 */
func (vp Viewport) ToScreen(p math.Vec4) math.Vec4 {
	halfW := 0.5 * float32(vp.Width)
	halfH := 0.5 * float32(vp.Height)
	return math.Vec4{
		X: (-p.X + 1) * halfW,
		Y: (-p.Y + 1) * halfH,
		Z: p.Z,
		W: p.W,
	}
}

// Contains reports whether p lies inside the pixel rectangle, with a small tolerance.
func (vp Viewport) Contains(p math.Vec4, tolerance float32) bool {
	return p.X >= -tolerance && p.Y >= -tolerance &&
		p.X <= float32(vp.Width)-1+tolerance && p.Y <= float32(vp.Height)-1+tolerance
}
