package pipeline

import (
	"github.com/spaghettifunk/prism/engine/containers"
	"github.com/spaghettifunk/prism/engine/math"
)

// Plane is a point on the plane and its normal. The inside half-space is the
// one the normal points into.
type Plane struct {
	Point  math.Vec4
	Normal math.Vec4
}

func NewPlane(point, normal math.Vec3) Plane {
	return Plane{Point: point.ToVec4(1), Normal: normal.ToVec4(0)}
}

// Distance returns the signed distance of p from the plane; >= 0 is inside.
func (pl Plane) Distance(p math.Vec4) float32 {
	n := pl.Normal.Normalize()
	return n.Dot(p) - n.Dot(pl.Point)
}

/**
 * ClipTriangle clips tri against plane and returns 0, 1 or 2 triangles in out.
 * The vertices are walked in their original order, so every emitted triangle
 * keeps the input winding, and every emitted triangle carries the input colour.
 * A triangle fully inside comes back unchanged.
 */
func ClipTriangle(plane Plane, tri math.Triangle) (out [2]math.Triangle, n int) {
	var d [3]float32
	inside := 0
	for i, p := range tri.Points {
		d[i] = plane.Distance(p)
		if d[i] >= 0 {
			inside++
		}
	}

	switch inside {
	case 0:
		return out, 0
	case 3:
		out[0] = tri
		return out, 1
	}

	// Sutherland-Hodgman over the three edges yields a 3 or 4 vertex polygon.
	var poly [4]math.Vec4
	count := 0
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		cur, next := tri.Points[i], tri.Points[j]
		curIn, nextIn := d[i] >= 0, d[j] >= 0
		if curIn {
			poly[count] = cur
			count++
		}
		if curIn != nextIn {
			poly[count], _ = math.IntersectLineWithPlane(plane.Point, plane.Normal, cur, next)
			count++
		}
	}

	out[0] = math.Triangle{Points: [3]math.Vec4{poly[0], poly[1], poly[2]}, Colour: tri.Colour}
	if count == 3 {
		return out, 1
	}
	out[1] = math.Triangle{Points: [3]math.Vec4{poly[0], poly[2], poly[3]}, Colour: tri.Colour}
	return out, 2
}

/**
 * Clipper runs triangles through a sequence of planes. Each plane is one pass:
 * every triangle queued for the pass is clipped and the results become the
 * queue for the next plane. The queue storage is reused across calls.
 */
type Clipper struct {
	planes []Plane
	queue  *containers.RingQueue[math.Triangle]
}

func NewClipper(planes ...Plane) *Clipper {
	return &Clipper{
		planes: planes,
		queue:  containers.NewGrowableRingQueue[math.Triangle](16),
	}
}

// SetPlanes replaces the plane sequence.
func (c *Clipper) SetPlanes(planes ...Plane) {
	c.planes = planes
}

// Clip appends the triangles that survive every plane to dst and returns it.
func (c *Clipper) Clip(dst []math.Triangle, tris ...math.Triangle) []math.Triangle {
	c.queue.Reset()
	for _, t := range tris {
		_ = c.queue.Enqueue(t)
	}

	for _, plane := range c.planes {
		pending := c.queue.Len()
		for ; pending > 0; pending-- {
			t, err := c.queue.Dequeue()
			if err != nil {
				break
			}
			clipped, n := ClipTriangle(plane, t)
			for i := 0; i < n; i++ {
				_ = c.queue.Enqueue(clipped[i])
			}
		}
	}

	for !c.queue.IsEmpty() {
		t, _ := c.queue.Dequeue()
		dst = append(dst, t)
	}
	return dst
}

// ClipAgainstPlanes is a one-shot Clip for callers that do not keep a Clipper.
func ClipAgainstPlanes(planes []Plane, tris []math.Triangle) []math.Triangle {
	return NewClipper(planes...).Clip(nil, tris...)
}

// NearPlane is the view-space plane z = near facing +z.
func NearPlane(near float32) Plane {
	return NewPlane(math.NewVec3(0, 0, near), math.NewVec3(0, 0, 1))
}

// ScreenPlanes returns the top, bottom, left and right edges of the viewport
// in screen space, normals pointing into the visible area.
func ScreenPlanes(vp Viewport) []Plane {
	w := float32(vp.Width) - 1
	h := float32(vp.Height) - 1
	return []Plane{
		NewPlane(math.NewVec3(0, 0, 0), math.NewVec3(0, 1, 0)),
		NewPlane(math.NewVec3(0, h, 0), math.NewVec3(0, -1, 0)),
		NewPlane(math.NewVec3(0, 0, 0), math.NewVec3(1, 0, 0)),
		NewPlane(math.NewVec3(w, 0, 0), math.NewVec3(-1, 0, 0)),
	}
}
