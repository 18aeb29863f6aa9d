package csg

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// RayHit is the nearest face struck by a ray. Inside is set when the ray
// started inside the brush and left it through the face.
type RayHit struct {
	Brush  ObjectID `json:"brush"`
	Face   int      `json:"face"`
	T      float64  `json:"t"`
	Inside bool     `json:"inside,omitempty"`
}

// Point returns the position of the hit along the ray.
func (h RayHit) Point(origin, dir v3.Vec) v3.Vec {
	return origin.Add(dir.MulScalar(h.T))
}

// QueryAABB returns the brushes whose bounds overlap box, in creation order.
func (t *Tree) QueryAABB(box AABB) []ObjectID {
	var out []ObjectID
	for _, id := range t.ids {
		bounds, ok := t.brushes[id].Bounds()
		if ok && bounds.Intersects(box) {
			out = append(out, id)
		}
	}
	return out
}

// QueryPoint returns the brushes that contain pt or touch it, in creation
// order.
func (t *Tree) QueryPoint(pt v3.Vec) []ObjectID {
	var out []ObjectID
	for _, id := range t.ids {
		b := t.brushes[id]
		if _, ok := b.Bounds(); !ok {
			continue
		}
		if b.Classify(pt) != BrushOutside {
			out = append(out, id)
		}
	}
	return out
}

// QueryRay returns the nearest face hit by origin + t*dir with t >= 0.
// Faces are hit from their outside, except for a brush that strictly
// contains origin, which is hit where the ray leaves it.
func (t *Tree) QueryRay(origin, dir v3.Vec) (RayHit, bool) {
	best := RayHit{T: math.Inf(1)}
	found := false

	for _, id := range t.ids {
		b := t.brushes[id]
		bounds, ok := b.Bounds()
		if !ok {
			continue
		}
		if _, _, ok := bounds.IntersectRay(origin, dir); !ok {
			continue
		}

		inside := b.Classify(origin) == BrushInside
		for i := range b.cache.Faces {
			f := &b.cache.Faces[i]
			if len(f.Vertices) < 3 {
				continue
			}
			if facing := f.Plane.Normal.Dot(dir); (inside && facing <= 0) || (!inside && facing >= 0) {
				continue
			}
			d, ok := f.Plane.IntersectRay(origin, dir)
			if !ok || d < 0 || d >= best.T {
				continue
			}
			if !f.Contains(origin.Add(dir.MulScalar(d))) {
				continue
			}
			best = RayHit{Brush: id, Face: i, T: d, Inside: inside}
			found = true
		}
	}

	if !found {
		return RayHit{}, false
	}
	return best, true
}
