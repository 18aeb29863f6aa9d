package csg

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FaceCache is the geometry derived from a brush's sides: one face per side
// and the bounding box of all corner vertices.
type FaceCache struct {
	Faces []Face

	bounds    AABB
	hasBounds bool
}

// NewFaceCache enumerates the corners of the convex solid bounded by sides
// and builds an ordered, outward-wound face for each side.
//
// Every triple of planes is intersected; a corner is kept when no plane has
// it strictly in front. The cost is cubic in the number of sides.
func NewFaceCache(brush ObjectID, sides []Side) *FaceCache {
	fc := &FaceCache{
		Faces:  make([]Face, len(sides)),
		bounds: EmptyAABB(),
	}
	for i := range sides {
		fc.Faces[i] = Face{
			Ref:   FaceRef{Brush: brush, Side: i},
			Plane: sides[i].Plane,
			side:  &sides[i],
		}
	}

	corners := 0
	n := len(sides)
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				pi, pj, pk := sides[i].Plane, sides[j].Plane, sides[k].Plane
				pos, ok := IntersectPlanes(pi, pj, pk)
				if !ok || !behindAll(sides, pos) {
					continue
				}

				v := NewVertex(
					[3]FaceRef{fc.Faces[i].Ref, fc.Faces[j].Ref, fc.Faces[k].Ref},
					[3]Plane{pi, pj, pk},
					pos,
				)
				fc.Faces[i].Vertices = append(fc.Faces[i].Vertices, v)
				fc.Faces[j].Vertices = append(fc.Faces[j].Vertices, v)
				fc.Faces[k].Vertices = append(fc.Faces[k].Vertices, v)
				fc.bounds = fc.bounds.Extend(pos)
				corners++
			}
		}
	}

	for i := range fc.Faces {
		f := &fc.Faces[i]
		f.orderVertices()
		f.fixWinding()
		if len(f.Vertices) >= 3 {
			f.Edges = loopEdges(f.Vertices)
		}
	}

	fc.hasBounds = corners >= 3
	return fc
}

// Bounds returns the box around every corner. ok is false when fewer than
// three corners were found.
func (fc *FaceCache) Bounds() (AABB, bool) {
	return fc.bounds, fc.hasBounds
}

// VertexCount returns the number of distinct corners.
func (fc *FaceCache) VertexCount() int {
	seen := make(map[[3]FaceRef]struct{})
	for _, f := range fc.Faces {
		for _, v := range f.Vertices {
			seen[v.Faces] = struct{}{}
		}
	}
	return len(seen)
}

// EdgeCount returns the number of distinct edges over all face loops.
func (fc *FaceCache) EdgeCount() int {
	seen := make(map[[2]FaceRef]struct{})
	for _, f := range fc.Faces {
		if len(f.Vertices) < 3 {
			continue
		}
		for i := range f.Vertices {
			e, ok := FindEdge(f.Vertices[i], f.Vertices[(i+1)%len(f.Vertices)])
			if ok {
				seen[e.Faces] = struct{}{}
			}
		}
	}
	return len(seen)
}

// FaceCount returns the number of faces with a closed loop.
func (fc *FaceCache) FaceCount() int {
	n := 0
	for _, f := range fc.Faces {
		if len(f.Vertices) >= 3 {
			n++
		}
	}
	return n
}

func behindAll(sides []Side, pos v3.Vec) bool {
	for _, s := range sides {
		if s.Plane.Classify(pos) == PointFront {
			return false
		}
	}
	return true
}
