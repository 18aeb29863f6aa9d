package csg

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ObjectID identifies a brush for the lifetime of a Tree. IDs start at 1 and
// are never reused.
type ObjectID uint64

// NoObject marks the absence of an owning brush.
const NoObject ObjectID = 0

// FaceRef is the global identity of one face: the brush it belongs to and
// the index of its side within that brush.
type FaceRef struct {
	Brush ObjectID `json:"brush"`
	Side  int      `json:"side"`
}

// Less orders face references by brush, then side.
func (r FaceRef) Less(o FaceRef) bool {
	if r.Brush != o.Brush {
		return r.Brush < o.Brush
	}
	return r.Side < o.Side
}

func (r FaceRef) String() string {
	return fmt.Sprintf("%d/%d", r.Brush, r.Side)
}

// Vertex is a polyhedron corner identified by the three faces whose planes
// meet there. Faces are kept sorted; Planes[i] belongs to Faces[i].
type Vertex struct {
	Faces    [3]FaceRef
	Planes   [3]Plane
	Position v3.Vec
}

// NewVertex builds a vertex from three generating faces, sorting them into
// canonical order.
func NewVertex(refs [3]FaceRef, planes [3]Plane, pos v3.Vec) Vertex {
	v := Vertex{Faces: refs, Planes: planes, Position: pos}
	// Three-element insertion sort keeps planes paired with their refs.
	for i := 1; i < 3; i++ {
		for j := i; j > 0 && v.Faces[j].Less(v.Faces[j-1]); j-- {
			v.Faces[j], v.Faces[j-1] = v.Faces[j-1], v.Faces[j]
			v.Planes[j], v.Planes[j-1] = v.Planes[j-1], v.Planes[j]
		}
	}
	return v
}

// HasFace reports whether ref is one of the vertex's generating faces.
func (v Vertex) HasFace(ref FaceRef) bool {
	return v.Faces[0] == ref || v.Faces[1] == ref || v.Faces[2] == ref
}

// SameCorner reports whether two vertices have the same generating faces.
func (v Vertex) SameCorner(o Vertex) bool {
	return v.Faces == o.Faces
}

// Edge is the line shared by two faces.
type Edge struct {
	Faces  [2]FaceRef
	Planes [2]Plane
}

// newEdge returns the edge where two faces meet, faces in canonical order.
func newEdge(a FaceRef, pa Plane, b FaceRef, pb Plane) Edge {
	if b.Less(a) {
		a, b = b, a
		pa, pb = pb, pa
	}
	return Edge{Faces: [2]FaceRef{a, b}, Planes: [2]Plane{pa, pb}}
}

func (e Edge) valid() bool {
	return !e.Planes[0].IsZero() && !e.Planes[1].IsZero()
}

// FindEdge returns the edge joining a and b. Two vertices are edge-adjacent
// when their sorted face sets share exactly two faces.
func FindEdge(a, b Vertex) (Edge, bool) {
	var e Edge
	n := 0
	i, j := 0, 0
	for i < 3 && j < 3 {
		switch {
		case a.Faces[i] == b.Faces[j]:
			if n < 2 {
				e.Faces[n] = a.Faces[i]
				e.Planes[n] = a.Planes[i]
			}
			n++
			i++
			j++
		case a.Faces[i].Less(b.Faces[j]):
			i++
		default:
			j++
		}
	}
	return e, n == 2
}

// recoverEdge looks for the two generating planes, drawn from both
// vertices, that contain both positions. It is used when a loop has to be
// re-derived from its vertices and an endpoint was produced on a cut line
// whose planes it does not carry.
func recoverEdge(a, b Vertex) (Edge, bool) {
	var e Edge
	n := 0
	consider := func(ref FaceRef, p Plane) bool {
		for k := 0; k < n; k++ {
			if e.Faces[k] == ref {
				return false
			}
		}
		if p.Classify(a.Position) != PointAligned || p.Classify(b.Position) != PointAligned {
			return false
		}
		// Reject a second plane parallel to the first; it cannot pin the line.
		if n == 1 && e.Planes[0].Normal.Cross(p.Normal).Length() < DeterminantEpsilon {
			return false
		}
		e.Faces[n] = ref
		e.Planes[n] = p
		n++
		return n == 2
	}
	for k := 0; k < 3; k++ {
		if consider(a.Faces[k], a.Planes[k]) {
			return e, true
		}
	}
	for k := 0; k < 3; k++ {
		if consider(b.Faces[k], b.Planes[k]) {
			return e, true
		}
	}
	return Edge{}, false
}
