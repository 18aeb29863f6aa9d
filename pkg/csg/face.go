package csg

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Side is one bounding plane of a brush together with opaque client data
// (material, texture axes, map-file identifiers). The kernel never reads
// UserData.
type Side struct {
	Plane    Plane
	UserData any
}

// Face is the surface of a brush on one side: an ordered, outward-wound
// vertex loop and the fragments it was cut into by the last rebuild.
// Edges[i] joins Vertices[i] to the next vertex.
type Face struct {
	Ref       FaceRef
	Plane     Plane
	Vertices  []Vertex
	Edges     []Edge
	Fragments []Fragment

	side *Side
}

// Side returns the side this face was built from.
func (f *Face) Side() *Side {
	return f.side
}

// Normal returns the outward unit normal of the face.
func (f *Face) Normal() v3.Vec {
	return f.Plane.Normal
}

// Positions returns the positions of the face's vertex loop.
func (f *Face) Positions() []v3.Vec {
	return positions(f.Vertices)
}

// Center returns the average of the face's vertex positions.
func (f *Face) Center() v3.Vec {
	var c v3.Vec
	if len(f.Vertices) == 0 {
		return c
	}
	for _, v := range f.Vertices {
		c = c.Add(v.Position)
	}
	return c.MulScalar(1 / float64(len(f.Vertices)))
}

// VertexRelations classifies each vertex of the face against p.
func (f *Face) VertexRelations(p Plane) []PointRelation {
	out := make([]PointRelation, len(f.Vertices))
	for i, v := range f.Vertices {
		out[i] = p.Classify(v.Position)
	}
	return out
}

// Relation classifies the whole face polygon against another face.
func (f *Face) Relation(other *Face) FragmentRelation {
	return classifyLoop(f.Vertices, f.Plane, other.Plane)
}

// Contains reports whether pt, assumed to lie on the face plane, is inside
// the face's vertex loop.
func (f *Face) Contains(pt v3.Vec) bool {
	return loopContains(f.Vertices, f.Plane.Normal, pt)
}

// VisibleFragments returns the fragments whose front and back volumes
// differ.
func (f *Face) VisibleFragments() []Fragment {
	var out []Fragment
	for _, frag := range f.Fragments {
		if frag.Visible() {
			out = append(out, frag)
		}
	}
	return out
}

// orderVertices turns the unordered corner set into a loop by repeatedly
// stepping to a remaining vertex that shares an edge with the current one.
// Vertices that cannot be reached are dropped; this only happens for input
// that is not a closed convex solid.
func (f *Face) orderVertices() {
	if len(f.Vertices) < 3 {
		return
	}

	pool := make([]Vertex, len(f.Vertices)-1)
	copy(pool, f.Vertices[1:])
	ordered := make([]Vertex, 1, len(f.Vertices))
	ordered[0] = f.Vertices[0]

	for len(pool) > 0 {
		cur := ordered[len(ordered)-1]
		next := -1
		for i := range pool {
			if _, ok := FindEdge(cur, pool[i]); ok {
				next = i
				break
			}
		}
		if next < 0 {
			break
		}
		ordered = append(ordered, pool[next])
		pool = append(pool[:next], pool[next+1:]...)
	}

	f.Vertices = ordered
}

// fixWinding reverses the loop if the normal implied by its first three
// vertices opposes the plane normal.
func (f *Face) fixWinding() {
	if len(f.Vertices) < 3 {
		return
	}
	if loopNormal(f.Vertices).Dot(f.Plane.Normal) < 0 {
		reverseVertices(f.Vertices)
	}
}

// ---------------------------------------------------------------------------
// Loop helpers shared by faces and fragments
// ---------------------------------------------------------------------------

// classifyLoop classifies a planar polygon lying on own against plane p.
func classifyLoop(verts []Vertex, own, p Plane) FragmentRelation {
	front, back := false, false
	for _, v := range verts {
		switch p.Classify(v.Position) {
		case PointFront:
			front = true
		case PointBack:
			back = true
		}
	}
	switch {
	case front && back:
		return RelationSplit
	case !front && !back:
		if own.Normal.Dot(p.Normal) > 0 {
			return RelationAligned
		}
		return RelationReverseAligned
	case back:
		return RelationInside
	default:
		return RelationOutside
	}
}

// loopNormal returns the (unnormalised) normal implied by the first three
// vertices of a loop.
func loopNormal(verts []Vertex) v3.Vec {
	a, b, c := verts[0].Position, verts[1].Position, verts[2].Position
	return b.Sub(a).Cross(c.Sub(a))
}

// loopContains tests pt against every edge of a convex loop wound
// counter-clockwise around normal.
func loopContains(verts []Vertex, normal, pt v3.Vec) bool {
	if len(verts) < 3 {
		return false
	}
	for i := range verts {
		a := verts[i].Position
		b := verts[(i+1)%len(verts)].Position
		if b.Sub(a).Cross(pt.Sub(a)).Dot(normal) < -Epsilon {
			return false
		}
	}
	return true
}

// loopEdges derives the edge from each vertex to its successor. Pairs that
// share no line are left as the zero Edge.
func loopEdges(verts []Vertex) []Edge {
	edges := make([]Edge, len(verts))
	for i := range verts {
		a, b := verts[i], verts[(i+1)%len(verts)]
		e, ok := FindEdge(a, b)
		if !ok {
			e, ok = recoverEdge(a, b)
		}
		if ok {
			edges[i] = e
		}
	}
	return edges
}

func reverseVertices(verts []Vertex) {
	for i, j := 0, len(verts)-1; i < j; i, j = i+1, j-1 {
		verts[i], verts[j] = verts[j], verts[i]
	}
}

func positions(verts []Vertex) []v3.Vec {
	out := make([]v3.Vec, len(verts))
	for i, v := range verts {
		out[i] = v.Position
	}
	return out
}
