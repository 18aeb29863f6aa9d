package csg

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FragmentSide records the volume on one side of a fragment and the brush
// that produced it.
type FragmentSide struct {
	Volume VolumeID `json:"volume"`
	Brush  ObjectID `json:"brush"`
}

// Fragment is a convex piece of a face with the volumes found in front of
// and behind it. Edges[i] is the line from Vertices[i] to the next vertex
// of the loop.
type Fragment struct {
	Face     FaceRef
	Plane    Plane
	Front    FragmentSide
	Back     FragmentSide
	Vertices []Vertex
	Edges    []Edge
	Relation FragmentRelation
}

// Visible reports whether the fragment separates two different volumes.
func (f *Fragment) Visible() bool {
	return f.Front.Volume != f.Back.Volume
}

// Positions returns the positions of the fragment's vertex loop.
func (f *Fragment) Positions() []v3.Vec {
	return positions(f.Vertices)
}

// edges returns the loop edges, deriving them from the vertices when the
// fragment was built without them.
func (f *Fragment) edges() []Edge {
	if len(f.Edges) == len(f.Vertices) {
		return f.Edges
	}
	return loopEdges(f.Vertices)
}

func (f *Fragment) appendCorner(v Vertex, e Edge) {
	f.Vertices = append(f.Vertices, v)
	f.Edges = append(f.Edges, e)
}

// CalculateFaceRelation classifies the fragment against the plane of face.
func (f *Fragment) CalculateFaceRelation(face *Face) FragmentRelation {
	return classifyLoop(f.Vertices, f.Plane, face.Plane)
}

// Split cuts the fragment at the plane of splitter. Boundary vertices are
// derived from the planes of the cut edge and the splitter rather than by
// interpolation. Vertices lying on the plane go to both pieces, and the new
// boundary of each piece is the line shared by the fragment's face and the
// splitter.
func Split(frag Fragment, splitter *Face) (front, back Fragment) {
	var c carver
	return c.split(frag, splitter)
}

// Carve clips frag against the convex solid bounded by faces and appends
// the resulting pieces to dst. Each piece carries the relation it ended with:
// Outside pieces lie outside the solid, Inside, Aligned and ReverseAligned
// pieces lie within it.
func Carve(dst []Fragment, frag Fragment, faces []Face) []Fragment {
	var c carver
	return c.carve(dst, frag, faces, 0)
}

// carver carries diagnostics across one brush's carving.
type carver struct {
	fallbacks int
}

func (c *carver) carve(dst []Fragment, frag Fragment, faces []Face, i int) []Fragment {
	for ; i < len(faces); i++ {
		face := &faces[i]
		switch rel := frag.CalculateFaceRelation(face); rel {
		case RelationOutside:
			frag.Relation = RelationOutside
			return append(dst, frag)

		case RelationAligned, RelationReverseAligned:
			frag.Relation = rel

		case RelationSplit:
			front, back := c.split(frag, face)
			back.Relation = frag.Relation

			mark := len(dst)
			dst = c.carve(dst, back, faces, i+1)
			if len(dst) == mark+1 && dst[mark].Relation == RelationOutside {
				// The back piece left the solid anyway, so the cut
				// separated nothing.
				frag.Relation = RelationOutside
				dst[mark] = frag
				return dst
			}

			front.Relation = RelationOutside
			return append(dst, front)
		}
	}
	return append(dst, frag)
}

func (c *carver) split(frag Fragment, splitter *Face) (front, back Fragment) {
	front = Fragment{Face: frag.Face, Plane: frag.Plane, Front: frag.Front, Back: frag.Back}
	back = front

	n := len(frag.Vertices)
	rels := make([]PointRelation, n)
	for i, v := range frag.Vertices {
		rels[i] = splitter.Plane.Classify(v.Position)
	}
	edges := frag.edges()
	seam := newEdge(frag.Face, frag.Plane, splitter.Ref, splitter.Plane)

	for i, cur := range frag.Vertices {
		j := (i + 1) % n
		e := edges[i]

		switch rels[i] {
		case PointFront:
			front.appendCorner(cur, e)
		case PointBack:
			back.appendCorner(cur, e)
		default:
			if rels[j] == PointBack {
				front.appendCorner(cur, seam)
			} else {
				front.appendCorner(cur, e)
			}
			if rels[j] == PointFront {
				back.appendCorner(cur, seam)
			} else {
				back.appendCorner(cur, e)
			}
		}

		if rels[i] == PointAligned || rels[j] == PointAligned || rels[i] == rels[j] {
			continue
		}

		v, ok := c.cutEdge(frag, cur, frag.Vertices[j], e, splitter)
		if !ok {
			continue
		}
		if rels[j] == PointFront {
			front.appendCorner(v, e)
			back.appendCorner(v, seam)
		} else {
			back.appendCorner(v, e)
			front.appendCorner(v, seam)
		}
	}

	return front, back
}

// cutEdge returns the vertex where the edge a-b, lying on e, crosses the
// splitter.
func (c *carver) cutEdge(frag Fragment, a, b Vertex, e Edge, splitter *Face) (Vertex, bool) {
	if !e.valid() {
		c.fallback(reasonMissingEdge, frag, a, b, splitter)
		return Vertex{}, false
	}

	pos, ok := IntersectPlanes(e.Planes[0], e.Planes[1], splitter.Plane)
	if !ok {
		c.fallback(reasonDegenerate, frag, a, b, splitter)
		return Vertex{}, false
	}

	return NewVertex(
		[3]FaceRef{e.Faces[0], e.Faces[1], splitter.Ref},
		[3]Plane{e.Planes[0], e.Planes[1], splitter.Plane},
		pos,
	), true
}

func (c *carver) fallback(reason string, frag Fragment, a, b Vertex, splitter *Face) {
	c.fallbacks++
	instrumentSplitFallback(reason)
	logs.WithTag("reason", reason).
		WithTag("fragment_face", frag.Face.String()).
		WithTag("splitter", splitter.Ref.String()).
		WithTag("from", a.Faces).
		WithTag("to", b.Faces).
		Warn(errors.New("split kept vertex unsplit").
			WithType(reason))
}
