package csg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewVertexSortsFaces(t *testing.T) {
	px := NewPlane(vec(1, 0, 0), -1)
	py := NewPlane(vec(0, 1, 0), -1)
	pz := NewPlane(vec(0, 0, 1), -1)

	v := NewVertex(
		[3]FaceRef{{Brush: 2, Side: 0}, {Brush: 1, Side: 4}, {Brush: 1, Side: 2}},
		[3]Plane{px, py, pz},
		vec(1, 1, 1),
	)

	require.Equal(t, [3]FaceRef{{Brush: 1, Side: 2}, {Brush: 1, Side: 4}, {Brush: 2, Side: 0}}, v.Faces)
	require.Equal(t, [3]Plane{pz, py, px}, v.Planes)
	require.True(t, v.HasFace(FaceRef{Brush: 2, Side: 0}))
	require.False(t, v.HasFace(FaceRef{Brush: 2, Side: 1}))
}

func TestFindEdge(t *testing.T) {
	fc := NewFaceCache(1, boxSides(vec(0, 0, 0), vec(1, 1, 1)))
	top := fc.Faces[4].Vertices
	require.Len(t, top, 4)

	t.Run("adjacent corners share an edge", func(t *testing.T) {
		e, ok := FindEdge(top[0], top[1])
		require.True(t, ok)
		require.Contains(t, e.Faces, FaceRef{Brush: 1, Side: 4})
		for i := range e.Planes {
			require.Equal(t, PointAligned, e.Planes[i].Classify(top[0].Position))
			require.Equal(t, PointAligned, e.Planes[i].Classify(top[1].Position))
		}
	})

	t.Run("diagonal corners do not", func(t *testing.T) {
		_, ok := FindEdge(top[0], top[2])
		require.False(t, ok)
	})

	t.Run("a corner is not its own edge", func(t *testing.T) {
		_, ok := FindEdge(top[0], top[0])
		require.False(t, ok)
	})
}

func TestRecoverEdge(t *testing.T) {
	fc := NewFaceCache(1, boxSides(vec(0, 0, 0), vec(2, 2, 2)))
	top := fc.Faces[4]

	// Cut the top face at x = 2 along a splitter that also passes through a
	// corner, then look for the edge between that corner and the cut vertex
	// on the opposite side.
	splitter := Face{
		Ref:   FaceRef{Brush: 2, Side: 0},
		Plane: PlaneFromPoints(vec(2, 2, 0), vec(2, 2, 1), vec(0, 0, 0)).Flip(),
	}

	var corner Vertex
	for _, v := range top.Vertices {
		if v.Position == vec(2, 2, 2) {
			corner = v
		}
	}
	require.Equal(t, PointAligned, splitter.Plane.Classify(corner.Position))

	cut, ok := IntersectPlanes(top.Plane, splitter.Plane, NewPlane(vec(-1, 0, 0), 0))
	require.True(t, ok)
	cutVertex := NewVertex(
		[3]FaceRef{top.Ref, {Brush: 1, Side: 1}, splitter.Ref},
		[3]Plane{top.Plane, NewPlane(vec(-1, 0, 0), 0), splitter.Plane},
		cut,
	)

	_, ok = FindEdge(corner, cutVertex)
	require.False(t, ok, "the corner does not know it lies on the splitter")

	e, ok := recoverEdge(corner, cutVertex)
	require.True(t, ok)
	require.ElementsMatch(t, []FaceRef{top.Ref, splitter.Ref}, e.Faces[:])
}
