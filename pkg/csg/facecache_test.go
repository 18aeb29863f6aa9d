package csg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFaceCacheTopology(t *testing.T) {
	tests := []struct {
		name     string
		sides    []Side
		vertices int
		edges    int
		faces    int
	}{
		{
			name:     "cube",
			sides:    boxSides(vec(0, 0, 0), vec(1, 1, 1)),
			vertices: 8,
			edges:    12,
			faces:    6,
		},
		{
			name:     "tetrahedron",
			sides:    tetraSides(vec(0, 0, 0), vec(2, 0, 0), vec(0, 2, 0), vec(0, 0, 2)),
			vertices: 4,
			edges:    6,
			faces:    4,
		},
		{
			name:     "triangular prism",
			sides:    prismSides(3, 1, 2),
			vertices: 6,
			edges:    9,
			faces:    5,
		},
		{
			name:     "hexagonal prism",
			sides:    prismSides(6, 1, 2),
			vertices: 12,
			edges:    18,
			faces:    8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := NewFaceCache(1, tt.sides)

			v, e, f := fc.VertexCount(), fc.EdgeCount(), fc.FaceCount()
			require.Equal(t, tt.vertices, v)
			require.Equal(t, tt.edges, e)
			require.Equal(t, tt.faces, f)
			require.Equal(t, 2, v-e+f)

			loopEdges := 0
			for i := range fc.Faces {
				face := &fc.Faces[i]
				require.GreaterOrEqual(t, len(face.Vertices), 3)
				for j := range face.Vertices {
					_, ok := FindEdge(face.Vertices[j], face.Vertices[(j+1)%len(face.Vertices)])
					require.True(t, ok, "face %d loop is broken at %d", i, j)
					require.Equal(t, PointAligned, face.Plane.Classify(face.Vertices[j].Position))
				}
				loopEdges += len(face.Vertices)
			}
			require.Equal(t, 2*tt.edges, loopEdges, "every edge borders two faces")

			_, ok := fc.Bounds()
			require.True(t, ok)
		})
	}
}

// Four sides meeting at the apex yield one corner per plane triple. The
// copies coincide, so every face still has the right shape, but the counts
// no longer satisfy Euler's formula. Validate reports such brushes.
func TestFaceCacheSharedApex(t *testing.T) {
	fc := NewFaceCache(1, pyramidSides())

	require.Equal(t, 8, fc.VertexCount())
	require.Equal(t, 10, fc.EdgeCount())
	require.Equal(t, 5, fc.FaceCount())

	base := &fc.Faces[0]
	require.Len(t, base.Vertices, 4)
	require.InDelta(t, 4, polygonArea(base.Positions()), 1e-9)

	apex := vec(0, 0, 1)
	for i := 1; i < len(fc.Faces); i++ {
		face := &fc.Faces[i]
		require.Len(t, face.Vertices, 5, "face %d", i)
		require.InDelta(t, math.Sqrt2, polygonArea(face.Positions()), 1e-9, "face %d", i)

		copies := 0
		for _, v := range face.Vertices {
			require.Equal(t, PointAligned, face.Plane.Classify(v.Position))
			if v.Position.Sub(apex).Length() < Epsilon {
				copies++
			}
		}
		require.Equal(t, 3, copies, "face %d", i)
	}
}

func TestFaceCacheWinding(t *testing.T) {
	for _, sides := range [][]Side{
		boxSides(vec(-1, -2, -3), vec(4, 5, 6)),
		tetraSides(vec(0, 0, 0), vec(0, 2, 0), vec(2, 0, 0), vec(0, 0, 2)),
		prismSides(5, 3, 1),
	} {
		fc := NewFaceCache(1, sides)
		for i := range fc.Faces {
			face := &fc.Faces[i]
			require.Greater(t, loopNormal(face.Vertices).Dot(face.Plane.Normal), 0.0, "face %d", i)
		}
	}
}

func TestFaceCacheBounds(t *testing.T) {
	fc := NewFaceCache(1, boxSides(vec(-1, -2, -3), vec(4, 5, 6)))

	b, ok := fc.Bounds()
	require.True(t, ok)
	require.InDelta(t, -1, b.Min.X, 1e-9)
	require.InDelta(t, -2, b.Min.Y, 1e-9)
	require.InDelta(t, -3, b.Min.Z, 1e-9)
	require.InDelta(t, 4, b.Max.X, 1e-9)
	require.InDelta(t, 5, b.Max.Y, 1e-9)
	require.InDelta(t, 6, b.Max.Z, 1e-9)
}

func TestFaceCacheRedundantSide(t *testing.T) {
	sides := boxSides(vec(0, 0, 0), vec(1, 1, 1))
	sides = append(sides, Side{Plane: NewPlane(vec(1, 1, 1), -10)})

	fc := NewFaceCache(1, sides)
	require.Len(t, fc.Faces, 7)
	require.Empty(t, fc.Faces[6].Vertices)
	require.Equal(t, 8, fc.VertexCount())
	require.Equal(t, 6, fc.FaceCount())
}

func TestFaceCacheDegenerate(t *testing.T) {
	t.Run("too few sides", func(t *testing.T) {
		fc := NewFaceCache(1, boxSides(vec(0, 0, 0), vec(1, 1, 1))[:2])
		_, ok := fc.Bounds()
		require.False(t, ok)
		require.Zero(t, fc.VertexCount())
	})

	t.Run("empty intersection", func(t *testing.T) {
		sides := boxSides(vec(0, 0, 0), vec(1, 1, 1))
		sides[0].Plane = NewPlane(vec(1, 0, 0), 1) // x <= -1 against x >= 0
		fc := NewFaceCache(1, sides)
		_, ok := fc.Bounds()
		require.False(t, ok)
	})
}

func TestFaceSideAndQueries(t *testing.T) {
	sides := boxSides(vec(0, 0, 0), vec(2, 2, 2))
	sides[4].UserData = "top"

	fc := NewFaceCache(7, sides)
	top := &fc.Faces[4]

	require.Equal(t, "top", top.Side().UserData)
	require.Equal(t, FaceRef{Brush: 7, Side: 4}, top.Ref)
	require.Equal(t, vec(1, 1, 2), top.Center())
	require.True(t, top.Contains(vec(1, 1, 2)))
	require.True(t, top.Contains(vec(2, 2, 2)))
	require.False(t, top.Contains(vec(3, 1, 2)))

	rels := top.VertexRelations(NewPlane(vec(1, 0, 0), -1))
	require.ElementsMatch(t, []PointRelation{PointFront, PointFront, PointBack, PointBack}, rels)

	require.Equal(t, RelationSplit, top.Relation(&Face{Plane: NewPlane(vec(1, 0, 0), -1)}))
	require.Equal(t, RelationInside, top.Relation(&Face{Plane: NewPlane(vec(1, 0, 0), -5)}))
	require.Equal(t, RelationAligned, top.Relation(&Face{Plane: NewPlane(vec(0, 0, 1), -2)}))
	require.Equal(t, RelationReverseAligned, top.Relation(&Face{Plane: NewPlane(vec(0, 0, -1), 2)}))
}
