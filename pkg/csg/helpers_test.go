package csg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	testAir   VolumeID = 0
	testSolid VolumeID = 1
)

func vec(x, y, z float64) v3.Vec {
	return v3.Vec{X: x, Y: y, Z: z}
}

// boxSides returns the sides of an axis-aligned box in the order
// +X, -X, +Y, -Y, +Z, -Z.
func boxSides(min, max v3.Vec) []Side {
	return []Side{
		{Plane: NewPlane(vec(1, 0, 0), -max.X)},
		{Plane: NewPlane(vec(-1, 0, 0), min.X)},
		{Plane: NewPlane(vec(0, 1, 0), -max.Y)},
		{Plane: NewPlane(vec(0, -1, 0), min.Y)},
		{Plane: NewPlane(vec(0, 0, 1), -max.Z)},
		{Plane: NewPlane(vec(0, 0, -1), min.Z)},
	}
}

// tetraSides returns the outward planes of the tetrahedron a, b, c, d.
func tetraSides(a, b, c, d v3.Vec) []Side {
	centroid := a.Add(b).Add(c).Add(d).MulScalar(0.25)
	tris := [][3]v3.Vec{{a, b, c}, {a, b, d}, {a, c, d}, {b, c, d}}
	sides := make([]Side, 0, len(tris))
	for _, t := range tris {
		p := PlaneFromPoints(t[0], t[1], t[2])
		if p.Distance(centroid) > 0 {
			p = p.Flip()
		}
		sides = append(sides, Side{Plane: p})
	}
	return sides
}

// prismSides returns a regular n-sided prism around the Z axis.
func prismSides(n int, radius, height float64) []Side {
	sides := []Side{
		{Plane: NewPlane(vec(0, 0, 1), -height)},
		{Plane: NewPlane(vec(0, 0, -1), 0)},
	}
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		sides = append(sides, Side{Plane: NewPlane(vec(math.Cos(a), math.Sin(a), 0), -radius)})
	}
	return sides
}

// polygonArea returns the area of a planar loop.
func polygonArea(pts []v3.Vec) float64 {
	var sum v3.Vec
	for i := range pts {
		sum = sum.Add(pts[i].Cross(pts[(i+1)%len(pts)]))
	}
	return sum.Length() / 2
}

func polygonCenter(pts []v3.Vec) v3.Vec {
	var c v3.Vec
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.MulScalar(1 / float64(len(pts)))
}

func fragmentsArea(frags []Fragment) float64 {
	total := 0.0
	for i := range frags {
		total += polygonArea(frags[i].Positions())
	}
	return total
}

func faceFragment(f *Face) Fragment {
	return Fragment{
		Face:     f.Ref,
		Plane:    f.Plane,
		Vertices: append([]Vertex(nil), f.Vertices...),
		Edges:    append([]Edge(nil), f.Edges...),
	}
}

// wedgeSides returns the box spanning min and max cut by a slope from its
// top -Y edge down to its bottom +Y edge.
func wedgeSides(min, max v3.Vec) []Side {
	dy, dz := max.Y-min.Y, max.Z-min.Z
	return []Side{
		{Plane: NewPlane(vec(1, 0, 0), -max.X)},
		{Plane: NewPlane(vec(-1, 0, 0), min.X)},
		{Plane: NewPlane(vec(0, -1, 0), min.Y)},
		{Plane: NewPlane(vec(0, 0, -1), min.Z)},
		{Plane: NewPlane(vec(0, dz, dy), -(dz*min.Y + dy*min.Z + dy*dz))},
	}
}

// requireEdgesOnLoop checks that every loop edge of frag names two planes
// holding both of its endpoints.
func requireEdgesOnLoop(t *testing.T, frag Fragment) {
	t.Helper()

	require.Len(t, frag.Edges, len(frag.Vertices))
	for i, e := range frag.Edges {
		require.True(t, e.valid(), "edge %d has no planes", i)
		a := frag.Vertices[i].Position
		b := frag.Vertices[(i+1)%len(frag.Vertices)].Position
		for _, p := range e.Planes {
			require.Equal(t, PointAligned, p.Classify(a), "edge %d start", i)
			require.Equal(t, PointAligned, p.Classify(b), "edge %d end", i)
		}
	}
}
