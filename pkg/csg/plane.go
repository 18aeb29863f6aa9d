package csg

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// Epsilon is the distance tolerance used when classifying points
	// against planes.
	Epsilon = 1e-4

	// DeterminantEpsilon is the smallest 3x3 determinant for which three
	// planes are considered to meet in a single point.
	DeterminantEpsilon = 1e-6
)

// Plane is the set of points p where Normal·p + Offset == 0. Points with a
// positive signed distance are in front of (outside) the plane.
type Plane struct {
	Normal v3.Vec  `json:"normal"`
	Offset float64 `json:"offset"`
}

// NewPlane returns a plane with a unit normal. The offset is rescaled with
// the normal so the plane itself does not move.
func NewPlane(normal v3.Vec, offset float64) Plane {
	l := normal.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: normal.MulScalar(1 / l), Offset: offset / l}
}

// PlaneFromPoints returns the plane through a, b and c. The normal follows
// the counter-clockwise winding of a, b, c.
func PlaneFromPoints(a, b, c v3.Vec) Plane {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Length()
	if l == 0 {
		return Plane{}
	}
	n = n.MulScalar(1 / l)
	return Plane{Normal: n, Offset: -n.Dot(a)}
}

// Distance returns the signed distance from p to the plane.
func (p Plane) Distance(pt v3.Vec) float64 {
	return p.Normal.Dot(pt) + p.Offset
}

// Classify reports which side of the plane pt lies on.
func (p Plane) Classify(pt v3.Vec) PointRelation {
	d := p.Distance(pt)
	switch {
	case d > Epsilon:
		return PointFront
	case d < -Epsilon:
		return PointBack
	default:
		return PointAligned
	}
}

// Flip returns the same plane facing the opposite direction.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Neg(), Offset: -p.Offset}
}

// Origin returns the point on the plane closest to the world origin.
func (p Plane) Origin() v3.Vec {
	return p.Normal.MulScalar(-p.Offset)
}

// IsZero reports whether the plane has no normal, as produced from
// degenerate input.
func (p Plane) IsZero() bool {
	return p.Normal == v3.Vec{}
}

// Transform maps the plane through an affine transform. Three points on the
// plane and one point behind it are transformed so the result is exact for
// non-uniform scales and keeps the back side facing the solid.
func (p Plane) Transform(m sdf.M44) Plane {
	u, v := p.basis()
	o := p.Origin()

	a := m.MulPosition(o)
	b := m.MulPosition(o.Add(u))
	c := m.MulPosition(o.Add(v))
	inside := m.MulPosition(o.Sub(p.Normal))

	out := PlaneFromPoints(a, b, c)
	if out.Distance(inside) > 0 {
		out = out.Flip()
	}
	return out
}

// basis returns two unit vectors spanning the plane with u × v == Normal.
func (p Plane) basis() (u, v v3.Vec) {
	n := p.Normal
	axis := v3.Vec{X: 1}
	if math.Abs(n.X) > 0.9 {
		axis = v3.Vec{Y: 1}
	}
	u = axis.Cross(n).Normalize()
	v = n.Cross(u)
	return u, v
}

// IntersectRay returns the ray parameter t at which origin + t*dir meets the
// plane. ok is false when the ray runs parallel to the plane.
func (p Plane) IntersectRay(origin, dir v3.Vec) (t float64, ok bool) {
	denom := p.Normal.Dot(dir)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	return -p.Distance(origin) / denom, true
}

func (p Plane) String() string {
	return fmt.Sprintf("(%.4g %.4g %.4g | %.4g)", p.Normal.X, p.Normal.Y, p.Normal.Z, p.Offset)
}

// IntersectPlanes solves for the single point shared by three planes using
// Cramer's rule. ok is false when the normals are (nearly) linearly
// dependent.
func IntersectPlanes(a, b, c Plane) (v3.Vec, bool) {
	n0, n1, n2 := a.Normal, b.Normal, c.Normal

	det := det3(n0, n1, n2)
	if math.Abs(det) < DeterminantEpsilon {
		return v3.Vec{}, false
	}

	// Right-hand side of n·p = -offset.
	r := v3.Vec{X: -a.Offset, Y: -b.Offset, Z: -c.Offset}

	dx := det3(
		v3.Vec{X: r.X, Y: n0.Y, Z: n0.Z},
		v3.Vec{X: r.Y, Y: n1.Y, Z: n1.Z},
		v3.Vec{X: r.Z, Y: n2.Y, Z: n2.Z},
	)
	dy := det3(
		v3.Vec{X: n0.X, Y: r.X, Z: n0.Z},
		v3.Vec{X: n1.X, Y: r.Y, Z: n1.Z},
		v3.Vec{X: n2.X, Y: r.Z, Z: n2.Z},
	)
	dz := det3(
		v3.Vec{X: n0.X, Y: n0.Y, Z: r.X},
		v3.Vec{X: n1.X, Y: n1.Y, Z: r.Y},
		v3.Vec{X: n2.X, Y: n2.Y, Z: r.Z},
	)

	return v3.Vec{X: dx / det, Y: dy / det, Z: dz / det}, true
}

// det3 is the determinant of the matrix whose rows are r0, r1, r2.
func det3(r0, r1, r2 v3.Vec) float64 {
	return r0.Dot(r1.Cross(r2))
}
