// Package primitive builds side sets for common convex solids. Each side
// carries its name as user data so clients can tell faces apart.
package primitive

import (
	"math"

	"github.com/AlpyneDreams/Chisel-sub000/pkg/csg"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MinSegments is the smallest number of sides a cylinder may have.
const MinSegments = 3

// Box returns the six sides of the axis-aligned box spanning min and max,
// in the order +X, -X, +Y, -Y, +Z, -Z.
func Box(min, max v3.Vec) []csg.Side {
	return []csg.Side{
		side(v3.Vec{X: 1}, max, "+x"),
		side(v3.Vec{X: -1}, min, "-x"),
		side(v3.Vec{Y: 1}, max, "+y"),
		side(v3.Vec{Y: -1}, min, "-y"),
		side(v3.Vec{Z: 1}, max, "+z"),
		side(v3.Vec{Z: -1}, min, "-z"),
	}
}

// Cylinder returns a prism with segments sides around an axis parallel to
// Z. center is the middle of the prism; the sides are tangent to a circle
// of the given radius. Fewer than MinSegments segments are raised to
// MinSegments.
func Cylinder(center v3.Vec, radius, height float64, segments int) []csg.Side {
	if segments < MinSegments {
		segments = MinSegments
	}

	half := v3.Vec{Z: height / 2}
	sides := make([]csg.Side, 0, segments+2)
	sides = append(sides,
		side(v3.Vec{Z: 1}, center.Add(half), "top"),
		side(v3.Vec{Z: -1}, center.Sub(half), "bottom"),
	)

	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		n := v3.Vec{X: math.Cos(a), Y: math.Sin(a)}
		sides = append(sides, side(n, center.Add(n.MulScalar(radius)), "side"))
	}
	return sides
}

// Wedge returns a right triangular prism inside the box spanning min and
// max. The slope runs from the top of the -X end down to the bottom of the
// +X end.
func Wedge(min, max v3.Vec) []csg.Side {
	size := max.Sub(min)
	slope := v3.Vec{X: size.Z, Z: size.X}

	return []csg.Side{
		side(slope, v3.Vec{X: max.X, Y: min.Y, Z: min.Z}, "slope"),
		side(v3.Vec{X: -1}, min, "-x"),
		side(v3.Vec{Y: 1}, max, "+y"),
		side(v3.Vec{Y: -1}, min, "-y"),
		side(v3.Vec{Z: -1}, min, "-z"),
	}
}

// FromPlanes wraps bare planes as sides without user data.
func FromPlanes(planes ...csg.Plane) []csg.Side {
	sides := make([]csg.Side, len(planes))
	for i, p := range planes {
		sides[i].Plane = p
	}
	return sides
}

// Transform returns a copy of sides mapped through m.
func Transform(sides []csg.Side, m sdf.M44) []csg.Side {
	out := make([]csg.Side, len(sides))
	for i, s := range sides {
		out[i] = csg.Side{Plane: s.Plane.Transform(m), UserData: s.UserData}
	}
	return out
}

// Translate returns a copy of sides moved by v.
func Translate(sides []csg.Side, v v3.Vec) []csg.Side {
	return Transform(sides, sdf.Translate3d(v))
}

// Rotate returns a copy of sides rotated about the origin by Euler angles
// in degrees, applied X first, then Y, then Z.
func Rotate(sides []csg.Side, degrees v3.Vec) []csg.Side {
	return Transform(sides, RotationMatrix(degrees))
}

// RotationMatrix returns the rotation for Euler angles in degrees, applied
// X first, then Y, then Z.
func RotationMatrix(degrees v3.Vec) sdf.M44 {
	xRad := degrees.X * math.Pi / 180.0
	yRad := degrees.Y * math.Pi / 180.0
	zRad := degrees.Z * math.Pi / 180.0

	return sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
}

// side returns the side with outward normal n passing through p.
func side(n, p v3.Vec, name string) csg.Side {
	return csg.Side{
		Plane:    csg.NewPlane(n, -n.Dot(p)),
		UserData: name,
	}
}
