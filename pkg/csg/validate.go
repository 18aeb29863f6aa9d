package csg

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Severity indicates whether a validation finding makes a brush's output
// unreliable or is merely informational.
type Severity int

const (
	SeverityError   Severity = iota // output is wrong or missing
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Brush    ObjectID `json:"brush,omitempty"` // NoObject for tree-level findings
	Side     int      `json:"side"`            // -1 when no single side is at fault
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (e ValidationError) Error() string {
	switch {
	case e.Brush == NoObject:
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	case e.Side < 0:
		return fmt.Sprintf("[%s] brush %d: %s", e.Severity, e.Brush, e.Message)
	default:
		return fmt.Sprintf("[%s] brush %d side %d: %s", e.Severity, e.Brush, e.Side, e.Message)
	}
}

// Validate reports input the kernel tolerates but cannot resolve cleanly:
// degenerate brushes, sides that never touch their brush, corners shared by
// more than three sides, and split fallbacks. It reads the geometry of the
// last rebuild and never mutates the tree.
func Validate(t *Tree) []ValidationError {
	var errs []ValidationError
	if n := len(t.dirtyFaceCache) + len(t.dirtyFragments); n > 0 {
		errs = append(errs, ValidationError{
			Side:     -1,
			Message:  fmt.Sprintf("%d brushes have changes that were not rebuilt", n),
			Severity: SeverityWarning,
		})
	}

	for _, id := range t.ids {
		errs = append(errs, validateBrush(t.brushes[id])...)
	}

	if t.fallbacks > 0 {
		errs = append(errs, ValidationError{
			Side:     -1,
			Message:  fmt.Sprintf("%d splits kept a vertex unsplit", t.fallbacks),
			Severity: SeverityWarning,
		})
	}
	return errs
}

func validateBrush(b *Brush) []ValidationError {
	var errs []ValidationError
	for i, s := range b.sides {
		if s.Plane.IsZero() {
			errs = append(errs, ValidationError{
				Brush:    b.id,
				Side:     i,
				Message:  "side has no normal",
				Severity: SeverityError,
			})
		}
	}

	if b.cache == nil {
		return errs
	}
	if _, ok := b.cache.Bounds(); !ok {
		return append(errs, ValidationError{
			Brush:    b.id,
			Side:     -1,
			Message:  "sides do not enclose a volume",
			Severity: SeverityError,
		})
	}

	for i, f := range b.cache.Faces {
		if len(f.Vertices) < 3 && !f.Plane.IsZero() {
			errs = append(errs, ValidationError{
				Brush:    b.id,
				Side:     i,
				Message:  "side does not touch the brush",
				Severity: SeverityWarning,
			})
		}
	}

	for _, pos := range sharedCorners(b.cache) {
		errs = append(errs, ValidationError{
			Brush:    b.id,
			Side:     -1,
			Message:  fmt.Sprintf("more than three sides meet at %v", pos),
			Severity: SeverityError,
		})
	}
	return errs
}

// sharedCorners returns the positions where distinct corners coincide,
// which happens when more than three sides meet in one point.
func sharedCorners(fc *FaceCache) []v3.Vec {
	seen := make(map[[3]FaceRef]struct{})
	var corners []Vertex
	for _, f := range fc.Faces {
		for _, v := range f.Vertices {
			if _, ok := seen[v.Faces]; ok {
				continue
			}
			seen[v.Faces] = struct{}{}
			corners = append(corners, v)
		}
	}

	var out []v3.Vec
	reported := make([]bool, len(corners))
	for i := range corners {
		if reported[i] {
			continue
		}
		shared := false
		for j := i + 1; j < len(corners); j++ {
			if corners[i].Position.Sub(corners[j].Position).Length() <= Epsilon {
				reported[j] = true
				shared = true
			}
		}
		if shared {
			out = append(out, corners[i].Position)
		}
	}
	return out
}
