package engine

import (
	"strings"
	"testing"

	"github.com/AlpyneDreams/Chisel-sub000/pkg/csg"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func vec(x, y, z float64) v3.Vec {
	return v3.Vec{X: x, Y: y, Z: z}
}

// evalTree evaluates source and fails the test on any error.
func evalTree(t *testing.T, source string) *csg.Tree {
	t.Helper()

	tree, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if tree == nil {
		t.Fatal("expected non-nil tree")
	}
	return tree
}

// onlyBrush returns the single brush of tree.
func onlyBrush(t *testing.T, tree *csg.Tree) *csg.Brush {
	t.Helper()

	brushes := tree.Brushes()
	if len(brushes) != 1 {
		t.Fatalf("expected 1 brush, got %d", len(brushes))
	}
	return brushes[0]
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

func TestBox(t *testing.T) {
	tree := evalTree(t, `(box :min (vec3 0 0 0) :max (vec3 64 32 16))`)
	b := onlyBrush(t, tree)

	if got := len(b.Sides()); got != 6 {
		t.Errorf("expected 6 sides, got %d", got)
	}
	if b.VolumeOperation() != csg.Fill(DefaultSolid) {
		t.Errorf("expected default %s, got %s", csg.Fill(DefaultSolid), b.VolumeOperation())
	}
	if b.Order() != 0 {
		t.Errorf("expected order 0, got %d", b.Order())
	}
	if got := b.Classify(vec(32, 16, 8)); got != csg.BrushInside {
		t.Errorf("center: expected inside, got %s", got)
	}
	if got := b.Classify(vec(64, 16, 8)); got != csg.BrushTouching {
		t.Errorf("+x face: expected touching, got %s", got)
	}

	// Evaluation leaves rebuilding to the caller.
	if got := len(tree.DirtyFaceCache()); got != 1 {
		t.Errorf("expected 1 brush with a dirty face cache, got %d", got)
	}
}

func TestCylinder(t *testing.T) {
	tests := []struct {
		name   string
		source string
		sides  int
	}{
		{"explicit segments", `(cylinder :center (vec3 0 0 0) :radius 8 :height 4 :segments 6)`, 8},
		{"default segments", `(cylinder :radius 8 :height 4)`, DefaultSegments + 2},
		{"float radius", `(cylinder :radius 0.5 :height 4 :segments 3)`, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := onlyBrush(t, evalTree(t, tt.source))
			if got := len(b.Sides()); got != tt.sides {
				t.Errorf("expected %d sides, got %d", tt.sides, got)
			}
			if got := b.Classify(vec(0, 0, 0)); got != csg.BrushInside {
				t.Errorf("center: expected inside, got %s", got)
			}
		})
	}
}

func TestWedge(t *testing.T) {
	b := onlyBrush(t, evalTree(t, `(wedge :min (vec3 0 0 0) :max (vec3 4 2 2))`))

	if got := len(b.Sides()); got != 5 {
		t.Errorf("expected 5 sides, got %d", got)
	}
	if got := b.Classify(vec(3, 1, 1.5)); got != csg.BrushOutside {
		t.Errorf("above the slope: expected outside, got %s", got)
	}
}

func TestPlaneForms(t *testing.T) {
	tree := evalTree(t, `
(def unit (brush :planes (list
  (plane 1 0 0 -1)
  (plane :normal (vec3 -1 0 0) :offset 0)
  (plane 0 1 0 -1)
  (plane 0 -1 0 0)
  (plane :points (list (vec3 0 0 1) (vec3 1 0 1) (vec3 0 1 1)))
  (plane 0 0 -1 0))))

(brush (plane -1 0 0 0) (plane 0 -1 0 0) (plane 0 0 -1 0) (plane 1 1 1 -1)
  :translate (vec3 10 0 0))
`)
	if tree.Len() != 2 {
		t.Fatalf("expected 2 brushes, got %d", tree.Len())
	}
	tree.Rebuild()

	cube, tetra := tree.Brushes()[0], tree.Brushes()[1]
	if got := cube.FaceCache().VertexCount(); got != 8 {
		t.Errorf("cube: expected 8 vertices, got %d", got)
	}
	if got := cube.Classify(vec(0.5, 0.5, 1.5)); got != csg.BrushOutside {
		t.Errorf("cube: above the top plane should be outside, got %s", got)
	}
	if got := tetra.FaceCache().VertexCount(); got != 4 {
		t.Errorf("tetrahedron: expected 4 vertices, got %d", got)
	}
	if got := tetra.Classify(vec(10.1, 0.1, 0.1)); got != csg.BrushInside {
		t.Errorf("tetrahedron: expected inside after translation, got %s", got)
	}
}

// ---------------------------------------------------------------------------
// Brush options
// ---------------------------------------------------------------------------

func TestBrushOptions(t *testing.T) {
	unit := `(box :min (vec3 0 0 0) :max (vec3 1 1 1) `

	tests := []struct {
		name    string
		options string
		check   func(t *testing.T, b *csg.Brush)
	}{
		{
			name:    "order",
			options: `:order 7`,
			check: func(t *testing.T, b *csg.Brush) {
				if b.Order() != 7 {
					t.Errorf("expected order 7, got %d", b.Order())
				}
			},
		},
		{
			name:    "fill",
			options: `:fill 3`,
			check: func(t *testing.T, b *csg.Brush) {
				if b.VolumeOperation() != csg.Fill(3) {
					t.Errorf("expected fill 3, got %s", b.VolumeOperation())
				}
			},
		},
		{
			name:    "replace list",
			options: `:replace (list 1 0)`,
			check: func(t *testing.T, b *csg.Brush) {
				if b.VolumeOperation() != csg.Replace(1, 0) {
					t.Errorf("expected replace 1 -> 0, got %s", b.VolumeOperation())
				}
			},
		},
		{
			name:    "replace array",
			options: `:replace [2 5]`,
			check: func(t *testing.T, b *csg.Brush) {
				if b.VolumeOperation() != csg.Replace(2, 5) {
					t.Errorf("expected replace 2 -> 5, got %s", b.VolumeOperation())
				}
			},
		},
		{
			name:    "translate",
			options: `:translate (vec3 10 0 0)`,
			check: func(t *testing.T, b *csg.Brush) {
				if got := b.Classify(vec(10.5, 0.5, 0.5)); got != csg.BrushInside {
					t.Errorf("expected moved brush to contain (10.5, 0.5, 0.5), got %s", got)
				}
			},
		},
		{
			name:    "rotate before translate",
			options: `:translate (vec3 0 0 5) :rotate (vec3 0 0 90)`,
			check: func(t *testing.T, b *csg.Brush) {
				if got := b.Classify(vec(-0.5, 0.5, 5.5)); got != csg.BrushInside {
					t.Errorf("expected turned brush to contain (-0.5, 0.5, 5.5), got %s", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, onlyBrush(t, evalTree(t, unit+tt.options+")")))
		})
	}
}

// ---------------------------------------------------------------------------
// Tree editing
// ---------------------------------------------------------------------------

func TestVoidVolume(t *testing.T) {
	tree := evalTree(t, `
(void-volume 1)
(box :min (vec3 0 0 0) :max (vec3 8 8 8) :fill 0)
`)
	if tree.VoidVolume() != 1 {
		t.Errorf("expected void volume 1, got %d", tree.VoidVolume())
	}
}

func TestDestroy(t *testing.T) {
	tree := evalTree(t, `
(def a (box :min (vec3 0 0 0) :max (vec3 1 1 1)))
(def b (box :min (vec3 2 0 0) :max (vec3 3 1 1)))
(destroy a)
`)
	b := onlyBrush(t, tree)
	if b.ID() != 2 {
		t.Errorf("expected the second brush to survive, got id %d", b.ID())
	}
}

func TestSetOrderAndTransforms(t *testing.T) {
	tree := evalTree(t, `
(def a (box :min (vec3 0 0 0) :max (vec3 1 1 1)))
(set-order a 5)
(translate a (vec3 0 0 10))
(rotate a (vec3 0 0 180))
`)
	b := onlyBrush(t, tree)
	if b.Order() != 5 {
		t.Errorf("expected order 5, got %d", b.Order())
	}
	if got := b.Classify(vec(-0.5, -0.5, 10.5)); got != csg.BrushInside {
		t.Errorf("expected transformed brush to contain (-0.5, -0.5, 10.5), got %s", got)
	}
	if got := b.Classify(vec(0.5, 0.5, 0.5)); got != csg.BrushOutside {
		t.Errorf("expected the original position to be empty, got %s", got)
	}
}

func TestVariableReference(t *testing.T) {
	tree := evalTree(t, `
(def w 32)
(box :min (vec3 0 0 0) :max (vec3 w w (* w 2)))
`)
	b := onlyBrush(t, tree)
	if got := b.Classify(vec(31, 31, 63)); got != csg.BrushInside {
		t.Errorf("expected (31, 31, 63) inside, got %s", got)
	}
}

func TestRebuildAfterEvaluate(t *testing.T) {
	tree := evalTree(t, `
;; a room carved out of a solid block
(def block (box :min (vec3 -8 -8 -8) :max (vec3 8 8 8)))
(def room (box :min (vec3 -4 -4 -4) :max (vec3 4 4 4) :fill 0 :order 1))
`)
	rebuilt := tree.Rebuild()
	if len(rebuilt) != 2 {
		t.Fatalf("expected 2 rebuilt brushes, got %d", len(rebuilt))
	}

	stats := tree.Stats()
	if stats.SplitFallbacks != 0 {
		t.Errorf("expected no split fallbacks, got %d", stats.SplitFallbacks)
	}
	// 6 outer faces of the block and 6 inner faces of the room.
	if stats.VisibleFragments != 12 {
		t.Errorf("expected 12 visible fragments, got %d", stats.VisibleFragments)
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"vec3 arity", `(vec3 1 2)`, "vec3 requires exactly 3 arguments"},
		{"vec3 type", `(vec3 1 2 "z")`, "expected number"},
		{"box missing max", `(box :min (vec3 0 0 0))`, "missing :max"},
		{"box inverted", `(box :min (vec3 1 1 1) :max (vec3 0 0 0))`, "must be below max"},
		{"fill and replace", `(box :min (vec3 0 0 0) :max (vec3 1 1 1) :fill 1 :replace (list 1 0))`, "mutually exclusive"},
		{"negative volume", `(box :min (vec3 0 0 0) :max (vec3 1 1 1) :fill -1)`, "out of range"},
		{"fractional order", `(box :min (vec3 0 0 0) :max (vec3 1 1 1) :order 1.5)`, "expected integer"},
		{"replace arity", `(box :min (vec3 0 0 0) :max (vec3 1 1 1) :replace (list 1))`, "expected (list from to)"},
		{"cylinder radius", `(cylinder :radius 0 :height 1)`, "radius must be positive"},
		{"cylinder height", `(cylinder :radius 1)`, "missing :height"},
		{"cylinder segments", `(cylinder :radius 1 :height 1 :segments 2)`, "segments must be at least 3"},
		{"brush too few planes", `(brush (plane 1 0 0 0))`, "at least 4 planes"},
		{"brush non-plane", `(brush 1 2 3 4)`, "expected plane"},
		{"zero normal", `(plane 0 0 0 1)`, "normal must not be zero"},
		{"plane without normal", `(plane :offset 1)`, "plane requires"},
		{"destroy non-brush", `(destroy 5)`, "expected brush"},
		{"void-volume arity", `(void-volume)`, "void-volume requires exactly 1 argument"},
		{"destroyed reference", `(def a (box :min (vec3 0 0 0) :max (vec3 1 1 1))) (destroy a) (set-order a 2)`, "destroyed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if tree != nil {
				t.Error("expected nil tree on eval error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected at least one eval error")
			}

			var msgs []string
			for _, e := range evalErrs {
				msgs = append(msgs, e.Message)
			}
			if joined := strings.Join(msgs, "\n"); !strings.Contains(joined, tt.wantMsg) {
				t.Errorf("errors %q do not mention %q", joined, tt.wantMsg)
			}
		})
	}
}

func TestSexpStrings(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"vec3", (&sexpVec3{vec: vec(1, 2.5, -3)}).SexpString(nil), "(vec3 1 2.5 -3)"},
		{"plane", (&sexpPlane{plane: csg.Plane{Normal: vec(0, 0, 1), Offset: -4}}).SexpString(nil), "(plane 0 0 1 -4)"},
		{"brush", (&sexpBrush{id: 9}).SexpString(nil), "(brush 9)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("SexpString() = %q, want %q", tt.got, tt.want)
			}
		})
	}
}
