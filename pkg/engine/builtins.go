package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/AlpyneDreams/Chisel-sub000/pkg/csg"
	"github.com/AlpyneDreams/Chisel-sub000/pkg/primitive"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

const (
	// DefaultVoid is the volume of a fresh tree outside every brush.
	DefaultVoid csg.VolumeID = 0

	// DefaultSolid is the volume brushes fill when no :fill or :replace
	// option is given.
	DefaultSolid csg.VolumeID = 1

	// DefaultSegments is the number of sides of a cylinder without a
	// :segments option.
	DefaultSegments = 16
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a point or direction.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPlane wraps a csg.Plane so it can be collected into a brush.
type sexpPlane struct {
	plane csg.Plane
}

func (p *sexpPlane) SexpString(ps *zygo.PrintState) string {
	n := p.plane.Normal
	return fmt.Sprintf("(plane %g %g %g %g)", n.X, n.Y, n.Z, p.plane.Offset)
}
func (p *sexpPlane) Type() *zygo.RegisteredType { return nil }

// sexpBrush refers to a brush in the tree being built. Only the id is held
// so a destroyed brush fails lookup instead of being edited.
type sexpBrush struct {
	id csg.ObjectID
}

func (b *sexpBrush) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(brush %d)", b.id)
}
func (b *sexpBrush) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// A keyword at the end of the list with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toUint32 extracts a non-negative integer that fits in 32 bits.
func toUint32(s zygo.Sexp) (uint32, error) {
	v, ok := s.(*zygo.SexpInt)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
	}
	if v.Val < 0 || v.Val > math.MaxUint32 {
		return 0, fmt.Errorf("%d is out of range [0, %d]", v.Val, uint32(math.MaxUint32))
	}
	return uint32(v.Val), nil
}

// toVolume extracts a volume id.
func toVolume(s zygo.Sexp) (csg.VolumeID, error) {
	v, err := toUint32(s)
	return csg.VolumeID(v), err
}

// toVec3 extracts a point from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toPlane extracts a plane from a sexpPlane.
func toPlane(s zygo.Sexp) (csg.Plane, error) {
	if p, ok := s.(*sexpPlane); ok {
		return p.plane, nil
	}
	return csg.Plane{}, fmt.Errorf("expected plane, got %T (%s)", s, s.SexpString(nil))
}

// toBrush resolves a brush reference against the tree.
func toBrush(tree *csg.Tree, s zygo.Sexp) (*csg.Brush, error) {
	ref, ok := s.(*sexpBrush)
	if !ok {
		return nil, fmt.Errorf("expected brush, got %T (%s)", s, s.SexpString(nil))
	}
	b := tree.Brush(ref.id)
	if b == nil {
		return nil, fmt.Errorf("brush %d was destroyed", ref.id)
	}
	return b, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// kwVec3 reads an optional vec3 keyword.
func kwVec3(pa kwArgs, key string) (v3.Vec, bool, error) {
	s, ok := pa.kw[key]
	if !ok {
		return v3.Vec{}, false, nil
	}
	v, err := toVec3(s)
	return v, true, err
}

// kwExtent reads the :min and :max corners of a box-shaped primitive.
func kwExtent(pa kwArgs) (min, max v3.Vec, err error) {
	min, ok, err := kwVec3(pa, "min")
	if err != nil {
		return min, max, fmt.Errorf("min: %w", err)
	}
	if !ok {
		return min, max, fmt.Errorf("missing :min")
	}
	max, ok, err = kwVec3(pa, "max")
	if err != nil {
		return min, max, fmt.Errorf("max: %w", err)
	}
	if !ok {
		return min, max, fmt.Errorf("missing :max")
	}
	if min.X >= max.X || min.Y >= max.Y || min.Z >= max.Z {
		return min, max, fmt.Errorf("min %v must be below max %v on every axis", min, max)
	}
	return min, max, nil
}

// kwPositive reads a required positive number.
func kwPositive(pa kwArgs, key string) (float64, error) {
	s, ok := pa.kw[key]
	if !ok {
		return 0, fmt.Errorf("missing :%s", key)
	}
	f, err := toFloat64(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %g", key, f)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Brush options
// ---------------------------------------------------------------------------

// brushOptions holds the options every brush-creating builtin accepts:
//
//	:order n  :fill v  :replace (list from to)  :rotate (vec3 ...)  :translate (vec3 ...)
//
// Rotation is in degrees about the origin and happens before translation.
type brushOptions struct {
	order     uint32
	op        csg.VolumeOperation
	rotate    *v3.Vec
	translate *v3.Vec
}

func parseBrushOptions(pa kwArgs) (brushOptions, error) {
	opts := brushOptions{op: csg.Fill(DefaultSolid)}

	if v, ok := pa.kw["order"]; ok {
		order, err := toUint32(v)
		if err != nil {
			return opts, fmt.Errorf("order: %w", err)
		}
		opts.order = order
	}

	fill, hasFill := pa.kw["fill"]
	replace, hasReplace := pa.kw["replace"]
	switch {
	case hasFill && hasReplace:
		return opts, fmt.Errorf(":fill and :replace are mutually exclusive")
	case hasFill:
		v, err := toVolume(fill)
		if err != nil {
			return opts, fmt.Errorf("fill: %w", err)
		}
		opts.op = csg.Fill(v)
	case hasReplace:
		items, err := sexpListToSlice(replace)
		if err != nil {
			return opts, fmt.Errorf("replace: %w", err)
		}
		if len(items) != 2 {
			return opts, fmt.Errorf("replace: expected (list from to), got %d items", len(items))
		}
		from, err := toVolume(items[0])
		if err != nil {
			return opts, fmt.Errorf("replace: from: %w", err)
		}
		to, err := toVolume(items[1])
		if err != nil {
			return opts, fmt.Errorf("replace: to: %w", err)
		}
		opts.op = csg.Replace(from, to)
	}

	if v, ok, err := kwVec3(pa, "rotate"); err != nil {
		return opts, fmt.Errorf("rotate: %w", err)
	} else if ok {
		opts.rotate = &v
	}
	if v, ok, err := kwVec3(pa, "translate"); err != nil {
		return opts, fmt.Errorf("translate: %w", err)
	} else if ok {
		opts.translate = &v
	}
	return opts, nil
}

// create adds a brush with the given sides to the tree.
func (o brushOptions) create(tree *csg.Tree, sides []csg.Side) *sexpBrush {
	if o.rotate != nil {
		sides = primitive.Rotate(sides, *o.rotate)
	}
	if o.translate != nil {
		sides = primitive.Translate(sides, *o.translate)
	}
	b := tree.CreateBrush(sides)
	b.SetOrder(o.order)
	b.SetVolumeOperation(o.op)
	return &sexpBrush{id: b.ID()}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the brush DSL into a zygomys environment. The
// builtins create and edit brushes in tree as the script runs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, tree *csg.Tree) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (plane 0 0 1 -10)
	// (plane :normal (vec3 0 0 1) :offset -10)
	// (plane :points (list a b c))
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var p csg.Plane
		switch {
		case len(pa.positional) == 4:
			var c [4]float64
			for i, s := range pa.positional {
				f, err := toFloat64(s)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("plane: argument %d: %w", i+1, err)
				}
				c[i] = f
			}
			p = csg.NewPlane(v3.Vec{X: c[0], Y: c[1], Z: c[2]}, c[3])

		case pa.kw["points"] != nil:
			items, err := sexpListToSlice(pa.kw["points"])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: points: %w", err)
			}
			if len(items) != 3 {
				return zygo.SexpNull, fmt.Errorf("plane: points: expected 3 points, got %d", len(items))
			}
			var pts [3]v3.Vec
			for i, s := range items {
				if pts[i], err = toVec3(s); err != nil {
					return zygo.SexpNull, fmt.Errorf("plane: points: %w", err)
				}
			}
			p = csg.PlaneFromPoints(pts[0], pts[1], pts[2])

		default:
			normal, ok, err := kwVec3(pa, "normal")
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: normal: %w", err)
			}
			if !ok {
				return zygo.SexpNull, fmt.Errorf("plane requires 4 numbers, :normal and :offset, or :points")
			}
			offset := 0.0
			if v, ok := pa.kw["offset"]; ok {
				if offset, err = toFloat64(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("plane: offset: %w", err)
				}
			}
			p = csg.NewPlane(normal, offset)
		}

		if p.IsZero() {
			return zygo.SexpNull, fmt.Errorf("plane: normal must not be zero")
		}
		return &sexpPlane{plane: p}, nil
	})

	// -----------------------------------------------------------------------
	// (box :min (vec3 0 0 0) :max (vec3 64 64 64) :order 1 :fill 2)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		min, max, err := kwExtent(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		opts, err := parseBrushOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return opts.create(tree, primitive.Box(min, max)), nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :center (vec3 0 0 0) :radius 16 :height 32 :segments 12)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		center, _, err := kwVec3(pa, "center")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: center: %w", err)
		}
		radius, err := kwPositive(pa, "radius")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		height, err := kwPositive(pa, "height")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		segments := DefaultSegments
		if v, ok := pa.kw["segments"]; ok {
			n, err := toUint32(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
			if n < primitive.MinSegments {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments must be at least %d, got %d", primitive.MinSegments, n)
			}
			segments = int(n)
		}

		opts, err := parseBrushOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return opts.create(tree, primitive.Cylinder(center, radius, height, segments)), nil
	})

	// -----------------------------------------------------------------------
	// (wedge :min (vec3 0 0 0) :max (vec3 64 32 16))
	// -----------------------------------------------------------------------
	env.AddFunction("wedge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		min, max, err := kwExtent(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wedge: %w", err)
		}
		opts, err := parseBrushOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wedge: %w", err)
		}
		return opts.create(tree, primitive.Wedge(min, max)), nil
	})

	// -----------------------------------------------------------------------
	// (brush :planes (list p1 p2 p3 p4 ...) :order 2)
	// (brush p1 p2 p3 p4 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("brush", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		items := pa.positional
		if v, ok := pa.kw["planes"]; ok {
			var err error
			if items, err = sexpListToSlice(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("brush: planes: %w", err)
			}
		}
		if len(items) < 4 {
			return zygo.SexpNull, fmt.Errorf("brush: a closed brush needs at least 4 planes, got %d", len(items))
		}

		planes := make([]csg.Plane, len(items))
		for i, s := range items {
			p, err := toPlane(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("brush: plane %d: %w", i+1, err)
			}
			planes[i] = p
		}

		opts, err := parseBrushOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush: %w", err)
		}
		return opts.create(tree, primitive.FromPlanes(planes...)), nil
	})

	// -----------------------------------------------------------------------
	// (void-volume 1)
	// -----------------------------------------------------------------------
	env.AddFunction("void_volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("void-volume requires exactly 1 argument, got %d", len(args))
		}
		v, err := toVolume(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("void-volume: %w", err)
		}
		tree.SetVoidVolume(v)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (destroy b)
	// -----------------------------------------------------------------------
	env.AddFunction("destroy", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("destroy requires exactly 1 argument, got %d", len(args))
		}
		b, err := toBrush(tree, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("destroy: %w", err)
		}
		tree.DestroyBrush(b.ID())
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (set-order b 3)
	// -----------------------------------------------------------------------
	env.AddFunction("set_order", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("set-order requires a brush and an order, got %d arguments", len(args))
		}
		b, err := toBrush(tree, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-order: %w", err)
		}
		order, err := toUint32(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-order: order: %w", err)
		}
		b.SetOrder(order)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (translate b (vec3 0 0 16))
	// (rotate b (vec3 0 0 45))
	// -----------------------------------------------------------------------
	transforms := map[string]func([]csg.Side, v3.Vec) []csg.Side{
		"translate": primitive.Translate,
		"rotate":    primitive.Rotate,
	}
	for fn, apply := range transforms {
		fn, apply := fn, apply
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires a brush and a vec3, got %d arguments", fn, len(args))
			}
			b, err := toBrush(tree, args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			v, err := toVec3(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			b.SetSides(apply(b.Sides(), v))
			return args[0], nil
		})
	}
}
