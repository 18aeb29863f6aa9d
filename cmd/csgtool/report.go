package main

import (
	"io"

	"github.com/AlpyneDreams/Chisel-sub000/pkg/csg"
	"github.com/AlpyneDreams/Chisel-sub000/pkg/engine"
	"github.com/AlpyneDreams/Chisel-sub000/pkg/mesh"
	"github.com/AlpyneDreams/Chisel-sub000/pkg/tessellate"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
)

const (
	formatJSON    = "json"
	formatSummary = "summary"
)

// Error types reported by the tool.
const (
	ErrEvalFailed    = "eval_failed"
	ErrUnknownFormat = "unknown_format"
)

// colorPalette is a default palette used to tell brushes apart in a viewer.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// MeshData is the JSON mesh format of a brush's visible surface.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Color    string    `json:"color"`
}

// BrushReport describes one brush after a rebuild.
type BrushReport struct {
	ID               csg.ObjectID `json:"id"`
	Order            uint32       `json:"order"`
	Operation        string       `json:"operation"`
	Bounds           *csg.AABB    `json:"bounds,omitempty"`
	Faces            int          `json:"faces"`
	Fragments        int          `json:"fragments"`
	VisibleFragments int          `json:"visible_fragments"`
	Triangles        int          `json:"triangles"`
	Mesh             *MeshData    `json:"mesh,omitempty"`
}

// Report is the result of running a script through the whole pipeline.
type Report struct {
	Void      csg.VolumeID          `json:"void"`
	Air       csg.VolumeID          `json:"air"`
	Brushes   []BrushReport         `json:"brushes"`
	Stats     csg.Stats             `json:"stats"`
	Triangles int                   `json:"triangles"`
	Issues    []csg.ValidationError `json:"issues,omitempty"`
	Errors    []engine.EvalError    `json:"errors,omitempty"`
}

// evaluate runs source through the engine, rebuilds the resulting tree and
// tessellates it. Script errors come back in the report alongside an error
// of type ErrEvalFailed.
func evaluate(eng *engine.Engine, source string, air csg.VolumeID) (Report, error) {
	report := Report{
		Air:     air,
		Brushes: []BrushReport{},
	}

	tree, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		return report, errors.New("evaluating script failed").Wrap(err)
	}
	if len(evalErrs) > 0 {
		report.Errors = evalErrs
		return report, errors.New("script has errors").
			WithType(ErrEvalFailed).
			WithTag("errors", len(evalErrs))
	}

	tree.Rebuild()

	meshes, err := tessellate.Tessellate(tree, air)
	if err != nil {
		return report, errors.New("tessellating tree failed").Wrap(err)
	}
	byBrush := make(map[csg.ObjectID]*mesh.Mesh, len(meshes))
	for _, m := range meshes {
		byBrush[csg.ObjectID(m.Brush)] = m
	}

	report.Void = tree.VoidVolume()
	report.Stats = tree.Stats()
	report.Issues = csg.Validate(tree)

	for i, b := range tree.Brushes() {
		br := BrushReport{
			ID:        b.ID(),
			Order:     b.Order(),
			Operation: b.VolumeOperation().String(),
		}
		if bounds, ok := b.Bounds(); ok {
			br.Bounds = &bounds
		}

		faces := b.Faces()
		for j := range faces {
			if len(faces[j].Vertices) < 3 {
				continue
			}
			br.Faces++
			br.Fragments += len(faces[j].Fragments)
			br.VisibleFragments += len(faces[j].VisibleFragments())
		}

		if m, ok := byBrush[b.ID()]; ok {
			br.Triangles = m.TriangleCount()
			br.Mesh = &MeshData{
				Vertices: m.Vertices,
				Normals:  m.Normals,
				Indices:  m.Indices,
				Color:    colorPalette[i%len(colorPalette)],
			}
		}

		report.Triangles += br.Triangles
		report.Brushes = append(report.Brushes, br)
	}
	return report, nil
}

// withoutMeshes returns a copy of r with the triangle data dropped.
func withoutMeshes(r Report) Report {
	brushes := make([]BrushReport, len(r.Brushes))
	for i, b := range r.Brushes {
		b.Mesh = nil
		brushes[i] = b
	}
	r.Brushes = brushes
	return r
}

// writeReport writes r to w as JSON or logs a per-brush summary.
func writeReport(w io.Writer, r Report, format string, indent bool) error {
	switch format {
	case formatJSON:
		var data []byte
		var err error
		if indent {
			data, err = json.MarshalIndent(r, "", "  ")
		} else {
			data, err = json.Marshal(r)
		}
		if err != nil {
			return errors.New("encoding report failed").Wrap(err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return errors.New("writing report failed").Wrap(err)
		}
		return nil

	case formatSummary:
		logSummary(r)
		return nil

	default:
		return errors.Newf("unknown report format %q", format).
			WithType(ErrUnknownFormat).
			WithTag("format", format)
	}
}

func logSummary(r Report) {
	for _, b := range r.Brushes {
		entry := logs.
			WithTag("brush", b.ID).
			WithTag("order", b.Order).
			WithTag("operation", b.Operation).
			WithTag("faces", b.Faces).
			WithTag("fragments", b.Fragments).
			WithTag("visible_fragments", b.VisibleFragments).
			WithTag("triangles", b.Triangles)
		if b.Bounds != nil {
			entry = entry.
				WithTag("min", b.Bounds.Min).
				WithTag("max", b.Bounds.Max)
		}
		entry.Info("brush")
	}

	logs.WithTag("brushes", r.Stats.Brushes).
		WithTag("faces", r.Stats.Faces).
		WithTag("fragments", r.Stats.Fragments).
		WithTag("visible_fragments", r.Stats.VisibleFragments).
		WithTag("split_fallbacks", r.Stats.SplitFallbacks).
		WithTag("triangles", r.Triangles).
		WithTag("void", r.Void).
		WithTag("air", r.Air).
		Info("csg tree summary")
}
