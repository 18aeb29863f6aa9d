// Package tessellate walks a rebuilt CSG tree and produces triangle meshes
// from its visible fragments. One mesh is produced per brush.
package tessellate

import (
	"github.com/AlpyneDreams/Chisel-sub000/pkg/csg"
	"github.com/AlpyneDreams/Chisel-sub000/pkg/mesh"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrDirtyTree is the error type returned when a tree has changes that were
// not rebuilt yet.
const ErrDirtyTree = "dirty_tree"

// Tessellate produces one triangle mesh per brush from the tree's visible
// fragments. Fragments whose back volume is air are wound the other way so
// they face into the solid they bound. The tessellator is read-only and
// never mutates the tree.
func Tessellate(tree *csg.Tree, air csg.VolumeID) ([]*mesh.Mesh, error) {
	if tree == nil {
		return nil, nil
	}

	if dirty := len(tree.DirtyFaceCache()) + len(tree.DirtyFragments()); dirty != 0 {
		return nil, errors.New("tessellate: tree has pending changes").
			WithType(ErrDirtyTree).
			WithTag("dirty_brushes", dirty)
	}

	var meshes []*mesh.Mesh
	for _, b := range tree.Brushes() {
		m := Brush(b, air)
		if m.IsEmpty() {
			continue
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// Brush triangulates the visible fragments of every face of b.
func Brush(b *csg.Brush, air csg.VolumeID) *mesh.Mesh {
	m := &mesh.Mesh{Brush: uint64(b.ID())}
	faces := b.Faces()
	for i := range faces {
		for j := range faces[i].Fragments {
			Fragment(m, &faces[i].Fragments[j], air)
		}
	}
	return m
}

// Fragment appends frag to m as a triangle fan if it is visible.
func Fragment(m *mesh.Mesh, frag *csg.Fragment, air csg.VolumeID) {
	if !frag.Visible() || len(frag.Vertices) < 3 {
		return
	}

	poly := frag.Positions()
	normal := frag.Plane.Normal
	if frag.Back.Volume == air {
		reverse(poly)
		normal = normal.Neg()
	}

	for i := 1; i+1 < len(poly); i++ {
		tri := sdf.Triangle3{poly[0], poly[i], poly[i+1]}
		n := normal
		if area := poly[i].Sub(poly[0]).Cross(poly[i+1].Sub(poly[0])).Length(); area > 1e-12 {
			n = tri.Normal()
		}
		m.AddTriangle(tri[0], tri[1], tri[2], n)
	}
}

func reverse(poly []v3.Vec) {
	for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
		poly[i], poly[j] = poly[j], poly[i]
	}
}
