package csg

import (
	"sort"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Brush is a convex solid owned by a Tree: the intersection of the back
// half-spaces of its sides.
type Brush struct {
	tree  *Tree
	id    ObjectID
	sides []Side
	order uint32
	op    VolumeOperation

	cache        *FaceCache
	intersecting []ObjectID
}

// ID returns the brush's object id.
func (b *Brush) ID() ObjectID {
	return b.id
}

// Sides returns a copy of the brush's sides.
func (b *Brush) Sides() []Side {
	return append([]Side(nil), b.sides...)
}

// SetSides replaces every side of the brush. The face cache is rebuilt on
// the next Rebuild.
func (b *Brush) SetSides(sides []Side) {
	b.sides = append([]Side(nil), sides...)
	if b.tree != nil {
		b.tree.markDirtyFaceCache(b)
	}
}

// Order returns the brush's precedence. Higher orders override lower ones.
func (b *Brush) Order() uint32 {
	return b.order
}

// SetOrder changes the brush's precedence.
func (b *Brush) SetOrder(order uint32) {
	if order == b.order {
		return
	}
	b.order = order
	if b.tree != nil {
		b.tree.markDirtyFragments(b)
	}
}

// VolumeOperation returns the operation the brush applies to the volumes it
// covers.
func (b *Brush) VolumeOperation() VolumeOperation {
	return b.op
}

// SetVolumeOperation changes the operation the brush applies to the volumes
// it covers.
func (b *Brush) SetVolumeOperation(op VolumeOperation) {
	if op == b.op {
		return
	}
	b.op = op
	if b.tree != nil {
		b.tree.markDirtyFragments(b)
	}
}

// Transform maps every side through m.
func (b *Brush) Transform(m sdf.M44) {
	sides := b.Sides()
	for i := range sides {
		sides[i].Plane = sides[i].Plane.Transform(m)
	}
	b.SetSides(sides)
}

// Classify reports whether pt is inside, outside or on the boundary of the
// brush. It reads the sides directly and does not need a rebuilt cache.
func (b *Brush) Classify(pt v3.Vec) BrushRelation {
	touching := false
	for _, s := range b.sides {
		switch s.Plane.Classify(pt) {
		case PointFront:
			return BrushOutside
		case PointAligned:
			touching = true
		}
	}
	if touching {
		return BrushTouching
	}
	return BrushInside
}

// Bounds returns the box around the brush's corners as of the last rebuild.
// ok is false if the brush has not been rebuilt or is degenerate.
func (b *Brush) Bounds() (AABB, bool) {
	if b.cache == nil {
		return AABB{}, false
	}
	return b.cache.Bounds()
}

// FaceCache returns the geometry built by the last rebuild, or nil.
func (b *Brush) FaceCache() *FaceCache {
	return b.cache
}

// Faces returns the faces built by the last rebuild.
func (b *Brush) Faces() []Face {
	if b.cache == nil {
		return nil
	}
	return b.cache.Faces
}

// Intersecting returns the ids of the brushes whose bounds overlapped this
// brush's at the last rebuild.
func (b *Brush) Intersecting() []ObjectID {
	return append([]ObjectID(nil), b.intersecting...)
}

// ComesBefore reports whether b is resolved before o: lower order first,
// then lower id.
func (b *Brush) ComesBefore(o *Brush) bool {
	if b.order != o.order {
		return b.order < o.order
	}
	return b.id < o.id
}

func (b *Brush) rebuildFaceCache() {
	b.cache = NewFaceCache(b.id, b.sides)
}

func (b *Brush) rebuildIntersecting() {
	b.intersecting = b.intersecting[:0]

	bounds, ok := b.Bounds()
	if !ok {
		return
	}
	for _, id := range b.tree.ids {
		if id == b.id {
			continue
		}
		other, ok := b.tree.brushes[id].Bounds()
		if ok && bounds.Intersects(other) {
			b.intersecting = append(b.intersecting, id)
		}
	}
}

func (b *Brush) removeIntersecting(id ObjectID) bool {
	for i, n := range b.intersecting {
		if n == id {
			b.intersecting = append(b.intersecting[:i], b.intersecting[i+1:]...)
			return true
		}
	}
	return false
}

// rebuildFaceFragments carves every face against the intersecting brushes
// in resolution order and records the resulting volumes. It returns the
// number of split fallbacks hit.
func (b *Brush) rebuildFaceFragments(void VolumeID) int {
	if b.cache == nil {
		return 0
	}

	neighbors := make([]*Brush, 0, len(b.intersecting))
	for _, id := range b.intersecting {
		if n := b.tree.brushes[id]; n != nil && n.cache != nil {
			neighbors = append(neighbors, n)
		}
	}
	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].ComesBefore(neighbors[j])
	})

	var c carver
	pieces := make([]Fragment, 0, 8)

	for fi := range b.cache.Faces {
		face := &b.cache.Faces[fi]
		if len(face.Vertices) < 3 {
			face.Fragments = nil
			continue
		}

		frags := []Fragment{{
			Face:     face.Ref,
			Plane:    face.Plane,
			Front:    FragmentSide{Volume: void, Brush: NoObject},
			Back:     FragmentSide{Volume: b.op.Apply(void), Brush: b.id},
			Vertices: append([]Vertex(nil), face.Vertices...),
			Edges:    append([]Edge(nil), face.Edges...),
		}}

		for _, other := range neighbors {
			before := b.ComesBefore(other)
			next := make([]Fragment, 0, len(frags))

			for _, frag := range frags {
				frag.Relation = RelationInside
				pieces = c.carve(pieces[:0], frag, other.cache.Faces, 0)

				for _, p := range pieces {
					switch p.Relation {
					case RelationInside:
						if before {
							p.Back = FragmentSide{Volume: other.op.Apply(p.Back.Volume), Brush: other.id}
						}
						p.Front = FragmentSide{Volume: other.op.Apply(p.Front.Volume), Brush: other.id}
					case RelationAligned:
						if before {
							continue
						}
					case RelationReverseAligned:
						if before {
							continue
						}
						p.Front = FragmentSide{Volume: other.op.Apply(p.Front.Volume), Brush: other.id}
					}
					next = append(next, p)
				}
			}
			frags = next
		}

		face.Fragments = frags
	}

	return c.fallbacks
}
