package csg

import (
	"sort"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
)

// Tree owns a set of brushes and resolves their overlaps into fragments.
// Mutations only mark state dirty; Rebuild does the work. A Tree is not safe
// for concurrent use.
type Tree struct {
	brushes map[ObjectID]*Brush
	ids     []ObjectID
	nextID  ObjectID
	void    VolumeID

	dirtyFaceCache map[ObjectID]struct{}
	dirtyFragments map[ObjectID]struct{}

	fallbacks int
}

// NewTree returns an empty tree whose space outside every brush holds void.
func NewTree(void VolumeID) *Tree {
	return &Tree{
		brushes:        make(map[ObjectID]*Brush),
		nextID:         1,
		void:           void,
		dirtyFaceCache: make(map[ObjectID]struct{}),
		dirtyFragments: make(map[ObjectID]struct{}),
	}
}

// CreateBrush adds a brush with the given sides. It fills with volume 0 at
// order 0 until told otherwise.
func (t *Tree) CreateBrush(sides []Side) *Brush {
	b := &Brush{
		tree:  t,
		id:    t.nextID,
		sides: append([]Side(nil), sides...),
	}
	t.nextID++
	t.brushes[b.id] = b
	t.ids = append(t.ids, b.id)
	t.markDirtyFaceCache(b)
	return b
}

// DestroyBrush removes a brush and schedules its former neighbors for a
// fragment rebuild. It reports whether the brush existed.
func (t *Tree) DestroyBrush(id ObjectID) bool {
	b, ok := t.brushes[id]
	if !ok {
		return false
	}

	for _, other := range t.brushes {
		if other.removeIntersecting(id) {
			t.dirtyFragments[other.id] = struct{}{}
		}
	}
	for _, n := range b.intersecting {
		if _, ok := t.brushes[n]; ok {
			t.dirtyFragments[n] = struct{}{}
		}
	}

	delete(t.dirtyFaceCache, id)
	delete(t.dirtyFragments, id)
	delete(t.brushes, id)
	for i, n := range t.ids {
		if n == id {
			t.ids = append(t.ids[:i], t.ids[i+1:]...)
			break
		}
	}

	b.tree = nil
	b.intersecting = nil
	return true
}

// Brush returns the brush with the given id, or nil if it does not exist.
func (t *Tree) Brush(id ObjectID) *Brush {
	return t.brushes[id]
}

// Brushes returns every brush in creation order.
func (t *Tree) Brushes() []*Brush {
	out := make([]*Brush, len(t.ids))
	for i, id := range t.ids {
		out[i] = t.brushes[id]
	}
	return out
}

// Len returns the number of brushes.
func (t *Tree) Len() int {
	return len(t.ids)
}

// VoidVolume returns the volume outside every brush.
func (t *Tree) VoidVolume() VolumeID {
	return t.void
}

// SetVoidVolume changes the volume outside every brush, which affects every
// fragment.
func (t *Tree) SetVoidVolume(v VolumeID) {
	if v == t.void {
		return
	}
	t.void = v
	for _, id := range t.ids {
		t.dirtyFragments[id] = struct{}{}
	}
}

// MarkDirtyFaceCache schedules the brush's geometry for a rebuild.
func (t *Tree) MarkDirtyFaceCache(id ObjectID) {
	if b := t.brushes[id]; b != nil {
		t.markDirtyFaceCache(b)
	}
}

// MarkDirtyFragments schedules the brush's fragments for a rebuild.
func (t *Tree) MarkDirtyFragments(id ObjectID) {
	if b := t.brushes[id]; b != nil {
		t.markDirtyFragments(b)
	}
}

// DirtyFaceCache returns the ids waiting for a geometry rebuild, sorted.
func (t *Tree) DirtyFaceCache() []ObjectID {
	return sortedIDs(t.dirtyFaceCache)
}

// DirtyFragments returns the ids waiting for a fragment rebuild, sorted.
func (t *Tree) DirtyFragments() []ObjectID {
	return sortedIDs(t.dirtyFragments)
}

// markDirtyFaceCache marks the brush's geometry dirty. Its fragments and
// those of every current neighbor depend on that geometry.
func (t *Tree) markDirtyFaceCache(b *Brush) {
	t.dirtyFaceCache[b.id] = struct{}{}
	t.markDirtyFragments(b)
}

func (t *Tree) markDirtyFragments(b *Brush) {
	t.dirtyFragments[b.id] = struct{}{}
	for _, n := range b.intersecting {
		if _, ok := t.brushes[n]; ok {
			t.dirtyFragments[n] = struct{}{}
		}
	}
}

// Rebuild brings every dirty brush up to date and returns the ids of the
// brushes it touched, sorted. Geometry is rebuilt first, then neighbor
// lists of the rebuilt brushes, then the fragments of every brush that
// depends on them.
func (t *Tree) Rebuild() []ObjectID {
	if len(t.dirtyFaceCache) == 0 && len(t.dirtyFragments) == 0 {
		return nil
	}
	start := time.Now()

	touched := make(map[ObjectID]struct{}, len(t.dirtyFragments))
	refreshed := make(map[ObjectID]struct{}, len(t.dirtyFaceCache))

	faceCacheIDs := sortedIDs(t.dirtyFaceCache)
	for _, id := range faceCacheIDs {
		t.brushes[id].rebuildFaceCache()
		t.dirtyFragments[id] = struct{}{}
		touched[id] = struct{}{}
	}

	for _, id := range faceCacheIDs {
		b := t.brushes[id]
		b.rebuildIntersecting()
		refreshed[id] = struct{}{}
		for _, n := range b.intersecting {
			t.dirtyFragments[n] = struct{}{}
		}
	}

	fragmentIDs := sortedIDs(t.dirtyFragments)
	fallbacks := 0
	for _, id := range fragmentIDs {
		b := t.brushes[id]
		if _, ok := refreshed[id]; !ok {
			b.rebuildIntersecting()
		}
		fallbacks += b.rebuildFaceFragments(t.void)
		touched[id] = struct{}{}
	}
	t.fallbacks += fallbacks

	clear(t.dirtyFaceCache)
	clear(t.dirtyFragments)

	stats := t.Stats()
	instrumentRebuild(start, len(faceCacheIDs), len(fragmentIDs), stats.Fragments)
	logs.WithTag("face_caches", len(faceCacheIDs)).
		WithTag("fragment_brushes", len(fragmentIDs)).
		WithTag("fragments", stats.Fragments).
		WithTag("split_fallbacks", fallbacks).
		WithTag("duration", time.Since(start).String()).
		Debug("csg tree rebuilt")

	return sortedIDs(touched)
}

// Stats summarizes the tree as of the last rebuild.
type Stats struct {
	Brushes          int `json:"brushes"`
	Faces            int `json:"faces"`
	Fragments        int `json:"fragments"`
	VisibleFragments int `json:"visible_fragments"`
	SplitFallbacks   int `json:"split_fallbacks"`
}

// Stats counts brushes, faces and fragments. SplitFallbacks accumulates over
// the life of the tree.
func (t *Tree) Stats() Stats {
	s := Stats{
		Brushes:        len(t.ids),
		SplitFallbacks: t.fallbacks,
	}
	for _, id := range t.ids {
		for _, f := range t.brushes[id].Faces() {
			if len(f.Vertices) < 3 {
				continue
			}
			s.Faces++
			s.Fragments += len(f.Fragments)
			for i := range f.Fragments {
				if f.Fragments[i].Visible() {
					s.VisibleFragments++
				}
			}
		}
	}
	return s
}

func sortedIDs(set map[ObjectID]struct{}) []ObjectID {
	if len(set) == 0 {
		return nil
	}
	out := make([]ObjectID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
