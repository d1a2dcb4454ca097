package spatial

import (
	"github.com/dhconnelly/rtreego"
	log "github.com/sirupsen/logrus"
)

const (
	rtreeMinNodeEntries = 25
	rtreeMaxNodeEntries = 50

	// rtreego rejects zero-length rect sides, degenerate bounds are
	// inflated by this much when converted.
	rtreeMinExtent = 1e-9

	rtreeItemCost = 96
)

// RTree adapts the rtreego R-tree to the Index contract. It exists for
// callers that want R-tree balancing characteristics; the factory never
// selects it automatically.
type RTree[T any] struct {
	querier[T]

	region  Bounds
	tree    *rtreego.Rtree
	entries map[string]*rtreeEntry[T]
}

type rtreeEntry[T any] struct {
	item Item[T]
	rect *rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *rtreeEntry[T]) Bounds() *rtreego.Rect { return e.rect }

// NewRTree builds an R-tree index over region with the same rejection
// semantics as the quadtree and the grid.
func NewRTree[T any](region Bounds) *RTree[T] {
	r := &RTree[T]{
		region:  region.Sanitize(),
		tree:    rtreego.NewTree(2, rtreeMinNodeEntries, rtreeMaxNodeEntries),
		entries: map[string]*rtreeEntry[T]{},
	}
	r.querier.src = r
	return r
}

func (r *RTree[T]) regionBounds() Bounds { return r.region }

func (r *RTree[T]) Insert(item Item[T]) bool {
	if !item.Bounds.IsValid() {
		log.Warnf("rtree: rejecting %q, invalid bounds %+v", item.ID, item.Bounds)
		return false
	}
	if _, dup := r.entries[item.ID]; dup {
		log.Warnf("rtree: rejecting duplicate id %q, use Update to move items", item.ID)
		return false
	}
	if !r.region.Intersects(item.Bounds) {
		log.Warnf("rtree: rejecting %q, bounds %+v outside region %+v", item.ID, item.Bounds, r.region)
		return false
	}
	entry := &rtreeEntry[T]{item: item, rect: rtreeRect(item.Bounds)}
	r.tree.Insert(entry)
	r.entries[item.ID] = entry
	return true
}

func (r *RTree[T]) Remove(id string) bool {
	entry, ok := r.entries[id]
	if !ok {
		return false
	}
	sameID := func(a, b rtreego.Spatial) bool {
		ea, ok1 := a.(*rtreeEntry[T])
		eb, ok2 := b.(*rtreeEntry[T])
		return ok1 && ok2 && ea.item.ID == eb.item.ID
	}
	if !r.tree.DeleteWithComparator(entry, sameID) {
		return false
	}
	delete(r.entries, id)
	return true
}

func (r *RTree[T]) Update(item Item[T]) bool {
	if _, ok := r.entries[item.ID]; !ok {
		return false
	}
	r.Remove(item.ID)
	return r.Insert(item)
}

func (r *RTree[T]) Clear() {
	r.tree = rtreego.NewTree(2, rtreeMinNodeEntries, rtreeMaxNodeEntries)
	r.entries = map[string]*rtreeEntry[T]{}
}

func (r *RTree[T]) ItemCount() int { return len(r.entries) }

// Optimize rebuilds the tree from scratch.
func (r *RTree[T]) Optimize() {
	tree := rtreego.NewTree(2, rtreeMinNodeEntries, rtreeMaxNodeEntries)
	for _, entry := range r.entries {
		tree.Insert(entry)
	}
	r.tree = tree
}

func (r *RTree[T]) searchRange(bounds Bounds) []Item[T] {
	matches := r.tree.SearchIntersect(rtreeRect(bounds))
	out := make([]Item[T], 0, len(matches))
	for _, m := range matches {
		entry, ok := m.(*rtreeEntry[T])
		if !ok {
			continue
		}
		if entry.item.Bounds.Intersects(bounds) {
			out = append(out, entry.item)
		}
	}
	return out
}

func (r *RTree[T]) Stats() Stats {
	return Stats{
		Items:       len(r.entries),
		LastQuery:   r.lastQuery,
		MemoryBytes: len(r.entries) * rtreeItemCost,
	}
}

func (r *RTree[T]) Debug() DebugInfo {
	return DebugInfo{
		Kind:  KindRTree,
		Items: len(r.entries),
	}
}

func rtreeRect(b Bounds) *rtreego.Rect {
	b = b.Sanitize()
	w := b.Width()
	if w < rtreeMinExtent {
		w = rtreeMinExtent
	}
	h := b.Height()
	if h < rtreeMinExtent {
		h = rtreeMinExtent
	}
	rect, err := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{w, h})
	if err != nil {
		// Unreachable with sanitized bounds and positive lengths.
		log.Errorf("rtree: rect conversion failed for %+v: %v", b, err)
		rect, _ = rtreego.NewRect(rtreego.Point{0, 0}, []float64{rtreeMinExtent, rtreeMinExtent})
	}
	return rect
}
