package spatial

import (
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultMaxDepth bounds subdivision of the quadtree.
	DefaultMaxDepth = 8
	// DefaultMaxItemsPerNode is the leaf occupancy that triggers a split.
	DefaultMaxItemsPerNode = 10

	qtNodeOverhead = 96
	qtItemCost     = 64
)

// Quadtree is a hierarchical index over axis-aligned regions. Nodes hold
// items directly until maxItemsPerNode is exceeded, then split into four
// children and redistribute; items straddling more than one child quadrant
// stay at the split node. Removal never contracts the tree, Optimize is
// the explicit repair operation after heavy deletion.
type Quadtree[T any] struct {
	querier[T]

	region   Bounds
	maxDepth int
	maxItems int
	root     *quadtreeNode[T]
	ids      map[string]struct{}

	// OptimizeEvery, when positive, rebuilds the tree automatically after
	// that many mutations. Zero disables automatic optimization.
	OptimizeEvery int
	mutations     int
}

type quadtreeNode[T any] struct {
	bounds   Bounds
	depth    int
	items    []Item[T]
	children []*quadtreeNode[T] // nil or [NW, NE, SW, SE]
}

// NewQuadtree builds an index over region. Zero maxDepth and
// maxItemsPerNode select the defaults. The region is sanitized once and
// never resized; items that do not intersect it are rejected at insertion.
func NewQuadtree[T any](region Bounds, maxDepth, maxItemsPerNode int) *Quadtree[T] {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxItemsPerNode <= 0 {
		maxItemsPerNode = DefaultMaxItemsPerNode
	}
	q := &Quadtree[T]{
		region:   region.Sanitize(),
		maxDepth: maxDepth,
		maxItems: maxItemsPerNode,
		ids:      map[string]struct{}{},
	}
	q.root = &quadtreeNode[T]{bounds: q.region}
	q.querier.src = q
	return q
}

func (q *Quadtree[T]) regionBounds() Bounds { return q.region }

func (q *Quadtree[T]) Insert(item Item[T]) bool {
	if !item.Bounds.IsValid() {
		log.Warnf("quadtree: rejecting %q, invalid bounds %+v", item.ID, item.Bounds)
		return false
	}
	if _, dup := q.ids[item.ID]; dup {
		log.Warnf("quadtree: rejecting duplicate id %q, use Update to move items", item.ID)
		return false
	}
	if !q.region.Intersects(item.Bounds) {
		log.Warnf("quadtree: rejecting %q, bounds %+v outside region %+v", item.ID, item.Bounds, q.region)
		return false
	}
	q.root.insert(item, q.maxDepth, q.maxItems)
	q.ids[item.ID] = struct{}{}
	q.mutated()
	return true
}

func (q *Quadtree[T]) Remove(id string) bool {
	if _, ok := q.ids[id]; !ok {
		return false
	}
	if !q.root.remove(id) {
		return false
	}
	delete(q.ids, id)
	q.mutated()
	return true
}

// Update moves an item to new bounds via remove-then-insert. It returns
// false and changes nothing when the id is not present.
func (q *Quadtree[T]) Update(item Item[T]) bool {
	if _, ok := q.ids[item.ID]; !ok {
		return false
	}
	q.Remove(item.ID)
	return q.Insert(item)
}

func (q *Quadtree[T]) Clear() {
	q.root = &quadtreeNode[T]{bounds: q.region}
	q.ids = map[string]struct{}{}
	q.mutations = 0
}

func (q *Quadtree[T]) ItemCount() int { return len(q.ids) }

// Optimize collects every item, clears the tree and reinserts, repairing
// fragmentation left behind by removals and skewed depth growth.
func (q *Quadtree[T]) Optimize() {
	items := make([]Item[T], 0, len(q.ids))
	q.root.collect(&items)
	q.root = &quadtreeNode[T]{bounds: q.region}
	for _, it := range items {
		q.root.insert(it, q.maxDepth, q.maxItems)
	}
	q.mutations = 0
}

func (q *Quadtree[T]) mutated() {
	if q.OptimizeEvery <= 0 {
		return
	}
	q.mutations++
	if q.mutations >= q.OptimizeEvery {
		log.Debugf("quadtree: auto-optimizing after %d mutations", q.mutations)
		q.Optimize()
	}
}

func (q *Quadtree[T]) searchRange(bounds Bounds) []Item[T] {
	var out []Item[T]
	q.root.search(bounds, &out)
	return out
}

func (q *Quadtree[T]) Stats() Stats {
	nodes, _, _ := q.root.structure(nil)
	return Stats{
		Items:       len(q.ids),
		LastQuery:   q.lastQuery,
		MemoryBytes: nodes*qtNodeOverhead + len(q.ids)*qtItemCost,
	}
}

func (q *Quadtree[T]) Debug() DebugInfo {
	nodes, depth, perNode := q.root.structure(nil)
	return DebugInfo{
		Kind:      KindQuadtree,
		Items:     len(q.ids),
		Nodes:     nodes,
		Depth:     depth,
		NodeItems: perNode,
	}
}

func (n *quadtreeNode[T]) insert(item Item[T], maxDepth, maxItems int) {
	if n.children != nil {
		if child := n.childContaining(item.Bounds); child != nil {
			child.insert(item, maxDepth, maxItems)
			return
		}
		// Straddles more than one quadrant, stays here.
		n.items = append(n.items, item)
		return
	}
	n.items = append(n.items, item)
	if len(n.items) > maxItems && n.depth < maxDepth {
		n.split(maxDepth, maxItems)
	}
}

func (n *quadtreeNode[T]) childContaining(b Bounds) *quadtreeNode[T] {
	for _, child := range n.children {
		if child.bounds.Contains(b) {
			return child
		}
	}
	return nil
}

func (n *quadtreeNode[T]) split(maxDepth, maxItems int) {
	midX := (n.bounds.MinX + n.bounds.MaxX) / 2
	midY := (n.bounds.MinY + n.bounds.MaxY) / 2
	d := n.depth + 1
	n.children = []*quadtreeNode[T]{
		{bounds: Bounds{n.bounds.MinX, midY, midX, n.bounds.MaxY}, depth: d}, // NW
		{bounds: Bounds{midX, midY, n.bounds.MaxX, n.bounds.MaxY}, depth: d}, // NE
		{bounds: Bounds{n.bounds.MinX, n.bounds.MinY, midX, midY}, depth: d}, // SW
		{bounds: Bounds{midX, n.bounds.MinY, n.bounds.MaxX, midY}, depth: d}, // SE
	}
	evicted := n.items
	n.items = nil
	for _, it := range evicted {
		n.insert(it, maxDepth, maxItems)
	}
}

func (n *quadtreeNode[T]) remove(id string) bool {
	for i, it := range n.items {
		if it.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	for _, child := range n.children {
		if child.remove(id) {
			return true
		}
	}
	return false
}

func (n *quadtreeNode[T]) search(query Bounds, out *[]Item[T]) {
	if !n.bounds.Intersects(query) {
		return
	}
	for _, it := range n.items {
		if it.Bounds.Intersects(query) {
			*out = append(*out, it)
		}
	}
	for _, child := range n.children {
		child.search(query, out)
	}
}

func (n *quadtreeNode[T]) collect(out *[]Item[T]) {
	*out = append(*out, n.items...)
	for _, child := range n.children {
		child.collect(out)
	}
}

func (n *quadtreeNode[T]) structure(perNode []int) (nodes, depth int, items []int) {
	nodes = 1
	depth = n.depth
	items = append(perNode, len(n.items))
	for _, child := range n.children {
		cn, cd, ci := child.structure(items)
		nodes += cn
		items = ci
		if cd > depth {
			depth = cd
		}
	}
	return nodes, depth, items
}
