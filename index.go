// Package spatial answers proximity, containment and nearest-neighbor
// queries over the axis-aligned bounding boxes of drawable scene objects.
// Two structures, a hierarchical quadtree and a uniform hash grid (plus an
// R-tree adapter), sit behind one generic contract so pointer-interaction
// code stays agnostic to the concrete index.
//
// Everything here is single-threaded and synchronous. The index never
// computes geometry from payloads and never owns their lifecycle; callers
// recompute bounds and remove items as scene entities change.
package spatial

import "time"

// Item is a single indexed record. ID is the sole key for removal and
// update and must be unique within an index instance. Payload is opaque to
// the index and is never copied or inspected.
type Item[T any] struct {
	ID      string
	Bounds  Bounds
	Payload T
}

// Result is one ranked query match. For near/closest queries Distance is
// the Euclidean distance from the query point to the item bounds, zero when
// the point is inside. Selection queries always carry zero.
type Result[T any] struct {
	Item     Item[T]
	Distance float64
}

// QueryOptions tunes a ranked query. The zero value means no limit.
type QueryOptions struct {
	MaxResults int
}

// SelectionMode picks the marquee-selection semantics.
type SelectionMode string

const (
	// SelectionWindow keeps items fully inside the selection rectangle.
	SelectionWindow SelectionMode = "window"
	// SelectionCrossing keeps items merely overlapping it.
	SelectionCrossing SelectionMode = "crossing"
)

// SnapKind names the snap target a caller is probing for. The index only
// narrows candidates by bounding box; discriminating endpoints from
// midpoints against exact geometry is the caller's job.
type SnapKind string

const (
	SnapEndpoint     SnapKind = "endpoint"
	SnapMidpoint     SnapKind = "midpoint"
	SnapCenter       SnapKind = "center"
	SnapIntersection SnapKind = "intersection"
	SnapNearest      SnapKind = "nearest"
)

// Stats is a cheap runtime snapshot of an index.
type Stats struct {
	Items       int
	LastQuery   time.Duration
	MemoryBytes int
}

// DebugInfo is structural introspection for diagnostics. Shape varies per
// implementation: Nodes/Depth/NodeItems are quadtree fields, Cells is a
// grid field. Not part of the functional contract.
type DebugInfo struct {
	Kind      IndexKind
	Items     int
	Nodes     int
	Cells     int
	Depth     int
	NodeItems []int
}

// Index is the contract both structures expose identically.
//
// Insert returns false when the item is rejected: bounds outside the
// indexed region, invalid bounds, or an id that is already present
// (Update is the only supported re-bounds path). Remove and Update return
// false for unknown ids. None of the operations panic on bad input.
type Index[T any] interface {
	Insert(item Item[T]) bool
	Remove(id string) bool
	Update(item Item[T]) bool
	Clear()
	ItemCount() int

	QueryNear(center Point, radius float64, opts QueryOptions) []Result[T]
	QueryBounds(bounds Bounds, opts QueryOptions) []Result[T]
	QueryClosest(point Point) *Result[T]
	HitTest(point Point, tolerance float64) *Result[T]
	QuerySnap(point Point, tolerance float64, kind SnapKind) []Result[T]
	QuerySelection(bounds Bounds, mode SelectionMode) []Result[T]

	Optimize()
	Stats() Stats
	Debug() DebugInfo
}
