package spatial

import (
	"sort"
	"time"
)

// rangeSource is the narrow hook an index implementation provides to the
// shared query surface: a bounding-box range search returning candidates
// that intersect the search box, plus the indexed region.
type rangeSource[T any] interface {
	searchRange(bounds Bounds) []Item[T]
	regionBounds() Bounds
}

// querier implements the ranked query surface on top of a rangeSource.
// Implementations embed it and may shadow individual queries (the grid
// replaces QueryClosest and QuerySnap with cell-local variants).
type querier[T any] struct {
	src       rangeSource[T]
	lastQuery time.Duration
}

func (q *querier[T]) QueryNear(center Point, radius float64, opts QueryOptions) []Result[T] {
	start := time.Now()
	candidates := q.src.searchRange(BoundsAround(center, radius))
	results := make([]Result[T], 0, len(candidates))
	for _, it := range candidates {
		d := it.Bounds.DistanceTo(center)
		if d <= radius {
			results = append(results, Result[T]{Item: it, Distance: d})
		}
	}
	sortResults(results)
	results = truncateResults(results, opts.MaxResults)
	q.lastQuery = time.Since(start)
	return results
}

func (q *querier[T]) QueryBounds(bounds Bounds, opts QueryOptions) []Result[T] {
	start := time.Now()
	center := bounds.Center()
	candidates := q.src.searchRange(bounds)
	results := make([]Result[T], 0, len(candidates))
	for _, it := range candidates {
		d := center.Sub(it.Bounds.Center()).Len()
		results = append(results, Result[T]{Item: it, Distance: d})
	}
	sortResults(results)
	results = truncateResults(results, opts.MaxResults)
	q.lastQuery = time.Since(start)
	return results
}

// QueryClosest runs an effectively unbounded near query over the whole
// indexed region and keeps the single best match.
func (q *querier[T]) QueryClosest(point Point) *Result[T] {
	region := q.src.regionBounds()
	radius := region.Diagonal() + region.DistanceTo(point)
	results := q.QueryNear(point, radius, QueryOptions{MaxResults: 1})
	if len(results) == 0 {
		return nil
	}
	return &results[0]
}

// HitTest is a tolerance-bounded single-result near query. Zero tolerance
// matches only items whose bounds contain the point.
func (q *querier[T]) HitTest(point Point, tolerance float64) *Result[T] {
	results := q.QueryNear(point, tolerance, QueryOptions{MaxResults: 1})
	if len(results) == 0 {
		return nil
	}
	return &results[0]
}

// QuerySnap narrows snap candidates by bounding box. Kind-specific
// geometric filtering is the caller's job against the returned payloads.
func (q *querier[T]) QuerySnap(point Point, tolerance float64, kind SnapKind) []Result[T] {
	return q.QueryNear(point, tolerance, QueryOptions{})
}

func (q *querier[T]) QuerySelection(bounds Bounds, mode SelectionMode) []Result[T] {
	start := time.Now()
	candidates := q.src.searchRange(bounds)
	results := make([]Result[T], 0, len(candidates))
	for _, it := range candidates {
		switch mode {
		case SelectionWindow:
			if !bounds.Contains(it.Bounds) {
				continue
			}
		default: // crossing: searchRange already filtered by intersection
		}
		results = append(results, Result[T]{Item: it})
	}
	q.lastQuery = time.Since(start)
	return results
}

func sortResults[T any](results []Result[T]) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
}

func truncateResults[T any](results []Result[T], max int) []Result[T] {
	if max > 0 && len(results) > max {
		return results[:max]
	}
	return results
}
