package spatial

import (
	"math"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultCellSize is the grid cell edge length in drawing units.
	DefaultCellSize = 100

	gridCellOverhead = 64
	gridItemCost     = 48
)

// CellKey addresses one grid cell by integer cell coordinates.
type CellKey struct {
	Col, Row int
}

// Grid is a uniform spatial hash partition of the indexed region into
// fixed-size cells. Each item is registered into every cell its bounds
// overlap; a cell exists in the map only while it holds at least one item.
type Grid[T any] struct {
	querier[T]

	region   Bounds
	cellSize float64
	cols     int
	rows     int
	cells    map[CellKey][]Item[T]
	ids      map[string]struct{}
}

// NewGrid builds a grid over region. A non-positive cellSize selects the
// default. Column and row counts are fixed at construction.
func NewGrid[T any](region Bounds, cellSize float64) *Grid[T] {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	region = region.Sanitize()
	g := &Grid[T]{
		region:   region,
		cellSize: cellSize,
		cols:     gridAxisCells(region.Width(), cellSize),
		rows:     gridAxisCells(region.Height(), cellSize),
		cells:    map[CellKey][]Item[T]{},
		ids:      map[string]struct{}{},
	}
	g.querier.src = g
	return g
}

func gridAxisCells(extent, cellSize float64) int {
	n := int(math.Ceil(extent / cellSize))
	if n < 1 {
		n = 1
	}
	return n
}

func (g *Grid[T]) regionBounds() Bounds { return g.region }

func (g *Grid[T]) Insert(item Item[T]) bool {
	if !item.Bounds.IsValid() {
		log.Warnf("grid: rejecting %q, invalid bounds %+v", item.ID, item.Bounds)
		return false
	}
	if _, dup := g.ids[item.ID]; dup {
		log.Warnf("grid: rejecting duplicate id %q, use Update to move items", item.ID)
		return false
	}
	if !g.region.Intersects(item.Bounds) {
		log.Warnf("grid: rejecting %q, bounds %+v outside region %+v", item.ID, item.Bounds, g.region)
		return false
	}
	minCol, minRow, maxCol, maxRow := g.cellRange(item.Bounds)
	for col := minCol; col <= maxCol; col++ {
		for row := minRow; row <= maxRow; row++ {
			key := CellKey{col, row}
			if cellHolds(g.cells[key], item.ID) {
				continue
			}
			g.cells[key] = append(g.cells[key], item)
		}
	}
	g.ids[item.ID] = struct{}{}
	return true
}

// Remove walks every live cell, splices the id out and drops cells whose
// item list becomes empty. Returns true if any cell held the item.
func (g *Grid[T]) Remove(id string) bool {
	found := false
	for key, items := range g.cells {
		for i, it := range items {
			if it.ID != id {
				continue
			}
			items = append(items[:i], items[i+1:]...)
			found = true
			if len(items) == 0 {
				delete(g.cells, key)
			} else {
				g.cells[key] = items
			}
			break
		}
	}
	delete(g.ids, id)
	return found
}

func (g *Grid[T]) Update(item Item[T]) bool {
	if _, ok := g.ids[item.ID]; !ok {
		return false
	}
	g.Remove(item.ID)
	return g.Insert(item)
}

func (g *Grid[T]) Clear() {
	g.cells = map[CellKey][]Item[T]{}
	g.ids = map[string]struct{}{}
}

func (g *Grid[T]) ItemCount() int { return len(g.ids) }

// QueryClosest expands the search radius in rings, starting at one cell
// and doubling until a match is found or the radius exceeds the region
// diagonal. Sparse regions are never scanned whole.
func (g *Grid[T]) QueryClosest(point Point) *Result[T] {
	diagonal := g.region.Diagonal() + g.region.DistanceTo(point)
	for radius := g.cellSize; ; radius *= 2 {
		if results := g.QueryNear(point, radius, QueryOptions{MaxResults: 1}); len(results) > 0 {
			return &results[0]
		}
		if radius > diagonal {
			return nil
		}
	}
}

// QuerySnap clamps the radius to half a cell so snapping stays cell-local
// on every pointer move.
func (g *Grid[T]) QuerySnap(point Point, tolerance float64, kind SnapKind) []Result[T] {
	return g.QueryNear(point, math.Min(tolerance, g.cellSize/2), QueryOptions{})
}

// Optimize is a no-op: cell access is O(1) and gains nothing from a
// rebuild.
func (g *Grid[T]) Optimize() {}

func (g *Grid[T]) searchRange(bounds Bounds) []Item[T] {
	minCol, minRow, maxCol, maxRow := g.cellRange(bounds)
	seen := map[string]struct{}{}
	var out []Item[T]
	for col := minCol; col <= maxCol; col++ {
		for row := minRow; row <= maxRow; row++ {
			for _, it := range g.cells[CellKey{col, row}] {
				if _, dup := seen[it.ID]; dup {
					continue
				}
				seen[it.ID] = struct{}{}
				// Cell membership is a superset, filter exactly.
				if it.Bounds.Intersects(bounds) {
					out = append(out, it)
				}
			}
		}
	}
	return out
}

func (g *Grid[T]) cellRange(b Bounds) (minCol, minRow, maxCol, maxRow int) {
	minCol = g.clamp(int(math.Floor((b.MinX-g.region.MinX)/g.cellSize)), g.cols)
	maxCol = g.clamp(int(math.Floor((b.MaxX-g.region.MinX)/g.cellSize)), g.cols)
	minRow = g.clamp(int(math.Floor((b.MinY-g.region.MinY)/g.cellSize)), g.rows)
	maxRow = g.clamp(int(math.Floor((b.MaxY-g.region.MinY)/g.cellSize)), g.rows)
	return minCol, minRow, maxCol, maxRow
}

func (g *Grid[T]) clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n-1 {
		return n - 1
	}
	return v
}

func (g *Grid[T]) Stats() Stats {
	refs := 0
	for _, items := range g.cells {
		refs += len(items)
	}
	return Stats{
		Items:       len(g.ids),
		LastQuery:   g.lastQuery,
		MemoryBytes: len(g.cells)*gridCellOverhead + refs*gridItemCost,
	}
}

func (g *Grid[T]) Debug() DebugInfo {
	perCell := make([]int, 0, len(g.cells))
	for _, items := range g.cells {
		perCell = append(perCell, len(items))
	}
	return DebugInfo{
		Kind:      KindGrid,
		Items:     len(g.ids),
		Cells:     len(g.cells),
		NodeItems: perCell,
	}
}

func cellHolds[T any](items []Item[T], id string) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}
