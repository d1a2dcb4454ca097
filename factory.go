package spatial

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// IndexKind names a concrete index structure.
type IndexKind string

const (
	// KindAuto lets the factory's Strategy pick a structure.
	KindAuto     IndexKind = "auto"
	KindQuadtree IndexKind = "quadtree"
	KindGrid     IndexKind = "grid"
	// KindRTree is never chosen automatically, see RTree.
	KindRTree IndexKind = "rtree"
)

// UsageHint describes the workload an index is built for.
type UsageHint string

const (
	HintGeneral   UsageHint = "general"
	HintHitTest   UsageHint = "hit-test"
	HintSnap      UsageHint = "snap"
	HintSelection UsageHint = "selection"
)

// Config carries construction-time settings. Zero values select defaults;
// only the fields relevant to the chosen kind are read.
type Config struct {
	Region Bounds
	Kind   IndexKind
	Hint   UsageHint

	MaxDepth        int     // quadtree
	MaxItemsPerNode int     // quadtree
	CellSize        float64 // grid
	OptimizeEvery   int     // quadtree, mutations between automatic rebuilds
}

// Strategy picks a structure for an AUTO request. Implementations can
// substitute smarter heuristics (density feedback, workload sampling)
// without touching the factory wiring.
type Strategy interface {
	SelectKind(region Bounds, hint UsageHint) IndexKind
}

// AreaStrategy selects on region area alone: large regions get the
// quadtree, small dense ones the grid, the ambiguous middle band is biased
// toward the quadtree. A missing or degenerate region falls back to the
// quadtree as the safe default.
type AreaStrategy struct {
	QuadtreeAbove float64 // area above which the quadtree wins
	GridBelow     float64 // area below which the grid wins
}

const (
	defaultQuadtreeAbove = 100000
	defaultGridBelow     = 10000
)

func (s AreaStrategy) SelectKind(region Bounds, hint UsageHint) IndexKind {
	above := s.QuadtreeAbove
	if above <= 0 {
		above = defaultQuadtreeAbove
	}
	below := s.GridBelow
	if below <= 0 {
		below = defaultGridBelow
	}
	area := region.Area()
	switch {
	case area == 0:
		return KindQuadtree
	case area > above:
		return KindQuadtree
	case area < below:
		return KindGrid
	default:
		return KindQuadtree
	}
}

// Factory builds configured indexes. The zero value is usable and selects
// AreaStrategy. Whoever owns index lifecycles should hold its own Factory
// value, there is no shared instance.
type Factory[T any] struct {
	Strategy Strategy
}

// New constructs the index described by cfg. An unknown kind is the one
// hard failure here: it indicates a configuration programming error, not a
// runtime data condition.
func (f Factory[T]) New(cfg Config) (Index[T], error) {
	region := cfg.Region.Sanitize()
	kind := cfg.Kind
	if kind == "" {
		kind = KindAuto
	}
	if kind == KindAuto {
		strategy := f.Strategy
		if strategy == nil {
			strategy = AreaStrategy{}
		}
		kind = strategy.SelectKind(region, cfg.Hint)
		log.Debugf("factory: auto-selected %s for region %+v (area %.0f, hint %s)", kind, region, region.Area(), cfg.Hint)
	}
	switch kind {
	case KindQuadtree:
		qt := NewQuadtree[T](region, cfg.MaxDepth, cfg.MaxItemsPerNode)
		qt.OptimizeEvery = cfg.OptimizeEvery
		return qt, nil
	case KindGrid:
		return NewGrid[T](region, cfg.CellSize), nil
	case KindRTree:
		return NewRTree[T](region), nil
	default:
		return nil, fmt.Errorf("factory: unsupported index kind %q", kind)
	}
}

// NewHitTestIndex builds the hover/click preset: a deeper quadtree that
// tolerates more items per node before splitting and repairs itself after
// sustained mutation.
func NewHitTestIndex[T any](region Bounds) *Quadtree[T] {
	qt := NewQuadtree[T](region, 10, 16)
	qt.OptimizeEvery = 512
	return qt
}

// NewSelectionIndex builds the marquee-selection preset, tuned like the
// hit-test one.
func NewSelectionIndex[T any](region Bounds) *Quadtree[T] {
	qt := NewQuadtree[T](region, 10, 16)
	qt.OptimizeEvery = 512
	return qt
}

// NewSnapIndex builds the snapping preset: a grid with small fixed cells
// and no automatic optimization, snapping runs on every pointer move and
// must never pay for a rebuild.
func NewSnapIndex[T any](region Bounds) *Grid[T] {
	return NewGrid[T](region, 25)
}

// NewGeneralIndex lets the default strategy pick a structure for region.
func NewGeneralIndex[T any](region Bounds) Index[T] {
	idx, err := Factory[T]{}.New(Config{Region: region})
	if err != nil {
		// Unreachable: AUTO always resolves to a supported kind.
		panic(err)
	}
	return idx
}
