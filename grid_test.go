package spatial

import (
	"fmt"
	"testing"
)

func TestGridSpanningItemRemoval(t *testing.T) {
	g := NewGrid[string](Bounds{0, 0, 1000, 1000}, 100)
	if !g.Insert(item("span", 90, 90, 110, 110)) {
		t.Fatal("insert rejected")
	}
	if got := g.Debug().Cells; got != 4 {
		t.Fatalf("cells after straddling insert: got %d, want 4", got)
	}
	memBefore := g.Stats().MemoryBytes

	if !g.Remove("span") {
		t.Fatal("remove failed")
	}
	if got := g.Debug().Cells; got != 0 {
		t.Errorf("orphaned cells after removal: %d", got)
	}
	if mem := g.Stats().MemoryBytes; mem >= memBefore {
		t.Errorf("memory estimate did not shrink: %d -> %d", memBefore, mem)
	}
	if g.ItemCount() != 0 {
		t.Errorf("count after removal: got %d", g.ItemCount())
	}
}

func TestGridSpanningItemReturnedOnce(t *testing.T) {
	g := NewGrid[string](Bounds{0, 0, 1000, 1000}, 100)
	g.Insert(item("span", 50, 50, 350, 350))
	got := g.QueryBounds(Bounds{0, 0, 400, 400}, QueryOptions{})
	if len(got) != 1 {
		t.Errorf("spanning item duplicated: got %d results", len(got))
	}
}

func TestGridRejections(t *testing.T) {
	g := NewGrid[string](Bounds{0, 0, 100, 100}, 10)

	if g.Insert(item("out", 500, 500, 510, 510)) {
		t.Error("out-of-region insert must be rejected")
	}
	if !g.Insert(item("a", 5, 5, 6, 6)) {
		t.Fatal("valid insert rejected")
	}
	if g.Insert(item("a", 50, 50, 60, 60)) {
		t.Error("duplicate id insert must be rejected")
	}
	if g.Remove("missing") {
		t.Error("removing an unknown id must return false")
	}
	if g.Update(item("missing", 1, 1, 2, 2)) {
		t.Error("updating an unknown id must return false")
	}
}

func TestGridQueryClosestRingExpansion(t *testing.T) {
	g := NewGrid[string](Bounds{0, 0, 10000, 10000}, 100)
	g.Insert(item("lonely", 9000, 9000, 9010, 9010))

	// Far from the item: the first rings are empty and must keep
	// expanding instead of giving up.
	r := g.QueryClosest(Point{100, 100})
	if r == nil || r.Item.ID != "lonely" {
		t.Fatalf("got %+v, want lonely", r)
	}

	g.Insert(item("close", 150, 150, 160, 160))
	r = g.QueryClosest(Point{100, 100})
	if r == nil || r.Item.ID != "close" {
		t.Errorf("got %+v, want close", r)
	}

	empty := NewGrid[string](Bounds{0, 0, 1000, 1000}, 100)
	if r := empty.QueryClosest(Point{500, 500}); r != nil {
		t.Errorf("empty grid: got %+v, want nil", r)
	}
}

func TestGridQuerySnapClampsRadius(t *testing.T) {
	g := NewGrid[string](Bounds{0, 0, 1000, 1000}, 100)
	g.Insert(item("far", 200, 0, 210, 10))
	g.Insert(item("near", 40, 0, 45, 10))

	// Tolerance 300 would reach "far", but the snap radius is clamped to
	// half a cell (50), which only reaches "near".
	got := g.QuerySnap(Point{0, 5}, 300, SnapEndpoint)
	if len(got) != 1 || got[0].Item.ID != "near" {
		t.Errorf("got %+v, want only near", got)
	}
}

func TestGridOptimizeIsNoOp(t *testing.T) {
	g := NewGrid[string](Bounds{0, 0, 1000, 1000}, 100)
	for i := 0; i < 10; i++ {
		g.Insert(item(fmt.Sprintf("i%d", i), float64(i*90), float64(i*90), float64(i*90)+5, float64(i*90)+5))
	}
	before := g.Debug()
	g.Optimize()
	after := g.Debug()
	if before.Cells != after.Cells || before.Items != after.Items {
		t.Errorf("optimize changed the grid: %+v -> %+v", before, after)
	}
}

func TestGridRoundTrip(t *testing.T) {
	g := NewGrid[string](Bounds{0, 0, 500, 500}, 50)
	const n = 40
	for i := 0; i < n; i++ {
		x := float64(i * 11 % 480)
		y := float64(i * 17 % 480)
		if !g.Insert(item(fmt.Sprintf("i%d", i), x, y, x+15, y+15)) {
			t.Fatalf("insert %d rejected", i)
		}
	}
	for i := 0; i < n; i++ {
		if !g.Remove(fmt.Sprintf("i%d", i)) {
			t.Fatalf("remove %d failed", i)
		}
	}
	if g.ItemCount() != 0 {
		t.Errorf("count after round trip: got %d", g.ItemCount())
	}
	if got := g.QueryBounds(Bounds{0, 0, 500, 500}, QueryOptions{}); len(got) != 0 {
		t.Errorf("query after round trip: got %d items", len(got))
	}
	if got := g.Debug().Cells; got != 0 {
		t.Errorf("cells after round trip: got %d", got)
	}
}

func TestGridUpdateMovesAllCellMemberships(t *testing.T) {
	g := NewGrid[string](Bounds{0, 0, 1000, 1000}, 100)
	g.Insert(item("m", 90, 90, 110, 110)) // 4 cells
	if !g.Update(item("m", 500, 500, 510, 510)) {
		t.Fatal("update failed")
	}
	if got := g.Debug().Cells; got != 1 {
		t.Errorf("stale cell memberships after update: %d cells", got)
	}
	if r := g.HitTest(Point{100, 100}, 0); r != nil {
		t.Errorf("old bounds still hit: %+v", r)
	}
	if r := g.HitTest(Point{505, 505}, 0); r == nil {
		t.Error("new bounds not hit")
	}
}

func TestGridClampedCellRange(t *testing.T) {
	g := NewGrid[string](Bounds{0, 0, 100, 100}, 30)
	// Item touching the region edge lands in the clamped last cell.
	g.Insert(item("edge", 95, 95, 100, 100))
	got := g.QueryBounds(Bounds{90, 90, 100, 100}, QueryOptions{})
	if len(got) != 1 || got[0].Item.ID != "edge" {
		t.Errorf("edge item: got %+v", got)
	}
}
