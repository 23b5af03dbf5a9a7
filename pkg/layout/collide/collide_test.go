package collide

import (
	"math"
	"reflect"
	"testing"

	"github.com/canopyviz/canopy/pkg/graph"
)

func rect(id string, x, y, w, h float64) graph.Rect {
	return graph.Rect{ID: id, X: x, Y: y, Width: w, Height: h}
}

// gapX returns the horizontal gap between the bounding boxes of a and b.
func gapX(a, b graph.Rect) float64 {
	if a.X > b.X {
		a, b = b, a
	}
	return b.Left() - a.Right()
}

func TestResolveAllSeparatesPair(t *testing.T) {
	// Two width-100 rects overlapping on the horizontal axis with margin 20:
	// after resolution the gap on the dominant axis is at least the margin.
	rects := []graph.Rect{
		rect("a", 0, 0, 100, 40),
		rect("b", 30, 0, 100, 40),
	}
	res := ResolveAll(rects, Options{Margin: 20})

	if !res.Converged {
		t.Fatalf("expected convergence for a trivial pair, got %d iterations", res.Iterations)
	}
	if gap := gapX(res.Rects[0], res.Rects[1]); gap < 20 {
		t.Errorf("gap = %v, want >= margin 20", gap)
	}
}

func TestResolveAllKeepsShape(t *testing.T) {
	rects := []graph.Rect{
		rect("a", 0, 0, 100, 40),
		rect("b", 10, 5, 80, 40),
		rect("c", 500, 500, 60, 60),
	}
	res := ResolveAll(rects, Options{})

	if len(res.Rects) != len(rects) {
		t.Fatalf("len = %d, want %d", len(res.Rects), len(rects))
	}
	for i := range rects {
		if res.Rects[i].ID != rects[i].ID {
			t.Errorf("order changed: got %s at %d, want %s", res.Rects[i].ID, i, rects[i].ID)
		}
		if res.Rects[i].Width != rects[i].Width || res.Rects[i].Height != rects[i].Height {
			t.Errorf("rect %s: dimensions changed", rects[i].ID)
		}
	}
	// Far-away rect c had no overlaps and must not move.
	if res.Rects[2].X != 500 || res.Rects[2].Y != 500 {
		t.Errorf("isolated rect moved to (%v, %v)", res.Rects[2].X, res.Rects[2].Y)
	}
}

func TestResolveAllInputNotMutated(t *testing.T) {
	rects := []graph.Rect{
		rect("a", 0, 0, 100, 40),
		rect("b", 10, 0, 100, 40),
	}
	before := make([]graph.Rect, len(rects))
	copy(before, rects)

	ResolveAll(rects, Options{})
	if !reflect.DeepEqual(rects, before) {
		t.Error("input slice was mutated")
	}
}

func TestResolveAllCoincidentCenters(t *testing.T) {
	rects := []graph.Rect{
		rect("a", 100, 100, 80, 80),
		rect("b", 100, 100, 80, 80),
	}
	res := ResolveAll(rects, Options{Margin: 10})

	if res.Rects[0].X == res.Rects[1].X {
		t.Error("coincident centers were not separated along the default axis")
	}
	if res.Rects[0].Y != res.Rects[1].Y {
		t.Error("coincident centers should break the tie horizontally, not vertically")
	}

	// Deterministic: the tie must break the same way every time.
	again := ResolveAll([]graph.Rect{
		rect("a", 100, 100, 80, 80),
		rect("b", 100, 100, 80, 80),
	}, Options{Margin: 10})
	if !reflect.DeepEqual(res.Rects, again.Rects) {
		t.Error("coincident-center resolution is not deterministic")
	}
}

func TestResolveAllBudgetExhaustion(t *testing.T) {
	// Resolving a-b pushes b back towards c after the b-c pair was already
	// processed, so one sweep cannot finish; the call must still return a
	// same-shaped best effort, never an error.
	rects := []graph.Rect{
		rect("a", 0, 0, 200, 40),
		rect("b", 150, 0, 200, 40),
		rect("c", 300, 0, 200, 40),
	}
	res := ResolveAll(rects, Options{MaxIterations: 1, Margin: 20})

	if len(res.Rects) != len(rects) {
		t.Fatalf("len = %d, want %d", len(res.Rects), len(rects))
	}
	if res.Converged {
		t.Error("one iteration should not converge a dense cluster")
	}
	if res.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", res.Iterations)
	}
}

func TestResolveNewFreezesExisting(t *testing.T) {
	existing := []graph.Rect{
		rect("old1", 0, 0, 100, 40),
		rect("old2", 200, 0, 100, 40),
	}
	incoming := []graph.Rect{
		rect("new1", 10, 0, 100, 40),
		rect("new2", 190, 10, 100, 40),
	}
	before := make([]graph.Rect, len(existing))
	copy(before, existing)

	res := ResolveNew(existing, incoming, Options{Margin: 20})

	if !reflect.DeepEqual(existing, before) {
		t.Fatal("existing positions were altered")
	}
	if len(res.Rects) != len(incoming) {
		t.Fatalf("result len = %d, want %d incoming", len(res.Rects), len(incoming))
	}
	for _, in := range res.Rects {
		for _, old := range existing {
			dx := math.Abs(in.X - old.X)
			dy := math.Abs(in.Y - old.Y)
			if dx < (in.Width+old.Width)/2 && dy < (in.Height+old.Height)/2 {
				t.Errorf("incoming %s still overlaps frozen %s", in.ID, old.ID)
			}
		}
	}
}

func TestResolveNewNoOverlapNoMove(t *testing.T) {
	existing := []graph.Rect{rect("old", 0, 0, 100, 40)}
	incoming := []graph.Rect{rect("new", 400, 400, 100, 40)}

	res := ResolveNew(existing, incoming, Options{})
	if res.Rects[0].X != 400 || res.Rects[0].Y != 400 {
		t.Errorf("non-overlapping incoming moved to (%v, %v)", res.Rects[0].X, res.Rects[0].Y)
	}
	if !res.Converged {
		t.Error("expected immediate convergence")
	}
}

func TestResolveEmpty(t *testing.T) {
	if res := ResolveAll(nil, Options{}); !res.Converged || len(res.Rects) != 0 {
		t.Errorf("ResolveAll(nil) = %+v, want empty converged result", res)
	}
	if res := ResolveNew(nil, nil, Options{}); !res.Converged || len(res.Rects) != 0 {
		t.Errorf("ResolveNew(nil, nil) = %+v, want empty converged result", res)
	}
}
