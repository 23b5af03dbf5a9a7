// Package collide separates overlapping rectangles on the canvas. It makes
// no assumption about hierarchy: input is an arbitrary set of sized rects
// (node centers plus dimensions), and resolution is an iterative pairwise
// relaxation that pushes offenders apart until nothing overlaps or the
// iteration budget runs out.
//
// The contract is "improved", not "overlap-free": dense or pathological
// inputs may still overlap when the budget is exhausted. That is not an
// error - the resolver never fails and always returns an arrangement of the
// same shape it received (spec'd failure semantics for rendering paths).
//
// Two entry points cover the two canvas situations: [ResolveAll] after
// manual dragging or a fresh layout, and [ResolveNew] when content streams
// into an arrangement the user already curated - existing rects are frozen
// obstacles there and only the incoming ones move.
package collide

import (
	"math"

	"github.com/canopyviz/canopy/pkg/graph"
)

// =============================================================================
// Options
// =============================================================================

// Defaults for the resolver.
const (
	// DefaultMaxIterations bounds the relaxation loop.
	DefaultMaxIterations = 50

	// DefaultOverlapThreshold is the smallest per-axis overlap that still
	// counts as a collision. Keeping it slightly above zero stops the loop
	// from chasing float dust.
	DefaultOverlapThreshold = 0.5
)

// Push weights per axis. Canvas layouts spread siblings left-to-right, so
// horizontal separation resolves crowding with less visual disruption than
// vertical; the x axis is weighted more heavily.
const (
	pushWeightX = 1.0
	pushWeightY = 0.5
)

// Options configures a resolution pass. The zero value selects the
// documented defaults.
type Options struct {
	MaxIterations    int     // relaxation iteration budget (default DefaultMaxIterations)
	Margin           float64 // minimum gap demanded between any two rects (default graph.DefaultCollisionMargin)
	OverlapThreshold float64 // per-axis overlap below this is ignored (default DefaultOverlapThreshold)
}

func (o Options) withDefaults() Options {
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Margin == 0 {
		o.Margin = graph.DefaultCollisionMargin
	}
	if o.OverlapThreshold == 0 {
		o.OverlapThreshold = DefaultOverlapThreshold
	}
	return o
}

// Result is the outcome of a resolution pass.
type Result struct {
	// Rects holds the adjusted rectangles, same order and length as the
	// input (for ResolveNew: the incoming set only).
	Rects []graph.Rect

	// Converged reports whether a full sweep finished with no overlaps.
	// False means the iteration budget ran out first.
	Converged bool

	// Iterations is the number of sweeps actually executed.
	Iterations int
}

// =============================================================================
// Entry Points
// =============================================================================

// ResolveAll relaxes the whole set: every rectangle may move. Used after
// manual dragging or as the cleanup pass on a freshly generated layout,
// where measured node sizes differ from the estimates layout used.
func ResolveAll(rects []graph.Rect, opts Options) Result {
	opts = opts.withDefaults()
	out := cloneRects(rects)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		moved := false
		for i := 0; i < len(out); i++ {
			for j := i + 1; j < len(out); j++ {
				if push, ok := overlapPush(out[i], out[j], opts); ok {
					out[i].X -= push.x / 2
					out[i].Y -= push.y / 2
					out[j].X += push.x / 2
					out[j].Y += push.y / 2
					moved = true
				}
			}
		}
		if !moved {
			return Result{Rects: out, Converged: true, Iterations: iter + 1}
		}
	}
	return Result{Rects: out, Converged: !anyOverlap(out, nil, opts), Iterations: opts.MaxIterations}
}

// ResolveNew relaxes only the incoming rectangles against a frozen existing
// set and against each other. Positions in existing are never altered; the
// caller's manual arrangement survives incremental growth. The result
// contains the incoming set only.
func ResolveNew(existing, incoming []graph.Rect, opts Options) Result {
	opts = opts.withDefaults()
	out := cloneRects(incoming)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		moved := false

		// Incoming vs frozen obstacles: the new rect absorbs the full push.
		for i := range out {
			for _, obstacle := range existing {
				if push, ok := overlapPush(obstacle, out[i], opts); ok {
					out[i].X += push.x
					out[i].Y += push.y
					moved = true
				}
			}
		}

		// Incoming vs incoming: both may move.
		for i := 0; i < len(out); i++ {
			for j := i + 1; j < len(out); j++ {
				if push, ok := overlapPush(out[i], out[j], opts); ok {
					out[i].X -= push.x / 2
					out[i].Y -= push.y / 2
					out[j].X += push.x / 2
					out[j].Y += push.y / 2
					moved = true
				}
			}
		}

		if !moved {
			return Result{Rects: out, Converged: true, Iterations: iter + 1}
		}
	}
	return Result{Rects: out, Converged: !anyOverlap(out, existing, opts), Iterations: opts.MaxIterations}
}

// =============================================================================
// Geometry
// =============================================================================

type vec struct{ x, y float64 }

// overlapPush reports whether a and b's margin-expanded bounds intersect
// and, if so, the displacement that separates them, directed from a towards
// b. Overlap on each axis is the shortfall between the demanded and actual
// center distance; the returned push moves along the center-to-center
// direction with the horizontal axis weighted more heavily. Exactly
// coincident centers break the tie along the horizontal axis so resolution
// stays deterministic instead of dividing by zero.
func overlapPush(a, b graph.Rect, opts Options) (vec, bool) {
	dx := b.X - a.X
	dy := b.Y - a.Y

	overlapX := (a.Width+b.Width)/2 + opts.Margin - math.Abs(dx)
	overlapY := (a.Height+b.Height)/2 + opts.Margin - math.Abs(dy)
	if overlapX <= opts.OverlapThreshold || overlapY <= opts.OverlapThreshold {
		return vec{}, false
	}

	if dx == 0 && dy == 0 {
		// Coincident centers: push along the fixed default axis instead of
		// dividing by zero, so resolution stays deterministic.
		return vec{x: overlapX * pushWeightX}, true
	}

	var push vec
	if dx != 0 {
		push.x = math.Copysign(overlapX*pushWeightX, dx)
	}
	if dy != 0 {
		push.y = math.Copysign(overlapY*pushWeightY, dy)
	}
	return push, true
}

// anyOverlap reports whether any pair (within rects, or across rects and
// frozen) still intersects with margin.
func anyOverlap(rects, frozen []graph.Rect, opts Options) bool {
	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); j++ {
			if _, ok := overlapPush(rects[i], rects[j], opts); ok {
				return true
			}
		}
		for _, f := range frozen {
			if _, ok := overlapPush(f, rects[i], opts); ok {
				return true
			}
		}
	}
	return false
}

func cloneRects(rects []graph.Rect) []graph.Rect {
	out := make([]graph.Rect, len(rects))
	copy(out, rects)
	return out
}
