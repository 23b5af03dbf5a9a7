package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/canopyviz/canopy/pkg/cache"
	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/layout/collide"
	"github.com/canopyviz/canopy/pkg/layout/flat"
	"github.com/canopyviz/canopy/pkg/layout/tree"
	"github.com/canopyviz/canopy/pkg/observability"
	"github.com/canopyviz/canopy/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout holds the computed positions and edges.
	Layout graph.Layout

	// LayoutHash is the content hash of the layout, usable as a render
	// cache key by callers.
	LayoutHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the layout came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	DroppedCount int // input nodes omitted as unreachable (flat layout only)

	LayoutTime  time.Duration
	ResolveTime time.Duration

	ResolveIterations int
	ResolveConverged  bool
}

// CacheInfo tracks cache hits for the pipeline stages.
type CacheInfo struct {
	LayoutHit bool // whether the layout result came from cache
	RenderHit bool // whether the rendered artifact came from cache
}

// =============================================================================
// Layout Stage
// =============================================================================

// LayoutTree computes a tidy tree layout for a nested tree, with caching and
// the optional collision pass applied per opts.
func (r *Runner) LayoutTree(ctx context.Context, t *graph.Tree, opts Options) (*Result, error) {
	opts.Algorithm = AlgorithmTree
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	inputHash, err := hashInput(t)
	if err != nil {
		return nil, fmt.Errorf("hash input: %w", err)
	}
	if res, ok := r.cachedLayout(ctx, inputHash, opts); ok {
		return res, nil
	}

	nodeCount := t.Count()
	observability.Layout().OnLayoutStart(ctx, AlgorithmTree, nodeCount)
	start := time.Now()

	root := tree.Layout(t, opts.TreeOpts())
	l := tree.Flatten(root, opts.IDFunc)

	result := &Result{Layout: l}
	result.Stats.LayoutTime = time.Since(start)
	observability.Layout().OnLayoutComplete(ctx, AlgorithmTree, nodeCount, result.Stats.LayoutTime, nil)

	r.finishLayout(ctx, result, inputHash, opts)
	return result, nil
}

// LayoutFlat computes a hierarchical layout for flat node/edge arrays, with
// caching and the optional collision pass applied per opts. Nodes the layout
// omits as unreachable are reported in Stats.DroppedCount and logged.
func (r *Runner) LayoutFlat(ctx context.Context, g graph.FlatGraph, opts Options) (*Result, error) {
	opts.Algorithm = AlgorithmFlat
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	inputHash, err := hashInput(g)
	if err != nil {
		return nil, fmt.Errorf("hash input: %w", err)
	}
	if res, ok := r.cachedLayout(ctx, inputHash, opts); ok {
		return res, nil
	}

	observability.Layout().OnLayoutStart(ctx, AlgorithmFlat, len(g.Nodes))
	start := time.Now()

	placed := flat.Layout(g, opts.FlatOpts())
	l := assembleFlatLayout(g, placed, opts)

	result := &Result{Layout: l}
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.DroppedCount = len(g.Nodes) - len(placed)
	observability.Layout().OnLayoutComplete(ctx, AlgorithmFlat, len(g.Nodes), result.Stats.LayoutTime, nil)

	if result.Stats.DroppedCount > 0 {
		opts.Logger.Warn("dropped nodes unreachable from root",
			"dropped", result.Stats.DroppedCount,
			"placed", len(placed))
	}

	r.finishLayout(ctx, result, inputHash, opts)
	return result, nil
}

// assembleFlatLayout wraps placed nodes into a Layout, attaching sizes and
// the edges whose endpoints both survived placement.
func assembleFlatLayout(g graph.FlatGraph, placed []graph.PlacedNode, opts Options) graph.Layout {
	size := graph.Size{Width: opts.NodeWidth, Height: opts.NodeHeight}
	if size.Width == 0 {
		size.Width = graph.DefaultNodeWidth
	}
	if size.Height == 0 {
		size.Height = graph.DefaultNodeHeight
	}

	l := graph.Layout{Nodes: make([]graph.PlacedNode, len(placed))}
	kept := make(map[string]bool, len(placed))
	for i, n := range placed {
		s := size
		n.Size = &s
		l.Nodes[i] = n
		kept[n.ID] = true
	}
	for _, e := range g.Edges {
		if !kept[e.Source] || !kept[e.Target] {
			continue
		}
		l.Edges = append(l.Edges, graph.LayoutEdge{
			ID:     opts.IDFunc(e.Source, e.Target),
			Source: e.Source,
			Target: e.Target,
		})
	}
	return l
}

// cachedLayout attempts to serve a layout from cache.
func (r *Runner) cachedLayout(ctx context.Context, inputHash string, opts Options) (*Result, bool) {
	if opts.Refresh {
		return nil, false
	}
	key := r.Keyer.LayoutKey(inputHash, opts.LayoutKeyOpts())
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		// Corrupt entry: recompute.
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return &Result{
		Layout:     l,
		LayoutHash: cache.Hash(data),
		Stats:      Stats{NodeCount: len(l.Nodes), EdgeCount: len(l.Edges), ResolveConverged: true},
		CacheInfo:  CacheInfo{LayoutHit: true},
	}, true
}

// finishLayout runs the optional collision pass, fills the remaining result
// fields, and writes the layout back to the cache.
func (r *Runner) finishLayout(ctx context.Context, result *Result, inputHash string, opts Options) {
	result.Stats.ResolveConverged = true
	if opts.Resolve {
		rects := result.Layout.Rects(graph.Size{})
		observability.Layout().OnResolveStart(ctx, "all", len(rects))
		start := time.Now()

		res := collide.ResolveAll(rects, opts.CollideOpts())
		result.Layout = result.Layout.ApplyRects(res.Rects)
		result.Stats.ResolveTime = time.Since(start)
		result.Stats.ResolveIterations = res.Iterations
		result.Stats.ResolveConverged = res.Converged
		observability.Layout().OnResolveComplete(ctx, "all", res.Iterations, res.Converged, result.Stats.ResolveTime)

		if !res.Converged {
			opts.Logger.Warn("collision resolution hit its iteration budget",
				"iterations", res.Iterations)
		}
	}

	result.Stats.NodeCount = len(result.Layout.Nodes)
	result.Stats.EdgeCount = len(result.Layout.Edges)

	if data, err := graph.MarshalLayout(result.Layout); err == nil {
		result.LayoutHash = cache.Hash(data)
		key := r.Keyer.LayoutKey(inputHash, opts.LayoutKeyOpts())
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
}

// =============================================================================
// Resolve Stage
// =============================================================================

// ResolveAll relaxes a full set of rectangles.
func (r *Runner) ResolveAll(ctx context.Context, rects []graph.Rect, opts Options) collide.Result {
	observability.Layout().OnResolveStart(ctx, "all", len(rects))
	start := time.Now()
	res := collide.ResolveAll(rects, opts.CollideOpts())
	observability.Layout().OnResolveComplete(ctx, "all", res.Iterations, res.Converged, time.Since(start))
	return res
}

// ResolveNew relaxes incoming rectangles against a frozen existing set.
func (r *Runner) ResolveNew(ctx context.Context, existing, incoming []graph.Rect, opts Options) collide.Result {
	observability.Layout().OnResolveStart(ctx, "new", len(incoming))
	start := time.Now()
	res := collide.ResolveNew(existing, incoming, opts.CollideOpts())
	observability.Layout().OnResolveComplete(ctx, "new", res.Iterations, res.Converged, time.Since(start))
	return res
}

// =============================================================================
// Render Stage
// =============================================================================

// Render produces the requested output format for a layout, with caching for
// the rasterized formats. The boolean reports a render cache hit.
func (r *Runner) Render(ctx context.Context, l graph.Layout, format string) ([]byte, bool, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, false, err
	}
	if format == FormatJSON {
		data, err := graph.MarshalLayout(l)
		return data, false, err
	}

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	key := r.Keyer.RenderKey(cache.Hash(layoutData), format)

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "render")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	observability.Layout().OnRenderStart(ctx, format)
	start := time.Now()
	data, err := renderFormat(ctx, l, format)
	observability.Layout().OnRenderComplete(ctx, format, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err == nil {
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}
	return data, false, nil
}

func renderFormat(ctx context.Context, l graph.Layout, format string) ([]byte, error) {
	dot := render.ToDOT(l, render.Options{})
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return render.RenderSVG(ctx, dot)
	case FormatPNG:
		return render.RenderPNG(ctx, dot)
	}
	return nil, fmt.Errorf("invalid format: %q", format)
}

// =============================================================================
// Helpers
// =============================================================================

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// hashInput produces the content hash of a layout input for cache keys.
func hashInput(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
