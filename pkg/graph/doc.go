// Package graph provides serialization types for canvas graphs and layouts.
//
// This package defines the canonical wire format for Canopy's graph data,
// used for JSON files, the HTTP API, and caching.
//
// # Core Types
//
//   - [Tree]: nested single-root tree (input to layout/tree)
//   - [FlatGraph], [FlatNode], [FlatEdge]: flat node/edge arrays (input to layout/flat)
//   - [Layout], [PlacedNode], [LayoutEdge]: render-ready positioned output
//   - [Rect]: ephemeral collision rectangle
//
// # Position Contract
//
// All positions in this package are node centers, never top-left corners.
// Parent-centering math in the layout engines depends on this, and consumers
// that treat positions as corners will render every node offset by half its
// size. This is a binding contract.
//
// # Sizing
//
// Layout and collision resolution need node dimensions. When measured render
// sizes are unavailable, the documented default constants apply
// (DefaultTreeNode*, DefaultNode*, DefaultCard*) and layout proceeds without
// error.
//
// # Input Tolerance
//
// Readers validate JSON shape only. Structural oddities in flat graphs
// (duplicate parent edges, missing roots, disconnected components) are
// resolved by documented fallbacks inside the layout packages, never by
// rejecting input: these types sit in a rendering path where failing hard
// would break the visible canvas.
package graph
