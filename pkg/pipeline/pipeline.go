// Package pipeline provides the core layout pipeline for Canopy.
//
// This package implements the complete layout → resolve → render pipeline
// that can be used by CLI and API components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Layout: Compute positions, either from a nested tree (tidy tree
//     drawing) or from flat node/edge arrays (hierarchical layout)
//  2. Resolve: Optionally push overlapping nodes apart
//  3. Render: Generate output in various formats (DOT, SVG, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Algorithm: pipeline.AlgorithmTree, Resolve: true}
//	result, err := runner.LayoutTree(ctx, t, opts)
package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/canopyviz/canopy/pkg/cache"
	"github.com/canopyviz/canopy/pkg/layout/collide"
	"github.com/canopyviz/canopy/pkg/layout/flat"
	"github.com/canopyviz/canopy/pkg/layout/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Algorithm constants for the two layout families.
const (
	AlgorithmTree = "tree"
	AlgorithmFlat = "flat"
)

// ValidAlgorithms is the set of supported layout algorithms.
var ValidAlgorithms = map[string]bool{
	AlgorithmTree: true,
	AlgorithmFlat: true,
}

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests. Zero-valued
// spacing fields fall back to the documented defaults of the layout packages.
type Options struct {
	// Layout options
	Algorithm       string  `json:"algorithm,omitempty"`
	NodeWidth       float64 `json:"node_width,omitempty"`
	NodeHeight      float64 `json:"node_height,omitempty"`
	LevelGap        float64 `json:"level_gap,omitempty"`
	SiblingGap      float64 `json:"sibling_gap,omitempty"`
	VerticalSpacing float64 `json:"vertical_spacing,omitempty"`
	AnchorX         float64 `json:"anchor_x,omitempty"`
	AnchorY         float64 `json:"anchor_y,omitempty"`

	// Collision options
	Resolve       bool    `json:"resolve,omitempty"`
	Margin        float64 `json:"margin,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty"`

	// Refresh bypasses the cache on read (results are still written back).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger     `json:"-"`
	IDFunc tree.EdgeIDFunc `json:"-"` // edge ID generator, DefaultEdgeID if nil

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Algorithm == "" {
		o.Algorithm = AlgorithmTree
	}
	if err := ValidateAlgorithm(o.Algorithm); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.IDFunc == nil {
		o.IDFunc = tree.DefaultEdgeID
	}
	o.validated = true
	return nil
}

// ValidateAlgorithm checks that an algorithm name is valid.
func ValidateAlgorithm(algorithm string) error {
	if !ValidAlgorithms[algorithm] {
		return fmt.Errorf("invalid algorithm: %q (must be one of: tree, flat)", algorithm)
	}
	return nil
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg, png)", format)
	}
	return nil
}

// TreeOpts maps pipeline options onto the tree layout package.
func (o *Options) TreeOpts() tree.Options {
	return tree.Options{
		NodeWidth:  o.NodeWidth,
		NodeHeight: o.NodeHeight,
		LevelGap:   o.LevelGap,
		SiblingGap: o.SiblingGap,
		AnchorX:    o.AnchorX,
		AnchorY:    o.AnchorY,
	}
}

// FlatOpts maps pipeline options onto the flat layout package.
func (o *Options) FlatOpts() flat.Options {
	return flat.Options{
		SlotWidth:       o.NodeWidth,
		Gap:             o.SiblingGap,
		VerticalSpacing: o.VerticalSpacing,
		AnchorX:         o.AnchorX,
		AnchorY:         o.AnchorY,
	}
}

// CollideOpts maps pipeline options onto the collision resolver.
func (o *Options) CollideOpts() collide.Options {
	return collide.Options{
		MaxIterations: o.MaxIterations,
		Margin:        o.Margin,
	}
}

// LayoutKeyOpts returns cache key options for layout computation. Every
// field that changes output must appear here.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Algorithm:       o.Algorithm,
		NodeWidth:       o.NodeWidth,
		NodeHeight:      o.NodeHeight,
		LevelGap:        o.LevelGap,
		SiblingGap:      o.SiblingGap,
		VerticalSpacing: o.VerticalSpacing,
		AnchorX:         o.AnchorX,
		AnchorY:         o.AnchorY,
		Resolve:         o.Resolve,
		Margin:          o.Margin,
		MaxIterations:   o.MaxIterations,
	}
}
