// Package cache provides content-addressed caching for computed layouts.
//
// Layout computation is deterministic, so a layout is fully identified by a
// hash of its input graph plus the options used. The package defines a small
// Cache interface with three backends:
//   - FileCache for CLI usage (persists across invocations)
//   - RedisCache for server deployments
//   - NullCache to disable caching
//
// Key construction is separated into the Keyer interface so deployments can
// namespace keys without touching the backends.
package cache

import (
	"context"
	"time"
)

// TTLs per cached artifact type. Layouts and rendered artifacts are pure
// functions of their key, so the TTL only bounds disk growth.
const (
	TTLLayout = 30 * 24 * time.Hour
	TTLRender = 7 * 24 * time.Hour
)

// Cache is the storage interface all backends implement.
//
// Get reports (data, hit, error): a miss is not an error, and backends treat
// corrupt or expired entries as misses rather than failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// =============================================================================
// Key Construction
// =============================================================================

// LayoutKeyOpts captures every option that changes layout output. Two calls
// with the same graph hash but different opts must produce different keys.
type LayoutKeyOpts struct {
	Algorithm       string  `json:"algorithm"` // "tree" or "flat"
	NodeWidth       float64 `json:"node_width,omitempty"`
	NodeHeight      float64 `json:"node_height,omitempty"`
	LevelGap        float64 `json:"level_gap,omitempty"`
	SiblingGap      float64 `json:"sibling_gap,omitempty"`
	VerticalSpacing float64 `json:"vertical_spacing,omitempty"`
	AnchorX         float64 `json:"anchor_x,omitempty"`
	AnchorY         float64 `json:"anchor_y,omitempty"`
	Resolve         bool    `json:"resolve,omitempty"`
	Margin          float64 `json:"margin,omitempty"`
	MaxIterations   int     `json:"max_iterations,omitempty"`
}

// Keyer generates cache keys for the cached artifact types.
type Keyer interface {
	// LayoutKey generates a key for a computed layout from the hash of the
	// input graph and the layout options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// RenderKey generates a key for a rendered artifact from the hash of
	// the layout it was rendered from and the output format.
	RenderKey(layoutHash, format string) string
}

// DefaultKeyer generates unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// RenderKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) RenderKey(layoutHash, format string) string {
	return hashKey("render", layoutHash, format)
}
