package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/canopyviz/canopy/internal/server"
	"github.com/canopyviz/canopy/pkg/cache"
	"github.com/canopyviz/canopy/pkg/pipeline"
)

// defaultAddr is the listen address when neither the flag nor the config
// file sets one.
const defaultAddr = ":8080"

// serveCommand creates the serve command exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout pipeline as an HTTP API",
		Long: `Serve the layout pipeline as an HTTP API.

Endpoints:
  POST /api/v1/layout/tree   compute a tidy tree layout
  POST /api/v1/layout/flat   compute a hierarchical flat-list layout
  POST /api/v1/resolve       push overlapping rectangles apart
  GET  /healthz              liveness probe

With --redis-url, layouts are cached in Redis so multiple instances share
one cache; otherwise the local file cache is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, redisURL, noCache)
		},
	}

	cfg, err := loadConfig()
	if err != nil {
		c.Logger.Warn("ignoring unreadable config file", "err", err)
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = defaultAddr
	}

	cmd.Flags().StringVar(&addr, "addr", cfg.Serve.Addr, "listen address")
	cmd.Flags().StringVar(&redisURL, "redis-url", cfg.Serve.RedisURL, "redis connection URL for shared caching")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe builds the runner, starts the HTTP server, and shuts it down
// gracefully when ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr, redisURL string, noCache bool) error {
	store, err := c.newServeCache(ctx, redisURL, noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	keyer := cache.NewScopedKeyer(nil, "api:")
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(runner, c.Logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// newServeCache picks the cache backend for the server: redis when a URL is
// configured, the shared file cache otherwise.
func (c *CLI) newServeCache(ctx context.Context, redisURL string, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisURL != "" {
		return cache.NewRedisCache(ctx, redisURL)
	}
	return newCache(false)
}
