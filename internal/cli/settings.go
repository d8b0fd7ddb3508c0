package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/manifesto/internal/cache"
	"github.com/ppiankov/manifesto/internal/dashboard"
	"github.com/ppiankov/manifesto/internal/model"
	"github.com/ppiankov/manifesto/internal/pipeline"
	"github.com/ppiankov/manifesto/internal/render"
	"github.com/ppiankov/manifesto/internal/worker"
)

// cacheCleanupInterval is how often expired artifact bodies are dropped
const cacheCleanupInterval = 10 * time.Minute

// loadConfig layers the config file, MANIFESTO_* variables and flags over
// the defaults.
func loadConfig(v *viper.Viper) *model.Config {
	cfg := model.DefaultConfig()

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setBool := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}
	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v.IsSet(key) {
			*dst = v.GetDuration(key)
		}
	}

	setString("source.location", &cfg.Source.Location)
	setBool("source.cache_bust", &cfg.Source.CacheBust)

	setDuration("http.timeout", &cfg.HTTP.Timeout)
	setString("http.user_agent", &cfg.HTTP.UserAgent)
	if v.IsSet("http.max_body_bytes") {
		cfg.HTTP.MaxBodyBytes = v.GetInt64("http.max_body_bytes")
	}
	setString("http.http_proxy", &cfg.HTTP.HTTPProxy)
	setString("http.https_proxy", &cfg.HTTP.HTTPSProxy)
	setString("http.no_proxy", &cfg.HTTP.NoProxy)

	setBool("cache.enabled", &cfg.Cache.Enabled)
	setDuration("cache.ttl", &cfg.Cache.TTL)

	setInt("concurrency.workers", &cfg.Concurrency.Workers)

	if v.IsSet("rate_limiting.requests_per_second") {
		cfg.RateLimiting.RequestsPerSecond = v.GetFloat64("rate_limiting.requests_per_second")
	}
	setInt("rate_limiting.burst_size", &cfg.RateLimiting.BurstSize)

	setInt("consensus.radius", &cfg.Consensus.Radius)
	setInt("consensus.max_radius", &cfg.Consensus.MaxRadius)
	setString("consensus.mode", &cfg.Consensus.Mode)
	if v.IsSet("consensus.models") {
		cfg.Consensus.Models = v.GetStringSlice("consensus.models")
	}

	setBool("output.verbose", &cfg.Output.Verbose)
	setBool("output.json", &cfg.Output.JSON)
	setString("output.color", &cfg.Output.Color)

	return cfg
}

// newLogger writes warnings to stderr, and debug records with --verbose
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newSource builds the artifact source for cfg: a directory or an HTTP base
// URL behind a rate-limited fetcher, optionally cached in memory. The memory
// cache is nil when caching is disabled.
func newSource(cfg *model.Config) (pipeline.Source, *cache.MemoryCache, error) {
	fetcher := pipeline.NewFetcher(
		cfg.HTTP.Timeout,
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.HTTPProxy,
		cfg.HTTP.HTTPSProxy,
		cfg.HTTP.NoProxy,
	)
	fetcher.SetLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize))

	version := ""
	if cfg.Source.CacheBust {
		version = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}

	src, err := pipeline.NewSource(cfg.Source.Location, fetcher, version)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Cache.Enabled {
		return src, nil, nil
	}
	mem := cache.NewMemoryCache(cfg.Cache.TTL, cacheCleanupInterval)
	return pipeline.NewCachedSource(src, mem, cfg.Cache.TTL, version), mem, nil
}

// environment is everything a view command needs
type environment struct {
	cfg  *model.Config
	app  *dashboard.App
	out  *render.Renderer
	pool *worker.Pool
	mem  *cache.MemoryCache
}

// Close releases the worker pool
func (e *environment) Close() {
	e.app.Close()
	e.pool.Close()
}

// report writes the session counters shown with --verbose
func (e *environment) report(w io.Writer) {
	fmt.Fprintf(w, "\nWorkers:  %d\n", e.pool.Workers())
	fmt.Fprintf(w, "Datasets: %d fetched\n", e.app.Fetches())
	if e.mem != nil {
		st := e.mem.Stats()
		fmt.Fprintf(w, "Cache:    %d hits, %d misses, %d items\n", st.Hits, st.Misses, st.Items)
	}
}

// openDashboard loads the artifacts and starts the dashboard
func openDashboard(ctx context.Context) (*environment, error) {
	cfg := loadConfig(viper.GetViper())
	logger := newLogger(cfg.Output.Verbose)

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Source:   %s\n", cfg.Source.Location)
		fmt.Fprintf(os.Stderr, "Cache:    %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	src, mem, err := newSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	pool := worker.NewPool(cfg.Concurrency.Workers)
	app := dashboard.New(dashboard.Options{
		Artifacts: pipeline.NewArtifacts(src, logger),
		Pool:      pool,
		Logger:    logger,
		MaxRadius: cfg.Consensus.MaxRadius,
	})

	start := time.Now()
	if err := app.Start(ctx); err != nil {
		app.Close()
		pool.Close()
		return nil, fmt.Errorf("start dashboard: %w", err)
	}
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Loaded %d years, %d models in %v\n\n",
			len(app.Years()), len(app.Models()), time.Since(start).Round(time.Millisecond))
	}

	out := render.New(os.Stdout, render.Options{
		JSON:    cfg.Output.JSON,
		Color:   cfg.Output.Color,
		Palette: app.Palette(),
	})
	return &environment{cfg: cfg, app: app, out: out, pool: pool, mem: mem}, nil
}

// withDashboard opens the dashboard under the --timeout deadline and runs fn
func withDashboard(ctx context.Context, fn func(ctx context.Context, env *environment) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	env, err := openDashboard(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	err = fn(ctx, env)
	if env.cfg.Output.Verbose {
		env.report(os.Stderr)
	}
	return err
}

// parseMode falls back to the configured mode when flag is empty
func parseMode(flag string, cfg *model.Config) (model.FilterMode, error) {
	if flag == "" {
		flag = cfg.Consensus.Mode
	}
	return model.ParseFilterMode(flag)
}
