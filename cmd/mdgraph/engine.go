package main

import (
	"context"
	"strings"
	"time"

	"github.com/aretw0/mdgraph"
	"github.com/aretw0/mdgraph/internal/config"
	"github.com/aretw0/mdgraph/pkg/adapters/redis"
	"github.com/aretw0/mdgraph/pkg/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// lockTTL bounds how long a crashed renderer holds the shared render lock.
const lockTTL = 30 * time.Second

// addLayoutFlags registers the flags that override the configured layout.
func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().String("rankdir", "", "Graph direction: LR, RL, TB or BT (default from config)")
	cmd.Flags().Float64("nodesep", 0, "Minimum space between nodes of the same rank, in inches")
	cmd.Flags().Float64("ranksep", 0, "Minimum space between ranks, in inches")
	cmd.Flags().Bool("strict", false, "Fail on any parse diagnostic instead of skipping it")
}

// resolveLayout applies explicitly set flags over base.
func resolveLayout(cmd *cobra.Command, base config.Layout) config.Layout {
	flags := cmd.Flags()
	if flags.Changed("rankdir") {
		v, _ := flags.GetString("rankdir")
		base.RankDir = strings.ToUpper(v)
	}
	if flags.Changed("nodesep") {
		base.NodeSep, _ = flags.GetFloat64("nodesep")
	}
	if flags.Changed("ranksep") {
		base.RankSep, _ = flags.GetFloat64("ranksep")
	}
	return base
}

// stringFlag returns the flag value when set on the command line, otherwise def.
func stringFlag(cmd *cobra.Command, name, def string) string {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return f.Value.String()
	}
	return def
}

// newEngine builds an engine from config, layout flags and the given renderer.
// baseDir resolves relative stylesheet references.
func newEngine(cmd *cobra.Command, baseDir string, renderer render.Renderer, layout config.Layout) *mdgraph.Engine {
	layout = resolveLayout(cmd, layout)

	strict := cfg.Strict
	if cmd.Flags().Changed("strict") {
		strict, _ = cmd.Flags().GetBool("strict")
	}

	opts := []mdgraph.Option{
		mdgraph.WithLogger(logger),
		mdgraph.WithStrict(strict),
		mdgraph.WithLayout(layout.RankDir, layout.NodeSep, layout.RankSep),
		mdgraph.WithBaseDir(baseDir),
	}
	if renderer != nil {
		opts = append(opts, mdgraph.WithRenderer(renderer))
	}
	if dir := stringFlag(cmd, "image-dir", cfg.Output.ImageDir); dir != "" {
		opts = append(opts, mdgraph.WithImageFetcher(render.NewImageFetcher(dir, render.WithFetcherLogger(logger))))
	}
	return mdgraph.New(opts...)
}

// newRenderer puts the render cache in front of graphviz. A configured redis URL
// selects the shared store and lock; when redis is unreachable the in-memory store is
// used instead. The returned func releases the store.
func newRenderer(ctx context.Context, noCache bool, reg prometheus.Registerer) (render.Renderer, func()) {
	gv := render.NewGraphviz()
	if noCache {
		return gv, func() {}
	}

	metrics := render.NewCacheMetrics(reg)
	if cfg.Cache.RedisURL == "" {
		return render.NewCache(gv, cfg.Cache.TTL, render.WithMetrics(metrics)), func() {}
	}

	store, err := redis.New(ctx, cfg.Cache.RedisURL, redis.WithTTL(cfg.Cache.TTL))
	if err != nil {
		logger.Warn("redis cache unavailable, using memory", "err", err)
		return render.NewCache(gv, cfg.Cache.TTL, render.WithMetrics(metrics)), func() {}
	}
	logger.Debug("using redis render cache", "url", cfg.Cache.RedisURL)

	cache := render.NewCache(gv, cfg.Cache.TTL,
		render.WithStore(store),
		render.WithMetrics(metrics),
		render.WithLocker(redis.NewLocker(store.Client(), redis.DefaultPrefix), lockTTL),
	)
	return cache, func() { _ = store.Close() }
}
