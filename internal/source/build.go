package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/gamegrid/internal/catalog"
	"github.com/JonMunkholm/gamegrid/internal/config"
	"github.com/JonMunkholm/gamegrid/internal/core"
	"github.com/JonMunkholm/gamegrid/internal/logging"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 4

// Options configures Build.
type Options struct {
	Env

	// Concurrency bounds how many tabs load at once.
	Concurrency int

	// Defaults are the normalizer options each page layers its own over.
	Defaults core.Options
}

// OptionsFromConfig maps application config to build options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Env:         Env{DataDir: cfg.Data.Dir},
		Concurrency: cfg.Data.LoadConcurrency,
		Defaults: core.Options{
			IdentityColumn: cfg.Grid.IdentityColumn,
			SampleSize:     cfg.Grid.SampleSize,
			SampleSeed:     cfg.Grid.SampleSeed,
			Placeholder:    cfg.Grid.Placeholder,
		},
	}
}

// Build loads every tab of the catalog into a new registry. Tabs load in
// parallel; a tab that fails is recorded in the registry and does not stop
// the others. Build fails only when the catalog cannot be registered or no
// tab loads at all.
func Build(ctx context.Context, c *catalog.Catalog, opts Options) (*core.Registry, error) {
	reg := core.NewRegistry()
	log := logging.FromContext(ctx)

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	normalizers := make([]*core.Normalizer, len(c.Pages))
	for i, page := range c.Pages {
		n := core.NewNormalizer(page.Options(opts.Defaults))
		if err := reg.RegisterPage(page.Info(), n); err != nil {
			return nil, fmt.Errorf("register page: %w", err)
		}
		normalizers[i] = n
	}

	var g errgroup.Group
	g.SetLimit(limit)

	start := time.Now()
	for i, page := range c.Pages {
		n := normalizers[i]
		for _, tab := range page.Tabs {
			g.Go(func() error {
				loadTab(ctx, reg, n, page, tab, opts.Env)
				return nil
			})
		}
	}
	_ = g.Wait()

	healthy, total := reg.Healthy(), reg.TabCount()
	log.Info("data sources loaded",
		"healthy", healthy,
		"total", total,
		"build_id", reg.BuildID(),
		"duration", time.Since(start),
	)

	if healthy == 0 {
		err := fmt.Errorf("%w: 0 of %d tabs", core.ErrNoDataSources, total)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(err, ctxErr)
		}
		return reg, err
	}
	return reg, nil
}

// loadTab loads, normalizes and stores one tab, recording any failure.
func loadTab(ctx context.Context, reg *core.Registry, n *core.Normalizer, page catalog.Page, tab catalog.Tab, env Env) {
	log := logging.WithFields(ctx, "page", page.Key, "tab", tab.ID, "kind", tab.Kind())
	start := time.Now()

	payload, err := LoadTab(ctx, n, page, tab, env)
	if err != nil {
		var srcErr *core.SourceError
		if !errors.As(err, &srcErr) {
			err = core.NewSourceError(core.KindSourceUnreadable, sourceName(page.Key, tab.ID), err)
		}
		reg.Fail(page.Key, tab.ID, err)
		log.Warn("tab failed to load", "error", err, "code", core.MapError(err).Code)
		return
	}

	reg.Store(page.Key, tab.ID, payload)
	log.Info("tab loaded",
		"rows", len(payload.Rows),
		"columns", len(payload.ColumnDefs),
		"duration", time.Since(start),
	)
}

// LoadTab reads one tab and normalizes it into a grid payload.
func LoadTab(ctx context.Context, n *core.Normalizer, page catalog.Page, tab catalog.Tab, env Env) (core.GridPayload, error) {
	loader, err := ForTab(page, tab, env)
	if err != nil {
		return core.GridPayload{}, err
	}
	raw, err := loader.Load(ctx)
	if err != nil {
		return core.GridPayload{}, err
	}
	return n.Payload(raw), nil
}
