// Package application wires configuration, the catalog and the data sources
// into a loaded registry. The server and gridctl share it.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/gamegrid/internal/catalog"
	"github.com/JonMunkholm/gamegrid/internal/config"
	"github.com/JonMunkholm/gamegrid/internal/core"
	"github.com/JonMunkholm/gamegrid/internal/source"
)

// LoadCatalog reads the configured catalog file, or the built-in catalog when
// none is configured.
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Data.CatalogPath == "" {
		return catalog.Default()
	}
	return catalog.Load(cfg.Data.CatalogPath)
}

// Bootstrap loads the catalog and builds the registry within the configured
// load timeout. A Postgres pool is opened only when a database is configured
// and some tab needs it; it is closed once the build ends.
//
// The registry is returned even when err is non-nil, as long as the catalog
// itself loaded, so callers can still report per-tab status.
func Bootstrap(ctx context.Context, cfg *config.Config) (*core.Registry, *catalog.Catalog, error) {
	cat, err := LoadCatalog(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	reg, err := Build(ctx, cfg, cat)
	return reg, cat, err
}

// Build loads every tab of cat.
func Build(ctx context.Context, cfg *config.Config, cat *catalog.Catalog) (*core.Registry, error) {
	if cfg.Data.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Data.LoadTimeout)
		defer cancel()
	}

	opts := source.OptionsFromConfig(cfg)

	if cat.NeedsPostgres() {
		if cfg.Database.HasDatabase() {
			pool, err := source.OpenPool(ctx, cfg.Database)
			if err != nil {
				// Postgres tabs fail individually; the rest still load.
				slog.Error("database unavailable", "error", err)
			} else {
				defer pool.Close()
				opts.Pool = pool
			}
		} else {
			slog.Warn("catalog has postgres tabs but DATABASE_URL is not set")
		}
	}

	return source.Build(ctx, cat, opts)
}
