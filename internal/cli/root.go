// Package cli provides the gridctl command-line interface for inspecting
// catalog pages and their normalized grids without running the server.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gamegrid/internal/application"
	"github.com/JonMunkholm/gamegrid/internal/catalog"
	"github.com/JonMunkholm/gamegrid/internal/config"
	"github.com/JonMunkholm/gamegrid/internal/core"
	"github.com/JonMunkholm/gamegrid/internal/logging"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Version is set at build time.
var Version = "dev"

// state is shared by all subcommands of one invocation.
type state struct {
	catalogPath string
	dataDir     string
	output      string

	cfg *config.Config
}

// NewRootCmd creates the gridctl command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}

	root := &cobra.Command{
		Use:   "gridctl",
		Short: "Inspect game reference grids",
		Long: `gridctl loads the same catalog and data sources as the server and prints
pages, normalized grids, column definitions and row details.

Configuration comes from the environment (and a .env file), like the server.
Flags override the data directory and catalog.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return st.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&st.catalogPath, "catalog", "", "catalog YAML file (default: CATALOG_PATH or built-in)")
	root.PersistentFlags().StringVar(&st.dataDir, "data-dir", "", "base directory for source files (default: DATA_DIR)")
	root.PersistentFlags().StringVarP(&st.output, "output", "o", OutputText, "output format (text|json)")

	_ = root.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{OutputText, OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newPagesCommand(st),
		newGridCommand(st),
		newRowCommand(st),
		newColumnsCommand(st),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func (st *state) setup(cmd *cobra.Command) error {
	switch st.output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", st.output, OutputText, OutputJSON)
	}

	// A missing .env is fine; explicit environment wins over the file.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if st.catalogPath != "" {
		cfg.Data.CatalogPath = st.catalogPath
	}
	if st.dataDir != "" {
		cfg.Data.Dir = st.dataDir
	}
	st.cfg = cfg

	// Logs go to stderr so table and JSON output stay clean.
	logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

// buildAll loads every page of the catalog.
func (st *state) buildAll(ctx context.Context) (*core.Registry, *catalog.Catalog, error) {
	return application.Bootstrap(ctx, st.cfg)
}

// buildPage loads only the tabs of one page.
func (st *state) buildPage(ctx context.Context, key string) (*core.Registry, error) {
	cat, err := application.LoadCatalog(st.cfg)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	page, ok := cat.Page(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s (known: %s)", core.ErrUnknownPage, key, strings.Join(pageKeys(cat), ", "))
	}

	reg, err := application.Build(ctx, st.cfg, &catalog.Catalog{Pages: []catalog.Page{page}})
	if reg == nil {
		return nil, err
	}
	// Per-tab failures are reported by the lookup that needs the tab.
	return reg, nil
}

// lookup loads a page and resolves one of its tabs.
func (st *state) lookup(ctx context.Context, key, tab string) (core.Tab, error) {
	reg, err := st.buildPage(ctx, key)
	if err != nil {
		return core.Tab{}, err
	}
	return reg.Lookup(key, tab)
}

func pageKeys(c *catalog.Catalog) []string {
	keys := make([]string, len(c.Pages))
	for i, p := range c.Pages {
		keys[i] = p.Key
	}
	return keys
}
