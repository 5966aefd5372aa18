// Package source reads the raw tables behind catalog tabs and builds the
// registry the server and CLI read from.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/gamegrid/internal/catalog"
	"github.com/JonMunkholm/gamegrid/internal/core"
)

// SurrogateColumn is the synthetic key column relational sources carry.
// It is never shown.
const SurrogateColumn = "uuid"

// Loader reads one tab's raw table.
type Loader interface {
	Load(ctx context.Context) (core.RawTable, error)
}

// Env is what loaders need from the outside world.
type Env struct {
	// DataDir resolves relative file paths.
	DataDir string

	// Pool serves Postgres tabs. Nil when no database is configured.
	Pool *pgxpool.Pool
}

// ForTab returns the loader for a tab of page.
func ForTab(page catalog.Page, tab catalog.Tab, env Env) (Loader, error) {
	src := sourceName(page.Key, tab.ID)

	switch tab.Kind() {
	case catalog.SourceCSV:
		return &CSVLoader{Path: tab.File(env.DataDir), Source: src}, nil
	case catalog.SourceXLSX:
		return &XLSXLoader{Path: tab.File(env.DataDir), Sheet: tab.Sheet, Source: src}, nil
	case catalog.SourceSQLite:
		return &SQLiteLoader{
			Path:   tab.File(env.DataDir),
			Table:  tab.Table,
			SortBy: page.SortBy,
			Source: src,
		}, nil
	case catalog.SourcePostgres:
		return &PostgresLoader{
			Pool:   env.Pool,
			Table:  tab.Table,
			SortBy: page.SortBy,
			Source: src,
		}, nil
	case catalog.SourceInline:
		return &InlineLoader{Headers: tab.Headers, Rows: tab.Rows}, nil
	default:
		return nil, core.NewSourceError(core.KindSourceUnreadable, src,
			fmt.Errorf("tab declares %d sources, want exactly one", len(tab.Kinds())))
	}
}

func sourceName(page, tab string) string {
	return page + "/" + tab
}

// openError classifies a failure to open a file-backed source.
func openError(source string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return core.NewSourceError(core.KindSourceNotFound, source, err)
	}
	return core.NewSourceError(core.KindSourceUnreadable, source, err)
}

// readError marks a failure while reading an opened source. Context errors
// are returned as they are so callers can tell a timeout from bad data.
func readError(source string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var srcErr *core.SourceError
	if errors.As(err, &srcErr) {
		return err
	}
	return core.NewSourceError(core.KindSourceUnreadable, source, err)
}

// stripColumns removes named columns from a raw table.
func stripColumns(t core.RawTable, names ...string) core.RawTable {
	var drop []int
	for i, h := range t.Headers {
		if slices.Contains(names, h) {
			drop = append(drop, i)
		}
	}
	if len(drop) == 0 {
		return t
	}

	keep := func(i int) bool { return !slices.Contains(drop, i) }

	headers := make([]string, 0, len(t.Headers)-len(drop))
	for i, h := range t.Headers {
		if keep(i) {
			headers = append(headers, h)
		}
	}
	rows := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]any, 0, len(headers))
		for i, v := range row {
			if keep(i) {
				out = append(out, v)
			}
		}
		rows[r] = out
	}
	return core.RawTable{Headers: headers, Rows: rows}
}
