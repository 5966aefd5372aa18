package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/JonMunkholm/gamegrid/internal/core"
	"github.com/JonMunkholm/gamegrid/internal/logging"
)

// SQLiteLoader reads every row of one table from a SQLite database file,
// opened read-only. The connection is closed before Load returns.
type SQLiteLoader struct {
	Path   string
	Table  string
	SortBy string
	Source string
}

func (l *SQLiteLoader) Load(ctx context.Context) (core.RawTable, error) {
	// sqlite would create a missing file; report it as missing instead.
	if _, err := os.Stat(l.Path); err != nil {
		return core.RawTable{}, openError(l.Source, err)
	}

	dsn, err := sqliteDSN(l.Path)
	if err != nil {
		return core.RawTable{}, core.NewSourceError(core.KindSourceUnreadable, l.Source, err)
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return core.RawTable{}, core.NewSourceError(core.KindSourceUnreadable, l.Source, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	table, err := queryTable(ctx, db, selectAll(quoteIdent(l.Table), quoteIdent, l.SortBy))
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return core.RawTable{}, core.NewSourceError(core.KindSourceNotFound, l.Source, err)
		}
		return core.RawTable{}, readError(l.Source, err)
	}

	logging.FromContext(ctx).Debug("sqlite read",
		"source", l.Source,
		"table", l.Table,
		"rows", len(table.Rows),
	)
	return stripColumns(table, SurrogateColumn), nil
}

// sqliteDSN builds a read-only URI filename for path.
func sqliteDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: "mode=ro"}
	return u.String(), nil
}

// quoteIdent double-quotes an identifier for SQLite.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// selectAll builds the table query. A sort column orders rows with empty
// values last.
func selectAll(table string, quote func(string) string, sortBy string) string {
	q := "SELECT * FROM " + table
	if sortBy != "" {
		col := quote(sortBy)
		q += fmt.Sprintf(" ORDER BY %s IS NULL, %s", col, col)
	}
	return q
}

// queryTable runs q and collects its columns and rows.
func queryTable(ctx context.Context, db *sqlx.DB, q string) (core.RawTable, error) {
	rows, err := db.QueryxContext(ctx, q)
	if err != nil {
		return core.RawTable{}, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return core.RawTable{}, fmt.Errorf("columns: %w", err)
	}

	table := core.RawTable{Headers: cols}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return core.RawTable{}, fmt.Errorf("scan: %w", err)
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return core.RawTable{}, fmt.Errorf("rows: %w", err)
	}
	return table, nil
}
