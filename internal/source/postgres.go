package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/gamegrid/internal/config"
	"github.com/JonMunkholm/gamegrid/internal/core"
	"github.com/JonMunkholm/gamegrid/internal/logging"
)

// undefinedTable is the Postgres SQLSTATE for a missing relation.
const undefinedTable = "42P01"

var errNoDatabase = errors.New("DATABASE_URL is not configured")

// PostgresLoader reads every row of one table through a pooled connection.
// The connection goes back to the pool before Load returns.
type PostgresLoader struct {
	Pool   *pgxpool.Pool
	Table  string
	SortBy string
	Source string
}

func (l *PostgresLoader) Load(ctx context.Context) (core.RawTable, error) {
	if l.Pool == nil {
		return core.RawTable{}, core.NewSourceError(core.KindSourceUnreadable, l.Source, errNoDatabase)
	}

	conn, err := l.Pool.Acquire(ctx)
	if err != nil {
		return core.RawTable{}, readError(l.Source, fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Release()

	table, err := queryPostgres(ctx, conn, selectAll(pgIdent(l.Table), pgIdent, l.SortBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
			return core.RawTable{}, core.NewSourceError(core.KindSourceNotFound, l.Source, err)
		}
		return core.RawTable{}, readError(l.Source, err)
	}

	logging.FromContext(ctx).Debug("postgres read",
		"source", l.Source,
		"table", l.Table,
		"rows", len(table.Rows),
	)
	return stripColumns(table, SurrogateColumn), nil
}

func pgIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func queryPostgres(ctx context.Context, conn *pgxpool.Conn, q string) (core.RawTable, error) {
	rows, err := conn.Query(ctx, q)
	if err != nil {
		return core.RawTable{}, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	table := core.RawTable{Headers: make([]string, len(fields))}
	for i, f := range fields {
		table.Headers[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
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

// OpenPool connects to Postgres and verifies the connection.
func OpenPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
