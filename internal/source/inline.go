package source

import (
	"context"
	"slices"

	"github.com/JonMunkholm/gamegrid/internal/core"
)

// InlineLoader serves rows carried in the catalog itself.
type InlineLoader struct {
	Headers []string
	Rows    [][]any
}

func (l *InlineLoader) Load(ctx context.Context) (core.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return core.RawTable{}, err
	}

	rows := make([][]any, len(l.Rows))
	for i, r := range l.Rows {
		rows[i] = slices.Clone(r)
	}
	return core.RawTable{Headers: slices.Clone(l.Headers), Rows: rows}, nil
}
