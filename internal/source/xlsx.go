package source

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/gamegrid/internal/core"
	"github.com/JonMunkholm/gamegrid/internal/logging"
)

// XLSXLoader reads one worksheet of an Excel workbook. The first row is the
// header. An empty Sheet selects the first worksheet.
type XLSXLoader struct {
	Path   string
	Sheet  string
	Source string
}

func (l *XLSXLoader) Load(ctx context.Context) (core.RawTable, error) {
	if _, err := os.Stat(l.Path); err != nil {
		return core.RawTable{}, openError(l.Source, err)
	}

	f, err := excelize.OpenFile(l.Path)
	if err != nil {
		return core.RawTable{}, core.NewSourceError(core.KindSourceUnreadable, l.Source, err)
	}
	defer f.Close()

	sheet := l.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return core.RawTable{}, core.NewSourceError(core.KindSourceUnreadable, l.Source, errors.New("workbook has no sheets"))
		}
		sheet = sheets[0]
	}

	table, err := readSheet(ctx, f, sheet)
	if err != nil {
		return core.RawTable{}, readError(l.Source, err)
	}

	logging.FromContext(ctx).Debug("xlsx read",
		"source", l.Source,
		"sheet", sheet,
		"rows", len(table.Rows),
	)
	return table, nil
}

func readSheet(ctx context.Context, f *excelize.File, sheet string) (core.RawTable, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return core.RawTable{}, fmt.Errorf("open sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var (
		table  core.RawTable
		header = true
	)
	for n := 0; rows.Next(); n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return core.RawTable{}, err
			}
		}

		cols, err := rows.Columns()
		if err != nil {
			return core.RawTable{}, fmt.Errorf("read sheet %q row %d: %w", sheet, n+1, err)
		}
		if header {
			table.Headers = cols
			header = false
			continue
		}

		row := make([]any, len(cols))
		for i, s := range cols {
			row[i] = textCell(s)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Error(); err != nil {
		return core.RawTable{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if header {
		return core.RawTable{}, fmt.Errorf("sheet %q has no header row", sheet)
	}

	return table, nil
}
