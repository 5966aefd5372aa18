package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/gamegrid/internal/core"
	"github.com/JonMunkholm/gamegrid/internal/logging"
)

// ctxCheckInterval is how many records are read between context checks.
const ctxCheckInterval = 1000

// missingTokens are cell values spreadsheet exports use for "no value".
var missingTokens = map[string]bool{
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// textCell converts a text cell to a raw value, mapping missing tokens to nil.
func textCell(s string) any {
	if missingTokens[s] {
		return nil
	}
	return s
}

// CSVLoader reads a comma-separated file whose first record is the header.
// Records may have any number of fields.
type CSVLoader struct {
	Path   string
	Source string
}

func (l *CSVLoader) Load(ctx context.Context) (core.RawTable, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return core.RawTable{}, openError(l.Source, err)
	}
	defer f.Close()

	counter := &countingReader{r: newTextReader(f)}
	table, err := readCSV(ctx, counter)
	if err != nil {
		return core.RawTable{}, readError(l.Source, err)
	}

	logging.FromContext(ctx).Debug("csv read",
		"source", l.Source,
		"bytes", counter.n,
		"rows", len(table.Rows),
	)
	return table, nil
}

func readCSV(ctx context.Context, r io.Reader) (core.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return core.RawTable{}, errors.New("no header row")
	}
	if err != nil {
		return core.RawTable{}, fmt.Errorf("read header: %w", err)
	}

	var rows [][]any
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return core.RawTable{}, err
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.RawTable{}, fmt.Errorf("read record: %w", err)
		}

		row := make([]any, len(record))
		for i, s := range record {
			row[i] = textCell(s)
		}
		rows = append(rows, row)
	}

	return core.RawTable{Headers: header, Rows: rows}, nil
}
