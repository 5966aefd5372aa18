package core

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Defaults applied by NewNormalizer for zero-valued options.
const (
	DefaultSampleSize     = 100
	DefaultIdentityColumn = "Name"
	DefaultPlaceholder    = "-"
)

// placeholderHeaderPrefix is how spreadsheet exports label headerless columns.
const placeholderHeaderPrefix = "Unnamed:"

// Options configures a Normalizer.
type Options struct {
	// DropColumns removes columns by final name after dedup.
	DropColumns []ColumnPredicate

	// IdentityColumn is pinned left and used as the row detail title.
	// Defaults to DefaultIdentityColumn.
	IdentityColumn string

	// SortBy stably sorts rows by this column, empty cells last.
	SortBy string

	// SampleSize caps how many values range inference inspects.
	SampleSize int

	// SampleSeed seeds the sampling permutation so repeated runs agree.
	SampleSeed uint64

	// Placeholder is displayed for empty cells.
	Placeholder string
}

// Normalizer cleans raw tables and infers column definitions.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	opts Options
}

// NewNormalizer creates a Normalizer, filling unset options with defaults.
func NewNormalizer(opts Options) *Normalizer {
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	if opts.IdentityColumn == "" {
		opts.IdentityColumn = DefaultIdentityColumn
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	return &Normalizer{opts: opts}
}

// Options returns the effective options.
func (n *Normalizer) Options() Options {
	return n.opts
}

// Clean normalizes a raw table:
//
//  1. columns with no values are dropped
//  2. headers are trimmed; blank or "Unnamed: N" headers become "Extra N"
//  3. duplicate names get a "_N" suffix
//  4. DropColumns predicates are applied
//  5. rows with no values are dropped
//  6. null-like cells become nil
//
// Clean never fails. A table left without columns has no rows.
func (n *Normalizer) Clean(raw RawTable) CleanedTable {
	width := len(raw.Headers)

	cells := make([][]any, len(raw.Rows))
	for i, row := range raw.Rows {
		out := make([]any, width)
		for j := 0; j < width && j < len(row); j++ {
			out[j] = NormalizeCell(row[j])
		}
		cells[i] = out
	}

	var keep []int
	for j := 0; j < width; j++ {
		if columnHasValue(cells, j) {
			keep = append(keep, j)
		}
	}

	kept := make([]string, len(keep))
	for k, j := range keep {
		kept[k] = raw.Headers[j]
	}
	names := dedupeHeaders(kept)

	columns := make([]string, 0, len(keep))
	index := make([]int, 0, len(keep))
	for k, j := range keep {
		if n.dropped(names[k]) {
			continue
		}
		columns = append(columns, names[k])
		index = append(index, j)
	}

	rows := make([][]any, 0, len(cells))
	for _, row := range cells {
		out := make([]any, len(index))
		empty := true
		for k, j := range index {
			out[k] = row[j]
			if row[j] != nil {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, out)
		}
	}

	return CleanedTable{Columns: columns, Rows: rows}
}

func (n *Normalizer) dropped(name string) bool {
	for _, p := range n.opts.DropColumns {
		if p.Match(name) {
			return true
		}
	}
	return false
}

func columnHasValue(rows [][]any, col int) bool {
	for _, row := range rows {
		if row[col] != nil {
			return true
		}
	}
	return false
}

// dedupeHeaders computes unique, non-empty display names. One counter, scoped
// to the table, numbers both "Extra N" names and "_N" collision suffixes.
func dedupeHeaders(headers []string) []string {
	used := make(map[string]bool, len(headers))
	names := make([]string, len(headers))
	extra := 1

	for i, h := range headers {
		name := norm.NFC.String(strings.TrimSpace(h))
		if name == "" || strings.HasPrefix(name, placeholderHeaderPrefix) {
			name = fmt.Sprintf("Extra %d", extra)
			extra++
		}
		for used[name] {
			name = fmt.Sprintf("%s_%d", name, extra)
			extra++
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// SortRows returns t with rows stably sorted by column. Numbers sort first in
// numeric order, then text in byte order, then empty cells.
// An unknown column leaves the order unchanged.
func SortRows(t CleanedTable, column string) CleanedTable {
	col := t.ColumnIndex(column)
	if col < 0 {
		return t
	}
	rows := slices.Clone(t.Rows)
	slices.SortStableFunc(rows, func(a, b []any) int {
		return compareCells(a[col], b[col])
	})
	return CleanedTable{Columns: t.Columns, Rows: rows}
}

// Sort classes, in order.
const (
	cellNumber = iota
	cellText
	cellEmpty
)

func cellClass(v any) (class int, num float64) {
	if v == nil {
		return cellEmpty, 0
	}
	if f, ok := ParseNumber(v); ok {
		return cellNumber, f
	}
	return cellText, 0
}

func compareCells(a, b any) int {
	ca, fa := cellClass(a)
	cb, fb := cellClass(b)
	if ca != cb {
		return cmp.Compare(ca, cb)
	}
	switch ca {
	case cellNumber:
		return cmp.Compare(fa, fb)
	case cellText:
		return strings.Compare(displayString(a), displayString(b))
	}
	return 0
}

// InferColumns classifies every column of t, in column order.
//
// A column is numeric when every value parses as a number. Failing that, it
// is a numeric range column when every sampled value is a number or starts
// with one before the first '-'. Anything else is text.
func (n *Normalizer) InferColumns(t CleanedTable) []ColumnDefinition {
	defs := make([]ColumnDefinition, len(t.Columns))
	for j, name := range t.Columns {
		values := columnValues(t, j)
		def := ColumnDefinition{Field: name, HeaderName: name, Kind: KindText}

		switch {
		case len(values) == 0:
		case all(values, func(v any) bool { _, ok := toNumeric(v); return ok }):
			def.Kind = KindNumeric
			def.ThousandsFormat = true
		case all(n.sample(values), func(v any) bool { _, ok := rangeLowerBound(v); return ok }):
			def.Kind = KindNumeric
			def.ThousandsFormat = true
			def.RangeExtraction = true
		}

		if name == n.opts.IdentityColumn {
			def.Pinned = PinLeft
		}
		defs[j] = def
	}
	return defs
}

func columnValues(t CleanedTable, col int) []any {
	values := make([]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		if row[col] != nil {
			values = append(values, row[col])
		}
	}
	return values
}

// sample picks up to SampleSize values with a permutation seeded from
// SampleSeed, so the same column always yields the same sample.
func (n *Normalizer) sample(values []any) []any {
	if len(values) <= n.opts.SampleSize {
		return values
	}
	rng := rand.New(rand.NewPCG(n.opts.SampleSeed, n.opts.SampleSeed))
	perm := rng.Perm(len(values))[:n.opts.SampleSize]

	out := make([]any, len(perm))
	for i, idx := range perm {
		out[i] = values[idx]
	}
	return out
}

func all(values []any, pred func(any) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

// Payload runs Clean, the optional sort and InferColumns, and keys every row
// by column name.
func (n *Normalizer) Payload(raw RawTable) GridPayload {
	t := n.Clean(raw)
	if n.opts.SortBy != "" {
		t = SortRows(t, n.opts.SortBy)
	}

	rows := make([]Row, len(t.Rows))
	for i, cells := range t.Rows {
		row := make(Row, len(t.Columns))
		for j, col := range t.Columns {
			row[col] = cells[j]
		}
		rows[i] = row
	}

	return GridPayload{
		Rows:       rows,
		ColumnDefs: n.InferColumns(t),
	}
}
