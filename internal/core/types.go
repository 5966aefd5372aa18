package core

import "strings"

// RawTable is tabular data as read from a file or query, before normalization.
// Rows may be shorter or longer than Headers; missing cells are treated as
// empty and surplus cells are ignored.
type RawTable struct {
	Headers []string
	Rows    [][]any
}

// CleanedTable is a RawTable after header dedup, empty row/column elision and
// null normalization. Every row has exactly len(Columns) cells and nil is the
// only empty marker.
type CleanedTable struct {
	Columns []string
	Rows    [][]any
}

// Raw returns the table as a RawTable so it can be cleaned again.
func (t CleanedTable) Raw() RawTable {
	return RawTable{Headers: t.Columns, Rows: t.Rows}
}

// ColumnIndex returns the position of a column, or -1 if absent.
func (t CleanedTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ColumnKind is the inferred type of a column.
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindText    ColumnKind = "text"
)

// PinLeft keeps a column visible during horizontal scroll.
const PinLeft = "left"

// ColumnDefinition describes one column's inferred type and display/sort
// behaviour for a rendering layer.
type ColumnDefinition struct {
	Field      string     `json:"field"`
	HeaderName string     `json:"headerName"`
	Kind       ColumnKind `json:"kind"`

	// RangeExtraction marks columns holding "100-200" style cells. Sorting and
	// filtering use the number before the first '-'; display keeps the cell.
	RangeExtraction bool `json:"rangeExtraction,omitempty"`

	// ThousandsFormat marks numeric columns displayed with grouping separators.
	ThousandsFormat bool `json:"thousandsFormat,omitempty"`

	Pinned string `json:"pinned,omitempty"`
}

// Row maps final column names to cell values. Empty cells are nil.
type Row map[string]any

// GridPayload is the artifact handed to a grid renderer.
type GridPayload struct {
	Rows       []Row              `json:"rowData"`
	ColumnDefs []ColumnDefinition `json:"columnDefs"`
}

// Column returns the definition for a field.
func (p GridPayload) Column(field string) (ColumnDefinition, bool) {
	for _, def := range p.ColumnDefs {
		if def.Field == field {
			return def, true
		}
	}
	return ColumnDefinition{}, false
}

// ColumnPredicate matches column names for the drop-by-name filter.
// Equals matches the whole name, Prefix matches the start. An empty
// predicate matches nothing.
type ColumnPredicate struct {
	Equals string
	Prefix string
}

// Match reports whether the predicate selects name.
func (p ColumnPredicate) Match(name string) bool {
	if p.Equals != "" && name == p.Equals {
		return true
	}
	if p.Prefix != "" && strings.HasPrefix(name, p.Prefix) {
		return true
	}
	return false
}
