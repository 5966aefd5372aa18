package core

import "fmt"

// DefaultDetailTitle is used when a row has no identity value.
const DefaultDetailTitle = "Details"

// DetailField is one field of a row detail view.
type DetailField struct {
	Name     string       `json:"name"`
	Display  string       `json:"display"`
	Segments []TagSegment `json:"segments,omitempty"`
}

// RowDetail is what a grid shows when a row is clicked.
type RowDetail struct {
	Index  int           `json:"index"`
	Title  string        `json:"title"`
	Fields []DetailField `json:"fields"`
}

// Detail builds the detail view for row index of p. The identity column
// becomes the title; it and any excluded fields are left out of Fields.
// Text values also carry tag segments for colouring.
func (n *Normalizer) Detail(p GridPayload, index int, exclude ...string) (RowDetail, error) {
	if index < 0 || index >= len(p.Rows) {
		return RowDetail{}, fmt.Errorf("%w: index %d, %d rows", ErrRowNotFound, index, len(p.Rows))
	}
	row := p.Rows[index]

	skip := make(map[string]bool, len(exclude)+1)
	for _, name := range exclude {
		skip[name] = true
	}

	title := DefaultDetailTitle
	if id := n.opts.IdentityColumn; id != "" {
		if v, ok := row[id]; ok && !isEmpty(v) {
			title = n.FormatScalar(v)
		}
		skip[id] = true
	}

	fields := make([]DetailField, 0, len(p.ColumnDefs))
	for _, def := range p.ColumnDefs {
		if skip[def.Field] {
			continue
		}
		v := row[def.Field]
		field := DetailField{Name: def.Field, Display: n.FormatScalar(v)}
		if s, ok := v.(string); ok && !isEmpty(s) {
			field.Segments = ColorizeTags(s)
		}
		fields = append(fields, field)
	}

	return RowDetail{Index: index, Title: title, Fields: fields}, nil
}
