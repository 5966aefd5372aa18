package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/JonMunkholm/gamegrid/internal/core"
)

// styleColors maps tag styles to terminal colours.
var styleColors = map[string]*color.Color{
	"red":       color.New(color.FgRed),
	"yellow":    color.New(color.FgYellow),
	"lightblue": color.New(color.FgHiCyan),
	"green":     color.New(color.FgGreen),
}

var (
	titleColor = color.New(color.Bold)
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	failColor  = color.New(color.FgRed)
)

// colorize renders tag segments with their colours. Unstyled segments and
// unknown styles print as plain text.
func colorize(segments []core.TagSegment) string {
	var b strings.Builder
	for _, seg := range segments {
		if c, ok := styleColors[seg.Style]; ok {
			b.WriteString(c.Sprint(seg.Text))
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderPages(w io.Writer, pages []pageStatus) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Game", "Page", "Label", "Tabs", "Loaded"})

	for _, p := range pages {
		healthy := 0
		for _, s := range p.Status {
			if s.Healthy {
				healthy++
			}
		}

		loaded := fmt.Sprintf("%d/%d", healthy, len(p.Status))
		switch {
		case healthy == len(p.Status):
			loaded = okColor.Sprint(loaded)
		case healthy == 0:
			loaded = failColor.Sprint(loaded)
		default:
			loaded = warnColor.Sprint(loaded)
		}

		t.AppendRow(table.Row{p.Game, p.Key, p.Label, tabIDs(p.PageInfo), loaded})
	}
	t.Render()

	for _, p := range pages {
		for _, s := range p.Status {
			if !s.Healthy {
				fmt.Fprintf(w, "%s %s/%s: %s\n", failColor.Sprint(s.Code), s.Page, s.Tab, s.Error)
			}
		}
	}
}

func renderGrid(w io.Writer, tab core.Tab, limit int) {
	defs := tab.Payload.ColumnDefs
	placeholder := tab.Normalizer.Options().Placeholder

	t := newTable(w)
	header := make(table.Row, len(defs))
	configs := make([]table.ColumnConfig, 0, len(defs))
	for i, def := range defs {
		header[i] = def.HeaderName
		if def.Kind == core.KindNumeric {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	rows := tab.Payload.Rows
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	for _, r := range rows {
		out := make(table.Row, len(defs))
		for i, def := range defs {
			v := r[def.Field]
			if s, ok := v.(string); ok && def.Kind == core.KindText {
				out[i] = colorize(core.ColorizeTags(s))
				continue
			}
			out[i] = def.Format(v, placeholder)
		}
		t.AppendRow(out)
	}
	t.Render()

	if len(rows) < len(tab.Payload.Rows) {
		fmt.Fprintf(w, "(%d of %d rows)\n", len(rows), len(tab.Payload.Rows))
		return
	}
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func renderColumns(w io.Writer, defs []core.ColumnDefinition) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Field", "Kind", "Range", "Thousands", "Pinned"})
	for _, def := range defs {
		t.AppendRow(table.Row{def.Field, def.Kind, yesNo(def.RangeExtraction), yesNo(def.ThousandsFormat), def.Pinned})
	}
	t.Render()
}

func renderDetail(w io.Writer, d core.RowDetail) {
	fmt.Fprintf(w, "%s (row %d)\n", titleColor.Sprint(d.Title), d.Index)

	width := 0
	for _, f := range d.Fields {
		width = max(width, len(f.Name))
	}
	for _, f := range d.Fields {
		value := f.Display
		if len(f.Segments) > 0 {
			value = colorize(f.Segments)
		}
		fmt.Fprintf(w, "  %-*s  %s\n", width, f.Name, value)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
