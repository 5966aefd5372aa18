// Package catalog describes the pages gamegrid serves and where the data for
// each of their tabs comes from.
//
// A catalog is a YAML document:
//
//	pages:
//	  - key: xenosaga
//	    game: Xenosaga
//	    label: Enemy Database
//	    identity: Name
//	    sort_by: Name
//	    tabs:
//	      - {id: ep1, label: Episode I, sqlite: xenosaga/xenosaga.db, table: episode1}
//
// Every tab names exactly one source: csv, xlsx, sqlite, postgres or inline
// headers and rows. A catalog built into the binary reproduces the site's
// default pages.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/gamegrid/internal/core"
)

//go:embed default.yaml
var defaultCatalog []byte

// SourceKind identifies where a tab's rows come from.
type SourceKind string

const (
	SourceCSV      SourceKind = "csv"
	SourceXLSX     SourceKind = "xlsx"
	SourceSQLite   SourceKind = "sqlite"
	SourcePostgres SourceKind = "postgres"
	SourceInline   SourceKind = "inline"
)

var (
	slugPattern       = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Catalog is the list of pages to serve.
type Catalog struct {
	Pages []Page `yaml:"pages"`
}

// ColumnRule drops columns whose final name equals or starts with a string.
type ColumnRule struct {
	Equals string `yaml:"equals,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
}

// Page is one catalog entry.
type Page struct {
	Key         string       `yaml:"key"`
	Game        string       `yaml:"game"`
	Label       string       `yaml:"label"`
	Path        string       `yaml:"path,omitempty"`
	Identity    string       `yaml:"identity,omitempty"`
	SortBy      string       `yaml:"sort_by,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Credit      string       `yaml:"credit,omitempty"`
	CreditURL   string       `yaml:"credit_url,omitempty"`
	DropColumns []ColumnRule `yaml:"drop_columns,omitempty"`
	Tabs        []Tab        `yaml:"tabs"`
}

// Tab is one data source of a page.
type Tab struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`

	CSV      string `yaml:"csv,omitempty"`
	XLSX     string `yaml:"xlsx,omitempty"`
	Sheet    string `yaml:"sheet,omitempty"`
	SQLite   string `yaml:"sqlite,omitempty"`
	Postgres bool   `yaml:"postgres,omitempty"`
	Table    string `yaml:"table,omitempty"`

	Headers []string `yaml:"headers,omitempty"`
	Rows    [][]any  `yaml:"rows,omitempty"`
}

// Kinds lists every source the tab declares. A valid tab has exactly one.
func (t Tab) Kinds() []SourceKind {
	var kinds []SourceKind
	if t.CSV != "" {
		kinds = append(kinds, SourceCSV)
	}
	if t.XLSX != "" {
		kinds = append(kinds, SourceXLSX)
	}
	if t.SQLite != "" {
		kinds = append(kinds, SourceSQLite)
	}
	if t.Postgres {
		kinds = append(kinds, SourcePostgres)
	}
	if len(t.Headers) > 0 {
		kinds = append(kinds, SourceInline)
	}
	return kinds
}

// Kind returns the tab's source kind, or "" when it does not declare exactly one.
func (t Tab) Kind() SourceKind {
	kinds := t.Kinds()
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// File returns the tab's source file resolved against dir. Absolute paths
// are returned unchanged. Tabs without a file return "".
func (t Tab) File(dir string) string {
	var p string
	switch t.Kind() {
	case SourceCSV:
		p = t.CSV
	case SourceXLSX:
		p = t.XLSX
	case SourceSQLite:
		p = t.SQLite
	default:
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, filepath.FromSlash(p))
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// Parse decodes and validates a catalog. Unknown fields are rejected so that
// typos in source keys do not silently produce empty tabs.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that the catalog is usable.
// Returns an error describing all validation failures.
func (c *Catalog) Validate() error {
	var errs []string

	if len(c.Pages) == 0 {
		errs = append(errs, "catalog has no pages")
	}

	pageKeys := make(map[string]bool, len(c.Pages))
	for i, p := range c.Pages {
		where := fmt.Sprintf("pages[%d]", i)
		if p.Key != "" {
			where = fmt.Sprintf("page %q", p.Key)
		}

		switch {
		case p.Key == "":
			errs = append(errs, where+": key is required")
		case !slugPattern.MatchString(p.Key):
			errs = append(errs, fmt.Sprintf("%s: key must be lowercase letters, digits and dashes", where))
		case pageKeys[p.Key]:
			errs = append(errs, where+": duplicate key")
		}
		pageKeys[p.Key] = true

		if strings.TrimSpace(p.Label) == "" {
			errs = append(errs, where+": label is required")
		}
		if len(p.Tabs) == 0 {
			errs = append(errs, where+": at least one tab is required")
		}
		for j, r := range p.DropColumns {
			if r.Equals == "" && r.Prefix == "" {
				errs = append(errs, fmt.Sprintf("%s: drop_columns[%d] needs equals or prefix", where, j))
			}
		}

		tabIDs := make(map[string]bool, len(p.Tabs))
		for j, t := range p.Tabs {
			errs = append(errs, validateTab(fmt.Sprintf("%s tabs[%d]", where, j), t, tabIDs)...)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid catalog:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateTab(where string, t Tab, seen map[string]bool) []string {
	var errs []string

	switch {
	case t.ID == "":
		errs = append(errs, where+": id is required")
	case !slugPattern.MatchString(t.ID):
		errs = append(errs, fmt.Sprintf("%s: id %q must be lowercase letters, digits, dashes and underscores", where, t.ID))
	case seen[t.ID]:
		errs = append(errs, fmt.Sprintf("%s: duplicate tab id %q", where, t.ID))
	}
	seen[t.ID] = true

	kinds := t.Kinds()
	switch len(kinds) {
	case 0:
		errs = append(errs, where+": no source (csv, xlsx, sqlite, postgres or headers)")
		return errs
	case 1:
	default:
		errs = append(errs, fmt.Sprintf("%s: several sources %v, want exactly one", where, kinds))
		return errs
	}

	switch kinds[0] {
	case SourceSQLite, SourcePostgres:
		if !identifierPattern.MatchString(t.Table) {
			errs = append(errs, fmt.Sprintf("%s: table %q is not a safe identifier", where, t.Table))
		}
	case SourceInline:
		for k, row := range t.Rows {
			if len(row) > len(t.Headers) {
				errs = append(errs, fmt.Sprintf("%s: rows[%d] has %d cells for %d headers", where, k, len(row), len(t.Headers)))
			}
		}
	}
	if t.Sheet != "" && kinds[0] != SourceXLSX {
		errs = append(errs, where+": sheet only applies to xlsx sources")
	}
	if len(t.Rows) > 0 && kinds[0] != SourceInline {
		errs = append(errs, where+": rows need headers")
	}
	return errs
}

// Page returns a page by key.
func (c *Catalog) Page(key string) (Page, bool) {
	for _, p := range c.Pages {
		if p.Key == key {
			return p, true
		}
	}
	return Page{}, false
}

// NeedsPostgres reports whether any tab reads from Postgres.
func (c *Catalog) NeedsPostgres() bool {
	for _, p := range c.Pages {
		for _, t := range p.Tabs {
			if t.Kind() == SourcePostgres {
				return true
			}
		}
	}
	return false
}

// Info converts the page to its registry description.
func (p Page) Info() core.PageInfo {
	tabs := make([]core.TabInfo, len(p.Tabs))
	for i, t := range p.Tabs {
		label := t.Label
		if label == "" {
			label = t.ID
		}
		tabs[i] = core.TabInfo{ID: t.ID, Label: label}
	}
	return core.PageInfo{
		Key:         p.Key,
		Game:        p.Game,
		Label:       p.Label,
		Path:        p.Path,
		Description: p.Description,
		Credit:      p.Credit,
		CreditURL:   p.CreditURL,
		Tabs:        tabs,
	}
}

// Options layers the page's normalization settings over defaults.
func (p Page) Options(defaults core.Options) core.Options {
	opts := defaults
	if p.Identity != "" {
		opts.IdentityColumn = p.Identity
	}
	if p.SortBy != "" {
		opts.SortBy = p.SortBy
	}
	opts.DropColumns = append([]core.ColumnPredicate(nil), defaults.DropColumns...)
	for _, r := range p.DropColumns {
		opts.DropColumns = append(opts.DropColumns, core.ColumnPredicate{Equals: r.Equals, Prefix: r.Prefix})
	}
	return opts
}
