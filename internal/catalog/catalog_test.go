package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/gamegrid/internal/core"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	keys := make([]string, len(c.Pages))
	for i, p := range c.Pages {
		keys[i] = p.Key
	}
	assert.Equal(t, []string{"skill-damage", "zone-levels", "xenosaga"}, keys)

	skills, ok := c.Page("skill-damage")
	require.True(t, ok)
	assert.Equal(t, "Skill", skills.Identity)
	assert.Len(t, skills.Tabs, 6)
	assert.Equal(t, "maelle", skills.Tabs[0].ID)
	for _, tab := range skills.Tabs {
		assert.Equal(t, SourceCSV, tab.Kind(), tab.ID)
	}

	zones, ok := c.Page("zone-levels")
	require.True(t, ok)
	require.Len(t, zones.Tabs, 1)
	assert.Equal(t, SourceInline, zones.Tabs[0].Kind())
	assert.Equal(t, []string{"Zone", "Level"}, zones.Tabs[0].Headers)
	assert.Len(t, zones.Tabs[0].Rows, 60)
	assert.Equal(t, []any{"Gestral Beach", 1}, zones.Tabs[0].Rows[0])
	assert.Equal(t, []any{"The Abyss", 99}, zones.Tabs[0].Rows[59])

	xeno, ok := c.Page("xenosaga")
	require.True(t, ok)
	assert.Equal(t, "Name", xeno.SortBy)
	assert.Equal(t, "episode3", xeno.Tabs[2].Table)
	assert.Equal(t, "Episode III", xeno.Tabs[2].Label)

	assert.False(t, c.NeedsPostgres())
}

func TestDefault_SkillDamageDropsJunkColumns(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	page, _ := c.Page("skill-damage")

	n := core.NewNormalizer(page.Options(core.Options{}))
	cleaned := n.Clean(core.RawTable{
		Headers: []string{"Skill", "", "Test A", "Base Attack", "T2", "Damage"},
		Rows:    [][]any{{"Spark", "x", "y", "10", "t", "200"}},
	})
	assert.Equal(t, []string{"Skill", "Damage"}, cleaned.Columns)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty document",
			yaml:    "",
			wantErr: "empty",
		},
		{
			name:    "unknown field",
			yaml:    "pages:\n  - key: a\n    label: A\n    tabs:\n      - {id: t, cvs: a.csv}\n",
			wantErr: "cvs",
		},
		{
			name: "duplicate page key",
			yaml: `pages:
  - {key: a, label: A, tabs: [{id: t, csv: a.csv}]}
  - {key: a, label: B, tabs: [{id: t, csv: b.csv}]}
`,
			wantErr: "duplicate key",
		},
		{
			name:    "tab without source",
			yaml:    "pages:\n  - {key: a, label: A, tabs: [{id: t}]}\n",
			wantErr: "no source",
		},
		{
			name:    "tab with two sources",
			yaml:    "pages:\n  - {key: a, label: A, tabs: [{id: t, csv: a.csv, sqlite: a.db, table: x}]}\n",
			wantErr: "exactly one",
		},
		{
			name:    "unsafe table name",
			yaml:    "pages:\n  - {key: a, label: A, tabs: [{id: t, sqlite: a.db, table: \"x; DROP TABLE y\"}]}\n",
			wantErr: "safe identifier",
		},
		{
			name:    "postgres without table",
			yaml:    "pages:\n  - {key: a, label: A, tabs: [{id: t, postgres: true}]}\n",
			wantErr: "safe identifier",
		},
		{
			name:    "duplicate tab id",
			yaml:    "pages:\n  - {key: a, label: A, tabs: [{id: t, csv: a.csv}, {id: t, csv: b.csv}]}\n",
			wantErr: "duplicate tab id",
		},
		{
			name:    "inline row wider than headers",
			yaml:    "pages:\n  - {key: a, label: A, tabs: [{id: t, headers: [X], rows: [[1, 2]]}]}\n",
			wantErr: "2 cells for 1 headers",
		},
		{
			name:    "sheet on csv",
			yaml:    "pages:\n  - {key: a, label: A, tabs: [{id: t, csv: a.csv, sheet: S}]}\n",
			wantErr: "sheet only applies",
		},
		{
			name:    "empty drop rule",
			yaml:    "pages:\n  - {key: a, label: A, drop_columns: [{}], tabs: [{id: t, csv: a.csv}]}\n",
			wantErr: "equals or prefix",
		},
		{
			name:    "bad page key",
			yaml:    "pages:\n  - {key: Skill Damage, label: A, tabs: [{id: t, csv: a.csv}]}\n",
			wantErr: "lowercase",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `pages:
  - key: bosses
    game: Expedition 33
    label: Bosses
    identity: Boss
    tabs:
      - {id: act1, label: Act I, xlsx: bosses.xlsx, sheet: Act1}
      - {id: act2, postgres: true, table: bosses_act2}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.NeedsPostgres())

	page := c.Pages[0]
	assert.Equal(t, SourceXLSX, page.Tabs[0].Kind())
	assert.Equal(t, filepath.Join("data", "bosses.xlsx"), page.Tabs[0].File("data"))
	assert.Equal(t, "", page.Tabs[1].File("data"))

	info := page.Info()
	assert.Equal(t, "act1", info.DefaultTab())
	assert.Equal(t, "act2", info.Tabs[1].Label, "missing label falls back to id")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestTabFile_Absolute(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "x.csv")
	tab := Tab{ID: "x", CSV: abs}
	assert.Equal(t, abs, tab.File("ignored"))
}

func TestPageOptions(t *testing.T) {
	defaults := core.Options{
		IdentityColumn: "Name",
		SampleSize:     50,
		DropColumns:    []core.ColumnPredicate{{Equals: "uuid"}},
	}
	page := Page{
		Identity:    "Skill",
		SortBy:      "Skill",
		DropColumns: []ColumnRule{{Prefix: "Extra"}},
	}

	opts := page.Options(defaults)
	assert.Equal(t, "Skill", opts.IdentityColumn)
	assert.Equal(t, "Skill", opts.SortBy)
	assert.Equal(t, 50, opts.SampleSize)
	assert.Equal(t, []core.ColumnPredicate{{Equals: "uuid"}, {Prefix: "Extra"}}, opts.DropColumns)
	assert.Len(t, defaults.DropColumns, 1, "defaults must not be modified")

	assert.Equal(t, "Name", Page{}.Options(defaults).IdentityColumn)
}
