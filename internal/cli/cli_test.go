package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/gamegrid/internal/core"
)

const testCatalog = `
pages:
  - key: bosses
    game: Test Game
    label: Bosses
    identity: Name
    tabs:
      - id: act1
        label: Act 1
        headers: [Name, HP, Weakness]
        rows:
          - [Gnosis, 1200, "Fire, Ice"]
          - [Cherubim, 99999, Lightning]
      - id: act2
        label: Act 2
        csv: act2.csv
`

// setupEnv points gridctl at a temp catalog whose second tab has no file.
func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))

	t.Setenv("CATALOG_PATH", path)
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")

	prevLogger := slog.Default()
	prevNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		slog.SetDefault(prevLogger)
		color.NoColor = prevNoColor
	})
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPages(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "pages")
	require.NoError(t, err)
	assert.Contains(t, out, "bosses")
	assert.Contains(t, out, "act1, act2")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "SRC001 bosses/act2")
}

func TestPages_JSON(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "pages", "-o", "json")
	require.NoError(t, err)

	var pages []pageStatus
	require.NoError(t, json.Unmarshal([]byte(out), &pages))
	require.Len(t, pages, 1)
	assert.Equal(t, "Test Game", pages[0].Game)
	require.Len(t, pages[0].Status, 2)
	assert.True(t, pages[0].Status[0].Healthy)
	assert.Equal(t, "SRC001", pages[0].Status[1].Code)
}

func TestGrid(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "grid", "bosses")
	require.NoError(t, err)
	assert.Contains(t, out, "Cherubim")
	assert.Contains(t, out, "99,999")
	assert.Contains(t, out, "Fire, Ice")
	assert.Contains(t, out, "(2 rows)")

	out, err = run(t, "grid", "bosses", "--limit", "1")
	require.NoError(t, err)
	assert.NotContains(t, out, "Cherubim")
	assert.Contains(t, out, "(1 of 2 rows)")
}

func TestGrid_JSON(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "grid", "bosses", "--tab", "act1", "-o", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "act1", got["tab"])
	assert.Len(t, got["rowData"], 2)
}

func TestGrid_Errors(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "grid", "bosses", "--tab", "act2")
	assert.ErrorIs(t, err, core.ErrDataSourceNotFound)

	_, err = run(t, "grid", "villains")
	assert.ErrorIs(t, err, core.ErrUnknownPage)
	assert.ErrorContains(t, err, "known: bosses")

	_, err = run(t, "grid")
	assert.Error(t, err)
}

func TestRow(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "row", "bosses", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Gnosis (row 0)")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "Fire, Ice")

	out, err = run(t, "row", "bosses", "1", "-o", "json")
	require.NoError(t, err)
	var detail core.RowDetail
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	assert.Equal(t, "Cherubim", detail.Title)
	require.Len(t, detail.Fields, 2)
	assert.Equal(t, []core.TagSegment{{Text: "Lightning", Style: "yellow"}}, detail.Fields[1].Segments)
}

func TestRow_Errors(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "row", "bosses", "7")
	assert.ErrorIs(t, err, core.ErrRowNotFound)

	_, err = run(t, "row", "bosses", "last")
	assert.ErrorIs(t, err, core.ErrRowNotFound)
}

func TestColumns(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "columns", "bosses", "-o", "json")
	require.NoError(t, err)

	var defs []core.ColumnDefinition
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	require.Len(t, defs, 3)
	assert.Equal(t, core.ColumnDefinition{Field: "Name", HeaderName: "Name", Kind: core.KindText, Pinned: core.PinLeft}, defs[0])
	assert.Equal(t, core.KindNumeric, defs[1].Kind)
	assert.True(t, defs[1].ThousandsFormat)

	out, err = run(t, "columns", "bosses")
	require.NoError(t, err)
	assert.Contains(t, out, "Weakness")
	assert.Contains(t, out, "numeric")
}

func TestFlags(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "pages", "-o", "yaml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = run(t, "pages", "--catalog", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "load catalog")

	// An empty data dir leaves only the inline tab loadable.
	out, err := run(t, "pages", "--data-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "1/2")
}

func TestColorize(t *testing.T) {
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })
	color.NoColor = true

	segments := core.ColorizeTags("Fire, Holy")
	assert.Equal(t, "Fire, Holy", colorize(segments))

	color.NoColor = false
	got := colorize(segments)
	assert.Contains(t, got, "\x1b[31mFire")
	assert.Contains(t, got, ", Holy")
}
