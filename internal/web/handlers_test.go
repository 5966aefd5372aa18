package web

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/gamegrid/internal/config"
	"github.com/JonMunkholm/gamegrid/internal/core"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{RequestTimeout: 5 * time.Second},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

// testRegistry has one game with a loaded tab and a missing one, and a
// second game whose only tab loaded.
func testRegistry(t *testing.T) *core.Registry {
	t.Helper()
	reg := core.NewRegistry()

	n := core.NewNormalizer(core.Options{IdentityColumn: "Name", SortBy: "Name"})
	require.NoError(t, reg.RegisterPage(core.PageInfo{
		Key:   "xenosaga",
		Game:  "Xenosaga",
		Label: "Enemy Database",
		Tabs:  []core.TabInfo{{ID: "ep1", Label: "Episode I"}, {ID: "ep2", Label: "Episode II"}},
	}, n))
	reg.Store("xenosaga", "ep1", n.Payload(core.RawTable{
		Headers: []string{"Name", "HP", "Weakness"},
		Rows: [][]any{
			{"Gnosis", int64(1200), "Fire, Ice"},
			{"Cherubim", int64(99999), "Lightning"},
		},
	}))
	reg.Fail("xenosaga", "ep2", core.NewSourceError(core.KindSourceNotFound, "xenosaga/ep2", os.ErrNotExist))

	zones := core.NewNormalizer(core.Options{IdentityColumn: "Zone"})
	require.NoError(t, reg.RegisterPage(core.PageInfo{
		Key:   "zone-levels",
		Game:  "Expedition 33",
		Label: "Zone Levels",
		Tabs:  []core.TabInfo{{ID: "zones", Label: "Zones"}},
	}, zones))
	reg.Store("zone-levels", "zones", zones.Payload(core.RawTable{
		Headers: []string{"Zone", "Level"},
		Rows:    [][]any{{"Gestral Beach", 1}},
	}))
	return reg
}

func newTestServer(t *testing.T, reg *core.Registry, cfg *config.Config) *Server {
	t.Helper()
	s := NewServer(reg, cfg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func get(t *testing.T, s *Server, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	reg := testRegistry(t)
	s := newTestServer(t, reg, testConfig())

	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["healthy"])
	assert.EqualValues(t, 3, body["total"])
	assert.Equal(t, reg.BuildID().String(), body["build_id"])
}

func TestHealth_NothingLoaded(t *testing.T) {
	reg := core.NewRegistry()
	require.NoError(t, reg.RegisterPage(core.PageInfo{Key: "p", Tabs: []core.TabInfo{{ID: "a"}}}, nil))
	reg.Fail("p", "a", core.NewSourceError(core.KindSourceUnreadable, "p/a", nil))
	s := newTestServer(t, reg, testConfig())

	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decode[map[string]any](t, rec)["status"])
}

func TestListPages(t *testing.T) {
	s := newTestServer(t, testRegistry(t), testConfig())

	rec := get(t, s, "/api/pages")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body pagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Games, 2)
	assert.Equal(t, "Expedition 33", body.Games[0].Game)
	assert.Equal(t, "Xenosaga", body.Games[1].Game)

	xeno := body.Games[1].Pages[0]
	assert.Equal(t, "xenosaga", xeno.Key)
	assert.Equal(t, "ep1", xeno.DefaultTab)
	require.Len(t, xeno.Status, 2)
	assert.True(t, xeno.Status[0].Healthy)
	assert.Equal(t, 2, xeno.Status[0].Rows)
	assert.False(t, xeno.Status[1].Healthy)
	assert.Equal(t, "SRC001", xeno.Status[1].Code)
}

func TestPage(t *testing.T) {
	s := newTestServer(t, testRegistry(t), testConfig())

	rec := get(t, s, "/api/pages/zone-levels")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[pageResponse](t, rec)
	assert.Equal(t, "Zone Levels", body.Label)
	assert.Equal(t, []core.TabInfo{{ID: "zones", Label: "Zones"}}, body.Tabs)

	rec = get(t, s, "/api/pages/chrono-trigger")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SRC003", decode[ErrorResponse](t, rec).Code)
}

func TestGrid(t *testing.T) {
	s := newTestServer(t, testRegistry(t), testConfig())

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantTab  string
		wantErr  string
	}{
		{name: "default tab", target: "/api/pages/xenosaga/grid", wantCode: http.StatusOK, wantTab: "ep1"},
		{name: "unknown tab falls back", target: "/api/pages/xenosaga/grid?tab=ep9", wantCode: http.StatusOK, wantTab: "ep1"},
		{name: "failed tab", target: "/api/pages/xenosaga/grid?tab=ep2", wantCode: http.StatusServiceUnavailable, wantErr: "SRC001"},
		{name: "unknown page", target: "/api/pages/nope/grid", wantCode: http.StatusNotFound, wantErr: "SRC003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantErr != "" {
				body := decode[ErrorResponse](t, rec)
				assert.Equal(t, tt.wantErr, body.Code)
				assert.NotEmpty(t, body.Message)
				return
			}

			body := decode[map[string]any](t, rec)
			assert.Equal(t, tt.wantTab, body["tab"])
			rows := body["rowData"].([]any)
			require.Len(t, rows, 2)
			assert.Equal(t, "Cherubim", rows[0].(map[string]any)["Name"])
			cols := body["columnDefs"].([]any)
			assert.Equal(t, "Name", cols[0].(map[string]any)["field"])
			assert.Equal(t, "left", cols[0].(map[string]any)["pinned"])
		})
	}
}

func TestGrid_InfiniteFloat(t *testing.T) {
	reg := core.NewRegistry()
	n := core.NewNormalizer(core.Options{IdentityColumn: "Name"})
	require.NoError(t, reg.RegisterPage(core.PageInfo{Key: "bosses", Tabs: []core.TabInfo{{ID: "all"}}}, n))
	reg.Store("bosses", "all", n.Payload(core.RawTable{
		Headers: []string{"Name", "HP"},
		Rows:    [][]any{{"Omega", math.Inf(1)}, {"Gnosis", 10.0}},
	}))
	s := newTestServer(t, reg, testConfig())

	rec := get(t, s, "/api/pages/bosses/grid")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	rows := body["rowData"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "infinity", rows[0].(map[string]any)["HP"])
	cols := body["columnDefs"].([]any)
	assert.Equal(t, "text", cols[1].(map[string]any)["kind"])
}

func TestGrid_ETag(t *testing.T) {
	reg := testRegistry(t)
	s := newTestServer(t, reg, testConfig())

	rec := get(t, s, "/api/pages/xenosaga/grid")
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	assert.Contains(t, etag, reg.BuildID().String())

	rec = get(t, s, "/api/pages/xenosaga/grid?tab=ep1", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())

	rec = get(t, s, "/api/pages/xenosaga/grid", "If-None-Match", `"stale"`)
	assert.Equal(t, http.StatusOK, rec.Code)

	other := get(t, s, "/api/pages/zone-levels/grid").Header().Get("ETag")
	assert.NotEqual(t, etag, other)
}

func TestRowDetail(t *testing.T) {
	s := newTestServer(t, testRegistry(t), testConfig())

	rec := get(t, s, "/api/pages/xenosaga/grid/1")
	require.Equal(t, http.StatusOK, rec.Code)

	detail := decode[core.RowDetail](t, rec)
	assert.Equal(t, "Gnosis", detail.Title)
	require.Len(t, detail.Fields, 2)
	assert.Equal(t, core.DetailField{Name: "HP", Display: "1,200"}, detail.Fields[0])
	assert.Equal(t, "Weakness", detail.Fields[1].Name)
	assert.Equal(t, "red", detail.Fields[1].Segments[0].Style)

	for _, target := range []string{
		"/api/pages/xenosaga/grid/2",
		"/api/pages/xenosaga/grid/-1",
		"/api/pages/xenosaga/grid/first",
	} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "ROW001", decode[ErrorResponse](t, rec).Code, target)
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	s := newTestServer(t, testRegistry(t), testConfig())

	rec := get(t, s, "/api/tables")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodPost, "/api/pages", nil)
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, testRegistry(t), testConfig())

	rec := get(t, s, "/healthz")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	cfg := testConfig()
	cfg.Security.EnableCSP = false
	s = newTestServer(t, testRegistry(t), cfg)
	assert.Empty(t, get(t, s, "/healthz").Header().Get("Content-Security-Policy"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s := newTestServer(t, testRegistry(t), cfg)

	assert.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)

	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decode[ErrorResponse](t, rec).Code)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("10.0.0.1"))
}

func TestEtagMatches(t *testing.T) {
	const etag = `"b/p/t"`
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{etag, true},
		{`W/"b/p/t"`, true},
		{`"x", "b/p/t"`, true},
		{"*", true},
		{`"b/p/u"`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, etagMatches(tt.header, etag), tt.header)
	}
}
