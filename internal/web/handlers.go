package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/gamegrid/internal/core"
)

// healthResponse is the /healthz body.
type healthResponse struct {
	Status  string    `json:"status"`
	Healthy int       `json:"healthy"`
	Total   int       `json:"total"`
	BuildID uuid.UUID `json:"build_id"`
}

// pageResponse is a page with the load status of each tab.
type pageResponse struct {
	core.PageInfo
	DefaultTab string           `json:"defaultTab"`
	Status     []core.TabStatus `json:"status"`
}

// gameGroup lists the pages of one game.
type gameGroup struct {
	Game  string         `json:"game"`
	Pages []pageResponse `json:"pages"`
}

type pagesResponse struct {
	BuildID uuid.UUID   `json:"build_id"`
	Games   []gameGroup `json:"games"`
}

// gridResponse is the payload of one tab plus the resolved tab ID.
type gridResponse struct {
	Page string `json:"page"`
	Tab  string `json:"tab"`
	core.GridPayload
}

// handleHealth reports how many tabs loaded; 503 when none did.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Healthy: s.reg.Healthy(),
		Total:   s.reg.TabCount(),
		BuildID: s.reg.BuildID(),
	}

	status := http.StatusOK
	if resp.Healthy == 0 {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// handleListPages returns all pages grouped by game.
func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	resp := pagesResponse{BuildID: s.reg.BuildID(), Games: []gameGroup{}}
	for _, game := range s.reg.Games() {
		group := gameGroup{Game: game}
		for _, info := range s.reg.ByGame(game) {
			group.Pages = append(group.Pages, s.pageResponse(info))
		}
		resp.Games = append(resp.Games, group)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePage returns one page's metadata and tab status.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "page")
	info, ok := s.reg.Page(key)
	if !ok {
		respondError(w, r, core.NewSourceError(core.KindUnknownPage, key, nil))
		return
	}
	writeJSON(w, http.StatusOK, s.pageResponse(info))
}

func (s *Server) pageResponse(info core.PageInfo) pageResponse {
	return pageResponse{
		PageInfo:   info,
		DefaultTab: info.DefaultTab(),
		Status:     s.reg.Status(info.Key),
	}
}

// handleGrid returns the grid payload of a tab. An empty or unknown tab
// query falls back to the page's default tab. Payloads never change for a
// build, so the ETag is the build ID plus the resolved tab.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "page")
	tab, err := s.reg.Lookup(key, r.URL.Query().Get("tab"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	etag := s.etag(tab)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, http.StatusOK, gridResponse{
		Page:        key,
		Tab:         tab.ID,
		GridPayload: tab.Payload,
	})
}

// handleRowDetail returns the detail view of one row.
func (s *Server) handleRowDetail(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "page")
	tab, err := s.reg.Lookup(key, r.URL.Query().Get("tab"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	raw := chi.URLParam(r, "row")
	index, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %q is not a row index", core.ErrRowNotFound, raw))
		return
	}

	detail, err := tab.Detail(index)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, fmt.Errorf("%w: %s", errRouteNotFound, r.URL.Path))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, fmt.Errorf("%w: %s %s", errMethod, r.Method, r.URL.Path))
}

func (s *Server) etag(tab core.Tab) string {
	return fmt.Sprintf(`"%s/%s/%s"`, s.reg.BuildID(), tab.Page.Key, tab.ID)
}

// etagMatches reports whether an If-None-Match header lists etag.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}
