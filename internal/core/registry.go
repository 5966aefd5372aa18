package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var errNotLoaded = errors.New("tab has not been loaded")

// TabInfo describes one tab of a page.
type TabInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// PageInfo contains display information about a page.
type PageInfo struct {
	Key         string    `json:"key"`         // Unique identifier: "skill-damage"
	Game        string    `json:"game"`        // Grouping: "Expedition 33"
	Label       string    `json:"label"`       // Display name: "Skill Damage"
	Path        string    `json:"path"`        // Route hint for the UI: "/skilldamage"
	Description string    `json:"description,omitempty"`
	Credit      string    `json:"credit,omitempty"`
	CreditURL   string    `json:"creditUrl,omitempty"`
	Tabs        []TabInfo `json:"tabs"`
}

// DefaultTab returns the ID of the first tab, or "" for a page without tabs.
func (p PageInfo) DefaultTab() string {
	if len(p.Tabs) == 0 {
		return ""
	}
	return p.Tabs[0].ID
}

func (p PageInfo) hasTab(id string) bool {
	for _, t := range p.Tabs {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Tab is a resolved, loaded tab.
type Tab struct {
	Page       PageInfo
	ID         string
	Payload    GridPayload
	Normalizer *Normalizer
}

// Detail builds the detail view for one row of the tab.
func (t Tab) Detail(index int, exclude ...string) (RowDetail, error) {
	return t.Normalizer.Detail(t.Payload, index, exclude...)
}

// TabStatus reports whether a tab loaded.
type TabStatus struct {
	Page    string `json:"page"`
	Tab     string `json:"tab"`
	Healthy bool   `json:"healthy"`
	Rows    int    `json:"rows"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

type tabEntry struct {
	payload GridPayload
	err     error
	loaded  bool
}

type pageEntry struct {
	info       PageInfo
	normalizer *Normalizer
	tabs       map[string]*tabEntry
}

// Registry holds every page and the payload (or load error) of each tab.
// It is filled once at start-up, possibly from several goroutines, and only
// read afterwards.
type Registry struct {
	mu      sync.RWMutex
	pages   map[string]*pageEntry
	buildID uuid.UUID
}

// NewRegistry creates an empty registry with a fresh build ID.
func NewRegistry() *Registry {
	return &Registry{
		pages:   make(map[string]*pageEntry),
		buildID: uuid.New(),
	}
}

// BuildID identifies this registry's contents. Payloads never change for a
// given build ID, so it doubles as a cache validator.
func (r *Registry) BuildID() uuid.UUID {
	return r.buildID
}

// RegisterPage adds a page and the normalizer used for its tabs.
// Returns an error if a page with the same key is already registered.
func (r *Registry) RegisterPage(info PageInfo, n *Normalizer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[info.Key]; exists {
		return fmt.Errorf("page already registered: %s", info.Key)
	}
	if n == nil {
		n = NewNormalizer(Options{})
	}

	entry := &pageEntry{
		info:       info,
		normalizer: n,
		tabs:       make(map[string]*tabEntry, len(info.Tabs)),
	}
	for _, t := range info.Tabs {
		entry.tabs[t.ID] = &tabEntry{}
	}
	r.pages[info.Key] = entry
	return nil
}

// Store records a loaded payload for a tab.
func (r *Registry) Store(pageKey, tabID string, payload GridPayload) {
	r.set(pageKey, tabID, &tabEntry{payload: payload, loaded: true})
}

// Fail records why a tab could not be loaded.
func (r *Registry) Fail(pageKey, tabID string, err error) {
	r.set(pageKey, tabID, &tabEntry{err: err})
}

func (r *Registry) set(pageKey, tabID string, e *tabEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pages[pageKey]; ok {
		if _, ok := p.tabs[tabID]; ok {
			p.tabs[tabID] = e
		}
	}
}

// Normalizer returns the normalizer registered for a page.
func (r *Registry) Normalizer(pageKey string) (*Normalizer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pages[pageKey]
	if !ok {
		return nil, false
	}
	return p.normalizer, true
}

// Page returns a page by key.
func (r *Registry) Page(key string) (PageInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pages[key]
	if !ok {
		return PageInfo{}, false
	}
	return p.info, true
}

// Lookup resolves a tab of a page. An empty or unknown tab ID falls back to
// the page's default tab. Tabs that failed to load return their load error.
func (r *Registry) Lookup(pageKey, tabID string) (Tab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pages[pageKey]
	if !ok {
		return Tab{}, NewSourceError(KindUnknownPage, pageKey, nil)
	}
	if !p.info.hasTab(tabID) {
		tabID = p.info.DefaultTab()
	}

	e, ok := p.tabs[tabID]
	if !ok {
		return Tab{}, NewSourceError(KindSourceNotFound, pageKey+"/"+tabID, errNotLoaded)
	}
	if e.err != nil {
		return Tab{}, e.err
	}
	if !e.loaded {
		return Tab{}, NewSourceError(KindSourceUnreadable, pageKey+"/"+tabID, errNotLoaded)
	}

	return Tab{
		Page:       p.info,
		ID:         tabID,
		Payload:    e.payload,
		Normalizer: p.normalizer,
	}, nil
}

// Pages returns all registered pages.
// Sorted by game then by key for consistent ordering.
func (r *Registry) Pages() []PageInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]PageInfo, 0, len(r.pages))
	for _, p := range r.pages {
		result = append(result, p.info)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Game != result[j].Game {
			return result[i].Game < result[j].Game
		}
		return result[i].Key < result[j].Key
	})

	return result
}

// ByGame returns all pages for a specific game, sorted by key.
func (r *Registry) ByGame(game string) []PageInfo {
	var result []PageInfo
	for _, p := range r.Pages() {
		if p.Game == game {
			result = append(result, p)
		}
	}
	return result
}

// Games returns all unique game names, sorted alphabetically.
func (r *Registry) Games() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, p := range r.pages {
		seen[p.info.Game] = true
	}

	games := make([]string, 0, len(seen))
	for g := range seen {
		games = append(games, g)
	}

	sort.Strings(games)
	return games
}

// Status reports every tab of a page in tab order.
func (r *Registry) Status(pageKey string) []TabStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pages[pageKey]
	if !ok {
		return nil
	}

	result := make([]TabStatus, 0, len(p.info.Tabs))
	for _, t := range p.info.Tabs {
		e := p.tabs[t.ID]
		st := TabStatus{Page: pageKey, Tab: t.ID, Healthy: e.loaded}
		switch {
		case e.loaded:
			st.Rows = len(e.payload.Rows)
		case e.err != nil:
			st.Error = e.err.Error()
			st.Code = MapError(e.err).Code
		default:
			st.Error = errNotLoaded.Error()
		}
		result = append(result, st)
	}
	return result
}

// Healthy returns how many tabs loaded successfully.
func (r *Registry) Healthy() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.pages {
		for _, e := range p.tabs {
			if e.loaded {
				n++
			}
		}
	}
	return n
}

// TabCount returns the number of registered tabs.
func (r *Registry) TabCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.pages {
		n += len(p.tabs)
	}
	return n
}
