package router

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Router receives route registrations in mount mode.
type Router interface {
	// Register mounts h under path. The path is "/" or starts with "/";
	// it ends with "/" for directory-index routes.
	Register(path string, h http.Handler)
}

// RouterFunc is a function adapter for Router.
type RouterFunc func(path string, h http.Handler)

// Register implements Router.
func (f RouterFunc) Register(path string, h http.Handler) {
	f(path, h)
}

// ChiRouter mounts routes on a chi router.
//
// Every route is registered as an exact pattern and as a subtree pattern,
// so a handler mounted at "/users" also receives "/users/...". chi prefers
// the most specific pattern, so deeper routes keep their own handlers.
// Handlers see the full request path.
type ChiRouter struct {
	mux chi.Router
}

// NewChiRouter wraps r.
func NewChiRouter(r chi.Router) *ChiRouter {
	return &ChiRouter{mux: r}
}

// Register implements Router.
func (c *ChiRouter) Register(path string, h http.Handler) {
	c.mux.Handle(path, h)
	c.mux.Handle(SubtreePattern(path), h)
}

// SubtreePattern returns the chi wildcard pattern covering everything below
// a route path.
//
//	"/"        → "/*"
//	"/users"   → "/users/*"
//	"/users/"  → "/users/*"
func SubtreePattern(path string) string {
	if strings.HasSuffix(path, "/") {
		return path + "*"
	}
	return path + "/*"
}

// Table records registrations in order. It is safe for concurrent reads
// while a mount is in progress.
type Table struct {
	mu      sync.RWMutex
	entries []TableEntry
}

// TableEntry is one recorded registration.
type TableEntry struct {
	Path    string
	Handler http.Handler
}

// Register implements Router.
func (t *Table) Register(path string, h http.Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TableEntry{Path: path, Handler: h})
}

// Entries returns a copy of the recorded registrations.
func (t *Table) Entries() []TableEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]TableEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Paths returns the registered paths in registration order.
func (t *Table) Paths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	paths := make([]string, len(t.entries))
	for i, e := range t.entries {
		paths[i] = e.Path
	}
	return paths
}
