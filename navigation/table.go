// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package navigation

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

var (
	ErrNoDefaultRoute = errors.New("navigation: no default route registered")
	ErrNoRouteMatched = errors.New("navigation: no route matched")
)

// Handler receives the capture groups of the matching pattern.
type Handler func(args ...string)

// Route binds a pattern to its handler.
type Route struct {
	Pattern *regexp.Regexp
	Handler Handler
}

// Table is an ordered route list with a fallback. Patterns are searched
// (not anchored) in the path fragment left after stripping the root, so more
// specific patterns must be added first.
type Table struct {
	mu       sync.RWMutex
	root     string
	routes   []Route
	fallback Handler
}

func NewTable() *Table {
	return &Table{}
}

// SetRoot sets the mount prefix stripped before matching, e.g. "/app".
func (t *Table) SetRoot(root string) {
	t.mu.Lock()
	t.root = strings.TrimRight(root, "/")
	t.mu.Unlock()
}

// Add compiles pattern and appends it after the existing routes.
func (t *Table) Add(pattern string, h Handler) error {
	if h == nil {
		return fmt.Errorf("navigation: nil handler for %q", pattern)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("navigation: invalid pattern %q: %w", pattern, err)
	}
	t.mu.Lock()
	t.routes = append(t.routes, Route{Pattern: re, Handler: h})
	t.mu.Unlock()
	return nil
}

// AddDefault sets the handler run when no pattern matches.
func (t *Table) AddDefault(h Handler) {
	t.mu.Lock()
	t.fallback = h
	t.mu.Unlock()
}

// Validate reports a missing default route.
func (t *Table) Validate() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.fallback == nil {
		return ErrNoDefaultRoute
	}
	return nil
}

// Len returns the number of pattern routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}

// Fragment strips the root prefix and surrounding slashes from path.
func (t *Table) Fragment(path string) string {
	t.mu.RLock()
	root := t.root
	t.mu.RUnlock()
	return fragment(root, path)
}

func fragment(root, path string) string {
	if root != "" && (path == root || strings.HasPrefix(path, root+"/")) {
		path = path[len(root):]
	}
	return strings.Trim(path, "/")
}

// Dispatch runs the first route whose pattern matches path, passing its
// capture groups, and stops. The default runs when nothing matches.
// Handlers are called without the table lock held.
func (t *Table) Dispatch(path string) error {
	t.mu.RLock()
	routes := t.routes
	fallback := t.fallback
	frag := fragment(t.root, path)
	t.mu.RUnlock()

	for _, r := range routes {
		m := r.Pattern.FindStringSubmatch(frag)
		if m == nil {
			continue
		}
		slog.Debug("route matched", "path", path, "pattern", r.Pattern.String())
		r.Handler(m[1:]...)
		return nil
	}

	if fallback == nil {
		slog.Error("no route matched and no default route", "path", path)
		return fmt.Errorf("%w: %s", ErrNoRouteMatched, path)
	}
	slog.Debug("default route", "path", path)
	fallback()
	return nil
}
