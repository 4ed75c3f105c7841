// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
)

// ID names an entry in the page registry.
type ID string

// Params are the route arguments a page is constructed from.
type Params map[string]string

// Fetch is one data request a page needs before it can render.
type Fetch struct {
	Route  string
	Params map[string]any
}

// Page is a mountable unit of UI. Fetches are issued concurrently and Render
// receives their results in the same order.
type Page interface {
	Fetches() []Fetch
	Render(results []json.RawMessage) (string, error)
}

// Releaser is implemented by pages holding resources that must be freed when
// the page is replaced. Release is called at most once. A released page
// whose view is still mounted may be rendered again from its last results.
type Releaser interface {
	Release()
}

// Factory constructs a page instance.
type Factory func(Params) Page

// Registry maps page identifiers to their factories. It is fixed at startup.
type Registry map[ID]Factory

// Requester sends a request and returns the JSON result.
type Requester interface {
	Request(ctx context.Context, route string, params map[string]any) (json.RawMessage, error)
}

// Region is the content area pages are mounted into. Mount must not call
// back into the Switcher.
type Region interface {
	Mount(id ID, view string)
}

// Menu is the slide-out navigation overlay.
type Menu interface {
	Close()
}

// ReusePolicy decides whether a SwitchTo for the active page id keeps the
// current instance.
type ReusePolicy int

const (
	// ReuseByID keeps the instance whenever the id matches, even if params differ.
	ReuseByID ReusePolicy = iota
	// ReuseByParams keeps the instance only when id and params both match.
	ReuseByParams
)

func (p ReusePolicy) String() string {
	if p == ReuseByParams {
		return "params"
	}
	return "id"
}

// ParseReusePolicy parses "id" or "params".
func ParseReusePolicy(s string) (ReusePolicy, error) {
	switch strings.ToLower(s) {
	case "", "id":
		return ReuseByID, nil
	case "params":
		return ReuseByParams, nil
	default:
		return ReuseByID, fmt.Errorf("pages: unknown reuse policy %q", s)
	}
}

func (p ReusePolicy) reuse(old, next Params) bool {
	if p == ReuseByParams {
		return maps.Equal(old, next)
	}
	return true
}

var ErrClosed = errors.New("pages: switcher closed")

// UnknownPageError reports a SwitchTo for an id missing from the registry.
type UnknownPageError struct {
	ID ID
}

func (e *UnknownPageError) Error() string {
	return fmt.Sprintf("pages: unknown page %q", e.ID)
}

// DataFetchError reports a failed data request for a page.
type DataFetchError struct {
	Page  ID
	Route string
	Err   error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("pages: fetch %s for %s: %v", e.Route, e.Page, e.Err)
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}
