// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"sync"

	"github.com/danielhkuo/kicker/pages"
)

// Region is the content area pages are mounted into. It is safe to mount
// from load goroutines; the program is told to redraw asynchronously.
type Region struct {
	mu     sync.Mutex
	id     pages.ID
	view   string
	err    error
	notify func()
}

func NewRegion() *Region {
	return &Region{}
}

// Mount replaces the content. It never blocks on the program.
func (r *Region) Mount(id pages.ID, view string) {
	r.mu.Lock()
	r.id, r.view, r.err = id, view, nil
	notify := r.notify
	r.mu.Unlock()
	if notify != nil {
		go notify()
	}
}

// ReportError records a page load failure shown in the status line. The
// mounted view stays.
func (r *Region) ReportError(err error) {
	r.mu.Lock()
	r.err = err
	notify := r.notify
	r.mu.Unlock()
	if notify != nil {
		go notify()
	}
}

// SetNotify sets the redraw callback.
func (r *Region) SetNotify(fn func()) {
	r.mu.Lock()
	r.notify = fn
	r.mu.Unlock()
}

// Content returns the mounted page and its view.
func (r *Region) Content() (pages.ID, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id, r.view
}

// Err returns the last load failure since the last mount.
func (r *Region) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
