// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Option configures a Switcher.
type Option func(*Switcher)

// WithMenu sets the overlay closed on every switch.
func WithMenu(m Menu) Option {
	return func(s *Switcher) { s.menu = m }
}

// WithReusePolicy sets how a switch to the active page id is treated.
func WithReusePolicy(p ReusePolicy) Option {
	return func(s *Switcher) { s.policy = p }
}

// WithErrorHandler registers fn to receive unknown page, fetch and render
// errors after they are logged. Stale results never reach it.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Switcher) { s.onError = fn }
}

// slot holds one page instance and its last rendered data.
type slot struct {
	id         ID
	params     Params
	page       Page
	generation uint64
	results    []json.RawMessage
	ready      bool
	released   bool
}

// Switcher owns the active page. Every mount attempt is tagged with a
// generation number; loads whose generation is no longer current are
// discarded without touching the region.
//
// active is the page the last switch asked for and shown is the page whose
// view is in the region. They differ while a load is in flight. When a load
// fails shown becomes active again.
type Switcher struct {
	registry  Registry
	requester Requester
	region    Region
	menu      Menu
	policy    ReusePolicy
	onError   func(error)

	// mountMu makes the generation check and Region.Mount atomic with
	// respect to a generation bump.
	mountMu sync.Mutex

	mu         sync.Mutex
	active     *slot
	shown      *slot
	generation uint64
	cancel     context.CancelFunc
	closed     bool
	wg         sync.WaitGroup
}

func NewSwitcher(registry Registry, requester Requester, region Region, opts ...Option) *Switcher {
	s := &Switcher{
		registry:  registry,
		requester: requester,
		region:    region,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SwitchTo makes id the active page. A switch to the active id that the reuse
// policy accepts only closes the menu. Otherwise the previous instance is
// released, a new one is constructed from params and its data is loaded in
// the background before it is mounted.
func (s *Switcher) SwitchTo(id ID, params Params) error {
	factory, ok := s.registry[id]
	if !ok {
		err := &UnknownPageError{ID: id}
		s.report(err)
		return err
	}

	if s.menu != nil {
		s.menu.Close()
	}

	s.mountMu.Lock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.mountMu.Unlock()
		return ErrClosed
	}
	if s.active != nil && s.active.id == id && s.policy.reuse(s.active.params, params) {
		s.mu.Unlock()
		s.mountMu.Unlock()
		return nil
	}
	gen, ctx := s.bumpLocked()
	prev := s.active
	s.active = nil
	s.mu.Unlock()
	s.mountMu.Unlock()

	if prev != nil {
		s.release(prev)
	}
	page := factory(params)

	s.mu.Lock()
	if s.closed || s.generation != gen {
		closed := s.closed
		s.mu.Unlock()
		if r, ok := page.(Releaser); ok {
			r.Release()
		}
		if closed {
			return ErrClosed
		}
		// A later switch won the race.
		return nil
	}
	sl := &slot{id: id, params: params, page: page, generation: gen}
	s.active = sl
	s.wg.Add(1)
	s.mu.Unlock()

	slog.Debug("page switch", "page", id, "generation", gen)
	go s.load(ctx, sl, gen)
	return nil
}

// Reload refetches the shown page's data under a new generation, keeping
// the instance. It does nothing while another page is loading.
func (s *Switcher) Reload() error {
	s.mountMu.Lock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.mountMu.Unlock()
		return ErrClosed
	}
	sl := s.active
	if sl == nil || sl != s.shown {
		s.mu.Unlock()
		s.mountMu.Unlock()
		return nil
	}
	gen, ctx := s.bumpLocked()
	sl.generation = gen
	s.wg.Add(1)
	s.mu.Unlock()
	s.mountMu.Unlock()

	go s.load(ctx, sl, gen)
	return nil
}

// Rerender renders the shown page again from its last results. It does
// nothing while another page is loading.
func (s *Switcher) Rerender() error {
	s.mu.Lock()
	sl := s.active
	if sl == nil || sl != s.shown || !sl.ready {
		s.mu.Unlock()
		return nil
	}
	gen, results := sl.generation, sl.results
	s.mu.Unlock()

	view, err := sl.page.Render(results)
	if err != nil {
		err = fmt.Errorf("pages: render %s: %w", sl.id, err)
		s.report(err)
		return err
	}
	s.mount(sl, gen, results, view)
	return nil
}

// Active returns the id of the page the last switch settled on: the loading
// page, or the shown one after a failed load.
func (s *Switcher) Active() (ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return "", false
	}
	return s.active.id, true
}

// Current returns the page whose view is mounted, or nil. Links and
// actions belong to this page, even while another one loads.
func (s *Switcher) Current() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shown == nil {
		return nil
	}
	return s.shown.page
}

// Generation returns the current generation number.
func (s *Switcher) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Wait blocks until every in-flight load has finished.
func (s *Switcher) Wait() {
	s.wg.Wait()
}

// Close cancels the in-flight load, releases the active page and waits for
// loads to finish. Further switches return ErrClosed.
func (s *Switcher) Close() {
	s.mountMu.Lock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.mountMu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	if s.cancel != nil {
		s.cancel()
	}
	active, shown := s.active, s.shown
	s.active, s.shown = nil, nil
	s.mu.Unlock()
	s.mountMu.Unlock()

	for _, sl := range []*slot{active, shown} {
		if sl != nil {
			s.release(sl)
		}
	}
	s.wg.Wait()
}

// bumpLocked starts a new generation and cancels the previous load.
func (s *Switcher) bumpLocked() (uint64, context.Context) {
	s.generation++
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	return s.generation, ctx
}

func (s *Switcher) load(ctx context.Context, sl *slot, gen uint64) {
	defer s.wg.Done()

	results, err := s.fetchAll(ctx, sl.id, sl.page.Fetches())
	if err == nil {
		var view string
		view, err = sl.page.Render(results)
		if err == nil {
			s.mount(sl, gen, results, view)
			return
		}
		err = fmt.Errorf("pages: render %s: %w", sl.id, err)
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		slog.Debug("stale page load dropped", "page", sl.id, "generation", gen)
		return
	}
	// The previous view stays mounted, so its page becomes active again.
	// The failed instance is dropped and the next switch to its id
	// constructs a fresh one.
	failed := sl != s.shown
	if s.active == sl && s.shown != nil {
		s.shown.generation = gen
	}
	if s.active == sl {
		s.active = s.shown
	}
	s.mu.Unlock()
	if failed {
		s.release(sl)
	}
	s.report(err)
}

// fetchAll issues every fetch concurrently and returns once all have
// resolved, or on the first failure.
func (s *Switcher) fetchAll(ctx context.Context, id ID, fetches []Fetch) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, len(fetches))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fetches {
		g.Go(func() error {
			raw, err := s.requester.Request(gctx, f.Route, f.Params)
			if err != nil {
				return &DataFetchError{Page: id, Route: f.Route, Err: err}
			}
			results[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Switcher) mount(sl *slot, gen uint64, results []json.RawMessage, view string) {
	s.mountMu.Lock()
	defer s.mountMu.Unlock()

	s.mu.Lock()
	current := s.generation == gen && s.active == sl
	if current {
		sl.results = results
		sl.ready = true
		s.shown = sl
	}
	s.mu.Unlock()
	if !current {
		slog.Debug("stale page render dropped", "page", sl.id, "generation", gen)
		return
	}
	s.region.Mount(sl.id, view)
}

func (s *Switcher) report(err error) {
	var fetchErr *DataFetchError
	switch {
	case errors.As(err, &fetchErr):
		slog.Error("page data fetch failed", "page", fetchErr.Page, "route", fetchErr.Route, "error", fetchErr.Err)
	default:
		slog.Error("page switch failed", "error", err)
	}
	if s.onError != nil {
		s.onError(err)
	}
}

// release frees the slot's page once.
func (s *Switcher) release(sl *slot) {
	s.mu.Lock()
	done := sl.released
	sl.released = true
	s.mu.Unlock()
	if done {
		return
	}
	if r, ok := sl.page.(Releaser); ok {
		r.Release()
	}
}
