// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package connectivity

import (
	"log/slog"
	"slices"
	"sync"
)

// Navigator is the part of the navigation surface the watcher drives.
type Navigator interface {
	Navigate(path string) error
}

// Watcher holds the process-wide online flag and redirects on every
// transition signal. Signals are not debounced; the last one wins.
type Watcher struct {
	nav         Navigator
	offlinePath string
	landingPath string

	mu          sync.Mutex
	online      bool
	subscribers []func(online bool)
}

// NewWatcher returns a watcher that starts online.
func NewWatcher(nav Navigator, offlinePath, landingPath string) *Watcher {
	return &Watcher{
		nav:         nav,
		offlinePath: offlinePath,
		landingPath: landingPath,
		online:      true,
	}
}

// SetOffline records the offline signal and navigates to the offline page.
func (w *Watcher) SetOffline() error {
	w.set(false)
	slog.Warn("connection lost", "redirect", w.offlinePath)
	return w.nav.Navigate(w.offlinePath)
}

// SetOnline records the online signal and navigates to the landing page.
func (w *Watcher) SetOnline() error {
	w.set(true)
	slog.Info("connection restored", "redirect", w.landingPath)
	return w.nav.Navigate(w.landingPath)
}

func (w *Watcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// Rewrite returns the offline path while offline and path otherwise. Link
// handlers call it before navigating.
func (w *Watcher) Rewrite(path string) string {
	if w.Online() {
		return path
	}
	return w.offlinePath
}

// Subscribe registers fn to be called with the new state on every signal.
func (w *Watcher) Subscribe(fn func(online bool)) {
	w.mu.Lock()
	w.subscribers = append(w.subscribers, fn)
	w.mu.Unlock()
}

func (w *Watcher) set(online bool) {
	w.mu.Lock()
	w.online = online
	subs := slices.Clone(w.subscribers)
	w.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
}
