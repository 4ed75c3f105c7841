// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Mode selects how the current path is reflected in the address.
type Mode int

const (
	ModeHistory Mode = iota
	ModeHash
)

func (m Mode) String() string {
	if m == ModeHash {
		return "hash"
	}
	return "history"
}

// ParseMode parses "history" or "hash".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "history":
		return ModeHistory, nil
	case "hash":
		return ModeHash, nil
	default:
		return ModeHistory, fmt.Errorf("navigation: unknown mode %q", s)
	}
}

type Config struct {
	Mode Mode
	// Root is the application mount prefix, e.g. "/app".
	Root string
	// Start is the location before any navigation. Defaults to Root.
	Start string
}

var ErrAlreadyConfigured = errors.New("navigation: navigator already configured")

// Navigator owns the current path and an in-memory history stack, and
// dispatches every path change through its Table.
//
// Dispatches run one at a time in the order their history changes were
// made, so the last handler run always matches the current path. A change
// made while another caller is dispatching, including from inside a
// handler, is queued and run by that caller before it returns.
type Navigator struct {
	table *Table

	mu          sync.Mutex
	cfg         Config
	configured  bool
	entries     []string
	cursor      int
	subscribers []func(addr string)
	pending     []dispatch
	dispatching bool
}

// dispatch is a queued path change.
type dispatch struct {
	path string
	addr string
}

func NewNavigator(table *Table) *Navigator {
	return &Navigator{table: table, entries: []string{"/"}}
}

// Configure sets the mode and root. It may be called once, before use.
func (n *Navigator) Configure(cfg Config) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.configured {
		return ErrAlreadyConfigured
	}

	root, err := CanonicalizePath(cfg.Root)
	if err != nil {
		return err
	}
	if root == "/" {
		root = ""
	}
	cfg.Root = root

	start := cfg.Start
	if start == "" {
		start = root
	}
	start, err = CanonicalizePath(start)
	if err != nil {
		return err
	}
	cfg.Start = start

	n.cfg = cfg
	n.configured = true
	n.entries = []string{start}
	n.cursor = 0
	n.table.SetRoot(root)
	return nil
}

// Subscribe registers fn to be called with the new address after each change.
func (n *Navigator) Subscribe(fn func(addr string)) {
	n.mu.Lock()
	n.subscribers = append(n.subscribers, fn)
	n.mu.Unlock()
}

// Navigate pushes path onto the history and dispatches it. Navigating to the
// current path replaces the entry instead of pushing a duplicate.
func (n *Navigator) Navigate(path string) error {
	return n.change(path, false)
}

// Replace swaps the current history entry for path and dispatches it.
func (n *Navigator) Replace(path string) error {
	return n.change(path, true)
}

func (n *Navigator) change(path string, replace bool) error {
	canon, err := CanonicalizePath(path)
	if err != nil {
		return err
	}

	n.mu.Lock()
	if replace || n.entries[n.cursor] == canon {
		n.entries[n.cursor] = canon
	} else {
		n.entries = append(n.entries[:n.cursor+1], canon)
		n.cursor++
	}
	return n.enqueueLocked(canon)
}

// Go moves the history cursor by delta and re-dispatches the new current
// path without pushing an entry. Moves past either end are ignored.
func (n *Navigator) Go(delta int) error {
	n.mu.Lock()
	target := n.cursor + delta
	if delta == 0 || target < 0 || target >= len(n.entries) {
		n.mu.Unlock()
		return nil
	}
	n.cursor = target
	return n.enqueueLocked(n.entries[target])
}

// enqueueLocked queues path for dispatch and, unless another caller is
// already dispatching, drains the queue. It is called with n.mu held and
// releases it.
func (n *Navigator) enqueueLocked(path string) error {
	n.pending = append(n.pending, dispatch{path: path, addr: n.addressLocked()})
	if n.dispatching {
		n.mu.Unlock()
		return nil
	}
	n.dispatching = true

	var first error
	for len(n.pending) > 0 {
		d := n.pending[0]
		n.pending = n.pending[1:]
		subs := slices.Clone(n.subscribers)
		n.mu.Unlock()

		notify(subs, d.addr)
		err := n.table.Dispatch(d.path)
		if err != nil && first == nil {
			first = err
		}

		n.mu.Lock()
	}
	n.dispatching = false
	n.mu.Unlock()
	return first
}

func (n *Navigator) Back() error    { return n.Go(-1) }
func (n *Navigator) Forward() error { return n.Go(1) }

// Check dispatches the current location. Call it once at startup so a deep
// link opens the right page.
func (n *Navigator) Check() error {
	n.mu.Lock()
	return n.enqueueLocked(n.entries[n.cursor])
}

// Current returns the current canonical path.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.entries[n.cursor]
}

// Address returns what the address bar shows: the path in history mode,
// root#path in hash mode.
func (n *Navigator) Address() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.addressLocked()
}

// Len returns the number of history entries.
func (n *Navigator) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}

func (n *Navigator) addressLocked() string {
	path := n.entries[n.cursor]
	if n.cfg.Mode != ModeHash {
		return path
	}
	rest := path
	if n.cfg.Root != "" && (path == n.cfg.Root || strings.HasPrefix(path, n.cfg.Root+"/")) {
		rest = path[len(n.cfg.Root):]
	}
	if rest == "" {
		rest = "/"
	}
	return n.cfg.Root + "#" + rest
}

func notify(subs []func(string), addr string) {
	for _, fn := range subs {
		fn(addr)
	}
}

// EventKind is the kind of browser navigation signal.
type EventKind int

const (
	// EventPopState is a back/forward move by Delta entries.
	EventPopState EventKind = iota
	// EventHashChange carries the new hash Path (hash mode only).
	EventHashChange
)

type Event struct {
	Kind  EventKind
	Delta int
	Path  string
}

// Listen handles navigation events until ctx is done or events is closed.
// Dispatch errors are logged and do not stop the loop.
func (n *Navigator) Listen(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := n.handle(ev); err != nil {
				slog.Error("navigation event failed", "error", err, "kind", ev.Kind)
			}
		}
	}
}

func (n *Navigator) handle(ev Event) error {
	switch ev.Kind {
	case EventPopState:
		return n.Go(ev.Delta)
	case EventHashChange:
		n.mu.Lock()
		mode, root := n.cfg.Mode, n.cfg.Root
		n.mu.Unlock()
		if mode != ModeHash {
			return nil
		}
		rel, err := CanonicalizePath(ev.Path)
		if err != nil {
			return err
		}
		if rel == "/" {
			return n.Navigate(root)
		}
		return n.Navigate(root + rel)
	default:
		return fmt.Errorf("navigation: unknown event kind %d", ev.Kind)
	}
}
