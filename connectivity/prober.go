// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package connectivity

import (
	"context"
	"log/slog"
	"time"
)

const DefaultInterval = 5 * time.Second

// Checker reports whether the server is reachable.
type Checker interface {
	Health(ctx context.Context) error
}

// Prober turns server reachability into online and offline signals. Only
// transitions are forwarded to the watcher.
type Prober struct {
	checker  Checker
	watcher  *Watcher
	interval time.Duration
	timeout  time.Duration
}

func NewProber(checker Checker, watcher *Watcher, interval time.Duration) *Prober {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Prober{
		checker:  checker,
		watcher:  watcher,
		interval: interval,
		timeout:  interval,
	}
}

// Probe runs one health check and signals the watcher if the state changed.
// It reports the observed state.
func (p *Prober) Probe(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.checker.Health(checkCtx)
	online := err == nil
	if ctx.Err() != nil {
		// Shutting down; a canceled check says nothing about the server.
		return p.watcher.Online()
	}
	if online == p.watcher.Online() {
		return online
	}

	var navErr error
	if online {
		navErr = p.watcher.SetOnline()
	} else {
		slog.Debug("health check failed", "error", err)
		navErr = p.watcher.SetOffline()
	}
	if navErr != nil {
		slog.Error("connectivity redirect failed", "error", navErr)
	}
	return online
}

// Run probes immediately and then on every interval until ctx is done.
func (p *Prober) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
