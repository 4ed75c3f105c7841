// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kickerapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/danielhkuo/kicker/connectivity"
	"github.com/danielhkuo/kicker/models"
	"github.com/danielhkuo/kicker/navigation"
	"github.com/danielhkuo/kicker/pages"
)

const (
	Root        = "/app"
	LandingPath = "/app/dashboard"
	OfflinePath = "/app/offline"
)

// Client is what the shell needs from the server connection.
type Client interface {
	pages.Requester
	AvatarURL(playerID string, bust int64) string
}

type Config struct {
	Mode  navigation.Mode
	Start string
	Reuse pages.ReusePolicy
	// OnError receives page load failures, e.g. for a status line.
	OnError func(error)
	Now     func() time.Time
}

// Header is the top bar: the player's name and avatar address.
type Header struct {
	Name      string
	AvatarURL string
}

// App is the league shell: it owns the route table, navigator, page switcher,
// connectivity watcher and the slide-out menu.
type App struct {
	client   Client
	table    *navigation.Table
	nav      *navigation.Navigator
	switcher *pages.Switcher
	watcher  *connectivity.Watcher
	events   chan navigation.Event
	now      func() time.Time

	mu         sync.Mutex
	menuOpen   bool
	name       string
	avatarBust int64
	onChange   []func()
}

// New builds the shell and registers its routes. Call Start to dispatch the
// initial location.
func New(client Client, region pages.Region, cfg Config) (*App, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	a := &App{
		client: client,
		table:  navigation.NewTable(),
		events: make(chan navigation.Event, 16),
		now:    cfg.Now,
	}
	a.nav = navigation.NewNavigator(a.table)

	opts := []pages.Option{pages.WithMenu(a), pages.WithReusePolicy(cfg.Reuse)}
	if cfg.OnError != nil {
		opts = append(opts, pages.WithErrorHandler(cfg.OnError))
	}
	a.switcher = pages.NewSwitcher(registry(cfg.Now), client, region, opts...)
	a.watcher = connectivity.NewWatcher(a.nav, OfflinePath, LandingPath)

	if err := a.registerRoutes(); err != nil {
		return nil, err
	}
	if err := a.nav.Configure(navigation.Config{Mode: cfg.Mode, Root: Root, Start: cfg.Start}); err != nil {
		return nil, err
	}
	return a, nil
}

// registerRoutes adds the routes most specific first.
func (a *App) registerRoutes() error {
	show := func(id pages.ID) navigation.Handler {
		return func(...string) { a.switchPage(id, nil) }
	}
	routes := []struct {
		pattern string
		handler navigation.Handler
	}{
		{`dashboard`, show(PageDashboard)},
		{`profile`, show(PageProfile)},
		{`rankings`, show(PageRankings)},
		{`community/player/(.*)`, func(args ...string) {
			a.switchPage(PageCommunityProfile, pages.Params{"player_id": args[0]})
		}},
		{`community`, show(PageCommunity)},
		{`score`, show(PageScore)},
		{`about`, show(PageAbout)},
		{`offline`, show(PageOffline)},
	}
	for _, r := range routes {
		if err := a.table.Add(r.pattern, r.handler); err != nil {
			return err
		}
	}
	a.table.AddDefault(show(PageDashboard))
	return a.table.Validate()
}

func (a *App) switchPage(id pages.ID, params pages.Params) {
	if err := a.switcher.SwitchTo(id, params); err != nil && !errors.Is(err, pages.ErrClosed) {
		slog.Error("switch page failed", "page", id, "error", err)
	}
}

// Start dispatches the start location.
func (a *App) Start() error {
	return a.nav.Check()
}

// Listen applies history and hash events sent with Send until ctx ends.
func (a *App) Listen(ctx context.Context) error {
	return a.nav.Listen(ctx, a.events)
}

// Send queues a browser-style navigation event for Listen.
func (a *App) Send(ctx context.Context, ev navigation.Event) error {
	select {
	case a.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels in-flight page loads and waits for them.
func (a *App) Shutdown() {
	a.switcher.Close()
}

// Wait blocks until in-flight page loads have finished.
func (a *App) Wait() {
	a.switcher.Wait()
}

func (a *App) Navigator() *navigation.Navigator { return a.nav }

func (a *App) Watcher() *connectivity.Watcher { return a.watcher }

func (a *App) Switcher() *pages.Switcher { return a.switcher }

// MenuLinks are the entries of the slide-out menu.
func (a *App) MenuLinks() []Link {
	return []Link{
		{Label: "Dashboard", Href: "/app/dashboard"},
		{Label: "Profile", Href: "/app/profile"},
		{Label: "Rankings", Href: "/app/rankings"},
		{Label: "Community", Href: "/app/community"},
		{Label: "Add a score", Href: "/app/score"},
		{Label: "About", Href: "/app/about"},
	}
}

// PageLinks are the links rendered by the active page.
func (a *App) PageLinks() []Link {
	if l, ok := a.switcher.Current().(linker); ok {
		return l.Links()
	}
	return nil
}

// FollowLink handles an in-app link: while offline it leads to the offline
// page. The menu is closed either way.
func (a *App) FollowLink(href string) error {
	defer a.ToggleMenu("close")

	u, err := url.Parse(href)
	if err != nil {
		return fmt.Errorf("invalid link %q: %w", href, err)
	}
	return a.nav.Navigate(a.watcher.Rewrite(u.Path))
}

// ToggleMenu opens the menu with "open", closes it with "close" and flips it
// otherwise.
func (a *App) ToggleMenu(force string) {
	a.mu.Lock()
	switch force {
	case "open":
		a.menuOpen = true
	case "close":
		a.menuOpen = false
	default:
		a.menuOpen = !a.menuOpen
	}
	a.mu.Unlock()
	a.changed()
}

// Close closes the menu.
func (a *App) Close() {
	a.ToggleMenu("close")
}

func (a *App) MenuOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.menuOpen
}

// OnProfileChange updates the header after the player's profile was saved.
// The avatar address gets a new cache buster so the fresh image is loaded.
func (a *App) OnProfileChange(player models.Player) {
	a.mu.Lock()
	a.name = player.Name
	a.avatarBust = a.now().UnixMilli()
	a.mu.Unlock()
	a.changed()
}

// SetName sets the header name without touching the avatar.
func (a *App) SetName(name string) {
	a.mu.Lock()
	a.name = name
	a.mu.Unlock()
	a.changed()
}

func (a *App) Header() Header {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Header{Name: a.name, AvatarURL: a.client.AvatarURL("", a.avatarBust)}
}

// OnChange registers fn to run after menu or header changes.
func (a *App) OnChange(fn func()) {
	a.mu.Lock()
	a.onChange = append(a.onChange, fn)
	a.mu.Unlock()
}

func (a *App) changed() {
	a.mu.Lock()
	subs := slices.Clone(a.onChange)
	a.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
