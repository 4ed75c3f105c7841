// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kickerapp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/kicker/navigation"
	"github.com/danielhkuo/kicker/pages"
)

var fixtures = map[string]string{
	"/app/json/dashboard": `{"name":"alice","wins":3,"losses":1,"ratio":75,"rating":1016,
		"graph":[50,60,70,80,75],"teammates":[{"id":"p2","name":"bob","tagline":"Defender"}],"nightmares":[]}`,
	"/app/json/player":    `{"id":"p1","name":"alice","tagline":"Striker","rating":1016,"main_kicker_id":"main","wins":3,"losses":1}`,
	"/app/json/player/p2": `{"id":"p2","name":"bob","rating":990}`,
	"/app/json/player/p3": `{"id":"p3","name":"carol","rating":1010}`,
	"/app/json/kickers":   `{"kickers":[{"id":"main","name":"Main kicker"}],"default":"main"}`,
	"/app/json/rankings": `[{"id":"p1","name":"alice","won":3,"lost":1,"matches":4},
		{"id":"p2","name":"bob","won":1,"lost":3,"matches":4},
		{"id":"p3","name":"carol","won":2,"lost":0,"matches":2}]`,
	"/app/json/community":      `{"usual":[{"id":"p2","name":"bob","tagline":""}],"rare":[{"id":"p3","name":"carol","tagline":""}]}`,
	"/app/json/players":        `{"players":[{"id":"p1","name":"alice"},{"id":"p2","name":"bob"}],"player_id":"p1"}`,
	"/app/json/update_profile": `{"success":true,"player":{"id":"p1","name":"Alice B","tagline":"Keeper","rating":1016}}`,
	"/kicker/score/submit":     `{"success":true,"game_id":"g1"}`,
}

type fakeClient struct {
	mu     sync.Mutex
	calls  map[string]int
	params map[string][]map[string]any
	fail   map[string]error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		calls:  make(map[string]int),
		params: make(map[string][]map[string]any),
		fail:   make(map[string]error),
	}
}

func (c *fakeClient) Request(ctx context.Context, route string, params map[string]any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[route]++
	c.params[route] = append(c.params[route], params)
	if err := c.fail[route]; err != nil {
		return nil, err
	}
	body, ok := fixtures[route]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", route)
	}
	return json.RawMessage(body), nil
}

func (c *fakeClient) AvatarURL(playerID string, bust int64) string {
	return fmt.Sprintf("/app/avatar?unique=%d", bust)
}

func (c *fakeClient) count(route string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[route]
}

func (c *fakeClient) lastParams(route string) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := c.params[route]
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

type mount struct {
	id   pages.ID
	view string
}

type fakeRegion struct {
	mu     sync.Mutex
	mounts []mount
}

func (r *fakeRegion) Mount(id pages.ID, view string) {
	r.mu.Lock()
	r.mounts = append(r.mounts, mount{id, view})
	r.mu.Unlock()
}

func (r *fakeRegion) last() mount {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.mounts) == 0 {
		return mount{}
	}
	return r.mounts[len(r.mounts)-1]
}

func (r *fakeRegion) count(id pages.ID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.mounts {
		if m.id == id {
			n++
		}
	}
	return n
}

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, cfg Config) (*App, *fakeClient, *fakeRegion) {
	t.Helper()
	client := newFakeClient()
	region := &fakeRegion{}
	cfg.Now = func() time.Time { return fixedNow }
	app, err := New(client, region, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(app.Shutdown)
	return app, client, region
}

// navigate goes to path and waits for the page to load.
func navigate(t *testing.T, app *App, path string) {
	t.Helper()
	if err := app.Navigator().Navigate(path); err != nil {
		t.Fatalf("Navigate(%s) error = %v", path, err)
	}
	app.Wait()
}

// lineWith returns the first view line containing s.
func lineWith(view, s string) string {
	for _, line := range strings.Split(view, "\n") {
		if strings.Contains(line, s) {
			return line
		}
	}
	return ""
}

func TestRoutesDispatchToPages(t *testing.T) {
	tests := []struct {
		path string
		want pages.ID
	}{
		{"/app", PageDashboard},
		{"/app/dashboard", PageDashboard},
		{"/app/profile", PageProfile},
		{"/app/rankings", PageRankings},
		{"/app/community/player/p2", PageCommunityProfile},
		{"/app/community", PageCommunity},
		{"/app/score", PageScore},
		{"/app/about", PageAbout},
		{"/app/offline", PageOffline},
		{"/app/nowhere", PageDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			app, _, region := newTestApp(t, Config{Start: tt.path})
			if err := app.Start(); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			app.Wait()

			if got := region.last().id; got != tt.want {
				t.Errorf("Mounted %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommunityProfileFetchesPlayer(t *testing.T) {
	app, client, region := newTestApp(t, Config{})

	navigate(t, app, "/app/community/player/p2")

	if client.count("/app/json/player/p2") != 1 {
		t.Errorf("Expected player p2 fetched once, got %d", client.count("/app/json/player/p2"))
	}
	if !strings.Contains(region.last().view, "bob") {
		t.Errorf("Expected bob's profile, got:\n%s", region.last().view)
	}
}

func TestOfflineOnlineScenario(t *testing.T) {
	app, client, region := newTestApp(t, Config{Start: "/app/dashboard"})
	app.Start()
	app.Wait()

	app.Watcher().SetOffline()
	app.Wait()

	if got := app.Navigator().Current(); got != OfflinePath {
		t.Errorf("Expected path %s, got %s", OfflinePath, got)
	}
	if got := region.last().id; got != PageOffline {
		t.Errorf("Expected offline page mounted, got %q", got)
	}

	app.Watcher().SetOnline()
	app.Wait()

	if got := app.Navigator().Current(); got != LandingPath {
		t.Errorf("Expected path %s, got %s", LandingPath, got)
	}
	if got := region.last().id; got != PageDashboard {
		t.Errorf("Expected dashboard remounted, got %q", got)
	}
	if n := client.count("/app/json/dashboard"); n != 2 {
		t.Errorf("Expected the dashboard fetched again, got %d fetches", n)
	}
}

func TestProfileConstructedOnce(t *testing.T) {
	app, client, region := newTestApp(t, Config{})

	navigate(t, app, "/app/profile")
	navigate(t, app, "/app/profile")

	if n := client.count("/app/json/player"); n != 1 {
		t.Errorf("Expected one player fetch, got %d", n)
	}
	if n := client.count("/app/json/kickers"); n != 1 {
		t.Errorf("Expected one kickers fetch, got %d", n)
	}
	if n := region.count(PageProfile); n != 1 {
		t.Errorf("Expected one profile mount, got %d", n)
	}
}

func TestCommunityProfileReusePolicy(t *testing.T) {
	tests := []struct {
		policy pages.ReusePolicy
		wantP3 int
		want   string
	}{
		{pages.ReuseByID, 0, "bob"},
		{pages.ReuseByParams, 1, "carol"},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			app, client, region := newTestApp(t, Config{Reuse: tt.policy})

			navigate(t, app, "/app/community/player/p2")
			navigate(t, app, "/app/community/player/p3")

			if n := client.count("/app/json/player/p3"); n != tt.wantP3 {
				t.Errorf("Expected %d fetches of p3, got %d", tt.wantP3, n)
			}
			if !strings.Contains(region.last().view, tt.want) {
				t.Errorf("Expected %s shown, got:\n%s", tt.want, region.last().view)
			}
		})
	}
}

func TestFollowLink(t *testing.T) {
	app, client, _ := newTestApp(t, Config{})
	app.ToggleMenu("open")

	if err := app.FollowLink("/app/rankings?ref=menu"); err != nil {
		t.Fatalf("FollowLink() error = %v", err)
	}
	app.Wait()

	if got := app.Navigator().Current(); got != "/app/rankings" {
		t.Errorf("Expected /app/rankings, got %s", got)
	}
	if app.MenuOpen() {
		t.Error("Expected the menu closed after following a link")
	}

	app.Watcher().SetOffline()
	app.Wait()
	app.FollowLink("/app/community")
	app.Wait()

	if got := app.Navigator().Current(); got != OfflinePath {
		t.Errorf("Expected offline rewrite, got %s", got)
	}
	if n := client.count("/app/json/community"); n != 0 {
		t.Errorf("Community must not load while offline, got %d fetches", n)
	}
}

func TestToggleMenu(t *testing.T) {
	app, _, _ := newTestApp(t, Config{})
	changes := 0
	app.OnChange(func() { changes++ })

	app.ToggleMenu("")
	if !app.MenuOpen() {
		t.Error("Expected toggle to open the menu")
	}
	app.ToggleMenu("open")
	if !app.MenuOpen() {
		t.Error("Expected forced open to keep it open")
	}
	app.ToggleMenu("")
	if app.MenuOpen() {
		t.Error("Expected toggle to close the menu")
	}

	app.ToggleMenu("open")
	navigate(t, app, "/app/about")
	if app.MenuOpen() {
		t.Error("Expected a page switch to close the menu")
	}
	if changes < 4 {
		t.Errorf("Expected change notifications, got %d", changes)
	}
}

func TestRankingsSort(t *testing.T) {
	app, _, region := newTestApp(t, Config{})
	navigate(t, app, "/app/rankings")

	tests := []struct {
		field, order string
		ranks        map[string]string
		firstLink    string
	}{
		{"won", "desc", map[string]string{"alice": "1st", "carol": "2nd", "bob": "3rd"}, "alice"},
		{"won", "asc", map[string]string{"bob": "3rd", "carol": "2nd", "alice": "1st"}, "bob"},
		{"lost", "asc", map[string]string{"carol": "1st", "alice": "2nd", "bob": "3rd"}, "carol"},
		{"lost", "desc", map[string]string{"bob": "3rd", "alice": "2nd", "carol": "1st"}, "bob"},
	}

	for _, tt := range tests {
		if err := app.Sort(tt.field, tt.order); err != nil {
			t.Fatalf("Sort(%s, %s) error = %v", tt.field, tt.order, err)
		}
		view := region.last().view
		for name, rank := range tt.ranks {
			if line := lineWith(view, name); !strings.Contains(line, rank) {
				t.Errorf("%s %s: expected %s ranked %s, line %q", tt.field, tt.order, name, rank, line)
			}
		}
		if links := app.PageLinks(); len(links) != 3 || links[0].Label != tt.firstLink {
			t.Errorf("%s %s: unexpected links %v", tt.field, tt.order, links)
		} else if links[0].Href != "/app/community/player/"+map[string]string{"alice": "p1", "bob": "p2", "carol": "p3"}[tt.firstLink] {
			t.Errorf("Unexpected link target %s", links[0].Href)
		}
	}

	if err := app.Sort("name", "asc"); err == nil {
		t.Error("Expected error for unknown sort field")
	}
	if err := app.Sort("won", "sideways"); err == nil {
		t.Error("Expected error for unknown sort order")
	}
}

func TestSetPeriod(t *testing.T) {
	app, client, region := newTestApp(t, Config{})
	navigate(t, app, "/app/rankings")

	if got := client.lastParams("/app/json/rankings")["period"]; got != "month" {
		t.Errorf("Expected default period month, got %v", got)
	}

	if err := app.SetPeriod("week"); err != nil {
		t.Fatalf("SetPeriod() error = %v", err)
	}
	app.Wait()

	if n := client.count("/app/json/rankings"); n != 2 {
		t.Errorf("Expected rankings refetched, got %d fetches", n)
	}
	if got := client.lastParams("/app/json/rankings")["period"]; got != "week" {
		t.Errorf("Expected period week, got %v", got)
	}
	if n := region.count(PageRankings); n != 2 || !strings.Contains(region.last().view, "Rankings · week") {
		t.Errorf("Expected the week rankings mounted, got %d mounts:\n%s", n, region.last().view)
	}

	if err := app.SetPeriod("decade"); err == nil {
		t.Error("Expected error for unknown period")
	}
}

func TestActionsRequireTheirPage(t *testing.T) {
	app, _, _ := newTestApp(t, Config{})
	navigate(t, app, "/app/dashboard")
	ctx := context.Background()

	actions := map[string]error{
		"edit":   app.ToggleEdit(),
		"save":   app.SaveProfile(ctx, url.Values{}),
		"period": app.SetPeriod("week"),
		"sort":   app.Sort("won", "asc"),
		"submit": app.SubmitScore(ctx, nil),
	}
	for name, err := range actions {
		if !errors.Is(err, ErrNotOnPage) {
			t.Errorf("%s on the dashboard = %v, want ErrNotOnPage", name, err)
		}
	}
}

func TestSubmitScore(t *testing.T) {
	app, client, region := newTestApp(t, Config{})
	navigate(t, app, "/app/score")

	fields, err := ParseForm("team2=p2&team2=&score1=10&score2=7&kicker_id=main")
	if err != nil {
		t.Fatalf("ParseForm() error = %v", err)
	}
	if err := app.SubmitScore(context.Background(), fields); err != nil {
		t.Fatalf("SubmitScore() error = %v", err)
	}
	app.Wait()

	want := map[string]any{
		"team1":     []string{"p1"},
		"team2":     []string{"p2", ""},
		"score1":    10,
		"score2":    7,
		"kicker_id": "main",
	}
	if got := client.lastParams("/kicker/score/submit"); !reflect.DeepEqual(got, want) {
		t.Errorf("Submitted %v, want %v", got, want)
	}
	if got := app.Navigator().Current(); got != LandingPath {
		t.Errorf("Expected dashboard after submit, got %s", got)
	}
	if got := region.last().id; got != PageDashboard {
		t.Errorf("Expected dashboard mounted, got %q", got)
	}
}

func TestSubmitScoreFailureStays(t *testing.T) {
	app, client, _ := newTestApp(t, Config{})
	navigate(t, app, "/app/score")
	client.fail["/kicker/score/submit"] = errors.New("Please input the score")

	fields, _ := ParseForm("team1=p1&team2=p2")
	if err := app.SubmitScore(context.Background(), fields); err == nil {
		t.Fatal("Expected submit error")
	}
	if got := app.Navigator().Current(); got != "/app/score" {
		t.Errorf("Expected to stay on the score page, got %s", got)
	}

	fields, _ = ParseForm("team1=p1&team2=p2&score1=ten")
	if err := app.SubmitScore(context.Background(), fields); err == nil {
		t.Error("Expected error for a non-numeric score")
	}
}

func TestSaveProfile(t *testing.T) {
	app, client, region := newTestApp(t, Config{})
	navigate(t, app, "/app/profile")

	if err := app.ToggleEdit(); err != nil {
		t.Fatalf("ToggleEdit() error = %v", err)
	}
	if !strings.Contains(region.last().view, "Edit") {
		t.Errorf("Expected edit form, got:\n%s", region.last().view)
	}

	avatar := filepath.Join(t.TempDir(), "me.png")
	os.WriteFile(avatar, []byte("not really a png"), 0o600)

	form := url.Values{"name": {"Alice B"}, "tagline": {"Keeper"}, "avatar": {"@" + avatar}}
	if err := app.SaveProfile(context.Background(), form); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	params := client.lastParams("/app/json/update_profile")
	if params["name"] != "Alice B" || params["tagline"] != "Keeper" {
		t.Errorf("Unexpected params %v", params)
	}
	if params["avatar"] != base64.StdEncoding.EncodeToString([]byte("not really a png")) {
		t.Errorf("Expected the avatar file base64 encoded, got %v", params["avatar"])
	}

	header := app.Header()
	if header.Name != "Alice B" {
		t.Errorf("Expected header name updated, got %q", header.Name)
	}
	if want := fmt.Sprintf("/app/avatar?unique=%d", fixedNow.UnixMilli()); header.AvatarURL != want {
		t.Errorf("Expected cache-busted avatar %s, got %s", want, header.AvatarURL)
	}

	view := region.last().view
	if !strings.Contains(view, "Alice B") || strings.Contains(view, "kickers:") {
		t.Errorf("Expected saved profile in view mode, got:\n%s", view)
	}
}

func TestFetchFailureKeepsPreviousPage(t *testing.T) {
	var reported []error
	var mu sync.Mutex
	app, client, region := newTestApp(t, Config{OnError: func(err error) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	}})
	navigate(t, app, "/app/dashboard")
	client.fail["/app/json/community"] = errors.New("connection reset")

	navigate(t, app, "/app/community")

	if got := region.last().id; got != PageDashboard {
		t.Errorf("Expected the dashboard to stay mounted, got %q", got)
	}
	mu.Lock()
	defer mu.Unlock()
	var fetchErr *pages.DataFetchError
	if len(reported) != 1 || !errors.As(reported[0], &fetchErr) {
		t.Errorf("Expected one DataFetchError, got %v", reported)
	}
}

func TestFailedLoadKeepsShownPageLinks(t *testing.T) {
	app, client, region := newTestApp(t, Config{})
	navigate(t, app, "/app/community")
	before := app.PageLinks()

	client.mu.Lock()
	client.fail["/app/json/rankings"] = errors.New("connection reset")
	client.mu.Unlock()
	navigate(t, app, "/app/rankings")

	if got := region.last().id; got != PageCommunity {
		t.Fatalf("Expected community to stay mounted, got %q", got)
	}
	after := app.PageLinks()
	if len(before) != 2 || !reflect.DeepEqual(after, before) {
		t.Errorf("Expected community links kept, before=%v after=%v", before, after)
	}

	// Following a shown link still works
	if err := app.FollowLink(after[0].Href); err != nil {
		t.Fatalf("FollowLink() error = %v", err)
	}
	app.Wait()
	if got := region.last().id; got != PageCommunityProfile {
		t.Errorf("Expected the player page, got %q", got)
	}
}

func TestFailedLoadKeepsShownPageActions(t *testing.T) {
	app, client, region := newTestApp(t, Config{})
	navigate(t, app, "/app/rankings")

	client.mu.Lock()
	client.fail["/app/json/community"] = errors.New("connection reset")
	client.mu.Unlock()
	navigate(t, app, "/app/community")

	if err := app.Sort("lost", "asc"); err != nil {
		t.Fatalf("Sort() on the shown rankings error = %v", err)
	}
	if got := region.last().id; got != PageRankings {
		t.Errorf("Expected rankings rerendered, got %q", got)
	}
	if n := client.count("/app/json/rankings"); n != 1 {
		t.Errorf("Expected no rankings refetch, got %d", n)
	}
}

func TestListenAppliesEvents(t *testing.T) {
	app, _, region := newTestApp(t, Config{Mode: navigation.ModeHash})
	navigate(t, app, "/app/dashboard")
	navigate(t, app, "/app/about")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Listen(ctx) }()

	app.Send(ctx, navigation.Event{Kind: navigation.EventPopState, Delta: -1})
	app.Send(ctx, navigation.Event{Kind: navigation.EventHashChange, Path: "/community"})

	deadline := time.Now().Add(2 * time.Second)
	for region.last().id != PageCommunity {
		if time.Now().After(deadline) {
			t.Fatalf("Expected community mounted, last mount %q", region.last().id)
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Listen() = %v, want context.Canceled", err)
	}

	if got := app.Navigator().Address(); got != "/app#/community" {
		t.Errorf("Address() = %q, want /app#/community", got)
	}
	// The back move dropped the forward about entry
	if n := app.Navigator().Len(); n != 3 {
		t.Errorf("Expected 3 history entries, got %d", n)
	}
	app.Wait()
}

func TestHashMode(t *testing.T) {
	app, _, _ := newTestApp(t, Config{Mode: navigation.ModeHash})
	navigate(t, app, "/app/rankings")

	if got := app.Navigator().Address(); got != "/app#/rankings" {
		t.Errorf("Address() = %q, want /app#/rankings", got)
	}
}

func TestParseForm(t *testing.T) {
	fields, err := ParseForm("team1=a&team1=&score1=10&note=good+game%21&")
	if err != nil {
		t.Fatalf("ParseForm() error = %v", err)
	}
	want := []FormField{
		{"team1", "a"},
		{"team1", ""},
		{"score1", "10"},
		{"note", "good game!"},
	}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("ParseForm() = %v, want %v", fields, want)
	}

	if _, err := ParseForm("bad=%zz"); err == nil {
		t.Error("Expected error for a bad escape")
	}
}

func TestScoreParamsEmptyTeams(t *testing.T) {
	params, err := scoreParams([]FormField{{"score1", ""}, {"kicker_id", "main"}})
	if err != nil {
		t.Fatalf("scoreParams() error = %v", err)
	}
	if _, ok := params["score1"]; ok {
		t.Error("Expected a blank score to be left out")
	}
	if !reflect.DeepEqual(params["team1"], []string{}) || !reflect.DeepEqual(params["team2"], []string{}) {
		t.Errorf("Expected empty team arrays, got %v %v", params["team1"], params["team2"])
	}
}

func TestReverseRank(t *testing.T) {
	tests := []struct {
		field, order string
		want         bool
	}{
		{"won", "desc", false},
		{"won", "asc", true},
		{"matches", "asc", true},
		{"lost", "asc", false},
		{"lost", "desc", true},
	}
	for _, tt := range tests {
		if got := reverseRank(tt.field, tt.order); got != tt.want {
			t.Errorf("reverseRank(%s, %s) = %v, want %v", tt.field, tt.order, got, tt.want)
		}
	}
}
