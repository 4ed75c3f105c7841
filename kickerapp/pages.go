// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kickerapp

import (
	"cmp"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/kicker/models"
	"github.com/danielhkuo/kicker/pages"
)

// Page identifiers
const (
	PageDashboard        pages.ID = "dashboard"
	PageProfile          pages.ID = "profile"
	PageCommunity        pages.ID = "community"
	PageRankings         pages.ID = "rankings"
	PageAbout            pages.ID = "about"
	PageOffline          pages.ID = "offline"
	PageCommunityProfile pages.ID = "communityProfile"
	PageScore            pages.ID = "score"
)

// Link is a followable reference shown on a page or in the menu.
type Link struct {
	Label string
	Href  string
}

// linker is implemented by pages that render followable links.
type linker interface {
	Links() []Link
}

func registry(now func() time.Time) pages.Registry {
	return pages.Registry{
		PageDashboard: func(pages.Params) pages.Page { return &dashboardPage{now: now} },
		PageProfile:   func(pages.Params) pages.Page { return &profilePage{} },
		PageCommunity: func(pages.Params) pages.Page { return &communityPage{} },
		PageRankings: func(pages.Params) pages.Page {
			return &rankingsPage{period: models.PeriodMonth, field: "won", order: "desc"}
		},
		PageAbout:   func(pages.Params) pages.Page { return staticPage(aboutView) },
		PageOffline: func(pages.Params) pages.Page { return staticPage(offlineView) },
		PageCommunityProfile: func(p pages.Params) pages.Page {
			return &communityProfilePage{playerID: p["player_id"]}
		},
		PageScore: func(pages.Params) pages.Page { return &scorePage{} },
	}
}

func decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode page data: %w", err)
	}
	return nil
}

func playerPath(id string) string {
	return "/app/community/player/" + url.PathEscape(id)
}

// linkSet collects the links rendered by a page.
type linkSet struct {
	mu    sync.Mutex
	links []Link
}

func (s *linkSet) set(links []Link) {
	s.mu.Lock()
	s.links = links
	s.mu.Unlock()
}

func (s *linkSet) Links() []Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Link(nil), s.links...)
}

// playerList renders summaries as numbered links, continuing from links.
func playerList(players []models.PlayerSummary, links []Link) (string, []Link) {
	if len(players) == 0 {
		return muted("  nobody yet"), links
	}
	lines := make([]string, len(players))
	for i, p := range players {
		links = append(links, Link{Label: p.Name, Href: playerPath(p.ID)})
		line := "  " + linkLabel(len(links), p.Name)
		if p.Tagline != "" {
			line += " " + muted(p.Tagline)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n"), links
}

type dashboardPage struct {
	linkSet
	now func() time.Time
}

func (p *dashboardPage) Fetches() []pages.Fetch {
	return []pages.Fetch{{Route: "/app/json/dashboard"}}
}

func (p *dashboardPage) Render(results []json.RawMessage) (string, error) {
	var d models.DashboardResponse
	if err := decode(results[0], &d); err != nil {
		return "", err
	}

	last := "no games yet"
	if d.LastGameAt != nil {
		last = "last game " + humanize.RelTime(*d.LastGameAt, p.now(), "ago", "from now")
	}

	graph := make([]string, len(d.Graph))
	for i, v := range d.Graph {
		graph[i] = fmt.Sprintf("W%d %d%%", i+1, v)
	}

	var links []Link
	teammates, links := playerList(d.Teammates, links)
	nightmares, links := playerList(d.Nightmares, links)
	p.set(links)

	return join(
		title("Dashboard · "+d.Name),
		fmt.Sprintf("%s  %s  ratio %d%%  rating %.0f",
			winStyle.Render(humanize.Comma(int64(d.Wins))+" won"),
			lossStyle.Render(humanize.Comma(int64(d.Losses))+" lost"),
			d.Ratio, d.Rating),
		muted(last),
		section("This week"),
		fmt.Sprintf("  %d won  %d lost  %d%%", d.WeeklyWins, d.WeeklyLosses, d.WeeklyWinRatio),
		section("Last five weeks"),
		"  "+strings.Join(graph, "  "),
		section("Teammates"),
		teammates,
		section("Nightmares"),
		nightmares,
	), nil
}

type profilePage struct {
	mu      sync.Mutex
	edit    bool
	saved   *models.Player
	kickers models.KickersResponse
}

func (p *profilePage) Fetches() []pages.Fetch {
	return []pages.Fetch{{Route: "/app/json/player"}, {Route: "/app/json/kickers"}}
}

func (p *profilePage) Render(results []json.RawMessage) (string, error) {
	var player models.Player
	if err := decode(results[0], &player); err != nil {
		return "", err
	}
	var kickers models.KickersResponse
	if err := decode(results[1], &kickers); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.kickers = kickers
	if p.saved != nil {
		player = *p.saved
	}

	view := []string{title("Profile"), renderPlayer(player)}
	if p.edit {
		names := make([]string, len(kickers.Kickers))
		for i, k := range kickers.Kickers {
			names[i] = k.ID + " (" + k.Name + ")"
		}
		view = append(view,
			section("Edit"),
			"  kickers: "+strings.Join(names, ", "),
			muted("  :save name=...&tagline=...&main_kicker=...&avatar=@file.png"),
		)
	} else {
		view = append(view, muted(":edit to change your profile"))
	}
	return join(view...), nil
}

func (p *profilePage) toggleEdit() {
	p.mu.Lock()
	p.edit = !p.edit
	p.mu.Unlock()
}

func (p *profilePage) applySaved(player models.Player) {
	p.mu.Lock()
	p.edit = false
	p.saved = &player
	p.mu.Unlock()
}

func (p *profilePage) editing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edit
}

func renderPlayer(pl models.Player) string {
	lines := []string{section(pl.Name)}
	if pl.Tagline != "" {
		lines = append(lines, "  "+muted(pl.Tagline))
	}
	lines = append(lines,
		fmt.Sprintf("  rating %.0f  main kicker %s", pl.Rating, pl.MainKickerID),
		fmt.Sprintf("  %s  %s  ratio %d%%",
			winStyle.Render(humanize.Comma(int64(pl.Wins))+" won"),
			lossStyle.Render(humanize.Comma(int64(pl.Losses))+" lost"),
			pl.WinRatio),
		fmt.Sprintf("  this week %d won  %d lost  %d%%", pl.WeeklyWins, pl.WeeklyLosses, pl.WeeklyWinRatio),
	)
	return join(lines...)
}

type communityPage struct {
	linkSet
}

func (p *communityPage) Fetches() []pages.Fetch {
	return []pages.Fetch{{Route: "/app/json/community"}}
}

func (p *communityPage) Render(results []json.RawMessage) (string, error) {
	var c models.CommunityResponse
	if err := decode(results[0], &c); err != nil {
		return "", err
	}
	var links []Link
	usual, links := playerList(c.Usual, links)
	rare, links := playerList(c.Rare, links)
	p.set(links)

	return join(
		title("Community"),
		section("Usual suspects"),
		usual,
		section("Rare sightings"),
		rare,
	), nil
}

type communityProfilePage struct {
	playerID string
}

func (p *communityProfilePage) Fetches() []pages.Fetch {
	return []pages.Fetch{{Route: "/app/json/player/" + url.PathEscape(p.playerID)}}
}

func (p *communityProfilePage) Render(results []json.RawMessage) (string, error) {
	var player models.Player
	if err := decode(results[0], &player); err != nil {
		return "", err
	}
	return join(title("Player"), renderPlayer(player)), nil
}

// Rankings sort fields and orders
var (
	sortFields = []string{"won", "lost", "matches"}
	sortOrders = []string{"asc", "desc"}
	periods    = []string{models.PeriodWeek, models.PeriodMonth, models.PeriodYear, models.PeriodAll}
)

type rankingsPage struct {
	linkSet
	mu     sync.Mutex
	period string
	field  string
	order  string
}

func (p *rankingsPage) Fetches() []pages.Fetch {
	p.mu.Lock()
	defer p.mu.Unlock()
	return []pages.Fetch{{Route: "/app/json/rankings", Params: map[string]any{"period": p.period}}}
}

func (p *rankingsPage) Render(results []json.RawMessage) (string, error) {
	var rows []models.RankingRow
	if err := decode(results[0], &rows); err != nil {
		return "", err
	}

	p.mu.Lock()
	period, field, order := p.period, p.field, p.order
	p.mu.Unlock()

	sortRankings(rows, field, order)
	reverse := reverseRank(field, order)

	table := [][]string{{"#", "Player", "Won", "Lost", "Matches"}}
	links := make([]Link, 0, len(rows))
	for i, r := range rows {
		rank := i + 1
		if reverse {
			rank = len(rows) - i
		}
		links = append(links, Link{Label: r.Name, Href: playerPath(r.ID)})
		table = append(table, []string{
			humanize.Ordinal(rank),
			linkLabel(len(links), r.Name),
			strconv.Itoa(r.Won),
			strconv.Itoa(r.Lost),
			strconv.Itoa(r.Matches),
		})
	}
	p.set(links)

	body := muted("  no games in this period")
	if len(rows) > 0 {
		body = renderTable(table)
	}
	return join(
		title("Rankings · "+period),
		muted(fmt.Sprintf("sorted by %s %s  (:period week|month|year|all, :sort field asc|desc)", field, order)),
		body,
	), nil
}

func (p *rankingsPage) setPeriod(period string) {
	p.mu.Lock()
	p.period = period
	p.mu.Unlock()
}

func (p *rankingsPage) setSort(field, order string) {
	p.mu.Lock()
	p.field, p.order = field, order
	p.mu.Unlock()
}

// reverseRank reports whether the rank column counts down for this sort:
// ascending on anything but losses, or descending on losses.
func reverseRank(field, order string) bool {
	if order == "asc" {
		return field != "lost"
	}
	return field == "lost"
}

func sortRankings(rows []models.RankingRow, field, order string) {
	key := func(r models.RankingRow) int {
		switch field {
		case "lost":
			return r.Lost
		case "matches":
			return r.Matches
		default:
			return r.Won
		}
	}
	slices.SortStableFunc(rows, func(a, b models.RankingRow) int {
		if order == "asc" {
			return cmp.Compare(key(a), key(b))
		}
		return cmp.Compare(key(b), key(a))
	})
}

type scorePage struct {
	mu       sync.Mutex
	playerID string
}

func (p *scorePage) Fetches() []pages.Fetch {
	return []pages.Fetch{{Route: "/app/json/players"}, {Route: "/app/json/kickers"}}
}

func (p *scorePage) Render(results []json.RawMessage) (string, error) {
	var players models.PlayersResponse
	if err := decode(results[0], &players); err != nil {
		return "", err
	}
	var kickers models.KickersResponse
	if err := decode(results[1], &kickers); err != nil {
		return "", err
	}
	p.mu.Lock()
	p.playerID = players.PlayerID
	p.mu.Unlock()

	rows := [][]string{{"ID", "Player"}}
	for _, pl := range players.Players {
		name := pl.Name
		if pl.ID == players.PlayerID {
			name += " (you)"
		}
		rows = append(rows, []string{pl.ID, name})
	}
	names := make([]string, len(kickers.Kickers))
	for i, k := range kickers.Kickers {
		names[i] = k.ID
		if k.ID == kickers.Default {
			names[i] += " (default)"
		}
	}

	return join(
		title("Add a score"),
		renderTable(rows),
		section("Kickers"),
		"  "+strings.Join(names, ", "),
		muted(fmt.Sprintf("\n:submit team1=%s&team1=...&team2=...&team2=...&score1=10&score2=7&kicker_id=%s",
			players.PlayerID, kickers.Default)),
		muted("empty team slots are filled with the anonymous player"),
	), nil
}

type staticPage string

func (staticPage) Fetches() []pages.Fetch { return nil }

func (p staticPage) Render([]json.RawMessage) (string, error) { return string(p), nil }

var aboutView = join(
	title("About"),
	"Kicker keeps score of the office foosball league.",
	"Record games from the score page; ratings move after every game,",
	"more so for lopsided results.",
)

var offlineView = join(
	title("Offline"),
	"The server cannot be reached.",
	muted("You will be taken back to your dashboard once the connection returns."),
)
