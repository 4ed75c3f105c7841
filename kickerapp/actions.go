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
	"slices"
	"strings"

	"github.com/danielhkuo/kicker/models"
)

var ErrNotOnPage = errors.New("action not available on this page")

// ToggleEdit switches the profile page between view and edit mode.
func (a *App) ToggleEdit() error {
	p, ok := a.switcher.Current().(*profilePage)
	if !ok {
		return fmt.Errorf("edit: %w", ErrNotOnPage)
	}
	p.toggleEdit()
	return a.switcher.Rerender()
}

// SaveProfile posts the profile form. An avatar value starting with "@" is
// read from that file and sent base64 encoded. On success the page leaves
// edit mode and the header is refreshed.
func (a *App) SaveProfile(ctx context.Context, form url.Values) error {
	p, ok := a.switcher.Current().(*profilePage)
	if !ok {
		return fmt.Errorf("save: %w", ErrNotOnPage)
	}

	params := map[string]any{}
	for key := range form {
		params[key] = form.Get(key)
	}
	if avatar := form.Get("avatar"); strings.HasPrefix(avatar, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(avatar, "@"))
		if err != nil {
			return fmt.Errorf("read avatar: %w", err)
		}
		params["avatar"] = base64.StdEncoding.EncodeToString(data)
	}

	raw, err := a.client.Request(ctx, "/app/json/update_profile", params)
	if err != nil {
		return err
	}
	var resp models.UpdateProfileResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode profile update: %w", err)
	}
	if !resp.Success {
		return errors.New("profile update was not accepted")
	}

	p.applySaved(resp.Player)
	a.OnProfileChange(resp.Player)
	return a.switcher.Rerender()
}

// SetPeriod refetches the rankings for period in place.
func (a *App) SetPeriod(period string) error {
	p, ok := a.switcher.Current().(*rankingsPage)
	if !ok {
		return fmt.Errorf("period: %w", ErrNotOnPage)
	}
	if !slices.Contains(periods, period) {
		return fmt.Errorf("unknown period %q, want one of %s", period, strings.Join(periods, ", "))
	}
	p.setPeriod(period)
	return a.switcher.Reload()
}

// Sort orders the rankings by field ("won", "lost" or "matches") and order
// ("asc" or "desc") without refetching.
func (a *App) Sort(field, order string) error {
	p, ok := a.switcher.Current().(*rankingsPage)
	if !ok {
		return fmt.Errorf("sort: %w", ErrNotOnPage)
	}
	if !slices.Contains(sortFields, field) {
		return fmt.Errorf("unknown sort field %q, want one of %s", field, strings.Join(sortFields, ", "))
	}
	if !slices.Contains(sortOrders, order) {
		return fmt.Errorf("unknown sort order %q, want asc or desc", order)
	}
	p.setSort(field, order)
	return a.switcher.Rerender()
}

// SubmitScore posts the score form and goes to the dashboard on success.
// Without any team1 entry the current player opens team 1.
func (a *App) SubmitScore(ctx context.Context, fields []FormField) error {
	p, ok := a.switcher.Current().(*scorePage)
	if !ok {
		return fmt.Errorf("submit: %w", ErrNotOnPage)
	}

	if !slices.ContainsFunc(fields, func(f FormField) bool { return f.Name == "team1" }) {
		p.mu.Lock()
		self := p.playerID
		p.mu.Unlock()
		if self != "" {
			fields = append([]FormField{{Name: "team1", Value: self}}, fields...)
		}
	}

	params, err := scoreParams(fields)
	if err != nil {
		return err
	}
	raw, err := a.client.Request(ctx, "/kicker/score/submit", params)
	if err != nil {
		return err
	}
	var resp models.SubmitScoreResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode score submission: %w", err)
	}
	if !resp.Success {
		return errors.New("score was not recorded")
	}
	return a.nav.Navigate(LandingPath)
}
