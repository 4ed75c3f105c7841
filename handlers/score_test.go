// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danielhkuo/kicker/db"
	"github.com/danielhkuo/kicker/middleware"
	"github.com/danielhkuo/kicker/models"
	"github.com/danielhkuo/kicker/testutil"
)

func intPtr(v int) *int { return &v }

func TestSubmitScore(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	alice, _ := testutil.CreateTestPlayer(t, conn, cfg, "alice")
	bob, _ := testutil.CreateTestPlayer(t, conn, cfg, "bob")
	carol, _ := testutil.CreateTestPlayer(t, conn, cfg, "carol")

	metrics := middleware.NewMetrics(nil)
	handler := NewScoreHandler(conn, cfg, metrics)

	body := models.SubmitScoreRequest{
		Team1:  []string{alice, bob},
		Team2:  []string{carol, ""},
		Score1: intPtr(10),
		Score2: intPtr(4),
	}
	req := asPlayer(testutil.MakeRequest("POST", "/kicker/score/submit", body, nil), alice)
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.SubmitScoreResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Success || resp.GameID == "" {
		t.Fatalf("Expected success with a game id, got %+v", resp)
	}

	var kickerID, winner string
	err := conn.QueryRow(`SELECT kicker_id, winning_team FROM game WHERE id = $1`, resp.GameID).Scan(&kickerID, &winner)
	if err != nil {
		t.Fatalf("Failed to read game: %v", err)
	}
	if kickerID != db.DefaultKickerID {
		t.Errorf("Expected default kicker, got %s", kickerID)
	}
	if winner != models.Team1 {
		t.Errorf("Expected team_1 to win, got %s", winner)
	}

	var sessions, anonymous int
	err = conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN player_id = $2 THEN 1 ELSE 0 END), 0)
		FROM game_session WHERE game_id = $1
	`, resp.GameID, db.AnonymousPlayerID).Scan(&sessions, &anonymous)
	if err != nil {
		t.Fatalf("Failed to count sessions: %v", err)
	}
	if sessions != 4 {
		t.Errorf("Expected 4 sessions, got %d", sessions)
	}
	if anonymous != 1 {
		t.Errorf("Expected the empty slot to be anonymous, got %d anonymous sessions", anonymous)
	}

	// Both sides start at 1000: K = 32 + 6 goals, expected score 0.5
	wantRatings := map[string]float64{
		alice:                1019,
		bob:                  1019,
		carol:                981,
		db.AnonymousPlayerID: db.DefaultRating,
	}
	for id, want := range wantRatings {
		var got float64
		if err := conn.QueryRow(`SELECT rating FROM player WHERE id = $1`, id).Scan(&got); err != nil {
			t.Fatalf("Failed to read rating: %v", err)
		}
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Rating of %s = %v, want %v", id, got, want)
		}
	}

	if got := promtest.ToFloat64(metrics.GamesRecorded); got != 1 {
		t.Errorf("Expected 1 game recorded in metrics, got %v", got)
	}
}

func TestSubmitScoreValidation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	alice, _ := testutil.CreateTestPlayer(t, conn, cfg, "alice")
	bob, _ := testutil.CreateTestPlayer(t, conn, cfg, "bob")
	watcher, _ := testutil.CreateTestUser(t, conn, cfg, "watcher")

	handler := NewScoreHandler(conn, cfg, nil)

	tests := []struct {
		name string
		body models.SubmitScoreRequest
	}{
		{
			name: "no registered player",
			body: models.SubmitScoreRequest{Team1: []string{"", ""}, Team2: []string{}, Score1: intPtr(10), Score2: intPtr(2)},
		},
		{
			name: "missing score",
			body: models.SubmitScoreRequest{Team1: []string{alice}, Team2: []string{bob}, Score1: intPtr(10)},
		},
		{
			name: "draw",
			body: models.SubmitScoreRequest{Team1: []string{alice}, Team2: []string{bob}, Score1: intPtr(5), Score2: intPtr(5)},
		},
		{
			name: "negative score",
			body: models.SubmitScoreRequest{Team1: []string{alice}, Team2: []string{bob}, Score1: intPtr(-1), Score2: intPtr(5)},
		},
		{
			name: "unknown player",
			body: models.SubmitScoreRequest{Team1: []string{alice}, Team2: []string{"ghost"}, Score1: intPtr(10), Score2: intPtr(5)},
		},
		{
			name: "not a kicker player",
			body: models.SubmitScoreRequest{Team1: []string{alice}, Team2: []string{watcher}, Score1: intPtr(10), Score2: intPtr(5)},
		},
		{
			name: "duplicate player",
			body: models.SubmitScoreRequest{Team1: []string{alice, bob}, Team2: []string{bob}, Score1: intPtr(10), Score2: intPtr(5)},
		},
		{
			name: "team too large",
			body: models.SubmitScoreRequest{Team1: []string{alice, bob, "x"}, Team2: []string{}, Score1: intPtr(10), Score2: intPtr(5)},
		},
		{
			name: "unknown kicker",
			body: models.SubmitScoreRequest{Team1: []string{alice}, Team2: []string{bob}, Score1: intPtr(10), Score2: intPtr(5), KickerID: "garage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asPlayer(testutil.MakeRequest("POST", "/kicker/score/submit", tt.body, nil), alice)
			w := httptest.NewRecorder()
			handler.Submit(w, req)
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}

	var games int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM game`).Scan(&games); err != nil {
		t.Fatalf("Failed to count games: %v", err)
	}
	if games != 0 {
		t.Errorf("Expected no game recorded, got %d", games)
	}
}

func TestSubmitScoreTeam2Wins(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	alice, _ := testutil.CreateTestPlayer(t, conn, cfg, "alice")
	bob, _ := testutil.CreateTestPlayer(t, conn, cfg, "bob")

	handler := NewScoreHandler(conn, cfg, nil)
	body := models.SubmitScoreRequest{
		Team1:    []string{alice},
		Team2:    []string{bob},
		Score1:   intPtr(7),
		Score2:   intPtr(11),
		KickerID: db.DefaultKickerID,
	}
	w := httptest.NewRecorder()
	handler.Submit(w, asPlayer(testutil.MakeRequest("POST", "/kicker/score/submit", body, nil), alice))

	testutil.AssertStatus(t, w, http.StatusCreated)

	var won bool
	if err := conn.QueryRow(`SELECT won FROM game_session WHERE player_id = $1`, bob).Scan(&won); err != nil {
		t.Fatalf("Failed to read session: %v", err)
	}
	if !won {
		t.Error("Expected bob's session to be a win")
	}
}

func TestFillTeam(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    [teamSize]string
		wantErr bool
	}{
		{name: "empty", in: nil, want: [teamSize]string{db.AnonymousPlayerID, db.AnonymousPlayerID}},
		{name: "one", in: []string{"a"}, want: [teamSize]string{"a", db.AnonymousPlayerID}},
		{name: "blank slot", in: []string{" ", "b"}, want: [teamSize]string{db.AnonymousPlayerID, "b"}},
		{name: "full", in: []string{"a", "b"}, want: [teamSize]string{"a", "b"}},
		{name: "too many", in: []string{"a", "b", "c"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fillTeam(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("fillTeam() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("fillTeam() = %v, want %v", got, tt.want)
			}
		})
	}
}
