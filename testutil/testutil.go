// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/kicker/auth"
	"github.com/danielhkuo/kicker/cliparse"
	"github.com/danielhkuo/kicker/db"
	"github.com/danielhkuo/kicker/models"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
// and seed rows.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := db.Seed(conn); err != nil {
		t.Fatalf("Failed to seed database: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
		TokenSalt:    "test-token-salt",
		EmailDomain:  "odoo.com",
		AutoEnroll:   true,
	}
}

// CreateTestPlayer inserts a kicker player and returns its ID and token.
func CreateTestPlayer(t *testing.T, conn *sql.DB, cfg cliparse.Config, name string) (playerID, token string) {
	t.Helper()
	return createPlayer(t, conn, cfg, name, true)
}

// CreateTestUser inserts a user that is not a kicker player.
func CreateTestUser(t *testing.T, conn *sql.DB, cfg cliparse.Config, name string) (playerID, token string) {
	t.Helper()
	return createPlayer(t, conn, cfg, name, false)
}

func createPlayer(t *testing.T, conn *sql.DB, cfg cliparse.Config, name string, kickerPlayer bool) (string, string) {
	playerID, _ := auth.GenerateID(8)
	token, _ := auth.GeneratePlayerToken()
	hash, err := auth.HashToken(token, cfg.TokenSalt)
	if err != nil {
		t.Fatalf("Failed to hash token: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO player (id, login, name, tagline, token_hash, kicker_player, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, playerID, name, name, name+" plays", hash, kickerPlayer, db.DefaultRating, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test player: %v", err)
	}

	return playerID, token
}

// CreateTestGame records a finished game at the given time.
// team1 and team2 hold two player IDs each.
func CreateTestGame(t *testing.T, conn *sql.DB, team1, team2 [2]string, score1, score2 int, playedAt time.Time) string {
	t.Helper()

	gameID := uuid.NewString()
	winner := models.Team2
	if score1 > score2 {
		winner = models.Team1
	}
	playedAt = playedAt.UTC()

	_, err := conn.Exec(`
		INSERT INTO game (id, kicker_id, score_1, score_2, winning_team, played_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, gameID, db.DefaultKickerID, score1, score2, winner, playedAt)
	if err != nil {
		t.Fatalf("Failed to create test game: %v", err)
	}

	insert := func(playerID, team string) {
		sessionID, _ := auth.GenerateID(12)
		_, err := conn.Exec(`
			INSERT INTO game_session (id, game_id, player_id, team, won, played_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, sessionID, gameID, playerID, team, team == winner, playedAt)
		if err != nil {
			t.Fatalf("Failed to create test session: %v", err)
		}
	}
	for _, p := range team1 {
		insert(p, models.Team1)
	}
	for _, p := range team2 {
		insert(p, models.Team2)
	}

	return gameID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// PlayerHeaders returns the auth header map for a player token.
func PlayerHeaders(token string) map[string]string {
	return map[string]string{"X-Player-Token": token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
