// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/kicker/cliparse"
	"github.com/danielhkuo/kicker/db"
	"github.com/danielhkuo/kicker/middleware"
	"github.com/danielhkuo/kicker/models"
)

// graphWeeks is the number of weeks shown on the dashboard graph
const graphWeeks = 5

type StatsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	now func() time.Time
}

func NewStatsHandler(db *sql.DB, cfg cliparse.Config) *StatsHandler {
	return &StatsHandler{db: db, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// Dashboard handles POST /app/json/dashboard
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playerID := middleware.PlayerID(ctx)
	now := h.now()

	player, err := loadPlayer(ctx, h.db, playerID, now)
	if err != nil {
		slog.Error("failed to load player", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	teammates, err := usualPlayers(ctx, h.db, playerID, now.AddDate(0, -1, 0))
	if err != nil {
		slog.Error("failed to load teammates", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	foes, err := nightmares(ctx, h.db, playerID, 3)
	if err != nil {
		slog.Error("failed to load nightmares", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	graph, err := weeklyGraph(ctx, h.db, playerID, now, graphWeeks)
	if err != nil {
		slog.Error("failed to compute graph", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.DashboardResponse{
		Name:           player.Name,
		Wins:           player.Wins,
		Losses:         player.Losses,
		Ratio:          player.WinRatio,
		WeeklyWins:     player.WeeklyWins,
		WeeklyLosses:   player.WeeklyLosses,
		WeeklyWinRatio: player.WeeklyWinRatio,
		Rating:         player.Rating,
		Teammates:      teammates,
		Nightmares:     foes,
		Graph:          graph,
	}

	var lastGame time.Time
	err = h.db.QueryRowContext(ctx, `
		SELECT played_at FROM game_session WHERE player_id = $1
		ORDER BY played_at DESC LIMIT 1
	`, playerID).Scan(&lastGame)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		slog.Warn("failed to read last game time", "error", err, "player_id", playerID)
	default:
		resp.LastGameAt = &lastGame
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Rankings handles POST /app/json/rankings
func (h *StatsHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	req := models.RankingsRequest{Period: models.PeriodMonth}
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	since, err := periodStart(req.Period, h.now())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "period must be week, month, year or all")
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT p.id, p.name,
		       COALESCE(SUM(CASE WHEN s.won THEN 1 ELSE 0 END), 0) AS won,
		       COALESCE(SUM(CASE WHEN s.won THEN 0 ELSE 1 END), 0) AS lost,
		       COUNT(*) AS matches
		FROM game_session s
		JOIN player p ON p.id = s.player_id
		WHERE s.played_at >= $1 AND p.id != $2
		GROUP BY p.id, p.name
		ORDER BY won DESC, matches ASC, p.name ASC
	`, since.UTC(), db.AnonymousPlayerID)
	if err != nil {
		slog.Error("failed to query rankings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	rankings := []models.RankingRow{}
	for rows.Next() {
		var row models.RankingRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Won, &row.Lost, &row.Matches); err != nil {
			slog.Error("failed to scan ranking", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		rankings = append(rankings, row)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate rankings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, rankings)
}

// Community handles POST /app/json/community
func (h *StatsHandler) Community(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playerID := middleware.PlayerID(ctx)

	usual, err := usualPlayers(ctx, h.db, playerID, h.now().AddDate(0, -1, 0))
	if err != nil {
		slog.Error("failed to load usual players", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	exclude := map[string]bool{playerID: true}
	for _, p := range usual {
		exclude[p.ID] = true
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(tagline, '') FROM player
		WHERE kicker_player = $1
		ORDER BY name ASC
	`, true)
	if err != nil {
		slog.Error("failed to query players", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	rare := []models.PlayerSummary{}
	for rows.Next() {
		var p models.PlayerSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Tagline); err != nil {
			slog.Error("failed to scan player", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !exclude[p.ID] {
			rare = append(rare, p)
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.CommunityResponse{
		Usual: usual,
		Rare:  rare,
	})
}

// Player handles POST /app/json/player and POST /app/json/player/{id}
func (h *StatsHandler) Player(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playerID := r.PathValue("id")
	if playerID == "" {
		playerID = middleware.PlayerID(ctx)
	}
	if playerID == db.AnonymousPlayerID {
		middleware.ErrorResponse(w, http.StatusNotFound, "Player not found")
		return
	}

	player, err := loadPlayer(ctx, h.db, playerID, h.now())
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Player not found")
		return
	}
	if err != nil {
		slog.Error("failed to load player", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, player)
}

// Players handles POST /app/json/players
func (h *StatsHandler) Players(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, name FROM player WHERE kicker_player = $1 ORDER BY name ASC
	`, true)
	if err != nil {
		slog.Error("failed to query players", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	players := []models.PlayerRef{}
	for rows.Next() {
		var p models.PlayerRef
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			slog.Error("failed to scan player", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		players = append(players, p)
	}

	middleware.JSONResponse(w, http.StatusOK, models.PlayersResponse{
		Players:  players,
		PlayerID: middleware.PlayerID(r.Context()),
	})
}

// Kickers handles POST /app/json/kickers
func (h *StatsHandler) Kickers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var mainKicker sql.NullString
	err := h.db.QueryRowContext(ctx, `
		SELECT main_kicker_id FROM player WHERE id = $1
	`, middleware.PlayerID(ctx)).Scan(&mainKicker)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.Error("failed to read main kicker", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.QueryContext(ctx, `SELECT id, name FROM kicker ORDER BY name ASC`)
	if err != nil {
		slog.Error("failed to query kickers", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	kickers := []models.Kicker{}
	for rows.Next() {
		var k models.Kicker
		if err := rows.Scan(&k.ID, &k.Name); err != nil {
			slog.Error("failed to scan kicker", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		kickers = append(kickers, k)
	}

	middleware.JSONResponse(w, http.StatusOK, models.KickersResponse{
		Kickers: kickers,
		Default: mainKicker.String,
	})
}
