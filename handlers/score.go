// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/kicker/auth"
	"github.com/danielhkuo/kicker/cliparse"
	"github.com/danielhkuo/kicker/db"
	"github.com/danielhkuo/kicker/middleware"
	"github.com/danielhkuo/kicker/models"
	"github.com/danielhkuo/kicker/rating"
)

// teamSize is the number of slots on each side of the table
const teamSize = 2

type ScoreHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	metrics *middleware.Metrics
	now     func() time.Time
}

func NewScoreHandler(db *sql.DB, cfg cliparse.Config, metrics *middleware.Metrics) *ScoreHandler {
	return &ScoreHandler{
		db:      db,
		cfg:     cfg,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit handles POST /kicker/score/submit
func (h *ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playerID := middleware.PlayerID(ctx)

	var req models.SubmitScoreRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	team1, err := fillTeam(req.Team1)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	team2, err := fillTeam(req.Team2)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	registered := registeredPlayers(team1, team2)
	if len(registered) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "There must be at least one registered player in the teams composition!")
		return
	}

	seen := map[string]bool{}
	for _, id := range registered {
		if seen[id] {
			middleware.ErrorResponse(w, http.StatusBadRequest, "A player cannot appear twice in the same game")
			return
		}
		seen[id] = true
	}

	if req.Score1 == nil || req.Score2 == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Please input the score")
		return
	}
	score1, score2 := *req.Score1, *req.Score2
	if score1 < 0 || score2 < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Scores cannot be negative")
		return
	}
	if score1 == score2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "A game cannot end in a draw")
		return
	}

	kickerID, err := h.resolveKicker(r, playerID, req.KickerID)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Begin transaction
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	ratings := map[string]float64{}
	for _, id := range registered {
		var kickerPlayer bool
		var current float64
		err := tx.QueryRowContext(ctx, `
			SELECT kicker_player, rating FROM player WHERE id = $1
		`, id).Scan(&kickerPlayer, &current)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && !kickerPlayer) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown player: "+id)
			return
		}
		if err != nil {
			slog.Error("failed to read player", "error", err, "player_id", id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		ratings[id] = current
	}

	winningTeam, winners, losers := models.Team1, team1, team2
	if score2 > score1 {
		winningTeam, winners, losers = models.Team2, team2, team1
	}

	gameID := uuid.NewString()
	playedAt := h.now()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO game (id, kicker_id, score_1, score_2, winning_team, played_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, gameID, kickerID, score1, score2, winningTeam, playedAt)
	if err != nil {
		slog.Error("failed to insert game", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record game")
		return
	}

	for _, side := range []struct {
		team    string
		players [teamSize]string
	}{{models.Team1, team1}, {models.Team2, team2}} {
		for _, id := range side.players {
			sessionID, err := auth.GenerateID(12)
			if err != nil {
				slog.Error("failed to generate session ID", "error", err)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record game")
				return
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO game_session (id, game_id, player_id, team, won, played_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, sessionID, gameID, id, side.team, side.team == winningTeam, playedAt)
			if err != nil {
				slog.Error("failed to insert game session", "error", err, "game_id", gameID)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record game")
				return
			}
		}
	}

	newWinners, newLosers := rating.Update(sideRating(winners, ratings), sideRating(losers, ratings), score1, score2)
	for _, update := range []struct {
		players [teamSize]string
		rating  float64
	}{{winners, newWinners}, {losers, newLosers}} {
		for _, id := range update.players {
			if id == db.AnonymousPlayerID {
				continue
			}
			if _, err := tx.ExecContext(ctx, `UPDATE player SET rating = $1 WHERE id = $2`, update.rating, id); err != nil {
				slog.Error("failed to update rating", "error", err, "player_id", id)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record game")
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit game", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record game")
		return
	}

	if h.metrics != nil {
		h.metrics.GamesRecorded.Inc()
	}
	slog.Info("game recorded", "game_id", gameID, "kicker_id", kickerID,
		"score", fmt.Sprintf("%d-%d", score1, score2), "submitted_by", playerID)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitScoreResponse{
		Success: true,
		GameID:  gameID,
	})
}

// resolveKicker picks the requested kicker, then the submitter's main kicker,
// then the default one, and checks that it exists.
func (h *ScoreHandler) resolveKicker(r *http.Request, playerID, requested string) (string, error) {
	ctx := r.Context()
	kickerID := requested
	if kickerID == "" {
		var main sql.NullString
		err := h.db.QueryRowContext(ctx, `
			SELECT main_kicker_id FROM player WHERE id = $1
		`, playerID).Scan(&main)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("failed to read main kicker")
		}
		kickerID = main.String
	}
	if kickerID == "" {
		kickerID = db.DefaultKickerID
	}

	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM kicker WHERE id = $1)
	`, kickerID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check kicker", "error", err)
		return "", fmt.Errorf("failed to check kicker")
	}
	if !exists {
		return "", fmt.Errorf("Unknown kicker: %s", kickerID)
	}
	return kickerID, nil
}

// fillTeam pads a team to teamSize, mapping empty slots to the anonymous player.
func fillTeam(ids []string) ([teamSize]string, error) {
	var team [teamSize]string
	if len(ids) > teamSize {
		return team, fmt.Errorf("A team has at most %d players", teamSize)
	}
	for i := range team {
		team[i] = db.AnonymousPlayerID
		if i < len(ids) {
			if id := strings.TrimSpace(ids[i]); id != "" {
				team[i] = id
			}
		}
	}
	return team, nil
}

// registeredPlayers lists the non-anonymous players of both teams in order.
func registeredPlayers(teams ...[teamSize]string) []string {
	var ids []string
	for _, team := range teams {
		for _, id := range team {
			if id != db.AnonymousPlayerID {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// sideRating averages the registered players' ratings. A side made only of
// anonymous slots is rated at the default.
func sideRating(team [teamSize]string, ratings map[string]float64) float64 {
	var values []float64
	for _, id := range team {
		if r, ok := ratings[id]; ok {
			values = append(values, r)
		}
	}
	if len(values) == 0 {
		return db.DefaultRating
	}
	return rating.Average(values)
}
