// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/danielhkuo/kicker/auth"
	"github.com/danielhkuo/kicker/cliparse"
	"github.com/danielhkuo/kicker/db"
	"github.com/danielhkuo/kicker/middleware"
	"github.com/danielhkuo/kicker/models"
)

type AccountHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	metrics *middleware.Metrics
}

func NewAccountHandler(db *sql.DB, cfg cliparse.Config, metrics *middleware.Metrics) *AccountHandler {
	return &AccountHandler{db: db, cfg: cfg, metrics: metrics}
}

// Signup handles POST /kicker/signup
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Login = strings.TrimSpace(req.Login)
	req.Email = strings.TrimSpace(req.Email)
	if req.Login == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "login is required")
		return
	}
	if err := auth.ValidateLogin(req.Login); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := auth.ValidateEmail(req.Email, h.cfg.EmailDomain); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooWeak) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	playerID, err := auth.GenerateID(8)
	if err != nil {
		slog.Error("failed to generate player ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	token, tokenHash, err := h.newToken()
	if err != nil {
		slog.Error("failed to generate player token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	var email *string
	if req.Email != "" {
		email = &req.Email
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO player (id, login, name, email, main_kicker_id, token_hash, password_hash, kicker_player, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, playerID, req.Login, req.Login, email, db.DefaultKickerID, tokenHash, passwordHash,
		h.cfg.AutoEnroll, db.DefaultRating, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Login already taken")
			return
		}
		slog.Error("failed to insert player", "error", err, "login", req.Login)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if h.metrics != nil {
		h.metrics.Signups.Inc()
	}
	slog.Info("player signed up", "player_id", playerID, "login", req.Login, "active", h.cfg.AutoEnroll)

	middleware.JSONResponse(w, http.StatusCreated, models.SignupResponse{
		PlayerID:    playerID,
		PlayerToken: token,
		Active:      h.cfg.AutoEnroll,
	})
}

// Login handles POST /kicker/login. A successful login issues a fresh token
// and invalidates the previous one.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Login == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "login and password are required")
		return
	}

	var playerID string
	var passwordHash sql.NullString
	var active bool
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, password_hash, kicker_player FROM player WHERE login = $1
	`, strings.TrimSpace(req.Login)).Scan(&playerID, &passwordHash, &active)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid login or password")
		return
	}
	if err != nil {
		slog.Error("failed to query player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !passwordHash.Valid || auth.CheckPassword(passwordHash.String, req.Password) != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid login or password")
		return
	}

	token, tokenHash, err := h.newToken()
	if err != nil {
		slog.Error("failed to generate player token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	_, err = h.db.ExecContext(r.Context(), `
		UPDATE player SET token_hash = $1 WHERE id = $2
	`, tokenHash, playerID)
	if err != nil {
		slog.Error("failed to store player token", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("player logged in", "player_id", playerID)

	middleware.JSONResponse(w, http.StatusOK, models.SignupResponse{
		PlayerID:    playerID,
		PlayerToken: token,
		Active:      active,
	})
}

func (h *AccountHandler) newToken() (token, hash string, err error) {
	token, err = auth.GeneratePlayerToken()
	if err != nil {
		return "", "", err
	}
	hash, err = auth.HashToken(token, h.cfg.TokenSalt)
	if err != nil {
		return "", "", err
	}
	return token, hash, nil
}

// isUniqueViolation reports whether err is a unique constraint failure on
// either supported database.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
