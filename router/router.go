// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/kicker/cliparse"
	"github.com/danielhkuo/kicker/handlers"
	"github.com/danielhkuo/kicker/middleware"
)

// NewRouter builds the league API. A nil metrics gets a private registry.
func NewRouter(db *sql.DB, cfg cliparse.Config, metrics *middleware.Metrics) *http.ServeMux {
	if metrics == nil {
		metrics = middleware.NewMetrics(nil)
	}
	mux := http.NewServeMux()

	// Initialize handlers
	statsHandler := handlers.NewStatsHandler(db, cfg)
	profileHandler := handlers.NewProfileHandler(db, cfg)
	scoreHandler := handlers.NewScoreHandler(db, cfg, metrics)
	accountHandler := handlers.NewAccountHandler(db, cfg, metrics)

	public := func(route string, h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(metrics.Wrap(route, h))
	}
	player := func(route string, h http.HandlerFunc) http.HandlerFunc {
		return public(route, middleware.WithPlayer(db, cfg.TokenSalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Page data (requires X-Player-Token)
	mux.HandleFunc("POST /app/json/dashboard", player("dashboard", statsHandler.Dashboard))
	mux.HandleFunc("POST /app/json/rankings", player("rankings", statsHandler.Rankings))
	mux.HandleFunc("POST /app/json/community", player("community", statsHandler.Community))
	mux.HandleFunc("POST /app/json/player", player("player", statsHandler.Player))
	mux.HandleFunc("POST /app/json/player/{id}", player("player", statsHandler.Player))
	mux.HandleFunc("POST /app/json/players", player("players", statsHandler.Players))
	mux.HandleFunc("POST /app/json/kickers", player("kickers", statsHandler.Kickers))
	mux.HandleFunc("POST /app/json/update_profile", player("update_profile", profileHandler.UpdateProfile))

	// Avatars
	mux.HandleFunc("GET /app/avatar", player("avatar", profileHandler.Avatar))
	mux.HandleFunc("GET /app/avatar/{id}", public("avatar", profileHandler.Avatar))

	// Games
	mux.HandleFunc("POST /kicker/score/submit", player("score_submit", scoreHandler.Submit))

	// Accounts (public)
	mux.HandleFunc("POST /kicker/signup", public("signup", accountHandler.Signup))
	mux.HandleFunc("POST /kicker/login", public("login", accountHandler.Login))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("kicker API v1"))
	})

	return mux
}
