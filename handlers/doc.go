// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the kicker league API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - StatsHandler: dashboard, rankings, community and player statistics
  - ProfileHandler: profile edits and avatars
  - ScoreHandler: game submission and rating updates
  - AccountHandler: signup and login

Handlers are created via constructor functions that accept *sql.DB and Config.
Handlers that count domain events also take the metrics collector, which may
be nil:

	stats := handlers.NewStatsHandler(db, cfg)
	score := handlers.NewScoreHandler(db, cfg, metrics)

# Authentication

Every /app/json/* route and the score submission run behind
middleware.WithPlayer; handlers read the caller with middleware.PlayerID.
Signup, login and the public avatar route need no token.

# JSON Routes

All JSON routes take a POST with an optional JSON body:

	POST /app/json/dashboard      → Dashboard
	POST /app/json/rankings       → Rankings {period: week|month|year|all}
	POST /app/json/community      → Community
	POST /app/json/player[/{id}]  → Player
	POST /app/json/players        → Players
	POST /app/json/kickers        → Kickers
	POST /app/json/update_profile → UpdateProfile

# Games

	POST /kicker/score/submit → Submit

Empty team slots are filled with the anonymous player. At least one
registered player is required and draws are rejected. The game, its four
sessions and the rating update are written in one transaction. Ratings use a
team Elo where each side is rated by the average of its registered players;
see package rating.

# Accounts

	POST /kicker/signup → Signup (returns player_token)
	POST /kicker/login  → Login (rotates player_token)

Only an HMAC of the token is stored. New players are enrolled as kicker
players when Config.AutoEnroll is set.
*/
package handlers
