// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the kicker league API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, metrics)

Every route except /health and /metrics is wrapped with request logging and
the Prometheus request metrics. Routes marked below with a token also run
behind middleware.WithPlayer.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Page data (requires X-Player-Token):

	POST /app/json/dashboard
	POST /app/json/rankings
	POST /app/json/community
	POST /app/json/player
	POST /app/json/player/{id}
	POST /app/json/players
	POST /app/json/kickers
	POST /app/json/update_profile

Avatars:

	GET /app/avatar       - Own avatar (requires X-Player-Token)
	GET /app/avatar/{id}  - Any player's avatar

Games (requires X-Player-Token):

	POST /kicker/score/submit

Accounts (public):

	POST /kicker/signup
	POST /kicker/login
*/
package router
