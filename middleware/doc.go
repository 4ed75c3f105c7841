// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and JSON helpers.

# Logging

WithLogging logs request start and completion with slog, including the
response status and duration:

	mux.HandleFunc("POST /app/json/dashboard", middleware.WithLogging(h.Dashboard))

# Player Authentication

WithPlayer resolves the X-Player-Token header to a player row. Missing or
unknown tokens are rejected with 401, users that are not kicker players with
403. The resolved ID is available to the handler:

	playerID := middleware.PlayerID(r.Context())

# Metrics

Metrics wraps handlers with a Prometheus request counter and latency
histogram and exposes domain counters (games recorded, signups):

	m := middleware.NewMetrics(prometheus.NewRegistry())
	mux.HandleFunc("POST /kicker/score/submit", m.Wrap("score_submit", h.Submit))
	mux.Handle("GET /metrics", m.Handler())

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	err := middleware.ParseJSONBody(r, &req)

ParseJSONBody treats an empty body as "no parameters" so JSON routes can be
called without a payload.

# CORS

CORS allows the X-Player-Token header and reflects the request origin.

# Client IP

GetClientIP checks X-Forwarded-For, X-Real-IP, then RemoteAddr.
*/
package middleware
