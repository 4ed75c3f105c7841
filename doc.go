// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the kicker league API server.

Kicker tracks office foosball games: players sign up, record 2v2 games and
follow their dashboard, the rankings and the rest of the community. Ratings
use a team Elo. The terminal client lives in cmd/kicker.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	TOKEN_SALT=... DATABASE_URL=kicker.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -token-salt ...

A .env file in the working directory (or -env path) is loaded first;
variables already set in the environment win.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - TOKEN_SALT (-token-salt): Secret for player token HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - EMAIL_DOMAIN (-email-domain): Signup email domain (default: odoo.com)
  - AUTO_ENROLL (-auto-enroll): Enroll signups as kicker players (default: true)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (stats, profile, score, accounts)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Player auth, CORS, logging, metrics, JSON helpers
  - models: Request/response types
  - auth: Tokens, passwords and signup validation
  - rating: Team Elo
  - db: Connection, schema creation and seed rows
  - cliparse: Configuration parsing

The client side is split the same way:

  - navigation: Route table and history navigator
  - pages: Page switcher with generation-tagged loads
  - connectivity: Online/offline watcher and health prober
  - apiclient: HTTP client for the JSON routes
  - kickerapp: League routes, pages and menu
  - tui: Bubble Tea host
  - cmd/kicker: Client command line

See package documentation for each component.
*/
package main
