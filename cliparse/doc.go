// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration
for the kicker league server.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite file or PostgreSQL connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - TokenSalt: Secret for player token HMAC (required)
  - EmailDomain: Domain required for signup emails (default: odoo.com)
  - AutoEnroll: Whether signups become kicker players immediately (default: true)

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type
	-env           Path to a .env file (default: .env)
	-token-salt    Player token salt
	-email-domain  Signup email domain
	-auto-enroll   Enroll signups as players

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	TOKEN_SALT    → -token-salt
	EMAIL_DOMAIN  → -email-domain
	AUTO_ENROLL   → -auto-enroll

A .env file is loaded before the fallback runs. Variables already present
in the environment are not overwritten by the file. CLI flags take
precedence over both.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - TOKEN_SALT must be provided
  - DATABASE_TYPE must be sqlite or postgres
*/
package cliparse
