// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Seeded rows every league database carries.
const (
	AnonymousPlayerID = "anonymous"
	DefaultKickerID   = "main"
	DefaultRating     = 1000.0
)

// Open connects to the database of the given type ("sqlite" or "postgres")
// and verifies the connection.
func Open(dbType, url string) (*sql.DB, error) {
	driver := dbType
	switch dbType {
	case "sqlite":
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbType == "sqlite" {
		// SQLite allows a single writer
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Seed inserts the anonymous player and the default kicker if missing.
func Seed(db *sql.DB) error {
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO kicker (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, DefaultKickerID, "Main Kicker")
	if err != nil {
		return fmt.Errorf("failed to seed kicker: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO player (id, login, name, kicker_player, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, AnonymousPlayerID, AnonymousPlayerID, "Anonymous", false, DefaultRating, now)
	if err != nil {
		return fmt.Errorf("failed to seed anonymous player: %w", err)
	}
	return nil
}

const schema = `
-- Kicker tables
CREATE TABLE IF NOT EXISTS kicker (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

-- Players
CREATE TABLE IF NOT EXISTS player (
    id TEXT PRIMARY KEY,
    login TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    email TEXT,
    tagline TEXT,
    main_kicker_id TEXT REFERENCES kicker(id) ON DELETE SET NULL,
    token_hash TEXT UNIQUE,
    password_hash TEXT,
    kicker_player BOOLEAN NOT NULL DEFAULT FALSE,
    rating REAL NOT NULL DEFAULT 1000,
    avatar TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_player_token_hash ON player(token_hash);

-- Games
CREATE TABLE IF NOT EXISTS game (
    id TEXT PRIMARY KEY,
    kicker_id TEXT REFERENCES kicker(id) ON DELETE RESTRICT,
    score_1 INTEGER NOT NULL,
    score_2 INTEGER NOT NULL,
    winning_team TEXT NOT NULL CHECK (winning_team IN ('team_1', 'team_2')),
    played_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_game_played_at ON game(played_at);

-- Game sessions (one per player per game)
CREATE TABLE IF NOT EXISTS game_session (
    id TEXT PRIMARY KEY,
    game_id TEXT NOT NULL REFERENCES game(id) ON DELETE CASCADE,
    player_id TEXT NOT NULL REFERENCES player(id),
    team TEXT NOT NULL CHECK (team IN ('team_1', 'team_2')),
    won BOOLEAN NOT NULL,
    played_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_game_session_game_id ON game_session(game_id);
CREATE INDEX IF NOT EXISTS idx_game_session_player_id ON game_session(player_id);
`
