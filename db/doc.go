// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation and seeding.

# Connections

Open picks the driver from the configured type:

	conn, err := db.Open("sqlite", "file:kicker.db")
	conn, err := db.Open("postgres", "postgres://...")

SQLite is served by modernc.org/sqlite, PostgreSQL by lib/pq.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
Seed then inserts the anonymous player and the default kicker.

# Tables

  - kicker: Physical foosball tables
  - player: League members, their token hash, rating and avatar
  - game: One row per match with both scores
  - game_session: One row per player per game, with team and outcome

# Relationships

	kicker 1──* game
	game 1──* game_session (always four)
	player 1──* game_session
*/
package db
