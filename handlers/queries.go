// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/kicker/db"
	"github.com/danielhkuo/kicker/models"
)

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// record is a won/lost tally
type record struct {
	Wins   int
	Losses int
}

func (r record) ratio() int {
	total := r.Wins + r.Losses
	if total == 0 {
		return 0
	}
	return r.Wins * 100 / total
}

// recordBetween counts a player's wins and losses with from <= played_at < to.
// A zero to means no upper bound.
func recordBetween(ctx context.Context, q queryer, playerID string, from, to time.Time) (record, error) {
	if to.IsZero() {
		to = time.Now().UTC().Add(time.Hour)
	}
	var wins, total int
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN won THEN 1 ELSE 0 END), 0), COUNT(*)
		FROM game_session
		WHERE player_id = $1 AND played_at >= $2 AND played_at < $3
	`, playerID, from.UTC(), to.UTC()).Scan(&wins, &total)
	if err != nil {
		return record{}, fmt.Errorf("failed to count games: %w", err)
	}
	return record{Wins: wins, Losses: total - wins}, nil
}

// usualPlayers lists the players who shared a game with playerID since the
// given time, most frequent first.
func usualPlayers(ctx context.Context, q queryer, playerID string, since time.Time) ([]models.PlayerSummary, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT p.id, p.name, COALESCE(p.tagline, ''), COUNT(*) AS games
		FROM game_session me
		JOIN game_session other ON other.game_id = me.game_id AND other.player_id != me.player_id
		JOIN player p ON p.id = other.player_id
		WHERE me.player_id = $1 AND me.played_at >= $2 AND p.id != $3
		GROUP BY p.id, p.name, p.tagline
		ORDER BY games DESC, p.name ASC
	`, playerID, since.UTC(), db.AnonymousPlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query usual players: %w", err)
	}
	defer rows.Close()

	players := []models.PlayerSummary{}
	for rows.Next() {
		var p models.PlayerSummary
		var games int
		if err := rows.Scan(&p.ID, &p.Name, &p.Tagline, &games); err != nil {
			return nil, fmt.Errorf("failed to scan usual player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// nightmares lists the opponents playerID lost to most often, at most limit.
func nightmares(ctx context.Context, q queryer, playerID string, limit int) ([]models.PlayerSummary, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT p.id, p.name, COALESCE(p.tagline, ''), COUNT(*) AS defeats
		FROM game_session me
		JOIN game_session opp ON opp.game_id = me.game_id AND opp.team != me.team
		JOIN player p ON p.id = opp.player_id
		WHERE me.player_id = $1 AND NOT me.won AND p.id != $2
		GROUP BY p.id, p.name, p.tagline
		ORDER BY defeats DESC, p.name ASC
		LIMIT $3
	`, playerID, db.AnonymousPlayerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query nightmares: %w", err)
	}
	defer rows.Close()

	players := []models.PlayerSummary{}
	for rows.Next() {
		var p models.PlayerSummary
		var defeats int
		if err := rows.Scan(&p.ID, &p.Name, &p.Tagline, &defeats); err != nil {
			return nil, fmt.Errorf("failed to scan nightmare: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// weeklyGraph returns the win percentage for each of the last n weeks,
// oldest first.
func weeklyGraph(ctx context.Context, q queryer, playerID string, now time.Time, n int) ([]int, error) {
	graph := make([]int, n)
	for i := 0; i < n; i++ {
		to := now.AddDate(0, 0, -7*(n-1-i))
		from := to.AddDate(0, 0, -7)
		rec, err := recordBetween(ctx, q, playerID, from, to)
		if err != nil {
			return nil, err
		}
		graph[i] = rec.ratio()
	}
	return graph, nil
}

// loadPlayer reads a player's profile and stats. Returns sql.ErrNoRows when
// the player does not exist.
func loadPlayer(ctx context.Context, q queryer, playerID string, now time.Time) (models.Player, error) {
	var p models.Player
	var email, tagline, mainKicker sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT id, name, email, tagline, main_kicker_id, rating
		FROM player WHERE id = $1
	`, playerID).Scan(&p.ID, &p.Name, &email, &tagline, &mainKicker, &p.Rating)
	if err != nil {
		return models.Player{}, err
	}
	p.Email = email.String
	p.Tagline = tagline.String
	p.MainKickerID = mainKicker.String

	all, err := recordBetween(ctx, q, playerID, time.Time{}, time.Time{})
	if err != nil {
		return models.Player{}, err
	}
	weekly, err := recordBetween(ctx, q, playerID, now.AddDate(0, 0, -7), time.Time{})
	if err != nil {
		return models.Player{}, err
	}

	p.Wins, p.Losses, p.WinRatio = all.Wins, all.Losses, all.ratio()
	p.WeeklyWins, p.WeeklyLosses, p.WeeklyWinRatio = weekly.Wins, weekly.Losses, weekly.ratio()
	return p, nil
}

// periodStart maps a ranking period to the earliest game time it covers.
func periodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case models.PeriodWeek:
		return now.AddDate(0, 0, -7), nil
	case models.PeriodMonth, "":
		return now.AddDate(0, -1, 0), nil
	case models.PeriodYear:
		return now.AddDate(-1, 0, 0), nil
	case models.PeriodAll:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unknown period %q", period)
	}
}
