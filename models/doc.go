// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RankingsRequest: period
  - UpdateProfileRequest: name, tagline, main_kicker, avatar
  - SubmitScoreRequest: team1, team2, score1, score2, kicker_id
  - SignupRequest: login, password, email

# Response Types

  - DashboardResponse: personal stats, teammates, nightmares, graph
  - RankingRow: one line of the rankings table
  - CommunityResponse: usual and rare players
  - PlayersResponse, KickersResponse: choices for the score form
  - UpdateProfileResponse, SubmitScoreResponse, SignupResponse
  - ErrorResponse: error, message

# Domain Types

  - Player: profile plus computed stats
  - PlayerSummary, PlayerRef: compact player listings
  - Kicker: a physical table
  - Game: a recorded match

# Constants

Teams:

	Team1 = "team_1"
	Team2 = "team_2"

Ranking periods:

	PeriodWeek, PeriodMonth, PeriodYear, PeriodAll
*/
package models
