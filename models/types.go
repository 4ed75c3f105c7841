package models

import "time"

// Team constants
const (
	Team1 = "team_1"
	Team2 = "team_2"
)

// Ranking periods
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
	PeriodAll   = "all"
)

// Request types

type RankingsRequest struct {
	Period string `json:"period"`
}

type UpdateProfileRequest struct {
	Name       string `json:"name"`
	Tagline    string `json:"tagline"`
	MainKicker string `json:"main_kicker"`
	Avatar     string `json:"avatar"` // base64, optional
}

// Empty team slots ("") are filled with the anonymous player.
type SubmitScoreRequest struct {
	Team1    []string `json:"team1"`
	Team2    []string `json:"team2"`
	Score1   *int     `json:"score1"`
	Score2   *int     `json:"score2"`
	KickerID string   `json:"kicker_id"`
}

type SignupRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Response types

type DashboardResponse struct {
	Name           string          `json:"name"`
	Wins           int             `json:"wins"`
	Losses         int             `json:"losses"`
	Ratio          int             `json:"ratio"`
	WeeklyWins     int             `json:"weekly_wins"`
	WeeklyLosses   int             `json:"weekly_losses"`
	WeeklyWinRatio int             `json:"weekly_win_ratio"`
	Rating         float64         `json:"rating"`
	Teammates      []PlayerSummary `json:"teammates"`
	Nightmares     []PlayerSummary `json:"nightmares"`
	Graph          []int           `json:"graph"`
	LastGameAt     *time.Time      `json:"last_game_at,omitempty"`
}

type RankingRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Won     int    `json:"won"`
	Lost    int    `json:"lost"`
	Matches int    `json:"matches"`
}

type CommunityResponse struct {
	Usual []PlayerSummary `json:"usual"`
	Rare  []PlayerSummary `json:"rare"`
}

type PlayersResponse struct {
	Players  []PlayerRef `json:"players"`
	PlayerID string      `json:"player_id"`
}

type KickersResponse struct {
	Kickers []Kicker `json:"kickers"`
	Default string   `json:"default"`
}

type UpdateProfileResponse struct {
	Success bool   `json:"success"`
	Player  Player `json:"player"`
}

type SubmitScoreResponse struct {
	Success bool   `json:"success"`
	GameID  string `json:"game_id"`
}

// SignupResponse is returned by both signup and login. Active reports whether
// the account may use the kicker pages.
type SignupResponse struct {
	PlayerID    string `json:"player_id"`
	PlayerToken string `json:"player_token"`
	Active      bool   `json:"active"`
}

// Domain types

type Player struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	MainKickerID   string  `json:"main_kicker_id"`
	Tagline        string  `json:"tagline"`
	Rating         float64 `json:"rating"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	WinRatio       int     `json:"win_ratio"`
	WeeklyWins     int     `json:"weekly_wins"`
	WeeklyLosses   int     `json:"weekly_losses"`
	WeeklyWinRatio int     `json:"weekly_win_ratio"`
}

type PlayerSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
}

type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Kicker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Game struct {
	ID          string    `json:"id"`
	KickerID    string    `json:"kicker_id"`
	Score1      int       `json:"score_1"`
	Score2      int       `json:"score_2"`
	WinningTeam string    `json:"winning_team"`
	PlayedAt    time.Time `json:"played_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
