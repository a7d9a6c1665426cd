package predict

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Sport selects sport-specific parsing and markets.
// Anything other than basketball is handled with the three-way (W-D-L) soccer rules.
type Sport string

const (
	SportSoccer     Sport = "soccer"
	SportBasketball Sport = "basketball"
)

// Normalize lower-cases and trims the sport name
func (s Sport) Normalize() Sport {
	return Sport(strings.ToLower(strings.TrimSpace(string(s))))
}

func (s Sport) IsBasketball() bool {
	return s.Normalize() == SportBasketball
}

// MatchInput is everything the engine needs to evaluate one fixture
type MatchInput struct {
	HomeName  string      `json:"homeName"`
	AwayName  string      `json:"awayName"`
	HomeStats TeamStats   `json:"homeStats"`
	AwayStats TeamStats   `json:"awayStats"`
	H2H       *HeadToHead `json:"h2h,omitempty"`
	Sport     Sport       `json:"sport"`
	// EventID identifies the fixture being predicted so it can be dropped from the H2H list
	EventID string `json:"eventId,omitempty"`
	// Now is the instant used for rest-day checks. Zero means time.Now() captured once per call.
	Now time.Time `json:"now,omitempty"`
}

// TeamStats holds the raw data provided for one side.
// A nil News slice means no news was supplied, which is not the same as "no stories".
type TeamStats struct {
	Record      string        `json:"record,omitempty"`
	LastMatches []MatchResult `json:"lastMatches,omitempty"`
	Form        string        `json:"form,omitempty"`
	News        []NewsItem    `json:"news"`
}

// MatchResult is a completed game from a team's own perspective
type MatchResult struct {
	Date          time.Time `json:"date"`
	Result        string    `json:"result,omitempty"`
	PointsFor     int       `json:"pf"`
	PointsAgainst int       `json:"pa"`
	IsHome        bool      `json:"isHome"`
	OpponentID    string    `json:"opponentId,omitempty"`
}

// Outcome returns W, D or L, deriving it from the score when Result is blank
func (m MatchResult) Outcome() string {
	switch r := strings.ToUpper(strings.TrimSpace(m.Result)); r {
	case "W", "D", "L":
		return r
	case "T":
		return "D"
	}
	switch {
	case m.PointsFor > m.PointsAgainst:
		return "W"
	case m.PointsFor < m.PointsAgainst:
		return "L"
	default:
		return "D"
	}
}

type NewsItem struct {
	Headline    string    `json:"headline"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	Published   time.Time `json:"published,omitempty"`
}

// HeadToHead is the raw meeting history between the two teams.
// The counts are used only when no scored meeting survives filtering.
type HeadToHead struct {
	HomeWins int              `json:"homeWins"`
	AwayWins int              `json:"awayWins"`
	Draws    int              `json:"draws"`
	Recent   []HistoricalGame `json:"recent,omitempty"`
}

// HistoricalGame is one past meeting recorded from the host's point of view.
// HostedByHome is true when the team in today's home slot was the host of that meeting.
type HistoricalGame struct {
	ID           string    `json:"id,omitempty"`
	Date         time.Time `json:"date"`
	Status       string    `json:"status,omitempty"`
	HostScore    *int      `json:"hostScore,omitempty"`
	VisitorScore *int      `json:"visitorScore,omitempty"`
	HostedByHome bool      `json:"hostedByHome"`
}

type TeamRecord struct {
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Draws         int     `json:"draws"`
	GamesPlayed   int     `json:"gamesPlayed"`
	WinPercentage float64 `json:"winPercentage"`
}

// H2HGame is a qualifying meeting with scores re-mapped to today's home and away slots
type H2HGame struct {
	Date      time.Time `json:"date"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	Combined  int       `json:"combinedScore"`
}

type HeadToHeadSummary struct {
	HomeWins    int       `json:"homeWins"`
	AwayWins    int       `json:"awayWins"`
	Draws       int       `json:"draws"`
	Meetings    int       `json:"meetings"`
	RecentGames []H2HGame `json:"recentGames"`
	AvgCombined float64   `json:"avgCombined"`
	MinCombined int       `json:"minCombined"`
	MaxCombined int       `json:"maxCombined"`
}

// HasScores reports whether combined-score statistics are available
func (s *HeadToHeadSummary) HasScores() bool {
	return s != nil && len(s.RecentGames) > 0
}

// ScoringProfile summarises a team's recent scoring. Nil when no matches were supplied.
type ScoringProfile struct {
	AvgScored     float64   `json:"avgScored"`
	AvgConceded   float64   `json:"avgConceded"`
	LastGameTotal int       `json:"lastGameTotal"`
	LastScored    int       `json:"lastScored"`
	LastPlayed    time.Time `json:"lastPlayed"`
	Games         int       `json:"games"`
}

// MarketType identifies a candidate's market. Lower values win confidence ties.
type MarketType int

const (
	MarketWinMargin MarketType = iota
	MarketTotals
	MarketSpread
	MarketTeamTotal
)

func (m MarketType) String() string {
	switch m {
	case MarketWinMargin:
		return "win_margin"
	case MarketTotals:
		return "totals"
	case MarketSpread:
		return "spread"
	case MarketTeamTotal:
		return "team_total"
	default:
		return "unknown"
	}
}

func (m MarketType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MarketType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "win_margin":
		*m = MarketWinMargin
	case "totals":
		*m = MarketTotals
	case "spread":
		*m = MarketSpread
	case "team_total":
		*m = MarketTeamTotal
	default:
		return fmt.Errorf("unknown market type: %q", string(b))
	}
	return nil
}

type Candidate struct {
	Market     MarketType `json:"market"`
	Text       string     `json:"text"`
	Confidence int        `json:"confidence"`
	Color      string     `json:"color"`
}

type Side string

const (
	SideHome    Side = "home"
	SideAway    Side = "away"
	SideNeutral Side = "neutral"
)

type FactorType string

const (
	FactorSuccess FactorType = "success"
	FactorInfo    FactorType = "info"
	FactorWarning FactorType = "warning"
	FactorError   FactorType = "error"
)

// Factor explains one signal that moved a score or produced a candidate
type Factor struct {
	Label string     `json:"label"`
	Side  Side       `json:"side"`
	Type  FactorType `json:"type"`
}

// Projection exposes the numeric projections behind the candidates
type Projection struct {
	Total       float64 `json:"total,omitempty"`
	Margin      float64 `json:"margin,omitempty"`
	SpreadLine  float64 `json:"spreadLine,omitempty"`
	HomeImplied float64 `json:"homeImplied,omitempty"`
	AwayImplied float64 `json:"awayImplied,omitempty"`
}

type PredictionResult struct {
	Prediction string      `json:"prediction"`
	Confidence int         `json:"confidence"`
	Color      string      `json:"color"`
	Market     string      `json:"market,omitempty"`
	Factors    []Factor    `json:"factors"`
	Candidates []Candidate `json:"candidates"`
	Projection *Projection `json:"projection,omitempty"`
}

// String renders the result as indented JSON
func (r *PredictionResult) String() string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return r.Prediction
	}
	return string(b)
}
