package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVenueRating(t *testing.T) {
	cfg := DefaultEngineConfig()
	matches := []MatchResult{
		{IsHome: false, PointsFor: 100, PointsAgainst: 90},
		{IsHome: true, PointsFor: 110, PointsAgainst: 100},
		{IsHome: false, PointsFor: 95, PointsAgainst: 100},
	}

	// two away games qualify: (10 - 5) / 2
	assert.InDelta(t, 2.5, VenueRating(matches, false, cfg), 1e-9)

	// one home game only: overall (10 + 10 - 5) / 3 plus the venue proxy
	assert.InDelta(t, 8.0, VenueRating(matches, true, cfg), 1e-9)

	assert.InDelta(t, -cfg.VenueProxy, VenueRating(nil, false, cfg), 1e-9)
}

func TestVenueRatingFallbackUsesLastFive(t *testing.T) {
	cfg := DefaultEngineConfig()
	matches := append(repeatGames(5, 100, 90, false, 1), repeatGames(3, 80, 120, false, 20)...)
	matches = append(matches, MatchResult{IsHome: true, PointsFor: 100, PointsAgainst: 100})

	assert.InDelta(t, 10.0+cfg.VenueProxy, VenueRating(matches, true, cfg), 1e-9)
}

func TestPlayedRecently(t *testing.T) {
	cfg := DefaultEngineConfig()
	assert.True(t, playedRecently(daysAgo(1), testNow, cfg))
	assert.True(t, playedRecently(daysAgo(2), testNow, cfg))
	assert.False(t, playedRecently(daysAgo(3), testNow, cfg))
	assert.False(t, playedRecently(daysAgo(-1), testNow, cfg), "future games never count")
}

func TestPlayedRecentlyIgnoresMissingDate(t *testing.T) {
	var never MatchResult
	assert.False(t, playedRecently(never.Date, testNow, DefaultEngineConfig()))
}

func TestProjectMarginFatigueAndH2H(t *testing.T) {
	e, err := NewEngine(nil)
	require.NoError(t, err)

	in := MatchInput{
		HomeName:  "Bucks",
		AwayName:  "Nets",
		Sport:     SportBasketball,
		Now:       testNow,
		HomeStats: TeamStats{LastMatches: repeatGames(4, 115, 105, true, 1)},
		AwayStats: TeamStats{LastMatches: repeatGames(4, 108, 106, false, 4)},
	}

	ev := e.newEvaluation(in)
	// 10 - 2, home played yesterday
	assert.InDelta(t, 4.0, ev.projectMargin(), 1e-9)
	require.Len(t, ev.factors, 1)
	assert.Equal(t, Factor{Label: "Fatigue (Back-to-Back)", Side: SideHome, Type: FactorError}, ev.factors[0])

	in.H2H = &HeadToHead{Recent: []HistoricalGame{
		meeting("1", daysAgo(50), 120, 100, true),
		meeting("2", daysAgo(90), 110, 112, true),
	}}
	ev = e.newEvaluation(in)
	// one meeting each, no adjustment
	assert.InDelta(t, 4.0, ev.projectMargin(), 1e-9)

	in.H2H.Recent[1] = meeting("2", daysAgo(90), 112, 110, true)
	ev = e.newEvaluation(in)
	assert.InDelta(t, 7.0, ev.projectMargin(), 1e-9)
}

func TestTeamTotal(t *testing.T) {
	cfg := DefaultEngineConfig()

	_, ok := teamTotal("Kings", 100, &ScoringProfile{AvgScored: 120}, cfg)
	assert.False(t, ok, "implied score must exceed the sanity floor")

	c, ok := teamTotal("Kings", 100.5, &ScoringProfile{AvgScored: 98}, cfg)
	require.True(t, ok)
	assert.Equal(t, "Kings Over 95.5 Points", c.Text)
	assert.Equal(t, 60, c.Confidence)
	assert.Equal(t, MarketTeamTotal, c.Market)

	c, ok = teamTotal("Kings", 100.5, &ScoringProfile{AvgScored: 98.5}, cfg)
	require.True(t, ok)
	assert.Equal(t, 70, c.Confidence)

	// the line keeps the full buffer for fractional implied scores
	c, ok = teamTotal("Lakers", 110.9, nil, cfg)
	require.True(t, ok)
	assert.Equal(t, "Lakers Over 105.5 Points", c.Text)
}

func TestSpreadLine(t *testing.T) {
	assert.Equal(t, -4.5, spreadLine(4))
	assert.Equal(t, -4.5, spreadLine(4.9))
	assert.Equal(t, 2.5, spreadLine(-2.3))
}

func TestSpreadCandidatesNeverOfferHandicap(t *testing.T) {
	e, err := NewEngine(nil)
	require.NoError(t, err)

	ev := e.newEvaluation(MatchInput{
		HomeName:  "Lakers",
		AwayName:  "Celtics",
		Sport:     SportBasketball,
		Now:       testNow,
		HomeStats: TeamStats{LastMatches: repeatGames(5, 120, 115, true, 3)},
		AwayStats: TeamStats{LastMatches: repeatGames(5, 118, 117, false, 3)},
	})
	cands := ev.spreadCandidates(235)
	require.Len(t, cands, 2)
	for _, c := range cands {
		assert.Equal(t, MarketTeamTotal, c.Market)
	}
	assert.Equal(t, "Lakers Over 114.5 Points", cands[0].Text)
	assert.Equal(t, "Celtics Over 110.5 Points", cands[1].Text)
	assert.Equal(t, 70, cands[0].Confidence)

	assert.InDelta(t, 4.0, ev.projection.Margin, 1e-9)
	assert.Equal(t, -4.5, ev.projection.SpreadLine)
	assert.InDelta(t, 119.5, ev.projection.HomeImplied, 1e-9)
	assert.InDelta(t, 115.5, ev.projection.AwayImplied, 1e-9)
	require.NotEmpty(t, ev.factors)
	assert.Equal(t, "Projected Margin +4.0", ev.factors[len(ev.factors)-1].Label)
}
