package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeHeadToHeadNil(t *testing.T) {
	assert.Nil(t, SummarizeHeadToHead(nil, "1"))
}

// The home side lost all three meetings, twice as host and once as visitor.
func TestSummarizeHeadToHeadRemapsHost(t *testing.T) {
	h2h := &HeadToHead{
		Recent: []HistoricalGame{
			meeting("a", daysAgo(30), 1, 2, true),
			meeting("b", daysAgo(60), 3, 0, false),
			meeting("c", daysAgo(90), 0, 1, true),
		},
	}

	s := SummarizeHeadToHead(h2h, "")
	require.NotNil(t, s)
	assert.Equal(t, 0, s.HomeWins)
	assert.Equal(t, 3, s.AwayWins)
	assert.Equal(t, 0, s.Draws)
	assert.Equal(t, 3, s.Meetings)

	require.Len(t, s.RecentGames, 3)
	assert.Equal(t, 1, s.RecentGames[0].HomeScore)
	assert.Equal(t, 2, s.RecentGames[0].AwayScore)
	assert.Equal(t, 0, s.RecentGames[1].HomeScore)
	assert.Equal(t, 3, s.RecentGames[1].AwayScore)
}

func TestSummarizeHeadToHeadFiltersAndCaps(t *testing.T) {
	h2h := &HeadToHead{
		HomeWins: 9,
		Recent: []HistoricalGame{
			meeting("target", daysAgo(0), 5, 5, true),
			{ID: "future", Date: daysAgo(-3), Status: "pre", HostScore: intp(0), VisitorScore: intp(0)},
			{ID: "live", Date: daysAgo(0), Status: "in", HostScore: intp(1), VisitorScore: intp(0)},
			{ID: "noscore", Date: daysAgo(5), Status: "post", HostScore: intp(2)},
			meeting("m7", daysAgo(70), 0, 0, true),
			meeting("m1", daysAgo(10), 2, 1, true),
			meeting("m3", daysAgo(30), 1, 1, false),
			meeting("m2", daysAgo(20), 0, 2, false),
			meeting("m6", daysAgo(60), 4, 0, true),
			meeting("m4", daysAgo(40), 3, 1, true),
			meeting("m5", daysAgo(50), 1, 0, false),
		},
	}

	s := SummarizeHeadToHead(h2h, "target")
	require.NotNil(t, s)
	require.Len(t, s.RecentGames, MaxH2HGames)

	// most recent first: m1 m2 m3 m4 m5
	assert.Equal(t, daysAgo(10), s.RecentGames[0].Date)
	assert.Equal(t, daysAgo(50), s.RecentGames[4].Date)

	// m1 home 2-1, m2 home 2-0 (visited), m3 draw, m4 home 3-1, m5 away 1-0 (away hosted)
	assert.Equal(t, 3, s.HomeWins)
	assert.Equal(t, 1, s.AwayWins)
	assert.Equal(t, 1, s.Draws)
	assert.Equal(t, 5, s.Meetings)

	// combined 3, 2, 2, 4, 1
	assert.InDelta(t, 2.4, s.AvgCombined, 1e-9)
	assert.Equal(t, 1, s.MinCombined)
	assert.Equal(t, 4, s.MaxCombined)
}

func TestSummarizeHeadToHeadFallsBackToCounts(t *testing.T) {
	h2h := &HeadToHead{
		HomeWins: 2,
		AwayWins: 1,
		Draws:    1,
		Recent: []HistoricalGame{
			{ID: "x", Status: "post"},
		},
	}

	s := SummarizeHeadToHead(h2h, "")
	require.NotNil(t, s)
	assert.Equal(t, 2, s.HomeWins)
	assert.Equal(t, 1, s.AwayWins)
	assert.Equal(t, 1, s.Draws)
	assert.Equal(t, 4, s.Meetings)
	assert.False(t, s.HasScores())
	assert.Zero(t, s.AvgCombined)
}
