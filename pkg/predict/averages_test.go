package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScoringProfile(t *testing.T) {
	assert.Nil(t, NewScoringProfile(nil))

	p := NewScoringProfile([]MatchResult{
		{Date: daysAgo(7), PointsFor: 1, PointsAgainst: 1},
		{Date: daysAgo(3), PointsFor: 3, PointsAgainst: 0},
		{Date: daysAgo(10), PointsFor: 2, PointsAgainst: 2},
	})
	require.NotNil(t, p)
	assert.InDelta(t, 2.0, p.AvgScored, 1e-9)
	assert.InDelta(t, 1.0, p.AvgConceded, 1e-9)
	assert.Equal(t, 3, p.LastGameTotal)
	assert.Equal(t, 3, p.LastScored)
	assert.Equal(t, daysAgo(3), p.LastPlayed)
	assert.Equal(t, 3, p.Games)
}

func TestNewScoringProfileWithoutDatesUsesFirstEntry(t *testing.T) {
	p := NewScoringProfile([]MatchResult{
		{PointsFor: 110, PointsAgainst: 100},
		{PointsFor: 90, PointsAgainst: 95},
	})
	require.NotNil(t, p)
	assert.Equal(t, 210, p.LastGameTotal)
	assert.Equal(t, 110, p.LastScored)
	assert.True(t, p.LastPlayed.IsZero())
}

func TestHasSignal(t *testing.T) {
	some := &ScoringProfile{AvgScored: 1.2}
	zero := &ScoringProfile{}
	assert.True(t, hasSignal(some, some))
	assert.False(t, hasSignal(some, zero))
	assert.False(t, hasSignal(nil, some))
}
