package predict

import (
	"fmt"
	"math"
	"time"
)

// VenueRating is a team's average point differential at the venue it plays today.
// It needs SplitMinGames matching games, otherwise it falls back to the overall
// differential of the most recent SplitFallbackGames shifted by the venue proxy.
func VenueRating(matches []MatchResult, atHome bool, cfg *EngineConfig) float64 {
	var split []float64
	for _, m := range matches {
		if m.IsHome == atHome {
			split = append(split, float64(m.PointsFor-m.PointsAgainst))
		}
	}
	if len(split) >= cfg.SplitMinGames {
		return mean(split)
	}

	recent := matches
	if len(recent) > cfg.SplitFallbackGames {
		recent = recent[:cfg.SplitFallbackGames]
	}
	overall := make([]float64, 0, len(recent))
	for _, m := range recent {
		overall = append(overall, float64(m.PointsFor-m.PointsAgainst))
	}
	if atHome {
		return mean(overall) + cfg.VenueProxy
	}
	return mean(overall) - cfg.VenueProxy
}

// playedRecently reports whether last falls within the fatigue window before now
func playedRecently(last, now time.Time, cfg *EngineConfig) bool {
	if last.IsZero() || last.After(now) {
		return false
	}
	return now.Sub(last) <= time.Duration(cfg.FatigueDays*float64(24*time.Hour))
}

// projectMargin returns the expected home-minus-away margin
func (ev *evaluation) projectMargin() float64 {
	cfg := ev.cfg
	margin := VenueRating(ev.in.HomeStats.LastMatches, true, cfg) -
		VenueRating(ev.in.AwayStats.LastMatches, false, cfg)

	if playedRecently(ev.home.LastPlayed, ev.now, cfg) {
		margin -= cfg.FatigueAdjustment
		ev.addFactor("Fatigue (Back-to-Back)", SideHome, FactorError)
	}
	if playedRecently(ev.away.LastPlayed, ev.now, cfg) {
		margin += cfg.FatigueAdjustment
		ev.addFactor("Fatigue (Back-to-Back)", SideAway, FactorError)
	}

	if s := ev.h2h; s != nil && s.Meetings > 0 {
		switch {
		case pctOf(s.HomeWins, s.Meetings) > cfg.SpreadH2HPct:
			margin += cfg.SpreadH2HAdjustment
		case pctOf(s.AwayWins, s.Meetings) > cfg.SpreadH2HPct:
			margin -= cfg.SpreadH2HAdjustment
		}
	}
	return margin
}

// spreadCandidates derives the margin and both team totals from the projected total.
// The handicap line is recorded on the projection only and never offered as a tip.
func (ev *evaluation) spreadCandidates(total float64) []Candidate {
	cfg := ev.cfg
	margin := ev.projectMargin()

	ev.projection.Margin = margin
	ev.projection.SpreadLine = spreadLine(margin)
	ev.projection.HomeImplied = (total + margin) / 2
	ev.projection.AwayImplied = (total - margin) / 2
	ev.addFactor(fmt.Sprintf("Projected Margin %+.1f", margin), SideNeutral, FactorInfo)

	var ret []Candidate
	if c, ok := teamTotal(ev.in.HomeName, ev.projection.HomeImplied, ev.home, cfg); ok {
		ret = append(ret, c)
	}
	if c, ok := teamTotal(ev.in.AwayName, ev.projection.AwayImplied, ev.away, cfg); ok {
		ret = append(ret, c)
	}
	return ret
}

// spreadLine is the home handicap at the nearest half point, negative when home is favoured
func spreadLine(margin float64) float64 {
	return -(math.Floor(margin) + 0.5)
}

func teamTotal(team string, implied float64, profile *ScoringProfile, cfg *EngineConfig) (Candidate, bool) {
	if implied <= cfg.TeamTotalFloor {
		return Candidate{}, false
	}
	line := lineBelow(implied, cfg.TeamTotalBuffer)
	raw := cfg.TeamTotalBase
	if profile != nil && profile.AvgScored >= line+cfg.TeamTotalClearMargin {
		raw += cfg.TeamTotalBoost
	}
	return Candidate{
		Market:     MarketTeamTotal,
		Text:       fmt.Sprintf("%s Over %.1f Points", team, line),
		Confidence: toConfidence(math.Min(raw, cfg.TeamTotalCap)),
		Color:      cfg.Colors.Totals,
	}, true
}
