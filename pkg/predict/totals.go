package predict

import (
	"fmt"
	"math"
)

// totalsCandidate projects the combined score and returns the best Over/Under tip.
// Both sides need a scoring profile; without one no total is projected.
func (ev *evaluation) totalsCandidate() (Candidate, bool) {
	if !hasSignal(ev.home, ev.away) {
		return Candidate{}, false
	}
	if ev.sport.IsBasketball() {
		return ev.pointsCandidate()
	}
	return ev.goalsCandidate()
}

// matchupProjection averages each side's scoring with the opponent's conceding
func matchupProjection(home, away *ScoringProfile) float64 {
	return (home.AvgScored+away.AvgConceded)/2 + (away.AvgScored+home.AvgConceded)/2
}

// ProjectGoals blends the matchup projection with the H2H average when meetings exist
func ProjectGoals(home, away *ScoringProfile, h2h *HeadToHeadSummary, cfg *EngineConfig) float64 {
	p := matchupProjection(home, away)
	if h2h.HasScores() {
		p = p*cfg.GoalRecentWeight + h2h.AvgCombined*(1-cfg.GoalRecentWeight)
	}
	return p
}

func (ev *evaluation) goalsCandidate() (Candidate, bool) {
	p := ProjectGoals(ev.home, ev.away, ev.h2h, ev.cfg)
	ev.projection.Total = p

	best, found := BestGoalLine(p, ev.cfg)
	if !found {
		return Candidate{}, false
	}

	switch {
	case p > ev.cfg.HighGoalExpectancy:
		ev.addFactor(fmt.Sprintf("High Goal Expectancy (%.1f)", p), SideNeutral, FactorSuccess)
	case p < ev.cfg.LowGoalExpectancy:
		ev.addFactor(fmt.Sprintf("Low Goal Expectancy (%.1f)", p), SideNeutral, FactorWarning)
	}
	return best, true
}

// BestGoalLine evaluates every configured threshold and keeps the most confident hit.
// The first threshold wins a tie.
func BestGoalLine(projected float64, cfg *EngineConfig) (Candidate, bool) {
	var best Candidate
	bestRaw := 0.0
	found := false
	for _, t := range cfg.GoalThresholds {
		for _, over := range []bool{true, false} {
			text, raw, ok := goalLine(projected, t, over, cfg)
			if !ok || raw <= bestRaw {
				continue
			}
			bestRaw = raw
			found = true
			best = Candidate{
				Market:     MarketTotals,
				Text:       text,
				Confidence: toConfidence(raw),
				Color:      cfg.Colors.Totals,
			}
		}
	}
	return best, found
}

// goalLine checks one side of one threshold. Clearance must be strictly greater than the margin.
func goalLine(projected, threshold float64, over bool, cfg *EngineConfig) (string, float64, bool) {
	if over {
		if !(projected > threshold+cfg.GoalMargin) {
			return "", 0, false
		}
		return fmt.Sprintf("Over %.1f Goals", threshold), math.Min(cfg.GoalBase+(projected-threshold)*cfg.GoalSlope, cfg.GoalCap), true
	}
	if !(projected < threshold-cfg.GoalMargin) {
		return "", 0, false
	}
	return fmt.Sprintf("Under %.1f Goals", threshold), math.Min(cfg.GoalBase+(threshold-projected)*cfg.GoalSlope, cfg.GoalCap), true
}

// ProjectPoints blends the matchup projection with the H2H average, then with the
// mean of both teams' most recent game totals.
func ProjectPoints(home, away *ScoringProfile, h2h *HeadToHeadSummary, cfg *EngineConfig) float64 {
	p := matchupProjection(home, away)
	if h2h.HasScores() {
		p = p*cfg.PointsAverageWeight + h2h.AvgCombined*(1-cfg.PointsAverageWeight)
	}
	if home.LastGameTotal > 0 && away.LastGameTotal > 0 {
		trend := float64(home.LastGameTotal+away.LastGameTotal) / 2
		p = p*(1-cfg.PointsTrendWeight) + trend*cfg.PointsTrendWeight
	}
	return p
}

func (ev *evaluation) pointsCandidate() (Candidate, bool) {
	cfg := ev.cfg
	p := ProjectPoints(ev.home, ev.away, ev.h2h, cfg)
	ev.projection.Total = p

	var over bool
	var raw float64
	switch {
	case p > cfg.PointsOverBand:
		over, raw = true, cfg.PointsBandBase
	case p < cfg.PointsUnderBand:
		over, raw = false, cfg.PointsBandBase
	default:
		// inside the bands the most recent games decide the lean
		half := p / 2
		over = float64(ev.home.LastScored) > half && float64(ev.away.LastScored) > half
		raw = cfg.PointsLeanBase
	}

	var line float64
	var text string
	if over {
		line = lineBelow(p, cfg.PointsLineBuffer)
		text = fmt.Sprintf("Over %.1f Points", line)
	} else {
		line = lineAbove(p, cfg.PointsLineBuffer)
		text = fmt.Sprintf("Under %.1f Points", line)
	}

	if s := ev.h2h; s.HasScores() {
		if over && float64(s.MinCombined) > line {
			raw += cfg.PointsH2HBoost
		}
		if !over && float64(s.MaxCombined) < line {
			raw += cfg.PointsH2HBoost
		}
		if float64(s.MaxCombined-s.MinCombined) <= cfg.PointsH2HTightRange {
			raw += cfg.PointsH2HBoost
		}
	}

	return Candidate{
		Market:     MarketTotals,
		Text:       text,
		Confidence: toConfidence(math.Min(raw, cfg.PointsCap)),
		Color:      cfg.Colors.Totals,
	}, true
}
