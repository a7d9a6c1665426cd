package predict

import (
	"fmt"
	"math"
)

// Scorecard is the additive strength score for each side
type Scorecard struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// Differential is home minus away
func (s Scorecard) Differential() float64 {
	return s.Home - s.Away
}

// scoreWinMargin runs every win-margin signal in factor order
func (ev *evaluation) scoreWinMargin() Scorecard {
	var sc Scorecard
	ev.scoreRecord(&sc)
	ev.scoreForm(&sc)
	ev.scoreHeadToHead(&sc)
	ev.scoreAverages(&sc)
	ev.scoreNews(&sc)
	return sc
}

// scoreRecord compares season win percentages. A missing record parses as 0%.
func (ev *evaluation) scoreRecord(sc *Scorecard) {
	h, a := ev.homeRecord, ev.awayRecord
	switch {
	case h.WinPercentage > a.WinPercentage+ev.cfg.RecordGapPct:
		sc.Home += ev.cfg.RecordWeight
		ev.addFactor("Better Season Record", SideHome, FactorSuccess)
	case a.WinPercentage > h.WinPercentage+ev.cfg.RecordGapPct:
		sc.Away += ev.cfg.RecordWeight
		ev.addFactor("Better Season Record", SideAway, FactorSuccess)
	}
}

func (ev *evaluation) scoreForm(sc *Scorecard) {
	hf, af := PairForms(ev.in.HomeStats, ev.in.AwayStats)
	hp, ap, ok := CompareForm(hf, af, ev.cfg)
	if !ok {
		return
	}
	switch {
	case hp > ap+ev.cfg.FormGapPoints:
		sc.Home += ev.cfg.FormWeight
		ev.addFactor("Better Recent Form", SideHome, FactorSuccess)
	case ap > hp+ev.cfg.FormGapPoints:
		sc.Away += ev.cfg.FormWeight
		ev.addFactor("Better Recent Form", SideAway, FactorSuccess)
	default:
		ev.addFactor("Similar Recent Form", SideNeutral, FactorInfo)
	}
}

func (ev *evaluation) scoreHeadToHead(sc *Scorecard) {
	s := ev.h2h
	if s == nil {
		return
	}

	if s.Meetings > 0 {
		switch {
		case pctOf(s.HomeWins, s.Meetings) > ev.cfg.H2HDominancePct:
			sc.Home += ev.cfg.H2HWeight
			ev.addFactor("Dominates H2H", SideHome, FactorSuccess)
		case pctOf(s.AwayWins, s.Meetings) > ev.cfg.H2HDominancePct:
			sc.Away += ev.cfg.H2HWeight
			ev.addFactor("Dominates H2H", SideAway, FactorSuccess)
		}
	}

	if !s.HasScores() {
		return
	}
	if ev.sport.IsBasketball() {
		if s.AvgCombined > ev.cfg.H2HHighPoints {
			ev.addFactor(fmt.Sprintf("H2H Avg > %g Points", ev.cfg.H2HHighPoints), SideNeutral, FactorInfo)
		}
		return
	}
	switch {
	case s.AvgCombined > ev.cfg.H2HHighGoals:
		ev.addFactor(fmt.Sprintf("H2H Avg > %g Goals", ev.cfg.H2HHighGoals), SideNeutral, FactorInfo)
	case s.AvgCombined < ev.cfg.H2HLowGoals:
		ev.addFactor(fmt.Sprintf("H2H Avg < %g Goals", ev.cfg.H2HLowGoals), SideNeutral, FactorInfo)
	}
}

func (ev *evaluation) scoreAverages(sc *Scorecard) {
	if !hasSignal(ev.home, ev.away) {
		return
	}
	h, a := ev.home.AvgScored, ev.away.AvgScored
	switch {
	case h > a+ev.cfg.ScoringGap:
		sc.Home += ev.cfg.ScoringWeight
		ev.addFactor(fmt.Sprintf("High Scoring (%.1f avg)", h), SideHome, FactorInfo)
	case a > h+ev.cfg.ScoringGap:
		sc.Away += ev.cfg.ScoringWeight
		ev.addFactor(fmt.Sprintf("High Scoring (%.1f avg)", a), SideAway, FactorInfo)
	}
}

// scoreNews penalises each side independently. No news data is neutral.
func (ev *evaluation) scoreNews(sc *Scorecard) {
	if ev.in.HomeStats.News != nil && DetectRosterNews(ev.in.HomeStats.News, ev.cfg.RosterNewsKeywords) {
		sc.Home += ev.cfg.NewsPenalty
		ev.addFactor("Roster Issues", SideHome, FactorError)
	}
	if ev.in.AwayStats.News != nil && DetectRosterNews(ev.in.AwayStats.News, ev.cfg.RosterNewsKeywords) {
		sc.Away += ev.cfg.NewsPenalty
		ev.addFactor("Roster Issues", SideAway, FactorError)
	}
}

// WinMarginCandidate maps a score differential onto the win / double chance / draw bands
func WinMarginCandidate(diff float64, homeName, awayName string, cfg *EngineConfig) Candidate {
	abs := math.Abs(diff)
	c := Candidate{Market: MarketWinMargin}
	switch {
	case diff > cfg.WinBand:
		c.Text = fmt.Sprintf("%s to Win", homeName)
		c.Confidence = toConfidence(math.Min(cfg.WinBase+abs/2, cfg.WinCap))
		c.Color = cfg.Colors.HomeWin
	case diff < -cfg.WinBand:
		c.Text = fmt.Sprintf("%s to Win", awayName)
		c.Confidence = toConfidence(math.Min(cfg.WinBase+abs/2, cfg.WinCap))
		c.Color = cfg.Colors.AwayWin
	case diff > cfg.DoubleChanceBand:
		c.Text = "1X (Home or Draw)"
		c.Confidence = toConfidence(math.Min(cfg.DoubleChanceBase+abs/2, cfg.DoubleChanceCap))
		c.Color = cfg.Colors.HomeDC
	case diff < -cfg.DoubleChanceBand:
		c.Text = "X2 (Away or Draw)"
		c.Confidence = toConfidence(math.Min(cfg.DoubleChanceBase+abs/2, cfg.DoubleChanceCap))
		c.Color = cfg.Colors.AwayDC
	default:
		c.Text = "Draw / Close Match"
		c.Confidence = toConfidence(cfg.DrawBase + abs)
		c.Color = cfg.Colors.Neutral
	}
	return c
}
