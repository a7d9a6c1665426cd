package predict

// NewScoringProfile averages points for and against over the supplied matches.
// The latest dated game supplies the last-game fields; without dates the first entry is used.
func NewScoringProfile(matches []MatchResult) *ScoringProfile {
	if len(matches) == 0 {
		return nil
	}

	var scored, conceded int
	latest := 0
	for i, m := range matches {
		scored += m.PointsFor
		conceded += m.PointsAgainst
		if m.Date.After(matches[latest].Date) {
			latest = i
		}
	}

	n := float64(len(matches))
	last := matches[latest]
	return &ScoringProfile{
		AvgScored:     float64(scored) / n,
		AvgConceded:   float64(conceded) / n,
		LastGameTotal: last.PointsFor + last.PointsAgainst,
		LastScored:    last.PointsFor,
		LastPlayed:    last.Date,
		Games:         len(matches),
	}
}

// hasSignal reports whether both profiles can drive a projection.
// Zero averages mean "no data" rather than an expected shut-out.
func hasSignal(home, away *ScoringProfile) bool {
	return home != nil && away != nil && home.AvgScored > 0 && away.AvgScored > 0
}
