package predict

// SelectCandidate returns the most confident candidate.
// Equal confidence goes to the lower MarketType, then to the earlier entry.
func SelectCandidate(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence ||
			(c.Confidence == best.Confidence && c.Market < best.Market) {
			best = c
		}
	}
	return best, true
}
