package predict

import (
	"sort"
	"strings"
)

// MaxH2HGames is the number of qualifying meetings kept
const MaxH2HGames = 5

// SummarizeHeadToHead reduces the raw meeting list to counts and combined-score statistics.
//
// The game being predicted (eventID), games that have not finished and games with a
// missing score are dropped. The most recent five are kept. Each meeting was recorded
// from its host's side, so the scores are swapped whenever today's away team hosted it.
func SummarizeHeadToHead(h2h *HeadToHead, eventID string) *HeadToHeadSummary {
	if h2h == nil {
		return nil
	}

	kept := make([]HistoricalGame, 0, len(h2h.Recent))
	for _, g := range h2h.Recent {
		if !qualifies(g, eventID) {
			continue
		}
		kept = append(kept, g)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date.After(kept[j].Date)
	})
	if len(kept) > MaxH2HGames {
		kept = kept[:MaxH2HGames]
	}

	ret := &HeadToHeadSummary{}
	if len(kept) == 0 {
		ret.HomeWins = max(h2h.HomeWins, 0)
		ret.AwayWins = max(h2h.AwayWins, 0)
		ret.Draws = max(h2h.Draws, 0)
		ret.Meetings = ret.HomeWins + ret.AwayWins + ret.Draws
		return ret
	}

	ret.RecentGames = make([]H2HGame, 0, len(kept))
	sum := 0
	for i, g := range kept {
		game := H2HGame{Date: g.Date}
		if g.HostedByHome {
			game.HomeScore, game.AwayScore = *g.HostScore, *g.VisitorScore
		} else {
			game.HomeScore, game.AwayScore = *g.VisitorScore, *g.HostScore
		}
		game.Combined = game.HomeScore + game.AwayScore

		switch {
		case game.HomeScore > game.AwayScore:
			ret.HomeWins++
		case game.HomeScore < game.AwayScore:
			ret.AwayWins++
		default:
			ret.Draws++
		}

		sum += game.Combined
		if i == 0 || game.Combined < ret.MinCombined {
			ret.MinCombined = game.Combined
		}
		if i == 0 || game.Combined > ret.MaxCombined {
			ret.MaxCombined = game.Combined
		}
		ret.RecentGames = append(ret.RecentGames, game)
	}
	ret.Meetings = len(ret.RecentGames)
	ret.AvgCombined = float64(sum) / float64(ret.Meetings)
	return ret
}

func qualifies(g HistoricalGame, eventID string) bool {
	if eventID != "" && g.ID == eventID {
		return false
	}
	switch strings.ToLower(trimmed(g.Status)) {
	case "pre", "in", "scheduled", "in_progress":
		return false
	}
	return g.HostScore != nil && g.VisitorScore != nil && *g.HostScore >= 0 && *g.VisitorScore >= 0
}
