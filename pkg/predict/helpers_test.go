package predict

import "time"

var testNow = time.Date(2025, 3, 15, 20, 0, 0, 0, time.UTC)

func intp(n int) *int {
	return &n
}

func daysAgo(d int) time.Time {
	return testNow.Add(-time.Duration(d) * 24 * time.Hour)
}

// repeatGames builds n games with the same score, one every two days starting `start` days ago
func repeatGames(n, pf, pa int, isHome bool, start int) []MatchResult {
	ret := make([]MatchResult, 0, n)
	for i := 0; i < n; i++ {
		ret = append(ret, MatchResult{
			Date:          daysAgo(start + i*2),
			PointsFor:     pf,
			PointsAgainst: pa,
			IsHome:        isHome,
		})
	}
	return ret
}

func meeting(id string, date time.Time, host, visitor int, hostedByHome bool) HistoricalGame {
	return HistoricalGame{
		ID:           id,
		Date:         date,
		Status:       "post",
		HostScore:    intp(host),
		VisitorScore: intp(visitor),
		HostedByHome: hostedByHome,
	}
}
