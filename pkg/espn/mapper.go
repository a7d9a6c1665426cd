package espn

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/richard-senior/apex/pkg/predict"
)

// RecentGames is how many completed games are kept per team
const RecentGames = 5

// Fixture identifies a match and its two sides
type Fixture struct {
	EventID string      `json:"eventId"`
	League  League      `json:"league"`
	Date    time.Time   `json:"date"`
	State   string      `json:"state"` // pre, in, post
	Detail  string      `json:"detail,omitempty"`
	Home    FixtureTeam `json:"home"`
	Away    FixtureTeam `json:"away"`
}

// FixtureTeam is one side of a fixture as listed on a scoreboard
type FixtureTeam struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Record string `json:"record,omitempty"`
	Form   string `json:"form,omitempty"`
	Score  *int   `json:"score,omitempty"`
}

// TeamDetails is the assembled per-team context the engine consumes
type TeamDetails struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Abbreviation    string                `json:"abbreviation,omitempty"`
	StandingSummary string                `json:"standingSummary,omitempty"`
	Record          string                `json:"record,omitempty"`
	LastMatches     []predict.MatchResult `json:"lastMatches"`
	Form            string                `json:"form,omitempty"`
	News            []predict.NewsItem    `json:"news"`
}

// Stats converts the details into engine input
func (d *TeamDetails) Stats() predict.TeamStats {
	return predict.TeamStats{
		Record:      d.Record,
		LastMatches: d.LastMatches,
		Form:        d.Form,
		News:        d.News,
	}
}

func isCompleted(e event) bool {
	if len(e.Competitions) > 0 {
		st := e.Competitions[0].Status.Type
		if st.State != "" || st.Completed {
			return st.State == "post" || st.Completed
		}
	}
	return e.Status.Type.State == "post" || e.Status.Type.Completed
}

// recentResults returns the team's last completed games, most recent first
func recentResults(events []event, teamID string, limit int) []predict.MatchResult {
	var results []predict.MatchResult
	for _, e := range events {
		if !isCompleted(e) || len(e.Competitions) == 0 {
			continue
		}
		var us, them *competitor
		for i := range e.Competitions[0].Competitors {
			c := &e.Competitions[0].Competitors[i]
			if c.teamID() == teamID {
				us = c
			} else {
				them = c
			}
		}
		if us == nil || them == nil || us.Score.Value == nil || them.Score.Value == nil {
			continue
		}
		pf, pa := *us.Score.Value, *them.Score.Value
		results = append(results, predict.MatchResult{
			Date:          parseDate(e.Date),
			Result:        outcome(pf, pa),
			PointsFor:     pf,
			PointsAgainst: pa,
			IsHome:        us.HomeAway == "home",
			OpponentID:    them.teamID(),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Date.After(results[j].Date)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func outcome(pf, pa int) string {
	switch {
	case pf > pa:
		return "W"
	case pf < pa:
		return "L"
	default:
		return "D"
	}
}

// streakToken renders the leading run of results as "W3", "L1" and so on
func streakToken(matches []predict.MatchResult) string {
	if len(matches) == 0 {
		return ""
	}
	first := matches[0].Outcome()
	n := 0
	for _, m := range matches {
		if m.Outcome() != first {
			break
		}
		n++
	}
	return first + strconv.Itoa(n)
}

func newsItems(resp newsResponse, limit int) []predict.NewsItem {
	items := make([]predict.NewsItem, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if limit > 0 && len(items) == limit {
			break
		}
		items = append(items, predict.NewsItem{
			Headline:    CleanText(a.Headline),
			Description: CleanText(a.Description),
			Link:        a.Links.Web.Href,
			Published:   parseDate(a.Published),
		})
	}
	return items
}

// headToHead flattens the summary's past meetings and re-expresses them relative to homeTeamID
func headToHead(resp summaryResponse, homeTeamID string) *predict.HeadToHead {
	var flat []h2hEvent
	for _, entry := range resp.HeadToHeadGames {
		if len(entry.Events) > 0 {
			flat = append(flat, entry.Events...)
		} else if entry.ID != "" {
			flat = append(flat, entry.h2hEvent)
		}
	}
	if len(flat) == 0 {
		return nil
	}

	h2h := &predict.HeadToHead{}
	seen := make(map[string]bool)
	for _, g := range flat {
		if g.ID != "" {
			if seen[g.ID] {
				continue
			}
			seen[g.ID] = true
		}
		host, visitor := parseScore(g.HomeTeamScore), parseScore(g.AwayTeamScore)
		if (host == nil || visitor == nil) && strings.Contains(g.Score, "-") {
			parts := strings.SplitN(g.Score, "-", 2)
			host, visitor = parseScore(parts[0]), parseScore(parts[1])
		}
		hosted := g.HomeTeamID == homeTeamID
		h2h.Recent = append(h2h.Recent, predict.HistoricalGame{
			ID:           g.ID,
			Date:         parseDate(g.GameDate),
			Status:       "post",
			HostScore:    host,
			VisitorScore: visitor,
			HostedByHome: hosted,
		})
		if host == nil || visitor == nil {
			continue
		}
		homeScore, awayScore := *host, *visitor
		if !hosted {
			homeScore, awayScore = awayScore, homeScore
		}
		switch {
		case homeScore > awayScore:
			h2h.HomeWins++
		case homeScore < awayScore:
			h2h.AwayWins++
		default:
			h2h.Draws++
		}
	}
	return h2h
}

func fixtureTeam(c competitor) FixtureTeam {
	t := FixtureTeam{
		ID:    c.teamID(),
		Name:  c.Team.DisplayName,
		Form:  c.Form,
		Score: c.Score.Value,
	}
	if len(c.Records) > 0 {
		t.Record = c.Records[0].Summary
	}
	return t
}

// fixtureFrom builds a fixture from a scoreboard event or summary header. ok is false without both sides.
func fixtureFrom(id, date string, st status, comp competition, league League) (Fixture, bool) {
	f := Fixture{
		EventID: id,
		League:  league,
		Date:    parseDate(date),
		State:   st.Type.State,
		Detail:  st.Type.ShortDetail,
	}
	var home, away bool
	for _, c := range comp.Competitors {
		switch c.HomeAway {
		case "home":
			f.Home, home = fixtureTeam(c), true
		case "away":
			f.Away, away = fixtureTeam(c), true
		}
	}
	return f, home && away
}

func fixtures(resp scoreboardResponse, league League) []Fixture {
	var out []Fixture
	for _, e := range resp.Events {
		if len(e.Competitions) == 0 {
			continue
		}
		if f, ok := fixtureFrom(e.ID, e.Date, e.Status, e.Competitions[0], league); ok {
			out = append(out, f)
		}
	}
	return out
}
