package espn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/richard-senior/apex/pkg/predict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arsenalTeam = `{"team":{"id":"1","displayName":"Arsenal","abbreviation":"ARS","standingSummary":"2nd in Premier League","record":{"items":[{"summary":"10-2-3"}]}}}`

const chelseaTeam = `{"team":{"id":"2","displayName":"Chelsea","record":{"items":[]}}}`

const arsenalSchedule = `{"events":[
 {"id":"e0","date":"2025-02-20T20:00Z","competitions":[{"status":{"type":{"state":"post","completed":true}},"competitors":[
   {"id":"1","homeAway":"home","team":{"id":"1","displayName":"Arsenal"},"score":{"value":0.0,"displayValue":"0"}},
   {"id":"5","homeAway":"away","team":{"id":"5","displayName":"Everton"},"score":{"value":1.0,"displayValue":"1"}}]}]},
 {"id":"e1","date":"2025-03-01T15:00Z","competitions":[{"status":{"type":{"state":"post","completed":true}},"competitors":[
   {"id":"1","homeAway":"home","team":{"id":"1","displayName":"Arsenal"},"score":{"value":2.0,"displayValue":"2"}},
   {"id":"3","homeAway":"away","team":{"id":"3","displayName":"Spurs"},"score":{"value":0.0,"displayValue":"0"}}]}]},
 {"id":"e2","date":"2025-03-08T15:00Z","competitions":[{"status":{"type":{"state":"post","completed":true}},"competitors":[
   {"id":"4","homeAway":"home","team":{"id":"4","displayName":"Villa"},"score":{"value":1.0,"displayValue":"1"}},
   {"id":"1","homeAway":"away","team":{"id":"1","displayName":"Arsenal"},"score":{"value":1.0,"displayValue":"1"}}]}]},
 {"id":"e3","date":"2025-03-15T20:00Z","competitions":[{"status":{"type":{"state":"pre"}},"competitors":[
   {"id":"1","homeAway":"home","team":{"id":"1"}},
   {"id":"2","homeAway":"away","team":{"id":"2"}}]}]}
]}`

const arsenalNews = `{"articles":[
 {"headline":"<b>Saka</b> ruled out with injury","description":"Hamstring &amp; knee","published":"2025-03-10T12:00:00Z","links":{"web":{"href":"https://www.espn.com/a"}}},
 {"headline":"Arteta praises squad","description":"","published":"2025-03-09T12:00:00Z","links":{"web":{"href":""}}}
]}`

const eventSummary = `{
 "header":{"id":"100","competitions":[{"date":"2025-03-15T20:00Z","status":{"type":{"state":"pre","shortDetail":"3/15 - 8:00 PM"}},"competitors":[
   {"id":"1","homeAway":"home","team":{"id":"1","displayName":"Arsenal"}},
   {"id":"2","homeAway":"away","team":{"id":"2","displayName":"Chelsea"}}]}]},
 "headToHeadGames":[
   {"team":{"id":"1"},"events":[
     {"id":"90","gameDate":"2024-10-01T19:00Z","homeTeamId":"2","awayTeamId":"1","homeTeamScore":"1","awayTeamScore":"3"},
     {"id":"91","gameDate":"2024-04-01T19:00Z","homeTeamId":"1","awayTeamId":"2","homeTeamScore":"2","awayTeamScore":"2"}]},
   {"team":{"id":"2"},"events":[
     {"id":"90","gameDate":"2024-10-01T19:00Z","homeTeamId":"2","awayTeamId":"1","homeTeamScore":"1","awayTeamScore":"3"}]}
 ]}`

const scoreboard = `{"events":[
 {"id":"100","date":"2025-03-15T20:00Z","status":{"type":{"state":"pre","shortDetail":"3/15 - 8:00 PM"}},"competitions":[{"competitors":[
   {"id":"1","homeAway":"home","form":"WDL","score":"0","team":{"id":"1","displayName":"Arsenal"},"records":[{"summary":"10-2-3"}]},
   {"id":"2","homeAway":"away","score":"0","team":{"id":"2","displayName":"Chelsea"},"records":[{"summary":"5-4-6"}]}]}]},
 {"id":"101","date":"2025-03-15T17:30Z","status":{"type":{"state":"pre"}},"competitions":[{"competitors":[
   {"id":"7","homeAway":"home","team":{"id":"7","displayName":"Leeds"}}]}]}
]}`

func newESPNServer(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	routes := map[string]string{
		"/soccer/eng.1/teams/1":          arsenalTeam,
		"/soccer/eng.1/teams/2":          chelseaTeam,
		"/soccer/eng.1/teams/1/schedule": arsenalSchedule,
		"/soccer/eng.1/teams/2/schedule": `{"events":[]}`,
		"/soccer/eng.1/summary":          eventSummary,
		"/soccer/eng.1/scoreboard":       scoreboard,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt64(hits, 1)
		}
		if r.URL.Path == "/soccer/eng.1/news" {
			switch r.URL.Query().Get("team") {
			case "1":
				_, _ = w.Write([]byte(arsenalNews))
			default:
				http.Error(w, "boom", http.StatusInternalServerError)
			}
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, cache Cache) *Client {
	c := NewClient(srv.URL+"/", cache)
	c.HTTP = srv.Client()
	return c
}

func TestFetchTeam(t *testing.T) {
	srv := newESPNServer(t, nil)
	c := newTestClient(srv, nil)

	team, err := c.FetchTeam(context.Background(), "eng.1", "1")
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", team.Name)
	assert.Equal(t, "10-2-3", team.Record)
	assert.Equal(t, "2nd in Premier League", team.StandingSummary)

	require.Len(t, team.LastMatches, 3)
	assert.Equal(t, "D", team.LastMatches[0].Result)
	assert.False(t, team.LastMatches[0].IsHome)
	assert.Equal(t, "W", team.LastMatches[1].Result)
	assert.Equal(t, 2, team.LastMatches[1].PointsFor)
	assert.Equal(t, "3", team.LastMatches[1].OpponentID)
	assert.Equal(t, "L", team.LastMatches[2].Result)
	assert.Equal(t, "D1", team.Form)

	require.Len(t, team.News, 2)
	assert.Equal(t, "Saka ruled out with injury", team.News[0].Headline)
	assert.Equal(t, "Hamstring & knee", team.News[0].Description)
	assert.Equal(t, 2025, team.News[0].Published.Year())
}

func TestFetchTeamNewsFailureLeavesNilNews(t *testing.T) {
	srv := newESPNServer(t, nil)
	c := newTestClient(srv, nil)

	team, err := c.FetchTeam(context.Background(), "eng.1", "2")
	require.NoError(t, err)
	assert.Nil(t, team.News)
	assert.Empty(t, team.LastMatches)
	assert.Empty(t, team.Form)
}

func TestFetchTeamMissing(t *testing.T) {
	srv := newESPNServer(t, nil)
	c := newTestClient(srv, nil)
	_, err := c.FetchTeam(context.Background(), "eng.1", "99")
	assert.Error(t, err)
}

func TestUnknownLeague(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil)
	_, err := c.FetchTeam(context.Background(), "moon.1", "1")
	assert.True(t, errors.Is(err, ErrUnknownLeague))
}

func TestFetchHeadToHead(t *testing.T) {
	srv := newESPNServer(t, nil)
	c := newTestClient(srv, nil)

	h2h, err := c.FetchHeadToHead(context.Background(), "eng.1", "100", "1")
	require.NoError(t, err)
	require.NotNil(t, h2h)
	assert.Equal(t, 1, h2h.HomeWins)
	assert.Equal(t, 0, h2h.AwayWins)
	assert.Equal(t, 1, h2h.Draws)
	require.Len(t, h2h.Recent, 2)
	assert.False(t, h2h.Recent[0].HostedByHome)
	assert.Equal(t, 1, *h2h.Recent[0].HostScore)
	assert.Equal(t, 3, *h2h.Recent[0].VisitorScore)
	assert.True(t, h2h.Recent[1].HostedByHome)

	// seen from the other side the win flips
	h2h, err = c.FetchHeadToHead(context.Background(), "eng.1", "100", "2")
	require.NoError(t, err)
	assert.Equal(t, 0, h2h.HomeWins)
	assert.Equal(t, 1, h2h.AwayWins)
}

func TestFetchScoreboard(t *testing.T) {
	srv := newESPNServer(t, nil)
	c := newTestClient(srv, nil)

	fx, err := c.FetchScoreboard(context.Background(), "eng.1", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, fx, 1)
	assert.Equal(t, "100", fx[0].EventID)
	assert.Equal(t, "Arsenal", fx[0].Home.Name)
	assert.Equal(t, "5-4-6", fx[0].Away.Record)
	assert.Equal(t, "WDL", fx[0].Home.Form)
	require.NotNil(t, fx[0].Home.Score)
	assert.Equal(t, 0, *fx[0].Home.Score)
	assert.Equal(t, "pre", fx[0].State)
	assert.Equal(t, predict.SportSoccer, fx[0].League.Sport)
}

func TestAnalyzeEventBuildsEngineInput(t *testing.T) {
	srv := newESPNServer(t, nil)
	c := newTestClient(srv, nil)

	in, err := c.AnalyzeEvent(context.Background(), "eng.1", "100")
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", in.HomeName)
	assert.Equal(t, "Chelsea", in.AwayName)
	assert.Equal(t, predict.SportSoccer, in.Sport)
	assert.Equal(t, "100", in.EventID)
	assert.Equal(t, "10-2-3", in.HomeStats.Record)
	assert.Len(t, in.HomeStats.LastMatches, 3)
	assert.Nil(t, in.AwayStats.News)
	require.NotNil(t, in.H2H)
	assert.Equal(t, 1, in.H2H.HomeWins)

	res, err := predict.Analyze(in)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Confidence, 0)
	assert.LessOrEqual(t, res.Confidence, 100)
}

func TestClientUsesCache(t *testing.T) {
	var hits int64
	srv := newESPNServer(t, &hits)
	cache := NewMemoryCache()
	c := newTestClient(srv, cache)

	_, err := c.FetchTeam(context.Background(), "eng.1", "1")
	require.NoError(t, err)
	first := atomic.LoadInt64(&hits)
	assert.Equal(t, int64(3), first)
	assert.Equal(t, 3, cache.Len())

	_, err = c.FetchTeam(context.Background(), "eng.1", "1")
	require.NoError(t, err)
	assert.Equal(t, first, atomic.LoadInt64(&hits))
}
