package espn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/richard-senior/apex/internal/logger"
	"github.com/richard-senior/apex/pkg/predict"
	"github.com/richard-senior/apex/pkg/transport"
)

// BaseURL is the public ESPN site API root
const BaseURL = "https://site.api.espn.com/apis/site/v2/sports"

// DefaultNewsLimit is how many articles are requested per team
const DefaultNewsLimit = 5

// ErrUnknownLeague is returned for league slugs missing from Leagues
var ErrUnknownLeague = errors.New("unknown league")

// Client assembles engine input from the ESPN site API
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	Cache     Cache
	TTL       time.Duration
	NewsLimit int
}

// NewClient creates a client. An empty baseURL means BaseURL; a nil cache disables caching.
func NewClient(baseURL string, cache Cache) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Cache:     cache,
		TTL:       DefaultCacheTTL,
		NewsLimit: DefaultNewsLimit,
	}
}

func (c *Client) endpoint(league League, path string, query url.Values) string {
	u := c.BaseURL + "/" + league.Path() + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get fetches u through the cache and decodes the body into v
func (c *Client) get(ctx context.Context, u string, v any) error {
	var body []byte
	if c.Cache != nil {
		if b, ok := c.Cache.Get(ctx, u); ok {
			logger.Debug("ESPN cache hit", u)
			body = b
		}
	}
	if body == nil {
		b, err := transport.GetJSON(ctx, c.HTTP, u)
		if err != nil {
			return err
		}
		body = b
		if c.Cache != nil {
			c.Cache.Set(ctx, u, body, c.TTL)
		}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", u, err)
	}
	return nil
}

func resolveLeague(slug string) (League, error) {
	l, ok := FindLeague(slug)
	if !ok {
		return League{}, fmt.Errorf("%w: %q", ErrUnknownLeague, slug)
	}
	return l, nil
}

// FetchScoreboard lists a league's fixtures. A zero date means ESPN's current window.
func (c *Client) FetchScoreboard(ctx context.Context, slug string, date time.Time) ([]Fixture, error) {
	league, err := resolveLeague(slug)
	if err != nil {
		return nil, err
	}
	var q url.Values
	if !date.IsZero() {
		q = url.Values{"dates": {date.Format("20060102")}}
	}
	var resp scoreboardResponse
	if err := c.get(ctx, c.endpoint(league, "scoreboard", q), &resp); err != nil {
		return nil, err
	}
	return fixtures(resp, league), nil
}

// FetchFixture reads one event's sides from its summary
func (c *Client) FetchFixture(ctx context.Context, slug, eventID string) (*Fixture, error) {
	league, err := resolveLeague(slug)
	if err != nil {
		return nil, err
	}
	resp, err := c.summary(ctx, league, eventID)
	if err != nil {
		return nil, err
	}
	if len(resp.Header.Competitions) == 0 {
		return nil, fmt.Errorf("event %s has no competition", eventID)
	}
	comp := resp.Header.Competitions[0]
	f, ok := fixtureFrom(eventID, comp.Date, comp.Status, comp, league)
	if !ok {
		return nil, fmt.Errorf("event %s is missing a home or away side", eventID)
	}
	return &f, nil
}

func (c *Client) summary(ctx context.Context, league League, eventID string) (summaryResponse, error) {
	var resp summaryResponse
	err := c.get(ctx, c.endpoint(league, "summary", url.Values{"event": {eventID}}), &resp)
	return resp, err
}

// FetchTeam loads a team's details, recent results and news.
// News failures leave News nil rather than failing the whole team.
func (c *Client) FetchTeam(ctx context.Context, slug, teamID string) (*TeamDetails, error) {
	league, err := resolveLeague(slug)
	if err != nil {
		return nil, err
	}

	var (
		wg                   sync.WaitGroup
		team                 teamResponse
		schedule             scheduleResponse
		teamErr, scheduleErr error
		news                 []predict.NewsItem
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		teamErr = c.get(ctx, c.endpoint(league, "teams/"+teamID, nil), &team)
	}()
	go func() {
		defer wg.Done()
		scheduleErr = c.get(ctx, c.endpoint(league, "teams/"+teamID+"/schedule", nil), &schedule)
	}()
	go func() {
		defer wg.Done()
		items, err := c.fetchNews(ctx, league, teamID)
		if err != nil {
			logger.Warn("Failed to fetch news for team", teamID, err)
			return
		}
		news = items
	}()
	wg.Wait()

	if teamErr != nil {
		return nil, fmt.Errorf("failed to fetch team %s: %w", teamID, teamErr)
	}
	if scheduleErr != nil {
		return nil, fmt.Errorf("failed to fetch schedule for team %s: %w", teamID, scheduleErr)
	}

	details := &TeamDetails{
		ID:              team.Team.ID,
		Name:            team.Team.DisplayName,
		Abbreviation:    team.Team.Abbreviation,
		StandingSummary: team.Team.StandingSummary,
		LastMatches:     recentResults(schedule.Events, teamID, RecentGames),
		News:            news,
	}
	if details.ID == "" {
		details.ID = teamID
	}
	if items := team.Team.Record.Items; len(items) > 0 {
		details.Record = items[0].Summary
	}
	details.Form = streakToken(details.LastMatches)
	return details, nil
}

// FetchNews returns the latest articles for a team
func (c *Client) FetchNews(ctx context.Context, slug, teamID string) ([]predict.NewsItem, error) {
	league, err := resolveLeague(slug)
	if err != nil {
		return nil, err
	}
	return c.fetchNews(ctx, league, teamID)
}

func (c *Client) fetchNews(ctx context.Context, league League, teamID string) ([]predict.NewsItem, error) {
	limit := c.NewsLimit
	if limit <= 0 {
		limit = DefaultNewsLimit
	}
	q := url.Values{"team": {teamID}, "limit": {fmt.Sprint(limit)}}
	var resp newsResponse
	if err := c.get(ctx, c.endpoint(league, "news", q), &resp); err != nil {
		return nil, err
	}
	return newsItems(resp, limit), nil
}

// FetchHeadToHead returns past meetings from the event summary, oriented to homeTeamID.
// A nil result means ESPN listed no meetings.
func (c *Client) FetchHeadToHead(ctx context.Context, slug, eventID, homeTeamID string) (*predict.HeadToHead, error) {
	league, err := resolveLeague(slug)
	if err != nil {
		return nil, err
	}
	resp, err := c.summary(ctx, league, eventID)
	if err != nil {
		return nil, err
	}
	return headToHead(resp, homeTeamID), nil
}

// BuildMatchInput gathers both teams and their meetings into engine input.
// Team failures are errors; a missing head-to-head only drops that signal.
func (c *Client) BuildMatchInput(ctx context.Context, f Fixture) (predict.MatchInput, error) {
	in := predict.MatchInput{
		HomeName: f.Home.Name,
		AwayName: f.Away.Name,
		Sport:    f.League.Sport,
		EventID:  f.EventID,
	}

	var (
		wg               sync.WaitGroup
		home, away       *TeamDetails
		homeErr, awayErr error
		h2h              *predict.HeadToHead
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		home, homeErr = c.FetchTeam(ctx, f.League.Slug, f.Home.ID)
	}()
	go func() {
		defer wg.Done()
		away, awayErr = c.FetchTeam(ctx, f.League.Slug, f.Away.ID)
	}()
	go func() {
		defer wg.Done()
		if f.EventID == "" {
			return
		}
		var err error
		h2h, err = c.FetchHeadToHead(ctx, f.League.Slug, f.EventID, f.Home.ID)
		if err != nil {
			logger.Warn("Failed to fetch head to head for event", f.EventID, err)
			h2h = nil
		}
	}()
	wg.Wait()

	if homeErr != nil {
		return in, homeErr
	}
	if awayErr != nil {
		return in, awayErr
	}

	in.HomeStats = home.Stats()
	in.AwayStats = away.Stats()
	// scoreboard records fill gaps left by the team endpoint
	if in.HomeStats.Record == "" {
		in.HomeStats.Record = f.Home.Record
	}
	if in.AwayStats.Record == "" {
		in.AwayStats.Record = f.Away.Record
	}
	if in.HomeName == "" {
		in.HomeName = home.Name
	}
	if in.AwayName == "" {
		in.AwayName = away.Name
	}
	in.H2H = h2h
	return in, nil
}

// AnalyzeEvent resolves an event and assembles its engine input
func (c *Client) AnalyzeEvent(ctx context.Context, slug, eventID string) (predict.MatchInput, error) {
	f, err := c.FetchFixture(ctx, slug, eventID)
	if err != nil {
		return predict.MatchInput{}, err
	}
	return c.BuildMatchInput(ctx, *f)
}
