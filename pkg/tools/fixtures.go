package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/richard-senior/apex/internal/logger"
	"github.com/richard-senior/apex/pkg/espn"
	"github.com/richard-senior/apex/pkg/predict"
	"github.com/richard-senior/apex/pkg/protocol"
)

func leagueSlugs() []string {
	out := make([]string, 0, len(espn.Leagues))
	for _, l := range espn.Leagues {
		out = append(out, l.Slug)
	}
	return out
}

func (t *Toolbox) requireESPN() error {
	if t.ESPN == nil {
		return fmt.Errorf("ESPN client is not configured")
	}
	return nil
}

func ListFixturesTool() protocol.Tool {
	return protocol.Tool{
		Name: "list_fixtures",
		Description: `
		Lists the fixtures ESPN has for a league on a given day.
		The event ids returned can be passed to analyze_fixture.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"league": {Type: "string", Description: "ESPN league slug, for example eng.1 or nba", Enum: leagueSlugs()},
				"date":   {Type: "string", Description: "Day to list in YYYY-MM-DD form; defaults to ESPN's current window"},
			},
			Required: []string{"league"},
		},
	}
}

// HandleListFixtures returns a league's scoreboard
func (t *Toolbox) HandleListFixtures(params any) (any, error) {
	if err := t.requireESPN(); err != nil {
		return nil, err
	}
	m, err := argsMap(params)
	if err != nil {
		return nil, err
	}
	league, err := requiredString(m, "league")
	if err != nil {
		return nil, err
	}
	var day time.Time
	if s := stringArg(m, "date"); s != "" {
		if day, err = time.Parse("2006-01-02", s); err != nil {
			return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
	}

	ctx, cancel := t.callContext()
	defer cancel()
	fixtures, err := t.ESPN.FetchScoreboard(ctx, league, day)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"league":   league,
		"count":    len(fixtures),
		"fixtures": fixtures,
	}, nil
}

func AnalyzeFixtureTool() protocol.Tool {
	return protocol.Tool{
		Name: "analyze_fixture",
		Description: `
		Fetches both teams' records, recent results, news and head-to-head history from ESPN
		for the given event and predicts its outcome.
		The prediction is recorded in the history unless store is false.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"league":  {Type: "string", Description: "ESPN league slug, for example eng.1 or nba", Enum: leagueSlugs()},
				"eventId": {Type: "string", Description: "ESPN event id"},
				"store":   {Type: "boolean", Description: "Record the prediction in the history", Default: true},
			},
			Required: []string{"league", "eventId"},
		},
	}
}

// HandleAnalyzeFixture assembles an event's input from ESPN and predicts it
func (t *Toolbox) HandleAnalyzeFixture(params any) (any, error) {
	if err := t.requireESPN(); err != nil {
		return nil, err
	}
	m, err := argsMap(params)
	if err != nil {
		return nil, err
	}
	league, err := requiredString(m, "league")
	if err != nil {
		return nil, err
	}
	eventID, err := requiredString(m, "eventId")
	if err != nil {
		return nil, err
	}

	ctx, cancel := t.callContext()
	defer cancel()
	logger.Info("Analyzing fixture", league, eventID)
	in, err := t.ESPN.AnalyzeEvent(ctx, league, eventID)
	if err != nil {
		return nil, err
	}
	res, err := t.Predict(in, boolArg(m, "store", true))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"match":  fmt.Sprintf("%s v %s", in.HomeName, in.AwayName),
		"league": league,
		"input":  in,
		"result": res,
	}, nil
}

func TeamNewsTool() protocol.Tool {
	return protocol.Tool{
		Name: "team_news",
		Description: `
		Returns a markdown digest of a team's latest ESPN news and whether it mentions
		injuries, suspensions or other roster issues.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"league": {Type: "string", Description: "ESPN league slug, for example eng.1 or nba", Enum: leagueSlugs()},
				"teamId": {Type: "string", Description: "ESPN team id"},
			},
			Required: []string{"league", "teamId"},
		},
	}
}

// HandleTeamNews renders a team's news digest
func (t *Toolbox) HandleTeamNews(params any) (any, error) {
	if err := t.requireESPN(); err != nil {
		return nil, err
	}
	m, err := argsMap(params)
	if err != nil {
		return nil, err
	}
	league, err := requiredString(m, "league")
	if err != nil {
		return nil, err
	}
	teamID, err := requiredString(m, "teamId")
	if err != nil {
		return nil, err
	}

	ctx, cancel := t.callContext()
	defer cancel()
	team, err := t.ESPN.FetchTeam(ctx, league, teamID)
	if err != nil {
		return nil, err
	}

	keywords := t.Engine.Config().RosterNewsKeywords
	digest, err := espn.NewsDigest(team.Name, team.News, keywords)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"team":         team.Name,
		"teamId":       team.ID,
		"articles":     len(team.News),
		"rosterIssues": predict.DetectRosterNews(team.News, keywords),
		"markdown":     strings.TrimSpace(digest),
	}, nil
}
