package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/richard-senior/apex/internal/logger"
	"github.com/richard-senior/apex/pkg/espn"
	"github.com/richard-senior/apex/pkg/predict"
	"github.com/richard-senior/apex/pkg/protocol"
	"github.com/richard-senior/apex/pkg/store"
)

// DefaultTimeout bounds the ESPN round trips made by a single tool call
const DefaultTimeout = 30 * time.Second

// Toolbox carries the services the tool handlers share.
// Store and ESPN are optional; handlers that need a missing one fail with an error.
type Toolbox struct {
	Engine  *predict.Engine
	Store   *store.Store
	ESPN    *espn.Client
	Timeout time.Duration
}

// NewToolbox builds a toolbox. A nil engine means the default configuration.
func NewToolbox(engine *predict.Engine, st *store.Store, client *espn.Client) (*Toolbox, error) {
	if engine == nil {
		var err error
		if engine, err = predict.NewEngine(nil); err != nil {
			return nil, err
		}
	}
	return &Toolbox{Engine: engine, Store: st, ESPN: client, Timeout: DefaultTimeout}, nil
}

func (t *Toolbox) callContext() (context.Context, context.CancelFunc) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// PredictionResponse is a prediction plus the id it was stored under
type PredictionResponse struct {
	*predict.PredictionResult
	RecordID string `json:"recordId,omitempty"`
}

// Predict runs the engine and records the outcome when a store is configured and save is set
func (t *Toolbox) Predict(in predict.MatchInput, save bool) (*PredictionResponse, error) {
	res, err := t.Engine.Analyze(in)
	if err != nil {
		return nil, err
	}
	out := &PredictionResponse{PredictionResult: res}
	if save && t.Store != nil {
		rec, err := t.Store.RecordPrediction(in, res)
		if err != nil {
			// the prediction stands even if history is unavailable
			logger.Warn("Failed to record prediction", err)
		} else {
			out.RecordID = rec.ID
		}
	}
	return out, nil
}

func teamStatsSchema(side string) protocol.ToolProperty {
	return protocol.ToolProperty{
		Type:        "object",
		Description: fmt.Sprintf("Statistics for the %s team", side),
		Properties: map[string]protocol.ToolProperty{
			"record": {Type: "string", Description: `Season record, "W-D-L" for soccer or "W-L" for basketball`},
			"form":   {Type: "string", Description: `Current streak token such as "W3", used when lastMatches is empty`},
			"lastMatches": {
				Type:        "array",
				Description: "Recent completed games, most recent first",
				Items: &protocol.ToolProperty{
					Type: "object",
					Properties: map[string]protocol.ToolProperty{
						"date":   {Type: "string", Description: "RFC3339 kick-off time"},
						"pf":     {Type: "number", Description: "Points or goals scored"},
						"pa":     {Type: "number", Description: "Points or goals conceded"},
						"isHome": {Type: "boolean"},
						"result": {Type: "string", Enum: []string{"W", "D", "L"}},
					},
				},
			},
			"news": {
				Type:        "array",
				Description: "Recent headlines; omit when no news is known",
				Items: &protocol.ToolProperty{
					Type: "object",
					Properties: map[string]protocol.ToolProperty{
						"headline":    {Type: "string"},
						"description": {Type: "string"},
					},
				},
			},
		},
	}
}

func PredictMatchTool() protocol.Tool {
	return protocol.Tool{
		Name: "predict_match",
		Description: `
		Predicts the outcome of a soccer or basketball match from the statistics supplied.
		Returns the single most confident tip (win, double chance, goal/points line, team total)
		with a 0-100 confidence, the factors that drove it and every candidate considered.
		Use this when the caller already has records, recent results, news or head-to-head data.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"homeName":  {Type: "string", Description: "Home team name"},
				"awayName":  {Type: "string", Description: "Away team name"},
				"sport":     {Type: "string", Description: "Sport; anything other than basketball uses soccer rules", Enum: []string{"soccer", "basketball"}},
				"homeStats": teamStatsSchema("home"),
				"awayStats": teamStatsSchema("away"),
				"h2h": {
					Type:        "object",
					Description: "Head-to-head history: homeWins, awayWins, draws and recent games with hostScore, visitorScore and hostedByHome",
				},
				"eventId": {Type: "string", Description: "Id of the match being predicted; excluded from head-to-head history"},
				"store":   {Type: "boolean", Description: "Record the prediction in the history", Default: true},
			},
			Required: []string{"homeName", "awayName", "sport"},
		},
	}
}

// HandlePredictMatch runs the engine over explicit statistics
func (t *Toolbox) HandlePredictMatch(params any) (any, error) {
	m, err := argsMap(params)
	if err != nil {
		return nil, err
	}
	var in predict.MatchInput
	if err := decodeArgs(m, &in); err != nil {
		return nil, err
	}
	logger.Info("Predicting", in.HomeName, "v", in.AwayName)
	return t.Predict(in, boolArg(m, "store", true))
}

func PredictionHistoryTool() protocol.Tool {
	return protocol.Tool{
		Name: "prediction_history",
		Description: `
		Lists previously recorded predictions, newest first.
		Optionally restricted to a single event id.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"limit":   {Type: "number", Description: "Maximum number of records", Default: store.DefaultHistoryLimit},
				"eventId": {Type: "string", Description: "Only return predictions for this event"},
			},
			Required: []string{},
		},
	}
}

// HandlePredictionHistory returns stored predictions
func (t *Toolbox) HandlePredictionHistory(params any) (any, error) {
	if t.Store == nil {
		return nil, fmt.Errorf("prediction history is not configured")
	}
	m, err := argsMap(params)
	if err != nil {
		return nil, err
	}
	limit, err := intArg(m, "limit", store.DefaultHistoryLimit)
	if err != nil {
		return nil, err
	}

	var recs []*store.PredictionRecord
	if eventID := stringArg(m, "eventId"); eventID != "" {
		recs, err = t.Store.PredictionsForEvent(eventID, limit)
	} else {
		recs, err = t.Store.RecentPredictions(limit)
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"count":       len(recs),
		"predictions": recs,
	}, nil
}
