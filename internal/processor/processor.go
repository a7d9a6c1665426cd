package processor

import (
	"encoding/json"
	"fmt"

	"github.com/richard-senior/apex/internal/logger"
	"github.com/richard-senior/apex/pkg/predict"
)

// Version is reported in every response's metadata
const Version = "1.0.0"

// Request is a single match or a batch of matches to predict
type Request struct {
	RequestID string               `json:"requestId,omitempty"`
	Match     *predict.MatchInput  `json:"match,omitempty"`
	Matches   []predict.MatchInput `json:"matches,omitempty"`
}

// Outcome is the result for one match of a request. Exactly one of Result and Error is set.
type Outcome struct {
	Match  string                    `json:"match"`
	Result *predict.PredictionResult `json:"result,omitempty"`
	Error  string                    `json:"error,omitempty"`
}

// Response answers a Request
type Response struct {
	RequestID string         `json:"requestId,omitempty"`
	Results   []Outcome      `json:"results"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ErrorResponse represents a request that could not be read at all
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func createErrorResponse(code, message string) ([]byte, error) {
	var response ErrorResponse
	response.Error.Code = code
	response.Error.Message = message
	return json.MarshalIndent(response, "", "  ")
}

// parseRequest accepts either a Request envelope or a bare MatchInput
func parseRequest(input []byte) (Request, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(input, &probe); err != nil {
		return Request{}, err
	}
	var req Request
	_, hasMatch := probe["match"]
	_, hasMatches := probe["matches"]
	if hasMatch || hasMatches {
		if err := json.Unmarshal(input, &req); err != nil {
			return Request{}, err
		}
		if req.Match != nil {
			req.Matches = append([]predict.MatchInput{*req.Match}, req.Matches...)
			req.Match = nil
		}
		return req, nil
	}
	var in predict.MatchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return Request{}, err
	}
	req.Matches = []predict.MatchInput{in}
	return req, nil
}

// ProcessRequest predicts every match in input and returns the indented JSON response.
// Per-match failures are reported in that match's outcome.
func ProcessRequest(engine *predict.Engine, input []byte) ([]byte, error) {
	if engine == nil {
		var err error
		if engine, err = predict.NewEngine(nil); err != nil {
			return nil, err
		}
	}

	req, err := parseRequest(input)
	if err != nil {
		logger.Error("Failed to parse input JSON", err)
		return createErrorResponse("invalid_request", fmt.Sprintf("Invalid JSON: %v", err))
	}
	if len(req.Matches) == 0 {
		return createErrorResponse("invalid_request", "no matches were supplied")
	}

	logger.Info("Processing request", req.RequestID, len(req.Matches), "matches")

	resp := Response{
		RequestID: req.RequestID,
		Results:   make([]Outcome, 0, len(req.Matches)),
		Metadata:  map[string]any{"version": Version},
	}
	failed := 0
	for _, in := range req.Matches {
		out := Outcome{Match: fmt.Sprintf("%s v %s", in.HomeName, in.AwayName)}
		res, err := engine.Analyze(in)
		if err != nil {
			logger.Warn("Prediction failed", out.Match, err)
			out.Error = err.Error()
			failed++
		} else {
			out.Result = res
		}
		resp.Results = append(resp.Results, out)
	}
	resp.Metadata["failed"] = failed

	result, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal response to JSON", err)
		return createErrorResponse("internal_error", "Failed to create response")
	}
	return result, nil
}

// QuickMatch builds an input with names only, used when the CLI is given positional arguments
func QuickMatch(home, away, sport string) predict.MatchInput {
	if sport == "" {
		sport = string(predict.SportSoccer)
	}
	return predict.MatchInput{
		HomeName: home,
		AwayName: away,
		Sport:    predict.Sport(sport),
	}
}
