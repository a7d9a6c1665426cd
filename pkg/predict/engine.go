package predict

import (
	"fmt"
	"time"

	"github.com/richard-senior/apex/internal/logger"
)

// NoClearEdge is returned when no market produced a candidate
const NoClearEdge = "No Clear Edge"

// Engine evaluates fixtures against an immutable configuration.
// It holds no other state and is safe for concurrent use.
type Engine struct {
	cfg *EngineConfig
}

// NewEngine validates cfg and keeps a private copy. A nil cfg means the defaults.
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	return &Engine{cfg: cfg.Clone()}, nil
}

// Config returns a copy of the engine's configuration
func (e *Engine) Config() *EngineConfig {
	return e.cfg.Clone()
}

var defaultEngine = &Engine{cfg: DefaultEngineConfig()}

// Analyze evaluates in with the default configuration
func Analyze(in MatchInput) (*PredictionResult, error) {
	return defaultEngine.Analyze(in)
}

// evaluation carries the intermediate signals of a single Analyze call
type evaluation struct {
	cfg        *EngineConfig
	in         MatchInput
	sport      Sport
	now        time.Time
	homeRecord TeamRecord
	awayRecord TeamRecord
	h2h        *HeadToHeadSummary
	home       *ScoringProfile
	away       *ScoringProfile
	factors    []Factor
	projection Projection
}

func (ev *evaluation) addFactor(label string, side Side, t FactorType) {
	ev.factors = append(ev.factors, Factor{Label: label, Side: side, Type: t})
}

func (e *Engine) newEvaluation(in MatchInput) *evaluation {
	sport := in.Sport.Normalize()
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &evaluation{
		cfg:        e.cfg,
		in:         in,
		sport:      sport,
		now:        now,
		homeRecord: ParseRecord(in.HomeStats.Record, sport),
		awayRecord: ParseRecord(in.AwayStats.Record, sport),
		h2h:        SummarizeHeadToHead(in.H2H, in.EventID),
		home:       NewScoringProfile(in.HomeStats.LastMatches),
		away:       NewScoringProfile(in.AwayStats.LastMatches),
		factors:    []Factor{},
	}
}

// Analyze produces the single best-supported tip for in.
// Only a missing team name or sport is an error; every other gap just removes a signal.
func (e *Engine) Analyze(in MatchInput) (*PredictionResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.HomeName = trimmed(in.HomeName)
	in.AwayName = trimmed(in.AwayName)

	ev := e.newEvaluation(in)
	scores := ev.scoreWinMargin()

	candidates := []Candidate{}
	if !ev.sport.IsBasketball() {
		candidates = append(candidates, WinMarginCandidate(scores.Differential(), in.HomeName, in.AwayName, e.cfg))
	}
	if c, ok := ev.totalsCandidate(); ok {
		candidates = append(candidates, c)
		if ev.sport.IsBasketball() {
			candidates = append(candidates, ev.spreadCandidates(ev.projection.Total)...)
		}
	}

	ret := &PredictionResult{
		Factors:    ev.factors,
		Candidates: candidates,
	}
	if ev.projection != (Projection{}) {
		p := ev.projection
		ret.Projection = &p
	}

	best, ok := SelectCandidate(candidates)
	if !ok {
		ret.Prediction = NoClearEdge
		ret.Color = e.cfg.Colors.Neutral
		logger.Debug("No candidate for", in.HomeName, "v", in.AwayName, string(ev.sport))
		return ret, nil
	}

	ret.Prediction = best.Text
	ret.Confidence = best.Confidence
	ret.Color = best.Color
	ret.Market = best.Market.String()

	logger.Debug("Prediction for", in.HomeName, "v", in.AwayName, ret.Prediction, ret.Confidence, "differential", scores.Differential())
	return ret, nil
}
