package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/apex/pkg/predict"
)

// DefaultHistoryLimit is used when a caller asks for a non-positive number of records
const DefaultHistoryLimit = 20

// MaxHistoryLimit caps a single history read
const MaxHistoryLimit = 500

// PredictionRecord is one stored engine outcome
type PredictionRecord struct {
	ID         string  `json:"id" column:"id" dbtype:"TEXT NOT NULL" primary:"true"`
	EventID    string  `json:"eventId,omitempty" column:"event_id" dbtype:"TEXT" index:"true"`
	Sport      string  `json:"sport" column:"sport" dbtype:"TEXT NOT NULL"`
	HomeName   string  `json:"homeName" column:"home_name" dbtype:"TEXT NOT NULL"`
	AwayName   string  `json:"awayName" column:"away_name" dbtype:"TEXT NOT NULL"`
	Prediction string  `json:"prediction" column:"prediction" dbtype:"TEXT NOT NULL"`
	Confidence int     `json:"confidence" column:"confidence" dbtype:"INTEGER NOT NULL"`
	Market     string  `json:"market,omitempty" column:"market" dbtype:"TEXT"`
	Color      string  `json:"color" column:"color" dbtype:"TEXT"`
	Projected  float64 `json:"projectedTotal,omitempty" column:"projected_total" dbtype:"REAL"`
	// JSON encoded []predict.Factor
	FactorsJSON string `json:"-" column:"factors" dbtype:"TEXT"`
	// unix milliseconds
	CreatedAt int64 `json:"createdAt" column:"created_at" dbtype:"INTEGER NOT NULL" index:"true"`

	Factors []predict.Factor `json:"factors"`
}

func (p *PredictionRecord) GetTableName() string {
	return "predictions"
}

func (p *PredictionRecord) GetPrimaryKey() map[string]any {
	return map[string]any{"id": p.ID}
}

// BeforeSave assigns an id and timestamp to new records and encodes the factors
func (p *PredictionRecord) BeforeSave() error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().UnixMilli()
	}
	factors := p.Factors
	if factors == nil {
		factors = []predict.Factor{}
	}
	b, err := json.Marshal(factors)
	if err != nil {
		return fmt.Errorf("failed to encode factors: %w", err)
	}
	p.FactorsJSON = string(b)
	return nil
}

func (p *PredictionRecord) afterLoad() error {
	if p.FactorsJSON == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(p.FactorsJSON), &p.Factors); err != nil {
		return fmt.Errorf("failed to decode factors of %s: %w", p.ID, err)
	}
	return nil
}

// Created returns the record's creation time
func (p *PredictionRecord) Created() time.Time {
	return time.UnixMilli(p.CreatedAt).UTC()
}

// NewPredictionRecord builds an unsaved record for an engine result
func NewPredictionRecord(in predict.MatchInput, res *predict.PredictionResult) *PredictionRecord {
	rec := &PredictionRecord{
		EventID:    in.EventID,
		Sport:      string(in.Sport.Normalize()),
		HomeName:   in.HomeName,
		AwayName:   in.AwayName,
		Prediction: res.Prediction,
		Confidence: res.Confidence,
		Market:     res.Market,
		Color:      res.Color,
		Factors:    res.Factors,
	}
	if res.Projection != nil {
		rec.Projected = res.Projection.Total
	}
	return rec
}

// RecordPrediction stores the outcome of one engine run and returns the saved record
func (s *Store) RecordPrediction(in predict.MatchInput, res *predict.PredictionResult) (*PredictionRecord, error) {
	if res == nil {
		return nil, fmt.Errorf("no prediction to record")
	}
	rec := NewPredictionRecord(in, res)
	if err := s.Save(rec); err != nil {
		return nil, fmt.Errorf("failed to record prediction: %w", err)
	}
	return rec, nil
}

// GetPrediction loads a stored record by id
func (s *Store) GetPrediction(id string) (*PredictionRecord, error) {
	rec := &PredictionRecord{}
	if err := s.FindByPrimaryKey(rec, map[string]any{"id": id}); err != nil {
		return nil, err
	}
	if err := rec.afterLoad(); err != nil {
		return nil, err
	}
	return rec, nil
}

// RecentPredictions returns up to limit records, newest first
func (s *Store) RecentPredictions(limit int) ([]*PredictionRecord, error) {
	return s.findPredictions("1 = 1", limit)
}

// PredictionsForEvent returns the records stored for one event, newest first
func (s *Store) PredictionsForEvent(eventID string, limit int) ([]*PredictionRecord, error) {
	return s.findPredictions("event_id = ?", limit, eventID)
}

func (s *Store) findPredictions(clause string, limit int, args ...any) ([]*PredictionRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	args = append(args, limit)
	rows, err := s.FindWhere(&PredictionRecord{}, clause+" ORDER BY created_at DESC, rowid DESC LIMIT ?", args...)
	if err != nil {
		return nil, err
	}
	out := make([]*PredictionRecord, 0, len(rows))
	for _, r := range rows {
		rec := r.(*PredictionRecord)
		if err := rec.afterLoad(); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
