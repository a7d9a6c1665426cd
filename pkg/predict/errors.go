package predict

import (
	"errors"
	"fmt"
)

var (
	ErrMissingHomeName = errors.New("home team name is required")
	ErrMissingAwayName = errors.New("away team name is required")
	ErrMissingSport    = errors.New("sport is required")
)

// InputError reports a missing required field on a MatchInput
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid match input: %s: %v", e.Field, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Validate checks the fields that candidate text depends on
func (in MatchInput) Validate() error {
	switch {
	case trimmed(in.HomeName) == "":
		return &InputError{Field: "homeName", Err: ErrMissingHomeName}
	case trimmed(in.AwayName) == "":
		return &InputError{Field: "awayName", Err: ErrMissingAwayName}
	case in.Sport.Normalize() == "":
		return &InputError{Field: "sport", Err: ErrMissingSport}
	}
	return nil
}
