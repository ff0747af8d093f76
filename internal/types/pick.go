package types

import (
	"time"

	"github.com/quantfold/pickback/pkg/errors"
)

// Direction is the side of a recommended trade.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// IsValid reports whether the direction is one of the closed set.
func (d Direction) IsValid() bool {
	return d == DirectionLong || d == DirectionShort
}

// RiskLevel classifies a pick's risk as assigned by the signal generator.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// Pick is a dated, directional trade recommendation produced by a named
// signal-generating algorithm. Picks are immutable once created; this engine
// consumes them but never produces them.
type Pick struct {
	InstrumentID  string    `json:"instrument_id" yaml:"instrument_id"`
	AlgorithmName string    `json:"algorithm_name" yaml:"algorithm_name"`
	PickDate      time.Time `json:"pick_date" yaml:"pick_date"`
	EntryPrice    float64   `json:"entry_price" yaml:"entry_price"`
	Direction     Direction `json:"direction" yaml:"direction"`
	Score         float64   `json:"score" yaml:"score"`
	Rating        string    `json:"rating" yaml:"rating"`
	RiskLevel     RiskLevel `json:"risk_level" yaml:"risk_level"`
	TimeframeHint string    `json:"timeframe_hint" yaml:"timeframe_hint"`
}

// Validate checks the closed enum fields. Arbitrary strings are rejected at
// the collaborator boundary so the simulator can trust its inputs.
func (p Pick) Validate() error {
	if p.InstrumentID == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "pick is missing instrument_id")
	}

	if !p.Direction.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidDirection, "invalid pick direction %q", p.Direction)
	}

	if p.EntryPrice <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "pick entry price must be positive, got %f", p.EntryPrice)
	}

	return nil
}

// PickFilter narrows a pick query. Zero values mean no filtering.
type PickFilter struct {
	AlgorithmName string
	Direction     Direction
}
