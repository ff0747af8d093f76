package types

import "time"

// PriceBar represents one daily OHLCV bar for an instrument.
// Bars are unique per (instrument_id, date) and always handled in ascending
// date order. Gaps between dates are allowed; no regular spacing is assumed.
type PriceBar struct {
	InstrumentID string    `json:"instrument_id" yaml:"instrument_id"`
	Date         time.Time `json:"date" yaml:"date"`
	Open         float64   `json:"open" yaml:"open"`
	High         float64   `json:"high" yaml:"high"`
	Low          float64   `json:"low" yaml:"low"`
	Close        float64   `json:"close" yaml:"close"`
	Volume       float64   `json:"volume" yaml:"volume"`
}

// Closes extracts the closing price sequence from a bar series.
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	return closes
}
