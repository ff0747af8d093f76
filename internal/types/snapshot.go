package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// SignalLabel is the overall buy/sell recommendation label.
type SignalLabel string

const (
	SignalStrongBuy  SignalLabel = "STRONG_BUY"
	SignalBuy        SignalLabel = "BUY"
	SignalNeutral    SignalLabel = "NEUTRAL"
	SignalSell       SignalLabel = "SELL"
	SignalStrongSell SignalLabel = "STRONG_SELL"
)

// RSIZone classifies an RSI reading.
type RSIZone string

const (
	RSIZoneOversold   RSIZone = "OVERSOLD"
	RSIZoneWeak       RSIZone = "WEAK"
	RSIZoneNeutral    RSIZone = "NEUTRAL"
	RSIZoneStrong     RSIZone = "STRONG"
	RSIZoneOverbought RSIZone = "OVERBOUGHT"
)

// MACDValue is the MACD line, its signal line, and their difference.
type MACDValue struct {
	MACD      float64 `json:"macd" yaml:"macd"`
	Signal    float64 `json:"signal" yaml:"signal"`
	Histogram float64 `json:"histogram" yaml:"histogram"`
}

// BollingerValue is a Bollinger Band triple plus bandwidth.
type BollingerValue struct {
	Upper        float64 `json:"upper" yaml:"upper"`
	Middle       float64 `json:"middle" yaml:"middle"`
	Lower        float64 `json:"lower" yaml:"lower"`
	BandwidthPct float64 `json:"bandwidth_pct" yaml:"bandwidth_pct"`
}

// OverallSignal is the scored buy/sell recommendation derived from the full
// indicator set. Every contributing rule records a human-readable reason.
type OverallSignal struct {
	Label   SignalLabel `json:"label" yaml:"label"`
	Score   int         `json:"score" yaml:"score"`
	Reasons []string    `json:"reasons" yaml:"reasons"`
}

// TechnicalSnapshot is the per-instrument derived indicator state. It is
// recomputed on demand from the current price series and has no independent
// lifecycle. Indicators with insufficient history are None, never zero.
type TechnicalSnapshot struct {
	InstrumentID string    `json:"instrument_id" yaml:"instrument_id"`
	AsOf         time.Time `json:"as_of" yaml:"as_of"`
	LastClose    float64   `json:"last_close" yaml:"last_close"`

	SMA20  optional.Option[float64] `json:"sma_20" yaml:"sma_20"`
	SMA50  optional.Option[float64] `json:"sma_50" yaml:"sma_50"`
	SMA200 optional.Option[float64] `json:"sma_200" yaml:"sma_200"`

	// Percent distance of the last close from each moving average.
	SMA20DistancePct  optional.Option[float64] `json:"sma_20_distance_pct" yaml:"sma_20_distance_pct"`
	SMA50DistancePct  optional.Option[float64] `json:"sma_50_distance_pct" yaml:"sma_50_distance_pct"`
	SMA200DistancePct optional.Option[float64] `json:"sma_200_distance_pct" yaml:"sma_200_distance_pct"`

	RSI14   optional.Option[float64] `json:"rsi_14" yaml:"rsi_14"`
	RSIZone RSIZone                  `json:"rsi_zone,omitempty" yaml:"rsi_zone,omitempty"`

	MACD      optional.Option[MACDValue]      `json:"macd" yaml:"macd"`
	Bollinger optional.Option[BollingerValue] `json:"bollinger" yaml:"bollinger"`

	Overall OverallSignal `json:"overall_signal" yaml:"overall_signal"`
}
