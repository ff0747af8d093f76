package indicator

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/quantfold/pickback/internal/types"
)

// Overall signal label thresholds.
const (
	strongBuyScore  = 4
	buyScore        = 2
	sellScore       = -2
	strongSellScore = -4
)

// OverallSignal folds the individual indicator readings into a single scored
// recommendation. Each rule contributes independently; an indicator without
// enough history simply does not contribute. The score is the raw sum of the
// contributions and is not clamped.
func OverallSignal(
	lastClose float64,
	sma20, sma50, sma200 optional.Option[float64],
	rsi optional.Option[float64],
	macd optional.Option[types.MACDValue],
	bollinger optional.Option[types.BollingerValue],
) types.OverallSignal {
	score := 0
	reasons := []string{}

	vote := func(delta int, reason string) {
		score += delta
		reasons = append(reasons, reason)
	}

	if sma20.IsSome() {
		if lastClose > sma20.Unwrap() {
			vote(1, "price above SMA20")
		} else {
			vote(-1, "price below SMA20")
		}
	}

	if sma50.IsSome() {
		if lastClose > sma50.Unwrap() {
			vote(1, "price above SMA50")
		} else {
			vote(-1, "price below SMA50")
		}
	}

	if sma200.IsSome() {
		if lastClose > sma200.Unwrap() {
			vote(1, "price above SMA200")
		} else {
			vote(-1, "price below SMA200")
		}
	}

	if sma50.IsSome() && sma200.IsSome() {
		if sma50.Unwrap() > sma200.Unwrap() {
			vote(1, "golden cross (SMA50 above SMA200)")
		} else {
			vote(-1, "death cross (SMA50 below SMA200)")
		}
	}

	if rsi.IsSome() {
		value := rsi.Unwrap()

		switch {
		case value < 30:
			vote(2, fmt.Sprintf("RSI oversold (%.1f)", value))
		case value < 40:
			vote(1, fmt.Sprintf("RSI weak (%.1f)", value))
		case value > 70:
			vote(-2, fmt.Sprintf("RSI overbought (%.1f)", value))
		case value > 60:
			vote(-1, fmt.Sprintf("RSI strong (%.1f)", value))
		}
	}

	if macd.IsSome() {
		histogram := macd.Unwrap().Histogram
		if histogram > 0 {
			vote(1, "MACD histogram positive")
		} else if histogram < 0 {
			vote(-1, "MACD histogram negative")
		}
	}

	if bollinger.IsSome() {
		bands := bollinger.Unwrap()
		if lastClose <= bands.Lower {
			vote(1, "price at lower Bollinger band")
		} else if lastClose >= bands.Upper {
			vote(-1, "price at upper Bollinger band")
		}
	}

	return types.OverallSignal{
		Label:   labelForScore(score),
		Score:   score,
		Reasons: reasons,
	}
}

func labelForScore(score int) types.SignalLabel {
	switch {
	case score >= strongBuyScore:
		return types.SignalStrongBuy
	case score >= buyScore:
		return types.SignalBuy
	case score <= strongSellScore:
		return types.SignalStrongSell
	case score <= sellScore:
		return types.SignalSell
	default:
		return types.SignalNeutral
	}
}

// RSIZoneFor classifies an RSI reading using the same thresholds the overall
// signal votes with.
func RSIZoneFor(rsi float64) types.RSIZone {
	switch {
	case rsi < 30:
		return types.RSIZoneOversold
	case rsi < 40:
		return types.RSIZoneWeak
	case rsi > 70:
		return types.RSIZoneOverbought
	case rsi > 60:
		return types.RSIZoneStrong
	default:
		return types.RSIZoneNeutral
	}
}
