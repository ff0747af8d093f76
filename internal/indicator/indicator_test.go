package indicator

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/quantfold/pickback/internal/types"
	"github.com/quantfold/pickback/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func (suite *IndicatorTestSuite) TestSMA() {
	testCases := []struct {
		name     string
		values   []float64
		period   int
		expected optional.Option[float64]
	}{
		{
			name:     "trailing window",
			values:   []float64{1, 2, 3, 4, 5},
			period:   3,
			expected: optional.Some(4.0),
		},
		{
			name:     "exact window",
			values:   []float64{1, 2, 3, 4, 5},
			period:   5,
			expected: optional.Some(3.0),
		},
		{
			name:     "insufficient history",
			values:   []float64{1, 2},
			period:   3,
			expected: optional.None[float64](),
		},
		{
			name:     "invalid period",
			values:   []float64{1, 2, 3},
			period:   0,
			expected: optional.None[float64](),
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			result := SMA(tc.values, tc.period)
			suite.Equal(tc.expected.IsSome(), result.IsSome())

			if tc.expected.IsSome() {
				suite.InDelta(tc.expected.Unwrap(), result.Unwrap(), 1e-9)
			}
		})
	}
}

func (suite *IndicatorTestSuite) TestSMASeries() {
	series := SMASeries([]float64{1, 2, 3, 4}, 2)

	suite.Len(series, 4)
	suite.True(series[0].IsNone())
	suite.InDelta(1.5, series[1].Unwrap(), 1e-9)
	suite.InDelta(2.5, series[2].Unwrap(), 1e-9)
	suite.InDelta(3.5, series[3].Unwrap(), 1e-9)
}

func (suite *IndicatorTestSuite) TestEMASeries() {
	series := EMASeries([]float64{1, 2, 3, 4}, 2)

	suite.Len(series, 4)
	suite.True(series[0].IsNone())
	// Seed is the simple average of the first two values.
	suite.InDelta(1.5, series[1].Unwrap(), 1e-9)
	suite.InDelta(2.5, series[2].Unwrap(), 1e-9)
	suite.InDelta(3.5, series[3].Unwrap(), 1e-9)
}

func (suite *IndicatorTestSuite) TestRSI() {
	suite.Run("all gains reads 100", func() {
		closes := make([]float64, 15)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}

		rsi := RSI(closes, DefaultRSIPeriod)
		suite.Require().True(rsi.IsSome())
		suite.InDelta(100.0, rsi.Unwrap(), 1e-9)
	})

	suite.Run("balanced gains and losses read 50", func() {
		closes := make([]float64, 15)
		for i := range closes {
			if i%2 == 0 {
				closes[i] = 10
			} else {
				closes[i] = 11
			}
		}

		rsi := RSI(closes, DefaultRSIPeriod)
		suite.Require().True(rsi.IsSome())
		suite.InDelta(50.0, rsi.Unwrap(), 1e-9)
	})

	suite.Run("wilder smoothing after the seed window", func() {
		// Fourteen +1 deltas seed the averages, then one -1 delta is
		// smoothed in: avgGain 13/14, avgLoss 1/14, RS 13.
		closes := make([]float64, 16)
		for i := 0; i < 15; i++ {
			closes[i] = 100 + float64(i)
		}

		closes[15] = closes[14] - 1

		rsi := RSI(closes, DefaultRSIPeriod)
		suite.Require().True(rsi.IsSome())
		suite.InDelta(100.0-100.0/14.0, rsi.Unwrap(), 1e-9)
	})

	suite.Run("insufficient history", func() {
		closes := make([]float64, 14)
		for i := range closes {
			closes[i] = 100
		}

		suite.True(RSI(closes, DefaultRSIPeriod).IsNone())
	})
}

func (suite *IndicatorTestSuite) TestMACD() {
	suite.Run("requires 35 closes", func() {
		closes := make([]float64, MinMACDPoints-1)
		for i := range closes {
			closes[i] = 100
		}

		suite.True(MACD(closes).IsNone())
	})

	suite.Run("flat series converges to zero", func() {
		closes := make([]float64, 40)
		for i := range closes {
			closes[i] = 100
		}

		macd := MACD(closes)
		suite.Require().True(macd.IsSome())

		value := macd.Unwrap()
		suite.InDelta(0.0, value.MACD, 1e-9)
		suite.InDelta(0.0, value.Signal, 1e-9)
		suite.InDelta(0.0, value.Histogram, 1e-9)
	})

	suite.Run("rising series turns positive", func() {
		closes := make([]float64, 60)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}

		macd := MACD(closes)
		suite.Require().True(macd.IsSome())
		suite.Greater(macd.Unwrap().MACD, 0.0)
	})
}

func (suite *IndicatorTestSuite) TestBollinger() {
	suite.Run("flat window collapses the bands", func() {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 50
		}

		bands := Bollinger(closes, DefaultBollingerPeriod, DefaultBollingerK)
		suite.Require().True(bands.IsSome())

		value := bands.Unwrap()
		suite.InDelta(50.0, value.Upper, 1e-9)
		suite.InDelta(50.0, value.Middle, 1e-9)
		suite.InDelta(50.0, value.Lower, 1e-9)
		suite.InDelta(0.0, value.BandwidthPct, 1e-9)
	})

	suite.Run("population deviation widens the envelope", func() {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 50
		}

		closes[19] = 60

		bands := Bollinger(closes, DefaultBollingerPeriod, DefaultBollingerK)
		suite.Require().True(bands.IsSome())

		value := bands.Unwrap()
		suite.InDelta(50.5, value.Middle, 1e-9)
		suite.InDelta(54.858899, value.Upper, 1e-5)
		suite.InDelta(46.141101, value.Lower, 1e-5)
		suite.InDelta(17.26297, value.BandwidthPct, 1e-4)
	})

	suite.Run("insufficient history", func() {
		suite.True(Bollinger([]float64{1, 2, 3}, DefaultBollingerPeriod, DefaultBollingerK).IsNone())
	})
}

func (suite *IndicatorTestSuite) TestOverallSignal() {
	testCases := []struct {
		name          string
		lastClose     float64
		sma20         optional.Option[float64]
		sma50         optional.Option[float64]
		sma200        optional.Option[float64]
		rsi           optional.Option[float64]
		macd          optional.Option[types.MACDValue]
		bollinger     optional.Option[types.BollingerValue]
		expectedScore int
		expectedLabel types.SignalLabel
	}{
		{
			name:          "everything bullish",
			lastClose:     110,
			sma20:         optional.Some(100.0),
			sma50:         optional.Some(95.0),
			sma200:        optional.Some(90.0),
			rsi:           optional.Some(25.0),
			macd:          optional.Some(types.MACDValue{MACD: 1, Signal: 0.5, Histogram: 0.5}),
			bollinger:     optional.Some(types.BollingerValue{Upper: 130, Middle: 120, Lower: 112}),
			expectedScore: 8,
			expectedLabel: types.SignalStrongBuy,
		},
		{
			name:          "everything bearish",
			lastClose:     80,
			sma20:         optional.Some(90.0),
			sma50:         optional.Some(95.0),
			sma200:        optional.Some(100.0),
			rsi:           optional.Some(75.0),
			macd:          optional.Some(types.MACDValue{MACD: -1, Signal: -0.5, Histogram: -0.5}),
			bollinger:     optional.Some(types.BollingerValue{Upper: 79, Middle: 70, Lower: 61}),
			expectedScore: -8,
			expectedLabel: types.SignalStrongSell,
		},
		{
			name:          "no indicators is neutral",
			lastClose:     100,
			sma20:         optional.None[float64](),
			sma50:         optional.None[float64](),
			sma200:        optional.None[float64](),
			rsi:           optional.None[float64](),
			macd:          optional.None[types.MACDValue](),
			bollinger:     optional.None[types.BollingerValue](),
			expectedScore: 0,
			expectedLabel: types.SignalNeutral,
		},
		{
			name:          "score two is a buy",
			lastClose:     110,
			sma20:         optional.Some(100.0),
			sma50:         optional.None[float64](),
			sma200:        optional.None[float64](),
			rsi:           optional.Some(35.0),
			macd:          optional.None[types.MACDValue](),
			bollinger:     optional.None[types.BollingerValue](),
			expectedScore: 2,
			expectedLabel: types.SignalBuy,
		},
		{
			name:          "score minus two is a sell",
			lastClose:     90,
			sma20:         optional.Some(100.0),
			sma50:         optional.None[float64](),
			sma200:        optional.None[float64](),
			rsi:           optional.Some(65.0),
			macd:          optional.None[types.MACDValue](),
			bollinger:     optional.None[types.BollingerValue](),
			expectedScore: -2,
			expectedLabel: types.SignalSell,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			signal := OverallSignal(tc.lastClose, tc.sma20, tc.sma50, tc.sma200, tc.rsi, tc.macd, tc.bollinger)

			suite.Equal(tc.expectedScore, signal.Score)
			suite.Equal(tc.expectedLabel, signal.Label)
			suite.NotNil(signal.Reasons)
		})
	}
}

func (suite *IndicatorTestSuite) TestRSIZoneFor() {
	suite.Equal(types.RSIZoneOversold, RSIZoneFor(25))
	suite.Equal(types.RSIZoneWeak, RSIZoneFor(35))
	suite.Equal(types.RSIZoneNeutral, RSIZoneFor(50))
	suite.Equal(types.RSIZoneStrong, RSIZoneFor(65))
	suite.Equal(types.RSIZoneOverbought, RSIZoneFor(75))
}

func (suite *IndicatorTestSuite) TestSnapshot() {
	suite.Run("empty series is neutral with no indicators", func() {
		snapshot := Snapshot("AAPL", nil)

		suite.Equal("AAPL", snapshot.InstrumentID)
		suite.True(snapshot.SMA20.IsNone())
		suite.True(snapshot.RSI14.IsNone())
		suite.True(snapshot.MACD.IsNone())
		suite.True(snapshot.Bollinger.IsNone())
		suite.Equal(types.SignalNeutral, snapshot.Overall.Label)
	})

	suite.Run("short history fills only the short indicators", func() {
		bars := make([]types.PriceBar, 30)
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		for i := range bars {
			price := 100 + float64(i)
			bars[i] = types.PriceBar{
				InstrumentID: "AAPL",
				Date:         base.AddDate(0, 0, i),
				Open:         price,
				High:         price,
				Low:          price,
				Close:        price,
				Volume:       1000,
			}
		}

		snapshot := Snapshot("AAPL", bars)

		suite.Equal(bars[29].Date, snapshot.AsOf)
		suite.InDelta(129.0, snapshot.LastClose, 1e-9)
		suite.True(snapshot.SMA20.IsSome())
		suite.True(snapshot.SMA50.IsNone())
		suite.True(snapshot.SMA200.IsNone())
		suite.True(snapshot.RSI14.IsSome())
		suite.Equal(types.RSIZoneOverbought, snapshot.RSIZone)
		suite.True(snapshot.SMA20DistancePct.IsSome())
		suite.Greater(snapshot.SMA20DistancePct.Unwrap(), 0.0)
	})
}

func (suite *IndicatorTestSuite) TestRequireSnapshot() {
	suite.Run("empty history is an insufficient-data error", func() {
		_, err := RequireSnapshot("AAPL", nil)
		suite.Require().Error(err)
		suite.True(errors.IsInsufficientDataError(err))

		var insufficient *errors.InsufficientDataError
		suite.Require().True(errors.As(err, &insufficient))
		suite.Equal(1, insufficient.Required)
		suite.Equal(0, insufficient.Actual)
		suite.Equal("AAPL", insufficient.Instrument)
	})

	suite.Run("non-empty history matches the tolerant snapshot", func() {
		bars := []types.PriceBar{{
			InstrumentID: "AAPL",
			Date:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Open:         100, High: 100, Low: 100, Close: 100,
			Volume: 1000,
		}}

		snapshot, err := RequireSnapshot("AAPL", bars)
		suite.Require().NoError(err)
		suite.Equal(Snapshot("AAPL", bars), snapshot)
	})
}
