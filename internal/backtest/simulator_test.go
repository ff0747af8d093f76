package backtest

import (
	"testing"
	"time"

	"github.com/quantfold/pickback/internal/types"
	"github.com/stretchr/testify/suite"
)

type SimulatorTestSuite struct {
	suite.Suite
	baseDate time.Time
}

func TestSimulatorSuite(t *testing.T) {
	suite.Run(t, new(SimulatorTestSuite))
}

func (suite *SimulatorTestSuite) SetupSuite() {
	suite.baseDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

// flatBar builds a bar where open, high, low, and close are all the same
// price, d days after the pick date.
func (suite *SimulatorTestSuite) flatBar(d int, price float64) types.PriceBar {
	return types.PriceBar{
		InstrumentID: "AAPL",
		Date:         suite.baseDate.AddDate(0, 0, d),
		Open:         price,
		High:         price,
		Low:          price,
		Close:        price,
		Volume:       1000,
	}
}

func (suite *SimulatorTestSuite) pick(direction types.Direction, entryPrice float64) types.Pick {
	return types.Pick{
		InstrumentID:  "AAPL",
		AlgorithmName: "momentum",
		PickDate:      suite.baseDate,
		EntryPrice:    entryPrice,
		Direction:     direction,
	}
}

func (suite *SimulatorTestSuite) params() types.StrategyParameters {
	return types.StrategyParameters{
		TakeProfitPct:   10,
		StopLossPct:     4,
		MaxHoldPeriods:  14,
		InitialCapital:  1000,
		PositionSizePct: 10,
		TradingFeePct:   0.1,
	}
}

func (suite *SimulatorTestSuite) TestStopLossExitAtExactLevel() {
	pick := suite.pick(types.DirectionLong, 100)
	path := []types.PriceBar{
		suite.flatBar(0, 100),
		suite.flatBar(1, 98),
		suite.flatBar(2, 96),
	}

	trade, ok := SimulateTrade(pick, path, suite.params(), 1000)
	suite.Require().True(ok)

	suite.Equal(types.ExitReasonStopLoss, trade.ExitReason)
	suite.Equal(2, trade.HoldPeriods)
	// The exit settles at the exact stop level, not the bar low.
	suite.InDelta(96.0, trade.ExitPrice, 1e-9)
	suite.InDelta(-4.0, trade.GrossProfit, 1e-9)
	// Entry fee 0.10 on a 100 notional, exit fee 0.096 rounds to 0.10.
	suite.InDelta(0.20, trade.FeesPaid, 1e-9)
	suite.InDelta(-4.20, trade.NetProfit, 1e-9)
	suite.InDelta(-4.20, trade.ReturnPct, 1e-9)
	suite.False(trade.IsWin())
}

func (suite *SimulatorTestSuite) TestStopAfterEarlyRally() {
	pick := suite.pick(types.DirectionLong, 100)
	params := suite.params()
	params.TakeProfitPct = 5
	params.MaxHoldPeriods = 10

	// Rallies to +3%, never reaches the +5% target, then breaks the -4% stop.
	path := []types.PriceBar{
		suite.flatBar(1, 101),
		suite.flatBar(2, 103),
		suite.flatBar(3, 98),
		suite.flatBar(4, 95),
	}

	trade, ok := SimulateTrade(pick, path, params, 10000)
	suite.Require().True(ok)

	suite.Equal(types.ExitReasonStopLoss, trade.ExitReason)
	suite.Equal(4, trade.HoldPeriods)
	suite.InDelta(96.0, trade.ExitPrice, 1e-9)

	// Position value 1000: gross -40, fees 1.00 entry + 0.96 exit.
	suite.InDelta(-40.0, trade.GrossProfit, 1e-9)
	suite.InDelta(1.96, trade.FeesPaid, 1e-9)
	suite.InDelta(-41.96, trade.NetProfit, 1e-9)
	suite.InDelta(-4.196, trade.ReturnPct, 1e-9)
}

func (suite *SimulatorTestSuite) TestStopWinsWhenBarCrossesBothLevels() {
	pick := suite.pick(types.DirectionLong, 100)
	params := suite.params()
	params.StopLossPct = 5

	// One wide bar crosses the stop at 95 and the target at 110.
	path := []types.PriceBar{
		{
			InstrumentID: "AAPL",
			Date:         suite.baseDate.AddDate(0, 0, 1),
			Open:         100,
			High:         112,
			Low:          94,
			Close:        105,
			Volume:       1000,
		},
	}

	trade, ok := SimulateTrade(pick, path, params, 1000)
	suite.Require().True(ok)

	suite.Equal(types.ExitReasonStopLoss, trade.ExitReason)
	suite.InDelta(95.0, trade.ExitPrice, 1e-9)
}

func (suite *SimulatorTestSuite) TestTakeProfitExit() {
	pick := suite.pick(types.DirectionLong, 100)
	path := []types.PriceBar{
		suite.flatBar(1, 103),
		suite.flatBar(2, 111),
	}

	trade, ok := SimulateTrade(pick, path, suite.params(), 1000)
	suite.Require().True(ok)

	suite.Equal(types.ExitReasonTakeProfit, trade.ExitReason)
	suite.Equal(2, trade.HoldPeriods)
	suite.InDelta(110.0, trade.ExitPrice, 1e-9)
	suite.True(trade.IsWin())
}

func (suite *SimulatorTestSuite) TestSentinelDisablesPriceExits() {
	pick := suite.pick(types.DirectionLong, 100)
	params := suite.params()
	params.TakeProfitPct = types.NoExitSentinel
	params.StopLossPct = types.NoExitSentinel
	params.MaxHoldPeriods = 3

	// Moves that would have triggered both exits are ignored.
	path := []types.PriceBar{
		suite.flatBar(1, 130),
		suite.flatBar(2, 60),
		suite.flatBar(3, 90),
		suite.flatBar(4, 95),
	}

	trade, ok := SimulateTrade(pick, path, params, 1000)
	suite.Require().True(ok)

	suite.Equal(types.ExitReasonMaxHold, trade.ExitReason)
	suite.Equal(3, trade.HoldPeriods)
	suite.InDelta(90.0, trade.ExitPrice, 1e-9)
}

func (suite *SimulatorTestSuite) TestEndOfDataExit() {
	pick := suite.pick(types.DirectionLong, 100)
	path := []types.PriceBar{
		suite.flatBar(1, 101),
		suite.flatBar(2, 102),
	}

	trade, ok := SimulateTrade(pick, path, suite.params(), 1000)
	suite.Require().True(ok)

	suite.Equal(types.ExitReasonEndOfData, trade.ExitReason)
	suite.Equal(2, trade.HoldPeriods)
	suite.InDelta(102.0, trade.ExitPrice, 1e-9)
}

func (suite *SimulatorTestSuite) TestNoPriceDataChargesFeesOnly() {
	pick := suite.pick(types.DirectionLong, 100)

	trade, ok := SimulateTrade(pick, nil, suite.params(), 1000)
	suite.Require().True(ok)

	suite.Equal(types.ExitReasonNoPriceData, trade.ExitReason)
	suite.Equal(0, trade.HoldPeriods)
	suite.InDelta(0.0, trade.GrossProfit, 1e-9)
	suite.InDelta(0.20, trade.FeesPaid, 1e-9)
	suite.InDelta(-0.20, trade.NetProfit, 1e-9)
	suite.False(trade.IsWin())
}

func (suite *SimulatorTestSuite) TestEntryBarDoesNotCountAsHolding() {
	pick := suite.pick(types.DirectionLong, 100)

	// Only the pick-date bar exists, so there is nothing to walk.
	path := []types.PriceBar{suite.flatBar(0, 100)}

	trade, ok := SimulateTrade(pick, path, suite.params(), 1000)
	suite.Require().True(ok)
	suite.Equal(types.ExitReasonNoPriceData, trade.ExitReason)
}

func (suite *SimulatorTestSuite) TestMinimumLotFloorSkipsPick() {
	pick := suite.pick(types.DirectionLong, 100)

	// 10% of 50 is below the 10 currency-unit floor.
	_, ok := SimulateTrade(pick, []types.PriceBar{suite.flatBar(1, 100)}, suite.params(), 50)
	suite.False(ok)
}

func (suite *SimulatorTestSuite) TestShortDirectionInvertsExits() {
	pick := suite.pick(types.DirectionShort, 100)

	suite.Run("profit on the way down", func() {
		path := []types.PriceBar{suite.flatBar(1, 90)}

		trade, ok := SimulateTrade(pick, path, suite.params(), 1000)
		suite.Require().True(ok)

		suite.Equal(types.ExitReasonTakeProfit, trade.ExitReason)
		suite.InDelta(90.0, trade.ExitPrice, 1e-9)
		suite.Greater(trade.GrossProfit, 0.0)
		suite.True(trade.IsWin())
	})

	suite.Run("stop on the way up", func() {
		path := []types.PriceBar{suite.flatBar(1, 105)}

		trade, ok := SimulateTrade(pick, path, suite.params(), 1000)
		suite.Require().True(ok)

		suite.Equal(types.ExitReasonStopLoss, trade.ExitReason)
		suite.InDelta(104.0, trade.ExitPrice, 1e-9)
		suite.Less(trade.GrossProfit, 0.0)
	})
}
