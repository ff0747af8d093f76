package datasource

import (
	"context"
	"testing"
	"time"

	"github.com/quantfold/pickback/internal/types"
	"github.com/stretchr/testify/suite"
)

type MemorySourceTestSuite struct {
	suite.Suite
	source   *MemorySource
	baseDate time.Time
}

func TestMemorySourceSuite(t *testing.T) {
	suite.Run(t, new(MemorySourceTestSuite))
}

func (suite *MemorySourceTestSuite) SetupTest() {
	suite.baseDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.source = NewMemorySource()

	// Bars are loaded out of order on purpose; the source must sort them.
	for _, d := range []int{3, 0, 2, 1, 4} {
		price := 100 + float64(d)
		suite.source.AddBars(types.PriceBar{
			InstrumentID: "AAPL",
			Date:         suite.baseDate.AddDate(0, 0, d),
			Open:         price,
			High:         price,
			Low:          price,
			Close:        price,
			Volume:       1000,
		})
	}

	suite.source.AddBars(types.PriceBar{
		InstrumentID: "MSFT",
		Date:         suite.baseDate,
		Open:         200, High: 200, Low: 200, Close: 200,
		Volume: 500,
	})

	suite.source.AddPicks(
		types.Pick{InstrumentID: "MSFT", AlgorithmName: "reversal", PickDate: suite.baseDate.AddDate(0, 0, 1), EntryPrice: 200, Direction: types.DirectionShort},
		types.Pick{InstrumentID: "AAPL", AlgorithmName: "momentum", PickDate: suite.baseDate.AddDate(0, 0, 1), EntryPrice: 101, Direction: types.DirectionLong},
		types.Pick{InstrumentID: "AAPL", AlgorithmName: "momentum", PickDate: suite.baseDate, EntryPrice: 100, Direction: types.DirectionLong},
	)
}

func (suite *MemorySourceTestSuite) TestGetPricePath() {
	ctx := context.Background()

	path, err := suite.source.GetPricePath(ctx, "AAPL", suite.baseDate.AddDate(0, 0, 1), 2)
	suite.Require().NoError(err)
	suite.Require().Len(path, 2)

	// From is inclusive and bars come back ascending.
	suite.Equal(suite.baseDate.AddDate(0, 0, 1), path[0].Date)
	suite.Equal(suite.baseDate.AddDate(0, 0, 2), path[1].Date)
}

func (suite *MemorySourceTestSuite) TestGetPricePathNoLimit() {
	path, err := suite.source.GetPricePath(context.Background(), "AAPL", suite.baseDate, 0)
	suite.Require().NoError(err)
	suite.Len(path, 5)
}

func (suite *MemorySourceTestSuite) TestGetPriceHistory() {
	history, err := suite.source.GetPriceHistory(context.Background(), "AAPL", 3)
	suite.Require().NoError(err)
	suite.Require().Len(history, 3)

	// The newest bars, still ascending.
	suite.Equal(suite.baseDate.AddDate(0, 0, 2), history[0].Date)
	suite.Equal(suite.baseDate.AddDate(0, 0, 4), history[2].Date)
}

func (suite *MemorySourceTestSuite) TestInstruments() {
	instruments, err := suite.source.Instruments(context.Background())
	suite.Require().NoError(err)
	suite.Equal([]string{"AAPL", "MSFT"}, instruments)
}

func (suite *MemorySourceTestSuite) TestGetPicksOrdering() {
	picks, err := suite.source.GetPicks(context.Background(), types.PickFilter{})
	suite.Require().NoError(err)
	suite.Require().Len(picks, 3)

	// Ordered by pick date, then instrument id.
	suite.Equal(suite.baseDate, picks[0].PickDate)
	suite.Equal("AAPL", picks[1].InstrumentID)
	suite.Equal("MSFT", picks[2].InstrumentID)
}

func (suite *MemorySourceTestSuite) TestGetPicksFilters() {
	byAlgorithm, err := suite.source.GetPicks(context.Background(), types.PickFilter{AlgorithmName: "reversal"})
	suite.Require().NoError(err)
	suite.Require().Len(byAlgorithm, 1)
	suite.Equal("MSFT", byAlgorithm[0].InstrumentID)

	byDirection, err := suite.source.GetPicks(context.Background(), types.PickFilter{Direction: types.DirectionLong})
	suite.Require().NoError(err)
	suite.Len(byDirection, 2)

	both, err := suite.source.GetPicks(context.Background(), types.PickFilter{AlgorithmName: "momentum", Direction: types.DirectionShort})
	suite.Require().NoError(err)
	suite.Empty(both)
}

func (suite *MemorySourceTestSuite) TestAlgorithms() {
	algorithms, err := suite.source.Algorithms(context.Background())
	suite.Require().NoError(err)
	suite.Equal([]string{"momentum", "reversal"}, algorithms)
}

func (suite *MemorySourceTestSuite) TestContextCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.source.GetPicks(ctx, types.PickFilter{})
	suite.ErrorIs(err, context.Canceled)
}
