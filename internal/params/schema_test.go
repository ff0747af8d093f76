package params

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/quantfold/pickback/internal/types"
	"github.com/stretchr/testify/suite"
)

type ParamsTestSuite struct {
	suite.Suite
}

func TestParamsSuite(t *testing.T) {
	suite.Run(t, new(ParamsTestSuite))
}

func (suite *ParamsTestSuite) TestSchema() {
	schema, err := Schema()
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &decoded))

	properties, ok := decoded["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "take_profit_pct")
	suite.Contains(properties, "stop_loss_pct")
	suite.Contains(properties, "max_hold_periods")
	suite.Contains(properties, "position_size_pct")
}

func (suite *ParamsTestSuite) TestLoadYAMLMergesOverDefaults() {
	path := filepath.Join(suite.T().TempDir(), "params.yaml")
	content := "take_profit_pct: 15\nmax_hold_periods: 30\n"
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o644))

	parameters, err := LoadYAML(path)
	suite.Require().NoError(err)

	suite.InDelta(15.0, parameters.TakeProfitPct, 1e-9)
	suite.Equal(30, parameters.MaxHoldPeriods)

	// Untouched fields keep their defaults.
	defaults := types.DefaultParameters()
	suite.InDelta(defaults.StopLossPct, parameters.StopLossPct, 1e-9)
	suite.InDelta(defaults.InitialCapital, parameters.InitialCapital, 1e-9)
}

func (suite *ParamsTestSuite) TestLoadYAMLRejectsInvalidValues() {
	path := filepath.Join(suite.T().TempDir(), "params.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte("position_size_pct: 150\n"), 0o644))

	_, err := LoadYAML(path)
	suite.Error(err)
}

func (suite *ParamsTestSuite) TestLoadYAMLMissingFile() {
	_, err := LoadYAML(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.Error(err)
}
