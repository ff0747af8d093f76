package backtest

import (
	"os"

	"github.com/quantfold/pickback/internal/types"
	"github.com/quantfold/pickback/pkg/errors"
	"gopkg.in/yaml.v3"
)

// WriteResultYAML writes a run summary to a YAML file. The file mirrors the
// wire field names, so it round-trips through the same types the API serves.
func WriteResultYAML(path string, result types.BacktestResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to marshal result", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "failed to write result to %s", path)
	}

	return nil
}
