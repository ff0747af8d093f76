// Package params handles the strategy-parameter file surface: JSON schema
// generation for config tooling and YAML decoding for parameter files.
package params

import (
	"encoding/json"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/quantfold/pickback/internal/types"
	"github.com/quantfold/pickback/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Schema returns the JSON schema for StrategyParameters, suitable for
// editor integration and external validation of parameter files.
func Schema() (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(types.StrategyParameters{})

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// LoadYAML reads strategy parameters from a YAML file, starting from the
// defaults so partial files work, and validates the merged result.
func LoadYAML(path string) (types.StrategyParameters, error) {
	parameters := types.DefaultParameters()

	data, err := os.ReadFile(path)
	if err != nil {
		return parameters, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read parameter file %s", path)
	}

	if err := yaml.Unmarshal(data, &parameters); err != nil {
		return parameters, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse parameter file %s", path)
	}

	if err := parameters.Validate(); err != nil {
		return parameters, err
	}

	return parameters, nil
}
