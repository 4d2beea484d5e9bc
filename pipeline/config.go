// Package pipeline wires the stages together: load, normalize, derive
// the log target, impute, cross-validated grid search, predict, and
// format the submission. Control flow is strictly linear and the first
// error halts the run, naming the failing stage.
package pipeline

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/mizuiro/houseprice/pkg/errors"
)

// envPrefix namespaces the environment variables that override config
// values, e.g. HOUSEPRICE_FOLDS=5.
const envPrefix = "HOUSEPRICE_"

// Config holds one run's parameters. A single seed governs fold
// partitioning and every tree grown, so a run is reproducible end to
// end.
type Config struct {
	// Input tables.
	TrainPath string `koanf:"train_path" validate:"required"`
	TestPath  string `koanf:"test_path" validate:"required"`

	// SubmissionPath is where the Id,SalePrice table is written.
	// Empty disables the file and the predictions stay in memory.
	SubmissionPath string `koanf:"submission_path"`

	// Seed is the single fixed seed for all stochastic behavior.
	Seed int64 `koanf:"seed"`

	// Folds is the cross-validation fold count.
	Folds int `koanf:"folds" validate:"min=2"`

	// MtryMin and MtryMax bound the inclusive search range for
	// features considered per split.
	MtryMin int `koanf:"mtry_min" validate:"min=1"`
	MtryMax int `koanf:"mtry_max" validate:"gtefield=MtryMin"`

	// NumTrees is the forest size for every candidate and the final
	// refit.
	NumTrees int `koanf:"num_trees" validate:"min=1"`

	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
}

// defaultConfig returns the defaults for a run: 10-fold CV and the
// mtry search range 2 through 10 inclusive. The range follows the
// configuration the workflow actually ran with, not the narrower 2-5
// range its prose described.
func defaultConfig() *Config {
	return &Config{
		TrainPath:      "data/train.csv",
		TestPath:       "data/test.csv",
		SubmissionPath: "",
		Seed:           42,
		Folds:          10,
		MtryMin:        2,
		MtryMax:        10,
		NumTrees:       500,
		LogLevel:       "info",
	}
}

// MtryCandidates enumerates the inclusive search range.
func (c *Config) MtryCandidates() []int {
	candidates := make([]int, 0, c.MtryMax-c.MtryMin+1)
	for v := c.MtryMin; v <= c.MtryMax; v++ {
		candidates = append(candidates, v)
	}
	return candidates
}

// LoadConfig layers configuration sources: struct defaults, then an
// optional YAML file, then HOUSEPRICE_-prefixed environment variables.
// The merged result is validated before use.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "pipeline: loading config defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "pipeline: config file %s", path)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "pipeline: parsing config file %s", path)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(err, "pipeline: loading environment overrides")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "pipeline: unmarshaling config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "pipeline: invalid configuration")
	}
	return nil
}
