package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "data/train.csv", cfg.TrainPath)
	assert.Equal(t, "data/test.csv", cfg.TestPath)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 10, cfg.Folds)
	assert.Equal(t, 2, cfg.MtryMin)
	assert.Equal(t, 10, cfg.MtryMax)
	assert.Equal(t, 500, cfg.NumTrees)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "train_path: /data/my-train.csv\nfolds: 5\nmtry_max: 6\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/my-train.csv", cfg.TrainPath)
	assert.Equal(t, 5, cfg.Folds)
	assert.Equal(t, 6, cfg.MtryMax)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched keys keep their defaults.
	assert.Equal(t, "data/test.csv", cfg.TestPath)
	assert.Equal(t, 500, cfg.NumTrees)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("folds: 5\n"), 0o644))

	t.Setenv("HOUSEPRICE_FOLDS", "7")
	t.Setenv("HOUSEPRICE_NUM_TREES", "25")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Folds)
	assert.Equal(t, 25, cfg.NumTrees)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file")
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty train path", func(c *Config) { c.TrainPath = "" }},
		{"single fold", func(c *Config) { c.Folds = 1 }},
		{"inverted mtry range", func(c *Config) { c.MtryMin = 8; c.MtryMax = 3 }},
		{"zero trees", func(c *Config) { c.NumTrees = 0 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMtryCandidates(t *testing.T) {
	cfg := defaultConfig()
	cfg.MtryMin = 2
	cfg.MtryMax = 5
	assert.Equal(t, []int{2, 3, 4, 5}, cfg.MtryCandidates())
}
