package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizuiro/houseprice/pkg/log"
	"github.com/mizuiro/houseprice/preprocessing"
)

// rawColumnName maps the identifier-safe feature names back to the raw
// header names the input files use.
func rawColumnName(name string) string {
	switch name {
	case "FirstFlrSF":
		return "1stFlrSF"
	case "SecondFlrSF":
		return "2ndFlrSF"
	case "ThreeSsnPorch":
		return "3SsnPorch"
	}
	return name
}

// writeFixture renders a synthetic input table with the full raw
// schema: Id, every feature column under its raw name, a categorical
// column that must be dropped, and optionally SalePrice. LotFrontage
// gets an NA cell every fifth row to exercise imputation.
func writeFixture(t *testing.T, path string, rows int, labeled bool, idStart int) {
	t.Helper()

	header := []string{"Id"}
	for _, name := range preprocessing.FeatureColumns {
		header = append(header, rawColumnName(name))
	}
	header = append(header, "Neighborhood")
	if labeled {
		header = append(header, "SalePrice")
	}

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteString("\n")

	for i := 0; i < rows; i++ {
		cells := []string{fmt.Sprintf("%d", idStart+i)}
		for j, name := range preprocessing.FeatureColumns {
			if name == "LotFrontage" && i%5 == 0 {
				cells = append(cells, "NA")
				continue
			}
			cells = append(cells, fmt.Sprintf("%d", (i*(j+3))%97+1))
		}
		cells = append(cells, []string{"NAmes", "CollgCr", "OldTown"}[i%3])
		if labeled {
			// Price driven by the first few features so the forest
			// has signal to find.
			price := 50000 + 120*((i*3)%97+1) + 90*((i*4)%97+1)
			cells = append(cells, fmt.Sprintf("%d", price))
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}

	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func testConfig(t *testing.T, dir string) *Config {
	t.Helper()
	cfg := defaultConfig()
	cfg.TrainPath = filepath.Join(dir, "train.csv")
	cfg.TestPath = filepath.Join(dir, "test.csv")
	cfg.SubmissionPath = filepath.Join(dir, "submission.csv")
	cfg.Folds = 3
	cfg.MtryMin = 2
	cfg.MtryMax = 3
	cfg.NumTrees = 10
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	writeFixture(t, cfg.TrainPath, 60, true, 1)
	writeFixture(t, cfg.TestPath, 20, false, 1461)

	logger, buffer := log.NewTestLogger(slog.LevelInfo)
	result, err := Run(context.Background(), cfg, logger)
	require.NoError(t, err)

	// One prediction per test row, identifiers in input order.
	require.Len(t, result.IDs, 20)
	require.Len(t, result.Prices, 20)
	for i, id := range result.IDs {
		assert.Equal(t, float64(1461+i), id)
	}
	for i, p := range result.Prices {
		assert.False(t, math.IsNaN(p), "prediction %d is NaN", i)
	}

	// Selection evidence covers the whole candidate range.
	require.Len(t, result.CVTable, 2)
	assert.GreaterOrEqual(t, result.BestMaxFeatures, 2)
	assert.LessOrEqual(t, result.BestMaxFeatures, 3)
	assert.Greater(t, result.BestRMSE, 0.0)
	require.Len(t, result.Importance, len(preprocessing.FeatureColumns))

	// Submission file: header plus one aligned row per test record.
	data, err := os.ReadFile(cfg.SubmissionPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 21)
	assert.Equal(t, "Id,SalePrice", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1461,"))
	assert.True(t, strings.HasPrefix(lines[20], "1480,"))

	// Each stage reported progress.
	for _, stage := range []string{"load", "normalize", "target", "impute", "train", "predict", "format"} {
		found := false
		records, err := log.Records(buffer)
		require.NoError(t, err)
		for _, r := range records {
			if r[log.StageKey] == stage {
				found = true
				break
			}
		}
		assert.True(t, found, "no log record for stage %q", stage)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunDeterministicUnderSeed(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.SubmissionPath = ""
	writeFixture(t, cfg.TrainPath, 45, true, 1)
	writeFixture(t, cfg.TestPath, 10, false, 1461)

	a, err := Run(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, a.BestMaxFeatures, b.BestMaxFeatures)
	assert.Equal(t, a.Prices, b.Prices)
}

func TestRunCanceledContext(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.SubmissionPath = ""
	writeFixture(t, cfg.TrainPath, 30, true, 1)
	writeFixture(t, cfg.TestPath, 5, false, 1461)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canceled")
}

func TestRunMissingColumnFailsFast(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.SubmissionPath = ""

	// Train table lacking GrLivArea entirely.
	writeFixture(t, cfg.TestPath, 10, false, 1461)
	content := "Id,SalePrice\n1,100000\n2,150000\n"
	require.NoError(t, os.WriteFile(cfg.TrainPath, []byte(content), 0o644))

	_, err := Run(context.Background(), cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "normalize stage")
}

func TestRunFoldsExceedRows(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.SubmissionPath = ""
	cfg.Folds = 30
	writeFixture(t, cfg.TrainPath, 12, true, 1)
	writeFixture(t, cfg.TestPath, 5, false, 1461)

	_, err := Run(context.Background(), cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "train stage")
	assert.Contains(t, err.Error(), "fold count exceeds sample count")
}
