package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/mizuiro/houseprice/dataset"
	"github.com/mizuiro/houseprice/ensemble"
	"github.com/mizuiro/houseprice/pkg/errors"
	"github.com/mizuiro/houseprice/pkg/log"
	"github.com/mizuiro/houseprice/preprocessing"
)

// Result is the output of one pipeline run: identifiers and predicted
// prices aligned by position, plus the evidence behind the model
// selection.
type Result struct {
	IDs    []float64
	Prices []float64

	CVTable         ensemble.CVTable
	BestMaxFeatures int
	BestRMSE        float64
	Importance      []float64
}

// Run executes the stages in order on the configured inputs. Every
// stage consumes the previous stage's table and produces a new one;
// the first failure aborts the run with the stage and the offending
// column or condition in the error. Cancellation is honored between
// stages.
func Run(ctx context.Context, cfg *Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = log.GetLogger()
	}

	// Load.
	labeled, err := dataset.ReadCSV(cfg.TrainPath)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: load stage")
	}
	unlabeled, err := dataset.ReadCSV(cfg.TestPath)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: load stage")
	}
	logger.Info("tables loaded",
		log.StageKey, "load",
		log.RowsKey, labeled.NumRows(),
		log.ColumnsKey, len(labeled.Columns()))

	// Normalize.
	labeled, err = preprocessing.NewLabeledSelector().Apply(labeled)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: normalize stage")
	}
	unlabeled, err = preprocessing.NewUnlabeledSelector().Apply(unlabeled)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: normalize stage")
	}
	logger.Info("columns normalized",
		log.StageKey, "normalize",
		log.FeaturesKey, len(preprocessing.FeatureColumns))

	// Target transform, labeled table only.
	labeled, err = preprocessing.NewLogTarget().Transform(labeled)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: target stage")
	}
	logger.Info("log target derived", log.StageKey, "target")

	// Impute, each table from its own statistics.
	labeled, labeledFilled, err := impute(labeled)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: impute stage")
	}
	unlabeled, unlabeledFilled, err := impute(unlabeled)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: impute stage")
	}
	logger.Info("missing values imputed",
		log.StageKey, "impute",
		log.ImputedKey, labeledFilled+unlabeledFilled)

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "pipeline: canceled")
	}

	// Train: cross-validated grid search, then the final refit.
	trainX, err := labeled.Matrix(preprocessing.FeatureColumns)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: train stage")
	}
	trainY, err := labeled.Matrix([]string{preprocessing.TargetColumn})
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: train stage")
	}

	search := ensemble.NewGridSearchCV(cfg.MtryCandidates(), cfg.Folds, cfg.Seed)
	search.NumTrees = cfg.NumTrees
	search.Logger = logger

	start := time.Now()
	selected, err := search.Run(trainX, trainY)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: train stage")
	}
	logger.Info("model selected",
		log.StageKey, "train",
		log.BestCandidateKey, selected.BestMaxFeatures,
		log.RMSEKey, selected.BestRMSE,
		log.FoldsKey, cfg.Folds,
		log.TreesKey, cfg.NumTrees,
		log.SeedKey, cfg.Seed,
		log.DurationMsKey, time.Since(start).Milliseconds())

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "pipeline: canceled")
	}

	// Predict on the unlabeled table and invert the log transform.
	testX, err := unlabeled.Matrix(preprocessing.FeatureColumns)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: predict stage")
	}
	preds, err := selected.Model.Predict(testX)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: predict stage")
	}
	rows, _ := preds.Dims()
	logPreds := make([]float64, rows)
	for i := 0; i < rows; i++ {
		logPreds[i] = preds.At(i, 0)
	}
	prices := preprocessing.NewLogTarget().InverseAll(logPreds)
	logger.Info("predictions produced",
		log.StageKey, "predict",
		log.PredsKey, len(prices))

	// Format the submission.
	ids, err := unlabeled.Column(preprocessing.IDColumn)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: format stage")
	}
	if cfg.SubmissionPath != "" {
		if err := dataset.WriteSubmissionFile(cfg.SubmissionPath, ids, prices); err != nil {
			return nil, errors.Wrap(err, "pipeline: format stage")
		}
		logger.Info("submission written",
			log.StageKey, "format",
			log.PredsKey, len(prices))
	}

	return &Result{
		IDs:             ids,
		Prices:          prices,
		CVTable:         selected.Table,
		BestMaxFeatures: selected.BestMaxFeatures,
		BestRMSE:        selected.BestRMSE,
		Importance:      selected.Model.FeatureImportance(),
	}, nil
}

// impute fills the designated feature columns from the frame's own
// per-column means and reports how many cells were filled.
func impute(f *dataset.Frame) (*dataset.Frame, int, error) {
	filled := 0
	for _, name := range preprocessing.FeatureColumns {
		n, err := f.MissingCount(name)
		if err != nil {
			return nil, 0, err
		}
		filled += n
	}

	imputer := preprocessing.NewMeanImputer(preprocessing.FeatureColumns)
	out, err := imputer.FitTransform(f)
	if err != nil {
		return nil, 0, err
	}
	return out, filled, nil
}
