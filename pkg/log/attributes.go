// Standard attribute keys used across the pipeline's log records.
//
// Keys follow a hierarchical naming convention ("stage.name",
// "data.rows") so records from different stages can be filtered and
// compared in log analysis.

package log

// Stage and component context.
const (
	// StageKey names the pipeline stage emitting the record.
	// Values: "load", "normalize", "target", "impute", "train",
	// "predict", "format".
	StageKey = "stage.name"

	// ComponentKey identifies the package performing an operation.
	// Examples: "ensemble", "preprocessing", "dataset"
	ComponentKey = "ml.component"

	// OperationKey names the estimator operation being performed.
	// Values: "fit", "predict", "transform", "score".
	OperationKey = "ml.operation"

	// EstimatorKey identifies the estimator type.
	// Examples: "ForestRegressor", "MeanImputer"
	EstimatorKey = "model.name"
)

// Data shape.
const (
	// RowsKey is the number of rows in the table being processed.
	RowsKey = "data.rows"

	// ColumnsKey is the number of columns in the table being processed.
	ColumnsKey = "data.columns"

	// FeaturesKey is the number of feature columns used for training.
	FeaturesKey = "data.features"

	// ImputedKey is the number of cells replaced by the imputer.
	ImputedKey = "data.imputed_cells"
)

// Training and selection.
const (
	// FoldsKey is the cross-validation fold count.
	FoldsKey = "cv.folds"

	// CandidateKey is the hyperparameter value being evaluated.
	CandidateKey = "cv.candidate_mtry"

	// BestCandidateKey is the selected hyperparameter value.
	BestCandidateKey = "cv.best_mtry"

	// RMSEKey is a root-mean-squared-error value on the log target.
	RMSEKey = "metrics.rmse"

	// TreesKey is the number of trees in a fitted forest.
	TreesKey = "model.trees"

	// SeedKey is the random seed governing the run.
	SeedKey = "run.seed"

	// DurationMsKey is the wall time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Prediction output.
const (
	// PredsKey is the number of predictions produced.
	PredsKey = "preds.count"
)
