// Package houseprice implements a reproducible house-price regression
// workflow over tabular CSV data.
//
// The pipeline loads a labeled training table and an unlabeled test
// table, normalizes both to a fixed set of numeric feature columns,
// derives a log-transformed sale-price target, imputes missing cells
// from per-column means, selects the number of features considered per
// split with a k-fold cross-validated grid search over a bagged
// regression forest, and writes an Id,SalePrice submission file with
// predictions mapped back to the price scale.
//
// Packages:
//
//   - dataset: columnar tables, CSV input, submission output
//   - preprocessing: column selection, log target, mean imputation
//   - ensemble: regression forest, k-fold splitting, grid search
//   - metrics: regression scoring (MSE, RMSE, MAE, R2)
//   - pipeline: stage orchestration and configuration
//   - cmd/houseprice: the command-line entry point
//
// A single configured seed drives fold shuffling and every tree grown,
// so two runs over the same inputs produce identical submissions.
package houseprice
