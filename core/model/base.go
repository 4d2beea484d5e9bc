// Package model provides the estimator base shared by every trainable
// component of the pipeline.
package model

// EstimatorState tracks whether an estimator has been fitted.
type EstimatorState int

const (
	// NotFitted is the initial state before Fit has been called.
	NotFitted EstimatorState = iota
	// Fitted means Fit completed successfully.
	Fitted
)

// BaseEstimator is embedded by estimators (imputer, forest regressor)
// to track fitted state. Predict and Transform must refuse to run on a
// not-fitted estimator.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether Fit has completed on this estimator.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to the not-fitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
