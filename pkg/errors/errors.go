// Package errors provides structured error handling for the pipeline.
// Every failure the pipeline can hit (schema mismatch, impossible
// imputation, bad cross-validation setup, shape mismatch at inference)
// has a typed error carrying the failing column or dimension, with a
// stack trace attached via cockroachdb/errors.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// NotFittedError is returned when Predict or Transform is called on an
// estimator whose Fit has not completed.
type NotFittedError struct {
	EstimatorName string
	Method        string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("houseprice: %s: estimator is not fitted. Call Fit() before %s()", e.EstimatorName, e.Method)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("estimator", e.EstimatorName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(estimator, method string) error {
	err := &NotFittedError{EstimatorName: estimator, Method: method}
	return errors.WithStack(err)
}

// DimensionError reports a shape mismatch between an input and what the
// operation expects. Axis 0 is rows, axis 1 is columns/features. A
// feature-count mismatch at Predict time means the inference table does
// not match the schema the model was trained on.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("houseprice: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// SchemaError reports a required column that is absent from an input
// table, or present with the wrong kind. Detected before any row is
// processed; the pipeline never partially applies a stage.
type SchemaError struct {
	Op     string
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("houseprice: %s: column %q: %s", e.Op, e.Column, e.Reason)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *SchemaError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Str("reason", e.Reason).
		Str("type", "SchemaError")
}

// NewSchemaError creates a SchemaError with a stack trace.
func NewSchemaError(op, column, reason string) error {
	err := &SchemaError{Op: op, Column: column, Reason: reason}
	return errors.WithStack(err)
}

// ImputationError reports a designated column whose mean cannot be
// computed because it has zero observed values. The imputer fails
// loudly instead of filling a sentinel.
type ImputationError struct {
	Column string
}

func (e *ImputationError) Error() string {
	return fmt.Sprintf("houseprice: cannot impute column %q: no observed values", e.Column)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *ImputationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Str("type", "ImputationError")
}

// NewImputationError creates an ImputationError with a stack trace.
func NewImputationError(column string) error {
	err := &ImputationError{Column: column}
	return errors.WithStack(err)
}

// CVConfigError reports an unusable cross-validation setup, detected
// before any training starts.
type CVConfigError struct {
	Folds   int
	Samples int
	Reason  string
}

func (e *CVConfigError) Error() string {
	return fmt.Sprintf("houseprice: cross-validation misconfigured (folds=%d, samples=%d): %s", e.Folds, e.Samples, e.Reason)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *CVConfigError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("folds", e.Folds).
		Int("samples", e.Samples).
		Str("reason", e.Reason).
		Str("type", "CVConfigError")
}

// NewCVConfigError creates a CVConfigError with a stack trace.
func NewCVConfigError(folds, samples int, reason string) error {
	err := &CVConfigError{Folds: folds, Samples: samples, Reason: reason}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is invalid for the
// operation, such as an empty vector passed to a metric.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("houseprice: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to an error.
func WithStack(err error) error {
	return errors.WithStack(err)
}

var (
	// ErrEmptyData is returned when an operation receives no rows.
	ErrEmptyData = New("empty data")
)
