package preprocessing

import (
	"fmt"
	"math"

	"github.com/mizuiro/houseprice/dataset"
	"github.com/mizuiro/houseprice/pkg/errors"
)

// LogTarget derives the training target logSalePrice = ln(SalePrice+1)
// on the labeled table. The shift by one keeps a zero price finite.
// Inverse applies exp(v)-1, and must be used symmetrically on raw model
// output at prediction time; the two compose to the identity within
// floating-point tolerance for any price >= 0.
type LogTarget struct {
	Source string
	Name   string
}

// NewLogTarget transforms SalePrice into logSalePrice.
func NewLogTarget() *LogTarget {
	return &LogTarget{Source: PriceColumn, Name: TargetColumn}
}

// Transform appends the log target column to a labeled frame. A missing
// or negative price is a defect in the labeled table and fails the run.
func (t *LogTarget) Transform(f *dataset.Frame) (*dataset.Frame, error) {
	prices, err := f.Column(t.Source)
	if err != nil {
		return nil, err
	}

	target := make([]float64, len(prices))
	for i, p := range prices {
		if math.IsNaN(p) {
			return nil, errors.NewValueError("LogTarget.Transform",
				fmt.Sprintf("missing %s at row %d", t.Source, i))
		}
		if p < 0 {
			return nil, errors.NewValueError("LogTarget.Transform",
				fmt.Sprintf("negative %s %g at row %d", t.Source, p, i))
		}
		target[i] = math.Log1p(p)
	}
	return f.With(t.Name, target)
}

// Inverse maps a predicted log target back to the price scale.
func (t *LogTarget) Inverse(v float64) float64 {
	return math.Expm1(v)
}

// InverseAll maps a slice of predicted log targets back to the price
// scale, preserving order. Negative results are passed through as-is;
// clamping policy belongs to the downstream consumer.
func (t *LogTarget) InverseAll(preds []float64) []float64 {
	out := make([]float64, len(preds))
	for i, v := range preds {
		out[i] = t.Inverse(v)
	}
	return out
}
