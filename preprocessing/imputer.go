package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/mizuiro/houseprice/core/model"
	"github.com/mizuiro/houseprice/dataset"
	"github.com/mizuiro/houseprice/pkg/errors"
)

// MeanImputer replaces missing entries in designated numeric columns
// with the per-column arithmetic mean of the observed values in the
// frame it was fitted on. Columns outside the designated set are left
// untouched even when they contain missing values.
//
// The pipeline fits a separate imputer per table, so the labeled and
// unlabeled tables are filled from their own statistics. The two means
// are not guaranteed equal; this mirrors the observed behavior of the
// workflow and is a known train/inference skew, not an oversight.
type MeanImputer struct {
	model.BaseEstimator

	// Columns designates which columns are imputed.
	Columns []string

	// Means holds the fitted per-column statistic.
	Means map[string]float64
}

// NewMeanImputer designates the columns to impute.
func NewMeanImputer(columns []string) *MeanImputer {
	return &MeanImputer{
		Columns: append([]string(nil), columns...),
	}
}

// Fit computes the mean of each designated column over its observed
// values. A designated column with zero observed values cannot yield a
// statistic and fails loudly, naming the column.
func (m *MeanImputer) Fit(f *dataset.Frame) error {
	means := make(map[string]float64, len(m.Columns))
	for _, name := range m.Columns {
		col, err := f.Column(name)
		if err != nil {
			return err
		}
		observed := make([]float64, 0, len(col))
		for _, v := range col {
			if !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			return errors.NewImputationError(name)
		}
		means[name] = stat.Mean(observed, nil)
	}
	m.Means = means
	m.SetFitted()
	return nil
}

// Transform returns a frame with missing entries in the designated
// columns replaced by the fitted means. Observed entries are unchanged.
func (m *MeanImputer) Transform(f *dataset.Frame) (*dataset.Frame, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MeanImputer", "Transform")
	}

	out := f
	for _, name := range m.Columns {
		col, err := out.Column(name)
		if err != nil {
			return nil, err
		}
		changed := false
		for i, v := range col {
			if math.IsNaN(v) {
				col[i] = m.Means[name]
				changed = true
			}
		}
		if !changed {
			continue
		}
		out, err = out.With(name, col)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FitTransform fits on f and transforms it in one call.
func (m *MeanImputer) FitTransform(f *dataset.Frame) (*dataset.Frame, error) {
	if err := m.Fit(f); err != nil {
		return nil, err
	}
	return m.Transform(f)
}
