// Package preprocessing implements the data preparation stages: column
// normalization and projection, the log target transform, and per-column
// mean imputation. Each stage consumes a Frame and produces a new one.
package preprocessing

import (
	"github.com/mizuiro/houseprice/dataset"
)

const (
	// IDColumn identifies a row across input and submission tables.
	IDColumn = "Id"
	// PriceColumn is the raw sale price on the labeled table.
	PriceColumn = "SalePrice"
	// TargetColumn is the log-transformed training target.
	TargetColumn = "logSalePrice"
)

// columnRenames maps source columns whose names are not valid bare
// identifiers (leading digits) to identifier-safe names.
var columnRenames = map[string]string{
	"1stFlrSF":  "FirstFlrSF",
	"2ndFlrSF":  "SecondFlrSF",
	"3SsnPorch": "ThreeSsnPorch",
}

// FeatureColumns is the fixed set of numeric feature columns used for
// training and inference, in model-formula order. The two renamed
// floor-area columns and the porch column appear under their
// identifier-safe names.
var FeatureColumns = []string{
	"MSSubClass",
	"LotFrontage",
	"LotArea",
	"OverallQual",
	"OverallCond",
	"YearBuilt",
	"YearRemodAdd",
	"MasVnrArea",
	"BsmtFinSF1",
	"BsmtFinSF2",
	"BsmtUnfSF",
	"TotalBsmtSF",
	"FirstFlrSF",
	"SecondFlrSF",
	"LowQualFinSF",
	"GrLivArea",
	"BsmtFullBath",
	"BsmtHalfBath",
	"FullBath",
	"HalfBath",
	"BedroomAbvGr",
	"KitchenAbvGr",
	"TotRmsAbvGrd",
	"Fireplaces",
	"GarageYrBlt",
	"GarageCars",
	"GarageArea",
	"WoodDeckSF",
	"OpenPorchSF",
	"EnclosedPorch",
	"ThreeSsnPorch",
	"ScreenPorch",
	"PoolArea",
	"MiscVal",
	"MoSold",
	"YrSold",
}

// ColumnSelector normalizes column names and projects a raw table down
// to the identifier column plus the designated numeric features,
// discarding every categorical/text column. When Target is non-empty
// (the labeled table) that column is kept as well, so the output
// column set is identical between the two tables except for the target.
type ColumnSelector struct {
	// Target is the name of the target column to retain, or "" for
	// the unlabeled table.
	Target string
}

// NewLabeledSelector keeps the raw price column for the training table.
func NewLabeledSelector() *ColumnSelector {
	return &ColumnSelector{Target: PriceColumn}
}

// NewUnlabeledSelector projects the test table, which has no target.
func NewUnlabeledSelector() *ColumnSelector {
	return &ColumnSelector{}
}

// Apply renames and projects the frame. A required source column that
// is absent, or present as a text column, surfaces as a schema error
// before any downstream stage runs.
func (s *ColumnSelector) Apply(f *dataset.Frame) (*dataset.Frame, error) {
	renamed := f.Rename(columnRenames)

	keep := make([]string, 0, len(FeatureColumns)+2)
	keep = append(keep, IDColumn)
	keep = append(keep, FeatureColumns...)
	if s.Target != "" {
		keep = append(keep, s.Target)
	}
	return renamed.Select(keep)
}
