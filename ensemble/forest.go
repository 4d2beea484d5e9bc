package ensemble

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/mizuiro/houseprice/core/model"
	"github.com/mizuiro/houseprice/metrics"
	"github.com/mizuiro/houseprice/pkg/errors"
)

// ForestRegressor averages bagged regression trees. Each tree is grown
// on a bootstrap sample with MaxFeatures candidate features per split,
// seeded deterministically from Seed so a run is reproducible.
type ForestRegressor struct {
	model.BaseEstimator

	// Hyperparameters
	NumTrees       int
	MaxFeatures    int // candidate features per split; <=0 means nFeatures/3
	MaxDepth       int // 0 means no limit
	MinSamplesLeaf int
	Seed           int64

	trees     []*regTree
	nFeatures int
}

// NewForestRegressor creates a forest with the defaults used by the
// pipeline: 500 trees, unlimited depth, single-sample leaves.
func NewForestRegressor() *ForestRegressor {
	return &ForestRegressor{
		NumTrees:       500,
		MaxFeatures:    0,
		MaxDepth:       0,
		MinSamplesLeaf: 1,
		Seed:           42,
	}
}

// WithNumTrees sets the number of trees.
func (f *ForestRegressor) WithNumTrees(n int) *ForestRegressor {
	f.NumTrees = n
	return f
}

// WithMaxFeatures sets the candidate features per split.
func (f *ForestRegressor) WithMaxFeatures(m int) *ForestRegressor {
	f.MaxFeatures = m
	return f
}

// WithSeed sets the random seed.
func (f *ForestRegressor) WithSeed(seed int64) *ForestRegressor {
	f.Seed = seed
	return f
}

// Fit grows the forest on X and the one-column target y.
func (f *ForestRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "ForestRegressor.Fit")

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 {
		return errors.Wrap(errors.ErrEmptyData, "ForestRegressor.Fit")
	}
	if rows != yRows {
		return errors.NewDimensionError("ForestRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("ForestRegressor.Fit", 1, yCols, 1)
	}
	if f.NumTrees <= 0 {
		return errors.NewValueError("ForestRegressor.Fit", "NumTrees must be positive")
	}

	f.nFeatures = cols

	// Row-major copies: tree growth reads features row by row.
	xRows := make([][]float64, rows)
	yVals := make([]float64, rows)
	for i := 0; i < rows; i++ {
		xRows[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			xRows[i][j] = X.At(i, j)
		}
		yVals[i] = y.At(i, 0)
	}

	params := treeParams{
		MaxFeatures:    f.MaxFeatures,
		MaxDepth:       f.MaxDepth,
		MinSamplesLeaf: f.MinSamplesLeaf,
	}
	if params.MaxFeatures <= 0 {
		params.MaxFeatures = max(1, cols/3)
	}
	if params.MinSamplesLeaf <= 0 {
		params.MinSamplesLeaf = 1
	}

	f.trees = make([]*regTree, f.NumTrees)

	var wg sync.WaitGroup
	for t := 0; t < f.NumTrees; t++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			// One generator per tree keeps trees independent and the
			// whole fit deterministic for a fixed seed.
			rng := rand.New(rand.NewPCG(uint64(f.Seed), uint64(f.Seed)+uint64(idx)))

			indices := make([]int, rows)
			for i := range indices {
				indices[i] = rng.IntN(rows)
			}
			f.trees[idx] = growTree(xRows, yVals, indices, params, rng)
		}(t)
	}
	wg.Wait()

	f.SetFitted()
	return nil
}

// Predict returns the forest mean for each row of X, in input order.
func (f *ForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("ForestRegressor", "Predict")
	}

	rows, cols := X.Dims()
	if cols != f.nFeatures {
		return nil, errors.NewDimensionError("ForestRegressor.Predict", f.nFeatures, cols, 1)
	}

	preds := mat.NewDense(rows, 1, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = X.At(i, j)
		}
		var sum float64
		for _, tree := range f.trees {
			sum += tree.predictOne(row)
		}
		preds.Set(i, 0, sum/float64(len(f.trees)))
	}
	return preds, nil
}

// Score returns the coefficient of determination R^2 on X, y.
func (f *ForestRegressor) Score(X, y mat.Matrix) (float64, error) {
	if !f.IsFitted() {
		return 0, errors.NewNotFittedError("ForestRegressor", "Score")
	}
	preds, err := f.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(columnVec(y), columnVec(preds))
}

// GetRMSE returns the root mean squared error on X, y.
func (f *ForestRegressor) GetRMSE(X, y mat.Matrix) (float64, error) {
	if !f.IsFitted() {
		return 0, errors.NewNotFittedError("ForestRegressor", "GetRMSE")
	}
	preds, err := f.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.RMSE(columnVec(y), columnVec(preds))
}

// FeatureImportance returns each feature's share of the total split
// gain across all trees. The shares sum to 1 for a forest that made at
// least one split.
func (f *ForestRegressor) FeatureImportance() []float64 {
	if !f.IsFitted() {
		return nil
	}
	totals := make([]float64, f.nFeatures)
	var sum float64
	for _, tree := range f.trees {
		for j, g := range tree.gains {
			totals[j] += g
			sum += g
		}
	}
	if sum > 0 {
		for j := range totals {
			totals[j] /= sum
		}
	}
	return totals
}

// NumFeatures returns the feature count the forest was trained on.
func (f *ForestRegressor) NumFeatures() int {
	return f.nFeatures
}

// columnVec copies the first column of m into a dense vector.
func columnVec(m mat.Matrix) *mat.VecDense {
	rows, _ := m.Dims()
	v := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}
