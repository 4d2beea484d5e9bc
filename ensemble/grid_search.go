package ensemble

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/mizuiro/houseprice/metrics"
	"github.com/mizuiro/houseprice/pkg/errors"
	"github.com/mizuiro/houseprice/pkg/log"
)

// CandidateScore is the cross-validated error of one hyperparameter
// candidate: per-fold RMSE on the held-out rows, and their mean and
// standard deviation.
type CandidateScore struct {
	MaxFeatures int
	FoldRMSE    []float64
	MeanRMSE    float64
	StdRMSE     float64
}

// CVTable is the per-candidate error table the grid search returns for
// diagnostic inspection.
type CVTable []CandidateScore

// String renders the table one candidate per line.
func (t CVTable) String() string {
	var b strings.Builder
	for _, c := range t {
		fmt.Fprintf(&b, "mtry=%-2d  rmse=%.6f (+/- %.6f)\n", c.MaxFeatures, c.MeanRMSE, c.StdRMSE)
	}
	return b.String()
}

// GridSearchResult holds the selected model and the evidence for the
// selection.
type GridSearchResult struct {
	Model           *ForestRegressor
	Table           CVTable
	BestMaxFeatures int
	BestRMSE        float64
}

// GridSearchCV selects the features-per-split hyperparameter by k-fold
// cross-validated RMSE, then refits one final forest on all labeled
// rows with the winning value. Ties go to the smaller candidate, so
// selection is deterministic for a fixed seed and fold partition.
type GridSearchCV struct {
	// Candidates are the features-per-split values to evaluate,
	// ascending.
	Candidates []int

	// Folds is the cross-validation fold count.
	Folds int

	// Seed governs fold shuffling and every tree grown during the
	// search and the final refit.
	Seed int64

	// Forest growth parameters shared by all candidates.
	NumTrees       int
	MaxDepth       int
	MinSamplesLeaf int

	// Logger receives per-candidate progress events; nil disables.
	Logger *slog.Logger
}

// NewGridSearchCV creates a search over candidates with k folds.
func NewGridSearchCV(candidates []int, folds int, seed int64) *GridSearchCV {
	sorted := append([]int(nil), candidates...)
	sort.Ints(sorted)
	return &GridSearchCV{
		Candidates:     sorted,
		Folds:          folds,
		Seed:           seed,
		NumTrees:       500,
		MaxDepth:       0,
		MinSamplesLeaf: 1,
	}
}

// Run evaluates every candidate on every fold and returns the refitted
// winner. No held-out row of a fold is ever seen by that fold's
// training; misconfigured folds fail before any tree is grown.
func (gs *GridSearchCV) Run(X, y mat.Matrix) (*GridSearchResult, error) {
	if len(gs.Candidates) == 0 {
		return nil, errors.NewValueError("GridSearchCV.Run", "no hyperparameter candidates")
	}

	rows, _ := X.Dims()
	folds, err := NewKFold(gs.Folds, true, gs.Seed).Split(rows)
	if err != nil {
		return nil, err
	}

	table := make(CVTable, len(gs.Candidates))
	for ci, candidate := range gs.Candidates {
		scores, err := gs.scoreCandidate(X, y, folds, candidate)
		if err != nil {
			return nil, err
		}
		table[ci] = scores
		if gs.Logger != nil {
			gs.Logger.Info("candidate evaluated",
				log.CandidateKey, candidate,
				log.RMSEKey, scores.MeanRMSE,
				log.FoldsKey, len(folds))
		}
	}

	best := table[0]
	for _, c := range table[1:] {
		if c.MeanRMSE < best.MeanRMSE {
			best = c
		}
	}

	final := gs.newForest(best.MaxFeatures)
	if err := final.Fit(X, y); err != nil {
		return nil, errors.Wrap(err, "GridSearchCV.Run: final refit")
	}

	return &GridSearchResult{
		Model:           final,
		Table:           table,
		BestMaxFeatures: best.MaxFeatures,
		BestRMSE:        best.MeanRMSE,
	}, nil
}

// scoreCandidate trains one forest per fold and evaluates RMSE on the
// held-out rows. Folds run concurrently; each fold's forest is seeded
// identically so candidates are compared on the same footing.
func (gs *GridSearchCV) scoreCandidate(X, y mat.Matrix, folds []Fold, candidate int) (CandidateScore, error) {
	foldRMSE := make([]float64, len(folds))
	foldErrs := make([]error, len(folds))

	var wg sync.WaitGroup
	for fi := range folds {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			fold := folds[idx]
			trainX, trainY := extractRows(X, y, fold.TrainIndices)
			testX, testY := extractRows(X, y, fold.TestIndices)

			forest := gs.newForest(candidate)
			if err := forest.Fit(trainX, trainY); err != nil {
				foldErrs[idx] = errors.Wrapf(err, "fold %d training", idx)
				return
			}

			preds, err := forest.Predict(testX)
			if err != nil {
				foldErrs[idx] = errors.Wrapf(err, "fold %d prediction", idx)
				return
			}

			rmse, err := metrics.RMSE(columnVec(testY), columnVec(preds))
			if err != nil {
				foldErrs[idx] = errors.Wrapf(err, "fold %d scoring", idx)
				return
			}
			foldRMSE[idx] = rmse
		}(fi)
	}
	wg.Wait()

	for _, err := range foldErrs {
		if err != nil {
			return CandidateScore{}, err
		}
	}

	return CandidateScore{
		MaxFeatures: candidate,
		FoldRMSE:    foldRMSE,
		MeanRMSE:    meanOf(foldRMSE),
		StdRMSE:     stdOf(foldRMSE),
	}, nil
}

func (gs *GridSearchCV) newForest(maxFeatures int) *ForestRegressor {
	return &ForestRegressor{
		NumTrees:       gs.NumTrees,
		MaxFeatures:    maxFeatures,
		MaxDepth:       gs.MaxDepth,
		MinSamplesLeaf: gs.MinSamplesLeaf,
		Seed:           gs.Seed,
	}
}

// extractRows copies the named rows of X and y into new matrices, in
// index order.
func extractRows(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)

	_, xCols := X.Dims()
	xOut := mat.NewDense(len(sorted), xCols, nil)
	yOut := mat.NewDense(len(sorted), 1, nil)
	for i, idx := range sorted {
		for j := 0; j < xCols; j++ {
			xOut.Set(i, j, X.At(idx, j))
		}
		yOut.Set(i, 0, y.At(idx, 0))
	}
	return xOut, yOut
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdOf(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	mean := meanOf(values)
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
