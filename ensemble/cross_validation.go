package ensemble

import (
	"math/rand/v2"

	"github.com/mizuiro/houseprice/pkg/errors"
)

// Fold is one train/validation partition of the labeled rows. Within a
// fold no index appears on both sides, and across all folds the test
// sides cover every row exactly once.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold partitions rows into k folds, uniformly at random under a
// fixed seed when Shuffle is set.
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    int64
}

// NewKFold creates a k-fold splitter.
func NewKFold(nSplits int, shuffle bool, seed int64) *KFold {
	return &KFold{
		NSplits: nSplits,
		Shuffle: shuffle,
		Seed:    seed,
	}
}

// Split generates the folds for nSamples rows. A fold count below two
// or above the row count cannot produce valid partitions and fails
// before any training starts.
func (kf *KFold) Split(nSamples int) ([]Fold, error) {
	if kf.NSplits < 2 {
		return nil, errors.NewCVConfigError(kf.NSplits, nSamples, "need at least 2 folds")
	}
	if kf.NSplits > nSamples {
		return nil, errors.NewCVConfigError(kf.NSplits, nSamples, "fold count exceeds sample count")
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.Seed), uint64(kf.Seed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	isTest := make([]bool, nSamples)
	current := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		testIndices := make([]int, testSize)
		copy(testIndices, indices[current:current+testSize])

		for j := range isTest {
			isTest[j] = false
		}
		for _, idx := range testIndices {
			isTest[idx] = true
		}
		trainIndices := make([]int, 0, nSamples-testSize)
		for j := 0; j < nSamples; j++ {
			if !isTest[j] {
				trainIndices = append(trainIndices, j)
			}
		}

		folds[i] = Fold{
			TrainIndices: trainIndices,
			TestIndices:  testIndices,
		}
		current += testSize
	}

	return folds, nil
}
