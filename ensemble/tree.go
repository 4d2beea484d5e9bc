// Package ensemble implements the tree-ensemble regressor used by the
// pipeline's training stage: a bagged forest of CART regression trees
// with per-split feature subsampling, plus the k-fold cross-validation
// splitter and the grid search that selects the features-per-split
// hyperparameter.
package ensemble

import (
	"math/rand/v2"
	"sort"
)

// treeParams are the growth limits for a single regression tree.
type treeParams struct {
	MaxFeatures    int // candidate features sampled per split
	MaxDepth       int // 0 means no limit
	MinSamplesLeaf int
}

// treeNode is one node of a fitted regression tree. Internal nodes
// route x[feature] <= threshold to the left child.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

// regTree is a CART regression tree grown on variance reduction.
type regTree struct {
	root  *treeNode
	gains []float64 // accumulated split gain per feature
}

// growTree fits a regression tree on the rows named by indices.
// indices may repeat (bootstrap sample). rng drives the per-node
// feature subsampling and must be owned by a single tree.
func growTree(x [][]float64, y []float64, indices []int, p treeParams, rng *rand.Rand) *regTree {
	nFeatures := len(x[0])
	t := &regTree{gains: make([]float64, nFeatures)}
	t.root = t.grow(x, y, indices, p, rng, 0)
	return t
}

func (t *regTree) grow(x [][]float64, y []float64, indices []int, p treeParams, rng *rand.Rand, depth int) *treeNode {
	node := &treeNode{value: meanAt(y, indices), leaf: true}

	if p.MaxDepth > 0 && depth >= p.MaxDepth {
		return node
	}
	if len(indices) < 2*p.MinSamplesLeaf {
		return node
	}

	feature, threshold, gain := t.bestSplit(x, y, indices, p, rng)
	if gain <= 0 {
		return node
	}

	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, i := range indices {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < p.MinSamplesLeaf || len(right) < p.MinSamplesLeaf {
		return node
	}

	t.gains[feature] += gain
	node.leaf = false
	node.feature = feature
	node.threshold = threshold
	node.left = t.grow(x, y, left, p, rng, depth+1)
	node.right = t.grow(x, y, right, p, rng, depth+1)
	return node
}

// bestSplit searches a random subset of features for the split with
// the largest reduction in sum of squared error.
func (t *regTree) bestSplit(x [][]float64, y []float64, indices []int, p treeParams, rng *rand.Rand) (int, float64, float64) {
	nFeatures := len(x[0])
	mtry := p.MaxFeatures
	if mtry <= 0 || mtry > nFeatures {
		mtry = nFeatures
	}
	candidates := rng.Perm(nFeatures)[:mtry]

	n := len(indices)
	var sumY, sumY2 float64
	for _, i := range indices {
		sumY += y[i]
		sumY2 += y[i] * y[i]
	}
	sseTotal := sumY2 - sumY*sumY/float64(n)

	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0

	order := make([]int, n)
	for _, f := range candidates {
		copy(order, indices)
		sort.Slice(order, func(a, b int) bool { return x[order[a]][f] < x[order[b]][f] })

		var leftSum, leftSum2 float64
		for pos := 0; pos < n-1; pos++ {
			i := order[pos]
			leftSum += y[i]
			leftSum2 += y[i] * y[i]

			// Split only between distinct feature values.
			cur, next := x[i][f], x[order[pos+1]][f]
			if cur == next {
				continue
			}

			nLeft := pos + 1
			nRight := n - nLeft
			if nLeft < p.MinSamplesLeaf || nRight < p.MinSamplesLeaf {
				continue
			}

			rightSum := sumY - leftSum
			rightSum2 := sumY2 - leftSum2
			sseLeft := leftSum2 - leftSum*leftSum/float64(nLeft)
			sseRight := rightSum2 - rightSum*rightSum/float64(nRight)

			gain := sseTotal - sseLeft - sseRight
			if gain > bestGain {
				bestFeature = f
				bestThreshold = (cur + next) / 2
				bestGain = gain
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

// predictOne walks the tree for a single row.
func (t *regTree) predictOne(row []float64) float64 {
	node := t.root
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func meanAt(y []float64, indices []int) float64 {
	var sum float64
	for _, i := range indices {
		sum += y[i]
	}
	return sum / float64(len(indices))
}
