// Package ensemble implements tree-ensemble classifiers for binary
// classification, in the style of scikit-learn's ensemble module.
//
// Continuous features are discretized with histogram binning: each tree
// considers at most MaxBins candidate thresholds per feature, derived from
// quantiles of the training sample. This bounds split-search cost and makes
// MaxBins a real capacity hyperparameter alongside MaxDepth.
package ensemble

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/grove/core/model"
	"github.com/YuminosukeSato/grove/pkg/errors"
)

// treeNode is a node of a fitted decision tree. Leaf nodes carry the class
// distribution of the training rows that reached them.
type treeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
	Proba     []float64 `json:"proba,omitempty"`
}

func (n *treeNode) isLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// predict walks the tree for a single sample and returns the leaf
// class distribution.
func (n *treeNode) predict(features []float64) []float64 {
	node := n
	for !node.isLeaf() {
		if features[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Proba
}

// DecisionTreeClassifier is a binary classification tree with gini splits
// over histogram-binned thresholds.
type DecisionTreeClassifier struct {
	model.BaseEstimator

	Criterion       string
	MaxDepth        int
	MaxBins         int
	MinSamplesSplit int
	MaxFeatures     int // features considered per split; 0 means all
	RandomState     int64

	root      *treeNode
	nFeatures int
}

// TreeOption is a functional option for DecisionTreeClassifier.
type TreeOption func(*DecisionTreeClassifier)

// WithCriterion sets the split quality criterion. Only "gini" is supported.
func WithCriterion(criterion string) TreeOption {
	return func(dt *DecisionTreeClassifier) { dt.Criterion = criterion }
}

// WithMaxDepth limits tree depth.
func WithMaxDepth(depth int) TreeOption {
	return func(dt *DecisionTreeClassifier) { dt.MaxDepth = depth }
}

// WithMaxBins caps the number of candidate thresholds per feature.
func WithMaxBins(bins int) TreeOption {
	return func(dt *DecisionTreeClassifier) { dt.MaxBins = bins }
}

// WithMinSamplesSplit sets the minimum number of rows required to split a node.
func WithMinSamplesSplit(n int) TreeOption {
	return func(dt *DecisionTreeClassifier) { dt.MinSamplesSplit = n }
}

// WithMaxFeatures sets the number of features examined per split.
func WithMaxFeatures(n int) TreeOption {
	return func(dt *DecisionTreeClassifier) { dt.MaxFeatures = n }
}

// WithTreeRandomState fixes the seed for per-split feature subsampling.
func WithTreeRandomState(seed int64) TreeOption {
	return func(dt *DecisionTreeClassifier) { dt.RandomState = seed }
}

// NewDecisionTreeClassifier creates a classification tree with sensible defaults.
func NewDecisionTreeClassifier(opts ...TreeOption) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		Criterion:       "gini",
		MaxDepth:        10,
		MaxBins:         32,
		MinSamplesSplit: 2,
	}
	for _, o := range opts {
		o(dt)
	}
	return dt
}

// Fit trains the tree on (X, y). y must be an n×1 matrix of 0/1 labels.
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	indices, err := validateTrainingData("DecisionTreeClassifier.Fit", X, y)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(uint64(dt.RandomState), uint64(dt.RandomState)))
	if err := dt.fitIndices(X, y, indices, rng); err != nil {
		return err
	}
	dt.SetFitted()
	return nil
}

// fitIndices grows the tree over the given row subset. Used directly by the
// forest so bootstrap samples avoid materializing row copies.
func (dt *DecisionTreeClassifier) fitIndices(X, y mat.Matrix, indices []int, rng *rand.Rand) error {
	if dt.Criterion != "gini" {
		return errors.NewValidationError("criterion", "unsupported criterion", dt.Criterion)
	}
	if dt.MaxBins < 2 {
		return errors.NewValidationError("maxBins", "must be at least 2", dt.MaxBins)
	}
	if len(indices) == 0 {
		return errors.WithStack(errors.ErrEmptyData)
	}

	_, dt.nFeatures = X.Dims()
	thresholds := binThresholds(X, indices, dt.nFeatures, dt.MaxBins)
	dt.root = dt.grow(X, y, indices, thresholds, 0, rng)
	return nil
}

// grow recursively builds the subtree for the given rows.
func (dt *DecisionTreeClassifier) grow(X, y mat.Matrix, indices []int, thresholds [][]float64, depth int, rng *rand.Rand) *treeNode {
	counts := classCounts(y, indices)
	if depth >= dt.MaxDepth || len(indices) < dt.MinSamplesSplit || counts[0] == 0 || counts[1] == 0 {
		return leafNode(counts)
	}

	feature, threshold, ok := dt.bestSplit(X, y, indices, thresholds, counts, rng)
	if !ok {
		return leafNode(counts)
	}

	var left, right []int
	for _, idx := range indices {
		if X.At(idx, feature) <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leafNode(counts)
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      dt.grow(X, y, left, thresholds, depth+1, rng),
		Right:     dt.grow(X, y, right, thresholds, depth+1, rng),
	}
}

// bestSplit searches the binned thresholds of a (possibly subsampled) feature
// set for the split with the lowest weighted gini impurity.
func (dt *DecisionTreeClassifier) bestSplit(X, y mat.Matrix, indices []int, thresholds [][]float64, counts [2]int, rng *rand.Rand) (int, float64, bool) {
	features := dt.candidateFeatures(rng)
	parentGini := gini(counts)
	total := float64(len(indices))

	bestFeature, bestThreshold := -1, 0.0
	bestScore := parentGini

	for _, f := range features {
		for _, threshold := range thresholds[f] {
			var leftCounts, rightCounts [2]int
			for _, idx := range indices {
				label := int(y.At(idx, 0))
				if X.At(idx, f) <= threshold {
					leftCounts[label]++
				} else {
					rightCounts[label]++
				}
			}

			nLeft := leftCounts[0] + leftCounts[1]
			nRight := rightCounts[0] + rightCounts[1]
			if nLeft == 0 || nRight == 0 {
				continue
			}

			score := (float64(nLeft)*gini(leftCounts) + float64(nRight)*gini(rightCounts)) / total
			if score < bestScore-1e-12 {
				bestScore = score
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// candidateFeatures returns the feature indices examined at one split.
func (dt *DecisionTreeClassifier) candidateFeatures(rng *rand.Rand) []int {
	k := dt.MaxFeatures
	if k <= 0 || k >= dt.nFeatures {
		all := make([]int, dt.nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}

	perm := rng.Perm(dt.nFeatures)
	return perm[:k]
}

// Predict returns the predicted class label (0 or 1) for each row of X.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := dt.PredictProba(X)
	if err != nil {
		return nil, err
	}

	rows, _ := proba.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		if proba.At(i, 1) >= 0.5 {
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

// PredictProba returns per-class probability estimates, one row per sample.
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !dt.IsFitted() || dt.root == nil {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}

	rows, cols := X.Dims()
	if cols != dt.nFeatures {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictProba", dt.nFeatures, cols, 1)
	}

	out := mat.NewDense(rows, 2, nil)
	features := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			features[j] = X.At(i, j)
		}
		proba := dt.root.predict(features)
		out.Set(i, 0, proba[0])
		out.Set(i, 1, proba[1])
	}
	return out, nil
}

// Score returns the accuracy of the tree on (X, y).
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return accuracyOf(y, pred)
}

// binThresholds computes the candidate split thresholds per feature:
// midpoints between consecutive distinct values when there are few, quantile
// cut points capped at maxBins-1 otherwise.
func binThresholds(X mat.Matrix, indices []int, nFeatures, maxBins int) [][]float64 {
	thresholds := make([][]float64, nFeatures)
	values := make([]float64, len(indices))

	for f := 0; f < nFeatures; f++ {
		for i, idx := range indices {
			values[i] = X.At(idx, f)
		}
		sort.Float64s(values)

		distinct := values[:0:0]
		for i, v := range values {
			if i == 0 || v != values[i-1] {
				distinct = append(distinct, v)
			}
		}

		if len(distinct) <= 1 {
			continue
		}

		if len(distinct) <= maxBins {
			cuts := make([]float64, 0, len(distinct)-1)
			for i := 1; i < len(distinct); i++ {
				cuts = append(cuts, (distinct[i-1]+distinct[i])/2)
			}
			thresholds[f] = cuts
			continue
		}

		cuts := make([]float64, 0, maxBins-1)
		for b := 1; b < maxBins; b++ {
			q := distinct[b*len(distinct)/maxBins]
			if len(cuts) == 0 || q != cuts[len(cuts)-1] {
				cuts = append(cuts, q)
			}
		}
		thresholds[f] = cuts
	}

	return thresholds
}

func classCounts(y mat.Matrix, indices []int) [2]int {
	var counts [2]int
	for _, idx := range indices {
		counts[int(y.At(idx, 0))]++
	}
	return counts
}

func leafNode(counts [2]int) *treeNode {
	total := float64(counts[0] + counts[1])
	return &treeNode{
		Feature: -1,
		Proba:   []float64{float64(counts[0]) / total, float64(counts[1]) / total},
	}
}

func gini(counts [2]int) float64 {
	total := float64(counts[0] + counts[1])
	if total == 0 {
		return 0
	}
	p0 := float64(counts[0]) / total
	p1 := float64(counts[1]) / total
	return 1 - p0*p0 - p1*p1
}

// validateTrainingData checks shapes and binary labels, returning the full
// row index slice on success.
func validateTrainingData(op string, X, y mat.Matrix) ([]int, error) {
	if X == nil || y == nil {
		return nil, errors.NewValueError(op, "nil input")
	}

	rows, _ := X.Dims()
	yRows, _ := y.Dims()
	if rows == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	if yRows != rows {
		return nil, errors.NewDimensionError(op, rows, yRows, 0)
	}

	for i := 0; i < rows; i++ {
		if v := y.At(i, 0); v != 0 && v != 1 {
			return nil, errors.NewValueError(op, "labels must be binary (0 or 1)")
		}
	}

	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}
	return indices, nil
}

// accuracyOf computes the fraction of matching labels between an n×1 truth
// matrix and an n×1 prediction matrix.
func accuracyOf(yTrue, yPred mat.Matrix) (float64, error) {
	rows, _ := yTrue.Dims()
	pRows, _ := yPred.Dims()
	if rows == 0 || rows != pRows {
		return 0, errors.NewDimensionError("accuracy", rows, pRows, 0)
	}

	correct := 0
	for i := 0; i < rows; i++ {
		if yTrue.At(i, 0) == yPred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(rows), nil
}
