package ensemble

import (
	"encoding/json"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/grove/core/model"
	"github.com/YuminosukeSato/grove/core/parallel"
	"github.com/YuminosukeSato/grove/pkg/errors"
)

// RandomForestClassifier is a bagged ensemble of binned decision trees for
// binary classification. Trees are trained independently on bootstrap
// samples and their class distributions are averaged at prediction time.
type RandomForestClassifier struct {
	model.BaseEstimator

	NEstimators     int
	MaxDepth        int
	MaxBins         int
	MinSamplesSplit int
	MaxFeatures     int // 0 means floor(sqrt(nFeatures)) per split
	Bootstrap       bool
	RandomState     int64

	trees     []*DecisionTreeClassifier
	nFeatures int
}

// ForestOption is a functional option for RandomForestClassifier.
type ForestOption func(*RandomForestClassifier)

// WithNEstimators sets the number of trees in the forest.
func WithNEstimators(n int) ForestOption {
	return func(rf *RandomForestClassifier) { rf.NEstimators = n }
}

// WithForestMaxDepth limits the depth of every tree.
func WithForestMaxDepth(depth int) ForestOption {
	return func(rf *RandomForestClassifier) { rf.MaxDepth = depth }
}

// WithForestMaxBins caps the candidate thresholds per feature in every tree.
func WithForestMaxBins(bins int) ForestOption {
	return func(rf *RandomForestClassifier) { rf.MaxBins = bins }
}

// WithForestMaxFeatures sets the per-split feature subsample size.
func WithForestMaxFeatures(n int) ForestOption {
	return func(rf *RandomForestClassifier) { rf.MaxFeatures = n }
}

// WithBootstrap toggles bootstrap sampling of training rows per tree.
func WithBootstrap(b bool) ForestOption {
	return func(rf *RandomForestClassifier) { rf.Bootstrap = b }
}

// WithRandomState fixes the seed for bootstrap and feature subsampling.
func WithRandomState(seed int64) ForestOption {
	return func(rf *RandomForestClassifier) { rf.RandomState = seed }
}

// NewRandomForestClassifier creates a forest with sensible defaults.
func NewRandomForestClassifier(opts ...ForestOption) *RandomForestClassifier {
	rf := &RandomForestClassifier{
		NEstimators:     20,
		MaxDepth:        5,
		MaxBins:         32,
		MinSamplesSplit: 2,
		Bootstrap:       true,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains the forest on (X, y). y must be an n×1 matrix of 0/1 labels.
// Trees are fitted in parallel; any tree failure aborts the whole fit.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	indices, err := validateTrainingData("RandomForestClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	if rf.NEstimators < 1 {
		return errors.NewValidationError("nEstimators", "must be at least 1", rf.NEstimators)
	}

	n := len(indices)
	_, rf.nFeatures = X.Dims()

	maxFeatures := rf.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = int(math.Floor(math.Sqrt(float64(rf.nFeatures))))
	}

	trees := make([]*DecisionTreeClassifier, rf.NEstimators)
	errs := make([]error, rf.NEstimators)

	parallel.Parallelize(rf.NEstimators, func(start, end int) {
		for t := start; t < end; t++ {
			seed := rf.RandomState + int64(t)
			rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

			sample := indices
			if rf.Bootstrap {
				sample = make([]int, n)
				for i := range sample {
					sample[i] = indices[rng.IntN(n)]
				}
			}

			tree := NewDecisionTreeClassifier(
				WithCriterion("gini"),
				WithMaxDepth(rf.MaxDepth),
				WithMaxBins(rf.MaxBins),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMaxFeatures(maxFeatures),
				WithTreeRandomState(seed),
			)
			if err := tree.fitIndices(X, y, sample, rng); err != nil {
				errs[t] = errors.Wrapf(err, "tree %d", t)
				continue
			}
			tree.SetFitted()
			trees[t] = tree
		}
	})

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	rf.trees = trees
	rf.SetFitted()
	return nil
}

// PredictProba returns per-class probability estimates averaged over all
// trees, one row per sample. Rows are scored in parallel.
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() || len(rf.trees) == 0 {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "PredictProba")
	}

	rows, cols := X.Dims()
	if cols != rf.nFeatures {
		return nil, errors.NewDimensionError("RandomForestClassifier.PredictProba", rf.nFeatures, cols, 1)
	}

	out := mat.NewDense(rows, 2, nil)
	nTrees := float64(len(rf.trees))

	parallel.ParallelizeWithThreshold(rows, 256, func(start, end int) {
		features := make([]float64, cols)
		for i := start; i < end; i++ {
			for j := 0; j < cols; j++ {
				features[j] = X.At(i, j)
			}

			var p0, p1 float64
			for _, tree := range rf.trees {
				proba := tree.root.predict(features)
				p0 += proba[0]
				p1 += proba[1]
			}
			out.Set(i, 0, p0/nTrees)
			out.Set(i, 1, p1/nTrees)
		}
	})

	return out, nil
}

// Predict returns hard 0/1 labels by thresholding the positive-class
// probability at 0.5.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := rf.PredictProba(X)
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

// Score returns the accuracy of the forest on (X, y).
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	return accuracyOf(y, pred)
}

// GetParams returns the forest's hyperparameters.
func (rf *RandomForestClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      rf.NEstimators,
		"max_depth":         rf.MaxDepth,
		"max_bins":          rf.MaxBins,
		"min_samples_split": rf.MinSamplesSplit,
		"max_features":      rf.MaxFeatures,
		"bootstrap":         rf.Bootstrap,
		"random_state":      rf.RandomState,
	}
}

// forestArtifact is the self-describing serialized form of a fitted forest.
type forestArtifact struct {
	Model           string      `json:"model"`
	FormatVersion   int         `json:"format_version"`
	NEstimators     int         `json:"n_estimators"`
	MaxDepth        int         `json:"max_depth"`
	MaxBins         int         `json:"max_bins"`
	MinSamplesSplit int         `json:"min_samples_split"`
	MaxFeatures     int         `json:"max_features"`
	Bootstrap       bool        `json:"bootstrap"`
	RandomState     int64       `json:"random_state"`
	NFeatures       int         `json:"n_features"`
	Trees           []*treeNode `json:"trees"`
}

// MarshalJSON serializes the fitted forest including tree structure.
func (rf *RandomForestClassifier) MarshalJSON() ([]byte, error) {
	roots := make([]*treeNode, len(rf.trees))
	for i, tree := range rf.trees {
		roots[i] = tree.root
	}
	return json.Marshal(forestArtifact{
		Model:           "RandomForestClassifier",
		FormatVersion:   1,
		NEstimators:     rf.NEstimators,
		MaxDepth:        rf.MaxDepth,
		MaxBins:         rf.MaxBins,
		MinSamplesSplit: rf.MinSamplesSplit,
		MaxFeatures:     rf.MaxFeatures,
		Bootstrap:       rf.Bootstrap,
		RandomState:     rf.RandomState,
		NFeatures:       rf.nFeatures,
		Trees:           roots,
	})
}

// UnmarshalJSON restores a fitted forest from its serialized form.
func (rf *RandomForestClassifier) UnmarshalJSON(data []byte) error {
	var artifact forestArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return err
	}
	if artifact.Model != "RandomForestClassifier" {
		return errors.Newf("unexpected model kind %q", artifact.Model)
	}

	rf.NEstimators = artifact.NEstimators
	rf.MaxDepth = artifact.MaxDepth
	rf.MaxBins = artifact.MaxBins
	rf.MinSamplesSplit = artifact.MinSamplesSplit
	rf.MaxFeatures = artifact.MaxFeatures
	rf.Bootstrap = artifact.Bootstrap
	rf.RandomState = artifact.RandomState
	rf.nFeatures = artifact.NFeatures

	rf.trees = make([]*DecisionTreeClassifier, len(artifact.Trees))
	for i, root := range artifact.Trees {
		rf.trees[i] = &DecisionTreeClassifier{
			Criterion:       "gini",
			MaxDepth:        artifact.MaxDepth,
			MaxBins:         artifact.MaxBins,
			MinSamplesSplit: artifact.MinSamplesSplit,
			MaxFeatures:     artifact.MaxFeatures,
			root:            root,
			nFeatures:       artifact.NFeatures,
		}
		rf.trees[i].SetFitted()
	}
	if len(rf.trees) > 0 {
		rf.SetFitted()
	}
	return nil
}

// Save writes the fitted forest to path as a self-describing JSON artifact.
// The write is atomic: readers never observe a partially written file.
func (rf *RandomForestClassifier) Save(path string) error {
	if !rf.IsFitted() {
		return errors.NewNotFittedError("RandomForestClassifier", "Save")
	}
	return model.SaveModel(rf, path)
}

// Load restores a forest previously written by Save.
func (rf *RandomForestClassifier) Load(path string) error {
	return model.LoadModel(rf, path)
}

var (
	_ model.Classifier      = (*RandomForestClassifier)(nil)
	_ model.Persistable     = (*RandomForestClassifier)(nil)
	_ model.ParameterGetter = (*RandomForestClassifier)(nil)
)
