// Package dataset holds in-memory columnar data for training and the
// sources that load it. A Dataset is immutable once built: Split and
// SampleByClass return derived views backed by fresh matrices.
package dataset

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/grove/pkg/errors"
)

// Dataset is a table of feature rows with a binary label column.
type Dataset struct {
	X            *mat.Dense
	Y            *mat.Dense
	FeatureNames []string
}

// New builds a Dataset and validates that X and Y agree on row count and
// that every label is 0 or 1.
func New(X, Y *mat.Dense, featureNames []string) (*Dataset, error) {
	xRows, xCols := X.Dims()
	yRows, yCols := Y.Dims()
	if xRows == 0 {
		return nil, errors.NewValueError("dataset.New", "empty dataset")
	}
	if yRows != xRows || yCols != 1 {
		return nil, errors.NewDimensionError("dataset.New", xRows, yRows, 0)
	}
	if featureNames != nil && len(featureNames) != xCols {
		return nil, errors.NewDimensionError("dataset.New", xCols, len(featureNames), 1)
	}
	for i := 0; i < yRows; i++ {
		if v := Y.At(i, 0); v != 0 && v != 1 {
			return nil, errors.NewValueError("dataset.New", "label column must be binary (0 or 1)")
		}
	}
	return &Dataset{X: X, Y: Y, FeatureNames: featureNames}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	rows, _ := d.X.Dims()
	return rows
}

// NumFeatures returns the feature-vector width.
func (d *Dataset) NumFeatures() int {
	_, cols := d.X.Dims()
	return cols
}

// Matrices exposes the underlying matrices for estimators. Callers must
// not mutate them.
func (d *Dataset) Matrices() (X, Y mat.Matrix) {
	return d.X, d.Y
}

// ClassCounts tallies rows per label value.
func (d *Dataset) ClassCounts() map[float64]int {
	counts := make(map[float64]int)
	for i := 0; i < d.Len(); i++ {
		counts[d.Y.At(i, 0)]++
	}
	return counts
}

// Split assigns each row to the first partition with probability ratio
// and to the second otherwise. The assignment is a per-row Bernoulli
// draw from a PCG stream seeded with seed, so the partitions are
// disjoint, exhaustive, and identical across runs with the same seed.
// Counts are probabilistic: an 0.8 ratio yields roughly, not exactly,
// 80% of rows.
func (d *Dataset) Split(ratio float64, seed int64) (train, test *Dataset, err error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, errors.NewValidationError("ratio", "must be in (0, 1)", ratio)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	var trainIdx, testIdx []int
	for i := 0; i < d.Len(); i++ {
		if rng.Float64() < ratio {
			trainIdx = append(trainIdx, i)
		} else {
			testIdx = append(testIdx, i)
		}
	}
	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return nil, nil, errors.NewValueError("Dataset.Split", "a partition came out empty; dataset too small for the ratio")
	}
	return d.take(trainIdx), d.take(testIdx), nil
}

// SampleByClass keeps each row with the retention fraction configured
// for its label, again as a seeded per-row Bernoulli draw. Classes
// absent from fractions are kept in full. The result is always a subset
// of the receiver.
func (d *Dataset) SampleByClass(fractions map[float64]float64, seed int64) (*Dataset, error) {
	for label, f := range fractions {
		if f < 0 || f > 1 {
			return nil, errors.NewValidationError("fractions", "must be in [0, 1]", map[float64]float64{label: f})
		}
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	var keep []int
	for i := 0; i < d.Len(); i++ {
		fraction, ok := fractions[d.Y.At(i, 0)]
		if !ok {
			fraction = 1
		}
		if rng.Float64() < fraction {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, errors.NewValueError("Dataset.SampleByClass", "sampling kept no rows")
	}
	return d.take(keep), nil
}

// take copies the named rows into a new Dataset.
func (d *Dataset) take(indices []int) *Dataset {
	_, cols := d.X.Dims()
	X := mat.NewDense(len(indices), cols, nil)
	Y := mat.NewDense(len(indices), 1, nil)
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			X.Set(i, j, d.X.At(idx, j))
		}
		Y.Set(i, 0, d.Y.At(idx, 0))
	}
	return &Dataset{X: X, Y: Y, FeatureNames: d.FeatureNames}
}
