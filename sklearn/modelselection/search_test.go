package modelselection

import (
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/grove/core/model"
)

// stubClassifier predicts the first feature as the positive-class score
// when its params match target, and the inverted feature otherwise. With
// data where feature 0 equals the label, only the target combination
// scores a perfect AUC.
type stubClassifier struct {
	params Params
	target Params
	invert bool
	fits   *atomic.Int64
}

func (s *stubClassifier) Fit(X, y mat.Matrix) error {
	s.fits.Add(1)
	s.invert = s.params != s.target
	return nil
}

func (s *stubClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := s.PredictProba(X)
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

func (s *stubClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	rows, _ := X.Dims()
	out := mat.NewDense(rows, 2, nil)
	for i := 0; i < rows; i++ {
		score := X.At(i, 0)
		if s.invert {
			score = 1 - score
		}
		out.Set(i, 0, 1-score)
		out.Set(i, 1, score)
	}
	return out, nil
}

func (s *stubClassifier) Score(X, y mat.Matrix) (float64, error) {
	return 0, nil
}

// labelData builds a set where feature 0 equals the label, alternating
// classes so stratified folds always contain both.
func labelData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		label := float64(i % 2)
		X.Set(i, 0, label)
		y.Set(i, 0, label)
	}
	return X, y
}

func TestGridSearchCV_FitCount(t *testing.T) {
	X, y := labelData(24)
	grid := ParamGrid{MaxDepth: []int{3, 5}, MaxBins: []int{8, 16}}
	target := Params{MaxDepth: 5, MaxBins: 16}

	var fits atomic.Int64
	gs := NewGridSearchCV(func(p Params) model.Classifier {
		return &stubClassifier{params: p, target: target, fits: &fits}
	}, grid, NewStratifiedKFold(3, true, 1))

	if err := gs.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// 4 combinations * 3 folds, plus the refit of the winner.
	if got := fits.Load(); got != 13 {
		t.Errorf("estimator fits = %d, want 13", got)
	}
	if gs.NFits() != 13 {
		t.Errorf("NFits() = %d, want 13", gs.NFits())
	}
}

func TestGridSearchCV_SelectsBestParams(t *testing.T) {
	X, y := labelData(30)
	grid := ParamGrid{MaxDepth: []int{2, 4, 6}, MaxBins: []int{8, 32}}
	target := Params{MaxDepth: 4, MaxBins: 32}

	var fits atomic.Int64
	gs := NewGridSearchCV(func(p Params) model.Classifier {
		return &stubClassifier{params: p, target: target, fits: &fits}
	}, grid, NewStratifiedKFold(3, true, 5))

	if err := gs.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if gs.BestParams != target {
		t.Errorf("BestParams = %+v, want %+v", gs.BestParams, target)
	}
	if gs.BestScore != 1.0 {
		t.Errorf("BestScore = %v, want 1.0", gs.BestScore)
	}
	if gs.BestEstimator == nil {
		t.Fatal("BestEstimator is nil after Fit")
	}
	if len(gs.Results) != grid.Size() {
		t.Errorf("len(Results) = %d, want %d", len(gs.Results), grid.Size())
	}
}

func TestGridSearchCV_TieKeepsFirstCombination(t *testing.T) {
	X, y := labelData(20)
	grid := ParamGrid{MaxDepth: []int{3, 7}, MaxBins: []int{16, 64}}

	var fits atomic.Int64
	gs := NewGridSearchCV(func(p Params) model.Classifier {
		// Every combination predicts perfectly, so all scores tie.
		return &stubClassifier{params: p, target: p, fits: &fits}
	}, grid, NewStratifiedKFold(2, false, 0))

	if err := gs.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	want := Params{MaxDepth: 3, MaxBins: 16}
	if gs.BestParams != want {
		t.Errorf("BestParams = %+v, want first grid entry %+v", gs.BestParams, want)
	}
}

func TestGridSearchCV_MoreFoldsThanClassRows(t *testing.T) {
	// 4 rows, 2 per class: stratified splitting into 3 folds leaves the
	// last fold without test rows. Fit must report that, not panic.
	X, y := labelData(4)
	grid := ParamGrid{MaxDepth: []int{3}, MaxBins: []int{16}}

	var fits atomic.Int64
	gs := NewGridSearchCV(func(p Params) model.Classifier {
		return &stubClassifier{params: p, target: p, fits: &fits}
	}, grid, NewStratifiedKFold(3, false, 0))

	if err := gs.Fit(X, y); err == nil {
		t.Fatal("Fit() with an empty fold should fail")
	}
	if fits.Load() != 0 {
		t.Errorf("estimator fits = %d, want 0 when folds are rejected", fits.Load())
	}
}

func TestGridSearchCV_EmptyGrid(t *testing.T) {
	gs := NewGridSearchCV(func(p Params) model.Classifier {
		return &stubClassifier{}
	}, ParamGrid{}, NewKFold(3, false, 0))

	X, y := labelData(10)
	if err := gs.Fit(X, y); err == nil {
		t.Error("Fit() with empty grid should fail")
	}
}

func TestParamGrid_Combinations(t *testing.T) {
	grid := ParamGrid{MaxDepth: []int{1, 2}, MaxBins: []int{10, 20, 30}}
	combos := grid.Combinations()

	if len(combos) != 6 {
		t.Fatalf("got %d combinations, want 6", len(combos))
	}
	want := []Params{
		{1, 10}, {1, 20}, {1, 30},
		{2, 10}, {2, 20}, {2, 30},
	}
	for i, combo := range combos {
		if combo != want[i] {
			t.Errorf("combination %d = %+v, want %+v", i, combo, want[i])
		}
	}
}
