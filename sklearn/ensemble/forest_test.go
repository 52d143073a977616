package ensemble

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// makeBlobs generates two well-separated gaussian-ish clusters.
func makeBlobs(t *testing.T, n int, seed int64) (*mat.Dense, *mat.Dense) {
	t.Helper()
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

	X := mat.NewDense(n, 3, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		label := float64(i % 2)
		offset := label * 4
		for j := 0; j < 3; j++ {
			X.Set(i, j, offset+rng.Float64())
		}
		y.Set(i, 0, label)
	}
	return X, y
}

func TestRandomForestClassifier_FitPredict(t *testing.T) {
	X, y := makeBlobs(t, 200, 7)

	rf := NewRandomForestClassifier(
		WithNEstimators(10),
		WithForestMaxDepth(5),
		WithForestMaxBins(16),
		WithRandomState(42),
	)

	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	score, err := rf.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score < 0.95 {
		t.Errorf("Score() = %v, want at least 0.95 on separable data", score)
	}

	proba, err := rf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	rows, cols := proba.Dims()
	if rows != 200 || cols != 2 {
		t.Errorf("proba shape = (%d, %d), want (200, 2)", rows, cols)
	}
}

func TestRandomForestClassifier_Deterministic(t *testing.T) {
	X, y := makeBlobs(t, 120, 3)

	predict := func() mat.Matrix {
		rf := NewRandomForestClassifier(
			WithNEstimators(5),
			WithForestMaxDepth(4),
			WithRandomState(11),
		)
		if err := rf.Fit(X, y); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		pred, err := rf.PredictProba(X)
		if err != nil {
			t.Fatalf("PredictProba() error = %v", err)
		}
		return pred
	}

	a, b := predict(), predict()
	if !mat.EqualApprox(a, b, 0) {
		t.Error("same data and seed must produce identical predictions")
	}
}

func TestRandomForestClassifier_SaveLoadRoundTrip(t *testing.T) {
	X, y := makeBlobs(t, 150, 5)

	rf := NewRandomForestClassifier(
		WithNEstimators(8),
		WithForestMaxDepth(6),
		WithForestMaxBins(32),
		WithRandomState(9),
	)
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	before, err := rf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "forest.json")
	if err := rf.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var loaded RandomForestClassifier
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	after, err := loaded.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() after load error = %v", err)
	}

	if !mat.EqualApprox(before, after, 0) {
		t.Error("loaded model predictions differ from the original model")
	}

	if loaded.MaxDepth != rf.MaxDepth || loaded.MaxBins != rf.MaxBins {
		t.Errorf("hyperparameters not preserved: got depth=%d bins=%d",
			loaded.MaxDepth, loaded.MaxBins)
	}
}

func TestRandomForestClassifier_Errors(t *testing.T) {
	rf := NewRandomForestClassifier()

	if _, err := rf.Predict(mat.NewDense(1, 2, []float64{0, 0})); err == nil {
		t.Error("Predict() before Fit() should fail")
	}
	if err := rf.Save(filepath.Join(t.TempDir(), "m.json")); err == nil {
		t.Error("Save() before Fit() should fail")
	}

	X := mat.NewDense(2, 1, []float64{0, 1})
	y := mat.NewDense(2, 1, []float64{0, 3})
	if err := rf.Fit(X, y); err == nil {
		t.Error("Fit() with non-binary labels should fail")
	}
}

func TestRandomForestClassifier_GetParams(t *testing.T) {
	rf := NewRandomForestClassifier(WithForestMaxDepth(7), WithForestMaxBins(64))
	params := rf.GetParams()
	if params["max_depth"] != 7 {
		t.Errorf("max_depth = %v, want 7", params["max_depth"])
	}
	if params["max_bins"] != 64 {
		t.Errorf("max_bins = %v, want 64", params["max_bins"])
	}
}
