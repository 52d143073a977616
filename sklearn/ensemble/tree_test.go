package ensemble

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestDecisionTreeClassifier_FitPredict_Binary tests binary classification
func TestDecisionTreeClassifier_FitPredict_Binary(t *testing.T) {
	// Create simple linearly separable data
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
		3, 3,
		3, 4,
		4, 3,
		4, 4,
	})

	y := mat.NewDense(8, 1, []float64{
		0, 0, 0, 0, // Class 0 (lower left)
		1, 1, 1, 1, // Class 1 (upper right)
	})

	// Create and train model
	dt := NewDecisionTreeClassifier(
		WithCriterion("gini"),
		WithMaxDepth(5),
	)

	err := dt.Fit(X, y)
	if err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	// Test predictions on training data
	predictions, err := dt.Predict(X)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	// Check all predictions are correct
	for i := 0; i < 8; i++ {
		pred := predictions.At(i, 0)
		actual := y.At(i, 0)
		if pred != actual {
			t.Errorf("Sample %d: expected %v, got %v", i, actual, pred)
		}
	}

	// Test on new data
	XTest := mat.NewDense(2, 2, []float64{
		0.5, 0.5, // Should be class 0
		3.5, 3.5, // Should be class 1
	})

	testPreds, err := dt.Predict(XTest)
	if err != nil {
		t.Fatalf("Failed to predict on test data: %v", err)
	}

	if testPreds.At(0, 0) != 0 {
		t.Errorf("Test point (0.5,0.5) should be class 0, got %v", testPreds.At(0, 0))
	}

	if testPreds.At(1, 0) != 1 {
		t.Errorf("Test point (3.5,3.5) should be class 1, got %v", testPreds.At(1, 0))
	}
}

// TestDecisionTreeClassifier_PredictProba tests probability predictions
func TestDecisionTreeClassifier_PredictProba(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		2, 2,
		2, 3,
		3, 2,
	})

	y := mat.NewDense(6, 1, []float64{
		0, 0, 0, // Class 0
		1, 1, 1, // Class 1
	})

	dt := NewDecisionTreeClassifier(
		WithMaxDepth(3),
	)

	err := dt.Fit(X, y)
	if err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	probas, err := dt.PredictProba(X)
	if err != nil {
		t.Fatalf("Failed to predict probabilities: %v", err)
	}

	rows, cols := probas.Dims()
	if rows != 6 || cols != 2 {
		t.Errorf("Expected probas shape (6, 2), got (%d, %d)", rows, cols)
	}

	// Check that probabilities sum to 1
	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			prob := probas.At(i, j)
			if prob < 0 || prob > 1 {
				t.Errorf("Invalid probability at (%d, %d): %v", i, j, prob)
			}
			sum += prob
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("Probabilities for sample %d don't sum to 1: %v", i, sum)
		}
	}
}

// TestDecisionTreeClassifier_Score tests accuracy calculation
func TestDecisionTreeClassifier_Score(t *testing.T) {
	X := mat.NewDense(8, 2, []float64{
		0.0, 0.0,
		0.0, 0.1,
		0.1, 1.0,
		0.0, 0.9,
		1.0, 0.0,
		0.9, 0.0,
		1.0, 1.0,
		0.9, 0.9,
	})

	// XOR-like pattern: class 0 when both features are similar
	y := mat.NewDense(8, 1, []float64{
		0, 0,
		1, 1,
		1, 1,
		0, 0,
	})

	dt := NewDecisionTreeClassifier(
		WithMaxDepth(5),
	)

	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	score, err := dt.Score(X, y)
	if err != nil {
		t.Fatalf("Failed to score: %v", err)
	}
	if score < 0.9 {
		t.Errorf("Score = %v, want at least 0.9 on training data", score)
	}
}

func TestDecisionTreeClassifier_MaxBinsLimitsThresholds(t *testing.T) {
	// 100 distinct values with 4 bins gives at most 3 candidate thresholds.
	n := 100
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i)
	}
	X := mat.NewDense(n, 1, data)

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	thresholds := binThresholds(X, indices, 1, 4)
	if len(thresholds[0]) > 3 {
		t.Errorf("binThresholds() produced %d cuts, want at most 3", len(thresholds[0]))
	}

	// With enough bins the split candidates are midpoints between values.
	thresholds = binThresholds(X, indices, 1, 200)
	if len(thresholds[0]) != n-1 {
		t.Errorf("binThresholds() produced %d cuts, want %d", len(thresholds[0]), n-1)
	}
}

func TestDecisionTreeClassifier_Errors(t *testing.T) {
	dt := NewDecisionTreeClassifier()

	// Predict before fit
	if _, err := dt.Predict(mat.NewDense(1, 2, []float64{0, 0})); err == nil {
		t.Error("Predict() before Fit() should fail")
	}

	// Non-binary labels
	X := mat.NewDense(2, 1, []float64{0, 1})
	y := mat.NewDense(2, 1, []float64{0, 2})
	if err := dt.Fit(X, y); err == nil {
		t.Error("Fit() with non-binary labels should fail")
	}

	// Row count mismatch
	y = mat.NewDense(1, 1, []float64{0})
	if err := dt.Fit(X, y); err == nil {
		t.Error("Fit() with mismatched rows should fail")
	}

	// Unsupported criterion
	bad := NewDecisionTreeClassifier(WithCriterion("entropy"))
	y = mat.NewDense(2, 1, []float64{0, 1})
	if err := bad.Fit(X, y); err == nil {
		t.Error("Fit() with unsupported criterion should fail")
	}
}
