// Package model provides additional interfaces and types for machine learning models.
// This file complements the core interfaces in estimator.go
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a scalar quality score.
type Scorer interface {
	// Score returns a scalar score of the prediction quality on (X, y).
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// ProbaPredictor is the interface for classifiers that expose class
// probability estimates. Column j holds the probability of class j; for
// binary classifiers column 1 is the positive-class score used for ranking
// metrics such as AUC.
type ProbaPredictor interface {
	// PredictProba returns probability estimates for each class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Estimator
	Scorer
	ProbaPredictor
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	// Save saves the model to a file.
	Save(path string) error

	// Load loads the model from a file.
	Load(path string) error
}
