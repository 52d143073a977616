package modelselection

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/grove/core/model"
	"github.com/YuminosukeSato/grove/metrics"
	"github.com/YuminosukeSato/grove/pkg/errors"
	"github.com/YuminosukeSato/grove/pkg/log"
)

// Scorer maps true labels and positive-class scores to a quality value.
// Higher is better.
type Scorer func(yTrue, yScore *mat.VecDense) (float64, error)

// AUCScorer scores predictions by area under the ROC curve.
func AUCScorer(yTrue, yScore *mat.VecDense) (float64, error) {
	return metrics.AUC(yTrue, yScore)
}

// AccuracyScorer scores predictions by accuracy at a 0.5 threshold.
func AccuracyScorer(yTrue, yScore *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AccuracyScorer", "empty vector")
	}
	correct := 0
	for i := 0; i < n; i++ {
		pred := 0.0
		if yScore.AtVec(i) >= 0.5 {
			pred = 1.0
		}
		if pred == yTrue.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// CandidateResult holds the cross-validated score of one grid combination.
type CandidateResult struct {
	Params     Params
	FoldScores []float64
	MeanScore  float64
}

// GridSearchCV exhaustively evaluates every combination in Grid with
// k-fold cross-validation and refits the best one on the full data.
//
// Each combination is evaluated on the same folds, and each fold trains a
// fresh estimator from Factory, so a grid of G combinations with K folds
// performs exactly G*K fits plus one refit.
type GridSearchCV struct {
	Factory  func(Params) model.Classifier
	Grid     ParamGrid
	Splitter Splitter
	Scoring  Scorer

	// Populated by Fit.
	BestParams    Params
	BestScore     float64
	BestEstimator model.Classifier
	Results       []CandidateResult

	nFits atomic.Int64
}

// NewGridSearchCV creates a grid search over grid using splitter folds.
// Scoring defaults to AUC.
func NewGridSearchCV(factory func(Params) model.Classifier, grid ParamGrid, splitter Splitter) *GridSearchCV {
	return &GridSearchCV{
		Factory:  factory,
		Grid:     grid,
		Splitter: splitter,
		Scoring:  AUCScorer,
	}
}

// NFits reports how many estimator fits have run, refit included.
func (gs *GridSearchCV) NFits() int {
	return int(gs.nFits.Load())
}

// Fit runs the search on (X, y). Combinations are evaluated in parallel;
// ties on the mean fold score keep the combination that comes first in
// grid enumeration order.
func (gs *GridSearchCV) Fit(X, y mat.Matrix) error {
	combos := gs.Grid.Combinations()
	if len(combos) == 0 {
		return errors.NewValueError("GridSearchCV.Fit", "empty parameter grid")
	}
	if gs.Factory == nil {
		return errors.NewValueError("GridSearchCV.Fit", "nil estimator factory")
	}
	scoring := gs.Scoring
	if scoring == nil {
		scoring = AUCScorer
	}

	folds := gs.Splitter.Split(X, y)
	if len(folds) == 0 {
		return errors.NewValueError("GridSearchCV.Fit", "splitter produced no folds")
	}
	// More folds than rows of a class leaves a fold without test rows.
	for f, fold := range folds {
		if len(fold.TrainIndices) == 0 || len(fold.TestIndices) == 0 {
			return errors.NewValueError("GridSearchCV.Fit",
				fmt.Sprintf("fold %d is empty; reduce the fold count for this training set", f))
		}
	}

	logger := log.GetLogger()
	logger.Debug("starting grid search",
		log.ComponentKey, "grid_search",
		"candidates", len(combos),
		"folds", len(folds),
	)

	results := make([]CandidateResult, len(combos))
	errs := make([]error, len(combos))

	var wg sync.WaitGroup
	for c, params := range combos {
		wg.Add(1)
		go func(c int, params Params) {
			defer wg.Done()
			results[c], errs[c] = gs.evaluate(params, X, y, folds, scoring)
		}(c, params)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	gs.Results = results

	best := 0
	for c := 1; c < len(results); c++ {
		if results[c].MeanScore > results[best].MeanScore {
			best = c
		}
	}
	gs.BestParams = results[best].Params
	gs.BestScore = results[best].MeanScore

	estimator := gs.Factory(gs.BestParams)
	gs.nFits.Add(1)
	if err := estimator.Fit(X, y); err != nil {
		return errors.Wrapf(err, "refit with max_depth=%d max_bins=%d failed",
			gs.BestParams.MaxDepth, gs.BestParams.MaxBins)
	}
	gs.BestEstimator = estimator

	logger.Info("grid search complete",
		log.ComponentKey, "grid_search",
		"best_max_depth", gs.BestParams.MaxDepth,
		"best_max_bins", gs.BestParams.MaxBins,
		"best_score", gs.BestScore,
		log.FitsKey, gs.NFits(),
	)
	return nil
}

func (gs *GridSearchCV) evaluate(params Params, X, y mat.Matrix, folds []Fold, scoring Scorer) (CandidateResult, error) {
	result := CandidateResult{
		Params:     params,
		FoldScores: make([]float64, len(folds)),
	}

	for f, fold := range folds {
		trainX, trainY := Subset(X, y, fold.TrainIndices)
		testX, testY := Subset(X, y, fold.TestIndices)

		estimator := gs.Factory(params)
		gs.nFits.Add(1)
		if err := estimator.Fit(trainX, trainY); err != nil {
			return result, errors.Wrapf(err, "fold %d fit failed for max_depth=%d max_bins=%d",
				f, params.MaxDepth, params.MaxBins)
		}

		proba, err := estimator.PredictProba(testX)
		if err != nil {
			return result, errors.Wrapf(err, "fold %d prediction failed", f)
		}

		score, err := scoring(columnVec(testY, 0), columnVec(proba, 1))
		if err != nil {
			return result, errors.Wrapf(err, "fold %d scoring failed", f)
		}
		result.FoldScores[f] = score
		result.MeanScore += score / float64(len(folds))
	}
	return result, nil
}

func columnVec(m mat.Matrix, col int) *mat.VecDense {
	rows, _ := m.Dims()
	v := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		v.SetVec(i, m.At(i, col))
	}
	return v
}
