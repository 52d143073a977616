package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/grove/core/model"
	"github.com/YuminosukeSato/grove/dataset"
	"github.com/YuminosukeSato/grove/metrics"
	"github.com/YuminosukeSato/grove/pkg/errors"
	"github.com/YuminosukeSato/grove/pkg/log"
	"github.com/YuminosukeSato/grove/sklearn/ensemble"
	"github.com/YuminosukeSato/grove/sklearn/modelselection"
	"github.com/YuminosukeSato/grove/tracking"
)

// Result collects what a pipeline run produced.
type Result struct {
	BestParams modelselection.Params
	CVScore    float64
	TestScore  float64
	Confusion  *metrics.ConfusionMatrix
	Accuracy   float64
	Precision  float64
	Recall     float64
	F1         float64
	ModelPath  string
	Fits       int
}

// Pipeline runs the five training stages against a configuration.
type Pipeline struct {
	cfg    *Config
	sink   tracking.MetricsSink
	out    io.Writer
	source dataset.Source
	logger log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSink routes run metrics to sink instead of the default log sink.
func WithSink(sink tracking.MetricsSink) Option {
	return func(p *Pipeline) { p.sink = sink }
}

// WithOutput redirects the console report, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// WithSource overrides the data source derived from the configuration.
func WithSource(src dataset.Source) Option {
	return func(p *Pipeline) { p.source = src }
}

// NewPipeline validates cfg and builds a runnable pipeline.
func NewPipeline(cfg *Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "pipeline config")
	}

	p := &Pipeline{
		cfg:    cfg,
		out:    os.Stdout,
		logger: log.GetLogger().With(log.ComponentKey, "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sink == nil {
		p.sink = tracking.NewLogSink(p.logger)
	}
	if p.source == nil {
		p.source = sourceFromConfig(p.cfg.Data)
	}
	return p, nil
}

func sourceFromConfig(data DataConfig) dataset.Source {
	if data.AccountURL != "" {
		return dataset.BlobSource{
			AccountURL: data.AccountURL,
			Container:  data.Container,
			Blob:       data.Blob,
		}
	}
	return dataset.LocalSource{Path: data.LocalPath}
}

// Run executes load, split/sample, search, persist, and evaluate in
// order. Any stage failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	ds, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	train, test, err := p.splitAndSample(ds)
	if err != nil {
		return nil, err
	}

	search, err := p.search(train)
	if err != nil {
		return nil, err
	}

	if err := p.persist(search.BestEstimator); err != nil {
		return nil, err
	}

	result, err := p.evaluate(search, test)
	if err != nil {
		return nil, err
	}

	p.logger.Info("pipeline finished",
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.FitsKey, result.Fits,
	)
	return result, nil
}

func (p *Pipeline) load(ctx context.Context) (*dataset.Dataset, error) {
	p.logger.Info("loading dataset", log.StageKey, "load", log.SourceKey, p.source.String())
	return dataset.Load(ctx, p.source)
}

func (p *Pipeline) splitAndSample(ds *dataset.Dataset) (train, test *dataset.Dataset, err error) {
	p.logger.Info("splitting dataset", log.StageKey, "split")

	train, test, err = ds.Split(p.cfg.Split.TrainRatio, p.cfg.Split.Seed)
	if err != nil {
		return nil, nil, errors.Wrap(err, "train/test split")
	}

	fractions := map[float64]float64{
		0: p.cfg.Sampling.NegativeFraction,
		1: p.cfg.Sampling.PositiveFraction,
	}
	train, err = train.SampleByClass(fractions, p.cfg.Sampling.Seed)
	if err != nil {
		return nil, nil, errors.Wrap(err, "class resampling")
	}

	p.logger.Info("partitions ready",
		log.StageKey, "split",
		"train_rows", train.Len(),
		"test_rows", test.Len(),
	)
	return train, test, nil
}

func (p *Pipeline) search(train *dataset.Dataset) (*modelselection.GridSearchCV, error) {
	p.logger.Info("searching hyperparameters",
		log.StageKey, "search",
		"grid_size", len(p.cfg.Search.MaxDepth)*len(p.cfg.Search.MaxBins),
		"folds", p.cfg.Search.Folds,
	)

	factory := func(params modelselection.Params) model.Classifier {
		return ensemble.NewRandomForestClassifier(
			ensemble.WithNEstimators(p.cfg.Forest.NEstimators),
			ensemble.WithForestMaxDepth(params.MaxDepth),
			ensemble.WithForestMaxBins(params.MaxBins),
			ensemble.WithRandomState(p.cfg.Forest.Seed),
		)
	}

	gs := modelselection.NewGridSearchCV(
		factory,
		modelselection.ParamGrid{
			MaxDepth: p.cfg.Search.MaxDepth,
			MaxBins:  p.cfg.Search.MaxBins,
		},
		modelselection.NewStratifiedKFold(p.cfg.Search.Folds, true, p.cfg.Forest.Seed),
	)
	if p.cfg.Search.Metric == MetricAccuracy {
		gs.Scoring = modelselection.AccuracyScorer
	}

	X, y := train.Matrices()
	if err := gs.Fit(X, y); err != nil {
		return nil, errors.Wrap(err, "grid search")
	}
	return gs, nil
}

func (p *Pipeline) persist(best model.Classifier) error {
	p.logger.Info("saving model", log.StageKey, "persist", "path", p.cfg.Output.ModelPath)

	persistable, ok := best.(model.Persistable)
	if !ok {
		return errors.NewModelError("persist", "unsupported",
			errors.Newf("%T does not support persistence", best))
	}
	if err := persistable.Save(p.cfg.Output.ModelPath); err != nil {
		return errors.Wrapf(err, "save model to %s", p.cfg.Output.ModelPath)
	}
	return nil
}

func (p *Pipeline) evaluate(search *modelselection.GridSearchCV, test *dataset.Dataset) (*Result, error) {
	p.logger.Info("evaluating on test partition", log.StageKey, "evaluate", log.SamplesKey, test.Len())

	X, y := test.Matrices()
	proba, err := search.BestEstimator.PredictProba(X)
	if err != nil {
		return nil, errors.Wrap(err, "test prediction")
	}

	rows, _ := proba.Dims()
	scores := mat.NewVecDense(rows, nil)
	labels := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		scores.SetVec(i, proba.At(i, 1))
		labels.SetVec(i, y.At(i, 0))
	}

	testScore, err := metrics.AUC(labels, scores)
	if err != nil {
		return nil, errors.Wrap(err, "test scoring")
	}

	cm, err := metrics.NewConfusionMatrix(y, scores, 0.5)
	if err != nil {
		return nil, errors.Wrap(err, "confusion matrix")
	}

	result := &Result{
		BestParams: search.BestParams,
		CVScore:    search.BestScore,
		TestScore:  testScore,
		Confusion:  cm,
		Accuracy:   cm.Accuracy(),
		Precision:  cm.Precision(),
		Recall:     cm.Recall(),
		F1:         cm.F1(),
		ModelPath:  p.cfg.Output.ModelPath,
		Fits:       search.NFits(),
	}

	if p.cfg.Output.ROCPlotPath != "" {
		points, err := metrics.ROCCurve(labels, scores)
		if err != nil {
			return nil, errors.Wrap(err, "roc curve")
		}
		if err := metrics.SaveROCPlot(points, p.cfg.Output.ROCPlotPath); err != nil {
			return nil, errors.Wrap(err, "roc plot")
		}
	}

	p.report(result)

	p.logger.Info("evaluation complete",
		log.StageKey, "evaluate",
		log.AUCKey, testScore,
		log.AccuracyKey, result.Accuracy,
	)
	return result, nil
}

// report prints the run summary and forwards each named metric to the
// sink.
func (p *Pipeline) report(r *Result) {
	fmt.Fprintf(p.out, "Best hyperparameters: maxDepth=%d maxBins=%d\n",
		r.BestParams.MaxDepth, r.BestParams.MaxBins)
	fmt.Fprintf(p.out, "Cross-validation score: %.6g\n", r.CVScore)
	fmt.Fprintf(p.out, "Test AUC: %.6g\n", r.TestScore)
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, r.Confusion)
	fmt.Fprintf(p.out, "Accuracy:  %.6g\n", r.Accuracy)
	fmt.Fprintf(p.out, "Precision: %.6g\n", r.Precision)
	fmt.Fprintf(p.out, "Recall:    %.6g\n", r.Recall)
	fmt.Fprintf(p.out, "F1:        %.6g\n", r.F1)

	p.sink.Log("MaxDepth", float64(r.BestParams.MaxDepth))
	p.sink.Log("MaxBins", float64(r.BestParams.MaxBins))
	p.sink.Log("Model Accuracy", r.Accuracy)
	p.sink.Log("Model Precision", r.Precision)
	p.sink.Log("Model Recall", r.Recall)
	p.sink.Log("Model F1", r.F1)
}
