// Package pipeline wires the training stages together: load, split and
// resample, hyperparameter search, persistence, and evaluation.
package pipeline

import (
	"github.com/YuminosukeSato/grove/pkg/errors"
)

type Config struct {
	// Data locates the input dataset.
	Data DataConfig `yaml:"data" mapstructure:"data"`

	// Split controls the train/test partitioning.
	Split SplitConfig `yaml:"split" mapstructure:"split"`

	// Sampling rebalances the training partition by class.
	Sampling SamplingConfig `yaml:"sampling" mapstructure:"sampling"`

	// Search configures the hyperparameter grid search.
	Search SearchConfig `yaml:"search" mapstructure:"search"`

	// Forest holds the fixed random-forest settings not searched over.
	Forest ForestConfig `yaml:"forest" mapstructure:"forest"`

	// Output names the artifacts a run writes.
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

type DataConfig struct {
	// AccountURL is the blob service endpoint. When set, Container and
	// Blob must be set too and LocalPath is ignored.
	AccountURL string `yaml:"accountURL" mapstructure:"accountURL"`

	// Container is the blob container holding the dataset.
	Container string `yaml:"container" mapstructure:"container"`

	// Blob is the dataset object name within the container.
	Blob string `yaml:"blob" mapstructure:"blob"`

	// LocalPath reads the dataset from the local filesystem instead.
	LocalPath string `yaml:"localPath" mapstructure:"localPath"`
}

type SplitConfig struct {
	// TrainRatio is the probability a row lands in the training
	// partition (default: 0.8).
	TrainRatio float64 `yaml:"trainRatio" mapstructure:"trainRatio"`

	// Seed fixes the partition assignment.
	Seed int64 `yaml:"seed" mapstructure:"seed"`
}

type SamplingConfig struct {
	// NegativeFraction is the retention fraction for label 0.0 rows
	// (default: 0.2).
	NegativeFraction float64 `yaml:"negativeFraction" mapstructure:"negativeFraction"`

	// PositiveFraction is the retention fraction for label 1.0 rows
	// (default: 0.8).
	PositiveFraction float64 `yaml:"positiveFraction" mapstructure:"positiveFraction"`

	// Seed fixes the per-row sampling draws.
	Seed int64 `yaml:"seed" mapstructure:"seed"`
}

type SearchConfig struct {
	// MaxDepth lists the candidate tree depths.
	MaxDepth []int `yaml:"maxDepth" mapstructure:"maxDepth"`

	// MaxBins lists the candidate histogram bin counts.
	MaxBins []int `yaml:"maxBins" mapstructure:"maxBins"`

	// Folds is the cross-validation fold count K (default: 3).
	Folds int `yaml:"folds" mapstructure:"folds"`

	// Metric selects the validation score: "auc" or "accuracy"
	// (default: auc).
	Metric string `yaml:"metric" mapstructure:"metric"`
}

type ForestConfig struct {
	// NEstimators is the number of trees per forest (default: 20).
	NEstimators int `yaml:"nEstimators" mapstructure:"nEstimators"`

	// Seed fixes the forest's internal randomness.
	Seed int64 `yaml:"seed" mapstructure:"seed"`
}

type OutputConfig struct {
	// ModelPath is where the winning model artifact is written.
	ModelPath string `yaml:"modelPath" mapstructure:"modelPath"`

	// ROCPlotPath, when set, writes a ROC curve PNG for the test
	// partition.
	ROCPlotPath string `yaml:"rocPlotPath" mapstructure:"rocPlotPath"`
}

// Metric names accepted by SearchConfig.Metric.
const (
	MetricAUC      = "auc"
	MetricAccuracy = "accuracy"
)

// New default configuration.
func New() *Config {
	return &Config{
		Split: SplitConfig{
			TrainRatio: 0.8,
			Seed:       42,
		},
		Sampling: SamplingConfig{
			NegativeFraction: 0.2,
			PositiveFraction: 0.8,
			Seed:             42,
		},
		Search: SearchConfig{
			MaxDepth: []int{4, 8},
			MaxBins:  []int{16, 32},
			Folds:    3,
			Metric:   MetricAUC,
		},
		Forest: ForestConfig{
			NEstimators: 20,
			Seed:        42,
		},
		Output: OutputConfig{
			ModelPath: "model.json",
		},
	}
}

// Validate checks the configuration for a runnable pipeline.
func (cfg *Config) Validate() error {
	if cfg.Data.LocalPath == "" && cfg.Data.AccountURL == "" {
		return errors.New("data: either localPath or accountURL is required")
	}
	if cfg.Data.AccountURL != "" && (cfg.Data.Container == "" || cfg.Data.Blob == "") {
		return errors.New("data: accountURL requires container and blob")
	}
	if cfg.Split.TrainRatio <= 0 || cfg.Split.TrainRatio >= 1 {
		return errors.New("split: trainRatio must be in (0, 1)")
	}
	if cfg.Sampling.NegativeFraction < 0 || cfg.Sampling.NegativeFraction > 1 {
		return errors.New("sampling: negativeFraction must be in [0, 1]")
	}
	if cfg.Sampling.PositiveFraction < 0 || cfg.Sampling.PositiveFraction > 1 {
		return errors.New("sampling: positiveFraction must be in [0, 1]")
	}
	if len(cfg.Search.MaxDepth) == 0 || len(cfg.Search.MaxBins) == 0 {
		return errors.New("search: maxDepth and maxBins candidates are required")
	}
	if cfg.Search.Folds < 2 {
		return errors.New("search: folds must be at least 2")
	}
	if cfg.Search.Metric != MetricAUC && cfg.Search.Metric != MetricAccuracy {
		return errors.Newf("search: unknown metric %q", cfg.Search.Metric)
	}
	if cfg.Forest.NEstimators < 1 {
		return errors.New("forest: nEstimators must be at least 1")
	}
	if cfg.Output.ModelPath == "" {
		return errors.New("output: modelPath is required")
	}
	return nil
}
