// Package grove trains, tunes, and evaluates random forest classifiers
// on labeled tabular data.
//
// Grove implements a five-stage training pipeline: load a dataset from
// local disk or Azure Blob Storage, partition it into train/test with a
// seeded random split and per-class resampling, tune (maxDepth, maxBins)
// with a cross-validated grid search, persist the winning model as an
// atomic JSON artifact, and report AUC plus confusion-matrix metrics to
// the console and a pluggable metrics sink.
//
// # Quick Start
//
// Run the pipeline from the command line:
//
//	grove train --config grove.yaml
//
// Or drive it programmatically:
//
//	cfg := pipeline.New()
//	cfg.Data.LocalPath = "train.csv"
//	cfg.Search.MaxDepth = []int{4, 8}
//	cfg.Search.MaxBins = []int{16, 32}
//
//	p, err := pipeline.NewPipeline(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := p.Run(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("test AUC:", result.TestScore)
//
// # Packages
//
//   - pipeline: configuration and the five-stage orchestrator
//   - dataset: columnar datasets, CSV decoding, local and blob sources
//   - sklearn/ensemble: decision tree and random forest classifiers
//   - sklearn/modelselection: k-fold splitters and GridSearchCV
//   - metrics: AUC, confusion matrix, ROC curve and plot
//   - tracking: metrics sinks (log, in-memory, Prometheus)
package grove
