// Package log defines standard attribute keys for machine learning operations.
//
// Using these standard keys enables consistent log analysis, monitoring, and
// debugging of pipeline runs. The keys follow a hierarchical naming convention
// (e.g., "model.name", "data.samples") to enable structured filtering.

package log

// Model and Operation Context
// These attributes identify the model type and operation being performed.
const (
	// ModelNameKey identifies the type of machine learning model.
	// Examples: "RandomForestClassifier", "DecisionTreeClassifier"
	ModelNameKey = "model.name"

	// OperationKey specifies the machine learning operation being performed.
	// Standard values: "fit", "predict", "score", "save", "load"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "dataset", "modelselection", "metrics", "pipeline"
	ComponentKey = "ml.component"

	// StageKey names the pipeline stage currently running.
	// Standard values: "load", "split", "search", "persist", "evaluate"
	StageKey = "pipeline.stage"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// SourceKey identifies the storage location data was loaded from.
	SourceKey = "data.source"
)

// Performance and Evaluation Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AUCKey records the area under the ROC curve for evaluation operations.
	AUCKey = "metrics.auc"

	// AccuracyKey records model accuracy for evaluation operations.
	AccuracyKey = "metrics.accuracy"

	// FitsKey records the number of fold-fits performed during a grid search.
	FitsKey = "search.fits"
)

// Error Context
const (
	// ErrAttrKey is the field key under which errors are logged.
	ErrAttrKey = "error"

	// StacktraceAttrKey is the field key for stack traces extracted from
	// cockroachdb/errors values.
	StacktraceAttrKey = "stacktrace"
)
