package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model or transformer.
	// Examples: "GradientBoostingClassifier", "OneHotEncoder", "Pipeline"
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies a specific trained artifact (a UUID string).
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of rows in the table.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of columns in the table.
	FeaturesKey = "data.features"

	// ColumnKey names the column a step reads or writes.
	ColumnKey = "data.column"

	// MissingKey counts missing values in a column.
	MissingKey = "data.missing"

	// PathKey is the file a command reads or writes.
	PathKey = "data.path"
)

// Pipeline Context
const (
	// StepKey names the feature pipeline step being executed.
	StepKey = "pipeline.step"

	// BranchKey names the concurrent branch a step runs in.
	BranchKey = "pipeline.branch"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	AccuracyKey  = "metrics.accuracy"
	LossKey      = "metrics.loss"
	IterationKey = "training.iteration"
)

// Error Context
const (
	// ErrorKey carries the error message.
	ErrorKey = "error"

	// StacktraceKey contains stack trace information for debugging.
	// Populated by Error when the first field is an error.
	StacktraceKey = "error.stacktrace"

	// SuggestionKey provides a hint for resolving the issue.
	SuggestionKey = "error.suggestion"
)

// Hyperparameters and Configuration
const (
	LearningRateKey = "hyperparams.learning_rate"
	MaxDepthKey     = "hyperparams.max_depth"
	RandomSeedKey   = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationEvaluate     = "evaluate"
	OperationLoad         = "load"

	PhaseTraining      = "training"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"
	PhaseEvaluation    = "evaluation"
)
