// Package mlcli trains and applies a gradient-boosted survival classifier
// for the Titanic passenger dataset.
//
// The repository is a command-line tool built on a small set of library
// packages:
//
//   - core/frame: typed record tables with missing values
//   - core/model: estimator interfaces, fitted state and gob persistence
//   - core/parallel: chunked parallel loops
//   - dataset: CSV loading, output files and data-quality summaries
//   - preprocessing: the feature pipeline (titles, imputation, binning,
//     family features and one-hot encoding)
//   - sklearn/gbdt: the gradient-boosted tree classifier and
//     stratified cross-validation
//   - metrics: binary classification metrics
//   - pkg/errors, pkg/log: structured errors and logging
//
// # Installation
//
//	go install github.com/YuminosukeSato/mlcli/cmd/mlcli@latest
//
// # Quick Start
//
//	mlcli train --data-file train.csv
//	mlcli predict --input-file test.csv
//	mlcli evaluate --input-file holdout.csv --model-file model.gob
//
// Settings are layered: built-in defaults, then mlcli.yaml, then MLCLI_
// environment variables (MLCLI_MODEL__MAX_DEPTH=4), then flags.
//
// # Library use
//
//	raw, y, err := dataset.NewLoader(logger).MakeDataset("train.csv", "Survived")
//	pipe := preprocessing.NewPipeline(logger)
//	X, err := pipe.FitTransform(raw)
//	clf := gbdt.NewClassifier(gbdt.DefaultParams(), logger)
//	err = clf.Fit(X, y)
//	proba, err := clf.PredictProba(X)
package mlcli
