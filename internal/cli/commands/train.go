package commands

import (
	"fmt"

	"github.com/YuminosukeSato/mlcli/dataset"
	"github.com/YuminosukeSato/mlcli/internal/artifact"
	"github.com/YuminosukeSato/mlcli/internal/cli/config"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"github.com/YuminosukeSato/mlcli/preprocessing"
	"github.com/YuminosukeSato/mlcli/sklearn/gbdt"
	"github.com/spf13/cobra"
)

// NewTrainCommand creates the train command.
func NewTrainCommand() *cobra.Command {
	var dataFile, logFile, modelFile string
	var cv int

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model on a labelled passenger CSV",
		Long: `Load the labelled CSV, run the feature pipeline, fit the gradient-boosted
classifier and save the model together with the fitted encoder vocabulary.`,
		Example: `  mlcli train --data-file train.csv
  mlcli train --data-file train.csv --max_depth 4 --num_boost_round 200 --cv 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, lib, done, err := startLogging(cmd, logFile)
			if err != nil {
				return err
			}
			defer done()
			cfg := config.FromContext(cmd.Context())

			logger.Info("Loading and preprocessing data", log.PathKey, dataFile)
			raw, y, err := dataset.NewLoader(lib).MakeDataset(dataFile, cfg.Target)
			if err != nil {
				return err
			}
			pipe := preprocessing.NewPipeline(lib, preprocessing.WithOptions(cfg.Pipeline.Options()))
			X, err := pipe.FitTransform(raw)
			if err != nil {
				return err
			}

			if cv > 0 {
				res, err := gbdt.CrossValidate(cfg.Model, X, y, cv, lib)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cross-validation accuracy: %.4f (+/- %.4f) over %d folds\n",
					res.Mean(), res.Std(), cv)
			}

			clf := gbdt.NewClassifier(cfg.Model, lib)
			if err := clf.Fit(X, y); err != nil {
				return err
			}

			art, err := artifact.New(clf, pipe, cfg.Target)
			if err != nil {
				return err
			}
			logger.Info("Saving model", log.PathKey, modelFile, log.EstimatorIDKey, art.ID)
			if err := art.Save(modelFile); err != nil {
				return err
			}
			logger.Info("Training complete")

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully saved model to %s\n", modelFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFile, "data-file", "", "Path to the input data file")
	cmd.Flags().StringVar(&logFile, "log-file", "train.log", "Path to the log file")
	cmd.Flags().StringVar(&modelFile, "model-file", "model.gob", "Path to save the trained model")
	cmd.Flags().IntVar(&cv, "cv", 0, "Number of cross-validation folds to report before training (0 disables)")
	_ = cmd.MarkFlagRequired("data-file")

	d := gbdt.DefaultParams()
	cmd.Flags().Int("max_depth", d.MaxDepth, "Maximum depth of a tree")
	cmd.Flags().Float64("learning_rate", d.LearningRate, "Learning rate")
	cmd.Flags().String("objective", d.Objective, "Objective function")
	cmd.Flags().String("eval_metric", d.EvalMetric, "Evaluation metric (logloss, error or auc)")
	cmd.Flags().Float64("min_child_weight", d.MinChildWeight, "Minimum sum of instance weight (hessian) needed in a child")
	cmd.Flags().Float64("subsample", d.Subsample, "Subsample ratio of the training instances")
	cmd.Flags().Float64("colsample_bytree", d.ColsampleByTree, "Subsample ratio of columns when constructing each tree")
	cmd.Flags().Int("num_boost_round", d.NumBoostRound, "Number of boosting rounds")
	cmd.Flags().Int("early_stopping_rounds", d.EarlyStoppingRounds, "Early stopping rounds (0 disables)")
	cmd.Flags().Int("seed", d.Seed, "Random seed")
	cmd.Flags().Float64("lambda", d.Lambda, "L2 regularization on leaf weights")
	cmd.Flags().Bool("age-global-fallback", false, "Fill ages left missing after grouped imputation with the global mean")

	return cmd
}
