package commands

import (
	"fmt"

	"github.com/YuminosukeSato/mlcli/dataset"
	"github.com/YuminosukeSato/mlcli/internal/artifact"
	"github.com/YuminosukeSato/mlcli/internal/cli/config"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"github.com/spf13/cobra"
)

// NewPredictCommand creates the predict command.
func NewPredictCommand() *cobra.Command {
	var inputFile, outputFile, modelFile, logFile string
	var probability bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict survival for a passenger CSV",
		Long: `Load a trained model, run the feature pipeline with the training vocabulary
and write one prediction per row to a CSV file.`,
		Example: `  mlcli predict --input-file test.csv
  mlcli predict --input-file test.csv --probability --output-file proba.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, lib, done, err := startLogging(cmd, logFile)
			if err != nil {
				return err
			}
			defer done()
			cfg := config.FromContext(cmd.Context())

			logger.Info("Loading model", log.PathKey, modelFile)
			art, err := artifact.Load(modelFile)
			if err != nil {
				return err
			}

			logger.Info("Loading data", log.PathKey, inputFile)
			raw, err := dataset.NewLoader(lib).LoadCSV(inputFile)
			if err != nil {
				return err
			}

			X, err := art.NewPipeline(lib, &cfg.Pipeline.Parallel).Transform(raw)
			if err != nil {
				return err
			}

			clf := art.Classifier(lib)
			var preds []float64
			if probability {
				preds, err = clf.PredictProba(X)
			} else {
				preds, err = clf.Predict(X)
			}
			if err != nil {
				return err
			}

			logger.Info("Saving predictions", log.PathKey, outputFile, log.SamplesKey, len(preds))
			if err := dataset.WritePredictions(outputFile, preds); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully saved predictions to %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputFile, "input-file", "", "Path to the input CSV file")
	cmd.Flags().StringVar(&outputFile, "output-file", "predictions.csv", "Path to the output CSV file")
	cmd.Flags().StringVar(&modelFile, "model-file", "model.gob", "Path to the trained model")
	cmd.Flags().StringVar(&logFile, "log-file", "predict.log", "Path to the log file")
	cmd.Flags().BoolVar(&probability, "probability", false, "Write positive class probabilities instead of labels")
	_ = cmd.MarkFlagRequired("input-file")

	return cmd
}
