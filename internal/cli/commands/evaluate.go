package commands

import (
	"fmt"

	"github.com/YuminosukeSato/mlcli/dataset"
	"github.com/YuminosukeSato/mlcli/internal/artifact"
	"github.com/YuminosukeSato/mlcli/internal/cli/config"
	"github.com/YuminosukeSato/mlcli/metrics"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// NewEvaluateCommand creates the evaluate command.
func NewEvaluateCommand() *cobra.Command {
	var inputFile, modelFile, outputFile, logFile string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a trained model on a labelled passenger CSV",
		Long: `Score a labelled CSV with a trained model and write accuracy, precision,
recall, F1 and AUC (rounded to two decimals) to a CSV file.`,
		Example: `  mlcli evaluate --input-file valid.csv --model-file model.gob`,
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
			raw, y, err := dataset.NewLoader(lib).MakeDataset(inputFile, art.Target)
			if err != nil {
				return err
			}
			yTrue, err := labelVector(y)
			if err != nil {
				return err
			}

			X, err := art.NewPipeline(lib, &cfg.Pipeline.Parallel).Transform(raw)
			if err != nil {
				return err
			}

			logger.Info("Making predictions and evaluating model")
			clf := art.Classifier(lib)
			proba, err := clf.PredictProba(X)
			if err != nil {
				return err
			}
			pred, err := clf.Predict(X)
			if err != nil {
				return err
			}
			report, err := metrics.Evaluate(yTrue,
				mat.NewVecDense(len(pred), pred),
				mat.NewVecDense(len(proba), proba),
			)
			if err != nil {
				return err
			}

			fields := []interface{}{log.PathKey, outputFile}
			for _, f := range report.Fields() {
				fields = append(fields, f.Name, f.Value)
			}
			logger.Info("Saving evaluation results", fields...)
			if err := dataset.WriteEvaluation(outputFile, report); err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "metric", "value")
			for _, f := range report.Fields() {
				t.AppendRow([]interface{}{f.Name, fmt.Sprintf("%.2f", f.Value)})
			}
			t.Render()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully saved evaluation results to %s.\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputFile, "input-file", "", "Path to the input CSV file")
	cmd.Flags().StringVar(&modelFile, "model-file", "", "Path to the trained model")
	cmd.Flags().StringVar(&outputFile, "output-file", "evaluation_results.csv", "Path to the output CSV file")
	cmd.Flags().StringVar(&logFile, "log-file", "evaluate.log", "Path to the log file")
	_ = cmd.MarkFlagRequired("input-file")
	_ = cmd.MarkFlagRequired("model-file")

	return cmd
}
