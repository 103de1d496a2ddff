package commands

import (
	"fmt"

	"github.com/YuminosukeSato/mlcli/internal/artifact"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"github.com/spf13/cobra"
)

// NewImportanceCommand creates the importance command.
func NewImportanceCommand() *cobra.Command {
	var modelFile string

	cmd := &cobra.Command{
		Use:   "importance",
		Short: "Show the feature importance of a trained model",
		Long: `Print the gain importance of every training feature, normalised to sum to
one. Features the model never split on are listed with zero.`,
		Example: `  mlcli importance --model-file model.gob`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, lib, done, err := startLogging(cmd, "")
			if err != nil {
				return err
			}
			defer done()

			art, err := artifact.Load(modelFile)
			if err != nil {
				return err
			}
			logger.Debug("Loaded model", log.PathKey, modelFile, log.EstimatorIDKey, art.ID)
			imp, err := art.Classifier(lib).FeatureImportance()
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "feature", "importance")
			for _, fi := range imp {
				t.AppendRow([]interface{}{fi.Feature, formatFloat(fi.Importance)})
			}
			t.Render()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Model %s, %d trees\n", art.ID, len(art.Model.Trees))
			return nil
		},
	}

	cmd.Flags().StringVar(&modelFile, "model-file", "model.gob", "Path to the trained model")
	return cmd
}
