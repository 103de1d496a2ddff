package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/dataset"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"github.com/spf13/cobra"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	var inputFile string
	var columns []string
	var top int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Report data quality of a passenger CSV",
		Long: `Print missing values, inferred column kinds, duplicate rows, numeric
statistics (mean, std, min, max, skew, kurtosis) and the value distribution of
categorical columns.`,
		Example: `  mlcli inspect --input-file train.csv
  mlcli inspect --input-file train.csv --column Embarked --column Sex`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, lib, done, err := startLogging(cmd, "")
			if err != nil {
				return err
			}
			defer done()

			t, err := dataset.NewLoader(lib).LoadCSV(inputFile)
			if err != nil {
				return err
			}
			summaries := dataset.Summarize(t)
			if len(columns) == 0 {
				for _, s := range summaries {
					if s.Kind == frame.KindString.String() {
						columns = append(columns, s.Name)
					}
				}
			}

			out := cmd.OutOrStdout()
			renderMissing(out, summaries)
			renderKinds(out, summaries)
			_, _ = fmt.Fprintf(out, "Duplicate rows: %d\n", dataset.DuplicateRows(t))
			renderNumeric(out, summaries)
			for _, c := range columns {
				dist, err := dataset.Distribution(t, c)
				if err != nil {
					return err
				}
				renderDistribution(out, c, dist, top)
			}
			logger.Debug("Inspection finished", log.SamplesKey, t.NumRows(), log.FeaturesKey, t.NumCols())
			return nil
		},
	}

	cmd.Flags().StringVar(&inputFile, "input-file", "", "Path to the input CSV file")
	cmd.Flags().StringSliceVar(&columns, "column", nil, "Columns to show the value distribution of (default: string columns)")
	cmd.Flags().IntVar(&top, "top", 10, "Maximum number of values listed per distribution (0 for all)")
	_ = cmd.MarkFlagRequired("input-file")

	return cmd
}

// renderMissing lists columns with missing values, highest share first.
func renderMissing(w io.Writer, summaries []dataset.ColumnSummary) {
	var missing []dataset.ColumnSummary
	for _, s := range summaries {
		if s.Missing > 0 {
			missing = append(missing, s)
		}
	}
	if len(missing) == 0 {
		_, _ = fmt.Fprintln(w, "No missing values")
		return
	}
	sort.SliceStable(missing, func(i, j int) bool { return missing[i].MissingPct > missing[j].MissingPct })

	t := newTable(w, "column", "missing", "missing %")
	for _, s := range missing {
		t.AppendRow([]interface{}{s.Name, s.Missing, fmt.Sprintf("%.1f", s.MissingPct)})
	}
	t.Render()
}

func renderKinds(w io.Writer, summaries []dataset.ColumnSummary) {
	t := newTable(w, "column", "kind", "count", "unique")
	for _, s := range summaries {
		t.AppendRow([]interface{}{s.Name, s.Kind, s.Count, s.Unique})
	}
	t.Render()
}

func renderNumeric(w io.Writer, summaries []dataset.ColumnSummary) {
	t := newTable(w, "column", "mean", "std", "min", "max", "skew", "kurtosis")
	for _, s := range summaries {
		if !s.Numeric() {
			continue
		}
		t.AppendRow([]interface{}{
			s.Name,
			formatFloat(s.Mean), formatFloat(s.Std),
			formatFloat(s.Min), formatFloat(s.Max),
			formatFloat(s.Skew), formatFloat(s.Kurtosis),
		})
	}
	t.Render()
}

func renderDistribution(w io.Writer, column string, dist []dataset.CategoryCount, top int) {
	t := newTable(w, column, "count")
	for i, c := range dist {
		if top > 0 && i >= top {
			t.AppendFooter([]interface{}{fmt.Sprintf("... %d more", len(dist)-top), ""})
			break
		}
		value := c.Value
		if value == "" {
			value = "<missing>"
		}
		t.AppendRow([]interface{}{value, c.Count})
	}
	t.Render()
}
