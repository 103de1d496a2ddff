package commands

import (
	"fmt"
	"math"
	"sort"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/dataset"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	var inputFile, column, hue, out string
	var bins int

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot the histogram of a numeric column",
		Long: `Draw a histogram of a numeric column to a PNG file. With --hue one
histogram is overlaid per value of the grouping column.`,
		Example: `  mlcli plot --input-file train.csv --column Age --hue Survived`,
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
			groups, err := histogramGroups(t, column, hue)
			if err != nil {
				return err
			}
			if out == "" {
				out = column + "_hist.png"
			}
			err = errors.SafeExecute("render histogram", func() error {
				return drawHistograms(groups, column, hue, bins, out)
			})
			if err != nil {
				return err
			}
			logger.Info("Saved plot", log.PathKey, out, log.ColumnKey, column, "groups", len(groups))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully saved plot to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputFile, "input-file", "", "Path to the input CSV file")
	cmd.Flags().StringVar(&column, "column", "", "Numeric column to plot")
	cmd.Flags().StringVar(&hue, "hue", "", "Column whose values split the data into overlaid histograms")
	cmd.Flags().IntVar(&bins, "bins", 20, "Number of histogram bins")
	cmd.Flags().StringVar(&out, "out", "", "Output PNG path (default <column>_hist.png)")
	_ = cmd.MarkFlagRequired("input-file")
	_ = cmd.MarkFlagRequired("column")

	return cmd
}

// histGroup is the present values of one hue level.
type histGroup struct {
	level  frame.Value
	label  string
	values plotter.Values
}

// histogramGroups splits the present values of column by the hue column.
// Rows with a missing value or hue are skipped. Groups are ordered by hue.
func histogramGroups(t *frame.Table, column, hue string) ([]histGroup, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	xs, err := c.Floats()
	if err != nil {
		return nil, err
	}

	var h frame.Column
	if hue != "" {
		if h, err = t.Column(hue); err != nil {
			return nil, err
		}
	}

	index := map[string]int{}
	var groups []histGroup
	for i, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		level := frame.Str("all")
		if hue != "" {
			level = h.Values[i]
			if level.IsMissing() {
				continue
			}
		}
		g, ok := index[level.Key()]
		if !ok {
			g = len(groups)
			index[level.Key()] = g
			groups = append(groups, histGroup{level: level, label: level.String()})
		}
		groups[g].values = append(groups[g].values, x)
	}
	if len(groups) == 0 {
		return nil, errors.NewEmptyColumnError("plot", column)
	}

	sort.Slice(groups, func(i, j int) bool { return frame.Less(groups[i].level, groups[j].level) })
	if hue != "" {
		for i := range groups {
			groups[i].label = fmt.Sprintf("%s = %s", hue, groups[i].label)
		}
	}
	return groups, nil
}

func drawHistograms(groups []histGroup, column, hue string, bins int, out string) error {
	if bins < 1 {
		return errors.NewValidationError("bins", "must be at least 1", bins)
	}
	p := plot.New()
	p.Title.Text = "Distribution of " + column
	if hue != "" {
		p.Title.Text += " by " + hue
	}
	p.X.Label.Text = column
	p.Y.Label.Text = "Count"

	for i, g := range groups {
		h, err := plotter.NewHist(g.values, bins)
		if err != nil {
			return errors.Wrapf(err, "histogram for %s", g.label)
		}
		h.FillColor = plotutil.Color(i)
		h.LineStyle.Width = vg.Points(0.5)
		p.Add(h)
		if len(groups) > 1 {
			p.Legend.Add(g.label, h)
		}
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, out); err != nil {
		return errors.Wrapf(err, "save plot %s", out)
	}
	return nil
}
