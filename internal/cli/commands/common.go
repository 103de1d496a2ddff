// Package commands implements the mlcli subcommands.
package commands

import (
	"fmt"
	"io"
	"math"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/internal/cli/config"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// startLogging opens the command's log file next to console output on
// stderr and routes metric warnings into it. It returns the command's own
// logger (component "cli") and the logger handed to library components,
// which tag their own component. Both carry the command name as operation.
// The returned func restores the warning handler and closes the file.
func startLogging(cmd *cobra.Command, logFile string) (logger, lib log.Logger, done func(), err error) {
	cfg := config.FromContext(cmd.Context())
	provider, closer, err := log.Setup(log.Options{
		Level:   cfg.Level(),
		File:    logFile,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, nil, err
	}
	logger = provider.GetLoggerWithName("cli").With(log.OperationKey, cmd.Name())
	lib = provider.GetLogger().With(log.OperationKey, cmd.Name())

	prev := errors.SetWarningHandler(func(w error) {
		logger.Warn("Metric is ill-defined", w)
	})

	return logger, lib, func() {
		errors.SetWarningHandler(prev)
		_ = closer.Close()
	}, nil
}

// labelVector converts a target column to a vector; missing labels fail.
func labelVector(c frame.Column) (*mat.VecDense, error) {
	fs, err := c.Floats()
	if err != nil {
		return nil, err
	}
	for i, f := range fs {
		if math.IsNaN(f) {
			return nil, errors.NewTransformError("labels", c.Name, i, errors.New("missing label"))
		}
	}
	return mat.NewVecDense(len(fs), fs), nil
}

func newTable(w io.Writer, header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.4f", f)
}
