package dataset

import (
	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/metrics"
)

// PredictionColumn is the header of the predictions file.
const PredictionColumn = "predictions"

// WritePredictions writes one prediction per row under the "predictions"
// header.
func WritePredictions(path string, predictions []float64) error {
	vals := make([]frame.Value, len(predictions))
	for i, p := range predictions {
		vals[i] = frame.Num(p)
	}
	t, err := frame.New(frame.Column{Name: PredictionColumn, Values: vals})
	if err != nil {
		return err
	}
	return WriteCSVFile(path, t)
}

// WriteEvaluation writes a single-row file with the accuracy, precision,
// recall, f1 and auc columns of the report.
func WriteEvaluation(path string, r metrics.Report) error {
	cols := make([]frame.Column, 0, 5)
	for _, m := range r.Fields() {
		cols = append(cols, frame.NewColumn(m.Name, frame.Num(m.Value)))
	}
	t, err := frame.New(cols...)
	if err != nil {
		return err
	}
	return WriteCSVFile(path, t)
}
