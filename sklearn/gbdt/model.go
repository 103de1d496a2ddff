package gbdt

import (
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Model is a fitted ensemble. All fields are exported so it can be
// gob-encoded inside a model artifact.
type Model struct {
	FeatureNames []string
	Trees        []Tree
	BaseScore    float64 // initial margin
	Params       Params

	BestIteration int
	BestScore     float64

	// Per-feature split statistics, indexed like FeatureNames.
	GainSum    []float64
	SplitCount []int
}

// NumFeatures returns the number of input columns the model expects.
func (m *Model) NumFeatures() int {
	return len(m.FeatureNames)
}

// PredictRaw returns the margin for one row.
func (m *Model) PredictRaw(row []float64) float64 {
	out := m.BaseScore
	for i := range m.Trees {
		out += m.Trees[i].Predict(row)
	}
	return out
}

// PredictProba returns the positive class probability for every row of X.
func (m *Model) PredictProba(X mat.Matrix) ([]float64, error) {
	rows, cols := X.Dims()
	if cols != m.NumFeatures() {
		return nil, errors.NewDimensionError("PredictProba", m.NumFeatures(), cols, 1)
	}
	out := make([]float64, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		out[i] = errors.Sigmoid(m.PredictRaw(row))
	}
	return out, nil
}

// Importance returns the normalised gain importance of every feature, in
// FeatureNames order.
func (m *Model) Importance() []float64 {
	return normalizedImportance(m.GainSum, m.SplitCount)
}
