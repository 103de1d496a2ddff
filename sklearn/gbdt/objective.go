package gbdt

import (
	"math"

	"github.com/YuminosukeSato/mlcli/metrics"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// minHessian keeps leaf weights finite when predictions saturate.
const minHessian = 1e-16

// logistic is the binary:logistic objective on raw margins.
type logistic struct{}

// Gradients fills grad and hess for the margins in raw.
func (logistic) Gradients(raw, y, grad, hess []float64) {
	for i := range raw {
		p := errors.Sigmoid(raw[i])
		grad[i] = p - y[i]
		hess[i] = math.Max(p*(1-p), minHessian)
	}
}

// InitScore is the log-odds of the positive rate, clipped away from 0 and 1.
func (logistic) InitScore(y []float64) float64 {
	var pos float64
	for _, v := range y {
		pos += v
	}
	p := errors.ClipValue(pos/float64(len(y)), 1e-6, 1-1e-6)
	return math.Log(p / (1 - p))
}

// evalMetric scores probabilities against labels.
type evalMetric struct {
	name     string
	minimize bool
	score    func(y, proba []float64) (float64, error)
}

func newEvalMetric(name string) (evalMetric, error) {
	switch name {
	case MetricLogLoss:
		return evalMetric{name: name, minimize: true, score: func(y, proba []float64) (float64, error) {
			return metrics.BinaryLogLoss(vec(y), vec(proba))
		}}, nil
	case MetricError:
		return evalMetric{name: name, minimize: true, score: func(y, proba []float64) (float64, error) {
			return metrics.ClassificationError(vec(y), vec(roundAll(proba)))
		}}, nil
	case MetricAUC:
		return evalMetric{name: name, minimize: false, score: func(y, proba []float64) (float64, error) {
			return metrics.AUC(vec(y), vec(proba))
		}}, nil
	default:
		return evalMetric{}, errors.NewValidationError("eval_metric", "must be logloss, error or auc", name)
	}
}

func vec(xs []float64) *mat.VecDense {
	return mat.NewVecDense(len(xs), xs)
}

func roundAll(proba []float64) []float64 {
	out := make([]float64, len(proba))
	for i, p := range proba {
		out[i] = math.Round(p)
	}
	return out
}
