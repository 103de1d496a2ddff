package gbdt

import (
	"github.com/YuminosukeSato/mlcli/pkg/errors"
)

// Supported objective and evaluation metric names.
const (
	ObjectiveBinaryLogistic = "binary:logistic"

	MetricLogLoss = "logloss"
	MetricError   = "error"
	MetricAUC     = "auc"
)

// Params are the boosting hyperparameters. Field names follow the command
// line flags of the train command.
type Params struct {
	MaxDepth            int     `koanf:"max_depth" json:"max_depth"`
	LearningRate        float64 `koanf:"learning_rate" json:"learning_rate"`
	Objective           string  `koanf:"objective" json:"objective"`
	EvalMetric          string  `koanf:"eval_metric" json:"eval_metric"`
	MinChildWeight      float64 `koanf:"min_child_weight" json:"min_child_weight"`
	Subsample           float64 `koanf:"subsample" json:"subsample"`
	ColsampleByTree     float64 `koanf:"colsample_bytree" json:"colsample_bytree"`
	NumBoostRound       int     `koanf:"num_boost_round" json:"num_boost_round"`
	EarlyStoppingRounds int     `koanf:"early_stopping_rounds" json:"early_stopping_rounds"`
	Seed                int     `koanf:"seed" json:"seed"`
	Lambda              float64 `koanf:"lambda" json:"lambda"`
}

// DefaultParams returns the defaults of the train command.
func DefaultParams() Params {
	return Params{
		MaxDepth:            3,
		LearningRate:        0.1,
		Objective:           ObjectiveBinaryLogistic,
		EvalMetric:          MetricLogLoss,
		MinChildWeight:      1,
		Subsample:           0.8,
		ColsampleByTree:     0.8,
		NumBoostRound:       100,
		EarlyStoppingRounds: 10,
		Seed:                42,
		Lambda:              1,
	}
}

// Validate checks every parameter and returns the first ValidationError.
func (p Params) Validate() error {
	switch {
	case p.MaxDepth < 1:
		return errors.NewValidationError("max_depth", "must be at least 1", p.MaxDepth)
	case p.LearningRate <= 0 || p.LearningRate > 1:
		return errors.NewValidationError("learning_rate", "must be in (0, 1]", p.LearningRate)
	case p.Objective != ObjectiveBinaryLogistic:
		return errors.NewValidationError("objective", "only binary:logistic is supported", p.Objective)
	case p.MinChildWeight < 0:
		return errors.NewValidationError("min_child_weight", "must be non-negative", p.MinChildWeight)
	case p.Subsample <= 0 || p.Subsample > 1:
		return errors.NewValidationError("subsample", "must be in (0, 1]", p.Subsample)
	case p.ColsampleByTree <= 0 || p.ColsampleByTree > 1:
		return errors.NewValidationError("colsample_bytree", "must be in (0, 1]", p.ColsampleByTree)
	case p.NumBoostRound < 1:
		return errors.NewValidationError("num_boost_round", "must be at least 1", p.NumBoostRound)
	case p.EarlyStoppingRounds < 0:
		return errors.NewValidationError("early_stopping_rounds", "must be non-negative", p.EarlyStoppingRounds)
	case p.Lambda < 0:
		return errors.NewValidationError("lambda", "must be non-negative", p.Lambda)
	}
	if _, err := newEvalMetric(p.EvalMetric); err != nil {
		return err
	}
	return nil
}
