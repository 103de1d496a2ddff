package gbdt

import (
	"math"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/core/model"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"gonum.org/v1/gonum/mat"
)

const modelName = "GBDTClassifier"

// Classifier is a gradient-boosted binary classifier over record tables.
type Classifier struct {
	Params Params

	model  *Model
	state  *model.StateManager
	logger log.Logger
}

var _ model.Classifier = (*Classifier)(nil)

// NewClassifier creates an unfitted classifier. A nil logger discards output.
func NewClassifier(params Params, logger log.Logger) *Classifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Classifier{
		Params: params,
		state:  model.NewStateManager(),
		logger: logger.With(log.ModelNameKey, modelName),
	}
}

// FromModel wraps a previously fitted model.
func FromModel(m *Model, logger log.Logger) *Classifier {
	c := NewClassifier(m.Params, logger)
	c.model = m
	c.state.SetDimensions(m.NumFeatures(), 0)
	c.state.SetFitted()
	return c
}

// Model returns the fitted ensemble, or nil before Fit.
func (c *Classifier) Model() *Model {
	return c.model
}

// IsFitted reports whether Fit has completed.
func (c *Classifier) IsFitted() bool {
	return c.state.IsFitted()
}

// Fit trains on every column of features. Columns must be numeric with NaN
// allowed; labels must be 0 or 1 with no missing values.
func (c *Classifier) Fit(features *frame.Table, labels frame.Column) error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if features.NumRows() != labels.Len() {
		return errors.NewDimensionError("Fit", features.NumRows(), labels.Len(), 0)
	}
	y, err := binaryLabels(labels)
	if err != nil {
		return err
	}
	names := features.Names()
	X, err := features.Matrix(names)
	if err != nil {
		return errors.Wrap(err, "fit")
	}

	logger := c.logger.With(log.OperationKey, log.OperationFit, log.PhaseKey, log.PhaseTraining)
	logger.Info("Training model",
		log.SamplesKey, features.NumRows(),
		log.FeaturesKey, len(names),
		log.MaxDepthKey, c.Params.MaxDepth,
		log.LearningRateKey, c.Params.LearningRate,
		log.RandomSeedKey, c.Params.Seed,
		"num_boost_round", c.Params.NumBoostRound,
	)

	t, err := newTrainer(c.Params, X, y, logger)
	if err != nil {
		return err
	}
	m, err := t.train(names)
	if err != nil {
		return err
	}

	c.model = m
	c.state.SetDimensions(len(names), features.NumRows())
	c.state.SetFitted()
	return nil
}

// PredictProba returns the probability of the positive class for each row.
// Columns are matched to the training features by name; extra columns are
// ignored.
func (c *Classifier) PredictProba(features *frame.Table) ([]float64, error) {
	if err := c.state.RequireFitted(modelName, "PredictProba"); err != nil {
		return nil, err
	}
	X, err := c.align(features)
	if err != nil {
		return nil, err
	}
	return c.model.PredictProba(X)
}

// Predict returns class labels. Probabilities are rounded half to even, so
// exactly 0.5 maps to 0.
func (c *Classifier) Predict(features *frame.Table) ([]float64, error) {
	if err := c.state.RequireFitted(modelName, "Predict"); err != nil {
		return nil, err
	}
	proba, err := c.PredictProba(features)
	if err != nil {
		return nil, err
	}
	for i, p := range proba {
		proba[i] = math.RoundToEven(p)
	}
	return proba, nil
}

// FeatureImportance is the gain importance of one training feature.
type FeatureImportance struct {
	Feature    string
	Importance float64
}

// FeatureImportance returns the normalised average-gain importance of every
// training feature in training order. Features never used score zero.
func (c *Classifier) FeatureImportance() ([]FeatureImportance, error) {
	if err := c.state.RequireFitted(modelName, "FeatureImportance"); err != nil {
		return nil, err
	}
	scores := c.model.Importance()
	out := make([]FeatureImportance, len(scores))
	for j, s := range scores {
		out[j] = FeatureImportance{Feature: c.model.FeatureNames[j], Importance: s}
	}
	return out, nil
}

func (c *Classifier) align(features *frame.Table) (*mat.Dense, error) {
	for _, name := range c.model.FeatureNames {
		if !features.Has(name) {
			return nil, errors.NewSchemaError("predict", name)
		}
	}
	return features.Matrix(c.model.FeatureNames)
}

func binaryLabels(labels frame.Column) ([]float64, error) {
	y := make([]float64, labels.Len())
	for i, v := range labels.Values {
		f, ok := v.Float()
		if !ok || (f != 0 && f != 1) {
			return nil, errors.NewValidationError(labels.Name, "labels must be 0 or 1", v.String())
		}
		y[i] = f
	}
	return y, nil
}
