// Package artifact bundles everything needed to score new passengers into a
// single gob file: the fitted ensemble, the categorical vocabulary learned by
// the feature pipeline and the pipeline switches used during training.
package artifact

import (
	"time"

	"github.com/YuminosukeSato/mlcli/core/model"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"github.com/YuminosukeSato/mlcli/preprocessing"
	"github.com/YuminosukeSato/mlcli/sklearn/gbdt"
	"github.com/google/uuid"
)

// Artifact is the persisted result of a training run.
type Artifact struct {
	ID        string
	CreatedAt time.Time
	Target    string

	Model    *gbdt.Model
	Encoder  *preprocessing.OneHotEncoder
	Pipeline preprocessing.Options
}

// New creates an artifact from a fitted classifier and pipeline.
func New(clf *gbdt.Classifier, pipe *preprocessing.Pipeline, target string) (*Artifact, error) {
	if !clf.IsFitted() {
		return nil, errors.NewNotFittedError("GBDTClassifier", "artifact.New")
	}
	enc := pipe.Encoder()
	if enc.State == nil || !enc.State.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "artifact.New")
	}
	return &Artifact{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Target:    target,
		Model:     clf.Model(),
		Encoder:   enc,
		Pipeline:  pipe.Options(),
	}, nil
}

// Save writes the artifact to path.
func (a *Artifact) Save(path string) error {
	return errors.Wrapf(model.SaveModel(a, path), "save artifact %s", a.ID)
}

// Load reads an artifact. It fails with a NotFoundError when path cannot be
// opened and with a ModelError when the file is not a valid artifact.
func Load(path string) (*Artifact, error) {
	var a Artifact
	if err := model.LoadModel(&a, path); err != nil {
		var nf *errors.NotFoundError
		if errors.As(err, &nf) {
			return nil, err
		}
		return nil, errors.NewModelError("artifact.Load", "decode", err)
	}
	if a.Model == nil || a.Encoder == nil {
		return nil, errors.NewValueError("artifact.Load", "artifact is missing the model or the encoder")
	}
	return &a, nil
}

// Classifier rebuilds the fitted classifier.
func (a *Artifact) Classifier(logger log.Logger) *gbdt.Classifier {
	return gbdt.FromModel(a.Model, a.logger(logger))
}

// NewPipeline rebuilds the feature pipeline with the training vocabulary and
// switches. parallel overrides the stored Parallel switch when non-nil.
func (a *Artifact) NewPipeline(logger log.Logger, parallel *bool) *preprocessing.Pipeline {
	opts := a.Pipeline
	if parallel != nil {
		opts.Parallel = *parallel
	}
	return preprocessing.NewPipeline(a.logger(logger),
		preprocessing.WithOptions(opts),
		preprocessing.WithEncoder(a.Encoder),
	)
}

func (a *Artifact) logger(logger log.Logger) log.Logger {
	if logger == nil {
		logger = log.Nop()
	}
	return logger.With(log.EstimatorIDKey, a.ID)
}
