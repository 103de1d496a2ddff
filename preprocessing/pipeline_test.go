package preprocessing

import (
	"testing"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wantFeatureNames = []string{
	"Pclass", "SibSp", "Parch", "AgeBand", "FamilySize", "IsAlone", "FareBand",
	"Sex_female", "Sex_male",
	"Embarked_C", "Embarked_Q", "Embarked_S",
	"Title_Master", "Title_Miss", "Title_Mr", "Title_Mrs",
}

func TestPreprocessData(t *testing.T) {
	out, err := PreprocessData(passengers(), nil)
	require.NoError(t, err)

	assert.Equal(t, wantFeatureNames, out.Names())

	want := map[string][]frame.Value{
		"Pclass":       nums(3, 1, 3, 1, 3, 3, 1),
		"AgeBand":      nums(0, 4, 1, 3, 2, na, 5),
		"FamilySize":   nums(2, 2, 1, 2, 1, 1, 1),
		"IsAlone":      nums(0, 0, 1, 0, 1, 1, 1),
		"FareBand":     nums(0, 3, 0, 2, 0, 0, 1),
		"Sex_female":   nums(0, 1, 1, 1, 0, 0, 0),
		"Sex_male":     nums(1, 0, 0, 0, 1, 1, 1),
		"Embarked_C":   nums(0, 1, 0, 0, 0, 0, 1),
		"Embarked_Q":   nums(0, 0, 0, 0, 0, 1, 0),
		"Embarked_S":   nums(1, 0, 1, 1, 1, 0, 0),
		"Title_Master": nums(0, 0, 0, 0, 0, 1, 0),
		"Title_Miss":   nums(0, 0, 1, 0, 0, 0, 0),
		"Title_Mr":     nums(1, 0, 0, 0, 1, 0, 1),
		"Title_Mrs":    nums(0, 1, 0, 1, 0, 0, 0),
	}
	for name, values := range want {
		if diff := cmp.Diff(values, columnValues(t, out, name)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestPipelineAgeGlobalFallback(t *testing.T) {
	out, err := NewPipeline(nil, WithAgeGlobalFallback(true)).FitTransform(passengers())
	require.NoError(t, err)

	bands := columnValues(t, out, "AgeBand")
	assert.Zero(t, frame.Column{Values: bands}.MissingCount())
	assert.True(t, bands[5].Equal(frame.Num(2)), "Master falls back to the global mean age")
}

func TestPipelineWarnsOnRemainingMissingAge(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)

	_, err := PreprocessData(passengers(), logger)
	require.NoError(t, err)

	assert.True(t, logger.ContainsMessage("Age still missing"))
	assert.True(t, logger.ContainsField(log.MissingKey, 1.0))
	assert.True(t, logger.ContainsField(log.StepKey, "impute_age_by_title"))
	assert.True(t, logger.ContainsField(log.StepKey, "one_hot_encode"))
}

func TestPipelineParallelMatchesSequential(t *testing.T) {
	for _, fallback := range []bool{false, true} {
		seq, err := NewPipeline(nil, WithAgeGlobalFallback(fallback)).FitTransform(passengers())
		require.NoError(t, err)
		par, err := NewPipeline(nil, WithParallel(true), WithAgeGlobalFallback(fallback)).FitTransform(passengers())
		require.NoError(t, err)

		if diff := cmp.Diff(seq.Columns(), par.Columns()); diff != "" {
			t.Errorf("fallback=%v: parallel output differs (-seq +par):\n%s", fallback, diff)
		}
	}
}

func TestPipelineParallelPropagatesErrors(t *testing.T) {
	broken, err := passengers().With(col("Fare", strs("a", "b", "c", "d", "e", "f", "g")))
	require.NoError(t, err)

	_, err = NewPipeline(nil, WithParallel(true)).FitTransform(broken)
	var transformErr *errors.TransformError
	require.True(t, errors.As(err, &transformErr), "got %v", err)
	assert.Equal(t, "Fare", transformErr.Column)
}

func TestPipelineTransformUsesTrainingVocabulary(t *testing.T) {
	pipe := NewPipeline(nil)
	_, err := pipe.FitTransform(passengers())
	require.NoError(t, err)

	inference := frame.MustNew(
		col("PassengerId", nums(892, 893)),
		col("Pclass", nums(3, 3)),
		col("Name", strs("Kelly, Mr. James", "Wilkes, Mrs. James (Ellen Needs)")),
		col("Sex", strs("male", "female")),
		col("Age", nums(34.5, 47)),
		col("SibSp", nums(0, 1)),
		col("Parch", nums(0, 0)),
		col("Ticket", strs("330911", "363272")),
		col("Fare", nums(7.8292, 7)),
		col("Cabin", strs("", "")),
		col("Embarked", strs("Q", "S")),
	)

	out, err := pipe.Transform(inference)
	require.NoError(t, err)
	assert.Equal(t, wantFeatureNames, out.Names(), "inference table gets the training columns")
	assert.Empty(t, cmp.Diff(nums(0, 0), columnValues(t, out, "Title_Master")))
	assert.Empty(t, cmp.Diff(nums(1, 0), columnValues(t, out, "Embarked_Q")))

	stateless, err := PreprocessData(inference, nil)
	require.NoError(t, err)
	assert.NotEqual(t, wantFeatureNames, stateless.Names(), "per-call encoding drifts from training")
}

func TestPipelineTransformBeforeFit(t *testing.T) {
	_, err := NewPipeline(nil).Transform(passengers())
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
}

func TestPipelineWithEncoder(t *testing.T) {
	trained := NewPipeline(nil)
	require.NoError(t, trained.Fit(passengers()))

	restored := NewPipeline(nil, WithEncoder(trained.Encoder()), WithOptions(trained.Options()))
	out, err := restored.Transform(passengers())
	require.NoError(t, err)
	assert.Equal(t, wantFeatureNames, out.Names())
}

func TestPipelineSchemaErrors(t *testing.T) {
	for _, missing := range []string{"PassengerId", "Name", "Ticket", "Embarked"} {
		t.Run(missing, func(t *testing.T) {
			tbl, err := passengers().Drop(missing)
			require.NoError(t, err)

			_, err = PreprocessData(tbl, nil)
			var schemaErr *errors.SchemaError
			require.True(t, errors.As(err, &schemaErr), "got %v", err)
			assert.Equal(t, missing, schemaErr.Column)
		})
	}
}
