package gbdt

import (
	"bytes"
	"math"
	"testing"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/core/model"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable returns n rows where label is 1 exactly when x >= 0.5. The
// second column is constant.
func separable(n int) (*frame.Table, frame.Column) {
	x := make([]frame.Value, n)
	c := make([]frame.Value, n)
	y := make([]frame.Value, n)
	for i := 0; i < n; i++ {
		v := float64(i) / float64(n)
		x[i] = frame.Num(v)
		c[i] = frame.Num(1)
		if v >= 0.5 {
			y[i] = frame.Num(1)
		} else {
			y[i] = frame.Num(0)
		}
	}
	tbl := frame.MustNew(frame.Column{Name: "x", Values: x}, frame.Column{Name: "const", Values: c})
	return tbl, frame.Column{Name: "Survived", Values: y}
}

func testParams() Params {
	p := DefaultParams()
	p.Subsample = 1
	p.ColsampleByTree = 1
	p.NumBoostRound = 30
	p.EarlyStoppingRounds = 0
	return p
}

func TestClassifierFitSeparable(t *testing.T) {
	X, y := separable(50)
	logger, _ := log.NewTestLogger(log.LevelInfo)

	clf := NewClassifier(testParams(), logger)
	require.NoError(t, clf.Fit(X, y))
	assert.True(t, clf.IsFitted())

	proba, err := clf.PredictProba(X)
	require.NoError(t, err)
	pred, err := clf.Predict(X)
	require.NoError(t, err)

	for i := range proba {
		assert.Greater(t, proba[i], 0.0)
		assert.Less(t, proba[i], 1.0)
		want, _ := y.Values[i].Float()
		assert.Equal(t, want, pred[i], "row %d", i)
	}

	assert.Len(t, clf.Model().Trees, 30)
	assert.True(t, logger.ContainsMessage("Training model"))
	assert.True(t, logger.ContainsMessage("Training finished"))
}

func TestClassifierMissingDefaultDirection(t *testing.T) {
	// Positives have no x value; negatives all do.
	n := 40
	x := make([]frame.Value, n)
	y := make([]frame.Value, n)
	for i := 0; i < n; i++ {
		if i < n/2 {
			x[i] = frame.Missing()
			y[i] = frame.Num(1)
		} else {
			x[i] = frame.Num(float64(i))
			y[i] = frame.Num(0)
		}
	}
	X := frame.MustNew(frame.Column{Name: "x", Values: x})

	p := testParams()
	p.LearningRate = 0.3
	clf := NewClassifier(p, nil)
	require.NoError(t, clf.Fit(X, frame.Column{Name: "y", Values: y}))

	test := frame.MustNew(frame.NewColumn("x", frame.Missing(), frame.Num(25)))
	proba, err := clf.PredictProba(test)
	require.NoError(t, err)
	assert.Greater(t, proba[0], 0.5)
	assert.Less(t, proba[1], 0.5)
}

func TestClassifierDeterministicWithSeed(t *testing.T) {
	X, y := separable(60)
	p := DefaultParams()
	p.NumBoostRound = 20

	a := NewClassifier(p, nil)
	require.NoError(t, a.Fit(X, y))
	b := NewClassifier(p, nil)
	require.NoError(t, b.Fit(X, y))

	pa, err := a.PredictProba(X)
	require.NoError(t, err)
	pb, err := b.PredictProba(X)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestClassifierEarlyStopping(t *testing.T) {
	X, y := separable(50)
	p := testParams()
	p.EvalMetric = MetricError
	p.EarlyStoppingRounds = 3

	logger, _ := log.NewTestLogger(log.LevelInfo)
	clf := NewClassifier(p, logger)
	require.NoError(t, clf.Fit(X, y))

	m := clf.Model()
	assert.Less(t, len(m.Trees), p.NumBoostRound)
	assert.Equal(t, m.BestIteration+1, len(m.Trees))
	assert.Equal(t, 0.0, m.BestScore)
	assert.True(t, logger.ContainsMessage("Early stopping"))
}

func TestEarlyStoppingImportanceCoversKeptTrees(t *testing.T) {
	X, y := separable(60)
	p := testParams()
	p.EvalMetric = MetricError
	p.EarlyStoppingRounds = 3

	clf := NewClassifier(p, nil)
	require.NoError(t, clf.Fit(X, y))
	m := clf.Model()
	require.Less(t, len(m.Trees), p.NumBoostRound)

	var splits int
	gain := make([]float64, m.NumFeatures())
	for _, tree := range m.Trees {
		for _, n := range tree.Nodes {
			if n.Left == -1 && n.Right == -1 {
				continue
			}
			splits++
			gain[n.Feature] += n.Gain
		}
	}

	total := 0
	for _, c := range m.SplitCount {
		total += c
	}
	assert.Equal(t, splits, total)
	assert.InDeltaSlice(t, gain, m.GainSum, 1e-9)
}

func TestPredictRoundsHalfToEven(t *testing.T) {
	m := &Model{
		FeatureNames: []string{"x"},
		Trees: []Tree{{
			Shrinkage: 1,
			Nodes: []Node{
				{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
				{Left: -1, Right: -1, Value: 0},
				{Left: -1, Right: -1, Value: 0.1},
			},
		}},
		Params: DefaultParams(),
	}
	clf := FromModel(m, nil)
	X := frame.MustNew(frame.Column{Name: "x", Values: []frame.Value{frame.Num(0), frame.Num(1)}})

	proba, err := clf.PredictProba(X)
	require.NoError(t, err)
	assert.Equal(t, 0.5, proba[0])

	pred, err := clf.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, pred)
}

func TestClassifierNotFitted(t *testing.T) {
	X, _ := separable(4)
	clf := NewClassifier(DefaultParams(), nil)

	_, err := clf.Predict(X)
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))

	_, err = clf.PredictProba(X)
	assert.True(t, errors.As(err, &notFitted))

	_, err = clf.FeatureImportance()
	assert.True(t, errors.As(err, &notFitted))
}

func TestClassifierFitErrors(t *testing.T) {
	X, y := separable(10)

	t.Run("non binary labels", func(t *testing.T) {
		bad := frame.Column{Name: "y", Values: append([]frame.Value{frame.Num(2)}, y.Values[1:]...)}
		err := NewClassifier(DefaultParams(), nil).Fit(X, bad)
		var vErr *errors.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("missing label", func(t *testing.T) {
		bad := frame.Column{Name: "y", Values: append([]frame.Value{frame.Missing()}, y.Values[1:]...)}
		assert.Error(t, NewClassifier(DefaultParams(), nil).Fit(X, bad))
	})

	t.Run("string feature", func(t *testing.T) {
		withText, err := X.With(frame.Column{Name: "x", Values: append([]frame.Value{frame.Str("a")}, make([]frame.Value, 9)...)})
		require.NoError(t, err)
		err = NewClassifier(DefaultParams(), nil).Fit(withText, y)
		var tErr *errors.TransformError
		assert.True(t, errors.As(err, &tErr))
	})

	t.Run("length mismatch", func(t *testing.T) {
		short := frame.Column{Name: "y", Values: y.Values[:5]}
		var dErr *errors.DimensionError
		assert.True(t, errors.As(NewClassifier(DefaultParams(), nil).Fit(X, short), &dErr))
	})

	t.Run("invalid params", func(t *testing.T) {
		p := DefaultParams()
		p.MaxDepth = 0
		assert.Error(t, NewClassifier(p, nil).Fit(X, y))
	})
}

func TestClassifierAlignsColumnsByName(t *testing.T) {
	X, y := separable(40)
	clf := NewClassifier(testParams(), nil)
	require.NoError(t, clf.Fit(X, y))

	reordered, err := X.Select("const", "x")
	require.NoError(t, err)
	extra, err := reordered.With(frame.NewColumn("noise", make([]frame.Value, 40)...))
	require.NoError(t, err)

	want, err := clf.PredictProba(X)
	require.NoError(t, err)
	got, err := clf.PredictProba(extra)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	onlyConst, err := X.Select("const")
	require.NoError(t, err)
	_, err = clf.PredictProba(onlyConst)
	var schemaErr *errors.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "x", schemaErr.Column)
}

func TestFeatureImportance(t *testing.T) {
	X, y := separable(50)
	p := testParams()
	p.MaxDepth = 1

	clf := NewClassifier(p, nil)
	require.NoError(t, clf.Fit(X, y))

	imp, err := clf.FeatureImportance()
	require.NoError(t, err)
	require.Len(t, imp, 2)
	assert.Equal(t, "x", imp[0].Feature)
	assert.InDelta(t, 1.0, imp[0].Importance, 1e-12)
	assert.Equal(t, FeatureImportance{Feature: "const", Importance: 0}, imp[1])
}

func TestModelGobRoundTrip(t *testing.T) {
	X, y := separable(30)
	clf := NewClassifier(testParams(), nil)
	require.NoError(t, clf.Fit(X, y))

	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(clf.Model(), &buf))
	var restored Model
	require.NoError(t, model.LoadModelFromReader(&restored, &buf))

	loaded := FromModel(&restored, nil)
	assert.True(t, loaded.IsFitted())
	assert.Equal(t, clf.Params, loaded.Params)

	want, err := clf.PredictProba(X)
	require.NoError(t, err)
	got, err := loaded.PredictProba(X)
	require.NoError(t, err)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		param  string
	}{
		{"max depth", func(p *Params) { p.MaxDepth = 0 }, "max_depth"},
		{"learning rate", func(p *Params) { p.LearningRate = 0 }, "learning_rate"},
		{"objective", func(p *Params) { p.Objective = "reg:squarederror" }, "objective"},
		{"eval metric", func(p *Params) { p.EvalMetric = "rmse" }, "eval_metric"},
		{"min child weight", func(p *Params) { p.MinChildWeight = -1 }, "min_child_weight"},
		{"subsample", func(p *Params) { p.Subsample = 1.5 }, "subsample"},
		{"colsample", func(p *Params) { p.ColsampleByTree = 0 }, "colsample_bytree"},
		{"rounds", func(p *Params) { p.NumBoostRound = 0 }, "num_boost_round"},
		{"early stopping", func(p *Params) { p.EarlyStoppingRounds = -1 }, "early_stopping_rounds"},
		{"lambda", func(p *Params) { p.Lambda = -0.5 }, "lambda"},
	}

	require.NoError(t, DefaultParams().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			var vErr *errors.ValidationError
			require.True(t, errors.As(p.Validate(), &vErr))
			assert.Equal(t, tt.param, vErr.ParamName)
		})
	}
}

func TestTreePredict(t *testing.T) {
	tree := Tree{
		Shrinkage: 0.5,
		Nodes: []Node{
			{Feature: 0, Threshold: 1, DefaultLeft: true, Left: 1, Right: 2},
			{Left: -1, Right: -1, Value: -2},
			{Left: -1, Right: -1, Value: 4},
		},
	}

	assert.Equal(t, -1.0, tree.Predict([]float64{0.5}))
	assert.Equal(t, -1.0, tree.Predict([]float64{1}))
	assert.Equal(t, 2.0, tree.Predict([]float64{3}))
	assert.Equal(t, -1.0, tree.Predict([]float64{math.NaN()}))
	assert.Equal(t, 2, tree.NumLeaves())
	assert.Equal(t, 1, tree.Depth())
}

func TestEarlyStopping(t *testing.T) {
	es := NewEarlyStopping(2, true)
	for i, score := range []float64{0.5, 0.4, 0.45} {
		es.Update(i, score)
		assert.False(t, es.ShouldStop(), "iteration %d", i)
	}
	es.Update(3, 0.41)
	assert.True(t, es.ShouldStop())
	assert.Equal(t, 1, es.BestIteration)
	assert.Equal(t, 0.4, es.BestScore)

	maximize := NewEarlyStopping(1, false)
	maximize.Update(0, 0.7)
	assert.False(t, maximize.ShouldStop())
	maximize.Update(1, 0.6)
	assert.True(t, maximize.ShouldStop())

	disabled := NewEarlyStopping(0, true)
	disabled.Update(0, 1)
	assert.False(t, disabled.ShouldStop())
}

func TestSampler(t *testing.T) {
	p := DefaultParams()
	s := newSampler(p)

	rows := s.Rows(10)
	assert.Len(t, rows, 8)
	assert.IsIncreasing(t, rows)

	feats := s.Features(3)
	assert.Len(t, feats, 2)

	again := newSampler(p)
	assert.Equal(t, rows, again.Rows(10))

	p.Subsample = 1
	assert.Equal(t, []int{0, 1, 2}, newSampler(p).Rows(3))
}
