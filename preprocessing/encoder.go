package preprocessing

import (
	"sort"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/core/model"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/YuminosukeSato/mlcli/pkg/log"
)

// OneHotEncoder expands categorical columns into "<column>_<category>"
// indicator columns and drops the originals.
//
// Fit captures the category vocabulary of each column, sorted with numbers
// before strings. Transform reuses it: a category not seen during Fit gets
// an all-zero indicator row and is reported as a warning, and a category
// absent from the transformed table yields an all-zero column. Missing
// values also encode as all zeros.
//
// The exported fields are the fitted state and are persisted with the model
// artifact.
type OneHotEncoder struct {
	Columns    []string
	Categories map[string][]string
	State      *model.StateManager

	logger log.Logger
}

var _ model.Transformer = (*OneHotEncoder)(nil)

// NewOneHotEncoder は指定された列をエンコードするOneHotEncoderを作成する
//
// 使用例:
//
//	enc := preprocessing.NewOneHotEncoder(logger, "Sex", "Embarked", "Title")
//	encoded, err := enc.FitTransform(train)
//	testEncoded, err := enc.Transform(test)
func NewOneHotEncoder(logger log.Logger, columns ...string) *OneHotEncoder {
	if logger == nil {
		logger = log.Nop()
	}
	return &OneHotEncoder{
		Columns: append([]string(nil), columns...),
		State:   model.NewStateManager(),
		logger:  logger.With(log.ModelNameKey, "OneHotEncoder"),
	}
}

// SetLogger replaces the logger, e.g. after loading the encoder from disk.
func (e *OneHotEncoder) SetLogger(logger log.Logger) {
	if logger == nil {
		logger = log.Nop()
	}
	e.logger = logger.With(log.ModelNameKey, "OneHotEncoder")
}

// Fit learns the sorted category vocabulary of every encoded column.
func (e *OneHotEncoder) Fit(t *frame.Table) error {
	if e.State == nil {
		e.State = model.NewStateManager()
	}
	if e.logger == nil {
		e.logger = log.Nop()
	}
	cats := make(map[string][]string, len(e.Columns))
	for _, name := range e.Columns {
		c, err := t.Column(name)
		if err != nil {
			return errors.NewSchemaError("one_hot_encode", name)
		}
		cats[name] = sortedCategories(c.Values)
	}
	e.Categories = cats
	e.State.SetFitted()
	e.State.SetDimensions(len(e.Columns), t.NumRows())
	return nil
}

// Transform appends the indicator columns for the fitted vocabulary, in
// column then category order, and drops the encoded columns.
func (e *OneHotEncoder) Transform(t *frame.Table) (*frame.Table, error) {
	if e.State == nil {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if err := e.State.RequireFitted("OneHotEncoder", "Transform"); err != nil {
		return nil, err
	}
	if e.logger == nil {
		e.logger = log.Nop()
	}

	out := t
	for _, name := range e.Columns {
		c, err := t.Column(name)
		if err != nil {
			return nil, errors.NewSchemaError("one_hot_encode", name)
		}
		cats := e.Categories[name]
		index := make(map[string]int, len(cats))
		for i, cat := range cats {
			index[cat] = i
		}

		indicators := make([][]frame.Value, len(cats))
		for k := range indicators {
			indicators[k] = make([]frame.Value, c.Len())
			for i := range indicators[k] {
				indicators[k][i] = frame.Num(0)
			}
		}
		unseen := 0
		for i, v := range c.Values {
			if v.IsMissing() {
				continue
			}
			k, ok := index[v.String()]
			if !ok {
				unseen++
				continue
			}
			indicators[k][i] = frame.Num(1)
		}
		if unseen > 0 {
			e.logger.Warn("Unseen categories encoded as all zeros",
				log.ColumnKey, name,
				"unseen", unseen,
			)
		}

		for k, cat := range cats {
			out, err = out.With(frame.Column{Name: name + "_" + cat, Values: indicators[k]})
			if err != nil {
				return nil, err
			}
		}
	}
	return out.Drop(e.Columns...)
}

// FitTransform fits the vocabulary on t and encodes t.
func (e *OneHotEncoder) FitTransform(t *frame.Table) (*frame.Table, error) {
	if err := e.Fit(t); err != nil {
		return nil, err
	}
	return e.Transform(t)
}

// FeatureNames returns the indicator column names the encoder produces.
func (e *OneHotEncoder) FeatureNames() []string {
	var names []string
	for _, name := range e.Columns {
		for _, cat := range e.Categories[name] {
			names = append(names, name+"_"+cat)
		}
	}
	return names
}

// OneHotEncode encodes columns using the categories observed in t itself.
// Two calls on different tables may produce different columns; use a fitted
// OneHotEncoder to share a vocabulary between training and inference.
func OneHotEncode(t *frame.Table, columns ...string) (*frame.Table, error) {
	return NewOneHotEncoder(nil, columns...).FitTransform(t)
}

func sortedCategories(vals []frame.Value) []string {
	seen := make(map[string]frame.Value)
	for _, v := range vals {
		if v.IsMissing() {
			continue
		}
		seen[v.Key()] = v
	}
	uniq := make([]frame.Value, 0, len(seen))
	for _, v := range seen {
		uniq = append(uniq, v)
	}
	sort.Slice(uniq, func(i, j int) bool { return frame.Less(uniq[i], uniq[j]) })

	cats := make([]string, 0, len(uniq))
	have := make(map[string]bool, len(uniq))
	for _, v := range uniq {
		s := v.String()
		if have[s] {
			continue
		}
		have[s] = true
		cats = append(cats, s)
	}
	return cats
}
