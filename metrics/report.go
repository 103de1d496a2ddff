package metrics

import (
	"math"

	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Report は評価コマンドが出力する指標の集合。各値は小数第2位に丸められる
type Report struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	AUC       float64 `json:"auc"`
}

// Field は指標名と値の組
type Field struct {
	Name  string
	Value float64
}

// Fields は出力ファイルの列順で指標を返す
func (r Report) Fields() []Field {
	return []Field{
		{"accuracy", r.Accuracy},
		{"precision", r.Precision},
		{"recall", r.Recall},
		{"f1", r.F1},
		{"auc", r.AUC},
	}
}

// Evaluate はクラス予測と陽性確率から Report を作成する
// AUC は yProba から計算される
func Evaluate(yTrue, yPred, yProba *mat.VecDense) (Report, error) {
	var r Report
	steps := []struct {
		dst *float64
		fn  func() (float64, error)
	}{
		{&r.Accuracy, func() (float64, error) { return Accuracy(yTrue, yPred) }},
		{&r.Precision, func() (float64, error) { return Precision(yTrue, yPred) }},
		{&r.Recall, func() (float64, error) { return Recall(yTrue, yPred) }},
		{&r.F1, func() (float64, error) { return F1(yTrue, yPred) }},
		{&r.AUC, func() (float64, error) { return AUC(yTrue, yProba) }},
	}
	for _, s := range steps {
		v, err := s.fn()
		if err != nil {
			return Report{}, errors.Wrap(err, "evaluate")
		}
		*s.dst = round2(v)
	}
	return r, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
