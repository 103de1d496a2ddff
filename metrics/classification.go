// Package metrics は二値分類の評価指標を提供する
package metrics

import (
	"sort"

	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// logLossEpsilon は log(0) を避けるためのクリップ幅
const logLossEpsilon = 1e-15

// checkPair は二つのベクトルが非nil・非空・同じ長さであることを検証する
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "nil vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// checkBinary はラベルが 0 または 1 のみであることを検証する
func checkBinary(op string, y *mat.VecDense) error {
	for i := 0; i < y.Len(); i++ {
		if v := y.AtVec(i); v != 0 && v != 1 {
			return errors.NewValueError(op, "labels must be 0 or 1")
		}
	}
	return nil
}

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassificationError は誤分類率（1 - Accuracy）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// confusion は陽性クラス 1 に対する混同行列の要素
type confusion struct {
	tp, fp, fn, tn int
}

func confusionOf(op string, yTrue, yPred *mat.VecDense) (confusion, error) {
	n, err := checkPair(op, yTrue, yPred)
	if err != nil {
		return confusion{}, err
	}
	var c confusion
	for i := 0; i < n; i++ {
		actual, predicted := yTrue.AtVec(i) == 1, yPred.AtVec(i) == 1
		switch {
		case actual && predicted:
			c.tp++
		case !actual && predicted:
			c.fp++
		case actual && !predicted:
			c.fn++
		default:
			c.tn++
		}
	}
	return c, nil
}

// Precision は適合率 TP/(TP+FP) を計算する
// 陽性予測が一つもない場合は 0 を返し UndefinedMetricWarning を通知する
func Precision(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := confusionOf("Precision", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if c.tp+c.fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted positives", 0))
		return 0, nil
	}
	return float64(c.tp) / float64(c.tp+c.fp), nil
}

// Recall は再現率 TP/(TP+FN) を計算する
// 実際の陽性が一つもない場合は 0 を返し UndefinedMetricWarning を通知する
func Recall(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := confusionOf("Recall", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if c.tp+c.fn == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no true positives or false negatives", 0))
		return 0, nil
	}
	return float64(c.tp) / float64(c.tp+c.fn), nil
}

// F1 は適合率と再現率の調和平均を計算する
func F1(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := confusionOf("F1", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	// F1 = 2TP / (2TP + FP + FN)
	denom := 2*c.tp + c.fp + c.fn
	if denom == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("f1", "no positives in labels or predictions", 0))
		return 0, nil
	}
	return float64(2*c.tp) / float64(denom), nil
}

// AUC はROC曲線下面積を順位統計量（Mann-Whitney U）から計算する
// 同順位のスコアには平均順位を割り当てる
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n, err := checkPair("AUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("AUC", yTrue); err != nil {
		return 0, err
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return yScore.AtVec(idx[a]) < yScore.AtVec(idx[b])
	})

	// 同順位グループごとに平均順位（1始まり）を求める
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && yScore.AtVec(idx[j+1]) == yScore.AtVec(idx[i]) {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}

	var nPos, nNeg int
	var rankSum float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("auc", "only one class present in labels", 0.5))
		return 0.5, nil
	}

	u := rankSum - float64(nPos*(nPos+1))/2
	return u / float64(nPos*nNeg), nil
}

// BinaryLogLoss は二値交差エントロピーを計算する
// 予測確率は [eps, 1-eps] にクリップされる
func BinaryLogLoss(yTrue, yProba *mat.VecDense) (float64, error) {
	n, err := checkPair("BinaryLogLoss", yTrue, yProba)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("BinaryLogLoss", yTrue); err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		p := errors.ClipValue(yProba.AtVec(i), logLossEpsilon, 1-logLossEpsilon)
		if yTrue.AtVec(i) == 1 {
			sum -= errors.StabilizeLog(p)
		} else {
			sum -= errors.StabilizeLog(1 - p)
		}
	}
	return sum / float64(n), nil
}
