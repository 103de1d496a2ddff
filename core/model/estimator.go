package model

import "github.com/YuminosukeSato/mlcli/core/frame"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit は数値の特徴量テーブルとラベル列でモデルを学習させる
	Fit(features *frame.Table, labels frame.Column) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は各行に対するラベルを返す
	Predict(features *frame.Table) ([]float64, error)
}

// ProbaPredictor は陽性クラスの確率を返すモデルのインターフェース
type ProbaPredictor interface {
	Predictor
	PredictProba(features *frame.Table) ([]float64, error)
}

// Classifier は二値分類器の境界
type Classifier interface {
	Fitter
	ProbaPredictor
}
