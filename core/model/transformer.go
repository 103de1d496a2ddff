package model

import "github.com/YuminosukeSato/mlcli/core/frame"

// Transformer はテーブル変換のインターフェース
type Transformer interface {
	// Fit は変換に必要な状態（カテゴリ語彙など）を学習する
	Fit(t *frame.Table) error

	// Transform は学習済みの状態でテーブルを変換する
	Transform(t *frame.Table) (*frame.Table, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(t *frame.Table) (*frame.Table, error)
}
