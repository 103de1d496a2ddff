// Package config provides configuration management for the mlcli commands.
//
// Values are layered, lowest to highest precedence: built-in defaults, an
// optional YAML file, MLCLI_ environment variables and explicitly set
// command line flags.
package config

import (
	"github.com/YuminosukeSato/mlcli/dataset"
	"github.com/YuminosukeSato/mlcli/preprocessing"
	"github.com/YuminosukeSato/mlcli/sklearn/gbdt"
)

// Default values.
const (
	DefaultLogLevel   = "info"
	DefaultConfigFile = "mlcli.yaml"
	EnvPrefix         = "MLCLI_"
)

// PipelineConfig holds the feature pipeline switches.
type PipelineConfig struct {
	Parallel          bool `koanf:"parallel"`
	AgeGlobalFallback bool `koanf:"age_global_fallback"`
}

// Options converts the switches for preprocessing.NewPipeline.
func (p PipelineConfig) Options() preprocessing.Options {
	return preprocessing.Options{
		Parallel:          p.Parallel,
		AgeGlobalFallback: p.AgeGlobalFallback,
	}
}

// Config holds all CLI configuration options.
type Config struct {
	LogLevel string         `koanf:"log_level"`
	Target   string         `koanf:"target"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Model    gbdt.Params    `koanf:"model"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Target:   dataset.DefaultTarget,
		Model:    gbdt.DefaultParams(),
	}
}

// defaultsMap flattens Default for the confmap provider.
func defaultsMap() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"log_level":                    d.LogLevel,
		"target":                       d.Target,
		"pipeline.parallel":            d.Pipeline.Parallel,
		"pipeline.age_global_fallback": d.Pipeline.AgeGlobalFallback,
		"model.max_depth":              d.Model.MaxDepth,
		"model.learning_rate":          d.Model.LearningRate,
		"model.objective":              d.Model.Objective,
		"model.eval_metric":            d.Model.EvalMetric,
		"model.min_child_weight":       d.Model.MinChildWeight,
		"model.subsample":              d.Model.Subsample,
		"model.colsample_bytree":       d.Model.ColsampleByTree,
		"model.num_boost_round":        d.Model.NumBoostRound,
		"model.early_stopping_rounds":  d.Model.EarlyStoppingRounds,
		"model.seed":                   d.Model.Seed,
		"model.lambda":                 d.Model.Lambda,
	}
}
