package config

import (
	"os"
	"strings"

	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// flagKeys maps flag names to config keys. Flags not listed are command
// inputs such as file paths and never reach the config.
var flagKeys = map[string]string{
	"log-level":             "log_level",
	"target":                "target",
	"parallel":              "pipeline.parallel",
	"age-global-fallback":   "pipeline.age_global_fallback",
	"max_depth":             "model.max_depth",
	"learning_rate":         "model.learning_rate",
	"objective":             "model.objective",
	"eval_metric":           "model.eval_metric",
	"min_child_weight":      "model.min_child_weight",
	"subsample":             "model.subsample",
	"colsample_bytree":      "model.colsample_bytree",
	"num_boost_round":       "model.num_boost_round",
	"early_stopping_rounds": "model.early_stopping_rounds",
	"seed":                  "model.seed",
	"lambda":                "model.lambda",
}

// findConfigFile returns the explicit path, or ./mlcli.yaml when it exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// envKey transforms MLCLI_MODEL__MAX_DEPTH into model.max_depth.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Load loads configuration from defaults, file, environment variables and
// flags, then validates it.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "error reading config file %s", path)
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load env vars")
	}

	// 4. Explicitly set flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errors.Wrap(err, "failed to load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
