package config

import (
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/YuminosukeSato/mlcli/pkg/log"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := log.ToLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("log_level", "must be debug, info, warn or error", c.LogLevel)
	}
	if c.Target == "" {
		return errors.NewValidationError("target", "is required", c.Target)
	}
	return c.Model.Validate()
}

// Level returns the parsed log level. Call Validate first.
func (c *Config) Level() log.Level {
	l, err := log.ToLevel(c.LogLevel)
	if err != nil {
		return log.LevelInfo
	}
	return l
}
