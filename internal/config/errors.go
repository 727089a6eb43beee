package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every error describing a malformed configuration value.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a configuration value that could not be parsed or failed validation.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func newConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Err: err}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%q: %v", ErrInvalidConfig, e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrInvalidConfig, e.Err}
}
