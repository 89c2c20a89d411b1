package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig matches every *ConfigError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError names the offending field of a scene, timing or motion config.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func invalid(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}
