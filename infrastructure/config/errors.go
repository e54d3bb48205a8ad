package config

import "errors"

// ErrInvalidConfig is returned when a configuration value cannot be used
var ErrInvalidConfig = errors.New("invalid configuration")
