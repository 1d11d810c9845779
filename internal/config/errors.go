package config

import "codeberg.org/mutker/upslogger/internal/errors"

const (
	ErrInvalidConfig   = errors.ErrInvalidConfig
	ErrReadConfig      = errors.ErrReadConfig
	ErrBindFlags       = errors.ErrBindFlags
	ErrInvalidInterval = errors.ErrInvalidInterval
	ErrInvalidPort     = errors.ErrInvalidPort
	ErrInvalidLogLevel = errors.ErrInvalidLogLevel
)
