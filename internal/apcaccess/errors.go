package apcaccess

import "codeberg.org/mutker/upslogger/internal/errors"

const (
	ErrInvalidConfig    = errors.ErrInvalidConfig
	ErrCommandFailed    = errors.ErrorCode("apcaccess_command_failed")
	ErrEmptyStatus      = errors.ErrorCode("apcaccess_empty_status")
	ErrIncompleteStatus = errors.ErrorCode("apcaccess_incomplete_status")
	ErrOperationTimeout = errors.ErrTimeout
)
