package timezone

import "codeberg.org/mutker/upslogger/internal/errors"

const (
	ErrInvalidTimestamp = errors.ErrorCode("timezone_invalid_timestamp")
	ErrInvalidOffset    = errors.ErrorCode("timezone_invalid_offset")
	ErrUnknownZone      = errors.ErrorCode("timezone_unknown_zone")
)
