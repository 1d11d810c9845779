package export

import "codeberg.org/mutker/upslogger/internal/errors"

const (
	ErrInvalidFormat = errors.ErrInvalidExportFormat
	ErrWriteFailed   = errors.ErrorCode("export_write_failed")
)
