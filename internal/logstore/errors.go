package logstore

import "codeberg.org/mutker/upslogger/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidPath   = errors.ErrorCode("logstore_invalid_path")

	// Storage Errors
	ErrCreateDir    = errors.ErrorCode("logstore_create_dir_failed")
	ErrAppendFailed = errors.ErrorCode("logstore_append_failed")
	ErrReadFailed   = errors.ErrorCode("logstore_read_failed")

	// Format Errors
	ErrLegacyMigration = errors.ErrorCode("logstore_legacy_migration_failed")
)
