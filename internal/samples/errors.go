package samples

import "codeberg.org/mutker/upslogger/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("samples_invalid_db_path")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("samples_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("samples_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("samples_schema_migration_failed")

	// Storage Errors
	ErrStorageAccess = errors.ErrorCode("samples_storage_access_failed")
	ErrStorageInit   = errors.ErrInitMetrics
	ErrStorageClose  = errors.ErrCloseMetrics

	// Recording Errors
	ErrInvalidSample = errors.ErrorCode("samples_invalid_sample")

	// Operation Errors
	ErrOperationTimeout = errors.ErrTimeout
)
