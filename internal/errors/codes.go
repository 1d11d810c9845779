package errors

// Common error codes
const (
	// System errors
	ErrInternal       ErrorCode = "internal_error"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig       ErrorCode = "invalid_configuration"
	ErrReadConfig          ErrorCode = "read_config_failed"
	ErrBindFlags           ErrorCode = "bind_flags_failed"
	ErrInvalidInterval     ErrorCode = "invalid_interval"
	ErrInvalidPort         ErrorCode = "invalid_port"
	ErrInvalidExportFormat ErrorCode = "invalid_export_format"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Application errors
	ErrInitApp     ErrorCode = "init_app_failed"
	ErrMainLoop    ErrorCode = "main_loop_failed"
	ErrExport      ErrorCode = "export_failed"
	ErrPrintStatus ErrorCode = "print_status_failed"

	// Operation errors
	ErrTimeout ErrorCode = "operation_timeout"

	// Metrics errors
	ErrInitMetrics  ErrorCode = "init_metrics_failed"
	ErrCloseMetrics ErrorCode = "close_metrics_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:            "Internal error occurred",
	ErrAlreadyRunning:      "Another instance is already running",
	ErrInvalidConfig:       "Invalid configuration",
	ErrReadConfig:          "Failed to read config file",
	ErrBindFlags:           "Failed to bind flags",
	ErrInvalidInterval:     "Invalid interval value",
	ErrInvalidPort:         "Invalid apcupsd port",
	ErrInvalidExportFormat: "Invalid export format",
	ErrInvalidLogLevel:     "Invalid log level",
	ErrInitApp:             "Failed to initialize application",
	ErrMainLoop:            "Error in main loop",
	ErrExport:              "Failed to export series",
	ErrPrintStatus:         "Failed to print UPS status",
	ErrTimeout:             "Operation timed out",
	ErrInitMetrics:         "Failed to initialize metrics",
	ErrCloseMetrics:        "Failed to close metrics connection",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
