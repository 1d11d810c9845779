package poller

import "codeberg.org/mutker/upslogger/internal/errors"

const (
	ErrInvalidConfig   = errors.ErrInvalidConfig
	ErrInvalidInterval = errors.ErrInvalidInterval

	// Cycle Errors
	ErrSampleFailed = errors.ErrorCode("poller_sample_failed")
	ErrStoreFailed  = errors.ErrorCode("poller_store_failed")
	ErrMirrorFailed = errors.ErrorCode("poller_mirror_failed")
	ErrHookFailed   = errors.ErrorCode("poller_hook_failed")
)
