package errors_test

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"codeberg.org/mutker/upslogger/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	errFactory := errors.New()

	t.Run("DefaultMessage", func(t *testing.T) {
		err := errFactory.New(errors.ErrInvalidInterval)
		assert.Equal(t, "Invalid interval value", err.Error())
		assert.Equal(t, errors.ErrInvalidInterval, err.Code())
	})

	t.Run("UnknownCodeFallsBackToCode", func(t *testing.T) {
		err := errFactory.New(errors.ErrorCode("something_odd"))
		assert.Equal(t, "something_odd", err.Error())
	})

	t.Run("WrappedCause", func(t *testing.T) {
		err := errFactory.Wrap(errors.ErrReadConfig, fs.ErrNotExist)
		assert.Equal(t, "Failed to read config file: file does not exist", err.Error())
		assert.True(t, stderrors.Is(err, fs.ErrNotExist))
	})

	t.Run("Data", func(t *testing.T) {
		err := errFactory.WithData(errors.ErrInvalidPort, 70000)
		assert.Equal(t, "Invalid apcupsd port: 70000", err.Error())
		assert.Equal(t, 70000, err.GetData())
	})

	t.Run("CustomMessage", func(t *testing.T) {
		err := errFactory.New(errors.ErrInternal).WithMessage("boom")
		assert.Equal(t, "boom", err.Error())
		assert.Equal(t, errors.ErrInternal, err.Code())
	})
}

func TestIsMatchesByCode(t *testing.T) {
	errFactory := errors.New()
	sentinel := errFactory.New(errors.ErrAlreadyRunning)

	wrapped := errFactory.Wrap(errors.ErrInitApp, errFactory.WithData(errors.ErrAlreadyRunning, 42))
	require.Error(t, wrapped)

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(errFactory.New(errors.ErrInternal), sentinel))
	assert.True(t, errors.HasCode(wrapped, errors.ErrInitApp))
	assert.True(t, errors.HasCode(wrapped, errors.ErrAlreadyRunning))
	assert.False(t, errors.HasCode(wrapped, errors.ErrTimeout))
	assert.False(t, errors.HasCode(nil, errors.ErrTimeout))
}

func TestEveryCodeHasMessage(t *testing.T) {
	codes := []errors.ErrorCode{
		errors.ErrInternal, errors.ErrAlreadyRunning,
		errors.ErrInvalidConfig, errors.ErrReadConfig, errors.ErrBindFlags,
		errors.ErrInvalidInterval, errors.ErrInvalidPort, errors.ErrInvalidExportFormat,
		errors.ErrInvalidLogLevel,
		errors.ErrInitApp, errors.ErrMainLoop, errors.ErrExport, errors.ErrPrintStatus,
		errors.ErrTimeout,
		errors.ErrInitMetrics, errors.ErrCloseMetrics,
	}

	for _, code := range codes {
		t.Run(string(code), func(t *testing.T) {
			assert.NotEqual(t, string(code), errors.GetErrorMessage(code))
		})
	}
}
