// Package samples mirrors logged samples into a SQLite database so they can
// be queried by time range.
package samples

import (
	"context"
	"time"

	"codeberg.org/mutker/upslogger/internal/errors"
	"codeberg.org/mutker/upslogger/internal/fields"
	"codeberg.org/mutker/upslogger/internal/logger"
)

type service struct {
	repo   Repository
	logger logger.Logger
}

// No-op implementation
type noopRecorder struct{}

func NewService(cfg Config, log logger.Logger) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("samples")

	// If the mirror is disabled, return a no-op recorder
	if !cfg.Enabled {
		log.Debug().Msg("Sample mirror disabled, using no-op recorder")
		return &noopRecorder{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create sample repository")
		return nil, err
	}

	return NewServiceWithRepository(repo, log), nil
}

// NewServiceWithRepository builds an enabled recorder on top of repo.
func NewServiceWithRepository(repo Repository, log logger.Logger) Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &service{
		repo:   repo,
		logger: log,
	}
}

func (s *service) Record(ctx context.Context, rec fields.Record) error {
	errFactory := errors.New()

	sample, ok := FromRecord(rec)
	if !ok {
		return errFactory.WithData(ErrInvalidSample, rec.Names())
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	if err := s.repo.Store(ctx, sample); err != nil {
		return err
	}

	s.logger.Debug().Int64("timestamp", sample.Timestamp.Unix()).Msg("Mirrored sample")
	return nil
}

func (s *service) Query(ctx context.Context, from, to time.Time) ([]Sample, error) {
	return s.repo.Query(ctx, from, to)
}

func (s *service) Close() error {
	if err := s.repo.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}

func (*service) Enabled() bool {
	return true
}

func (*noopRecorder) Record(_ context.Context, _ fields.Record) error {
	return nil
}

func (*noopRecorder) Query(_ context.Context, _, _ time.Time) ([]Sample, error) {
	return nil, nil
}

func (*noopRecorder) Close() error {
	return nil
}

func (*noopRecorder) Enabled() bool {
	return false
}
