package logstore

import (
	"sync"

	"codeberg.org/mutker/upslogger/internal/errors"
	"codeberg.org/mutker/upslogger/internal/fields"
	"codeberg.org/mutker/upslogger/internal/logger"
)

// Store is a sample log bound to one path.
type Store struct {
	path     string
	registry *fields.Registry
	logger   logger.Logger
	mu       sync.Mutex
}

func New(cfg Config, reg *fields.Registry, log logger.Logger) (*Store, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	path, err := ExpandPath(cfg.Path)
	if err != nil {
		return nil, err
	}

	if reg == nil {
		reg = fields.Default()
	}
	if log == nil {
		log = logger.Nop()
	}

	log = log.With("logstore")
	log.Debug().Str("path", path).Msg("Sample log configured")

	return &Store{
		path:     path,
		registry: reg,
		logger:   log,
	}, nil
}

// Path returns the expanded log path.
func (s *Store) Path() string {
	return s.path
}

// Append writes one sample line, creating the file and its header first if
// needed.
func (s *Store) Append(rec fields.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := appendRecord(s.registry, rec, s.path); err != nil {
		return err
	}

	s.logger.Debug().Str("path", s.path).Int("fields", rec.Len()).Msg("Appended sample")
	return nil
}

// Records returns every sample in file order. It returns (nil, nil) when the
// log does not exist yet.
func (s *Store) Records() ([]fields.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return parseFile(s.registry, s.logger, s.path)
}
