package apcaccess

import (
	"time"

	"codeberg.org/mutker/upslogger/internal/errors"
)

const (
	DefaultBinary  = "apcaccess"
	DefaultHost    = "localhost"
	DefaultPort    = 3551
	DefaultTimeout = 10 * time.Second
)

type Config struct {
	Binary  string
	Host    string
	Port    int
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Binary:  DefaultBinary,
		Host:    DefaultHost,
		Port:    DefaultPort,
		Timeout: DefaultTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Binary == "" || c.Host == "" {
		return errFactory.WithMessage(ErrInvalidConfig, "apcaccess binary and host are required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errFactory.WithData(errors.ErrInvalidPort, c.Port)
	}
	if c.Timeout < 0 {
		return errFactory.WithData(ErrInvalidConfig, c.Timeout)
	}
	return nil
}
