// Package poller samples the UPS on a fixed interval and appends each sample
// to the log.
package poller

import (
	"context"
	"time"

	"codeberg.org/mutker/upslogger/internal/apcaccess"
	"codeberg.org/mutker/upslogger/internal/errors"
	"codeberg.org/mutker/upslogger/internal/fields"
	"codeberg.org/mutker/upslogger/internal/logger"
	"codeberg.org/mutker/upslogger/internal/samples"
)

// Appender stores one sample.
type Appender interface {
	Append(rec fields.Record) error
}

type Config struct {
	Interval time.Duration

	// AfterSample runs after every stored sample. Its errors are logged.
	AfterSample func(ctx context.Context, rec fields.Record) error
}

type Poller struct {
	cfg      Config
	source   apcaccess.Source
	store    Appender
	mirror   samples.Recorder
	registry *fields.Registry
	logger   logger.Logger
}

func New(
	cfg Config, src apcaccess.Source, store Appender, mirror samples.Recorder,
	reg *fields.Registry, log logger.Logger,
) (*Poller, error) {
	errFactory := errors.New()

	if src == nil || store == nil {
		return nil, errFactory.WithMessage(ErrInvalidConfig, "poller needs a status source and a store")
	}
	if cfg.Interval < 0 {
		return nil, errFactory.WithData(ErrInvalidInterval, cfg.Interval.String())
	}
	if reg == nil {
		reg = fields.Default()
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Poller{
		cfg:      cfg,
		source:   src,
		store:    store,
		mirror:   mirror,
		registry: reg,
		logger:   log.With("poller"),
	}, nil
}

// Once takes one sample, appends it to the log and mirrors it. A sample that
// could not be obtained is reported with ErrSampleFailed and nothing is
// written.
func (p *Poller) Once(ctx context.Context) (fields.Record, error) {
	errFactory := errors.New()

	rec, err := apcaccess.Sample(ctx, p.source, p.registry)
	if err != nil {
		return fields.Record{}, errFactory.Wrap(ErrSampleFailed, err)
	}

	if err := p.store.Append(rec); err != nil {
		return rec, errFactory.Wrap(ErrStoreFailed, err)
	}

	if p.mirror != nil {
		if err := p.mirror.Record(ctx, rec); err != nil {
			return rec, errFactory.Wrap(ErrMirrorFailed, err)
		}
	}

	if p.cfg.AfterSample != nil {
		if err := p.cfg.AfterSample(ctx, rec); err != nil {
			return rec, errFactory.Wrap(ErrHookFailed, err)
		}
	}

	return rec, nil
}

// Run samples immediately and then once per interval until ctx is done.
// Only a failure to append to the log stops the loop; every other failure
// is logged and the next tick proceeds.
func (p *Poller) Run(ctx context.Context) error {
	if p.cfg.Interval <= 0 {
		return errors.New().WithData(ErrInvalidInterval, p.cfg.Interval.String())
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.logger.Info().Dur("interval", p.cfg.Interval).Msg("Logging UPS samples")

	for {
		if err := p.tick(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Poller) tick(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	rec, err := p.Once(ctx)
	switch {
	case err == nil:
		p.logSample(rec)
		return nil
	case errors.HasCode(err, ErrStoreFailed):
		return err
	case ctx.Err() != nil:
		// Interrupted mid-sample
		return nil
	default:
		p.logger.Warn().Err(err).Msg("Sample skipped")
		return nil
	}
}

func (p *Poller) logSample(rec fields.Record) {
	linev, _ := rec.Get(fields.LineV)
	linefreq, _ := rec.Get(fields.LineFreq)
	date, _ := rec.Get(fields.Date)

	p.logger.Info().
		Str("date", p.registry.Format(date)).
		Str("linev", p.registry.Format(linev)).
		Str("linefreq", p.registry.Format(linefreq)).
		Msg("Logged sample")
}
