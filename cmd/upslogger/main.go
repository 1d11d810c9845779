package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/upslogger/internal/apcaccess"
	"codeberg.org/mutker/upslogger/internal/config"
	"codeberg.org/mutker/upslogger/internal/errors"
	"codeberg.org/mutker/upslogger/internal/export"
	"codeberg.org/mutker/upslogger/internal/fields"
	"codeberg.org/mutker/upslogger/internal/logger"
	"codeberg.org/mutker/upslogger/internal/logstore"
	"codeberg.org/mutker/upslogger/internal/pid"
	"codeberg.org/mutker/upslogger/internal/poller"
	"codeberg.org/mutker/upslogger/internal/samples"
	"codeberg.org/mutker/upslogger/internal/timezone"
	"github.com/spf13/pflag"
)

const stdoutTarget = "-"

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	if !cfg.Debug && !cfg.Verbose {
		if level, ok := logger.ParseLevel(cfg.LogLevel); ok {
			logger.SetLogLevel(level)
		}
	}
	logger.Debug().Msg("Config loaded")

	if cfg.Timezone != "" {
		tz := timezone.Default()
		loc, err := tz.LoadZone(cfg.Timezone)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load timezone")
		}
		tz.SetLocalZone(loc)
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx); err != nil {
		logError(err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	reg := fields.Default()

	store, err := logstore.New(cfg.LogStoreConfig(), reg, logger.Default())
	if err != nil {
		return errors.New().Wrap(errors.ErrInitApp, err)
	}

	switch {
	case cfg.Interval > 0:
		return loop(ctx, store, reg)
	case cfg.LogFile != "":
		return logOnce(ctx, store, reg)
	case cfg.Export != "":
		return exportSeries(store)
	default:
		return printLineV(ctx, reg)
	}
}

func newPoller(store *logstore.Store, reg *fields.Registry, mirror samples.Recorder) (*poller.Poller, error) {
	src, err := apcaccess.NewCommandSource(cfg.ApcaccessConfig(), logger.Default())
	if err != nil {
		return nil, err
	}

	pcfg := poller.Config{
		Interval: cfg.PollInterval(),
		AfterSample: func(_ context.Context, rec fields.Record) error {
			if cfg.Print {
				printField(reg, rec, fields.LineV)
			}
			if cfg.Export != "" {
				return exportSeries(store)
			}
			return nil
		},
	}

	return poller.New(pcfg, src, store, mirror, reg, logger.Default())
}

func openMirror() (samples.Recorder, error) {
	scfg, err := cfg.SamplesConfig()
	if err != nil {
		return nil, err
	}
	mirror, err := samples.NewService(scfg, logger.Default())
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrInitMetrics, err)
	}
	return mirror, nil
}

func loop(ctx context.Context, store *logstore.Store, reg *fields.Registry) error {
	pidPath := pid.DefaultPath()
	if err := pid.Write(pidPath); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(pidPath); err != nil {
			logger.Error().Err(err).Msg("Failed to remove PID file")
		}
	}()

	mirror, err := openMirror()
	if err != nil {
		return err
	}
	defer closeMirror(mirror)

	p, err := newPoller(store, reg, mirror)
	if err != nil {
		return errors.New().Wrap(errors.ErrInitApp, err)
	}

	logger.Info().
		Str("logfile", store.Path()).
		Int("interval_minutes", cfg.Interval).
		Msg("Logging every interval, press Ctrl-C to quit")

	if err := p.Run(ctx); err != nil {
		return errors.New().Wrap(errors.ErrMainLoop, err)
	}

	logger.Info().Msg("Exiting...")
	return nil
}

func logOnce(ctx context.Context, store *logstore.Store, reg *fields.Registry) error {
	mirror, err := openMirror()
	if err != nil {
		return err
	}
	defer closeMirror(mirror)

	p, err := newPoller(store, reg, mirror)
	if err != nil {
		return errors.New().Wrap(errors.ErrInitApp, err)
	}

	_, err = p.Once(ctx)
	return err
}

func printLineV(ctx context.Context, reg *fields.Registry) error {
	src, err := apcaccess.NewCommandSource(cfg.ApcaccessConfig(), logger.Default())
	if err != nil {
		return errors.New().Wrap(errors.ErrPrintStatus, err)
	}

	rec, err := apcaccess.Sample(ctx, src, reg)
	if err != nil {
		return errors.New().Wrap(errors.ErrPrintStatus, err)
	}

	printField(reg, rec, fields.LineV)
	return nil
}

func printField(reg *fields.Registry, rec fields.Record, name string) {
	f, ok := rec.Get(name)
	if !ok {
		f = fields.Null(name)
	}
	fmt.Println(reg.Format(f))
}

func exportSeries(store *logstore.Store) error {
	errFactory := errors.New()

	records, err := store.Records()
	if err != nil {
		return errFactory.Wrap(errors.ErrExport, err)
	}
	series := export.Build(records, export.Options{Format: cfg.SeriesFormat()})

	if cfg.Export == stdoutTarget {
		return writeSeries(os.Stdout, series)
	}

	f, err := os.Create(cfg.Export)
	if err != nil {
		return errFactory.Wrap(errors.ErrExport, err)
	}
	if err := writeSeries(f, series); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errFactory.Wrap(errors.ErrExport, err)
	}

	logger.Debug().
		Str("path", cfg.Export).
		Int("series", len(series)).
		Msg("Exported series")
	return nil
}

func writeSeries(w io.Writer, series []export.Series) error {
	if err := export.WriteJSON(w, series); err != nil {
		return errors.New().Wrap(errors.ErrExport, err)
	}
	return nil
}

func closeMirror(mirror samples.Recorder) {
	if err := mirror.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close samples database")
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func logError(err error) {
	var coded errors.Error
	if errors.As(err, &coded) {
		logger.ErrorWithCode(coded).Msg("upslogger failed")
		return
	}
	logger.Error().Err(err).Msg("upslogger failed")
}
