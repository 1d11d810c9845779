// Package apcaccess obtains UPS status snapshots from apcupsd by running the
// apcaccess tool and turns them into typed field records.
package apcaccess

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"codeberg.org/mutker/upslogger/internal/errors"
	"codeberg.org/mutker/upslogger/internal/fields"
	"codeberg.org/mutker/upslogger/internal/logger"
)

// Source supplies one raw status snapshot as name -> value text.
//
// A Source must return the complete listing or an error. Callers do not
// check for truncated output, so a source reading from a bounded buffer is
// responsible for detecting a short read itself.
type Source interface {
	Status(ctx context.Context) (map[string]string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (map[string]string, error)

func (f SourceFunc) Status(ctx context.Context) (map[string]string, error) {
	return f(ctx)
}

// CommandSource runs "apcaccess status host:port".
type CommandSource struct {
	cfg    Config
	logger logger.Logger
}

func NewCommandSource(cfg Config, log logger.Logger) (*CommandSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	return &CommandSource{
		cfg:    cfg,
		logger: log.With("apcaccess"),
	}, nil
}

// Target returns the host:port argument passed to apcaccess.
func (s *CommandSource) Target() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

func (s *CommandSource) Status(ctx context.Context) (map[string]string, error) {
	errFactory := errors.New()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := exec.CommandContext(ctx, s.cfg.Binary, "status", s.Target()).Output()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, errFactory.Wrap(ErrOperationTimeout, ctxErr)
	}
	if err != nil {
		var stderr string
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, errFactory.Wrap(ErrCommandFailed, err).WithData(struct {
			Binary string
			Target string
			Stderr string
		}{
			Binary: s.cfg.Binary,
			Target: s.Target(),
			Stderr: stderr,
		})
	}

	status := ParseStatus(string(out))
	if len(status) == 0 {
		return nil, errFactory.WithData(ErrEmptyStatus, s.Target())
	}

	s.logger.Debug().
		Str("target", s.Target()).
		Int("fields", len(status)).
		Dur("elapsed", time.Since(start)).
		Msg("Fetched UPS status")

	return status, nil
}

// ParseStatus reads apcaccess output. Each line holding a colon is split at
// the first one; name and value are trimmed. Values may themselves contain
// colons.
func ParseStatus(text string) map[string]string {
	status := make(map[string]string)

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		status[name] = strings.TrimSpace(value)
	}

	return status
}

// Fetch reads one snapshot from src and types every entry with reg. The log
// fields lead the record, the rest follow in name order.
func Fetch(ctx context.Context, src Source, reg *fields.Registry) (fields.Record, error) {
	status, err := src.Status(ctx)
	if err != nil {
		return fields.Record{}, err
	}

	return ToRecord(status, reg), nil
}

// ToRecord types a raw snapshot with reg.
func ToRecord(status map[string]string, reg *fields.Registry) fields.Record {
	if reg == nil {
		reg = fields.Default()
	}

	rec := fields.NewRecord()
	for _, name := range fields.LogFields {
		if raw, ok := status[name]; ok {
			rec.Set(reg.Parse(name, raw))
		}
	}

	rest := make([]string, 0, len(status))
	for name := range status {
		if !rec.Has(name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		rec.Set(reg.Parse(name, status[name]))
	}

	return rec
}

// Sample fetches a snapshot usable as a log sample. Snapshots lacking any of
// the log fields are rejected with ErrIncompleteStatus. An unreadable DATE is
// replaced with the current time.
func Sample(ctx context.Context, src Source, reg *fields.Registry) (fields.Record, error) {
	if reg == nil {
		reg = fields.Default()
	}

	rec, err := Fetch(ctx, src, reg)
	if err != nil {
		return fields.Record{}, err
	}

	if missing := rec.Missing(fields.LogFields...); len(missing) > 0 {
		return fields.Record{}, errors.New().WithData(ErrIncompleteStatus, missing)
	}

	if date, _ := rec.Get(fields.Date); date.IsNull() {
		now := reg.Timezone().Now(nil).Truncate(time.Second)
		rec.Set(fields.Field{Name: fields.Date, Value: now})
	}

	return rec, nil
}
