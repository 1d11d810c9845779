// Package timezone resolves the local civil zone and converts, parses and
// formats zone-aware timestamps for the sample log.
package timezone

import (
	"os"
	"strings"
	"sync"
	"time"

	// Zones are loaded by name from config and $TZ; embed the database so
	// hosts without /usr/share/zoneinfo still resolve them.
	_ "time/tzdata"

	"codeberg.org/mutker/upslogger/internal/errors"
)

const (
	// DTFormat is the on-disk timestamp layout: wall clock plus a signed
	// four digit UTC offset.
	DTFormat = "2006-01-02 15:04:05 -0700"

	wallLayout = "2006-01-02 15:04:05"
	offsetLen  = len("-0700")

	// LocalName selects the resolved local zone in LoadZone.
	LocalName = "local"
)

// Service hands out zone-aware timestamps. The local zone is resolved
// lazily on first use and cached until Reset.
type Service struct {
	mu    sync.Mutex
	local *time.Location
	clock func() time.Time
}

// New returns a Service reading the wall clock.
func New() *Service {
	return &Service{clock: time.Now}
}

var std = New()

// Default returns the process-wide Service.
func Default() *Service {
	return std
}

// WithClock replaces the clock used by Now. Tests pin time with it.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
	return s
}

// LocalZone returns the local civil zone, resolving it on first call.
func (s *Service) LocalZone() *time.Location {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.local == nil {
		s.local = resolveLocal()
	}
	return s.local
}

// Reset drops the cached local zone so the next LocalZone call re-reads $TZ.
func (s *Service) Reset() {
	s.mu.Lock()
	s.local = nil
	s.mu.Unlock()
}

// SetLocalZone pins the local zone, bypassing $TZ resolution.
func (s *Service) SetLocalZone(loc *time.Location) {
	s.mu.Lock()
	s.local = loc
	s.mu.Unlock()
}

func resolveLocal() *time.Location {
	tz, ok := os.LookupEnv("TZ")
	if !ok {
		return time.Local
	}

	// POSIX: an empty TZ means UTC, a leading colon is implementation defined
	// and conventionally ignored.
	name := strings.TrimPrefix(tz, ":")
	if name == "" {
		return time.UTC
	}

	if strings.HasPrefix(name, "/") {
		data, err := os.ReadFile(name)
		if err != nil {
			return time.Local
		}
		loc, err := time.LoadLocationFromTZData(name, data)
		if err != nil {
			return time.Local
		}
		return loc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

// LoadZone maps a configured zone name to a location. Empty and "local"
// select the resolved local zone.
func (s *Service) LoadZone(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, LocalName) {
		return s.LocalZone(), nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.New().Wrap(ErrUnknownZone, err).WithData(name)
	}
	return loc, nil
}

func (s *Service) zone(loc *time.Location) *time.Location {
	if loc == nil {
		return s.LocalZone()
	}
	return loc
}

// Now returns the current instant expressed in zone (nil means local).
func (s *Service) Now(zone *time.Location) time.Time {
	s.mu.Lock()
	clock := s.clock
	s.mu.Unlock()

	return s.Convert(clock().UTC(), zone)
}

// MakeAware attaches zone to the wall clock reading of naive. The wall clock
// is kept, so the instant is whatever that reading means in zone.
func (s *Service) MakeAware(naive time.Time, zone *time.Location) time.Time {
	zone = s.zone(zone)
	return time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(), zone)
}

// Convert re-expresses t in zone. t is returned untouched when it is
// already in zone.
func (s *Service) Convert(t time.Time, zone *time.Location) time.Time {
	zone = s.zone(zone)
	if t.Location() == zone {
		return t
	}
	return t.In(zone)
}

// Parse reads "YYYY-MM-DD HH:MM:SS" followed by " ±HHMM", "Z" or "Z±HHMM"
// and returns the instant expressed in zone.
func (s *Service) Parse(text string, zone *time.Location) (time.Time, error) {
	errFactory := errors.New()

	if len(text) < len(wallLayout) {
		return time.Time{}, errFactory.WithData(ErrInvalidTimestamp, text)
	}

	wall, err := time.ParseInLocation(wallLayout, text[:len(wallLayout)], time.UTC)
	if err != nil {
		return time.Time{}, errFactory.Wrap(ErrInvalidTimestamp, err)
	}

	rest := text[len(wallLayout):]
	zulu := strings.HasPrefix(rest, "Z")
	if zulu {
		rest = rest[1:]
	}
	rest = strings.TrimPrefix(rest, " ")

	switch {
	case rest == "" && zulu:
		// Bare Z, already UTC.
	case rest == "":
		return time.Time{}, errFactory.WithData(ErrInvalidTimestamp, text)
	default:
		offset, err := parseOffset(rest)
		if err != nil {
			return time.Time{}, err
		}
		// The wall clock is local to the offset; undo it to reach UTC.
		wall = wall.Add(-offset)
	}

	return s.Convert(wall, zone), nil
}

// parseOffset reads a fixed width "±HHMM" token.
func parseOffset(tok string) (time.Duration, error) {
	errFactory := errors.New()

	if len(tok) != offsetLen || (tok[0] != '+' && tok[0] != '-') {
		return 0, errFactory.WithData(ErrInvalidOffset, tok)
	}

	hours, ok := twoDigits(tok[1:3])
	if !ok {
		return 0, errFactory.WithData(ErrInvalidOffset, tok)
	}
	minutes, ok := twoDigits(tok[3:5])
	if !ok {
		return 0, errFactory.WithData(ErrInvalidOffset, tok)
	}

	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if tok[0] == '-' {
		d = -d
	}
	return d, nil
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// Format renders t with DTFormat in t's own zone.
func Format(t time.Time) string {
	return t.Format(DTFormat)
}

// ToEpochSeconds returns seconds since the POSIX epoch. It is computed from
// Unix seconds, not a Duration, so it holds outside the ±292 year range of
// time.Duration.
func ToEpochSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}
