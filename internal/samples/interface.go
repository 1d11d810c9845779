package samples

import (
	"context"
	"time"

	"codeberg.org/mutker/upslogger/internal/fields"
	"codeberg.org/mutker/upslogger/internal/timezone"
)

// Recorder mirrors logged samples into a queryable store.
type Recorder interface {
	Record(ctx context.Context, rec fields.Record) error
	Query(ctx context.Context, from, to time.Time) ([]Sample, error)
	Close() error
	Enabled() bool
}

// Repository is the storage behind a Recorder.
type Repository interface {
	Store(ctx context.Context, sample Sample) error
	Query(ctx context.Context, from, to time.Time) ([]Sample, error)
	Close() error
}

// Sample is one mirrored row. Nil readings were absent in the log.
type Sample struct {
	Timestamp     time.Time
	LineVoltage   *float64
	LineFrequency *float64
}

// FromRecord extracts the mirrored columns from rec. The record must carry a
// DATE timestamp.
func FromRecord(rec fields.Record) (Sample, bool) {
	date, _ := rec.Get(fields.Date)
	ts, ok := date.Time()
	if !ok {
		return Sample{}, false
	}

	return Sample{
		Timestamp:     ts,
		LineVoltage:   floatField(rec, fields.LineV),
		LineFrequency: floatField(rec, fields.LineFreq),
	}, true
}

func floatField(rec fields.Record, name string) *float64 {
	f, _ := rec.Get(name)
	v, ok := f.Float()
	if !ok {
		return nil
	}
	return &v
}

// Record converts s back to a log record with DATE in tz's local zone.
func (s Sample) Record(tz *timezone.Service) fields.Record {
	if tz == nil {
		tz = timezone.Default()
	}

	rec := fields.NewRecord(fields.Field{Name: fields.Date, Value: tz.Convert(s.Timestamp, nil)})
	rec.Set(nullableField(fields.LineV, s.LineVoltage))
	rec.Set(nullableField(fields.LineFreq, s.LineFrequency))
	return rec
}

func nullableField(name string, v *float64) fields.Field {
	if v == nil {
		return fields.Null(name)
	}
	return fields.Field{Name: name, Value: *v}
}
