// Package export turns logged samples into per-field point series for
// charting front ends.
package export

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"codeberg.org/mutker/upslogger/internal/errors"
	"codeberg.org/mutker/upslogger/internal/fields"
	"codeberg.org/mutker/upslogger/internal/timezone"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format selects how a point's time coordinate is written.
type Format string

const (
	PosixTS Format = "posix_ts" // epoch seconds
	JSTS    Format = "js_ts"    // epoch milliseconds
	ISOStr  Format = "isostr"   // DATE in log notation
)

var formats = []Format{PosixTS, JSTS, ISOStr}

// ParseFormat validates name. An empty name selects PosixTS.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return PosixTS, nil
	}
	for _, f := range formats {
		if string(f) == strings.ToLower(name) {
			return f, nil
		}
	}
	return "", errors.New().WithData(ErrInvalidFormat, name)
}

type Point struct {
	Time any     `json:"time"`
	Y    float64 `json:"y"`
}

type Series struct {
	Name   string  `json:"-"`
	Label  string  `json:"label"`
	Values []Point `json:"values"`
}

type Options struct {
	Format Format
}

// Build collects one series per numeric field, in order of first
// appearance. Records without a DATE are skipped, as are null or
// non-numeric values.
func Build(records []fields.Record, opts Options) []Series {
	format := opts.Format
	if format == "" {
		format = PosixTS
	}

	title := cases.Title(language.Und)
	index := make(map[string]int)
	var out []Series

	for _, rec := range records {
		date, _ := rec.Get(fields.Date)
		ts, ok := date.Time()
		if !ok {
			continue
		}
		x := timeValue(ts, format)

		for _, f := range rec.Fields() {
			if f.Name == fields.Date {
				continue
			}
			y, ok := f.Float()
			if !ok {
				continue
			}

			i, seen := index[f.Name]
			if !seen {
				i = len(out)
				index[f.Name] = i
				out = append(out, Series{Name: f.Name, Label: title.String(f.Name)})
			}
			out[i].Values = append(out[i].Values, Point{Time: x, Y: y})
		}
	}

	return out
}

func timeValue(ts time.Time, format Format) any {
	switch format {
	case JSTS:
		return timezone.ToEpochSeconds(ts) * 1000
	case ISOStr:
		return timezone.Format(ts)
	default:
		return timezone.ToEpochSeconds(ts)
	}
}

// WriteJSON writes series as a JSON array.
func WriteJSON(w io.Writer, series []Series) error {
	if series == nil {
		series = []Series{}
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(series); err != nil {
		return errors.New().Wrap(ErrWriteFailed, err)
	}
	return nil
}
