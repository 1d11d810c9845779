// Package fields turns raw apcupsd status strings into typed, nullable values
// and back into their log representation.
package fields

import (
	"fmt"
	"time"
)

// Absent is the token for a missing value, both in status output and in
// the log file.
const Absent = "-"

// Field names used by the log.
const (
	Date      = "DATE"
	StartTime = "STARTTIME"
	LineV     = "LINEV"
	LineFreq  = "LINEFREQ"
	XOnBatt   = "XONBATT"
	XOffBatt  = "XOFFBATT"
	EndAPC    = "END APC"
	BCharge   = "BCHARGE"
	LoadPct   = "LOADPCT"
	TimeLeft  = "TIMELEFT"
	BattV     = "BATTV"
	OutputV   = "OUTPUTV"
	ITemp     = "ITEMP"
)

// DateFields share the timestamp binding.
var DateFields = []string{Date, StartTime, XOnBatt, XOffBatt, EndAPC}

// LogFields is the canonical column order of a new log file.
var LogFields = []string{Date, LineV, LineFreq}

// Field is a named value. A nil Value means the value is absent.
type Field struct {
	Name  string
	Value any
}

// Null returns an absent field.
func Null(name string) Field {
	return Field{Name: name}
}

// IsNull reports whether the value is absent.
func (f Field) IsNull() bool {
	return f.Value == nil
}

// Time returns the timestamp value, if the field holds one.
func (f Field) Time() (time.Time, bool) {
	t, ok := f.Value.(time.Time)
	return t, ok
}

// Float returns the numeric value, if the field holds one.
func (f Field) Float() (float64, bool) {
	v, ok := f.Value.(float64)
	return v, ok
}

// Text returns the raw string value of an unbound field.
func (f Field) Text() (string, bool) {
	s, ok := f.Value.(string)
	return s, ok
}

// String formats the field with the default registry. A field parsed by a
// Registry with other bindings may render differently here than through
// that Registry's Format; code holding a Registry formats with it.
func (f Field) String() string {
	return Format(f)
}

// GoString keeps %#v output readable in test failures.
func (f Field) GoString() string {
	return fmt.Sprintf("<%s: %s>", f.Name, f.String())
}
