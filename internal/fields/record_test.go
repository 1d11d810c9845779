package fields_test

import (
	"testing"

	"codeberg.org/mutker/upslogger/internal/fields"
	"github.com/stretchr/testify/assert"
)

func TestRecordOrder(t *testing.T) {
	rec := fields.NewRecord(
		fields.Field{Name: fields.LineFreq, Value: 60.0},
		fields.Null(fields.Date),
		fields.Field{Name: fields.LineV, Value: 120.0},
	)

	assert.Equal(t, []string{fields.LineFreq, fields.Date, fields.LineV}, rec.Names())
	assert.Equal(t, 3, rec.Len())

	rec.Set(fields.Field{Name: fields.Date, Value: "replaced"})
	assert.Equal(t, []string{fields.LineFreq, fields.Date, fields.LineV}, rec.Names(), "replacing keeps position")

	f, ok := rec.Get(fields.Date)
	assert.True(t, ok)
	assert.Equal(t, "replaced", f.Value)

	got := rec.Fields()
	assert.Equal(t, fields.LineFreq, got[0].Name)
	assert.Equal(t, fields.LineV, got[2].Name)
}

func TestRecordMissing(t *testing.T) {
	rec := fields.NewRecord(fields.Null(fields.Date), fields.Field{Name: fields.LineV, Value: 1.0})

	assert.True(t, rec.Has(fields.Date), "null fields still count as present")
	assert.False(t, rec.Has(fields.LineFreq))
	assert.Equal(t, []string{fields.LineFreq}, rec.Missing(fields.LogFields...))
	assert.Empty(t, rec.Missing(fields.Date, fields.LineV))

	_, ok := rec.Get("NOPE")
	assert.False(t, ok)
}

func TestZeroRecord(t *testing.T) {
	var rec fields.Record
	assert.Equal(t, 0, rec.Len())
	assert.Empty(t, rec.Names())

	rec.Set(fields.Null(fields.LineV))
	assert.Equal(t, []string{fields.LineV}, rec.Names())
}
