// Package logstore reads and appends the tab separated sample log.
//
// A log file starts with a header naming its columns:
//
//	#fields:	DATE	LINEV	LINEFREQ
//
// followed by one line per sample. Files written before the header existed
// are migrated in place the first time they are read.
package logstore

import (
	"bufio"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/upslogger/internal/errors"
	"codeberg.org/mutker/upslogger/internal/fields"
	"codeberg.org/mutker/upslogger/internal/logger"
)

const (
	HeaderToken = "#fields:"
	separator   = "\t"
)

// HeaderLine renders the header for columns.
func HeaderLine(columns []string) string {
	return strings.Join(append([]string{HeaderToken}, columns...), separator)
}

// FormatLine renders rec as one log line, without the newline, using the
// column order given. Columns the record lacks are written as "-".
func FormatLine(reg *fields.Registry, rec fields.Record, columns []string) string {
	vals := make([]string, len(columns))
	for i, name := range columns {
		f, ok := rec.Get(name)
		if !ok {
			f = fields.Null(name)
		}
		vals[i] = reg.Format(f)
	}
	return strings.Join(vals, separator)
}

// Append writes rec to the log at path with the default registry.
func Append(rec fields.Record, path string) error {
	return appendRecord(fields.Default(), rec, path)
}

// Parse reads every record of the log at path with the default registry.
// A missing file yields (nil, nil); a file without rows yields an empty,
// non-nil slice.
func Parse(path string) ([]fields.Record, error) {
	return parseFile(fields.Default(), logger.Nop(), path)
}

func appendRecord(reg *fields.Registry, rec fields.Record, path string) error {
	errFactory := errors.New()

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return errFactory.WithData(ErrCreateDir, struct {
			Path  string
			Error string
		}{
			Path:  filepath.Dir(path),
			Error: err.Error(),
		})
	}

	columns, exists, unterminated, err := readColumns(path)
	if err != nil {
		return errFactory.Wrap(ErrAppendFailed, err)
	}

	var buf bytes.Buffer
	if unterminated {
		// Keep the new line off the end of the last one.
		buf.WriteByte('\n')
	}
	if !exists {
		columns = fields.LogFields
		buf.WriteString(HeaderLine(columns))
		buf.WriteByte('\n')
	}
	buf.WriteString(FormatLine(reg, rec, columns))
	buf.WriteByte('\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultFilePerm)
	if err != nil {
		return errFactory.Wrap(ErrAppendFailed, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return errFactory.Wrap(ErrAppendFailed, err)
	}
	if err := f.Close(); err != nil {
		return errFactory.Wrap(ErrAppendFailed, err)
	}

	return nil
}

// readColumns returns the columns declared by the file at path. exists is
// false for a missing or empty file. A headerless legacy file reports the
// canonical columns, matching what migration will prepend. unterminated is
// true when the file is not empty and does not end in a newline.
func readColumns(path string) (columns []string, exists, unterminated bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, false, nil
	}
	if err != nil {
		return nil, false, false, err
	}
	defer f.Close()

	unterminated, err = lacksFinalNewline(f)
	if err != nil {
		return nil, false, false, err
	}

	r := bufio.NewReader(f)
	for {
		line, readErr := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			if cols, ok := parseHeader(line); ok {
				return cols, true, unterminated, nil
			}
			return fields.LogFields, true, unterminated, nil
		}
		if readErr != nil {
			// Only blank lines, or nothing at all.
			return nil, false, unterminated, nil
		}
	}
}

func lacksFinalNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

func parseHeader(line string) ([]string, bool) {
	if !strings.HasPrefix(line, HeaderToken) {
		return nil, false
	}
	return strings.Split(line, separator)[1:], true
}

func parseFile(reg *fields.Registry, log logger.Logger, path string) ([]fields.Record, error) {
	records, ok, err := parseOnce(reg, path)
	if err != nil || ok {
		return records, err
	}

	if err := migrateLegacy(path); err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Msg("Added header to legacy log file")

	records, ok, err = parseOnce(reg, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New().WithData(ErrLegacyMigration, struct {
			Phase string
			Path  string
		}{
			Phase: "reparse",
			Path:  path,
		})
	}
	return records, nil
}

// parseOnce reads path. ok is false when the file has no header.
func parseOnce(reg *fields.Registry, path string) (records []fields.Record, ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, errors.New().Wrap(ErrReadFailed, err)
	}

	lines := splitLines(string(data))

	var columns []string
	start := 0
	for ; start < len(lines); start++ {
		if lines[start] == "" {
			continue
		}
		columns, ok = parseHeader(lines[start])
		break
	}
	if !ok {
		return nil, false, nil
	}

	records = make([]fields.Record, 0, len(lines)-start)
	for _, line := range lines[start+1:] {
		if line == "" {
			continue
		}
		records = append(records, parseRow(reg, columns, line))
	}
	return records, true, nil
}

func parseRow(reg *fields.Registry, columns []string, line string) fields.Record {
	vals := strings.Split(line, separator)
	rec := fields.NewRecord()
	for i, name := range columns {
		raw := fields.Absent
		if i < len(vals) {
			raw = vals[i]
		}
		rec.Set(reg.Parse(name, raw))
	}
	return rec
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// migrateLegacy prepends the canonical header to a headerless file. The
// original lines are kept byte for byte; the file is replaced by rename so a
// failed write leaves the original in place.
func migrateLegacy(path string) error {
	errFactory := errors.New()
	fail := func(phase string, err error) error {
		return errFactory.WithData(ErrLegacyMigration, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: phase,
			Path:  path,
			Error: err.Error(),
		})
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail("stat", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fail("read", err)
	}

	var buf bytes.Buffer
	buf.WriteString(HeaderLine(fields.LogFields))
	buf.WriteByte('\n')
	buf.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		buf.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".migrate-*")
	if err != nil {
		return fail("create_temp", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fail("write_temp", err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return fail("chmod_temp", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("close_temp", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fail("rename", err)
	}

	return nil
}
