package poller_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/upslogger/internal/apcaccess"
	"codeberg.org/mutker/upslogger/internal/errors"
	"codeberg.org/mutker/upslogger/internal/fields"
	"codeberg.org/mutker/upslogger/internal/logstore"
	"codeberg.org/mutker/upslogger/internal/poller"
	"codeberg.org/mutker/upslogger/internal/samples"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var status = map[string]string{
	"DATE":     "2017-08-03 14:10:00 -0500",
	"LINEV":    "121.0 Volts",
	"LINEFREQ": "60.0 Hz",
	"MODEL":    "Back-UPS RS 1500G",
}

type memStore struct {
	mu      sync.Mutex
	records []fields.Record
	err     error
}

func (s *memStore) Append(rec fields.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *memStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type failingMirror struct {
	samples.Recorder
}

func (failingMirror) Record(context.Context, fields.Record) error {
	return errors.New().New(samples.ErrStorageAccess)
}

func staticSource(status map[string]string) apcaccess.Source {
	return apcaccess.SourceFunc(func(context.Context) (map[string]string, error) {
		return status, nil
	})
}

func TestOnceWritesLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apclinev.log")
	store, err := logstore.New(logstore.Config{Path: path}, nil, nil)
	require.NoError(t, err)

	p, err := poller.New(poller.Config{}, staticSource(status), store, nil, nil, nil)
	require.NoError(t, err)

	rec, err := p.Once(context.Background())
	require.NoError(t, err)
	assert.True(t, rec.Has("MODEL"))

	records, err := store.Records()
	require.NoError(t, err)
	require.Len(t, records, 1)
	linev, _ := records[0].Get(fields.LineV)
	assert.Equal(t, 121.0, linev.Value)
	assert.False(t, records[0].Has("MODEL"), "only log columns are stored")
}

func TestOnceMirrorsAndRunsHook(t *testing.T) {
	mirror, err := samples.NewService(samples.Config{
		DBPath:  filepath.Join(t.TempDir(), "samples.db"),
		Enabled: true,
	}, nil)
	require.NoError(t, err)
	defer mirror.Close()

	var hooked []fields.Record
	cfg := poller.Config{
		AfterSample: func(_ context.Context, rec fields.Record) error {
			hooked = append(hooked, rec)
			return nil
		},
	}

	store := &memStore{}
	p, err := poller.New(cfg, staticSource(status), store, mirror, nil, nil)
	require.NoError(t, err)

	_, err = p.Once(context.Background())
	require.NoError(t, err)
	assert.Len(t, hooked, 1)

	got, err := mirror.Query(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1501787400), got[0].Timestamp.Unix())
}

func TestOnceErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Incomplete", func(t *testing.T) {
		store := &memStore{}
		src := staticSource(map[string]string{"DATE": status["DATE"]})
		p, err := poller.New(poller.Config{}, src, store, nil, nil, nil)
		require.NoError(t, err)

		_, err = p.Once(ctx)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, poller.ErrSampleFailed))
		assert.True(t, errors.HasCode(err, apcaccess.ErrIncompleteStatus))
		assert.Zero(t, store.Len())
	})

	t.Run("Store", func(t *testing.T) {
		store := &memStore{err: errors.New().New(logstore.ErrAppendFailed)}
		p, err := poller.New(poller.Config{}, staticSource(status), store, nil, nil, nil)
		require.NoError(t, err)

		_, err = p.Once(ctx)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, poller.ErrStoreFailed))
	})

	t.Run("Mirror", func(t *testing.T) {
		store := &memStore{}
		p, err := poller.New(poller.Config{}, staticSource(status), store, failingMirror{}, nil, nil)
		require.NoError(t, err)

		_, err = p.Once(ctx)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, poller.ErrMirrorFailed))
		assert.Equal(t, 1, store.Len(), "log is written before the mirror")
	})
}

func TestNewValidation(t *testing.T) {
	_, err := poller.New(poller.Config{}, nil, &memStore{}, nil, nil, nil)
	assert.True(t, errors.HasCode(err, poller.ErrInvalidConfig))

	_, err = poller.New(poller.Config{Interval: -time.Second}, staticSource(status), &memStore{}, nil, nil, nil)
	assert.True(t, errors.HasCode(err, poller.ErrInvalidInterval))

	p, err := poller.New(poller.Config{}, staticSource(status), &memStore{}, nil, nil, nil)
	require.NoError(t, err)
	err = p.Run(context.Background())
	assert.True(t, errors.HasCode(err, poller.ErrInvalidInterval), "Run needs a positive interval")
}

func TestRunSamplesImmediatelyAndOnEveryTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	src := apcaccess.SourceFunc(func(context.Context) (map[string]string, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 3 {
			cancel()
		}
		return status, nil
	})

	store := &memStore{}
	p, err := poller.New(poller.Config{Interval: 10 * time.Millisecond}, src, store, nil, nil, nil)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, p.Run(ctx))
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Equal(t, 3, store.Len())
}

func TestRunFirstSampleBeforeInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &memStore{}
	src := apcaccess.SourceFunc(func(context.Context) (map[string]string, error) {
		defer cancel()
		return status, nil
	})
	p, err := poller.New(poller.Config{Interval: time.Hour}, src, store, nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, 1, store.Len())
}

func TestRunSkipsAcquisitionErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	src := apcaccess.SourceFunc(func(context.Context) (map[string]string, error) {
		calls++
		switch calls {
		case 1:
			return nil, errors.New().New(apcaccess.ErrCommandFailed)
		case 2:
			return map[string]string{"LINEV": "120"}, nil
		default:
			return status, nil
		}
	})

	store := &memStore{}
	cfg := poller.Config{
		Interval: time.Millisecond,
		AfterSample: func(context.Context, fields.Record) error {
			cancel()
			return nil
		},
	}
	p, err := poller.New(cfg, src, store, nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, store.Len())
}

func TestRunStopsOnStoreError(t *testing.T) {
	store := &memStore{err: errors.New().New(logstore.ErrAppendFailed)}
	p, err := poller.New(poller.Config{Interval: time.Millisecond}, staticSource(status), store, nil, nil, nil)
	require.NoError(t, err)

	err = p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, poller.ErrStoreFailed))
	assert.True(t, errors.HasCode(err, logstore.ErrAppendFailed))
}
