package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/upslogger/internal/config"
	"codeberg.org/mutker/upslogger/internal/errors"
	"codeberg.org/mutker/upslogger/internal/export"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "upslogger.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	t.Setenv(config.ConfigEnv, configPath)
}

// isolate keeps the user's real config out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.ConfigEnv, "")
}

func TestLoad(t *testing.T) {
	isolate(t)
	writeConfig(t, `
logfile = "/var/log/apclinev.log"
interval = 5
host = "nas.lan"
port = 3552
timeout = 3
timezone = "America/Chicago"
log_level = "debug"
metrics = true
metrics_db = "/var/lib/upslogger/samples.db"
export_format = "js_ts"
`)

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "/var/log/apclinev.log", cfg.LogFile)
	assert.Equal(t, 5, cfg.Interval)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval())
	assert.Equal(t, "nas.lan", cfg.Host)
	assert.Equal(t, 3552, cfg.Port)
	assert.Equal(t, "America/Chicago", cfg.Timezone)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, export.JSTS, cfg.SeriesFormat())

	ac := cfg.ApcaccessConfig()
	assert.Equal(t, "apcaccess", ac.Binary)
	assert.Equal(t, "nas.lan", ac.Host)
	assert.Equal(t, 3*time.Second, ac.Timeout)

	sc, err := cfg.SamplesConfig()
	require.NoError(t, err)
	assert.True(t, sc.Enabled)
	assert.Equal(t, "/var/lib/upslogger/samples.db", sc.DBPath)

	assert.Equal(t, "/var/log/apclinev.log", cfg.LogStoreConfig().Path)
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(nil)
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, "", cfg.LogFile)
	assert.Equal(t, 0, cfg.Interval)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 3551, cfg.Port)
	assert.Equal(t, 10, cfg.Timeout)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Metrics)
	assert.False(t, cfg.Print)
	assert.Equal(t, export.PosixTS, cfg.SeriesFormat())
	assert.Equal(t, "~/.apclinev.log", cfg.LogStoreConfig().Path)
}

func TestLoadFromHomeConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.ConfigEnv, "")

	dir := filepath.Join(home, ".config", "upslogger")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "upslogger.toml"), []byte("interval = 15\n"), 0o600))

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Interval)
}

func TestFlagsOverrideFileAndEnv(t *testing.T) {
	isolate(t)
	writeConfig(t, `
interval = 5
host = "nas.lan"
`)
	t.Setenv("UPSLOGGER_HOST", "env.lan")
	t.Setenv("UPSLOGGER_LOG_LEVEL", "error")

	cfg, err := config.Load([]string{"-t", "1", "--export", "-", "--export-format", "isostr", "--metrics-db", "/tmp/s.db"})
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Interval, "flag beats file")
	assert.Equal(t, "env.lan", cfg.Host, "env beats file")
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "-", cfg.Export)
	assert.Equal(t, export.ISOStr, cfg.SeriesFormat())
	assert.Equal(t, "/tmp/s.db", cfg.MetricsDB)
}

func TestLogLevelFlag(t *testing.T) {
	isolate(t)

	cfg, err := config.Load([]string{"--log-level", "debug", "-v"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	isolate(t)
	writeConfig(t, `
This is not a valid TOML file
`)

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
	assert.True(t, errors.HasCode(err, config.ErrReadConfig))
}

func TestLoadMissingExplicitConfig(t *testing.T) {
	isolate(t)
	t.Setenv(config.ConfigEnv, filepath.Join(t.TempDir(), "missing.toml"))

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, config.ErrReadConfig))
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"NegativeInterval", []string{"--interval", "-1"}, config.ErrInvalidInterval},
		{"PortZero", []string{"--port", "0"}, config.ErrInvalidPort},
		{"PortTooLarge", []string{"--port", "70000"}, config.ErrInvalidPort},
		{"NegativeTimeout", []string{"--timeout", "-5"}, config.ErrInvalidConfig},
		{"LogLevel", []string{"--log-level", "invalid"}, config.ErrInvalidLogLevel},
		{"ExportFormat", []string{"--export-format", "csv"}, export.ErrInvalidFormat},
		{"Timezone", []string{"--timezone", "Mars/Olympus_Mons"}, config.ErrInvalidConfig},
		{"MetricsWithoutDB", []string{"--metrics", "--metrics-db", ""}, config.ErrInvalidConfig},
		{"UnknownFlag", []string{"--fanspeed", "80"}, config.ErrBindFlags},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)

			_, err := config.Load(tt.args)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), err.Error())
		})
	}
}

func TestInvalidLogLevelInFile(t *testing.T) {
	isolate(t)
	writeConfig(t, `
log_level = "invalid"
`)

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid log level")
}

func TestHelp(t *testing.T) {
	isolate(t)

	_, err := config.Load([]string{"--help"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pflag.ErrHelp)
}
