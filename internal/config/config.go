// Package config loads upslogger settings from flags, environment and an
// optional TOML file, in that order of precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/upslogger/internal/apcaccess"
	"codeberg.org/mutker/upslogger/internal/errors"
	"codeberg.org/mutker/upslogger/internal/export"
	"codeberg.org/mutker/upslogger/internal/logger"
	"codeberg.org/mutker/upslogger/internal/logstore"
	"codeberg.org/mutker/upslogger/internal/samples"
	"codeberg.org/mutker/upslogger/internal/timezone"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName         = "upslogger"
	EnvPrefix       = "UPSLOGGER"
	ConfigEnv       = EnvPrefix + "_CONFIG"
	DefaultLogLevel = "warning"
	systemConfigDir = "/etc/upslogger"
)

type Config struct {
	LogFile      string `mapstructure:"logfile"`
	Interval     int    `mapstructure:"interval"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Apcaccess    string `mapstructure:"apcaccess"`
	Timeout      int    `mapstructure:"timeout"`
	Timezone     string `mapstructure:"timezone"`
	LogLevel     string `mapstructure:"log_level"`
	Debug        bool   `mapstructure:"debug"`
	Verbose      bool   `mapstructure:"verbose"`
	Metrics      bool   `mapstructure:"metrics"`
	MetricsDB    string `mapstructure:"metrics_db"`
	Export       string `mapstructure:"export"`
	ExportFormat string `mapstructure:"export_format"`
	Print        bool   `mapstructure:"print"`
}

// flag name -> config key, for flags whose name differs from the key
var flagKeys = map[string]string{
	"log-level":     "log_level",
	"metrics-db":    "metrics_db",
	"export-format": "export_format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logfile", "")
	v.SetDefault("interval", 0)
	v.SetDefault("host", apcaccess.DefaultHost)
	v.SetDefault("port", apcaccess.DefaultPort)
	v.SetDefault("apcaccess", apcaccess.DefaultBinary)
	v.SetDefault("timeout", int(apcaccess.DefaultTimeout/time.Second))
	v.SetDefault("timezone", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("metrics", false)
	v.SetDefault("metrics_db", samples.DefaultDBPath)
	v.SetDefault("export", "")
	v.SetDefault("export_format", string(export.PosixTS))
	v.SetDefault("print", false)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)

	fs.StringP("logfile", "f", "", "Append samples to this log file")
	fs.IntP("interval", "t", 0, "Log a sample every N minutes (0 logs once)")
	fs.String("host", apcaccess.DefaultHost, "apcupsd host")
	fs.Int("port", apcaccess.DefaultPort, "apcupsd port")
	fs.String("apcaccess", apcaccess.DefaultBinary, "Path to the apcaccess binary")
	fs.Int("timeout", int(apcaccess.DefaultTimeout/time.Second), "Seconds to wait for apcaccess")
	fs.String("timezone", "", "Local timezone for timestamps (defaults to $TZ)")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.BoolP("debug", "d", false, "Enable debugging mode")
	fs.BoolP("verbose", "v", false, "Enable verbose logging")
	fs.Bool("metrics", false, "Mirror samples into a SQLite database")
	fs.String("metrics-db", samples.DefaultDBPath, "Path to the samples database")
	fs.StringP("export", "e", "", "Write the log as chart series JSON to this path ('-' for stdout)")
	fs.String("export-format", string(export.PosixTS), "Time format for exported points (posix_ts, js_ts, isostr)")
	fs.BoolP("print", "p", false, "Print the current line voltage")

	return fs
}

// Load parses args (without the program name) and merges them over the
// environment and the config file.
func Load(args []string) (*Config, error) {
	errFactory := errors.New()

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(ErrBindFlags, err)
	}

	v := viper.New()
	setDefaults(v)

	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key := f.Name
		if k, ok := flagKeys[f.Name]; ok {
			key = k
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, errFactory.Wrap(ErrBindFlags, bindErr)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func readConfigFile(v *viper.Viper) error {
	v.SetConfigType("toml")

	if path := os.Getenv(ConfigEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(systemConfigDir)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", AppName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.New().Wrap(ErrReadConfig, err)
	}

	return nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval < 0 {
		return errFactory.WithData(ErrInvalidInterval, c.Interval)
	}
	if c.Port < 1 || c.Port > 65535 {
		return errFactory.WithData(ErrInvalidPort, c.Port)
	}
	if c.Timeout < 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Key   string
			Value int
		}{
			Key:   "timeout",
			Value: c.Timeout,
		})
	}
	if c.LogLevel != "" {
		if _, ok := logger.ParseLevel(c.LogLevel); !ok {
			return errFactory.WithData(ErrInvalidLogLevel, c.LogLevel)
		}
	}
	if _, err := export.ParseFormat(c.ExportFormat); err != nil {
		return err
	}
	if c.Timezone != "" {
		if _, err := timezone.New().LoadZone(c.Timezone); err != nil {
			return errFactory.Wrap(ErrInvalidConfig, err)
		}
	}
	if c.Metrics && c.MetricsDB == "" {
		return errFactory.WithMessage(ErrInvalidConfig, "metrics_db is required when metrics is enabled")
	}

	return nil
}

// PollInterval returns Interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Interval) * time.Minute
}

func (c *Config) ApcaccessConfig() apcaccess.Config {
	return apcaccess.Config{
		Binary:  c.Apcaccess,
		Host:    c.Host,
		Port:    c.Port,
		Timeout: time.Duration(c.Timeout) * time.Second,
	}
}

func (c *Config) LogStoreConfig() logstore.Config {
	cfg := logstore.DefaultConfig()
	if c.LogFile != "" {
		cfg.Path = c.LogFile
	}
	return cfg
}

func (c *Config) SamplesConfig() (samples.Config, error) {
	path, err := logstore.ExpandPath(c.MetricsDB)
	if err != nil {
		return samples.Config{}, err
	}
	return samples.Config{
		DBPath:  path,
		Enabled: c.Metrics,
	}, nil
}

func (c *Config) SeriesFormat() export.Format {
	f, _ := export.ParseFormat(c.ExportFormat)
	return f
}
