package logstore

import (
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/upslogger/internal/errors"
)

const (
	// File system permissions and paths
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
	DefaultPath     = "~/.apclinev.log"
)

type Config struct {
	Path string
}

func DefaultConfig() Config {
	return Config{
		Path: DefaultPath,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return errors.New().New(ErrInvalidPath)
	}
	return nil
}

// ExpandPath resolves a leading "~" against the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New().Wrap(ErrInvalidPath, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
