package samples

import (
	"path/filepath"

	"codeberg.org/mutker/upslogger/internal/errors"
)

const (
	// File system permissions and paths
	defaultDirPerm = 0o755
	DefaultDBPath  = "~/.local/share/upslogger/samples.db"
	backupDirName  = "backups"
)

type Config struct {
	DBPath  string
	Enabled bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:  DefaultDBPath,
		Enabled: false, // Disabled by default
	}
}

func (c Config) Validate() error {
	// Only validate DBPath if the mirror is enabled
	if c.Enabled && c.DBPath == "" {
		return errors.New().New(ErrInvalidDBPath)
	}
	return nil
}

// BackupDir is where schema migrations store copies of the old database.
func (c Config) BackupDir() string {
	return filepath.Join(filepath.Dir(c.DBPath), backupDirName)
}
