package config

import (
	"os"
	"path/filepath"
)

// Environment overrides, mainly for tests and portable installs.
const (
	EnvHome = "CMDVAULT_HOME"
	EnvDB   = "CMDVAULT_DB"
)

// DataDir returns the directory used to store cmdvault data.
func DataDir() (string, error) {
	if d := os.Getenv(EnvHome); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	// Use a dot-directory in the user's home on all platforms
	return filepath.Join(home, ".cmdvault"), nil
}

// EnsureDataDir creates the data directory if needed and returns it.
func EnsureDataDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", err
	}
	return d, nil
}

// DBPath returns the full path to the SQLite database file.
func DBPath() (string, error) {
	if p := os.Getenv(EnvDB); p != "" {
		return p, nil
	}
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "cmdvault.db"), nil
}
