package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths contains the standard directories for scrapekit data.
type Paths struct {
	Data   string // ~/.local/share/scrapekit
	Config string // ~/.config/scrapekit
	Cache  string // ~/.cache/scrapekit
	State  string // ~/.local/state/scrapekit
}

// GetPaths returns the standard directories for scrapekit data,
// following the XDG base directory spec.
func GetPaths() *Paths {
	return &Paths{
		Data:   filepath.Join(getEnvOrDefault("XDG_DATA_HOME", defaultDataHome()), "scrapekit"),
		Config: filepath.Join(getEnvOrDefault("XDG_CONFIG_HOME", defaultConfigHome()), "scrapekit"),
		Cache:  filepath.Join(getEnvOrDefault("XDG_CACHE_HOME", defaultCacheHome()), "scrapekit"),
		State:  filepath.Join(getEnvOrDefault("XDG_STATE_HOME", defaultStateHome()), "scrapekit"),
	}
}

// EnsurePaths creates all required directories.
func (p *Paths) EnsurePaths() error {
	for _, dir := range []string{p.Data, p.Config, p.Cache, p.State} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// StoragePath returns the directory where the daemon keeps run records
// and result snapshots.
func (p *Paths) StoragePath() string {
	return filepath.Join(p.Data, "storage")
}

// ScriptsPath returns the default script directory the daemon searches
// in addition to the configured script_dirs.
func (p *Paths) ScriptsPath() string {
	return filepath.Join(p.Data, "scripts")
}

// DefaultConfigPath returns the config file the daemon falls back to
// when none is given on the command line. SCRAPEKIT_CONFIG wins, then
// the first of scrapekit.{jsonc,json,yaml,yml} under the config
// directory. The bool reports whether any candidate exists.
func DefaultConfigPath() (string, bool) {
	if path := os.Getenv("SCRAPEKIT_CONFIG"); path != "" {
		return path, true
	}
	dir := GetPaths().Config
	for _, name := range []string{"scrapekit.jsonc", "scrapekit.json", "scrapekit.yaml", "scrapekit.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultDataHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share")
}

func defaultConfigHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".config")
}

func defaultCacheHome() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "cache")
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}

func defaultStateHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state")
}
