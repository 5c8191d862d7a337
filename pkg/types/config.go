// Package types provides the shared data types for the scrapekit daemon.
package types

// CurrentConfigVersion is the only configuration format version this
// build understands.
const CurrentConfigVersion = 1

// Config represents a scrapekit daemon configuration file.
type Config struct {
	// Format version gate
	ConfigVersion int `json:"config_version" yaml:"config_version"`

	// Script resolution
	ScriptDirs  []string `json:"script_dirs,omitempty" yaml:"script_dirs,omitempty"`
	ScriptNames []string `json:"script_names,omitempty" yaml:"script_names,omitempty"`

	// Job suites keyed by suite name
	Suites map[string]SuiteConfig `json:"suites,omitempty" yaml:"suites,omitempty"`

	// Optional status server
	Server *ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`
}

// SuiteConfig groups the jobs that run under one suite name.
type SuiteConfig struct {
	Jobs []JobConfig `json:"jobs,omitempty" yaml:"jobs,omitempty"`
}

// JobConfig describes one scheduled script run.
type JobConfig struct {
	// Display name; empty means "unnamed"
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Script to execute, resolved through the configured script dirs
	Script string `json:"script" yaml:"script"`

	// Positional and keyword arguments passed to the script
	Args   []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Kwargs map[string]string `json:"kwargs,omitempty" yaml:"kwargs,omitempty"`

	// Cron expression, five fields, minute resolution
	Schedule string `json:"schedule" yaml:"schedule"`

	// Drop repeated identical effect invocations within one run
	Dedup bool `json:"dedup,omitempty" yaml:"dedup,omitempty"`
}

// ServerConfig holds the optional status server settings.
type ServerConfig struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Addr    string `json:"addr,omitempty" yaml:"addr,omitempty"`
}
