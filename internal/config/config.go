package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/scrapekit-ai/scrapekit/internal/cron"
	"github.com/scrapekit-ai/scrapekit/pkg/types"
)

// ErrUnsupportedConfigVersion is returned when a config file declares a
// config_version other than types.CurrentConfigVersion. The capitalized
// text is user-facing: the daemon prints it verbatim.
var ErrUnsupportedConfigVersion = errors.New("Unsupported config version")

// DefaultServerAddr is where the status server listens when the config
// enables it without naming an address.
const DefaultServerAddr = "127.0.0.1:8917"

// versionProbe reads just the version gate so that an incompatible file
// is rejected by version before the full schema decode can trip over it.
type versionProbe struct {
	ConfigVersion int `json:"config_version" yaml:"config_version"`
}

// Load reads, interpolates, and decodes a daemon config file. The format
// follows the file extension: .yaml and .yml decode as YAML, everything
// else as JSON with comments. Job names default to "unnamed", schedules
// are compiled once here so a bad expression fails the load with its job
// named instead of surfacing mid-run.
func Load(path string) (*types.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = interpolate(data, filepath.Dir(path))

	var probe versionProbe
	if err := decode(data, path, &probe); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if probe.ConfigVersion != types.CurrentConfigVersion {
		return nil, ErrUnsupportedConfigVersion
	}

	cfg := &types.Config{}
	if err := decode(data, path, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	normalize(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode unmarshals data into v according to the file extension.
func decode(data []byte, path string, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(jsonc.ToJSON(data), v)
	}
}

var (
	envPattern  = regexp.MustCompile(`\{env:([^}]+)\}`)
	filePattern = regexp.MustCompile(`\{file:([^}]+)\}`)
)

// interpolate processes {env:VAR} and {file:path} placeholders in the
// raw config text. Environment values are inserted verbatim, file
// contents trimmed of surrounding whitespace. A missing variable or file
// becomes the empty string. Relative {file:} paths resolve against the
// config file's directory, ~/ against the home directory.
func interpolate(data []byte, baseDir string) []byte {
	str := string(data)

	str = envPattern.ReplaceAllStringFunc(str, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})

	str = filePattern.ReplaceAllStringFunc(str, func(match string) string {
		path := filePattern.FindStringSubmatch(match)[1]
		if strings.HasPrefix(path, "~/") {
			path = filepath.Join(os.Getenv("HOME"), path[2:])
		} else if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(content))
	})

	return []byte(str)
}

// normalize fills in the defaults the schema leaves optional.
func normalize(cfg *types.Config) {
	for name, suite := range cfg.Suites {
		for i := range suite.Jobs {
			if suite.Jobs[i].Name == "" {
				suite.Jobs[i].Name = "unnamed"
			}
		}
		cfg.Suites[name] = suite
	}
	if cfg.Server != nil && cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
}

// validate rejects jobs that could not run: every job needs a script and
// a schedule that compiles.
func validate(cfg *types.Config) error {
	for suiteName, suite := range cfg.Suites {
		for _, job := range suite.Jobs {
			if job.Script == "" {
				return fmt.Errorf("suite %q job %q: missing script", suiteName, job.Name)
			}
			if _, err := cron.Parse(job.Schedule); err != nil {
				return fmt.Errorf("suite %q job %q: %w", suiteName, job.Name, err)
			}
		}
	}
	return nil
}
