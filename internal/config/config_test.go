package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSONC(t *testing.T) {
	src := `{
		// runs the daily report at noon
		"config_version": 1,
		"script_dirs": [".", "${HOME}/.scrapekit/scripts"],
		"script_names": ["${NAME}", "${NAME}.scrape"],
		"suites": {
			"default": {
				"jobs": [
					{
						"name": "noon-report",
						"script": "report",
						"args": ["daily"],
						"kwargs": {"region": "eu"},
						"schedule": "0 12 * * *",
						"dedup": true
					}
				]
			}
		}
	}`

	cfg, err := Load(writeConfig(t, "scrapekit.jsonc", src))
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.ConfigVersion)
	assert.Equal(t, []string{".", "${HOME}/.scrapekit/scripts"}, cfg.ScriptDirs)
	assert.Equal(t, []string{"${NAME}", "${NAME}.scrape"}, cfg.ScriptNames)
	assert.Nil(t, cfg.Server)

	require.Len(t, cfg.Suites["default"].Jobs, 1)
	job := cfg.Suites["default"].Jobs[0]
	assert.Equal(t, "noon-report", job.Name)
	assert.Equal(t, "report", job.Script)
	assert.Equal(t, []string{"daily"}, job.Args)
	assert.Equal(t, map[string]string{"region": "eu"}, job.Kwargs)
	assert.Equal(t, "0 12 * * *", job.Schedule)
	assert.True(t, job.Dedup)
}

func TestLoadYAML(t *testing.T) {
	src := `config_version: 1
script_dirs:
  - scripts
suites:
  hourly:
    jobs:
      - script: probe
        schedule: "*/5 * * * *"
server:
  enabled: true
`

	cfg, err := Load(writeConfig(t, "scrapekit.yml", src))
	require.NoError(t, err)

	require.Len(t, cfg.Suites["hourly"].Jobs, 1)
	job := cfg.Suites["hourly"].Jobs[0]
	assert.Equal(t, "unnamed", job.Name)
	assert.Equal(t, "probe", job.Script)
	assert.False(t, job.Dedup)

	require.NotNil(t, cfg.Server)
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
}

func TestLoadNoSuites(t *testing.T) {
	cfg, err := Load(writeConfig(t, "scrapekit.json", `{"config_version": 1}`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Suites)
}

func TestLoadServerAddr(t *testing.T) {
	src := `{"config_version": 1, "server": {"enabled": true, "addr": "0.0.0.0:9000"}}`
	cfg, err := Load(writeConfig(t, "scrapekit.json", src))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
}

func TestLoadUnsupportedVersion(t *testing.T) {
	_, err := Load(writeConfig(t, "scrapekit.json", `{"config_version": 2}`))
	require.ErrorIs(t, err, ErrUnsupportedConfigVersion)
	assert.EqualError(t, err, "Unsupported config version")
}

func TestLoadVersionGateBeforeSchema(t *testing.T) {
	// A future format may change shapes entirely. The version probe has
	// to fire before the full decode chokes on the new schema.
	src := `{"config_version": 2, "suites": ["not", "a", "map"]}`
	_, err := Load(writeConfig(t, "scrapekit.json", src))
	assert.ErrorIs(t, err, ErrUnsupportedConfigVersion)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadParseError(t *testing.T) {
	src := `{"config_version": 1, "suites": ["not", "a", "map"]}`
	_, err := Load(writeConfig(t, "scrapekit.json", src))
	require.Error(t, err)
	assert.ErrorContains(t, err, "parse config")
}

func TestLoadBadSchedule(t *testing.T) {
	src := `{"config_version": 1, "suites": {"default": {"jobs": [
		{"name": "bad", "script": "probe", "schedule": "61 * * * *"}
	]}}}`
	_, err := Load(writeConfig(t, "scrapekit.json", src))
	require.Error(t, err)
	assert.ErrorContains(t, err, `suite "default" job "bad"`)
	assert.ErrorContains(t, err, "cron expression")
}

func TestLoadMissingScript(t *testing.T) {
	src := `{"config_version": 1, "suites": {"default": {"jobs": [
		{"schedule": "0 0 * * *"}
	]}}}`
	_, err := Load(writeConfig(t, "scrapekit.json", src))
	assert.EqualError(t, err, `suite "default" job "unnamed": missing script`)
}

func TestLoadEnvInterpolation(t *testing.T) {
	t.Setenv("SCRAPEKIT_TEST_REGION", "eu-west")
	src := `{"config_version": 1, "suites": {"default": {"jobs": [
		{"script": "probe", "schedule": "0 0 * * *",
		 "kwargs": {"region": "{env:SCRAPEKIT_TEST_REGION}", "missing": "{env:SCRAPEKIT_TEST_NO_SUCH_VAR}"}}
	]}}}`

	cfg, err := Load(writeConfig(t, "scrapekit.json", src))
	require.NoError(t, err)

	job := cfg.Suites["default"].Jobs[0]
	assert.Equal(t, "eu-west", job.Kwargs["region"])
	assert.Equal(t, "", job.Kwargs["missing"])
}

func TestLoadFileInterpolation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token.txt"), []byte("  s3cret\n"), 0o644))

	src := `{"config_version": 1, "suites": {"default": {"jobs": [
		{"script": "probe", "schedule": "0 0 * * *",
		 "args": ["{file:token.txt}", "{file:absent.txt}"]}
	]}}}`
	path := filepath.Join(dir, "scrapekit.json")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"s3cret", ""}, cfg.Suites["default"].Jobs[0].Args)
}

func TestDefaultConfigPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("SCRAPEKIT_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", tmp)

	_, ok := DefaultConfigPath()
	assert.False(t, ok)

	dir := filepath.Join(tmp, "scrapekit")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	want := filepath.Join(dir, "scrapekit.yaml")
	require.NoError(t, os.WriteFile(want, []byte("config_version: 1\n"), 0o644))

	got, ok := DefaultConfigPath()
	require.True(t, ok)
	assert.Equal(t, want, got)

	t.Setenv("SCRAPEKIT_CONFIG", "/etc/scrapekit.json")
	got, ok = DefaultConfigPath()
	require.True(t, ok)
	assert.Equal(t, "/etc/scrapekit.json", got)
}

func TestPaths(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))

	p := GetPaths()
	assert.Equal(t, filepath.Join(tmp, "data", "scrapekit"), p.Data)
	assert.Equal(t, filepath.Join(p.Data, "storage"), p.StoragePath())
	assert.Equal(t, filepath.Join(p.Data, "scripts"), p.ScriptsPath())

	require.NoError(t, p.EnsurePaths())
	for _, dir := range []string{p.Data, p.Config, p.Cache, p.State} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
