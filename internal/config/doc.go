// Package config loads the scrapekit daemon configuration and manages
// the standard data directories.
//
// # File Format
//
// A config file is decoded according to its extension:
//   - scrapekit.json / scrapekit.jsonc - JSON, comments allowed and
//     stripped with tidwall/jsonc before decoding
//   - scrapekit.yaml / scrapekit.yml - YAML
//
// Every file must carry the version gate:
//
//	{
//	  "config_version": 1,
//	  "script_dirs": [".", "${HOME}/.scrapekit/scripts"],
//	  "script_names": ["${NAME}", "${NAME}.scrape"],
//	  "suites": {
//	    "default": {
//	      "jobs": [
//	        {
//	          "name": "noon-report",
//	          "script": "report",
//	          "args": ["daily"],
//	          "schedule": "0 12 * * *",
//	          "dedup": true
//	        }
//	      ]
//	    }
//	  },
//	  "server": {"enabled": true, "addr": "127.0.0.1:8917"}
//	}
//
// Files declaring any other config_version are rejected with
// ErrUnsupportedConfigVersion. The version is probed before the full
// decode so a future incompatible schema still reports a version
// mismatch rather than a parse error.
//
// # Variable Interpolation
//
// Before decoding, two placeholder forms are substituted in the raw
// text:
//   - {env:VAR_NAME} - the environment variable's value
//   - {file:path} - the file's contents, trimmed of surrounding
//     whitespace
//
// A missing variable or file becomes the empty string. Relative
// {file:} paths resolve against the config file's directory, and ~/
// expands to the home directory. The ${NAME} and ${HOME} markers in
// script_dirs and script_names are not touched here; the script loader
// expands them per lookup.
//
// # Validation
//
// Jobs without a name get the name "unnamed". Every job needs a script
// and a five-field cron schedule; schedules are compiled during Load so
// a typo fails at startup with the suite and job named, not at the
// first matching minute.
//
// # Paths
//
// The Paths type exposes the XDG base directories scrapekit uses
// (~/.local/share/scrapekit and friends). The daemon keeps run records
// under StoragePath and searches ScriptsPath for scripts in addition to
// the configured script_dirs. When no config file is named on the
// command line, DefaultConfigPath checks SCRAPEKIT_CONFIG and then the
// config directory.
package config
