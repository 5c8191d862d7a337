// Package script resolves script names to source text and discovers
// script files on disk. Two loaders cover the two consumers: FileLoader
// mirrors the CLI's lookup around the working directory, DirLoader
// walks the daemon's configured directory and file name patterns.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/scrapekit-ai/scrapekit/internal/logging"
)

// ErrScriptNotFound is returned when no candidate path yields a script.
// The capitalized text is user-facing CLI output.
var ErrScriptNotFound = errors.New("Script not found")

// FileLoader resolves a script name the way the CLI does: the name
// itself, the name with the .scrape extension, then the same two under
// the scripts subdirectory.
type FileLoader struct {
	// Base is the directory relative candidates resolve against; empty
	// means the current directory.
	Base string
}

func (l FileLoader) Load(name string) (string, error) {
	candidates := []string{
		name,
		name + ".scrape",
		filepath.Join("scripts", name),
		filepath.Join("scripts", name+".scrape"),
	}
	for _, candidate := range candidates {
		path := candidate
		if l.Base != "" && !filepath.IsAbs(candidate) {
			path = filepath.Join(l.Base, candidate)
		}
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrScriptNotFound, name)
}

// DirLoader resolves a script name the way the daemon does: every
// configured directory is combined with every file name pattern, in
// order, with ${NAME} replaced by the requested script name and ${HOME}
// by the user's home directory. The first readable file wins.
type DirLoader struct {
	Dirs  []string
	Names []string
}

func (l DirLoader) Load(name string) (string, error) {
	home, _ := os.UserHomeDir()
	for _, dir := range l.Dirs {
		for _, pattern := range l.Names {
			path := expandPath(dir+"/"+pattern, name, home)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			logging.Debug().Str("script", name).Str("path", path).Msg("script resolved")
			return string(data), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrScriptNotFound, name)
}

func expandPath(path, name, home string) string {
	path = strings.ReplaceAll(path, "${NAME}", name)
	return strings.ReplaceAll(path, "${HOME}", home)
}

// Discover lists every .scrape file under dir, recursively, sorted by
// path relative to dir.
func Discover(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("discover scripts in %s: %w", dir, err)
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.scrape")
	if err != nil {
		return nil, fmt.Errorf("discover scripts in %s: %w", dir, err)
	}
	sort.Strings(matches)
	return matches, nil
}
