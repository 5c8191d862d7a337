// Package book generates the documentation book's index pages and
// extracts the executable examples embedded in its chapters.
//
// Index generation is a pure listing transform: read one directory,
// filter filenames by the chapter naming convention, sort, and write
// markdown links. Example extraction walks a chapter's markdown AST and
// pairs `<!-- test {...} -->` markers with the scrape code block that
// follows each one; the package tests run every example through the
// interpreter.
package book

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// DefaultSourceDir is the book source directory the index generators
// read, relative to the working directory.
const DefaultSourceDir = "src"

// Chapter filename convention: a fixed prefix, the bare command or
// effect name, and a three character extension. Stripping is positional,
// tied to these literal lengths.
const (
	commandPrefix = "commands-"
	effectPrefix  = "effects-"
	extLen        = len(".md")
)

// WriteCommandIndex writes the command index page for the chapters in
// dir: a `# Commands` heading, a blank line, and one link per filename
// containing "commands-", sorted by full filename.
func WriteCommandIndex(w io.Writer, dir string) error {
	return writeIndex(w, dir, "# Commands", commandPrefix)
}

// WriteEffectIndex writes the effect index page for the chapters in
// dir, following the same contract as WriteCommandIndex with the
// "effects-" convention.
func WriteEffectIndex(w io.Writer, dir string) error {
	return writeIndex(w, dir, "# Effects", effectPrefix)
}

func writeIndex(w io.Writer, dir, heading, prefix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if _, err := fmt.Fprintf(w, "%s\n\n", heading); err != nil {
		return err
	}
	for _, name := range names {
		bare := bareName(name, len(prefix))
		if _, err := fmt.Fprintf(w, "- [`%s`](./%s%s.html)\n", bare, prefix, bare); err != nil {
			return err
		}
	}
	return nil
}

// bareName strips prefixLen leading and extLen trailing characters.
// Names too short to strip yield an empty bare name; names matching the
// filter substring somewhere other than the start keep whatever the
// positional cut leaves. Neither case is validated.
func bareName(name string, prefixLen int) string {
	if len(name) < prefixLen+extLen {
		return ""
	}
	return name[prefixLen : len(name)-extLen]
}
