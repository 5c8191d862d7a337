package book

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/scrapekit-ai/scrapekit/internal/effect"
)

// TestSpec is the JSON payload of a test marker. Output and Effects
// distinguish absent from empty: a nil slice means the marker makes no
// claim, an empty one claims emptiness.
type TestSpec struct {
	Input    string              `json:"input"`
	Preamble string              `json:"preamble"`
	Args     []string            `json:"args"`
	Kwargs   map[string]string   `json:"kwargs"`
	Output   []string            `json:"output"`
	Effects  []effect.Invocation `json:"effects"`
}

// Example is one executable chapter example: a test marker paired with
// the scrape code block that follows it. Script holds the runnable
// source with the preamble already resolved and prepended.
type Example struct {
	Chapter string
	Spec    TestSpec
	Script  string
}

// markerPattern matches a test marker and captures its JSON payload.
// The lazy body stops at the first `}` that closes the comment, so
// nested objects in the payload never end the match early.
var markerPattern = regexp.MustCompile(`(?s)<!-- test (\{.+?\}) -->`)

// preambleTemplates are the named preambles markers may reference with
// `"preamble": "template:<name>"`.
var preambleTemplates = map[string]string{
	"get":                      "get \"\"\n",
	"get-and-split-by-newline": "get \"\"\nextract \".+\"\n",
}

// ExamplesInDir extracts the examples of every markdown chapter in dir,
// in filename order.
func ExamplesInDir(dir string) ([]Example, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var examples []Example
	for _, name := range names {
		source, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		found, err := Extract(name, source)
		if err != nil {
			return nil, err
		}
		examples = append(examples, found...)
	}
	return examples, nil
}

// Extract returns the examples of one chapter. Markers pair with the
// next scrape-fenced code block in document order; a marker with no
// block after it, an unparsable payload, and an unknown preamble
// template are all errors.
func Extract(chapter string, source []byte) ([]Example, error) {
	type fragment struct {
		spec   *TestSpec
		script string
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var fragments []fragment
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.HTMLBlock:
			for _, m := range markerPattern.FindAllStringSubmatch(blockText(n, source), -1) {
				spec, err := parseMarker(chapter, m[1])
				if err != nil {
					return ast.WalkStop, err
				}
				fragments = append(fragments, fragment{spec: spec})
			}
		case *ast.FencedCodeBlock:
			if string(n.Language(source)) != "scrape" {
				return ast.WalkContinue, nil
			}
			fragments = append(fragments, fragment{script: linesText(n.Lines(), source)})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	var examples []Example
	for i, frag := range fragments {
		if frag.spec == nil {
			continue
		}
		script, found := "", false
		for _, later := range fragments[i+1:] {
			if later.spec == nil {
				script, found = later.script, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: test marker without a scrape block", chapter)
		}

		preamble, err := resolvePreamble(frag.spec.Preamble)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", chapter, err)
		}

		examples = append(examples, Example{
			Chapter: chapter,
			Spec:    *frag.spec,
			Script:  preamble + "\n" + script,
		})
	}
	return examples, nil
}

func parseMarker(chapter, payload string) (*TestSpec, error) {
	var spec TestSpec
	if err := json.Unmarshal([]byte(payload), &spec); err != nil {
		return nil, fmt.Errorf("%s: test marker: %w", chapter, err)
	}
	return &spec, nil
}

func resolvePreamble(preamble string) (string, error) {
	name, ok := strings.CutPrefix(preamble, "template:")
	if !ok {
		return preamble, nil
	}
	template, ok := preambleTemplates[strings.TrimSpace(name)]
	if !ok {
		return "", fmt.Errorf("unknown preamble template %q", strings.TrimSpace(name))
	}
	return template, nil
}

// blockText renders the raw source lines of an HTML block.
func blockText(n *ast.HTMLBlock, source []byte) string {
	var sb strings.Builder
	sb.WriteString(linesText(n.Lines(), source))
	if n.HasClosure() {
		sb.Write(n.ClosureLine.Value(source))
	}
	return sb.String()
}

func linesText(lines *text.Segments, source []byte) string {
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(source))
	}
	return sb.String()
}
