// Package cron parses five-field, minute-resolution cron expressions.
package cron

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Spec is a compiled cron expression. A Spec matches a time when every
// field's alternation accepts the corresponding component of the probe
// string produced by FormatTime.
type Spec struct {
	expr    string
	pattern string
	matcher *regexp.Regexp
}

// fieldDef describes one of the five cron fields and its value bounds.
type fieldDef struct {
	name string
	min  int
	max  int
}

// Day of week is ISO style: Monday=1 through Sunday=7.
var fieldDefs = []fieldDef{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day of month", 1, 31},
	{"month", 1, 12},
	{"day of week", 1, 7},
}

// Parse compiles a cron expression. Each of the five whitespace-separated
// fields is a comma-separated list of items: `*`, `*/step`, `value`,
// `value/step` (stepping up to the field's maximum), `lo-hi`, or
// `lo-hi/step`. Steps must lie between 1 and the field's maximum.
func Parse(expr string) (*Spec, error) {
	parts := strings.Fields(expr)
	if len(parts) != len(fieldDefs) {
		return nil, fmt.Errorf("cron expression %q: expected %d fields, got %d", expr, len(fieldDefs), len(parts))
	}

	var sb strings.Builder
	for i, part := range parts {
		piece, err := compileField(fieldDefs[i], part)
		if err != nil {
			return nil, fmt.Errorf("cron expression %q: %w", expr, err)
		}
		sb.WriteString(piece)
	}

	pattern := sb.String()
	matcher, err := regexp.Compile("^" + pattern + "$")
	if err != nil {
		return nil, fmt.Errorf("cron expression %q: %w", expr, err)
	}

	return &Spec{expr: expr, pattern: pattern, matcher: matcher}, nil
}

// MustParse is like Parse but panics on error. For fixed expressions in
// tests and examples.
func MustParse(expr string) *Spec {
	s, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return s
}

// compileField turns one field into a parenthesized alternation of
// two-digit values, with `..` standing in for a bare `*`.
func compileField(def fieldDef, field string) (string, error) {
	items := strings.Split(field, ",")
	pieces := make([]string, 0, len(items))
	for _, item := range items {
		piece, err := compileItem(def, item)
		if err != nil {
			return "", err
		}
		pieces = append(pieces, piece)
	}
	return "(" + strings.Join(pieces, "|") + ")", nil
}

func compileItem(def fieldDef, item string) (string, error) {
	base, stepPart, hasStep := strings.Cut(item, "/")

	step := 1
	if hasStep {
		s, err := parseNumber(stepPart)
		if err != nil {
			return "", fmt.Errorf("%s field: invalid step %q", def.name, stepPart)
		}
		if s < 1 || s > def.max {
			return "", fmt.Errorf("%s field: step %d out of range 1-%d", def.name, s, def.max)
		}
		step = s
	}

	switch {
	case base == "*":
		if !hasStep {
			return "..", nil
		}
		return alternation(def.min, def.max, step), nil

	case strings.Contains(base, "-"):
		loPart, hiPart, _ := strings.Cut(base, "-")
		lo, err := parseValue(def, loPart)
		if err != nil {
			return "", err
		}
		hi, err := parseValue(def, hiPart)
		if err != nil {
			return "", err
		}
		if lo > hi {
			return "", fmt.Errorf("%s field: reversed range %q", def.name, base)
		}
		return alternation(lo, hi, step), nil

	default:
		v, err := parseValue(def, base)
		if err != nil {
			return "", err
		}
		if hasStep {
			return alternation(v, def.max, step), nil
		}
		return fmt.Sprintf("%02d", v), nil
	}
}

func parseValue(def fieldDef, s string) (int, error) {
	v, err := parseNumber(s)
	if err != nil {
		return 0, fmt.Errorf("%s field: invalid value %q", def.name, s)
	}
	if v < def.min || v > def.max {
		return 0, fmt.Errorf("%s field: value %d out of range %d-%d", def.name, v, def.min, def.max)
	}
	return v, nil
}

// parseNumber accepts plain decimal digits only, rejecting signs and
// other Atoi leniencies.
func parseNumber(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
	}
	return strconv.Atoi(s)
}

func alternation(from, to, step int) string {
	var sb strings.Builder
	for v := from; v <= to; v += step {
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		fmt.Fprintf(&sb, "%02d", v)
	}
	return sb.String()
}

// Matches reports whether the spec fires at t, at minute resolution.
func (s *Spec) Matches(t time.Time) bool {
	return s.matcher.MatchString(FormatTime(t))
}

// Pattern returns the compiled alternation pattern, without anchors.
func (s *Spec) Pattern() string {
	return s.pattern
}

// String returns the original expression.
func (s *Spec) String() string {
	return s.expr
}

// FormatTime renders t as the probe string compiled specs match against:
// minute, hour, day and month zero-padded to two digits, then a zero and
// the ISO weekday (Monday=1, Sunday=7). Two times format equally exactly
// when they fall in the same scheduling minute.
func FormatTime(t time.Time) string {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return fmt.Sprintf("%02d%02d%02d%02d0%d", t.Minute(), t.Hour(), t.Day(), int(t.Month()), wd)
}
