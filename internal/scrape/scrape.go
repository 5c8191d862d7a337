// Package scrape implements the immutable scraper value the script
// language drives. Every operation returns a new Scraper; a value is
// never mutated after construction, so intermediate pipeline states can
// be held and reused freely.
package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Scraper carries an ordered list of results and the header set used for
// fetches. The zero value is usable but cannot fetch; use New to attach
// a Driver.
type Scraper struct {
	driver  Driver
	results []string
	headers map[string]string
}

// New returns an empty scraper fetching through driver.
func New(driver Driver) Scraper {
	return Scraper{driver: driver}
}

// Results returns a copy of the current results.
func (s Scraper) Results() []string {
	out := make([]string, len(s.results))
	copy(out, s.results)
	return out
}

// Len returns the number of results.
func (s Scraper) Len() int {
	return len(s.results)
}

// Headers returns a copy of the current header set.
func (s Scraper) Headers() map[string]string {
	out := make(map[string]string, len(s.headers))
	for k, v := range s.headers {
		out[k] = v
	}
	return out
}

// WithResults returns a scraper holding exactly the given results. The
// driver and headers carry over; the input slice is copied.
func (s Scraper) WithResults(results []string) Scraper {
	out := make([]string, len(results))
	copy(out, results)
	return s.withResults(out)
}

// withResults rebinds the result list, sharing the driver and headers.
// Callers must pass a fresh slice.
func (s Scraper) withResults(results []string) Scraper {
	return Scraper{driver: s.driver, results: results, headers: s.headers}
}

// Get fetches url with the current headers and appends the body as one
// new result.
func (s Scraper) Get(ctx context.Context, url string) (Scraper, error) {
	if s.driver == nil {
		return s, fmt.Errorf("scraper has no driver")
	}
	body, err := s.driver.Get(ctx, url, s.headers)
	if err != nil {
		return s, fmt.Errorf("get %q: %w", url, err)
	}

	results := make([]string, len(s.results)+1)
	copy(results, s.results)
	results[len(results)-1] = body
	return s.withResults(results), nil
}

// Extract replaces the results with every match of pattern across them,
// in order. When the pattern declares capture groups the first group is
// taken, otherwise the whole match.
func (s Scraper) Extract(pattern string) (Scraper, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return s, fmt.Errorf("extract %q: %w", pattern, err)
	}

	var matches []string
	for _, r := range s.results {
		for _, m := range re.FindAllStringSubmatch(r, -1) {
			if len(m) > 1 {
				matches = append(matches, m[1])
			} else {
				matches = append(matches, m[0])
			}
		}
	}
	return s.withResults(matches), nil
}

// Delete removes every match of pattern from each result.
func (s Scraper) Delete(pattern string) (Scraper, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return s, fmt.Errorf("delete %q: %w", pattern, err)
	}

	results := make([]string, len(s.results))
	for i, r := range s.results {
		results[i] = re.ReplaceAllString(r, "")
	}
	return s.withResults(results), nil
}

// Retain keeps only the results matching pattern.
func (s Scraper) Retain(pattern string) (Scraper, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return s, fmt.Errorf("retain %q: %w", pattern, err)
	}

	var results []string
	for _, r := range s.results {
		if re.MatchString(r) {
			results = append(results, r)
		}
	}
	return s.withResults(results), nil
}

// Discard drops the results matching pattern.
func (s Scraper) Discard(pattern string) (Scraper, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return s, fmt.Errorf("discard %q: %w", pattern, err)
	}

	var results []string
	for _, r := range s.results {
		if !re.MatchString(r) {
			results = append(results, r)
		}
	}
	return s.withResults(results), nil
}

// First keeps only the first result. An empty scraper stays empty.
func (s Scraper) First() Scraper {
	return s.Take(1)
}

// Last keeps only the last result. An empty scraper stays empty.
func (s Scraper) Last() Scraper {
	if len(s.results) <= 1 {
		return s
	}
	return s.withResults([]string{s.results[len(s.results)-1]})
}

// Take keeps the first n results, clamped to the available count.
func (s Scraper) Take(n int) Scraper {
	if n < 0 {
		n = 0
	}
	if n > len(s.results) {
		n = len(s.results)
	}
	return s.withResults(append([]string(nil), s.results[:n]...))
}

// Drop skips the first n results, clamped to the available count.
func (s Scraper) Drop(n int) Scraper {
	if n < 0 {
		n = 0
	}
	if n > len(s.results) {
		n = len(s.results)
	}
	return s.withResults(append([]string(nil), s.results[n:]...))
}

// Prepend puts prefix in front of every result.
func (s Scraper) Prepend(prefix string) Scraper {
	results := make([]string, len(s.results))
	for i, r := range s.results {
		results[i] = prefix + r
	}
	return s.withResults(results)
}

// Append puts suffix behind every result.
func (s Scraper) Append(suffix string) Scraper {
	results := make([]string, len(s.results))
	for i, r := range s.results {
		results[i] = r + suffix
	}
	return s.withResults(results)
}

// Join collapses the results into a single result joined by sep. An
// empty scraper stays empty.
func (s Scraper) Join(sep string) Scraper {
	if len(s.results) == 0 {
		return s
	}
	return s.withResults([]string{strings.Join(s.results, sep)})
}

// Clear empties the results, keeping headers and driver.
func (s Scraper) Clear() Scraper {
	return s.withResults(nil)
}

// Header sets a header used by subsequent Get calls.
func (s Scraper) Header(key, value string) Scraper {
	headers := make(map[string]string, len(s.headers)+1)
	for k, v := range s.headers {
		headers[k] = v
	}
	headers[key] = value
	return Scraper{driver: s.driver, results: s.results, headers: headers}
}

// ClearHeaders drops all headers.
func (s Scraper) ClearHeaders() Scraper {
	return Scraper{driver: s.driver, results: s.results}
}
