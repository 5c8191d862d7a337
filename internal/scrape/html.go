package scrape

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Select parses each result as HTML and replaces the results with the
// text of every node matching the CSS selector, in document order.
func (s Scraper) Select(selector string) (Scraper, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return s, fmt.Errorf("select %q: %w", selector, err)
	}

	var texts []string
	for _, r := range s.results {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(r))
		if err != nil {
			return s, fmt.Errorf("select %q: %w", selector, err)
		}
		doc.FindMatcher(matcher).Each(func(_ int, sel *goquery.Selection) {
			texts = append(texts, sel.Text())
		})
	}
	return s.withResults(texts), nil
}

// Markdown converts each HTML result to markdown.
func (s Scraper) Markdown() (Scraper, error) {
	converter := newMarkdownConverter()

	results := make([]string, len(s.results))
	for i, r := range s.results {
		text, err := converter.ConvertString(r)
		if err != nil {
			return s, fmt.Errorf("markdown: %w", err)
		}
		results[i] = text
	}
	return s.withResults(results), nil
}

func newMarkdownConverter() *md.Converter {
	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		HorizontalRule:   "---",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		EmDelimiter:      "*",
	})

	// Non-content elements carry no text worth keeping
	converter.Remove("script", "style", "meta", "link")

	return converter
}
