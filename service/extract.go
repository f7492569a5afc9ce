package service

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/FirstLeaseAgent/template-pdf/pkg/docx"
)

// placeholderPattern matches {{name}} markers, non-greedy, so adjacent tokens
// never merge.
var placeholderPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// ExtractPlaceholders opens the template at path and returns its distinct
// placeholder names. An unreadable document degrades to an empty result with
// a logged warning so registration never blocks on extraction.
func ExtractPlaceholders(path string) []string {
	doc, err := docx.Open(path)
	if err != nil {
		slog.Warn("template not readable, skipping placeholder extraction",
			"path", path,
			"error", err,
		)
		return nil
	}
	return ExtractFromDocument(doc)
}

// ExtractFromDocument scans every paragraph and table cell. Matching runs on
// each paragraph's logical text, so tokens that an editor split across
// formatting runs are still found. Names are whitespace-trimmed, duplicates
// collapse, order is not significant (sorted for stable registry files).
func ExtractFromDocument(doc *docx.Document) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, p := range doc.Paragraphs() {
		for _, m := range placeholderPattern.FindAllStringSubmatch(p.Text(), -1) {
			name := strings.TrimSpace(m[1])
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
