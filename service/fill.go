package service

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/FirstLeaseAgent/template-pdf/config"
	"github.com/FirstLeaseAgent/template-pdf/pkg/docx"
)

// Unmatched policies. Default is ignore: tokens without a value stay as
// literal text, values without a token are dropped, neither is an error.
const (
	UnmatchedIgnore = "ignore"
	UnmatchedWarn   = "warn"
	UnmatchedError  = "error"
)

// FillOptions control substitution behavior.
type FillOptions struct {
	// SpanRuns lets a token match across adjacent formatting runs within a
	// paragraph or cell, the same way extraction sees the text. When false,
	// substitution is strictly run-local and split tokens are left alone.
	SpanRuns bool
	// OnUnmatched is one of ignore, warn, error.
	OnUnmatched string
}

// FillOptionsFrom maps the fill config section onto options.
func FillOptionsFrom(cfg *config.FillConfig) FillOptions {
	return FillOptions{
		SpanRuns:    cfg.Mode != "run",
		OnUnmatched: cfg.OnUnmatched,
	}
}

// Fill replaces every {{key}} occurrence in doc with its value. Matching is
// case-sensitive; keys arrive already in their canonical casing. Only run
// text is mutated, so fonts and styles survive.
func Fill(doc *docx.Document, values map[string]string, opts FillOptions) error {
	replaced := make(map[string]int, len(values))
	for _, p := range doc.Paragraphs() {
		for key, value := range values {
			token := "{{" + key + "}}"
			if opts.SpanRuns {
				replaced[key] += p.Replace(token, value)
				continue
			}
			for _, r := range p.Runs() {
				if n := strings.Count(r.Text(), token); n > 0 {
					r.SetText(strings.ReplaceAll(r.Text(), token, value))
					replaced[key] += n
				}
			}
		}
	}

	if opts.OnUnmatched == UnmatchedIgnore || opts.OnUnmatched == "" {
		return nil
	}

	var unusedKeys []string
	for key := range values {
		if replaced[key] == 0 {
			unusedKeys = append(unusedKeys, key)
		}
	}
	sort.Strings(unusedKeys)
	leftoverTokens := ExtractFromDocument(doc)

	if len(unusedKeys) == 0 && len(leftoverTokens) == 0 {
		return nil
	}
	if opts.OnUnmatched == UnmatchedError {
		return fmt.Errorf("unmatched substitution: %d keys without token, %d tokens without value", len(unusedKeys), len(leftoverTokens))
	}
	slog.Warn("best-effort substitution left unmatched entries",
		"keys_without_token", unusedKeys,
		"tokens_without_value", leftoverTokens,
	)
	return nil
}
