// Package extractor recovers an HTML document from candidate strings
// produced by the normalizer.
//
// Each candidate is tried in order. A fenced Markdown code block tagged html
// (or containing an HTML document) wins over raw markup in the same
// candidate; raw markup is taken from the first <!doctype html or <html to
// the end of the candidate. Extraction is a pure function of its input.
package extractor

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoHTML is reported when no candidate contains an HTML document.
var ErrNoHTML = errors.New("no HTML document found")

// htmlMarker matches the start of an HTML document.
var htmlMarker = regexp.MustCompile(`(?i)<!doctype html|<html`)

// Rule identifies which extraction rule produced a result.
type Rule int

const (
	RuleNone Rule = iota
	RuleFenced
	RuleRawTag
)

// String returns the rule name used in logs and reports.
func (r Rule) String() string {
	switch r {
	case RuleFenced:
		return "fenced"
	case RuleRawTag:
		return "raw_tag"
	default:
		return "none"
	}
}

// Result is the outcome of an extraction. The zero value is not found.
type Result struct {
	// Found reports whether HTML was located.
	Found bool

	// HTML is the extracted document, trimmed of surrounding whitespace.
	HTML string

	// Rule is the rule that matched.
	Rule Rule

	// Candidate is the index of the matching candidate, -1 when not found.
	Candidate int
}

// NotFound returns the result for a response without HTML.
func NotFound() Result {
	return Result{Candidate: -1}
}

// Err returns ErrNoHTML for a not-found result and nil otherwise.
func (r Result) Err() error {
	if !r.Found {
		return ErrNoHTML
	}
	return nil
}

// Extract returns the first HTML document found in candidates.
func Extract(candidates []string) Result {
	for i, c := range candidates {
		if r := ExtractString(c); r.Found {
			r.Candidate = i
			return r
		}
	}
	return NotFound()
}

// ExtractString applies the extraction rules to a single candidate.
// The returned Candidate index is always 0 when found.
func ExtractString(candidate string) Result {
	if html, ok := fencedHTML(candidate); ok {
		return Result{Found: true, HTML: html, Rule: RuleFenced}
	}

	if loc := htmlMarker.FindStringIndex(candidate); loc != nil {
		return Result{Found: true, HTML: strings.TrimSpace(candidate[loc[0]:]), Rule: RuleRawTag}
	}

	return NotFound()
}
