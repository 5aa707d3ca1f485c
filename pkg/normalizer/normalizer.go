// Package normalizer flattens workflow responses into an ordered list of
// candidate strings that may contain the generated HTML document.
//
// Blocking responses are read through a fixed table of field paths.
// Streamed responses are concatenated in arrival order up to the first
// terminal event. Shapes that match neither produce no candidates.
package normalizer

import (
	"strings"

	"github.com/jmylchreest/folio/pkg/workflow"
)

// Candidates is an ordered list of strings, highest priority first.
type Candidates []string

// Candidate is a candidate string together with where it was found.
type Candidate struct {
	// Source names the accessor or stream that produced the text,
	// e.g. "data.outputs.output" or "stream".
	Source string
	Text   string
}

// Source labels for non-path candidates.
const (
	SourceString = "string"
	SourceStream = "stream"
	SourceEvents = "events"
)

// Normalize returns the candidate strings of a response in priority order.
func Normalize(response workflow.Response) Candidates {
	collected := Collect(response)
	out := make(Candidates, 0, len(collected))
	for _, c := range collected {
		out = append(out, c.Text)
	}
	return out
}

// Collect is Normalize with provenance for each candidate.
func Collect(response workflow.Response) []Candidate {
	switch v := response.(type) {
	case string:
		if isBlank(v) {
			return []Candidate{}
		}
		return []Candidate{{Source: SourceString, Text: v}}
	case map[string]any:
		return fromMapping(v)
	case []any:
		return fromStream(v, SourceStream)
	case []map[string]any:
		fragments := make([]any, len(v))
		for i, f := range v {
			fragments[i] = f
		}
		return fromStream(fragments, SourceStream)
	default:
		return []Candidate{}
	}
}

func fromMapping(m map[string]any) []Candidate {
	out := lookupAll(accessors, m, "")

	// Collected streams are sometimes stored under "events".
	if events, ok := m["events"].([]any); ok {
		out = append(out, fromStream(events, SourceEvents)...)
	}
	return out
}

func lookupAll(table []Accessor, m map[string]any, prefix string) []Candidate {
	out := make([]Candidate, 0, 2)
	for _, acc := range table {
		if s, ok := acc.Lookup(m); ok {
			out = append(out, Candidate{Source: prefix + acc.Name, Text: s})
		}
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
