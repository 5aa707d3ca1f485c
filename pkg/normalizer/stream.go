package normalizer

import "strings"

// terminalEvents end concatenation of a streamed response.
var terminalEvents = map[string]bool{
	"message_end":       true,
	"workflow_finished": true,
	"done":              true,
	"error":             true,
}

// payloadAccessors locate the text of a single fragment, first hit wins.
var payloadAccessors = []Accessor{
	newAccessor("text"),
	newAccessor("answer"),
	newAccessor("delta"),
	newAccessor("delta.content"),
	newAccessor("delta.text"),
	newAccessor("data.text"),
}

// terminalAccessors locate workflow outputs on a terminal fragment. Payload
// keys such as text or answer are left out: a terminal fragment contributes
// no text of its own.
var terminalAccessors = []Accessor{
	newAccessor("data.outputs.output"),
	newAccessor("data.outputs.html"),
	newAccessor("data.outputs.text"),
	newAccessor("data.output"),
	newAccessor("outputs.output"),
	newAccessor("outputs.html"),
}

func fromStream(fragments []any, source string) []Candidate {
	var sb strings.Builder
	var terminal map[string]any

scan:
	for _, f := range fragments {
		switch v := f.(type) {
		case string:
			sb.WriteString(v)
		case map[string]any:
			if isTerminal(v) {
				terminal = v
				break scan
			}
			if text, ok := fragmentText(v); ok {
				sb.WriteString(text)
			}
		}
	}

	out := make([]Candidate, 0, 1)
	if text := sb.String(); !isBlank(text) {
		out = append(out, Candidate{Source: source, Text: text})
	}
	if terminal != nil {
		out = append(out, lookupAll(terminalAccessors, terminal, source+".end:")...)
	}
	return out
}

func isTerminal(fragment map[string]any) bool {
	for _, key := range []string{"type", "event"} {
		if kind, ok := fragment[key].(string); ok && terminalEvents[strings.ToLower(kind)] {
			return true
		}
	}
	return false
}

// fragmentText returns the first string payload. Whitespace-only payloads
// are kept since they separate words in the concatenation.
func fragmentText(fragment map[string]any) (string, bool) {
	for _, acc := range payloadAccessors {
		if s, ok := acc.str(fragment); ok {
			return s, true
		}
	}
	return "", false
}
