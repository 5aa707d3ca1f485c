// Package workflow defines the raw response value handed over by a workflow
// endpoint and the helpers that decode it from the wire.
//
// A Response is whatever the endpoint produced after JSON decoding: a mapping
// (blocking mode), a sequence of event fragments (streaming mode), a plain
// string, or anything else. Consumers must treat it as read-only.
package workflow

import (
	"bytes"
	"encoding/json"
)

// Response is a decoded workflow answer.
type Response = any

// RawTextKey wraps response bodies that are not valid JSON.
const RawTextKey = "raw_text"

// Decode parses a response body. Bodies that are not valid JSON are returned
// as a mapping holding the text under RawTextKey so they still reach the
// normalizer.
func Decode(body []byte) Response {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return map[string]any{}
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return map[string]any{RawTextKey: string(body)}
	}
	return v
}

// Fragment builds a streamed fragment with the given discriminator and text.
func Fragment(kind, text string) map[string]any {
	f := map[string]any{"type": kind}
	if text != "" {
		f["text"] = text
	}
	return f
}
