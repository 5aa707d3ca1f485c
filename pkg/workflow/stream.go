package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go/packages/ssestream"
)

// doneSentinel terminates OpenAI-style event streams.
const doneSentinel = "[DONE]"

// EventStreamContentType is the media type of server-sent event bodies.
const EventStreamContentType = "text/event-stream"

// ParseResponse reads a server-sent event response body into an ordered
// fragment sequence. Each event's data is JSON-decoded; payloads that are
// not JSON become string fragments. Events without data are skipped, and an
// unterminated trailing event is discarded.
func ParseResponse(resp *http.Response) ([]any, error) {
	dec := ssestream.NewDecoder(resp)
	if dec == nil {
		return []any{}, nil
	}
	return readEvents(dec)
}

// ParseStream is ParseResponse for a raw event stream, such as a body saved
// to disk.
func ParseStream(r io.Reader) ([]any, error) {
	return ParseResponse(&http.Response{
		Header: http.Header{"Content-Type": []string{EventStreamContentType}},
		Body:   io.NopCloser(r),
	})
}

func readEvents(dec ssestream.Decoder) ([]any, error) {
	fragments := make([]any, 0)
	for dec.Next() {
		payload := bytes.TrimSuffix(dec.Event().Data, []byte("\n"))
		if len(bytes.TrimSpace(payload)) == 0 {
			continue
		}
		if string(bytes.TrimSpace(payload)) == doneSentinel {
			return fragments, nil
		}

		var v any
		if err := json.Unmarshal(payload, &v); err != nil {
			fragments = append(fragments, string(payload))
			continue
		}
		fragments = append(fragments, v)
	}
	if err := dec.Err(); err != nil {
		return fragments, fmt.Errorf("failed to read event stream: %w", err)
	}
	return fragments, nil
}
