package output

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type encodeFunc func(w io.Writer, v any) error

func jsonEncoder(cfg *writerConfig) encodeFunc {
	return func(w io.Writer, v any) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if cfg.pretty {
			enc.SetIndent("", strings.Repeat(" ", cfg.indent))
		}
		return enc.Encode(v)
	}
}

func yamlEncoder(cfg *writerConfig) encodeFunc {
	return func(w io.Writer, v any) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(cfg.indent)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

// listWriter buffers reports and writes them on Flush: a single report is
// written as-is, several as a list.
type listWriter struct {
	w      *bufio.Writer
	encode encodeFunc
	items  []any
}

func newListWriter(w io.Writer, encode encodeFunc) *listWriter {
	return &listWriter{w: bufio.NewWriter(w), encode: encode}
}

func (l *listWriter) Write(data any) error {
	l.items = append(l.items, data)
	return nil
}

func (l *listWriter) Flush() error {
	if len(l.items) == 0 {
		return l.w.Flush()
	}

	var err error
	if len(l.items) == 1 {
		err = l.encode(l.w, l.items[0])
	} else {
		err = l.encode(l.w, l.items)
	}
	if err != nil {
		return err
	}

	l.items = l.items[:0]
	return l.w.Flush()
}

func (l *listWriter) Close() error {
	return l.Flush()
}

// JSONLWriter writes newline-delimited JSON, one report per line, as
// reports arrive.
type JSONLWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{w: bw, enc: enc}
}

// Write writes a single report as a JSON line.
func (w *JSONLWriter) Write(data any) error {
	if err := w.enc.Encode(data); err != nil {
		return err
	}
	return w.w.Flush()
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.Flush()
}
