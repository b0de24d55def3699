package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/phishguard/internal/model"
)

// JSONWriter outputs results for programmatic consumers.
type JSONWriter struct {
	baseWriter

	version      string
	indentPrefix string
	indentString string
	indent       bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in the output document.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document written by JSONWriter.Write.
type JSONReport struct {
	Version string          `json:"version,omitempty"`
	Summary Summary         `json:"summary"`
	Results []*model.Result `json:"results"`
}

// JSONHistory is the document written by JSONWriter.WriteHistory.
type JSONHistory struct {
	Version string        `json:"version,omitempty"`
	Events  []model.Event `json:"events"`
}

// Write implements Writer.
func (w *JSONWriter) Write(results []*model.Result) (int, error) {
	kept := make([]*model.Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return w.writeJSON(JSONReport{
		Version: w.version,
		Summary: Summarize(kept),
		Results: kept,
	})
}

// WriteHistory implements Writer.
func (w *JSONWriter) WriteHistory(events []model.Event) (int, error) {
	if events == nil {
		events = []model.Event{}
	}
	return w.writeJSON(JSONHistory{Version: w.version, Events: events})
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
