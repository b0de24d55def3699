package report

import (
	"io"

	"github.com/nao1215/phishguard/internal/model"
)

// Writer renders classification results and stored events.
type Writer interface {
	// Write outputs results in input order.
	Write(results []*model.Result) (int, error)

	// WriteHistory outputs stored events, newest first.
	WriteHistory(events []model.Event) (int, error)
}

// MultiWriter writes to several Writers, stopping at the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write implements Writer.
func (m *MultiWriter) Write(results []*model.Result) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(results)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory implements Writer.
func (m *MultiWriter) WriteHistory(events []model.Event) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(events)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Summary counts results per label.
type Summary struct {
	Total      int `json:"total"`
	Safe       int `json:"safe"`
	Suspicious int `json:"suspicious"`
	Phishing   int `json:"phishing"`
}

// Summarize counts results per label. Nil results are skipped.
func Summarize(results []*model.Result) Summary {
	var s Summary
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Total++
		switch r.Label() {
		case model.LabelSafe:
			s.Safe++
		case model.LabelSuspicious:
			s.Suspicious++
		case model.LabelPhishing:
			s.Phishing++
		}
	}
	return s
}

// Threats returns the number of non-safe results.
func (s Summary) Threats() int {
	return s.Suspicious + s.Phishing
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
