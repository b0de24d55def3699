package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/phishguard/internal/model"
)

func sampleResults() []*model.Result {
	phish := model.NewResult("http://evil-secure-login.xyz")
	phish.Verdict = *model.NewVerdict(model.LabelPhishing, 90, `high-risk keyword "secure-login"`)
	phish.Stage = model.StageKeyword
	phish.Features[model.FeatureLength] = 28

	sus := model.NewResult("http://bank.test/kit")
	sus.Verdict = *model.NewVerdict(model.LabelSuspicious, 50, "suspicious content")
	sus.Stage = model.StageContent
	sus.Content = &model.ContentRiskProfile{URL: sus.URL, Fetched: true, StatusCode: 200, RiskScore: 50, Iframes: 1}

	safe := model.NewResult("https://www.google.com/")
	safe.Verdict = *model.NewVerdict(model.LabelSafe, 99, "trusted domain")
	safe.Stage = model.StageAllowlist

	return []*model.Result{phish, sus, safe}
}

func sampleEvents() []model.Event {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	return []model.Event{
		{ID: "1", Type: model.EventAttempt, URL: "http://evil.test/", Label: model.LabelPhishing, Confidence: 90, Reason: "r", Timestamp: ts},
		{ID: "2", Type: model.EventStartup, Details: "listening on 127.0.0.1:8000", Timestamp: ts},
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(append(sampleResults(), nil))
	want := Summary{Total: 3, Safe: 1, Suspicious: 1, Phishing: 1}
	if s != want {
		t.Errorf("Summarize() = %+v, want %+v", s, want)
	}
	if s.Threats() != 2 {
		t.Errorf("Threats() = %d, want 2", s.Threats())
	}
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("plain output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewTextWriter(&buf, WithColor(false)).Write(sampleResults())
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		out := buf.String()
		if n != len(out) {
			t.Errorf("Write() = %d bytes, buffer has %d", n, len(out))
		}
		for _, want := range []string{
			"Phishing    90%  http://evil-secure-login.xyz",
			"Suspicious  50%  http://bank.test/kit",
			"Safe        99%  https://www.google.com/",
			"trusted domain (allowlist)",
			"3 URLs: Safe 1  Suspicious 1  Phishing 1",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "\x1b[") {
			t.Error("unexpected escape codes with color disabled")
		}
		if strings.Contains(out, "features:") {
			t.Error("features shown without verbose")
		}
	})

	t.Run("single result has no summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf, WithColor(false)).Write(sampleResults()[:1]); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if strings.Contains(buf.String(), "URLs:") {
			t.Errorf("unexpected summary:\n%s", buf.String())
		}
	})

	t.Run("verbose output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf, WithColor(false), WithVerbose(true)).Write(sampleResults()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"features: length=28", "content:  risk=50 status=200", "iframes=1"} {
			if !strings.Contains(out, want) {
				t.Errorf("verbose output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("colored output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf, WithColor(true)).Write(sampleResults()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "\x1b[") {
			t.Error("expected escape codes with color enabled")
		}
	})

	t.Run("buffers are not terminals", func(t *testing.T) {
		t.Parallel()

		if IsTerminal(&bytes.Buffer{}) {
			t.Error("bytes.Buffer reported as terminal")
		}
	})

	t.Run("history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf, WithColor(false))
		if _, err := w.WriteHistory(sampleEvents()); err != nil {
			t.Fatalf("WriteHistory() error = %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "http://evil.test/") || !strings.Contains(out, "listening on 127.0.0.1:8000") {
			t.Errorf("unexpected history output:\n%s", out)
		}

		buf.Reset()
		if _, err := w.WriteHistory(nil); err != nil {
			t.Fatalf("WriteHistory(nil) error = %v", err)
		}
		if !strings.Contains(buf.String(), "No events recorded.") {
			t.Errorf("unexpected empty history output: %q", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("results document", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint(), WithVersion("v1.2.3")).Write(append(sampleResults(), nil)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		var doc struct {
			Version string         `json:"version"`
			Summary Summary        `json:"summary"`
			Results []model.Result `json:"results"`
		}
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if doc.Version != "v1.2.3" || doc.Summary.Total != 3 || len(doc.Results) != 3 {
			t.Errorf("unexpected document: %+v", doc)
		}
		if doc.Results[0].Verdict.Label != model.LabelPhishing || doc.Results[0].Features[model.FeatureLength] != 28 {
			t.Errorf("unexpected first result: %+v", doc.Results[0])
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("compact empty history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteHistory(nil); err != nil {
			t.Fatalf("WriteHistory() error = %v", err)
		}
		if got := buf.String(); got != "{\"events\":[]}\n" {
			t.Errorf("WriteHistory(nil) = %q", got)
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("results", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(sampleResults()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"# PhishGuard Report",
			"## Summary",
			"## Results",
			"`http://evil-secure-login.xyz`",
			"🔴 Phishing",
			"mermaid",
			"[!CAUTION]",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("markdown missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("all safe", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(sampleResults()[2:]); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "[!TIP]") || strings.Contains(out, "mermaid") {
			t.Errorf("unexpected markdown for single safe result:\n%s", out)
		}
	})

	t.Run("history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteHistory(sampleEvents()); err != nil {
			t.Fatalf("WriteHistory() error = %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "# PhishGuard History") || !strings.Contains(out, "2026-03-04 05:06:07Z") {
			t.Errorf("unexpected history markdown:\n%s", out)
		}
	})
}

type failingWriter struct{}

func (failingWriter) Write([]*model.Result) (int, error)      { return 0, errors.New("boom") }
func (failingWriter) WriteHistory([]model.Event) (int, error) { return 0, errors.New("boom") }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewTextWriter(&a, WithColor(false)), NewJSONWriter(&b))
	n, err := mw.Write(sampleResults())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != a.Len()+b.Len() {
		t.Errorf("Write() = %d, want %d", n, a.Len()+b.Len())
	}

	if _, err := NewMultiWriter(failingWriter{}, NewJSONWriter(&b)).WriteHistory(nil); err == nil {
		t.Error("expected error from failing writer")
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	if got := truncateString("abcdefgh", 5); got != "ab..." {
		t.Errorf("truncateString() = %q", got)
	}
	if got := truncateString("abc", 5); got != "abc" {
		t.Errorf("truncateString() = %q", got)
	}
}
