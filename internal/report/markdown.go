package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/phishguard/internal/model"
)

// MarkdownWriter outputs results as a Markdown document for sharing.
type MarkdownWriter struct {
	baseWriter
	title cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		title:      cases.Title(language.English),
	}
}

var labelIcons = map[model.Label]string{
	model.LabelSafe:       "🟢",
	model.LabelSuspicious: "🟡",
	model.LabelPhishing:   "🔴",
}

func (w *MarkdownWriter) labelText(l model.Label) string {
	text := w.title.String(string(l))
	if icon, ok := labelIcons[l]; ok {
		return icon + " " + text
	}
	return text
}

// Write implements Writer.
func (w *MarkdownWriter) Write(results []*model.Result) (int, error) {
	md := markdown.NewMarkdown(w.output)
	s := Summarize(results)

	md.H1("PhishGuard Report")
	md.PlainText("")

	w.writeSummary(md, s)
	w.writeResults(md, results)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s Summary) {
	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Verdict", "Count"},
		Rows: [][]string{
			{w.labelText(model.LabelPhishing), strconv.Itoa(s.Phishing)},
			{w.labelText(model.LabelSuspicious), strconv.Itoa(s.Suspicious)},
			{w.labelText(model.LabelSafe), strconv.Itoa(s.Safe)},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**"},
		},
	})
	md.PlainText("")

	if s.Total > 1 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Verdict Distribution"),
			piechart.WithShowData(true),
		)
		for _, c := range []struct {
			label string
			n     int
		}{
			{"Phishing", s.Phishing},
			{"Suspicious", s.Suspicious},
			{"Safe", s.Safe},
		} {
			if c.n > 0 {
				chart.LabelAndIntValue(c.label, uint64(c.n))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case s.Phishing > 0:
		md.Cautionf("%d URL(s) classified as phishing. Do not visit them.", s.Phishing)
	case s.Suspicious > 0:
		md.Warningf("%d URL(s) look suspicious. Verify them before visiting.", s.Suspicious)
	default:
		md.Tip("No phishing indicators found.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeResults(md *markdown.Markdown, results []*model.Result) {
	md.H2("Results")
	md.PlainText("")

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		rows = append(rows, []string{
			"`" + truncateString(r.URL, 80) + "`",
			w.labelText(r.Label()),
			strconv.Itoa(r.Confidence()) + "%",
			r.Stage,
			r.Reason(),
		})
	}
	if len(rows) == 0 {
		md.PlainText("No URLs classified.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Verdict", "Confidence", "Stage", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range results {
		if r == nil || r.Content == nil || !r.Content.Fetched {
			continue
		}
		c := r.Content
		md.Details(r.URL, "risk score "+strconv.Itoa(c.RiskScore)+
			", password fields "+strconv.Itoa(c.PasswordFields)+
			", external forms "+strconv.Itoa(c.ExternalForms)+
			", iframes "+strconv.Itoa(c.Iframes)+
			", urgency phrases "+strconv.Itoa(c.UrgencyHits))
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [PhishGuard](https://github.com/nao1215/phishguard)*")
}

// WriteHistory implements Writer.
func (w *MarkdownWriter) WriteHistory(events []model.Event) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("PhishGuard History")
	md.PlainText("")

	if len(events) == 0 {
		md.PlainText("No events recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(events))
	for i, e := range events {
		what := e.Details
		verdict := e.Type
		if e.Type == model.EventAttempt {
			what = "`" + truncateString(e.URL, 80) + "`"
			verdict = w.labelText(e.Label) + " " + strconv.Itoa(e.Confidence) + "%"
		}
		rows[i] = []string{e.Timestamp.UTC().Format("2006-01-02 15:04:05Z"), verdict, what}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Time", "Event", "Detail"},
		Rows:   rows,
	})
	return len(md.String()), md.Build()
}
