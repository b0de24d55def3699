package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/phishguard/internal/model"
)

// TextWriter outputs human-readable verdicts for the terminal.
type TextWriter struct {
	baseWriter

	verbose bool
	labels  map[model.Label]*color.Color
	dim     *color.Color
	title   cases.Caser
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose adds the feature vector, content profile and evaluated stages.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// WithColor forces colored output on or off.
func WithColor(enabled bool) TextWriterOption {
	return func(w *TextWriter) {
		for _, c := range w.labels {
			setColor(c, enabled)
		}
		setColor(w.dim, enabled)
	}
}

func setColor(c *color.Color, enabled bool) {
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
}

// NewTextWriter creates a TextWriter. Color defaults to whether output is
// a terminal and NO_COLOR is unset.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		labels: map[model.Label]*color.Color{
			model.LabelSafe:       color.New(color.FgGreen, color.Bold),
			model.LabelSuspicious: color.New(color.FgYellow, color.Bold),
			model.LabelPhishing:   color.New(color.FgRed, color.Bold),
		},
		dim:   color.New(color.FgHiBlack),
		title: cases.Title(language.English),
	}
	WithColor(IsTerminal(output))(w)
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// IsTerminal reports whether w is a terminal that accepts color.
func IsTerminal(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Write implements Writer.
func (w *TextWriter) Write(results []*model.Result) (int, error) {
	var sb strings.Builder

	for _, r := range results {
		if r == nil {
			continue
		}
		w.writeResult(&sb, r)
	}
	if len(results) > 1 {
		w.writeSummary(&sb, Summarize(results))
	}
	return io.WriteString(w.output, sb.String())
}

// labelText pads before coloring so escape codes do not break alignment.
func (w *TextWriter) labelText(l model.Label, width int) string {
	text := fmt.Sprintf("%-*s", width, w.title.String(string(l)))
	if c, ok := w.labels[l]; ok {
		return c.Sprint(text)
	}
	return text
}

func (w *TextWriter) writeResult(sb *strings.Builder, r *model.Result) {
	fmt.Fprintf(sb, "%s %3d%%  %s\n", w.labelText(r.Label(), 10), r.Confidence(), r.URL)
	fmt.Fprintf(sb, "           %s\n", w.dim.Sprintf("%s (%s)", r.Reason(), r.Stage))

	if !w.verbose {
		return
	}

	if r.Site != "" {
		fmt.Fprintf(sb, "           site:     %s\n", r.Site)
	}
	fmt.Fprintf(sb, "           stages:   %s\n", strings.Join(r.Evaluated, " -> "))
	fmt.Fprintf(sb, "           elapsed:  %s\n", r.Elapsed.Round(time.Microsecond))

	feats := make([]string, 0, model.FeatureCount)
	for i, name := range model.FeatureNames {
		feats = append(feats, fmt.Sprintf("%s=%g", name, r.Features[i]))
	}
	fmt.Fprintf(sb, "           features: %s\n", strings.Join(feats, " "))

	if c := r.Content; c != nil {
		if c.Fetched {
			fmt.Fprintf(sb, "           content:  risk=%d status=%d pw=%d hidden=%d ext_forms=%d iframes=%d ext_scripts=%d urgency=%d\n",
				c.RiskScore, c.StatusCode, c.PasswordFields, c.HiddenInputs, c.ExternalForms,
				c.Iframes, c.ExternalScripts, c.UrgencyHits)
		} else {
			fmt.Fprintf(sb, "           content:  not fetched\n")
		}
	}
}

func (w *TextWriter) writeSummary(sb *strings.Builder, s Summary) {
	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%d URLs: %s %d  %s %d  %s %d\n",
		s.Total,
		w.labelText(model.LabelSafe, 0), s.Safe,
		w.labelText(model.LabelSuspicious, 0), s.Suspicious,
		w.labelText(model.LabelPhishing, 0), s.Phishing,
	)
}

// WriteHistory implements Writer.
func (w *TextWriter) WriteHistory(events []model.Event) (int, error) {
	var sb strings.Builder

	if len(events) == 0 {
		sb.WriteString("No events recorded.\n")
		return io.WriteString(w.output, sb.String())
	}

	for _, e := range events {
		ts := w.dim.Sprint(e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		if e.Type == model.EventAttempt {
			fmt.Fprintf(&sb, "%s  %s %3d%%  %s  %s\n", ts, w.labelText(e.Label, 10), e.Confidence, e.URL, w.dim.Sprint(e.Reason))
			continue
		}
		fmt.Fprintf(&sb, "%s  %-10s %s\n", ts, e.Type, e.Details)
	}
	return io.WriteString(w.output, sb.String())
}
