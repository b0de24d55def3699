package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/phishguard/internal/allowlist"
	"github.com/nao1215/phishguard/internal/classifier"
	"github.com/nao1215/phishguard/internal/content"
	"github.com/nao1215/phishguard/internal/heuristic"
	"github.com/nao1215/phishguard/internal/lexical"
	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/reputation"
)

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	name string
	fn   func(ctx context.Context, res *model.Result) *model.Verdict
}

// NewStageFunc creates a named stage from fn.
func NewStageFunc(name string, fn func(ctx context.Context, res *model.Result) *model.Verdict) *StageFunc {
	return &StageFunc{name: name, fn: fn}
}

// Evaluate implements Stage.
func (s *StageFunc) Evaluate(ctx context.Context, res *model.Result) *model.Verdict {
	return s.fn(ctx, res)
}

// Name implements Stage.
func (s *StageFunc) Name() string {
	return s.name
}

// AllowlistStage short-circuits trusted domains.
func AllowlistStage(set *allowlist.Set) Stage {
	return NewStageFunc(model.StageAllowlist, func(_ context.Context, res *model.Result) *model.Verdict {
		return set.Check(res.URL)
	})
}

// ReputationStage consults the external reputation service.
func ReputationStage(c *reputation.Client) Stage {
	return NewStageFunc(model.StageReputation, func(ctx context.Context, res *model.Result) *model.Verdict {
		return c.Check(ctx, res.URL)
	})
}

// KeywordStage matches high-risk phrases.
func KeywordStage(m *heuristic.Matcher) Stage {
	return NewStageFunc(model.StageKeyword, func(_ context.Context, res *model.Result) *model.Verdict {
		return m.HighRisk(res.URL)
	})
}

// LocalStage flags demo keywords on loopback targets.
func LocalStage(m *heuristic.Matcher) Stage {
	return NewStageFunc(model.StageLocal, func(_ context.Context, res *model.Result) *model.Verdict {
		return m.Local(res.URL)
	})
}

// ContentStage fetches and scores the page. Loopback targets are never fetched.
func ContentStage(a *content.Analyzer, logger *slog.Logger) Stage {
	return NewStageFunc(model.StageContent, func(ctx context.Context, res *model.Result) *model.Verdict {
		if lexical.IsLoopback(res.URL) {
			logger.Debug("skipping content analysis for loopback target", "url", res.URL)
			return nil
		}
		v, profile := a.Check(ctx, res.URL)
		res.Content = profile
		return v
	})
}

// ClassifierStage scores the lexical features with the statistical model.
func ClassifierStage(s *classifier.Stage) Stage {
	return NewStageFunc(model.StageClassifier, func(_ context.Context, res *model.Result) *model.Verdict {
		return s.Check(res.Features)
	})
}

// FallbackStage matches soft keywords after everything else abstained.
func FallbackStage(m *heuristic.Matcher) Stage {
	return NewStageFunc(model.StageFallback, func(_ context.Context, res *model.Result) *model.Verdict {
		return m.Soft(res.URL)
	})
}

// Components are the collaborators of the standard pipeline.
// A nil component leaves its stage out.
type Components struct {
	Allowlist  *allowlist.Set
	Reputation *reputation.Client
	Heuristics *heuristic.Matcher
	Content    *content.Analyzer
	Classifier *classifier.Stage
}

// NewStandard builds the pipeline in the standard precedence order.
func NewStandard(c Components, opts ...Option) *Pipeline {
	p := New(opts...)

	if c.Allowlist != nil {
		p.AddStage(AllowlistStage(c.Allowlist))
	}
	if c.Reputation.Enabled() {
		p.AddStage(ReputationStage(c.Reputation))
	}
	if c.Heuristics != nil {
		p.AddStages(KeywordStage(c.Heuristics), LocalStage(c.Heuristics))
	}
	if c.Content != nil {
		p.AddStage(ContentStage(c.Content, p.logger))
	}
	if c.Classifier.Available() {
		p.AddStage(ClassifierStage(c.Classifier))
	}
	if c.Heuristics != nil {
		p.AddStage(FallbackStage(c.Heuristics))
	}
	return p
}

// LogSink is an EventSink that only logs.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink. A nil logger uses slog.Default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Record implements EventSink.
func (s *LogSink) Record(ctx context.Context, event model.Event) error {
	s.logger.InfoContext(ctx, "phishing attempt",
		"id", event.ID,
		"url", event.URL,
		"label", event.Label,
		"confidence", event.Confidence,
		"stage", event.Stage,
	)
	return nil
}
