package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/phishguard/internal/lexical"
	"github.com/nao1215/phishguard/internal/model"
)

// Stage is one step of the decision pipeline.
//
// Evaluate returns a conclusive verdict or nil to abstain. It may record
// auxiliary data (such as the content profile) in res, but must not set
// res.Verdict or res.Stage; the pipeline does that.
type Stage interface {
	Evaluate(ctx context.Context, res *model.Result) *model.Verdict

	// Name is reported in model.Result.Stage when the stage fires.
	Name() string
}

// EventSink receives non-safe verdicts. Delivery is best effort: errors are
// logged and otherwise ignored.
type EventSink interface {
	Record(ctx context.Context, event model.Event) error
}

// Pipeline runs stages in order until one is conclusive.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	stages    []Stage
	extractor *lexical.Extractor
	sink      EventSink
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithEventSink sets the sink for non-safe verdicts.
func WithEventSink(sink EventSink) Option {
	return func(p *Pipeline) {
		p.sink = sink
	}
}

// WithExtractor sets the lexical extractor used to fill model.Result.Features.
func WithExtractor(e *lexical.Extractor) Option {
	return func(p *Pipeline) {
		p.extractor = e
	}
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		stages: make([]Stage, 0, 8),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.extractor == nil {
		p.extractor = lexical.New(nil)
	}
	return p
}

// AddStage appends a stage.
func (p *Pipeline) AddStage(stage Stage) {
	p.stages = append(p.stages, stage)
}

// AddStages appends stages in order.
func (p *Pipeline) AddStages(stages ...Stage) {
	p.stages = append(p.stages, stages...)
}

// Classify returns exactly one verdict for rawURL. It never fails. A
// context cancelled before a stage fires stops evaluation; the result is
// safe at the default confidence with StageCancelled and CancelledReason,
// so it is not mistaken for a clean URL.
func (p *Pipeline) Classify(ctx context.Context, rawURL string) *model.Result {
	res := model.NewResult(rawURL)
	res.Site = lexical.Site(rawURL)
	res.Features = p.extractor.Extract(rawURL)

	for _, stage := range p.stages {
		select {
		case <-ctx.Done():
			p.logger.Warn("classification cancelled",
				"url", rawURL,
				"stage", stage.Name(),
				"reason", ctx.Err(),
			)
			return p.finish(ctx, res, model.CancelledVerdict(), model.StageCancelled)
		default:
		}

		res.Evaluated = append(res.Evaluated, stage.Name())
		if v := stage.Evaluate(ctx, res); v != nil {
			return p.finish(ctx, res, v, stage.Name())
		}
	}

	// The last stage may have abstained only because it was interrupted.
	if ctx.Err() != nil {
		return p.finish(ctx, res, model.CancelledVerdict(), model.StageCancelled)
	}
	return p.finish(ctx, res, nil, model.StageDefault)
}

func (p *Pipeline) finish(ctx context.Context, res *model.Result, v *model.Verdict, stage string) *model.Result {
	if v == nil {
		v = model.DefaultVerdict()
	}
	res.Verdict = *v
	res.Stage = stage
	res.Elapsed = time.Since(res.ClassifiedAt)

	p.logger.Debug("classified",
		"url", res.URL,
		"label", res.Verdict.Label,
		"confidence", res.Verdict.Confidence,
		"stage", res.Stage,
		"elapsed", res.Elapsed,
	)

	if res.Verdict.IsThreat() {
		p.record(ctx, res)
	}
	return res
}

func (p *Pipeline) record(ctx context.Context, res *model.Result) {
	if p.sink == nil {
		return
	}
	event := model.NewAttemptEvent(res)
	event.ID = uuid.NewString()

	// The verdict is already decided; a cancelled request still gets recorded.
	if err := p.sink.Record(context.WithoutCancel(ctx), event); err != nil {
		p.logger.Warn("failed to record event",
			"url", res.URL,
			"error", err,
		)
	}
}

// StageCount returns the number of stages.
func (p *Pipeline) StageCount() int {
	return len(p.stages)
}

// StageNames returns stage names in evaluation order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.Name()
	}
	return names
}
