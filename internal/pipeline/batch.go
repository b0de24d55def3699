package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/phishguard/internal/model"
)

// DefaultConcurrency is the number of URLs classified at once.
const DefaultConcurrency = 10

// BatchProcessor classifies many URLs concurrently.
// Results keep the order of the input slice.
type BatchProcessor struct {
	pipeline    *Pipeline
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent classifications.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor around p.
func NewBatchProcessor(p *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipeline:    p,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch classifies urls and returns one result per URL in input order.
// URLs not started before ctx is cancelled are left nil and the context
// error is returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.Result, error) {
	results := make([]*model.Result, len(urls))
	err := bp.ProcessBatchWithCallback(ctx, urls, func(res *model.Result, index int) {
		// Each goroutine owns its own index.
		results[index] = res
	})
	return results, err
}

// ProcessBatchWithCallback classifies urls and calls callback as each one
// completes. callback runs on worker goroutines and must be safe for
// concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(res *model.Result, index int),
) error {
	bp.logger.Info("starting batch classification",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, rawURL := range urls {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			callback(bp.pipeline.Classify(gctx, rawURL), i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch classification complete",
		"total_urls", len(urls),
		"elapsed", time.Since(start),
	)
	return err
}
