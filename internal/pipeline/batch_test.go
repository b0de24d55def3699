package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/phishguard/internal/model"
)

func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(New())
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(New(), WithConcurrency(5))
		if bp.concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(New(), WithConcurrency(0))
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
	})
}

func TestProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("keeps input order", func(t *testing.T) {
		t.Parallel()

		p := New(WithLogger(discardLogger()))
		p.AddStage(NewStageFunc("echo", func(_ context.Context, res *model.Result) *model.Verdict {
			return model.NewVerdict(model.LabelSuspicious, 50, res.URL)
		}))

		urls := make([]string, 25)
		for i := range urls {
			urls[i] = fmt.Sprintf("http://site%d.test/", i)
		}

		results, err := NewBatchProcessor(p, WithConcurrency(4), WithBatchLogger(discardLogger())).
			ProcessBatch(context.Background(), urls)
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		if len(results) != len(urls) {
			t.Fatalf("expected %d results, got %d", len(urls), len(results))
		}
		for i, res := range results {
			if res == nil || res.URL != urls[i] || res.Reason() != urls[i] {
				t.Errorf("result %d = %+v, want %s", i, res, urls[i])
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		p := New(WithLogger(discardLogger()))
		p.AddStage(NewStageFunc("slow", func(context.Context, *model.Result) *model.Verdict {
			n := current.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return nil
		}))

		urls := make([]string, 12)
		for i := range urls {
			urls[i] = fmt.Sprintf("http://s%d.test/", i)
		}

		if _, err := NewBatchProcessor(p, WithConcurrency(3), WithBatchLogger(discardLogger())).
			ProcessBatch(context.Background(), urls); err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		if got := peak.Load(); got > 3 {
			t.Errorf("peak concurrency %d exceeds limit 3", got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results, err := NewBatchProcessor(New(WithLogger(discardLogger())), WithBatchLogger(discardLogger())).
			ProcessBatch(ctx, []string{"http://a.test/", "http://b.test/"})
		if err == nil {
			t.Error("expected context error")
		}
		if len(results) != 2 {
			t.Errorf("expected result slots for every URL, got %d", len(results))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		results, err := NewBatchProcessor(New(), WithBatchLogger(discardLogger())).
			ProcessBatch(context.Background(), nil)
		if err != nil || len(results) != 0 {
			t.Errorf("ProcessBatch(nil) = %v, %v", results, err)
		}
	})
}

func TestProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	p := New(WithLogger(discardLogger()))
	urls := []string{"http://a.test/", "http://b.test/", "http://c.test/"}

	var mu sync.Mutex
	seen := make(map[int]string)
	err := NewBatchProcessor(p, WithBatchLogger(discardLogger())).
		ProcessBatchWithCallback(context.Background(), urls, func(res *model.Result, index int) {
			mu.Lock()
			defer mu.Unlock()
			seen[index] = res.URL
		})
	if err != nil {
		t.Fatalf("ProcessBatchWithCallback() error = %v", err)
	}
	for i, u := range urls {
		if seen[i] != u {
			t.Errorf("index %d = %q, want %q", i, seen[i], u)
		}
	}
}
