package reputation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/nao1215/phishguard/internal/model"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    bool
	}{
		{
			name:    "verified phish",
			handler: jsonHandler(`{"results":{"url":"http://x.test/","in_database":true,"verified":true,"valid":true,"phish_id":123}}`),
			want:    true,
		},
		{
			name:    "verified phish without valid field",
			handler: jsonHandler(`{"results":{"in_database":true,"verified":true}}`),
			want:    true,
		},
		{
			name:    "not in database",
			handler: jsonHandler(`{"results":{"in_database":false,"verified":false}}`),
		},
		{
			name:    "unverified submission",
			handler: jsonHandler(`{"results":{"in_database":true,"verified":false}}`),
		},
		{
			name:    "phish no longer valid",
			handler: jsonHandler(`{"results":{"in_database":true,"verified":true,"valid":false}}`),
		},
		{
			name:    "missing results",
			handler: jsonHandler(`{"meta":{}}`),
		},
		{
			name:    "garbage body",
			handler: jsonHandler(`<html>rate limited</html>`),
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newServer(t, tt.handler)
			c := New(srv.URL)

			v := c.Check(context.Background(), "http://x.test/")
			if !tt.want {
				if v != nil {
					t.Errorf("expected abstain, got %s", v)
				}
				return
			}
			if v == nil {
				t.Fatal("expected verdict, got abstain")
			}
			if v.Label != model.LabelPhishing || v.Confidence != 100 || v.Reason != Reason {
				t.Errorf("unexpected verdict %s", v)
			}
		})
	}
}

func TestLookupSendsForm(t *testing.T) {
	t.Parallel()

	var gotURL, gotFormat, gotKey, gotMethod string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		gotURL = r.PostForm.Get("url")
		gotFormat = r.PostForm.Get("format")
		gotKey = r.PostForm.Get("app_key")
		jsonHandler(`{"results":{"in_database":false}}`)(w, r)
	})

	c := New(srv.URL, WithAPIKey("secret-key"))
	if _, err := c.Lookup(context.Background(), "http://phish.test/a?b=c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotURL != "http://phish.test/a?b=c" {
		t.Errorf("unexpected url field %q", gotURL)
	}
	if gotFormat != "json" {
		t.Errorf("unexpected format field %q", gotFormat)
	}
	if gotKey != "secret-key" {
		t.Errorf("unexpected app_key field %q", gotKey)
	}
}

func TestLookupErrors(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		c := New("")
		if c.Enabled() {
			t.Error("client without endpoint must be disabled")
		}
		if _, err := c.Lookup(context.Background(), "http://x.test/"); !errors.Is(err, ErrDisabled) {
			t.Errorf("expected ErrDisabled, got %v", err)
		}
		if v := c.Check(context.Background(), "http://x.test/"); v != nil {
			t.Errorf("expected abstain, got %s", v)
		}
	})

	t.Run("status", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		_, err := New(srv.URL).Lookup(context.Background(), "http://x.test/")
		if !errors.Is(err, ErrUnexpectedStatus) {
			t.Errorf("expected ErrUnexpectedStatus, got %v", err)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, jsonHandler(`{`))
		_, err := New(srv.URL).Lookup(context.Background(), "http://x.test/")
		if !errors.Is(err, ErrInvalidResponse) {
			t.Errorf("expected ErrInvalidResponse, got %v", err)
		}
	})

	t.Run("timeout abstains", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)

		c := New(srv.URL, WithTimeout(50*time.Millisecond))
		start := time.Now()
		if v := c.Check(context.Background(), "http://x.test/"); v != nil {
			t.Errorf("expected abstain on timeout, got %s", v)
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("timeout not honoured, took %v", elapsed)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, jsonHandler(`{"results":{"in_database":true,"verified":true}}`))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if v := New(srv.URL).Check(ctx, "http://x.test/"); v != nil {
			t.Errorf("expected abstain for cancelled context, got %s", v)
		}
	})
}

func TestCircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := New(srv.URL, WithBreakerSettings(gobreaker.Settings{
		Timeout: time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	}))

	for i := 0; i < 5; i++ {
		if v := c.Check(context.Background(), "http://x.test/"); v != nil {
			t.Fatalf("expected abstain, got %s", v)
		}
	}

	if got := hits.Load(); got != 2 {
		t.Errorf("expected 2 upstream calls before the breaker opened, got %d", got)
	}

	_, err := c.Lookup(context.Background(), "http://x.test/")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreakerIgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	const phish = `{"results":{"in_database":true,"verified":true}}`
	tripAfterTwo := gobreaker.Settings{
		Timeout: time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	}

	t.Run("already cancelled callers", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			jsonHandler(phish)(w, r)
		})
		c := New(srv.URL, WithBreakerSettings(tripAfterTwo))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		for range 5 {
			if v := c.Check(ctx, "http://x.test/"); v != nil {
				t.Fatalf("expected abstain for cancelled caller, got %s", v)
			}
		}
		if got := hits.Load(); got != 0 {
			t.Errorf("cancelled callers must not reach the service, got %d calls", got)
		}

		v := c.Check(context.Background(), "http://x.test/")
		if v == nil || v.Label != model.LabelPhishing {
			t.Errorf("expected phishing verdict after cancelled callers, got %v", v)
		}
	})

	t.Run("cancelled while in flight", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) <= 3 {
				<-r.Context().Done()
				return
			}
			jsonHandler(phish)(w, r)
		})
		c := New(srv.URL, WithBreakerSettings(tripAfterTwo), WithTimeout(2*time.Second))

		for range 3 {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			_, err := c.Lookup(ctx, "http://x.test/")
			cancel()
			if err == nil {
				t.Fatal("expected error for abandoned lookup")
			}
			if errors.Is(err, ErrCircuitOpen) {
				t.Fatalf("caller cancellation opened the breaker: %v", err)
			}
		}

		v := c.Check(context.Background(), "http://x.test/")
		if v == nil || v.Label != model.LabelPhishing {
			t.Errorf("expected phishing verdict after abandoned lookups, got %v", v)
		}
	})

	t.Run("per-call timeout still counts", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, func(_ http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		})
		c := New(srv.URL, WithBreakerSettings(tripAfterTwo), WithTimeout(50*time.Millisecond))

		for range 2 {
			if v := c.Check(context.Background(), "http://x.test/"); v != nil {
				t.Fatalf("expected abstain, got %s", v)
			}
		}
		if _, err := c.Lookup(context.Background(), "http://x.test/"); !errors.Is(err, ErrCircuitOpen) {
			t.Errorf("expected ErrCircuitOpen after timeouts, got %v", err)
		}
	})
}

func TestResultIsPhish(t *testing.T) {
	t.Parallel()

	var nilResult *Result
	if nilResult.IsPhish() {
		t.Error("nil result is not a phish")
	}
}
