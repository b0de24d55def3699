package reputation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/nao1215/phishguard/internal/model"
)

// Verdict constants.
const (
	Confidence = 100
	Reason     = "flagged by external database"
)

// DefaultTimeout is the per-call timeout.
const DefaultTimeout = 5 * time.Second

// maxResponseSize bounds the decoded body.
const maxResponseSize = 64 * 1024

// Result is the "results" object of a lookup response.
type Result struct {
	URL        string `json:"url"`
	InDatabase bool   `json:"in_database"`
	Verified   bool   `json:"verified"`
	// Valid is nil when the service omits it.
	Valid   *bool `json:"valid,omitempty"`
	PhishID any   `json:"phish_id,omitempty"`
}

// IsPhish reports whether the entry is a confirmed phish. An explicit
// valid=false (the site is no longer online) does not count.
func (r *Result) IsPhish() bool {
	if r == nil || !r.InDatabase || !r.Verified {
		return false
	}
	return r.Valid == nil || *r.Valid
}

type response struct {
	Results *Result `json:"results"`
}

// Client looks URLs up in a reputation service.
type Client struct {
	endpoint   string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the app_key form field.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets the HTTP client used for lookups.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBreakerSettings replaces the circuit breaker settings.
// Name and OnStateChange are filled in when empty.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(c *Client) {
		c.cb = c.newBreaker(st)
	}
}

// New creates a Client for endpoint. An empty endpoint yields a disabled
// client whose Check always abstains.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimSpace(endpoint),
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	c.cb = c.newBreaker(defaultBreakerSettings())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

func (c *Client) newBreaker(st gobreaker.Settings) *gobreaker.CircuitBreaker {
	if st.Name == "" {
		st.Name = "reputation"
	}
	if st.IsSuccessful == nil {
		st.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, errCallerDone)
		}
	}
	if st.OnStateChange == nil {
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		}
	}
	return gobreaker.NewCircuitBreaker(st)
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// Lookup queries the service for rawURL. A context that is already done
// returns its error without reaching the service. Failures caused by the
// caller cancelling do not count towards opening the circuit breaker; the
// per-call timeout does.
func (c *Client) Lookup(ctx context.Context, rawURL string) (*Result, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := c.cb.Execute(func() (interface{}, error) {
		res, err := c.lookup(ctx, rawURL)
		if err != nil && ctx.Err() != nil {
			// The caller went away; say nothing about upstream health.
			return nil, fmt.Errorf("%w: %w", errCallerDone, err)
		}
		return res, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}
	return out.(*Result), nil
}

func (c *Client) lookup(ctx context.Context, rawURL string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("url", rawURL)
	form.Set("format", "json")
	if c.apiKey != "" {
		form.Set("app_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "phishtank/phishguard")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reputation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if body.Results == nil {
		return nil, fmt.Errorf("%w: missing results", ErrInvalidResponse)
	}
	return body.Results, nil
}

// Check returns phishing/100 when the service reports a verified phish and
// abstains on everything else, failures included.
func (c *Client) Check(ctx context.Context, rawURL string) *model.Verdict {
	if !c.Enabled() {
		return nil
	}
	res, err := c.Lookup(ctx, rawURL)
	if err != nil {
		c.logger.Debug("reputation lookup failed", "url", rawURL, "error", err)
		return nil
	}
	if !res.IsPhish() {
		return nil
	}
	return model.NewVerdict(model.LabelPhishing, Confidence, Reason)
}
