package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/nao1215/phishguard/internal/config"
	"github.com/nao1215/phishguard/internal/model"
)

// Reasons reported by Decide.
const (
	ReasonExternalPasswordForm = "external password form detected"
	ReasonHighRisk             = "high risk content"
	ReasonSuspicious           = "suspicious content"
)

// Page is a fetched document.
type Page struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Analyzer fetches pages and scores them.
// It is safe for concurrent use once constructed.
type Analyzer struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	phrases     []string
	weights     model.RiskWeights
	thresholds  config.ContentThresholds
	logger      *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithUserAgent sets the User-Agent header of page fetches.
func WithUserAgent(ua string) Option {
	return func(a *Analyzer) {
		if ua != "" {
			a.userAgent = ua
		}
	}
}

// WithMaxBodySize sets how many body bytes are read.
func WithMaxBodySize(n int64) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxBodySize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer creates an Analyzer. The client must enforce the fetch
// timeout and the redirect cap (see package egress).
func NewAnalyzer(client *http.Client, rules config.Rules, opts ...Option) *Analyzer {
	r := rules.Normalized()
	a := &Analyzer{
		client:      client,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		phrases:     r.UrgencyPhrases,
		weights:     r.Weights,
		thresholds:  r.Thresholds,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fetch retrieves pageURL. Non-200 responses are returned without error;
// the caller decides what they mean.
func (a *Analyzer) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return &Page{
		URL:         pageURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Profile fetches and scores pageURL. It never fails: fetch and parse
// problems produce a profile with Fetched=false.
func (a *Analyzer) Profile(ctx context.Context, pageURL string) *model.ContentRiskProfile {
	profile := &model.ContentRiskProfile{URL: pageURL}

	page, err := a.Fetch(ctx, pageURL)
	if err != nil {
		a.logger.Debug("content fetch failed", "url", pageURL, "error", err)
		return profile
	}
	profile.FinalURL = page.FinalURL
	profile.StatusCode = page.StatusCode

	if page.StatusCode != http.StatusOK {
		a.logger.Debug("content fetch returned non-200", "url", pageURL, "status", page.StatusCode)
		return profile
	}

	if err := a.Score(profile, page.Body); err != nil {
		a.logger.Debug("content parse failed", "url", pageURL, "error", err)
		return profile
	}
	return profile
}

// Score parses body as the page requested at profile.URL, fills in the
// indicator counts, marks the profile fetched and computes its risk score.
func (a *Analyzer) Score(profile *model.ContentRiskProfile, body []byte) error {
	parser, err := NewParser(profile.URL)
	if err != nil {
		return err
	}
	ind, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return err
	}

	hits := urgencyHits(string(bytes.ToLower(body)), a.phrases)

	profile.Fetched = true
	profile.PasswordFields = ind.PasswordFields
	profile.HiddenInputs = ind.HiddenInputs
	profile.ExternalForms = ind.ExternalForms
	profile.Iframes = ind.Iframes
	profile.ExternalScripts = ind.ExternalScripts
	profile.UrgencyHits = len(hits)
	profile.UrgencyPhrases = hits
	profile.ComputeRiskScore(a.weights)
	return nil
}

// Decide turns a profile into a verdict, or nil to abstain.
// Rules are evaluated in order and the first match wins.
func Decide(p *model.ContentRiskProfile, th config.ContentThresholds) *model.Verdict {
	if p == nil || !p.Fetched {
		return nil
	}
	risk := p.RiskScore

	switch {
	case p.ExternalForms > 0 && p.PasswordFields > 0 && risk > th.ExternalPasswordForm:
		return model.NewVerdict(model.LabelPhishing, max(risk, th.ExternalPasswordFloor), ReasonExternalPasswordForm)
	case risk >= th.Phishing:
		return model.NewVerdict(model.LabelPhishing, risk, ReasonHighRisk)
	case risk >= th.Suspicious:
		return model.NewVerdict(model.LabelSuspicious, risk, ReasonSuspicious)
	default:
		return nil
	}
}

// Check profiles pageURL and decides. The profile is returned even when
// the stage abstains so callers can report it.
func (a *Analyzer) Check(ctx context.Context, pageURL string) (*model.Verdict, *model.ContentRiskProfile) {
	profile := a.Profile(ctx, pageURL)
	return Decide(profile, a.thresholds), profile
}
