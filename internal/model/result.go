package model

import "time"

// Stage names reported in Result.Stage.
const (
	StageAllowlist  = "allowlist"
	StageReputation = "reputation"
	StageKeyword    = "keyword"
	StageLocal      = "local"
	StageContent    = "content"
	StageClassifier = "classifier"
	StageFallback   = "fallback"
	StageDefault    = "default"
	StageCancelled  = "cancelled"
)

// DefaultConfidence and DefaultReason describe the closed-world verdict
// returned when every stage abstains.
const (
	DefaultConfidence = 80
	DefaultReason     = "no risk indicators found"
)

// CancelledReason marks a default verdict reached because the request was
// cancelled before every stage ran.
const CancelledReason = "classification cancelled"

// DefaultVerdict returns the verdict used when every stage abstains.
func DefaultVerdict() *Verdict {
	return NewVerdict(LabelSafe, DefaultConfidence, DefaultReason)
}

// CancelledVerdict keeps the default label and confidence but says the
// URL was not fully checked.
func CancelledVerdict() *Verdict {
	return NewVerdict(LabelSafe, DefaultConfidence, CancelledReason)
}

// Result is the outcome of classifying one URL.
type Result struct {
	// URL is the URL exactly as submitted.
	URL string `json:"url"`

	// Verdict is the conclusive verdict. Never nil.
	Verdict Verdict `json:"verdict"`

	// Stage is the name of the stage that produced the verdict.
	Stage string `json:"stage"`

	// Site is the registrable domain (eTLD+1) of the URL, if one could be derived.
	Site string `json:"site,omitempty"`

	// Features is the lexical feature vector of the URL.
	Features FeatureVector `json:"features"`

	// Content is the page risk profile. Nil when the content stage did not run.
	Content *ContentRiskProfile `json:"content,omitempty"`

	// Evaluated lists the stages that ran, in order.
	Evaluated []string `json:"evaluated"`

	// ClassifiedAt is when classification started.
	ClassifiedAt time.Time `json:"classified_at"`

	// Elapsed is the wall time spent classifying.
	Elapsed time.Duration `json:"elapsed"`
}

// NewResult creates a Result for rawURL stamped with the current time.
func NewResult(rawURL string) *Result {
	return &Result{
		URL:          rawURL,
		Evaluated:    make([]string, 0, 8),
		ClassifiedAt: time.Now(),
	}
}

// Label is shorthand for r.Verdict.Label.
func (r *Result) Label() Label {
	return r.Verdict.Label
}

// Confidence is shorthand for r.Verdict.Confidence.
func (r *Result) Confidence() int {
	return r.Verdict.Confidence
}

// Reason is shorthand for r.Verdict.Reason.
func (r *Result) Reason() string {
	return r.Verdict.Reason
}
