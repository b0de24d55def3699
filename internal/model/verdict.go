package model

import "fmt"

// Label is the classification outcome of a URL.
type Label string

const (
	// LabelSafe means no stage found a reason to distrust the URL.
	LabelSafe Label = "safe"

	// LabelSuspicious means weak or partial phishing indicators were found.
	LabelSuspicious Label = "suspicious"

	// LabelPhishing means strong phishing indicators were found.
	LabelPhishing Label = "phishing"
)

// String returns the label text.
func (l Label) String() string {
	return string(l)
}

// IsValid reports whether l is one of the three known labels.
func (l Label) IsValid() bool {
	switch l {
	case LabelSafe, LabelSuspicious, LabelPhishing:
		return true
	default:
		return false
	}
}

// Rank orders labels by risk: safe < suspicious < phishing.
// Unknown labels rank below safe.
func (l Label) Rank() int {
	switch l {
	case LabelSafe:
		return 0
	case LabelSuspicious:
		return 1
	case LabelPhishing:
		return 2
	default:
		return -1
	}
}

// Confidence bounds.
const (
	MinConfidence = 0
	MaxConfidence = 100
)

// Verdict is a conclusive stage result.
//
// A stage that has no opinion returns a nil *Verdict (abstains) instead of a
// zero Verdict; the pipeline stops at the first non-nil Verdict.
type Verdict struct {
	// Label is the classification.
	Label Label `json:"label"`

	// Confidence is an integer in [0,100].
	Confidence int `json:"confidence"`

	// Reason is a short diagnostic string describing what fired.
	Reason string `json:"reason"`
}

// NewVerdict creates a Verdict with the confidence clamped into [0,100].
func NewVerdict(label Label, confidence int, reason string) *Verdict {
	return &Verdict{
		Label:      label,
		Confidence: ClampConfidence(confidence),
		Reason:     reason,
	}
}

// ClampConfidence forces c into [MinConfidence, MaxConfidence].
func ClampConfidence(c int) int {
	if c < MinConfidence {
		return MinConfidence
	}
	if c > MaxConfidence {
		return MaxConfidence
	}
	return c
}

// IsThreat reports whether the verdict is suspicious or phishing.
func (v *Verdict) IsThreat() bool {
	return v != nil && v.Label != LabelSafe
}

// String returns a compact representation, e.g. "phishing (90%): high risk content".
func (v *Verdict) String() string {
	if v == nil {
		return "abstain"
	}
	return fmt.Sprintf("%s (%d%%): %s", v.Label, v.Confidence, v.Reason)
}
