package heuristic

import (
	"fmt"
	"strings"

	"github.com/nao1215/phishguard/internal/config"
	"github.com/nao1215/phishguard/internal/lexical"
	"github.com/nao1215/phishguard/internal/model"
)

// Verdict confidences.
const (
	HighRiskConfidence = 90
	LocalConfidence    = 85
	SoftConfidence     = 70
)

// ReasonLocal is the reason of a local demo-target verdict.
const ReasonLocal = "local test detection"

// Matcher holds normalised keyword lists.
type Matcher struct {
	highRisk []string
	soft     []string
	demo     []string
}

// New creates a Matcher from rules. Lists are lowercased once here.
func New(rules config.Rules) *Matcher {
	r := rules.Normalized()
	return &Matcher{
		highRisk: r.HighRiskKeywords,
		soft:     r.SoftKeywords,
		demo:     r.DemoKeywords,
	}
}

// HighRisk returns phishing/90 when the URL contains a high-risk phrase.
func (m *Matcher) HighRisk(rawURL string) *model.Verdict {
	if kw, ok := firstMatch(rawURL, m.highRisk); ok {
		return model.NewVerdict(model.LabelPhishing, HighRiskConfidence, fmt.Sprintf("high-risk keyword %q", kw))
	}
	return nil
}

// Local returns suspicious/85 when the URL targets the local machine and
// contains a demo keyword. Any other URL abstains.
func (m *Matcher) Local(rawURL string) *model.Verdict {
	if !lexical.IsLoopback(rawURL) {
		return nil
	}
	if _, ok := firstMatch(rawURL, m.demo); ok {
		return model.NewVerdict(model.LabelSuspicious, LocalConfidence, ReasonLocal)
	}
	return nil
}

// Soft returns suspicious/70 when the URL contains a soft keyword.
// The pipeline only consults it after every other stage abstained.
func (m *Matcher) Soft(rawURL string) *model.Verdict {
	if kw, ok := firstMatch(rawURL, m.soft); ok {
		return model.NewVerdict(model.LabelSuspicious, SoftConfidence, fmt.Sprintf("keyword %q", kw))
	}
	return nil
}

func firstMatch(rawURL string, keywords []string) (string, bool) {
	lower := strings.ToLower(rawURL)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}
