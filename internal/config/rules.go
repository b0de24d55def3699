package config

import (
	"strings"

	"github.com/nao1215/phishguard/internal/model"
)

// ContentThresholds are the risk-score cut-offs of the content stage.
type ContentThresholds struct {
	// ExternalPasswordForm is the score above which a page that posts a
	// password to another host is phishing.
	ExternalPasswordForm int `yaml:"externalPasswordForm"`

	// ExternalPasswordFloor is the minimum confidence of that verdict.
	ExternalPasswordFloor int `yaml:"externalPasswordFloor"`

	// Phishing is the score at or above which a page is phishing.
	Phishing int `yaml:"phishing"`

	// Suspicious is the score at or above which a page is suspicious.
	Suspicious int `yaml:"suspicious"`
}

// DefaultContentThresholds returns 60/92/70/45.
func DefaultContentThresholds() ContentThresholds {
	return ContentThresholds{
		ExternalPasswordForm:  60,
		ExternalPasswordFloor: 92,
		Phishing:              70,
		Suspicious:            45,
	}
}

// Rules are the tunable detection rules shared by the heuristic, lexical
// and content stages. Lists are matched case-insensitively.
type Rules struct {
	// HighRiskKeywords are phrases that alone mark a URL as phishing.
	HighRiskKeywords []string `yaml:"highRiskKeywords"`

	// SoftKeywords mark a URL as suspicious when nothing else fired.
	SoftKeywords []string `yaml:"softKeywords"`

	// DemoKeywords trigger local test detection on loopback hosts.
	DemoKeywords []string `yaml:"demoKeywords"`

	// SuspiciousTLDs are domain suffixes, dot included.
	SuspiciousTLDs []string `yaml:"suspiciousTLDs"`

	// UrgencyPhrases are social-engineering phrases searched in page bodies.
	UrgencyPhrases []string `yaml:"urgencyPhrases"`

	// Weights are the content risk weights.
	Weights model.RiskWeights `yaml:"weights"`

	// Thresholds are the content risk thresholds.
	Thresholds ContentThresholds `yaml:"thresholds"`
}

// DefaultRules returns the built-in detection rules.
func DefaultRules() Rules {
	return Rules{
		HighRiskKeywords: []string{
			"secure-login",
			"login-secure",
			"verify-account",
			"account-verify",
			"account-update",
			"update-account",
			"signin-verify",
			"confirm-identity",
			"password-reset-required",
			"wallet-recovery",
			"unlock-account",
			"suspended-account",
		},
		SoftKeywords: []string{"login", "verify", "account", "secure", "bank", "confirm"},
		DemoKeywords: []string{"verify", "login", "phish", "suspicious", "malware", "test"},
		SuspiciousTLDs: []string{
			".top", ".xyz", ".buzz", ".info", ".tk", ".ml", ".ga", ".cf", ".gq", ".club", ".site",
		},
		UrgencyPhrases: []string{
			"verify your account",
			"account will be",
			"security alert",
			"24 hours",
			"suspended",
			"unusual activity",
			"confirm your identity",
			"immediately",
			"update your payment",
			"locked",
		},
		Weights:    model.DefaultRiskWeights(),
		Thresholds: DefaultContentThresholds(),
	}
}

// Validate checks weights, thresholds and keyword lists.
func (r Rules) Validate() error {
	w := r.Weights
	for _, v := range []int{w.PasswordField, w.HiddenInput, w.ExternalForm, w.Iframe, w.ExternalScript, w.UrgencyPhrase} {
		if v < 0 {
			return ErrInvalidWeights
		}
	}

	th := r.Thresholds
	for _, v := range []int{th.ExternalPasswordForm, th.ExternalPasswordFloor, th.Phishing, th.Suspicious} {
		if v < 0 || v > model.MaxRiskScore {
			return ErrInvalidThresholds
		}
	}
	if th.Suspicious >= th.Phishing {
		return ErrInvalidThresholds
	}

	for _, list := range [][]string{r.HighRiskKeywords, r.SoftKeywords, r.DemoKeywords, r.SuspiciousTLDs, r.UrgencyPhrases} {
		for _, s := range list {
			if strings.TrimSpace(s) == "" {
				return ErrEmptyKeyword
			}
		}
	}
	return nil
}

// Normalized returns a copy of r with every list lowercased and trimmed.
func (r Rules) Normalized() Rules {
	out := r
	out.HighRiskKeywords = lowerAll(r.HighRiskKeywords)
	out.SoftKeywords = lowerAll(r.SoftKeywords)
	out.DemoKeywords = lowerAll(r.DemoKeywords)
	out.SuspiciousTLDs = lowerAll(r.SuspiciousTLDs)
	out.UrgencyPhrases = lowerAll(r.UrgencyPhrases)
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
