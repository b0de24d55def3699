package heuristic

import (
	"testing"

	"github.com/nao1215/phishguard/internal/config"
	"github.com/nao1215/phishguard/internal/model"
)

func TestHighRisk(t *testing.T) {
	t.Parallel()

	m := New(config.DefaultRules())

	tests := []struct {
		name   string
		url    string
		reason string
	}{
		{"hyphenated phrase", "http://paypal-secure-login.example/", `high-risk keyword "secure-login"`},
		{"uppercase", "HTTP://EXAMPLE.COM/VERIFY-ACCOUNT", `high-risk keyword "verify-account"`},
		{"in query", "https://example.com/?next=wallet-recovery", `high-risk keyword "wallet-recovery"`},
		{"soft only", "https://example.com/login", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := m.HighRisk(tt.url)
			if tt.reason == "" {
				if v != nil {
					t.Errorf("expected abstain, got %s", v)
				}
				return
			}
			if v == nil {
				t.Fatal("expected verdict")
			}
			if v.Label != model.LabelPhishing || v.Confidence != 90 || v.Reason != tt.reason {
				t.Errorf("unexpected verdict %s", v)
			}
		})
	}
}

func TestHighRiskFirstListedWins(t *testing.T) {
	t.Parallel()

	rules := config.DefaultRules()
	rules.HighRiskKeywords = []string{"Account-Update", "secure-login"}
	m := New(rules)

	v := m.HighRisk("http://secure-login.example/account-update")
	if v == nil || v.Reason != `high-risk keyword "account-update"` {
		t.Errorf("expected first configured phrase to win, got %s", v)
	}
}

func TestLocal(t *testing.T) {
	t.Parallel()

	m := New(config.DefaultRules())

	tests := []struct {
		url  string
		want bool
	}{
		{"http://localhost:8000/verify", true},
		{"http://127.0.0.1/phish-demo", true},
		{"http://[::1]/login", true},
		{"http://localhost:8000/", false},
		{"http://example.com/verify", false},
		{"http://192.168.0.10/test", false},
	}

	for _, tt := range tests {
		v := m.Local(tt.url)
		if (v != nil) != tt.want {
			t.Errorf("Local(%q) = %s, want fired=%v", tt.url, v, tt.want)
			continue
		}
		if v != nil && (v.Label != model.LabelSuspicious || v.Confidence != 85 || v.Reason != ReasonLocal) {
			t.Errorf("unexpected verdict %s", v)
		}
	}
}

func TestSoft(t *testing.T) {
	t.Parallel()

	m := New(config.DefaultRules())

	v := m.Soft("http://mybank-portal.example/Confirm")
	if v == nil {
		t.Fatal("expected verdict")
	}
	if v.Label != model.LabelSuspicious || v.Confidence != 70 {
		t.Errorf("unexpected verdict %s", v)
	}
	if v.Reason != `keyword "bank"` {
		t.Errorf("expected first soft keyword in list order, got %q", v.Reason)
	}

	if v := m.Soft("https://example.com/about"); v != nil {
		t.Errorf("expected abstain, got %s", v)
	}
}
