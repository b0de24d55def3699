package model

// RiskWeights are the per-indicator weights of the content risk score.
type RiskWeights struct {
	PasswordField  int `json:"password_field" yaml:"passwordField"`
	HiddenInput    int `json:"hidden_input" yaml:"hiddenInput"`
	ExternalForm   int `json:"external_form" yaml:"externalForm"`
	Iframe         int `json:"iframe" yaml:"iframe"`
	ExternalScript int `json:"external_script" yaml:"externalScript"`
	UrgencyPhrase  int `json:"urgency_phrase" yaml:"urgencyPhrase"`
}

// DefaultRiskWeights returns the standard weights:
// 10 per password field, 5 per hidden input, 20 per external form,
// 10 per iframe, 5 per external script and 5 per urgency phrase.
func DefaultRiskWeights() RiskWeights {
	return RiskWeights{
		PasswordField:  10,
		HiddenInput:    5,
		ExternalForm:   20,
		Iframe:         10,
		ExternalScript: 5,
		UrgencyPhrase:  5,
	}
}

// MaxRiskScore is the upper bound of ContentRiskProfile.RiskScore.
const MaxRiskScore = 100

// ContentRiskProfile summarises the threat indicators found on a fetched page.
type ContentRiskProfile struct {
	// URL is the requested page URL.
	URL string `json:"url"`

	// FinalURL is the URL after redirects. Empty if nothing was fetched.
	FinalURL string `json:"final_url,omitempty"`

	// StatusCode is the HTTP status of the final response (0 on transport errors).
	StatusCode int `json:"status_code,omitempty"`

	// Fetched is true only when the page was retrieved with status 200.
	Fetched bool `json:"fetched"`

	PasswordFields  int `json:"password_fields"`
	HiddenInputs    int `json:"hidden_inputs"`
	ExternalForms   int `json:"external_forms"`
	Iframes         int `json:"iframes"`
	ExternalScripts int `json:"external_scripts"`

	// UrgencyHits counts distinct urgency phrases present on the page.
	UrgencyHits int `json:"urgency_hits"`

	// UrgencyPhrases lists the matched phrases.
	UrgencyPhrases []string `json:"urgency_phrases,omitempty"`

	// RiskScore is the weighted indicator sum capped at MaxRiskScore.
	RiskScore int `json:"risk_score"`
}

// ComputeRiskScore calculates the capped weighted score, stores it in
// RiskScore and returns it. An unfetched profile always scores 0.
func (p *ContentRiskProfile) ComputeRiskScore(w RiskWeights) int {
	if !p.Fetched {
		p.RiskScore = 0
		return 0
	}

	risk := w.PasswordField*p.PasswordFields +
		w.HiddenInput*p.HiddenInputs +
		w.ExternalForm*p.ExternalForms +
		w.Iframe*p.Iframes +
		w.ExternalScript*p.ExternalScripts +
		w.UrgencyPhrase*p.UrgencyHits

	p.RiskScore = min(max(risk, 0), MaxRiskScore)
	return p.RiskScore
}
