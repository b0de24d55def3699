package lexical

import (
	"math"
	"net"
	"regexp"
	"strings"

	"github.com/nao1215/phishguard/internal/model"
)

// dottedQuad matches an IPv4-looking sequence anywhere in a URL.
var dottedQuad = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// Extractor computes lexical feature vectors.
// The zero value has no suspicious TLDs; use New.
type Extractor struct {
	suspiciousTLDs []string
}

// New returns an Extractor that flags domains ending in any of tlds.
// Each entry should include the leading dot (".xyz").
func New(tlds []string) *Extractor {
	normalized := make([]string, 0, len(tlds))
	for _, tld := range tlds {
		tld = strings.ToLower(strings.TrimSpace(tld))
		if tld == "" {
			continue
		}
		if !strings.HasPrefix(tld, ".") {
			tld = "." + tld
		}
		normalized = append(normalized, tld)
	}
	return &Extractor{suspiciousTLDs: normalized}
}

// Extract returns the feature vector of raw. It never fails; malformed URLs
// get domain-derived features of zero.
func (e *Extractor) Extract(raw string) model.FeatureVector {
	var v model.FeatureVector

	domain := Domain(raw)

	v[model.FeatureLength] = float64(len(raw))
	v[model.FeatureDotCount] = float64(strings.Count(raw, "."))
	v[model.FeatureHyphenCount] = float64(strings.Count(raw, "-"))
	v[model.FeatureAtCount] = float64(strings.Count(raw, "@"))
	v[model.FeatureDoubleSlashCount] = float64(strings.Count(raw, "//"))
	v[model.FeatureHasIP] = boolFeature(hasIP(raw, domain))
	v[model.FeatureInsecureScheme] = boolFeature(!hasHTTPSScheme(raw))
	v[model.FeatureDomainEntropy] = Entropy(domain)
	v[model.FeatureSuspiciousTLD] = boolFeature(e.HasSuspiciousTLD(domain))

	return v
}

// HasSuspiciousTLD reports whether domain ends with one of the configured suffixes.
func (e *Extractor) HasSuspiciousTLD(domain string) bool {
	domain = strings.ToLower(domain)
	for _, tld := range e.suspiciousTLDs {
		if strings.HasSuffix(domain, tld) {
			return true
		}
	}
	return false
}

// Entropy returns the Shannon entropy in bits of the character distribution of s.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}
	var h float64
	for _, c := range counts {
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

func hasIP(raw, domain string) bool {
	if dottedQuad.MatchString(raw) {
		return true
	}
	return domain != "" && net.ParseIP(domain) != nil
}

func hasHTTPSScheme(raw string) bool {
	s := strings.TrimSpace(raw)
	return len(s) >= len("https://") && strings.EqualFold(s[:len("https://")], "https://")
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
