package allowlist

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/phishguard/internal/lexical"
	"github.com/nao1215/phishguard/internal/model"
)

// Confidence of an allowlist verdict.
const Confidence = 99

// Reasons reported by Check.
const (
	ReasonDomain    = "trusted domain"
	ReasonSubdomain = "trusted subdomain"
)

//go:embed data/safe_domains.yaml
var defaultDataset []byte

// ErrEmptyDataset is returned when a dataset contains no usable domain.
var ErrEmptyDataset = errors.New("safe domain dataset is empty")

// Set is an immutable set of trusted registrable domains.
type Set struct {
	domains map[string]struct{}
}

// Load flattens a category -> domains mapping into a Set.
// Entries are lowercased; scheme, "www." and trailing dots are stripped.
func Load(categories map[string][]string) (*Set, error) {
	s := &Set{domains: make(map[string]struct{})}
	for _, list := range categories {
		for _, d := range list {
			if n := normalize(d); n != "" {
				s.domains[n] = struct{}{}
			}
		}
	}
	if len(s.domains) == 0 {
		return nil, ErrEmptyDataset
	}
	return s, nil
}

// Parse decodes a YAML category -> domains mapping.
func Parse(data []byte) (*Set, error) {
	var categories map[string][]string
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse safe domain dataset: %w", err)
	}
	return Load(categories)
}

// LoadFile reads a YAML dataset from path.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided dataset path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read safe domain dataset: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in dataset.
func Default() *Set {
	s, err := Parse(defaultDataset)
	if err != nil {
		panic(fmt.Sprintf("allowlist: embedded dataset is invalid: %v", err))
	}
	return s
}

// Len returns the number of trusted domains.
func (s *Set) Len() int {
	return len(s.domains)
}

// Domains returns the trusted domains in sorted order.
func (s *Set) Domains() []string {
	out := make([]string, 0, len(s.domains))
	for d := range s.domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Match reports whether domain equals a trusted domain (exact) or is a
// subdomain of one (suffix). domain must already be normalised.
func (s *Set) Match(domain string) (matched, exact bool) {
	if s == nil || domain == "" {
		return false, false
	}
	if _, ok := s.domains[domain]; ok {
		return true, true
	}
	// Walk parent labels: a.b.example.com -> b.example.com -> example.com.
	for i := strings.IndexByte(domain, '.'); i >= 0; i = strings.IndexByte(domain, '.') {
		domain = domain[i+1:]
		if _, ok := s.domains[domain]; ok {
			return true, false
		}
	}
	return false, false
}

// Check returns a safe verdict when rawURL's domain is trusted, or nil.
// Unparseable URLs abstain.
func (s *Set) Check(rawURL string) *model.Verdict {
	matched, exact := s.Match(lexical.Domain(rawURL))
	if !matched {
		return nil
	}
	if exact {
		return model.NewVerdict(model.LabelSafe, Confidence, ReasonDomain)
	}
	return model.NewVerdict(model.LabelSafe, Confidence, ReasonSubdomain)
}

func normalize(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimSuffix(d, ".")
	return strings.TrimPrefix(d, "www.")
}
