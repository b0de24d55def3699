package content

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Indicators are the raw counts found in one HTML document.
type Indicators struct {
	PasswordFields  int
	HiddenInputs    int
	ExternalForms   int
	Iframes         int
	ExternalScripts int

	// Title is the page title, kept for reports.
	Title string
}

// Parser counts phishing indicators in HTML.
type Parser struct {
	// baseURL is the requested URL. Relative action and src attributes
	// resolve against it, so they never count as external.
	baseURL *url.URL

	// originHost is the lowercased host of baseURL.
	originHost string
}

// NewParser creates a parser for a page requested as requestedURL.
// Cross-origin checks compare against this URL, not the post-redirect one.
func NewParser(requestedURL string) (*Parser, error) {
	u, err := url.Parse(requestedURL)
	if err != nil {
		return nil, err
	}
	return &Parser{
		baseURL:    u,
		originHost: strings.ToLower(u.Hostname()),
	}, nil
}

// Parse walks the document and counts indicators. Malformed markup is
// tolerated the way browsers tolerate it.
func (p *Parser) Parse(r io.Reader) (*Indicators, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	ind := &Indicators{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			p.processElement(n, ind)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return ind, nil
}

func (p *Parser) processElement(n *html.Node, ind *Indicators) {
	switch n.Data {
	case "title":
		if ind.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			ind.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "input":
		switch strings.ToLower(strings.TrimSpace(getAttr(n, "type"))) {
		case "password":
			ind.PasswordFields++
		case "hidden":
			ind.HiddenInputs++
		}

	case "form":
		if p.isExternal(getAttr(n, "action")) {
			ind.ExternalForms++
		}

	case "iframe":
		ind.Iframes++

	case "script":
		if src := getAttr(n, "src"); src != "" && p.isExternal(src) {
			ind.ExternalScripts++
		}
	}
}

// isExternal reports whether ref resolves to a host other than the origin.
// Empty, fragment-only and non-network references are same-origin.
func (p *Parser) isExternal(ref string) bool {
	resolved := p.resolveURL(ref)
	if resolved == nil {
		return false
	}
	host := strings.ToLower(resolved.Hostname())
	return host != "" && host != p.originHost
}

func (p *Parser) resolveURL(ref string) *url.URL {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return nil
	}
	lower := strings.ToLower(ref)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:", "about:"} {
		if strings.HasPrefix(lower, scheme) {
			return nil
		}
	}

	u, err := url.Parse(ref)
	if err != nil {
		return nil
	}
	return p.baseURL.ResolveReference(u)
}

// getAttr retrieves an attribute value from an HTML node.
// x/net/html lowercases attribute keys.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// urgencyHits returns the phrases present in the lowercased body, in list order.
func urgencyHits(lowerBody string, phrases []string) []string {
	var hits []string
	for _, phrase := range phrases {
		if phrase != "" && strings.Contains(lowerBody, phrase) {
			hits = append(hits, phrase)
		}
	}
	return hits
}
