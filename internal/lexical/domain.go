package lexical

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var idnaProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
)

// Host returns the lowercased host of raw with the port removed, or "" when
// raw cannot be parsed or has no host. IP literals are returned without brackets.
func Host(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host == "" && u.Scheme == "" && u.Opaque == "" {
		// Scheme-less input such as "example.com/path".
		if u2, err := url.Parse("http://" + strings.TrimSpace(raw)); err == nil {
			host = u2.Hostname()
		}
	}
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

// Domain returns the normalised domain of raw: the host lowercased, mapped
// to its IDNA ASCII form when possible, with the port and a leading "www."
// removed. It returns "" for unparseable URLs.
func Domain(raw string) string {
	host := Host(raw)
	if host == "" {
		return ""
	}
	if net.ParseIP(host) == nil {
		if ascii, err := idnaProfile.ToASCII(host); err == nil {
			host = ascii
		}
	}
	return strings.TrimPrefix(host, "www.")
}

// Site returns the registrable domain (eTLD+1) of raw, or the normalised
// domain when it has none (IP literals, single-label hosts).
func Site(raw string) string {
	d := Domain(raw)
	if d == "" || net.ParseIP(d) != nil {
		return d
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(d)
	if err != nil {
		return d
	}
	return site
}

// IsLoopback reports whether raw targets the local machine: "localhost",
// any "*.localhost" name, or a loopback IP literal.
func IsLoopback(raw string) bool {
	host := Host(raw)
	if host == "" {
		return false
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
