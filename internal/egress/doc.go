// Package egress builds the outbound HTTP clients used to fetch suspected
// phishing pages.
//
// Page fetches go out directly by default. They can instead be routed
// through a SOCKS5 proxy, or through an embedded Tor daemon managed with
// tornago, so the analysed site never sees the operator's address.
// Either way every client carries a hard timeout and a redirect cap.
package egress
