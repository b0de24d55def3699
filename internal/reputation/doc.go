// Package reputation queries a PhishTank-compatible URL reputation service.
//
// The lookup is best effort: timeouts, transport errors, unexpected status
// codes and undecodable bodies all make the stage abstain. A circuit breaker
// stops calling an upstream that keeps failing, so a dead service costs
// one fast rejection instead of a full timeout per request. There are no
// retries.
package reputation
