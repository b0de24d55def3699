// Package allowlist matches URLs against a curated set of trusted domains.
//
// A Set is built once from a category -> domains mapping and is read-only
// afterwards, so it can be shared across goroutines without locking.
package allowlist
