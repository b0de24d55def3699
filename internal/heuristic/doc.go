// Package heuristic implements the keyword based stages of the pipeline:
// the high-risk phrase pass, the local demo-target check and the soft
// keyword fallback. All matching is case-insensitive substring matching
// over the full URL, and lists are checked in configuration order so the
// first match wins.
package heuristic
