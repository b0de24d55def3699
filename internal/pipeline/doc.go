// Package pipeline combines the detection stages into a single decision.
//
// A Pipeline runs its stages in a fixed order and stops at the first one
// that returns a conclusive verdict. A stage that has no opinion abstains
// by returning nil. When every stage abstains the URL is reported safe
// with the default confidence. Stage failures never surface as errors:
// each stage absorbs its own problems and abstains.
//
// The standard order is:
//
//	allowlist -> reputation -> keyword -> local -> content -> classifier -> fallback
//
// Non-safe results are reported to an EventSink. BatchProcessor classifies
// many URLs concurrently with a bounded number of workers.
package pipeline
