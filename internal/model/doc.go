// Package model defines the core data structures used throughout phishguard.
//
// This package contains the following main types:
//   - Verdict: A label, confidence and reason produced by one pipeline stage
//   - FeatureVector: The canonical lexical feature ordering shared by the
//     extractor and the classifier
//   - ContentRiskProfile: Indicator counts and risk score of a fetched page
//   - Result: The final classification returned to callers
//   - Event: A record handed to the event sink for non-safe verdicts
//
// Models live in their own package so that the stage packages (lexical,
// content, classifier) and the pipeline can share them without import cycles.
package model
