package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate and Rules.Validate so callers
// can use errors.Is to react to a specific problem.
var (
	// ErrNoTarget is returned when no URL to classify was given.
	ErrNoTarget = errors.New("no target specified: provide a URL or use --file")

	// ErrInvalidReputationTimeout is returned when the reputation timeout is
	// not positive or exceeds MaxStageTimeout.
	ErrInvalidReputationTimeout = errors.New("invalid reputation timeout: must be positive and at most 5s")

	// ErrInvalidContentTimeout is returned when the content fetch timeout is
	// not positive or exceeds MaxStageTimeout.
	ErrInvalidContentTimeout = errors.New("invalid content timeout: must be positive and at most 5s")

	// ErrInvalidMaxRedirects is returned when the redirect cap is negative.
	ErrInvalidMaxRedirects = errors.New("invalid max redirects: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidTrainingSamples is returned when recovery training would not
	// see both classes.
	ErrInvalidTrainingSamples = errors.New("invalid training samples: must be at least 2")

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingEgress is returned when both --tor and --proxy are set.
	ErrConflictingEgress = errors.New("conflicting egress: --tor and --proxy cannot be used together")

	// ErrInvalidThresholds is returned when content thresholds are out of
	// range or not ordered (suspicious < phishing).
	ErrInvalidThresholds = errors.New("invalid content thresholds: must be within 0-100 and suspicious below phishing")

	// ErrInvalidWeights is returned when a content weight is negative.
	ErrInvalidWeights = errors.New("invalid content weights: must be non-negative")

	// ErrEmptyKeyword is returned when a rule list contains an empty entry.
	// An empty phrase would match every URL.
	ErrEmptyKeyword = errors.New("invalid rules: keyword lists must not contain empty entries")
)
