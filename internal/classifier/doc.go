// Package classifier provides the statistical stage of the pipeline.
//
// A Model scores a lexical feature vector. The built-in implementation is
// Logistic, a standardised logistic regression persisted as a JSON artifact
// guarded by a SHA3-256 checksum and the list of feature names it was
// trained on. LoadOrRecover loads the artifact once at start-up and, when it
// is missing or corrupt, retrains it a single time with a Trainer. When that
// also fails the stage stays unavailable for the life of the process.
package classifier
