// Package lexical extracts features from the text of a URL without any
// network access.
//
// Extract produces the model.FeatureVector consumed by the classifier;
// Domain and Site expose the normalised host that the allowlist, the
// local-target check and the reports share.
package lexical
