package classifier

import "errors"

var (
	// ErrArtifactNotFound is returned when the artifact file does not exist.
	ErrArtifactNotFound = errors.New("classifier artifact not found")

	// ErrCorruptArtifact is returned when the artifact cannot be decoded or
	// fails verification (checksum, feature names, shapes, finite values).
	ErrCorruptArtifact = errors.New("classifier artifact is corrupt")

	// ErrUnavailable is returned by the stage when no model is loaded.
	ErrUnavailable = errors.New("classifier unavailable")

	// ErrInsufficientData is returned when a training set lacks one of the classes.
	ErrInsufficientData = errors.New("training data must contain both classes")
)
