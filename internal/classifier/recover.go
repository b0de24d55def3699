package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// LoadStatus describes how LoadOrRecover obtained its model.
type LoadStatus int

const (
	// StatusLoaded means the artifact loaded as is.
	StatusLoaded LoadStatus = iota

	// StatusRecovered means the artifact was missing or corrupt and was
	// retrained and reloaded.
	StatusRecovered

	// StatusUnavailable means recovery failed; the classifier is disabled.
	StatusUnavailable
)

// String returns the status name.
func (s LoadStatus) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusRecovered:
		return "recovered"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// LoadOrRecover loads the artifact at path. If it is missing or corrupt,
// the file is removed, trainer runs once synchronously, and the result is
// saved and loaded again. Any failure along that path yields a nil Model,
// StatusUnavailable and the error; the caller keeps running without the
// classifier.
//
// It is meant to run once at start-up, never per request.
func LoadOrRecover(ctx context.Context, path string, trainer Trainer, logger *slog.Logger) (Model, LoadStatus, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m, err := Load(path)
	if err == nil {
		logger.Debug("classifier loaded", "path", path)
		return m, StatusLoaded, nil
	}

	logger.Warn("classifier artifact unusable, retraining", "path", path, "error", err)

	if !errors.Is(err, ErrArtifactNotFound) {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, StatusUnavailable, fmt.Errorf("failed to remove corrupt artifact: %w", rmErr)
		}
	}

	if trainer == nil {
		return nil, StatusUnavailable, fmt.Errorf("no trainer for recovery: %w", err)
	}

	trained, err := trainer.Train(ctx)
	if err != nil {
		return nil, StatusUnavailable, fmt.Errorf("recovery training failed: %w", err)
	}
	if err := Save(path, trained); err != nil {
		return nil, StatusUnavailable, fmt.Errorf("failed to save recovered model: %w", err)
	}

	m, err = Load(path)
	if err != nil {
		return nil, StatusUnavailable, fmt.Errorf("failed to reload recovered model: %w", err)
	}

	logger.Info("classifier recovered", "path", path)
	return m, StatusRecovered, nil
}
