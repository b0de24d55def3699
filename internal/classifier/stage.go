package classifier

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/nao1215/phishguard/internal/model"
)

// Verdict constants of the classifier stage.
const (
	DefaultPhishingConfidence = 90
	SafeConfidence            = 95
	ReasonPhishing            = "model detection"
	ReasonSafe                = "model verification"
)

// Stage wraps a Model as a pipeline stage.
type Stage struct {
	model  Model
	logger *slog.Logger
}

// NewStage creates a stage. A nil model yields a stage that always abstains.
func NewStage(m Model, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{model: m, logger: logger}
}

// Available reports whether a model is loaded.
func (s *Stage) Available() bool {
	return s != nil && s.model != nil
}

// Check scores v. Class 1 is phishing at round(100*P1) when the model
// reports a finite probability, otherwise 90. Class 0 is safe/95. Errors and
// panics inside the model abstain.
func (s *Stage) Check(v model.FeatureVector) (verdict *model.Verdict) {
	if !s.Available() {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("classifier panicked", "panic", fmt.Sprint(r))
			verdict = nil
		}
	}()

	class, err := s.model.Predict(v)
	if err != nil {
		s.logger.Debug("classifier prediction failed", "error", err)
		return nil
	}

	switch class {
	case ClassPhishing:
		confidence := DefaultPhishingConfidence
		if pm, ok := s.model.(ProbabilityModel); ok {
			if proba, err := pm.PredictProba(v); err == nil && finite(proba[ClassPhishing]) {
				confidence = int(math.Round(100 * proba[ClassPhishing]))
			}
		}
		return model.NewVerdict(model.LabelPhishing, confidence, ReasonPhishing)
	case ClassSafe:
		return model.NewVerdict(model.LabelSafe, SafeConfidence, ReasonSafe)
	default:
		s.logger.Debug("classifier returned unknown class", "class", class)
		return nil
	}
}
