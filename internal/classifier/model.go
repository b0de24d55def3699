package classifier

import (
	"math"

	"github.com/nao1215/phishguard/internal/model"
)

// Class labels produced by Predict.
const (
	ClassSafe     = 0
	ClassPhishing = 1
)

// Model scores a feature vector. Predict returns ClassSafe or ClassPhishing.
type Model interface {
	Predict(v model.FeatureVector) (int, error)
}

// ProbabilityModel is a Model that also reports class probabilities
// [P(safe), P(phishing)].
type ProbabilityModel interface {
	Model
	PredictProba(v model.FeatureVector) ([2]float64, error)
}

// ArtifactVersion is the current artifact format version.
const ArtifactVersion = 1

// Logistic is a logistic regression over standardised features.
type Logistic struct {
	Version      int       `json:"version"`
	FeatureNames []string  `json:"feature_names"`
	Means        []float64 `json:"means"`
	Scales       []float64 `json:"scales"`
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	Checksum     string    `json:"checksum"`
}

var _ ProbabilityModel = (*Logistic)(nil)

// PredictProba returns [P(safe), P(phishing)].
func (l *Logistic) PredictProba(v model.FeatureVector) ([2]float64, error) {
	if err := l.validate(); err != nil {
		return [2]float64{}, err
	}
	z := l.Bias
	for i := range model.FeatureCount {
		z += l.Weights[i] * (v[i] - l.Means[i]) / l.Scales[i]
	}
	p := sigmoid(z)
	return [2]float64{1 - p, p}, nil
}

// Predict returns ClassPhishing when P(phishing) >= 0.5.
func (l *Logistic) Predict(v model.FeatureVector) (int, error) {
	proba, err := l.PredictProba(v)
	if err != nil {
		return 0, err
	}
	if proba[ClassPhishing] >= 0.5 {
		return ClassPhishing, nil
	}
	return ClassSafe, nil
}

// validate checks shapes, feature order and numeric sanity.
func (l *Logistic) validate() error {
	if l == nil {
		return ErrUnavailable
	}
	if !model.SameFeatureOrder(l.FeatureNames) {
		return ErrCorruptArtifact
	}
	if len(l.Means) != model.FeatureCount || len(l.Scales) != model.FeatureCount || len(l.Weights) != model.FeatureCount {
		return ErrCorruptArtifact
	}
	if !finite(l.Bias) {
		return ErrCorruptArtifact
	}
	for i := range model.FeatureCount {
		if !finite(l.Means[i]) || !finite(l.Weights[i]) || !finite(l.Scales[i]) || l.Scales[i] <= 0 {
			return ErrCorruptArtifact
		}
	}
	return nil
}

func sigmoid(z float64) float64 {
	// Split on sign to avoid overflow in math.Exp.
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
