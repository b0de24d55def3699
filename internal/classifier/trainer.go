package classifier

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/nao1215/phishguard/internal/model"
)

// Trainer produces a fresh model. It is used by LoadOrRecover and by the
// train command.
type Trainer interface {
	Train(ctx context.Context) (*Logistic, error)
}

// Extractor maps a URL to its feature vector.
type Extractor interface {
	Extract(raw string) model.FeatureVector
}

// Sample is one labelled training URL.
type Sample struct {
	URL   string
	Label int
}

// Synthetic dataset vocabulary. Safe samples are brand sites over https;
// phishing samples impersonate the same brands on throwaway domains.
var (
	trustedBrands = []string{"google", "facebook", "amazon", "youtube", "wikipedia", "twitter", "linkedin", "netflix", "microsoft", "apple"}
	trustedTLDs   = []string{".com", ".org", ".net", ".edu", ".gov"}
	badWords      = []string{"secure", "login", "account", "verify", "update", "banking", "confirm", "wallet", "bonus"}
	badTLDs       = []string{".xyz", ".top", ".club", ".info", ".site"}
)

const pathAlphabet = "abcdefghijklmnopqrstuvwxyz/"

// SyntheticTrainer trains a Logistic model on a generated dataset.
type SyntheticTrainer struct {
	// Samples is the dataset size, split evenly between classes.
	Samples int

	// Seed makes the dataset and the result reproducible.
	Seed int64

	// Extractor computes features; it must be the one used at inference.
	Extractor Extractor

	// Epochs, LearningRate and L2 tune gradient descent.
	// Zero values select 300, 0.5 and 0.001; a negative L2 disables it.
	Epochs       int
	LearningRate float64
	L2           float64
}

// Dataset generates the labelled URLs.
func (t *SyntheticTrainer) Dataset() []Sample {
	rng := rand.New(rand.NewPCG(uint64(t.Seed), 0x9e3779b97f4a7c15)) //nolint:gosec // Reproducible dataset, not crypto
	half := t.Samples / 2
	out := make([]Sample, 0, half*2)

	for range half {
		n := 5 + rng.IntN(11)
		var path strings.Builder
		for range n {
			path.WriteByte(pathAlphabet[rng.IntN(len(pathAlphabet))])
		}
		out = append(out, Sample{
			URL:   fmt.Sprintf("https://www.%s%s/%s", pick(rng, trustedBrands), pick(rng, trustedTLDs), path.String()),
			Label: ClassSafe,
		})
	}
	for range half {
		out = append(out, Sample{
			URL:   fmt.Sprintf("http://%s-%s%s/login", pick(rng, trustedBrands), pick(rng, badWords), pick(rng, badTLDs)),
			Label: ClassPhishing,
		})
	}
	return out
}

// Train implements Trainer.
func (t *SyntheticTrainer) Train(ctx context.Context) (*Logistic, error) {
	if t.Extractor == nil {
		return nil, fmt.Errorf("synthetic trainer: no feature extractor")
	}
	return Fit(ctx, t.Dataset(), t.Extractor, t.Epochs, t.LearningRate, t.L2)
}

// Fit trains a Logistic model with batch gradient descent and L2
// regularisation over standardised features. Zero hyperparameters select
// the SyntheticTrainer defaults.
func Fit(ctx context.Context, samples []Sample, ex Extractor, epochs int, lr, l2 float64) (*Logistic, error) {
	if epochs <= 0 {
		epochs = 300
	}
	if lr <= 0 {
		lr = 0.5
	}
	if l2 < 0 {
		l2 = 0
	} else if l2 == 0 {
		l2 = 0.001
	}

	var pos, neg int
	xs := make([]model.FeatureVector, len(samples))
	for i, s := range samples {
		xs[i] = ex.Extract(s.URL)
		if s.Label == ClassPhishing {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil, ErrInsufficientData
	}

	means, scales := standardise(xs)
	n := float64(len(xs))

	for i := range xs {
		for j := range model.FeatureCount {
			xs[i][j] = (xs[i][j] - means[j]) / scales[j]
		}
	}

	weights := make([]float64, model.FeatureCount)
	var bias float64
	grad := make([]float64, model.FeatureCount)

	for epoch := range epochs {
		if epoch%50 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		clear(grad)
		var gradBias float64
		for i, x := range xs {
			z := bias
			for j := range model.FeatureCount {
				z += weights[j] * x[j]
			}
			diff := sigmoid(z) - float64(samples[i].Label)
			for j := range model.FeatureCount {
				grad[j] += diff * x[j]
			}
			gradBias += diff
		}
		for j := range model.FeatureCount {
			weights[j] -= lr * (grad[j]/n + l2*weights[j])
		}
		bias -= lr * gradBias / n
	}

	return &Logistic{
		Version:      ArtifactVersion,
		FeatureNames: append([]string(nil), model.FeatureNames[:]...),
		Means:        means,
		Scales:       scales,
		Weights:      weights,
		Bias:         bias,
	}, nil
}

// Accuracy returns the share of samples m classifies correctly.
func Accuracy(m Model, samples []Sample, ex Extractor) (float64, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	correct := 0
	for _, s := range samples {
		class, err := m.Predict(ex.Extract(s.URL))
		if err != nil {
			return 0, err
		}
		if class == s.Label {
			correct++
		}
	}
	return float64(correct) / float64(len(samples)), nil
}

// standardise returns per-feature means and standard deviations. Constant
// features get scale 1 so they contribute nothing after centring.
func standardise(xs []model.FeatureVector) ([]float64, []float64) {
	means := make([]float64, model.FeatureCount)
	scales := make([]float64, model.FeatureCount)
	n := float64(len(xs))

	for _, x := range xs {
		for j := range model.FeatureCount {
			means[j] += x[j]
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, x := range xs {
		for j := range model.FeatureCount {
			d := x[j] - means[j]
			scales[j] += d * d
		}
	}
	for j := range scales {
		scales[j] = math.Sqrt(scales[j] / n)
		if scales[j] < 1e-9 {
			scales[j] = 1
		}
	}
	return means, scales
}

func pick(rng *rand.Rand, list []string) string {
	return list[rng.IntN(len(list))]
}
