package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/phishguard/internal/config"
	"github.com/nao1215/phishguard/internal/lexical"
	"github.com/nao1215/phishguard/internal/model"
)

func testExtractor() *lexical.Extractor {
	return lexical.New(config.DefaultRules().SuspiciousTLDs)
}

func testTrainer() *SyntheticTrainer {
	return &SyntheticTrainer{Samples: 400, Seed: 7, Extractor: testExtractor()}
}

func trainedModel(t *testing.T) *Logistic {
	t.Helper()
	m, err := testTrainer().Train(context.Background())
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}
	return m
}

func TestSyntheticDataset(t *testing.T) {
	t.Parallel()

	tr := testTrainer()
	a, b := tr.Dataset(), tr.Dataset()
	if len(a) != 400 {
		t.Fatalf("expected 400 samples, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("dataset is not reproducible at %d: %v vs %v", i, a[i], b[i])
		}
	}

	var safe, phish int
	for _, s := range a {
		switch s.Label {
		case ClassSafe:
			safe++
			if !strings.HasPrefix(s.URL, "https://www.") {
				t.Errorf("unexpected safe sample %q", s.URL)
			}
		case ClassPhishing:
			phish++
			if !strings.HasPrefix(s.URL, "http://") || !strings.HasSuffix(s.URL, "/login") {
				t.Errorf("unexpected phishing sample %q", s.URL)
			}
		}
	}
	if safe != 200 || phish != 200 {
		t.Errorf("expected balanced classes, got %d/%d", safe, phish)
	}
}

func TestTrainSeparatesSyntheticClasses(t *testing.T) {
	t.Parallel()

	m := trainedModel(t)
	ex := testExtractor()

	holdout := (&SyntheticTrainer{Samples: 200, Seed: 99}).Dataset()
	acc, err := Accuracy(m, holdout, ex)
	if err != nil {
		t.Fatalf("Accuracy failed: %v", err)
	}
	if acc < 0.95 {
		t.Errorf("expected accuracy >= 0.95 on synthetic holdout, got %.3f", acc)
	}

	class, err := m.Predict(ex.Extract("http://amazon-wallet.top/login"))
	if err != nil || class != ClassPhishing {
		t.Errorf("expected phishing class, got %d (%v)", class, err)
	}
	class, err = m.Predict(ex.Extract("https://www.wikipedia.org/wiki/go"))
	if err != nil || class != ClassSafe {
		t.Errorf("expected safe class, got %d (%v)", class, err)
	}
}

func TestFitRequiresBothClasses(t *testing.T) {
	t.Parallel()

	_, err := Fit(context.Background(), []Sample{{URL: "https://a.example/", Label: ClassSafe}}, testExtractor(), 10, 0, 0)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestFitHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := testTrainer().Train(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPredictProba(t *testing.T) {
	t.Parallel()

	m := trainedModel(t)
	proba, err := m.PredictProba(testExtractor().Extract("http://google-verify.xyz/login"))
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	if sum := proba[0] + proba[1]; sum < 0.999 || sum > 1.001 {
		t.Errorf("probabilities must sum to 1, got %v", proba)
	}

	var nilModel *Logistic
	if _, err := nilModel.Predict(model.FeatureVector{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for nil model, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "model.json")
		m := trainedModel(t)
		if err := Save(path, m); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if m.Checksum == "" {
			t.Error("Save must set the checksum")
		}

		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		v := testExtractor().Extract("http://apple-bonus.club/login")
		a, _ := m.PredictProba(v)
		b, _ := loaded.PredictProba(v)
		if a != b {
			t.Errorf("loaded model disagrees: %v vs %v", a, b)
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), "none.json"))
		if !errors.Is(err, ErrArtifactNotFound) {
			t.Errorf("expected ErrArtifactNotFound, got %v", err)
		}
	})

	corrupt := []struct {
		name   string
		mutate func(*Logistic)
		raw    string
	}{
		{name: "garbage", raw: "not json"},
		{name: "tampered weight", mutate: func(l *Logistic) { l.Weights[0] += 1 }},
		{name: "reordered features", mutate: func(l *Logistic) {
			l.FeatureNames[0], l.FeatureNames[1] = l.FeatureNames[1], l.FeatureNames[0]
		}},
		{name: "wrong version", mutate: func(l *Logistic) { l.Version = 99 }},
		{name: "short weights", mutate: func(l *Logistic) { l.Weights = l.Weights[:3] }},
	}

	for _, tt := range corrupt {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "model.json")
			data := []byte(tt.raw)
			if tt.mutate != nil {
				m := trainedModel(t)
				if err := Save(path, m); err != nil {
					t.Fatalf("Save failed: %v", err)
				}
				tt.mutate(m)
				var err error
				if data, err = json.Marshal(m); err != nil {
					t.Fatalf("failed to encode: %v", err)
				}
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				t.Fatalf("failed to write artifact: %v", err)
			}

			if _, err := Load(path); !errors.Is(err, ErrCorruptArtifact) {
				t.Errorf("expected ErrCorruptArtifact, got %v", err)
			}
		})
	}
}

type failingTrainer struct {
	calls int
}

func (f *failingTrainer) Train(context.Context) (*Logistic, error) {
	f.calls++
	return nil, errors.New("no training data")
}

type countingTrainer struct {
	inner Trainer
	calls int
}

func (c *countingTrainer) Train(ctx context.Context) (*Logistic, error) {
	c.calls++
	return c.inner.Train(ctx)
}

func TestLoadOrRecover(t *testing.T) {
	t.Parallel()

	t.Run("loads existing artifact without training", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "model.json")
		if err := Save(path, trainedModel(t)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		tr := &countingTrainer{inner: testTrainer()}

		m, status, err := LoadOrRecover(context.Background(), path, tr, nil)
		if err != nil || m == nil || status != StatusLoaded {
			t.Fatalf("unexpected result: %v %v %v", m, status, err)
		}
		if tr.calls != 0 {
			t.Errorf("trainer must not run, ran %d times", tr.calls)
		}
	})

	t.Run("retrains missing artifact once", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "model.json")
		tr := &countingTrainer{inner: testTrainer()}

		m, status, err := LoadOrRecover(context.Background(), path, tr, nil)
		if err != nil || m == nil || status != StatusRecovered {
			t.Fatalf("unexpected result: %v %v %v", m, status, err)
		}
		if tr.calls != 1 {
			t.Errorf("expected exactly one training run, got %d", tr.calls)
		}
		if _, err := Load(path); err != nil {
			t.Errorf("recovered artifact must be on disk: %v", err)
		}
	})

	t.Run("replaces corrupt artifact", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "model.json")
		if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
			t.Fatalf("failed to write artifact: %v", err)
		}

		m, status, err := LoadOrRecover(context.Background(), path, testTrainer(), nil)
		if err != nil || m == nil || status != StatusRecovered {
			t.Fatalf("unexpected result: %v %v %v", m, status, err)
		}
	})

	t.Run("failed retraining leaves classifier unavailable", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "model.json")
		if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
			t.Fatalf("failed to write artifact: %v", err)
		}
		tr := &failingTrainer{}

		m, status, err := LoadOrRecover(context.Background(), path, tr, nil)
		if err == nil {
			t.Error("expected error")
		}
		if m != nil {
			t.Errorf("expected nil model, got %v", m)
		}
		if status != StatusUnavailable {
			t.Errorf("expected StatusUnavailable, got %v", status)
		}
		if tr.calls != 1 {
			t.Errorf("expected exactly one training attempt, got %d", tr.calls)
		}
		if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
			t.Error("corrupt artifact must be deleted")
		}
	})

	t.Run("nil trainer", func(t *testing.T) {
		t.Parallel()

		m, status, err := LoadOrRecover(context.Background(), filepath.Join(t.TempDir(), "m.json"), nil, nil)
		if err == nil || m != nil || status != StatusUnavailable {
			t.Errorf("unexpected result: %v %v %v", m, status, err)
		}
	})
}

func TestLoadStatusString(t *testing.T) {
	t.Parallel()

	for status, want := range map[LoadStatus]string{
		StatusLoaded:      "loaded",
		StatusRecovered:   "recovered",
		StatusUnavailable: "unavailable",
		LoadStatus(9):     "unknown",
	} {
		if got := status.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
