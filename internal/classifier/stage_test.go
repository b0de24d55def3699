package classifier

import (
	"errors"
	"math"
	"testing"

	"github.com/nao1215/phishguard/internal/model"
)

type fixedModel struct {
	class int
	err   error
}

func (f fixedModel) Predict(model.FeatureVector) (int, error) {
	return f.class, f.err
}

type probaModel struct {
	fixedModel
	p1 float64
}

func (p probaModel) PredictProba(model.FeatureVector) ([2]float64, error) {
	return [2]float64{1 - p.p1, p.p1}, nil
}

type panickingModel struct{}

func (panickingModel) Predict(model.FeatureVector) (int, error) {
	panic("index out of range")
}

func TestStageCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		model  Model
		label  model.Label
		conf   int
		reason string
	}{
		{name: "unavailable", model: nil},
		{name: "phishing without probabilities", model: fixedModel{class: 1}, label: model.LabelPhishing, conf: 90, reason: ReasonPhishing},
		{name: "phishing with probabilities", model: probaModel{fixedModel{class: 1}, 0.876}, label: model.LabelPhishing, conf: 88, reason: ReasonPhishing},
		{name: "NaN probability", model: probaModel{fixedModel{class: 1}, math.NaN()}, label: model.LabelPhishing, conf: 90, reason: ReasonPhishing},
		{name: "infinite probability", model: probaModel{fixedModel{class: 1}, math.Inf(1)}, label: model.LabelPhishing, conf: 90, reason: ReasonPhishing},
		{name: "safe", model: probaModel{fixedModel{class: 0}, 0.1}, label: model.LabelSafe, conf: 95, reason: ReasonSafe},
		{name: "prediction error", model: fixedModel{err: errors.New("bad input")}},
		{name: "unknown class", model: fixedModel{class: 7}},
		{name: "panic", model: panickingModel{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewStage(tt.model, nil)
			v := s.Check(model.FeatureVector{})
			if tt.label == "" {
				if v != nil {
					t.Errorf("expected abstain, got %s", v)
				}
				return
			}
			if v == nil || v.Label != tt.label || v.Confidence != tt.conf || v.Reason != tt.reason {
				t.Errorf("Check() = %s, want %s (%d%%): %s", v, tt.label, tt.conf, tt.reason)
			}
		})
	}
}

func TestStageAvailable(t *testing.T) {
	t.Parallel()

	if NewStage(nil, nil).Available() {
		t.Error("stage without model must be unavailable")
	}
	if !NewStage(fixedModel{}, nil).Available() {
		t.Error("stage with model must be available")
	}
}
