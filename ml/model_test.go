package ml

import (
	"errors"
	"testing"
)

func trainingMatrix() ([][]float64, []int) {
	// delayed whenever the first column is set
	features := [][]float64{
		{1, 0}, {1, 1}, {1, 0}, {1, 1},
		{0, 0}, {0, 1}, {0, 0}, {0, 1},
	}
	labels := []int{1, 1, 1, 1, 0, 0, 0, 0}
	return features, labels
}

func TestPredictBeforeFit(t *testing.T) {
	model := NewDelayModel(nil)

	if model.Trained() {
		t.Fatal("expected untrained model")
	}
	_, err := model.Predict([][]float64{{1, 0}})
	if !errors.Is(err, ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestFitWithoutPositivesIsNoOp(t *testing.T) {
	model := NewDelayModel(nil)

	features := [][]float64{{1, 0}, {0, 1}}
	if err := model.Fit(features, []int{0, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.Trained() {
		t.Fatal("expected model to stay untrained")
	}
	if _, err := model.Predict(features); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestFitWithoutPositivesKeepsPriorModel(t *testing.T) {
	model := NewDelayModel(nil)
	features, labels := trainingMatrix()
	if err := model.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	generation := model.Generation()

	if err := model.Fit(features, []int{0, 0, 0, 0, 0, 0, 0, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !model.Trained() {
		t.Fatal("expected prior model to survive aborted fit")
	}
	if model.Generation() != generation {
		t.Fatal("aborted fit must not bump the generation")
	}
}

func TestFitThenPredict(t *testing.T) {
	model := NewDelayModel(nil)
	features, labels := trainingMatrix()

	if err := model.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !model.Trained() {
		t.Fatal("expected trained model")
	}

	predictions, err := model.Predict(features)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(predictions) != len(features) {
		t.Fatalf("expected %d predictions, got %d", len(features), len(predictions))
	}
	for i, label := range labels {
		if predictions[i] != label {
			t.Fatalf("row %d: expected %d, got %d", i, label, predictions[i])
		}
	}
}

func TestFitRejectsInvalidLabels(t *testing.T) {
	model := NewDelayModel(nil)
	if err := model.Fit([][]float64{{1}}, []int{3}); err == nil {
		t.Fatal("expected error for out-of-range label")
	}
}

func TestFitBumpsGeneration(t *testing.T) {
	model := NewDelayModel(nil)
	features, labels := trainingMatrix()

	before := model.Generation()
	if err := model.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.Generation() <= before {
		t.Fatal("expected generation to increase after fit")
	}
}
