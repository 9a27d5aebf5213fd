package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	// ErrNoSnapshot means the artifact file does not exist. Starting
	// without one is a normal cold start, not a failure.
	ErrNoSnapshot = errors.New("no model snapshot")

	// ErrCorruptSnapshot means the artifact exists but cannot be decoded
	// into a usable classifier.
	ErrCorruptSnapshot = errors.New("corrupt model snapshot")
)

type modelSnapshot struct {
	Weights     []float64  `json:"weights"`
	Bias        float64    `json:"bias"`
	ClassWeight [2]float64 `json:"class_weight"`
	TrainedAt   time.Time  `json:"trained_at"`
}

// ModelStore persists a single classifier snapshot at a fixed path.
type ModelStore struct {
	path string
}

func NewModelStore(path string) *ModelStore {
	return &ModelStore{path: path}
}

func (s *ModelStore) Path() string {
	return s.path
}

// Save writes a snapshot of the fitted classifier.
func (s *ModelStore) Save(model *LogisticRegression) error {
	if model == nil || len(model.Weights) == 0 {
		return errors.New("model not trained")
	}
	snap := modelSnapshot{
		Weights:     model.Weights,
		Bias:        model.Bias,
		ClassWeight: model.ClassWeight,
		TrainedAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, payload, 0o600)
}

// Load reads the snapshot back. Callers distinguish a missing artifact
// (ErrNoSnapshot) from an unreadable one (ErrCorruptSnapshot or an IO
// error) and decide how to degrade; Load itself never guesses.
func (s *ModelStore) Load() (*LogisticRegression, error) {
	payload, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	var snap modelSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if len(snap.Weights) == 0 {
		return nil, fmt.Errorf("%w: empty weight vector", ErrCorruptSnapshot)
	}
	return &LogisticRegression{
		Weights:     snap.Weights,
		Bias:        snap.Bias,
		ClassWeight: snap.ClassWeight,
	}, nil
}
