package ml

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrNotTrained is returned by Predict when no fitted classifier is
// available. Callers surface it as a server-state error, never as a
// silent default prediction.
var ErrNotTrained = errors.New("model not trained")

// DelayModel owns the classifier shared by concurrent prediction
// requests. Readers load the current snapshot through an atomic pointer
// and never block; Fit and Reload build a complete replacement before
// swapping it in, so a reader observes either the old model or the new
// one, never a half-updated state.
type DelayModel struct {
	store *ModelStore

	current    atomic.Pointer[LogisticRegression]
	generation atomic.Int64

	// serializes fit-and-persist; at most one in flight per process
	fitMu sync.Mutex
}

// NewDelayModel builds the wrapper and attempts to load a persisted
// snapshot. Any load failure degrades to the Untrained state: the
// service starts either way.
func NewDelayModel(store *ModelStore) *DelayModel {
	m := &DelayModel{store: store}
	if store == nil {
		return m
	}
	model, err := store.Load()
	switch {
	case err == nil:
		m.swap(model)
		zap.L().Info("model snapshot loaded", zap.String("path", store.Path()))
	case errors.Is(err, ErrNoSnapshot):
		zap.L().Warn("model snapshot not found, starting untrained", zap.String("path", store.Path()))
	default:
		zap.L().Error("model snapshot unusable, starting untrained",
			zap.String("path", store.Path()), zap.Error(err))
	}
	return m
}

func (m *DelayModel) swap(model *LogisticRegression) {
	m.current.Store(model)
	m.generation.Add(1)
}

// Trained reports whether a fitted classifier is available.
func (m *DelayModel) Trained() bool {
	return m.current.Load() != nil
}

// Generation increments on every successful fit or reload. Caches keyed
// by it can never serve predictions from a replaced model.
func (m *DelayModel) Generation() int64 {
	return m.generation.Load()
}

// Fit trains a new classifier on an encoded matrix and its labels,
// correcting class imbalance by weighting the delayed class with
// count(0)/count(1). A label vector with no positive examples aborts the
// fit and keeps the prior state: the scale would divide by zero, and a
// model trained on one class predicts nothing useful. A successful fit
// swaps the new model in and persists it; a persist failure keeps the
// in-memory model usable for this run.
func (m *DelayModel) Fit(features [][]float64, labels []int) error {
	m.fitMu.Lock()
	defer m.fitMu.Unlock()

	var n0, n1 int
	for _, y := range labels {
		switch y {
		case 0:
			n0++
		case 1:
			n1++
		default:
			return fmt.Errorf("label out of range: %d", y)
		}
	}
	if n1 == 0 {
		zap.L().Error("no positive samples in target, training aborted", zap.Int("rows", len(labels)))
		return nil
	}
	scale := float64(n0) / float64(n1)

	model, err := fitLogistic(features, labels, [2]float64{1, scale})
	if err != nil {
		return err
	}
	m.swap(model)
	zap.L().Info("model training complete",
		zap.Int("rows", len(labels)),
		zap.Int("positives", n1),
		zap.Float64("class_scale", scale))

	if m.store != nil {
		if err := m.store.Save(model); err != nil {
			zap.L().Error("model snapshot not persisted, in-memory model remains usable",
				zap.String("path", m.store.Path()), zap.Error(err))
		}
	}
	return nil
}

// Predict scores each row of an encoded matrix, preserving input order.
func (m *DelayModel) Predict(features [][]float64) ([]int, error) {
	model := m.current.Load()
	if model == nil {
		return nil, ErrNotTrained
	}
	out := make([]int, len(features))
	for i, row := range features {
		label, err := model.PredictRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = label
	}
	return out, nil
}

// Reload re-reads the persisted snapshot and swaps it in atomically.
func (m *DelayModel) Reload() error {
	if m.store == nil {
		return errors.New("no model store configured")
	}
	model, err := m.store.Load()
	if err != nil {
		return err
	}
	m.swap(model)
	return nil
}
