package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeModel struct {
	labels     []int
	err        error
	generation int64
	calls      int
}

func (f *fakeModel) Predict(features [][]float64) ([]int, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]int, len(features))
	copy(out, f.labels)
	return out, nil
}

func (f *fakeModel) Generation() int64 {
	return f.generation
}

func newTestMux() *http.ServeMux {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	return mux
}

func postPredict(t *testing.T, mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	mux := newTestMux()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected status: %q", payload["status"])
	}
}

func TestHandleMetrics(t *testing.T) {
	mux := newTestMux()

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := payload["predict_requests"]; !ok {
		t.Fatal("expected predict_requests counter")
	}
}

func TestPredictRejectsMonthOutOfRange(t *testing.T) {
	mux := newTestMux()
	model := &fakeModel{labels: []int{0}}
	SetModel(model)
	defer SetModel(nil)

	w := postPredict(t, mux, `{"flights":[{"OPERA":"Grupo LATAM","MES":13,"TIPOVUELO":"I"}]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "between 1 and 12") {
		t.Fatalf("expected month range in error, got %s", w.Body.String())
	}
	if model.calls != 0 {
		t.Fatal("rejected batch must not reach the model")
	}
}

func TestPredictRejectsUnknownAirline(t *testing.T) {
	mux := newTestMux()
	model := &fakeModel{labels: []int{0}}
	SetModel(model)
	defer SetModel(nil)

	w := postPredict(t, mux, `{"flights":[{"OPERA":"NotAnAirline","MES":5,"TIPOVUELO":"N"}]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "unknown airline") {
		t.Fatalf("expected airline error, got %s", w.Body.String())
	}
	if model.calls != 0 {
		t.Fatal("rejected batch must not reach the model")
	}
}

func TestPredictRejectsBadScope(t *testing.T) {
	mux := newTestMux()
	model := &fakeModel{labels: []int{0}}
	SetModel(model)
	defer SetModel(nil)

	w := postPredict(t, mux, `{"flights":[{"OPERA":"Grupo LATAM","MES":5,"TIPOVUELO":"X"}]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "TIPOVUELO") {
		t.Fatalf("expected scope error, got %s", w.Body.String())
	}
}

func TestPredictRejectsWholeBatchOnOneBadRecord(t *testing.T) {
	mux := newTestMux()
	model := &fakeModel{labels: []int{0, 0}}
	SetModel(model)
	defer SetModel(nil)

	w := postPredict(t, mux, `{"flights":[
		{"OPERA":"Grupo LATAM","MES":5,"TIPOVUELO":"N"},
		{"OPERA":"Grupo LATAM","MES":0,"TIPOVUELO":"N"}
	]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if model.calls != 0 {
		t.Fatal("partial processing of a rejected batch")
	}
}

func TestPredictRejectsEmptyBatch(t *testing.T) {
	mux := newTestMux()

	w := postPredict(t, mux, `{"flights":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPredictRejectsInvalidBody(t *testing.T) {
	mux := newTestMux()

	w := postPredict(t, mux, `{notjson`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSetAirlinesOverride(t *testing.T) {
	mux := newTestMux()
	model := &fakeModel{labels: []int{0}}
	SetModel(model)
	defer SetModel(nil)

	SetAirlines([]string{"Test Air"})
	defer SetAirlines(DefaultAirlines)

	w := postPredict(t, mux, `{"flights":[{"OPERA":"Test Air","MES":5,"TIPOVUELO":"N"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = postPredict(t, mux, `{"flights":[{"OPERA":"Grupo LATAM","MES":5,"TIPOVUELO":"N"}]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 after override, got %d", w.Code)
	}
}
