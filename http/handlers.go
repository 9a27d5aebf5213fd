package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"flightdelay/ml"
	"flightdelay/monitoring"
)

// DelayPredictor is the slice of the classifier the handlers need.
type DelayPredictor interface {
	Predict(features [][]float64) ([]int, error)
	Generation() int64
}

var delayModel DelayPredictor

// SetModel injects the classifier used by the predict handler. The
// prediction cache is purged because cached labels belong to whatever
// model produced them.
func SetModel(model DelayPredictor) {
	delayModel = model
	predictionCache.Purge()
}

const predictionCacheSize = 4096

// cacheKey includes the model generation so a refit or hot reload can
// never serve a stale label.
type cacheKey struct {
	opera      string
	mes        int
	tipoVuelo  string
	generation int64
}

var predictionCache, _ = lru.New[cacheKey, int](predictionCacheSize)

// DefaultAirlines is the closed set of known carriers. The config file
// may replace it.
var DefaultAirlines = []string{
	"Aerolineas Argentinas",
	"Aeromexico",
	"Air Canada",
	"Air France",
	"Alitalia",
	"American Airlines",
	"Austral",
	"Avianca",
	"British Airways",
	"Copa Air",
	"Delta Air",
	"Gol Trans",
	"Grupo LATAM",
	"Iberia",
	"JetSmart SPA",
	"K.L.M.",
	"Lacsa",
	"Latin American Wings",
	"Oceanair Linhas Aereas",
	"Plus Ultra Lineas Aereas",
	"Qantas Airways",
	"Sky Airline",
	"United Airlines",
}

var knownAirlines = toSet(DefaultAirlines)

// SetAirlines overrides the known-carrier set.
func SetAirlines(names []string) {
	if len(names) > 0 {
		knownAirlines = toSet(names)
	}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

type flightPayload struct {
	Opera     string `json:"OPERA"`
	Mes       int    `json:"MES"`
	TipoVuelo string `json:"TIPOVUELO"`
}

type predictRequest struct {
	Flights []flightPayload `json:"flights"`
}

type predictResponse struct {
	Predictions []int `json:"predictions"`
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/predict", handlePredict)
	mux.HandleFunc("GET /api/metrics", handleMetrics)
}

// handleHealth reports liveness only; it succeeds whether or not a model
// is loaded.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, monitoring.Default().Snapshot())
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	monitoring.Default().PredictRequest()

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Flights) == 0 {
		respondError(w, http.StatusBadRequest, "flights must not be empty")
		return
	}

	// The whole batch is validated before anything reaches the encoder:
	// the encoder itself zeroes unknown categories instead of rejecting
	// them, so this is the only gate.
	if err := validateFlights(req.Flights); err != nil {
		monitoring.Default().ValidationRejected()
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if delayModel == nil {
		respondError(w, http.StatusInternalServerError, "model not trained")
		return
	}

	generation := delayModel.Generation()
	predictions := make([]int, len(req.Flights))
	pending := make([]int, 0, len(req.Flights))
	records := make([]ml.FlightRecord, 0, len(req.Flights))
	for i, flight := range req.Flights {
		key := cacheKey{flight.Opera, flight.Mes, flight.TipoVuelo, generation}
		if label, ok := predictionCache.Get(key); ok {
			monitoring.Default().CacheHit()
			predictions[i] = label
			continue
		}
		pending = append(pending, i)
		records = append(records, ml.FlightRecord{Opera: flight.Opera, Mes: flight.Mes, TipoVuelo: flight.TipoVuelo})
	}

	if len(pending) > 0 {
		features := ml.EncodeFeatures(records)
		labels, err := delayModel.Predict(features)
		if err != nil {
			if errors.Is(err, ml.ErrNotTrained) {
				respondError(w, http.StatusInternalServerError, "model not trained")
				return
			}
			zap.L().Error("prediction failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "prediction failed")
			return
		}
		if len(labels) != len(pending) {
			zap.L().Error("prediction count mismatch",
				zap.Int("expected", len(pending)), zap.Int("got", len(labels)))
			respondError(w, http.StatusInternalServerError, "prediction failed")
			return
		}
		for j, i := range pending {
			predictions[i] = labels[j]
			flight := req.Flights[i]
			predictionCache.Add(cacheKey{flight.Opera, flight.Mes, flight.TipoVuelo, generation}, labels[j])
		}
	}

	monitoring.Default().RecordsScored(len(req.Flights))
	respondJSON(w, predictResponse{Predictions: predictions})
}

func validateFlights(flights []flightPayload) error {
	for i, flight := range flights {
		if flight.Mes < 1 || flight.Mes > 12 {
			return fmt.Errorf("flight %d: MES must be between 1 and 12, got %d", i, flight.Mes)
		}
		if flight.TipoVuelo != "I" && flight.TipoVuelo != "N" {
			return fmt.Errorf("flight %d: TIPOVUELO must be \"I\" or \"N\", got %q", i, flight.TipoVuelo)
		}
		if _, ok := knownAirlines[flight.Opera]; !ok {
			return fmt.Errorf("flight %d: unknown airline %q", i, flight.Opera)
		}
	}
	return nil
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		zap.L().Error("failed to encode error response", zap.Error(err))
	}
}
