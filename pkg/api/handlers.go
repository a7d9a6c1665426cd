package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/richard-senior/apex/internal/logger"
	"github.com/richard-senior/apex/pkg/espn"
	"github.com/richard-senior/apex/pkg/predict"
	"github.com/richard-senior/apex/pkg/store"
	"github.com/richard-senior/apex/pkg/tools"
	"github.com/richard-senior/apex/pkg/transport"
)

// maxBodyBytes caps a prediction request body
const maxBodyBytes = 1 << 20

// Handler contains dependencies for HTTP handlers
type Handler struct {
	tb *tools.Toolbox
}

// NewHandler creates a new handler over the shared toolbox
func NewHandler(tb *tools.Toolbox) *Handler {
	return &Handler{tb: tb}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "apex",
		"history": h.tb.Store != nil,
		"espn":    h.tb.ESPN != nil,
	})
}

// Leagues lists the supported ESPN competitions
func (h *Handler) Leagues(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, espn.Leagues)
}

// Predict runs the engine over a MatchInput body. ?store=false skips the history.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var in predict.MatchInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	res, err := h.tb.Predict(in, r.URL.Query().Get("store") != "false")
	if err != nil {
		var inputErr *predict.InputError
		if errors.As(err, &inputErr) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Predictions lists stored predictions, newest first
func (h *Handler) Predictions(w http.ResponseWriter, r *http.Request) {
	if h.tb.Store == nil {
		respondError(w, http.StatusServiceUnavailable, "prediction history is not configured")
		return
	}
	limit := store.DefaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	var (
		recs []*store.PredictionRecord
		err  error
	)
	if eventID := r.URL.Query().Get("eventId"); eventID != "" {
		recs, err = h.tb.Store.PredictionsForEvent(eventID, limit)
	} else {
		recs, err = h.tb.Store.RecentPredictions(limit)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":       len(recs),
		"predictions": recs,
	})
}

// Prediction returns one stored prediction
func (h *Handler) Prediction(w http.ResponseWriter, r *http.Request) {
	if h.tb.Store == nil {
		respondError(w, http.StatusServiceUnavailable, "prediction history is not configured")
		return
	}
	rec, err := h.tb.Store.GetPrediction(chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "prediction not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Fixtures lists a league's scoreboard. ?date=YYYY-MM-DD picks the day.
func (h *Handler) Fixtures(w http.ResponseWriter, r *http.Request) {
	if h.tb.ESPN == nil {
		respondError(w, http.StatusServiceUnavailable, "ESPN client is not configured")
		return
	}
	var day time.Time
	if s := r.URL.Query().Get("date"); s != "" {
		var err error
		if day, err = time.Parse("2006-01-02", s); err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}
	fixtures, err := h.tb.ESPN.FetchScoreboard(r.Context(), chi.URLParam(r, "league"), day)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fixtures)
}

// FixturePrediction assembles an ESPN event and predicts it
func (h *Handler) FixturePrediction(w http.ResponseWriter, r *http.Request) {
	if h.tb.ESPN == nil {
		respondError(w, http.StatusServiceUnavailable, "ESPN client is not configured")
		return
	}
	in, err := h.tb.ESPN.AnalyzeEvent(r.Context(), chi.URLParam(r, "league"), chi.URLParam(r, "eventID"))
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	res, err := h.tb.Predict(in, r.URL.Query().Get("store") != "false")
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"input":  in,
		"result": res,
	})
}

// respondUpstreamError maps an ESPN failure to a status
func respondUpstreamError(w http.ResponseWriter, err error) {
	var statusErr *transport.StatusError
	switch {
	case errors.Is(err, espn.ErrUnknownLeague):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound:
		respondError(w, http.StatusNotFound, err.Error())
	default:
		logger.Warn("ESPN request failed", err)
		respondError(w, http.StatusBadGateway, err.Error())
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", err)
	}
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
