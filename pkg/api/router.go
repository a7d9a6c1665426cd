package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the prediction routes behind the standard middleware stack
func NewRouter(h *Handler, allowedOrigins []string, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/leagues", h.Leagues)
		r.Post("/predict", h.Predict)
		r.Get("/predictions", h.Predictions)
		r.Get("/predictions/{id}", h.Prediction)
		r.Get("/fixtures/{league}", h.Fixtures)
		r.Get("/fixtures/{league}/{eventID}/prediction", h.FixturePrediction)
	})

	return r
}
