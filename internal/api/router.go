package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/radarinvest/backend/internal/api/handlers"
	"github.com/radarinvest/backend/pkg/logger"
)

// NewRouter wires every endpoint and the shared middleware chain.
func NewRouter(
	recommendations *handlers.RecommendationsHandler,
	stocks *handlers.StocksHandler,
	strategies *handlers.StrategiesHandler,
	alerts *handlers.AlertsHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Recommendations
	api.HandleFunc("/recommendations", recommendations.List).Methods("GET")

	// Stocks
	api.HandleFunc("/stocks", stocks.List).Methods("GET")
	api.HandleFunc("/stocks/{ticker}", stocks.Get).Methods("GET")

	// Strategies
	api.HandleFunc("/strategies", strategies.List).Methods("GET")
	api.HandleFunc("/strategies", strategies.Create).Methods("POST")
	api.HandleFunc("/strategies/{id}", strategies.Get).Methods("GET")
	api.HandleFunc("/strategies/{id}", strategies.Update).Methods("PUT")
	api.HandleFunc("/strategies/{id}", strategies.Deactivate).Methods("DELETE")
	api.HandleFunc("/strategies/{id}/matches", strategies.Matches).Methods("GET")

	// Alerts
	api.HandleFunc("/alerts", alerts.List).Methods("GET")
	api.HandleFunc("/alerts/generate", alerts.Generate).Methods("POST")
	api.HandleFunc("/alerts/{id}/read", alerts.MarkRead).Methods("POST")
	api.HandleFunc("/alerts/{id}/dismiss", alerts.Dismiss).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(throttleMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "radar-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
