package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/skudeck/internal/api/handlers"
	"github.com/wonny/skudeck/internal/realtime"
	"github.com/wonny/skudeck/pkg/logger"
)

// Handlers bundles the route handlers the router wires up.
type Handlers struct {
	Dashboard *handlers.DashboardHandler
	Portfolio *handlers.PortfolioHandler
	Sku       *handlers.SkuHandler
	Config    *handlers.ConfigHandler
	Import    *handlers.ImportHandler
	Hub       *realtime.Hub
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API
	api := r.PathPrefix("/api").Subrouter()

	// Dashboard
	api.HandleFunc("/dashboard/metrics", h.Dashboard.GetMetrics).Methods("GET")
	api.HandleFunc("/dashboard/history", h.Dashboard.GetHistory).Methods("GET")

	// Portfolio view and selection
	api.HandleFunc("/portfolio", h.Portfolio.GetPortfolio).Methods("GET")
	api.HandleFunc("/portfolio/selection", h.Portfolio.ReplaceSelection).Methods("PUT")
	api.HandleFunc("/portfolio/selection", h.Portfolio.ClearSelection).Methods("DELETE")
	api.HandleFunc("/portfolio/selection/toggle", h.Portfolio.ToggleSelection).Methods("POST")

	// SKU edits and exports
	api.HandleFunc("/skus/{id}", h.Sku.UpdateSku).Methods("PUT")
	api.HandleFunc("/skus/export", h.Sku.ExportSkus).Methods("POST")

	// Config passthroughs
	api.HandleFunc("/markets", h.Config.GetMarkets).Methods("GET")
	api.HandleFunc("/channels", h.Config.GetChannels).Methods("GET")
	api.HandleFunc("/channels/cts", h.Config.GetCTSMatrix).Methods("GET")
	api.HandleFunc("/channels/cts/{market}/{channel}", h.Config.UpdateCTSCell).Methods("PUT")
	api.HandleFunc("/channels/{name}", h.Config.UpdateChannel).Methods("PUT")
	api.HandleFunc("/settings", h.Config.GetSettings).Methods("GET")
	api.HandleFunc("/settings", h.Config.UpdateSettings).Methods("PUT")

	// Import wizard sessions and audit history
	api.HandleFunc("/import/sessions", h.Import.CreateSession).Methods("POST")
	api.HandleFunc("/import/history", h.Import.History).Methods("GET")
	api.HandleFunc("/import/sessions/{id}/mapping", h.Import.UpdateMapping).Methods("PUT")
	api.HandleFunc("/import/sessions/{id}/submit", h.Import.Submit).Methods("POST")
	api.HandleFunc("/import/sessions/{id}", h.Import.DeleteSession).Methods("DELETE")

	// Metrics push
	if h.Hub != nil {
		api.HandleFunc("/ws", h.Hub.HandleWS).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "skudeck-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
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
