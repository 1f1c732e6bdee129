// Package chi serves the operational HTTP surface: health, usage and
// metrics. The MCP tool surface lives in transport/mcp; nothing here
// touches CRM data.
package chi

import (
	"encoding/json"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/crmforge/pipedex/internal/metrics"
	healthuc "github.com/crmforge/pipedex/internal/usecase/health"
	usageuc "github.com/crmforge/pipedex/internal/usecase/usage"
)

// Server handles the operational endpoints.
type Server struct {
	health *healthuc.Service
	usage  *usageuc.Service
	logger *zap.Logger
}

// NewServer creates an operational HTTP server.
func NewServer(health *healthuc.Service, usage *usageuc.Service, logger *zap.Logger) *Server {
	return &Server{health: health, usage: usage, logger: logger}
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chirouter.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Get("/health", s.HealthCheck)
	r.Get("/usage", s.GetUsage)
	r.Get("/metrics", s.Metrics)

	return r
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
		s.logger.Warn("health check failed", zap.Any("checks", report.Checks))
	}

	writeJSON(w, httpStatus, report)
}

// GetUsage handles GET /usage. The period query parameter selects day
// (default) or month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := usageuc.PeriodDay
	switch r.URL.Query().Get("period") {
	case "", string(usageuc.PeriodDay):
	case string(usageuc.PeriodMonth):
		period = usageuc.PeriodMonth
	default:
		writeError(w, http.StatusBadRequest, "period must be \"day\" or \"month\"")
		return
	}

	writeJSON(w, http.StatusOK, s.usage.GetReport(r.Context(), period))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
