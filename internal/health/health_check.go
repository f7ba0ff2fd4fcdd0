package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/store"
)

// HealthChecker provides health check endpoints
type HealthChecker struct {
	checkpoints store.CheckpointStore
	leases      store.LeaseStore
	results     store.ResultStore
	archive     store.ArchiveStore
	logger      *zap.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp int64             `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// NewHealthChecker creates a new health checker. archive may be nil when the
// archive loop is disabled.
func NewHealthChecker(
	checkpoints store.CheckpointStore,
	leases store.LeaseStore,
	results store.ResultStore,
	archive store.ArchiveStore,
	logger *zap.Logger,
) *HealthChecker {
	return &HealthChecker{
		checkpoints: checkpoints,
		leases:      leases,
		results:     results,
		archive:     archive,
		logger:      logger,
	}
}

// LivenessHandler handles liveness probe requests
func (h *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().Unix(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// ReadinessHandler handles readiness probe requests
func (h *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	record := func(name string, err error) {
		if err != nil {
			h.logger.Error("health check failed",
				zap.String("check", name),
				zap.Error(err))
			checks[name] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks[name] = "healthy"
		}
	}

	record("checkpoint_store", h.ping(ctx, h.checkpoints))
	record("lease_store", h.ping(ctx, h.leases))
	record("result_store", h.pingResults(ctx))
	if h.archive != nil {
		record("archive_store", h.archive.Ping(ctx))
	}

	status := HealthStatus{
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	}

	w.Header().Set("Content-Type", "application/json")

	if allHealthy {
		status.Status = "ready"
		w.WriteHeader(http.StatusOK)
	} else {
		status.Status = "not_ready"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(status)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (h *HealthChecker) ping(ctx context.Context, p pinger) error {
	if p == nil {
		return nil
	}
	return p.Ping(ctx)
}

func (h *HealthChecker) pingResults(ctx context.Context) error {
	if h.results == nil {
		return nil
	}
	return h.results.Ping(ctx)
}

// StartHealthServer starts the health check HTTP server
func StartHealthServer(hc *HealthChecker, port int, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", hc.LivenessHandler)
	mux.HandleFunc("/health/ready", hc.ReadinessHandler)

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting health check server", zap.String("address", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
