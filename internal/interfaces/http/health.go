package http

import (
	"net/http"
	"time"
)

// HealthHandler reports service uptime plus cache and database health,
// grounded on the teacher's HealthResponse healthy/degraded/unhealthy
// aggregation.
func HealthHandler(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]CheckResult{}

		cacheStart := time.Now()
		cacheHealthy := h.cache == nil || h.cache.Healthy(r.Context())
		checks["cache"] = CheckResult{
			Healthy:   cacheHealthy,
			LatencyMS: time.Since(cacheStart).Milliseconds(),
		}

		if h.dbHealth != nil {
			dbStart := time.Now()
			dbErr := h.dbHealth.Ping(r.Context())
			checks["database"] = CheckResult{
				Healthy:   dbErr == nil,
				Message:   errMessage(dbErr),
				LatencyMS: time.Since(dbStart).Milliseconds(),
			}
		}

		status := "healthy"
		for _, c := range checks {
			if !c.Healthy {
				status = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, HealthResponse{
			Status:    status,
			Version:   h.version,
			Uptime:    time.Since(h.startedAt).String(),
			Checks:    checks,
			Timestamp: time.Now(),
		})
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
