package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker verifies one dependency
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthCheckerFunc adapts a function to the HealthChecker interface
type HealthCheckerFunc func(ctx context.Context) error

func (f HealthCheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler reports service and dependency health
type HealthHandler struct {
	version  string
	checkers map[string]HealthChecker
}

// NewHealthHandler creates a health handler
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:  version,
		checkers: make(map[string]HealthChecker),
	}
}

// Register adds a named dependency check
func (h *HealthHandler) Register(name string, checker HealthChecker) {
	h.checkers[name] = checker
}

type healthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ServeHTTP runs all checks. Any failing dependency degrades the status and
// flips the response to 503.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:    "healthy",
		Version:   h.version,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string, len(h.checkers)),
	}

	status := http.StatusOK
	for name, checker := range h.checkers {
		if err := checker.Check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		} else {
			resp.Checks[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
