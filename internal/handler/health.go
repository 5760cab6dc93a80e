package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthHandler answers load balancer probes.
type HealthHandler struct {
	check func(ctx context.Context) map[string]error
}

// NewHealthHandler takes a function that pings each dependency by name.
func NewHealthHandler(check func(ctx context.Context) map[string]error) *HealthHandler {
	return &HealthHandler{check: check}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HandleHealth reports 200 when every dependency answers, 503 otherwise.
//
// HTTP: GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	res := healthResponse{Status: "ok", Checks: map[string]string{}}
	status := http.StatusOK
	for name, err := range h.check(ctx) {
		if err != nil {
			res.Checks[name] = err.Error()
			res.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		res.Checks[name] = "ok"
	}
	writeJSON(w, status, res)
}
