package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/AmeyaShriwas/chatappbackend/internal/chat"
	"github.com/AmeyaShriwas/chatappbackend/internal/presence"
)

type check struct {
	Status  string `json:"status"` // "pass" or "fail"
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string           `json:"status"` // "healthy" or "degraded"
	Checks    map[string]check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

func handleHealth(st chat.Store, tr *presence.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]check)
		healthy := true

		if err := st.Ping(ctx); err != nil {
			checks["store"] = check{Status: "fail", Message: "connection failed"}
			healthy = false
		} else {
			checks["store"] = check{Status: "pass"}
		}

		if tr != nil {
			if err := tr.Ping(ctx); err != nil {
				checks["redis"] = check{Status: "fail", Message: "connection failed"}
				healthy = false
			} else {
				checks["redis"] = check{Status: "pass"}
			}
		}

		status := "healthy"
		code := http.StatusOK
		if !healthy {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:    status,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}
