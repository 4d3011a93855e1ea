package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// Error codes carried in the X-Error-Code header and error body.
const (
	CodeBadRequest = "KRNHTTP4000"
	CodeNotReady   = "KRNHTTP5030"
)

// ErrorResponse is the body of non-management errors.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// StatusResponse is the body of health and readiness probes.
type StatusResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
	Reason string    `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.L(r.Context()).Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("X-Error-Code", code)
	writeJSON(w, r, status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: logger.RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UnixMilli(),
	})
}
