package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/wildfly/wildfly-sub133/internal/infra/buildinfo"
)

// ReadyFunc reports why the server is not ready, or nil.
type ReadyFunc func(ctx context.Context) error

// Health handles GET /health. It succeeds while the process serves HTTP.
func Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, StatusResponse{Status: "healthy", Time: time.Now().UTC()})
	})
}

// Ready handles GET /ready.
func Ready(check ReadyFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				w.Header().Set("X-Error-Code", CodeNotReady)
				writeJSON(w, r, http.StatusServiceUnavailable, StatusResponse{
					Status: "not-ready",
					Time:   time.Now().UTC(),
					Reason: err.Error(),
				})
				return
			}
		}
		writeJSON(w, r, http.StatusOK, StatusResponse{Status: "ready", Time: time.Now().UTC()})
	})
}

// Version handles GET /version.
func Version() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, buildinfo.Get())
	})
}
