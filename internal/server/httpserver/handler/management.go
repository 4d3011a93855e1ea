package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// MaxOperationSize bounds the body of a management request.
const MaxOperationSize = 1 << 20

// Executor runs management operations.
type Executor interface {
	Execute(ctx context.Context, op management.Operation) management.Result
}

// Management handles POST /management. The body is a JSON operation:
//
//	{"operation":"read-attribute","address":"/subsystem=ejb3","params":{"name":"x"}}
//
// A successful outcome answers 200; a failed outcome answers 500 with the
// failure description in the body, as the management console expects.
func Management(exec Executor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var op management.Operation
		dec := json.NewDecoder(io.LimitReader(r.Body, MaxOperationSize))
		if err := dec.Decode(&op); err != nil {
			msg := "malformed operation: " + err.Error()
			if errors.Is(err, io.EOF) {
				msg = "empty request body"
			}
			writeError(w, r, http.StatusBadRequest, CodeBadRequest, msg)
			return
		}
		if op.Name == "" {
			writeError(w, r, http.StatusBadRequest, CodeBadRequest, "operation name is required")
			return
		}

		res := exec.Execute(r.Context(), op)
		status := http.StatusOK
		if res.Failed() {
			status = http.StatusInternalServerError
			logger.L(r.Context()).Debug("management operation failed",
				"operation", op.Name,
				"address", op.Address.String(),
				"failure", res.FailureDescription,
			)
		}
		writeJSON(w, r, status, res)
	})
}
