package remote

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// LoggingInterceptor logs every unary call handled by the service.
type LoggingInterceptor struct {
	log logger.Logger
}

// NewLoggingInterceptor creates a logging interceptor.
func NewLoggingInterceptor(log logger.Logger) *LoggingInterceptor {
	if log == nil {
		log = logger.Default()
	}
	return &LoggingInterceptor{log: log}
}

// WrapUnary implements connect.Interceptor.
func (i *LoggingInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		log := i.log
		if rid := logger.RequestIDFromContext(ctx); rid != "" {
			log = log.With("request_id", rid)
		}
		if err != nil {
			log.Warn("remote call failed",
				"procedure", req.Spec().Procedure,
				"peer", req.Peer().Addr,
				"code", connect.CodeOf(err).String(),
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err)
		} else {
			log.Info("remote call",
				"procedure", req.Spec().Procedure,
				"peer", req.Peer().Addr,
				"duration_ms", time.Since(start).Milliseconds())
		}
		return resp, err
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (i *LoggingInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor. The service has no
// streaming procedures.
func (i *LoggingInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
