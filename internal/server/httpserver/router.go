package httpserver

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wildfly/wildfly-sub133/internal/security"
	"github.com/wildfly/wildfly-sub133/internal/server/httpserver/handler"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/metric"
)

// RouterConfig holds the collaborators of the HTTP routes.
type RouterConfig struct {
	// Management executes POST /management operations.
	Management handler.Executor
	// Registry is exported on GET /metrics. Nil disables both metric routes.
	Registry *metric.Registry
	// RuntimeMetrics adds GET /metrics/runtime with Go, process and HTTP
	// request metrics next to the registry.
	RuntimeMetrics bool
	MetricsPrefix  string

	// RemotePath and Remote mount the remote invocation service.
	RemotePath string
	Remote     http.Handler

	Users        *security.UserStore
	AuthRequired bool

	// RateLimit is requests per second per client; zero disables it.
	RateLimit float64
	RateBurst int

	Ready  handler.ReadyFunc
	Logger logger.Logger
}

// NewRouter builds the handler serving every route.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	var reqMetrics *RequestMetrics
	if cfg.Registry != nil && cfg.RuntimeMetrics {
		reqMetrics = NewRequestMetrics(cfg.MetricsPrefix)
	}

	base := []Middleware{RequestID(log), Recover()}
	route := func(name string, h http.Handler, extra ...Middleware) http.Handler {
		mws := append([]Middleware{}, base...)
		if reqMetrics != nil {
			mws = append(mws, reqMetrics.Instrument(name))
		}
		return Chain(h, append(mws, extra...)...)
	}

	guarded := make([]Middleware, 0, 3)
	if cfg.RateLimit > 0 {
		guarded = append(guarded, RateLimit(NewLimiterRegistry(cfg.RateLimit, cfg.RateBurst)))
	}
	guarded = append(guarded, BasicAuth(cfg.Users, cfg.AuthRequired), Audit())

	mux := http.NewServeMux()
	mux.Handle("GET /health", route("health", handler.Health()))
	mux.Handle("GET /ready", route("ready", handler.Ready(cfg.Ready)))
	mux.Handle("GET /version", route("version", handler.Version()))

	if cfg.Registry != nil {
		mux.Handle("GET /metrics", route("metrics", metric.Handler(cfg.Registry)))
		if cfg.RuntimeMetrics {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				metric.NewCollector(cfg.Registry),
			)
			reg.MustRegister(reqMetrics.Collectors()...)
			mux.Handle("GET /metrics/runtime", route("metrics-runtime",
				promhttp.HandlerFor(reg, promhttp.HandlerOpts{ErrorLog: promLogger{log}})))
		}
	}

	if cfg.Management != nil {
		mux.Handle("POST /management", route("management", handler.Management(cfg.Management), guarded...))
	}
	if cfg.Remote != nil && cfg.RemotePath != "" {
		mux.Handle(cfg.RemotePath, route("remote", cfg.Remote, guarded...))
	}
	return mux
}

// promLogger adapts the logger to promhttp's error log.
type promLogger struct{ log logger.Logger }

func (l promLogger) Println(v ...any) {
	l.log.Error("metrics exposition failed", "error", fmt.Sprint(v...))
}
