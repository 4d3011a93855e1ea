package httpserver

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/security"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
	"github.com/wildfly/wildfly-sub133/pkg/cmap"
)

// Error codes written by the middleware.
const (
	CodeUnauthorized = "KRNHTTP4010"
	CodeRateLimited  = "KRNHTTP4290"
	CodeInternal     = "KRNHTTP5000"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one runs outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID assigns a ULID to requests without an X-Request-ID header and
// attaches it, with the logger, to the request context.
func RequestID(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" || len(id) > 128 {
				id = ulid.Make().String()
			}
			w.Header().Set(HeaderRequestID, id)

			ctx := logger.WithLogger(r.Context(), log)
			ctx = logger.WithRequestID(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recover turns a panicking handler into a 500 response.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					logger.L(r.Context()).Error("panic recovered", "panic", p, "path", r.URL.Path)
					writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimiterRegistry hands out one token bucket per client. Buckets idle for
// longer than the eviction window are dropped on the next sweep.
type LimiterRegistry struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	limiters  *cmap.Map[*clientLimiter]
	lastSweep atomic.Int64
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// NewLimiterRegistry allows perSecond requests per client with the given burst.
func NewLimiterRegistry(perSecond float64, burst int) *LimiterRegistry {
	r := &LimiterRegistry{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     5 * time.Minute,
		limiters: cmap.New[*clientLimiter](),
	}
	r.lastSweep.Store(time.Now().UnixNano())
	return r
}

// Allow reports whether client may make a request now.
func (r *LimiterRegistry) Allow(client string) bool {
	now := time.Now()
	r.sweep(now)

	cl := r.limiters.GetOrCreate(client, func() *clientLimiter {
		return &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
	})
	cl.lastSeen.Store(now.UnixNano())
	return cl.limiter.AllowN(now, 1)
}

func (r *LimiterRegistry) sweep(now time.Time) {
	last := r.lastSweep.Load()
	if now.UnixNano()-last <= int64(r.idle) || !r.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	cutoff := now.Add(-r.idle).UnixNano()
	r.limiters.DeleteIf(func(_ string, cl *clientLimiter) bool {
		return cl.lastSeen.Load() < cutoff
	})
}

// Len returns the number of tracked clients.
func (r *LimiterRegistry) Len() int {
	return r.limiters.Len()
}

// RateLimit rejects clients exceeding their bucket with 429.
func RateLimit(reg *LimiterRegistry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !reg.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, CodeRateLimited, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Audit logs one line per request once it completes.
func Audit() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", clientIP(r),
				"principal", ejb.IdentityFromContext(r.Context()).Name,
			}
			log := logger.L(r.Context())
			switch {
			case rec.status >= 500:
				log.Error("request completed with error", attrs...)
			case rec.status >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
		})
	}
}

// BasicAuth authenticates HTTP basic credentials against users and stores
// the caller identity in the request context. Without credentials the
// request proceeds as anonymous unless required is set.
func BasicAuth(users *security.UserStore, required bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, password, ok := r.BasicAuth()
			if !ok {
				if required {
					unauthorized(w, "authentication required")
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if users == nil {
				unauthorized(w, "no users configured")
				return
			}

			id, err := users.Authenticate(name, password)
			if err != nil {
				log := logger.L(r.Context())
				if errors.Is(err, security.ErrInvalidCredentials) {
					log.Warn("authentication failed", "user", name, "client_ip", clientIP(r))
				} else {
					log.Error("authentication failed", "user", name, "error", err)
				}
				unauthorized(w, "invalid credentials")
				return
			}

			ctx := ejb.WithIdentity(r.Context(), id)
			ctx = logger.WithField(ctx, "principal", id.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="kernel"`)
	writeError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// RequestMetrics counts and times HTTP requests per route.
type RequestMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewRequestMetrics creates request metrics named under prefix.
func NewRequestMetrics(prefix string) *RequestMetrics {
	return &RequestMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: prefix,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
	}
}

// Collectors returns the collectors to register.
func (m *RequestMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.duration, m.inFlight}
}

// Instrument wraps h with the metrics of route.
func (m *RequestMetrics) Instrument(route string) Middleware {
	labels := prometheus.Labels{"route": route}
	return func(next http.Handler) http.Handler {
		h := promhttp.InstrumentHandlerDuration(m.duration.MustCurryWith(labels), next)
		h = promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), h)
		return promhttp.InstrumentHandlerInFlight(m.inFlight, h)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusRecorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}

// clientIP returns the first X-Forwarded-For hop, X-Real-IP, or the peer
// address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
