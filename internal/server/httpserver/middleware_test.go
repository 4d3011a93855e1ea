package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/security"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func testUsers(t *testing.T) *security.UserStore {
	t.Helper()
	hash, err := security.HashPassword("pw")
	if err != nil {
		t.Fatal(err)
	}
	return security.NewUserStore(map[string]security.User{
		"alice": {Password: hash, Roles: []string{"admin"}},
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	h := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rec.Header().Get(HeaderRequestID)
	if _, err := ulid.ParseStrict(id); err != nil {
		t.Errorf("request id %q is not a ULID: %v", id, err)
	}
	if seen != id {
		t.Errorf("context id = %q, header id = %q", seen, id)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	h := RequestID(logger.Nop())(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestRecover(t *testing.T) {
	h := Recover()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if rec.Header().Get("X-Error-Code") != CodeInternal {
		t.Errorf("X-Error-Code = %q", rec.Header().Get("X-Error-Code"))
	}
}

func TestRateLimit(t *testing.T) {
	reg := NewLimiterRegistry(1, 2)
	h := RateLimit(reg)(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
	if reg.Len() != 2 {
		t.Errorf("tracked clients = %d, want 2", reg.Len())
	}
}

func TestLimiterRegistry_EvictsIdleClients(t *testing.T) {
	reg := NewLimiterRegistry(10, 10)
	reg.idle = time.Millisecond

	reg.Allow("10.0.0.1")
	time.Sleep(5 * time.Millisecond)
	reg.Allow("10.0.0.2")

	if reg.Len() != 1 {
		t.Errorf("tracked clients = %d, want 1", reg.Len())
	}
}

func TestBasicAuth(t *testing.T) {
	users := testUsers(t)
	var principal string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = ejb.IdentityFromContext(r.Context()).Name
	})

	tests := []struct {
		name      string
		required  bool
		user, pw  string
		wantCode  int
		principal string
	}{
		{"valid", true, "alice", "pw", 200, "alice"},
		{"wrong password", false, "alice", "nope", 401, ""},
		{"unknown user", false, "bob", "pw", 401, ""},
		{"anonymous allowed", false, "", "", 200, "anonymous"},
		{"anonymous rejected", true, "", "", 401, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal = ""
			h := RequestID(logger.Nop())(BasicAuth(users, tt.required)(inner))
			req := httptest.NewRequest(http.MethodPost, "/management", nil)
			if tt.user != "" {
				req.SetBasicAuth(tt.user, tt.pw)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if principal != tt.principal {
				t.Errorf("principal = %q, want %q", principal, tt.principal)
			}
			if rec.Code == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 should carry a WWW-Authenticate challenge")
			}
		})
	}
}

func TestRequestMetrics(t *testing.T) {
	m := NewRequestMetrics("kernel")
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.Collectors()...)

	h := m.Instrument("health")(okHandler())
	for range 3 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var requests, series float64
	for _, mf := range families {
		switch mf.GetName() {
		case "kernel_http_requests_total":
			for _, m := range mf.GetMetric() {
				requests += m.GetCounter().GetValue()
			}
		case "kernel_http_request_duration_seconds":
			series += float64(len(mf.GetMetric()))
		}
	}
	if requests != 3 {
		t.Errorf("requests_total = %v, want 3", requests)
	}
	if series != 1 {
		t.Errorf("duration series = %v, want 1", series)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "10.0.0.1:80", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": "5.6.7.8"}, "10.0.0.1:80", "5.6.7.8"},
		{"peer", nil, "9.9.9.9:4444", "9.9.9.9"},
		{"ipv6 peer", nil, "[::1]:4444", "::1"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		for k, v := range tt.headers {
			req.Header.Set(k, v)
		}
		if got := clientIP(req); got != tt.want {
			t.Errorf("%s: clientIP = %q, want %q", tt.name, got, tt.want)
		}
	}
}
