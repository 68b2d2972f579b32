package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/JeanGrijp/storefront-guard/internal/adapters/storage/memory"
	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
	"github.com/JeanGrijp/storefront-guard/internal/core/services"
	"github.com/JeanGrijp/storefront-guard/internal/metrics"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type guardFixture struct {
	handler http.Handler
	clock   *fakeClock
	login   *services.RateLimiterService
	api     *services.RateLimiterService
	metrics *metrics.GuardMetrics
	reached int
}

func newGuardFixture(t *testing.T, loginMax, apiMax int, exempt ...string) *guardFixture {
	t.Helper()
	f := &guardFixture{clock: &fakeClock{now: time.Unix(1_700_000_000, 0)}, metrics: metrics.New()}
	store := memory.New(zaptest.NewLogger(t))

	var err error
	f.login, err = services.NewRateLimiterService(store, domain.RateLimitPolicy{
		Name: "login", MaxAttempts: loginMax, Window: 15 * time.Minute,
	}, services.WithClock(f.clock))
	if err != nil {
		t.Fatalf("login limiter: %v", err)
	}
	f.api, err = services.NewRateLimiterService(store, domain.RateLimitPolicy{
		Name: "api", MaxAttempts: apiMax, Window: time.Minute,
	}, services.WithClock(f.clock))
	if err != nil {
		t.Fatalf("api limiter: %v", err)
	}

	guard := NewGuard(GuardConfig{
		APIPrefix:          "/api/",
		CSRFExemptPrefixes: exempt,
		APILimiter:         f.api,
		LoginLimiter:       f.login,
		Logger:             zaptest.NewLogger(t),
		Metrics:            f.metrics,
	})
	f.handler = guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.reached++
		w.WriteHeader(http.StatusOK)
	}))
	return f
}

func (f *guardFixture) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	return rec
}

func newRequest(method, path, ip string) *http.Request {
	r := httptest.NewRequest(method, path, nil)
	r.RemoteAddr = ip + ":51234"
	return r
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func assertSecurityHeaders(t *testing.T, h http.Header) {
	t.Helper()
	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"X-XSS-Protection":        "1; mode=block",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Permissions-Policy":      "camera=(), microphone=(), geolocation=()",
		"Content-Security-Policy": contentSecurityPolicy,
	}
	for k, v := range want {
		if got := h.Get(k); got != v {
			t.Fatalf("header %s = %q, want %q", k, got, v)
		}
	}
}

func TestGuard_SecurityHeadersOnEveryResponse(t *testing.T) {
	f := newGuardFixture(t, 5, 100)

	rec := f.do(newRequest(http.MethodGet, "/produtos", "10.0.0.1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertSecurityHeaders(t, rec.Header())

	rec = f.do(newRequest(http.MethodPost, "/api/orders", "10.0.0.1"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	assertSecurityHeaders(t, rec.Header())
}

func TestGuard_LoginScenario(t *testing.T) {
	f := newGuardFixture(t, 5, 100)

	for i := 0; i < 5; i++ {
		rec := f.do(newRequest(http.MethodPost, "/api/auth/login", "203.0.113.7"))
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, rec.Code)
		}
		f.clock.Advance(10 * time.Second)
	}

	rec := f.do(newRequest(http.MethodPost, "/api/auth/login", "203.0.113.7"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("sixth attempt: expected 429, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != loginRateLimitMessage {
		t.Fatalf("unexpected message %q", msg)
	}
	assertSecurityHeaders(t, rec.Header())
	if f.reached != 5 {
		t.Fatalf("expected handler reached 5 times, got %d", f.reached)
	}

	f.clock.Advance(16 * time.Minute)
	rec = f.do(newRequest(http.MethodPost, "/api/auth/login", "203.0.113.7"))
	if rec.Code != http.StatusOK {
		t.Fatalf("after window: expected 200, got %d", rec.Code)
	}
}

func TestGuard_LoginLimiterOnlyForPostOnExactPaths(t *testing.T) {
	f := newGuardFixture(t, 1, 100)

	for i := 0; i < 3; i++ {
		if rec := f.do(newRequest(http.MethodGet, "/api/auth/login", "10.0.0.2")); rec.Code != http.StatusOK {
			t.Fatalf("GET login: expected 200, got %d", rec.Code)
		}
		if rec := f.do(newRequest(http.MethodPost, "/api/auth/login/extra", "10.0.0.2")); rec.Code != http.StatusOK {
			t.Fatalf("POST sub-path: expected 200, got %d", rec.Code)
		}
	}

	if rec := f.do(newRequest(http.MethodPost, "/api/auth/register", "10.0.0.2")); rec.Code != http.StatusOK {
		t.Fatalf("first register: expected 200, got %d", rec.Code)
	}
	if rec := f.do(newRequest(http.MethodPost, "/api/auth/register", "10.0.0.2")); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second register: expected 429, got %d", rec.Code)
	}
}

func TestGuard_APIRateLimit(t *testing.T) {
	f := newGuardFixture(t, 5, 3)

	for i := 0; i < 3; i++ {
		if rec := f.do(newRequest(http.MethodGet, "/api/products", "10.0.0.3")); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	rec := f.do(newRequest(http.MethodGet, "/api/products", "10.0.0.3"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != apiRateLimitMessage {
		t.Fatalf("unexpected message %q", msg)
	}

	if rec := f.do(newRequest(http.MethodGet, "/api/products", "10.0.0.4")); rec.Code != http.StatusOK {
		t.Fatalf("other ip: expected 200, got %d", rec.Code)
	}
	if rec := f.do(newRequest(http.MethodGet, "/carrinho", "10.0.0.3")); rec.Code != http.StatusOK {
		t.Fatalf("non-api path: expected 200, got %d", rec.Code)
	}
}

func TestGuard_CSRF(t *testing.T) {
	cases := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{name: "matching", header: "abc", cookie: "abc", want: http.StatusOK},
		{name: "mismatch", header: "abc", cookie: "xyz", want: http.StatusForbidden},
		{name: "missing cookie", header: "abc", want: http.StatusForbidden},
		{name: "missing header", cookie: "abc", want: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newGuardFixture(t, 5, 100)
			r := newRequest(http.MethodPost, "/api/orders", "10.0.0.5")
			if tc.header != "" {
				r.Header.Set(CSRFHeaderName, tc.header)
			}
			if tc.cookie != "" {
				r.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: tc.cookie})
			}

			rec := f.do(r)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if tc.want == http.StatusForbidden {
				if msg := decodeError(t, rec); msg != invalidCSRFMessage {
					t.Fatalf("unexpected message %q", msg)
				}
			}
		})
	}
}

func TestGuard_CSRFScope(t *testing.T) {
	f := newGuardFixture(t, 5, 100, "/api/webhook/")

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		if rec := f.do(newRequest(method, "/api/orders", "10.0.0.6")); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", method, rec.Code)
		}
	}
	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		if rec := f.do(newRequest(method, "/api/orders/1", "10.0.0.6")); rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", method, rec.Code)
		}
	}
	if rec := f.do(newRequest(http.MethodPost, "/api/auth/csrf", "10.0.0.6")); rec.Code != http.StatusOK {
		t.Fatalf("auth path: expected 200, got %d", rec.Code)
	}
	if rec := f.do(newRequest(http.MethodPost, "/api/webhook/whatsapp", "10.0.0.6")); rec.Code != http.StatusOK {
		t.Fatalf("exempt path: expected 200, got %d", rec.Code)
	}
	if rec := f.do(newRequest(http.MethodPost, "/checkout", "10.0.0.6")); rec.Code != http.StatusOK {
		t.Fatalf("non-api path: expected 200, got %d", rec.Code)
	}
}

func TestGuard_RateLimitRunsBeforeCSRF(t *testing.T) {
	f := newGuardFixture(t, 5, 1)

	if rec := f.do(newRequest(http.MethodPost, "/api/orders", "10.0.0.7")); rec.Code != http.StatusForbidden {
		t.Fatalf("first: expected 403, got %d", rec.Code)
	}
	if rec := f.do(newRequest(http.MethodPost, "/api/orders", "10.0.0.7")); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second: expected 429, got %d", rec.Code)
	}
}

func TestGuard_LimiterFailureIsNotPassedThrough(t *testing.T) {
	guard := NewGuard(GuardConfig{
		APILimiter: failingLimiter{},
		Logger:     zaptest.NewLogger(t),
	})
	reached := false
	h := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { reached = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newRequest(http.MethodGet, "/api/products", "10.0.0.8"))
	if rec.Code != http.StatusInternalServerError || reached {
		t.Fatalf("expected 500 without reaching handler, got %d reached=%v", rec.Code, reached)
	}
}
