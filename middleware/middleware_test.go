package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tuwi/utils"
)

var testSecret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "203.0.113.7:51234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func mustToken(t *testing.T, subject, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(testSecret, subject, subject+"@example.com", role, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := perform(r, http.MethodGet, "/ping", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
	if w := perform(r, http.MethodGet, "/ping", ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after the burst, got %d", w.Code)
	}
}

func TestRateLimiterStoreEvictsIdleIPs(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newRateLimiterStore(2)
	store.now = func() time.Time { return now }
	store.lastSweep = now

	for _, ip := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		store.getLimiter(ip)
	}
	now = now.Add(time.Minute)
	kept := store.getLimiter("198.51.100.1")
	if len(store.visitors) != 3 {
		t.Fatalf("nothing is idle long enough yet, got %d entries", len(store.visitors))
	}

	now = now.Add(limiterIdleTTL + time.Second)
	store.getLimiter("198.51.100.9")
	if len(store.visitors) != 1 {
		t.Fatalf("expected idle IPs to be swept, got %d entries", len(store.visitors))
	}
	if _, ok := store.visitors["198.51.100.9"]; !ok {
		t.Fatal("the caller that triggered the sweep must keep a limiter")
	}
	if store.getLimiter("198.51.100.1") == kept {
		t.Fatal("an evicted IP should get a fresh limiter")
	}
}

func TestOptionalSession(t *testing.T) {
	r := gin.New()
	r.Use(OptionalSession(testSecret))
	r.GET("/who", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ClientUserIDKey))
	})

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"guest", "", ""},
		{"valid session", mustToken(t, "user-42", "client"), "user-42"},
		{"garbage token is ignored", "not-a-jwt", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, "/who", tt.token)
			if w.Code != http.StatusOK || w.Body.String() != tt.want {
				t.Fatalf("got %d %q, want 200 %q", w.Code, w.Body.String(), tt.want)
			}
		})
	}
}

func TestRequireBraider(t *testing.T) {
	r := gin.New()
	r.POST("/braiders/:id/services", RequireBraider(testSecret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(BraiderIDKey))
	})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"invalid token", "nope", http.StatusUnauthorized},
		{"client role", mustToken(t, "braider-1", "client"), http.StatusForbidden},
		{"other braider", mustToken(t, "braider-2", "braider"), http.StatusForbidden},
		{"owner", mustToken(t, "braider-1", "braider"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := perform(r, http.MethodPost, "/braiders/braider-1/services", tt.token); w.Code != tt.want {
				t.Fatalf("got %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		if GetRequestLogger(c) == nil {
			t.Error("expected a request logger")
		}
		c.String(http.StatusOK, ClientIP(c))
	})

	w := perform(r, http.MethodGet, "/ping", "")
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}
	if w.Body.String() != "203.0.113.7" {
		t.Fatalf("unexpected client ip %q", w.Body.String())
	}
}
