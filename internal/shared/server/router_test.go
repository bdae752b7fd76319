package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"application-tracker/internal/shared/config"
)

type stubApplications struct {
	applyMiddleware int
}

func (s *stubApplications) RegisterRoutes(r gin.IRouter, applyMiddleware ...gin.HandlerFunc) {
	s.applyMiddleware = len(applyMiddleware)
	r.POST("/apply", append(applyMiddleware, func(c *gin.Context) { c.Status(http.StatusOK) })...)
	r.GET("/api/applications/:token", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/applications/:token/status", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func newTestRouter(rateLimit bool) (*gin.Engine, *stubApplications) {
	apps := &stubApplications{}
	r := NewRouter(RouterDeps{
		Config: config.Config{
			CORSAllowOrigin:  []string{"*"},
			MaxUploadBytes:   1024,
			RateLimitEnabled: rateLimit,
		},
		Applications: apps,
	})
	return r, apps
}

func TestHealthRoutes(t *testing.T) {
	r, _ := newTestRouter(false)
	for _, path := range []string{"/health", "/api/health"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
		if strings.TrimSpace(resp.Body.String()) != `{"ok":true}` {
			t.Fatalf("%s: unexpected body %s", path, resp.Body.String())
		}
	}
}

func TestMetricsRoute(t *testing.T) {
	r, _ := newTestRouter(false)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "applications_submitted_total") {
		t.Fatal("expected application metrics to be exposed")
	}
}

func TestApplyRouteGetsSizeLimit(t *testing.T) {
	_, apps := newTestRouter(false)
	if apps.applyMiddleware != 1 {
		t.Fatalf("expected size limit middleware on /apply, got %d handlers", apps.applyMiddleware)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	r, _ := newTestRouter(true)

	var last int
	for i := 0; i < 6; i++ {
		resp := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/apply", strings.NewReader(""))
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(resp, req)
		last = resp.Code
		if i < 5 && resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, resp.Code)
		}
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last)
	}

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/applications/app-1", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("polling should use its own bucket, got %d", resp.Code)
	}
}

func TestHealthRoutesBypassRateLimit(t *testing.T) {
	r, _ := newTestRouter(true)
	for i := 0; i < 100; i++ {
		for _, path := range []string{"/health", "/api/health"} {
			resp := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.RemoteAddr = "10.0.0.2:1234"
			r.ServeHTTP(resp, req)
			if resp.Code != http.StatusOK {
				t.Fatalf("%s request %d: expected 200, got %d", path, i, resp.Code)
			}
		}
	}
}

func TestRateLimitGroup(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodPost, "/apply", groupSubmit},
		{http.MethodPost, "/api/applications/app-1/status", groupStatus},
		{http.MethodGet, "/api/applications/app-1", groupPolling},
		{http.MethodGet, "/applications/app-1", groupPolling},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(tt.method, tt.path, nil)
		if got := rateLimitGroup(c); got != tt.want {
			t.Fatalf("%s %s: expected %s, got %s", tt.method, tt.path, tt.want, got)
		}
	}
}

func TestAddr(t *testing.T) {
	if Addr("") != ":8080" || Addr("9000") != ":9000" || Addr(":7000") != ":7000" {
		t.Fatal("unexpected listen address normalization")
	}
}
