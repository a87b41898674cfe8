package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func setupRouter(checks ...Check) *gin.Engine {
	r := gin.New()
	h := Health(checks...)
	r.GET("/healthz", h)
	r.HEAD("/healthz", h)
	r.OPTIONS("/healthz", h)
	return r
}

func TestHealth_GET(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		checks       []Check
		expectedCode int
		expectedBody string
		expectedDeps map[string]string
	}{
		{"no checks", nil, http.StatusOK, "ok", map[string]string{}},
		{"all healthy", []Check{{"database", ok}, {"redis", ok}}, http.StatusOK, "ok", map[string]string{"database": "ok", "redis": "ok"}},
		{"redis down", []Check{{"database", ok}, {"redis", down}}, http.StatusServiceUnavailable, "degraded", map[string]string{"database": "ok", "redis": "unavailable"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			setupRouter(tt.checks...).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if w.Code != tt.expectedCode {
				t.Errorf("expected status %d, got %d", tt.expectedCode, w.Code)
			}
			var response struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Status != tt.expectedBody {
				t.Errorf("expected status %q, got %q", tt.expectedBody, response.Status)
			}
			if len(response.Checks) != len(tt.expectedDeps) {
				t.Errorf("expected checks %v, got %v", tt.expectedDeps, response.Checks)
			}
			for k, v := range tt.expectedDeps {
				if response.Checks[k] != v {
					t.Errorf("check %s: expected %q, got %q", k, v, response.Checks[k])
				}
			}
			if w.Header().Get("Cache-Control") != "no-store" {
				t.Errorf("expected Cache-Control 'no-store', got %q", w.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestHealth_HEAD(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	setupRouter(Check{"database", down}).ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/healthz", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body for HEAD, got %q", w.Body.String())
	}
}

func TestHealth_OPTIONS(t *testing.T) {
	t.Parallel()

	called := false
	ping := func(context.Context) error { called = true; return nil }

	w := httptest.NewRecorder()
	setupRouter(Check{"database", ping}).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/healthz", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	if called {
		t.Error("OPTIONS must not ping dependencies")
	}
}
