package jwtmw

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// TestMain sets Gin to test mode before running.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const testSecret = "test-secret-key"

// TestAuthRequired_MissingCookie verifies a request without the session cookie gets 401.
func TestAuthRequired_MissingCookie(t *testing.T) {
	gen := NewGenerator(testSecret, time.Hour)

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"empty cookie", &http.Cookie{Name: "token", Value: ""}},
		{"other cookie name", &http.Cookie{Name: "session", Value: createTokenWithSecret(testSecret, testUser, time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				c.Request.AddCookie(tt.cookie)
			}

			AuthRequired(gen, "token")(c)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected request to be aborted")
			}
			if !strings.Contains(w.Body.String(), "Not authorized") {
				t.Errorf("unexpected body %s", w.Body.String())
			}
		})
	}
}

// TestAuthRequired_InvalidToken verifies tampered or expired tokens get 401.
func TestAuthRequired_InvalidToken(t *testing.T) {
	gen := NewGenerator(testSecret, time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed token", "not.a.valid.token"},
		{"wrong secret", createTokenWithSecret("wrong-secret", testUser, time.Hour)},
		{"expired token", createTokenWithSecret(testSecret, testUser, -time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.AddCookie(&http.Cookie{Name: "token", Value: tt.token})

			AuthRequired(gen, "token")(c)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
		})
	}
}

// TestAuthRequired_ValidToken verifies a valid cookie passes and exposes the user.
func TestAuthRequired_ValidToken(t *testing.T) {
	gen := NewGenerator(testSecret, time.Hour)
	token, err := gen.GenerateToken(testUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: "token", Value: token})

	AuthRequired(gen, "token")(c)

	if c.IsAborted() {
		t.Fatalf("expected request not to be aborted, response: %s", w.Body.String())
	}
	user, ok := UserFromContext(c)
	if !ok {
		t.Fatal("expected user to be set in context")
	}
	if user != testUser {
		t.Errorf("expected %+v, got %+v", testUser, user)
	}
}

// TestCookie verifies the session cookie attributes and that Clear expires it.
func TestCookie(t *testing.T) {
	ck := Cookie{Name: "token", MaxAge: 7 * 24 * time.Hour, Secure: true}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	ck.Set(c, "abc")

	header := w.Header().Get("Set-Cookie")
	for _, want := range []string{"token=abc", "Max-Age=604800", "HttpOnly", "Secure", "SameSite=Strict", "Path=/"} {
		if !strings.Contains(header, want) {
			t.Errorf("expected %q in %q", want, header)
		}
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	ck.Clear(c)
	header = w.Header().Get("Set-Cookie")
	if !strings.Contains(header, "token=;") || !strings.Contains(header, "Max-Age=0") {
		t.Errorf("expected cleared cookie, got %q", header)
	}
}
