package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cashloan/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token": GetToken(c), "role": GetClaims(c).Role})
	})
	return r
}

func TestRequireTokenMissing(t *testing.T) {
	r := newEngine(RequireToken("token"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusUnauthorized || w.Body.String() != `{"message":"Unauthorized"}` {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestRequireTokenCookieAndOpaque(t *testing.T) {
	r := newEngine(RequireToken("token"))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "12|opaque"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireTokenExpiredJWT(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	r := newEngine(requireToken("token", func() time.Time { return now }))
	tok := signed(t, jwt.MapClaims{"sub": "1", "exp": now.Add(-time.Minute).Unix()})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	now := time.Now()
	r := newEngine(RequireToken("token"), RequireRoles(domain.RoleAdmin))
	cases := []struct {
		token string
		want  int
	}{
		{signed(t, jwt.MapClaims{"role": "admin", "exp": now.Add(time.Hour).Unix()}), http.StatusOK},
		{signed(t, jwt.MapClaims{"role": "borrower", "exp": now.Add(time.Hour).Unix()}), http.StatusForbidden},
		{"7|opaque-token", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+tc.token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("token %q: expected %d, got %d", tc.token, tc.want, w.Code)
		}
	}
}

func TestRequestIDGenerated(t *testing.T) {
	r := newEngine()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Fatalf("expected uuid request id, got %q", w.Header().Get("X-Request-ID"))
	}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc" {
		t.Fatalf("client request id should be kept")
	}
}
