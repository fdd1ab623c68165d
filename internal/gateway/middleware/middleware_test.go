package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealplan-system/internal/orders"
	"mealplan-system/internal/utils"
)

var secret = []byte("middleware-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func token(t *testing.T, role orders.Role) string {
	t.Helper()
	s, _, err := utils.GenerateToken(secret, "u1", "ann", role, time.Hour)
	require.NoError(t, err)
	return s
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		id, role := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user": id, "role": role})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	r := newRouter(JWTAuth(secret))
	valid := token(t, orders.RoleCustomer)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"bearer header", "/ping", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "/ping", "bearer " + valid, http.StatusOK},
		{"query token", "/ping?token=" + valid, "", http.StatusOK},
		{"missing", "/ping", "", http.StatusUnauthorized},
		{"wrong scheme", "/ping", "Basic abc", http.StatusUnauthorized},
		{"bad token", "/ping", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"user":"u1","role":"CUSTOMER"}`, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := newRouter(JWTAuth(secret), RequireRole(orders.RoleAdmin, orders.RoleCompanyAdmin))

	for role, want := range map[orders.Role]int{
		orders.RoleAdmin:        http.StatusOK,
		orders.RoleCompanyAdmin: http.StatusOK,
		orders.RoleCustomer:     http.StatusForbidden,
		orders.RoleGuest:        http.StatusForbidden,
	} {
		t.Run(string(role), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Authorization", "Bearer "+token(t, role))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, want, w.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	_, err := RateLimit("lots")
	assert.Error(t, err)

	mw, err := RateLimit("2-M")
	require.NoError(t, err)
	r := newRouter(mw)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS([]string{"https://app.example.com"}))

	preflight := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	preflight.Header.Set("Origin", "https://app.example.com")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, preflight)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
