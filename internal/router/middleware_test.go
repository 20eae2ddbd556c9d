package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mallfront/internal/config"
	"github.com/mallfront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	if strings.TrimSpace(w2.Header().Get(requestIDHeader)) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

type authEnvelope struct {
	StatusCode int `json:"status_code"`
	Data       struct {
		LoginURL string `json:"login_url"`
	} `json:"data"`
}

func newUserAuthRouter(t *testing.T, cfg config.UserJWTConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(UserJWTAuthMiddleware(cfg))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("user_id"), "nickname": c.GetString("nickname")})
	})
	return r
}

func signUserToken(t *testing.T, secret, issuer string, userID uint, expiresIn time.Duration) string {
	t.Helper()
	claims := &service.UserClaims{
		UserID:   userID,
		Nickname: "测试用户",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-expiresIn)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return token
}

func TestUserJWTAuthMiddlewareMissingHeader(t *testing.T) {
	r := newUserAuthRouter(t, config.UserJWTConfig{Secret: "test-secret", LoginURL: "/login"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	var resp authEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
	if resp.Data.LoginURL != "/login" {
		t.Fatalf("login_url want /login got %s", resp.Data.LoginURL)
	}
}

func TestUserJWTAuthMiddlewareValidToken(t *testing.T) {
	r := newUserAuthRouter(t, config.UserJWTConfig{Secret: "test-secret", Issuer: "sso", LoginURL: "/login"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signUserToken(t, "test-secret", "sso", 7, time.Hour))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		UserID   uint   `json:"user_id"`
		Nickname string `json:"nickname"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.UserID != 7 {
		t.Fatalf("user_id want 7 got %d", resp.UserID)
	}
	if resp.Nickname != "测试用户" {
		t.Fatalf("nickname mismatch, got %s", resp.Nickname)
	}
}

func TestUserJWTAuthMiddlewareRejectsBadTokens(t *testing.T) {
	r := newUserAuthRouter(t, config.UserJWTConfig{Secret: "test-secret", Issuer: "sso", LoginURL: "/login"})

	cases := []struct {
		name  string
		token string
	}{
		{"wrong secret", signUserToken(t, "other-secret", "sso", 7, time.Hour)},
		{"wrong issuer", signUserToken(t, "test-secret", "someone-else", 7, time.Hour)},
		{"expired", signUserToken(t, "test-secret", "sso", 7, -time.Hour)},
		{"garbage", "not-a-token"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+tc.token)
		r.ServeHTTP(w, req)

		var resp authEnvelope
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: unmarshal response failed: %v", tc.name, err)
		}
		if resp.StatusCode != 401 {
			t.Fatalf("%s: status_code want 401 got %d", tc.name, resp.StatusCode)
		}
	}
}

func TestKeyByUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if got := KeyByUserID(c); got == "" {
		t.Fatalf("anonymous key should fall back to client ip")
	}

	c.Set("user_id", uint(42))
	if got := KeyByUserID(c); got != "u42" {
		t.Fatalf("key want u42 got %s", got)
	}
}
