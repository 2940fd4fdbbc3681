package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/internal/config"
	"marketplace/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type mwOKResponse struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

func mustMakeJWT(t *testing.T, secret string, sub int64, role string, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"iat":  1,
		"exp":  9999999999,
	}

	token := jwt.NewWithClaims(signingMethod, claims)

	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func newTestEcho(cfg config.Config) *echo.Echo {
	e := echo.New()

	g := e.Group("", middleware.AuthJWT(cfg))
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, mwOKResponse{
			UserID: c.Get(middleware.CtxUserIDKey).(int64),
			Role:   c.Get(middleware.CtxUserRoleKey).(string),
		})
	})

	admin := e.Group("/admin", middleware.AuthJWT(cfg), middleware.AdminRoleGuard())
	admin.GET("/ping", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	return e
}

func runRequest(t *testing.T, e *echo.Echo, method string, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWT_NoHeader(t *testing.T) {
	cfg := config.Config{JWTSecret: "test_secret"}
	e := newTestEcho(cfg)

	rec := runRequest(t, e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	cfg := config.Config{JWTSecret: "test_secret"}
	e := newTestEcho(cfg)

	rec := runRequest(t, e, http.MethodGet, "/me", "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_BadSignature(t *testing.T) {
	cfg := config.Config{JWTSecret: "test_secret"}
	e := newTestEcho(cfg)

	token := mustMakeJWT(t, "other_secret", 1, "BUYER", jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ValidToken_SetsIdentity(t *testing.T) {
	cfg := config.Config{JWTSecret: "test_secret"}
	e := newTestEcho(cfg)

	token := mustMakeJWT(t, "test_secret", 42, "SELLER", jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body.UserID)
	assert.Equal(t, "SELLER", body.Role)
}

func TestAdminRoleGuard_NonAdmin(t *testing.T) {
	cfg := config.Config{JWTSecret: "test_secret"}
	e := newTestEcho(cfg)

	token := mustMakeJWT(t, "test_secret", 1, "SELLER", jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/admin/ping", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoleGuard_Admin(t *testing.T) {
	cfg := config.Config{JWTSecret: "test_secret"}
	e := newTestEcho(cfg)

	token := mustMakeJWT(t, "test_secret", 1, "ADMIN", jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/admin/ping", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
