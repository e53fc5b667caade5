package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ticktee/internal/middleware"
	"ticktee/internal/ratelimit"
	"ticktee/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

type MockAdminChecker struct {
	mock.Mock
}

func (m *MockAdminChecker) IsAdmin(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	store := ratelimit.NewMemoryStore(0)
	defer store.Close()
	limiter := ratelimit.New(store, "test", 2, time.Minute)

	app := fiber.New()
	app.Use(middleware.RateLimit(limiter, quietLogger()))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	retry := resp.Header.Get("Retry-After")
	assert.NotEmpty(t, retry)
	assert.NotEqual(t, "0", retry)
	assert.Contains(t, body(t, resp), `"error"`)
}

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("redis: connection refused")
}

func (failingStore) Close() error { return nil }

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := ratelimit.New(failingStore{}, "test", 1, time.Minute)

	app := fiber.New()
	app.Use(middleware.RateLimit(limiter, quietLogger()))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func adminApp(checker middleware.AdminChecker, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	app.Get("/admin", middleware.AdminOnly(checker, quietLogger()), func(c *fiber.Ctx) error {
		return c.SendString("welcome")
	})
	return app
}

func TestAdminOnly(t *testing.T) {
	checker := new(MockAdminChecker)
	checker.On("IsAdmin", "admin-1").Return(true, nil)
	checker.On("IsAdmin", "cust-1").Return(false, nil)
	checker.On("IsAdmin", "broken").Return(true, errors.New("db down"))

	tests := []struct {
		userID string
		want   int
	}{
		{"admin-1", http.StatusOK},
		{"cust-1", http.StatusForbidden},
		{"broken", http.StatusForbidden},
		{"", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		resp, err := adminApp(checker, tt.userID).Test(httptest.NewRequest(http.MethodGet, "/admin", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.StatusCode, "user %q", tt.userID)
	}
}

func authApp(authService *services.AuthService) *fiber.App {
	app := fiber.New()
	app.Get("/me", middleware.AuthRequired(authService, false, quietLogger()), func(c *fiber.Ctx) error {
		return c.SendString(middleware.UserID(c) + "|" + middleware.Email(c))
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	authService := services.NewAuthService(nil, nil, "secret", time.Hour, quietLogger())
	app := authApp(authService)
	token, _, err := authService.IssueToken("user-1", "a@example.com")
	require.NoError(t, err)

	// Bearer header
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user-1|a@example.com", body(t, resp))
	assert.Empty(t, resp.Header.Get("Set-Cookie"), "fresh tokens are not re-issued")

	// Session cookie
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Missing and malformed
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token "+token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_RefreshesAgingSession(t *testing.T) {
	authService := services.NewAuthService(nil, nil, "secret", time.Hour, quietLogger())
	aging := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"email":   "a@example.com",
		"exp":     time.Now().Add(10 * time.Minute).Unix(),
	})
	token, err := aging.SignedString([]byte("secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := authApp(authService).Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := resp.Header.Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, middleware.SessionCookie+"="), cookie)
	assert.Contains(t, strings.ToLower(cookie), "httponly")
}
