package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret  = "test-jwt-secret-for-middleware"
	testCookieName = "jwt"
)

func setupMiddlewareTest(t *testing.T) (*gin.Engine, *AuthMiddleware, repository.UserRepository) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	router := gin.New()
	router.Use(LoggingMiddleware())
	return router, NewAuthMiddleware(testJWTSecret, testCookieName, userRepo), userRepo
}

func createTestUser(t *testing.T, repo repository.UserRepository, role model.UserRole) *model.User {
	user := &model.User{Name: "Ann", Email: string(role) + "@x.com", Password: "pw123", Role: role}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func sessionRequest(t *testing.T, path, token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	}
	return req
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	router, authMiddleware, userRepo := setupMiddlewareTest(t)
	user := createTestUser(t, userRepo, model.RoleUser)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		current, ok := CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{
			"id":           current.ID,
			"hash_present": current.PasswordHash != "",
		})
	})

	validToken, err := util.GenerateToken(user.ID, testJWTSecret, time.Hour)
	require.NoError(t, err)
	expiredToken, err := util.GenerateToken(user.ID, testJWTSecret, -time.Minute)
	require.NoError(t, err)
	foreignToken, err := util.GenerateToken(user.ID, "another-secret", time.Hour)
	require.NoError(t, err)
	ghostToken, err := util.GenerateToken(user.ID+100, testJWTSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantBody   string
	}{
		{name: "Valid session", token: validToken, wantStatus: http.StatusOK, wantBody: `"hash_present":false`},
		{name: "No cookie", token: "", wantStatus: http.StatusUnauthorized, wantBody: "AUTH_UNAUTHORIZED"},
		{name: "Malformed token", token: "not-a-jwt", wantStatus: http.StatusUnauthorized, wantBody: "AUTH_TOKEN_INVALID"},
		{name: "Expired token", token: expiredToken, wantStatus: http.StatusUnauthorized, wantBody: "AUTH_TOKEN_EXPIRED"},
		{name: "Wrong signing secret", token: foreignToken, wantStatus: http.StatusUnauthorized, wantBody: "AUTH_TOKEN_INVALID"},
		{name: "User no longer exists", token: ghostToken, wantStatus: http.StatusUnauthorized, wantBody: "AUTH_UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, sessionRequest(t, "/test", tt.token))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	router, authMiddleware, userRepo := setupMiddlewareTest(t)
	customer := createTestUser(t, userRepo, model.RoleUser)
	admin := createTestUser(t, userRepo, model.RoleAdmin)

	router.GET("/admin", authMiddleware.Authenticate(), authMiddleware.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/no-auth", authMiddleware.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	customerToken, err := util.GenerateToken(customer.ID, testJWTSecret, time.Hour)
	require.NoError(t, err)
	adminToken, err := util.GenerateToken(admin.ID, testJWTSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{name: "Admin passes", path: "/admin", token: adminToken, wantStatus: http.StatusNoContent},
		{name: "Customer is forbidden", path: "/admin", token: customerToken, wantStatus: http.StatusForbidden},
		{name: "Anonymous is unauthorized", path: "/admin", wantStatus: http.StatusUnauthorized},
		{name: "Missing Authenticate", path: "/no-auth", token: adminToken, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, sessionRequest(t, tt.path, tt.token))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	router, _, _ := setupMiddlewareTest(t)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}
