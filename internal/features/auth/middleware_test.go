package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/devlink-social/devlink/internal/config"
	"github.com/devlink-social/devlink/internal/pkg/jwt"
)

func setupAuthRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	// Repository untouched on the rejection paths under test
	router.GET("/protected", NewAuthMiddleware(nil, cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := setupAuthRouter(&config.Config{JWTSecret: "test-secret"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "AUTH_REQUIRED")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router := setupAuthRouter(&config.Config{JWTSecret: "test-secret"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc123")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := setupAuthRouter(&config.Config{JWTSecret: "test-secret"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	router := setupAuthRouter(&config.Config{JWTSecret: "right-secret"})

	token, err := jwt.GenerateToken("64f000000000000000000001", "dev@devlink.dev",
		jwt.DefaultConfig("wrong-secret", time.Hour))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthMiddleware_PassesThroughWithoutToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/open", OptionalAuthMiddleware(nil, &config.Config{JWTSecret: "s"}), func(c *gin.Context) {
		_, authed := CurrentUser(c)
		require.False(t, authed)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestValidateUsername(t *testing.T) {
	require.NoError(t, ValidateUsername("alice"))
	require.NoError(t, ValidateUsername("dev-user_42"))
	require.Error(t, ValidateUsername("ab"))
	require.Error(t, ValidateUsername("9lives"))
	require.Error(t, ValidateUsername("has space"))
}

func TestGenerateUniqueUsername(t *testing.T) {
	require.Equal(t, "janedoe", GenerateUniqueUsername("Jane Doe"))
	require.Equal(t, "user99", GenerateUniqueUsername("99!"))
	require.Len(t, GenerateUniqueUsername("a very long display name indeed"), 15)
}
