package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securebank-labs/securebank/internal/models"
)

const testSessionSecret = "test-session-secret"

func sessionToken(t *testing.T, id uuid.UUID, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  id.String(),
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSessionSecret))
	require.NoError(t, err)
	return signed
}

func identityRouter(captured *Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Authenticate(testSessionSecret))
	router.GET("/me", func(c *gin.Context) {
		if captured != nil {
			*captured = CallerIdentity(c)
		}
		c.Status(http.StatusOK)
	})
	admin := router.Group("/admin")
	admin.Use(RequireAdmin())
	admin.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestAuthenticate(t *testing.T) {
	t.Run("valid token sets the caller identity", func(t *testing.T) {
		userID := uuid.New()
		var captured Identity
		router := identityRouter(&captured)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+sessionToken(t, userID, "user"))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, captured.ID)
		assert.Equal(t, models.RoleUser, captured.Role)
	})

	t.Run("missing header", func(t *testing.T) {
		router := identityRouter(nil)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		claims := jwt.MapClaims{"sub": uuid.NewString(), "role": "user", "exp": time.Now().Add(time.Hour).Unix()}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
		require.NoError(t, err)

		router := identityRouter(nil)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown role claim", func(t *testing.T) {
		router := identityRouter(nil)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+sessionToken(t, uuid.New(), "superuser"))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	router := identityRouter(nil)

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set("Authorization", "Bearer "+sessionToken(t, uuid.New(), "admin"))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("user is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set("Authorization", "Bearer "+sessionToken(t, uuid.New(), "user"))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
