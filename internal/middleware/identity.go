// Package middleware provides the gin middleware: bearer-token identity,
// admin gating and idempotent request replay.
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/securebank-labs/securebank/internal/audit"
	"github.com/securebank-labs/securebank/internal/models"
)

const identityKey = "securebank.identity"

// Identity is the authenticated caller extracted from the session token
type Identity struct {
	ID   uuid.UUID
	Role models.AccountRole
}

// CallerIdentity returns the authenticated caller set by Authenticate.
// Handlers behind the middleware may assume it is present.
func CallerIdentity(c *gin.Context) Identity {
	identity, _ := c.Get(identityKey)
	return identity.(Identity)
}

// Authenticate validates the Authorization bearer token and stores the
// caller identity and request origin on the context.
func Authenticate(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		identity, err := parseSessionToken(strings.TrimPrefix(header, "Bearer "), key)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(identityKey, identity)
		c.Request = c.Request.WithContext(audit.WithOrigin(c.Request.Context(), audit.Origin{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}))
		c.Next()
	}
}

// RequireAdmin rejects callers whose session role is not admin. Must run
// after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerIdentity(c).Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "admin role required",
			})
			return
		}
		c.Next()
	}
}

func parseSessionToken(tokenString string, key []byte) (Identity, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("invalid session token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("invalid session claims")
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid subject claim")
	}

	role, _ := claims["role"].(string)
	switch models.AccountRole(role) {
	case models.RoleUser, models.RoleAdmin:
	default:
		return Identity{}, fmt.Errorf("invalid role claim")
	}

	return Identity{ID: id, Role: models.AccountRole(role)}, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}
