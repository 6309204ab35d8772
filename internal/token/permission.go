// Package token issues and verifies the signed permission tokens that back
// owner-granted admin access. A token is a self-contained capability: its
// structure, signature and expiry are checked without touching storage, and
// the service layer separately confirms the backing request is still granted.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenType tags permission tokens so other JWTs signed with a shared secret
// cannot be replayed as capabilities.
const tokenType = "admin_permission"

// ErrInvalidToken covers every structural, signature and expiry failure
var ErrInvalidToken = errors.New("invalid permission token")

// Claims are the verified contents of a permission token
type Claims struct {
	AdminID   uuid.UUID
	AccountID uuid.UUID
	RequestID uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// PermissionIssuer creates and verifies permission tokens
type PermissionIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewPermissionIssuer creates a PermissionIssuer with the given signing
// secret and token validity window.
func NewPermissionIssuer(secret string, ttl time.Duration) *PermissionIssuer {
	return &PermissionIssuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the validity window tokens are issued with
func (i *PermissionIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a permission token binding an admin, an account and the
// granted request, valid from now for the configured window.
func (i *PermissionIssuer) Issue(adminID, accountID, requestID uuid.UUID, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"admin_id":   adminID.String(),
		"account_id": accountID.String(),
		"request_id": requestID.String(),
		"type":       tokenType,
		"iat":        now.Unix(),
		"exp":        now.Add(i.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign permission token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a permission token, returning its claims.
// Any structural, signature or expiry problem yields ErrInvalidToken.
func (i *PermissionIssuer) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if typ, _ := mapClaims["type"].(string); typ != tokenType {
		return nil, ErrInvalidToken
	}

	adminID, err := claimUUID(mapClaims, "admin_id")
	if err != nil {
		return nil, ErrInvalidToken
	}
	accountID, err := claimUUID(mapClaims, "account_id")
	if err != nil {
		return nil, ErrInvalidToken
	}
	requestID, err := claimUUID(mapClaims, "request_id")
	if err != nil {
		return nil, ErrInvalidToken
	}

	iat, err := mapClaims.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, ErrInvalidToken
	}
	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		AdminID:   adminID,
		AccountID: accountID,
		RequestID: requestID,
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
	}, nil
}

func claimUUID(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, _ := claims[key].(string)
	return uuid.Parse(raw)
}
