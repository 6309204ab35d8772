package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/securebank-labs/securebank/internal/models"
	"github.com/securebank-labs/securebank/internal/repository"
)

const idempotencyKeyHeader = "Idempotency-Key"

// idempotentPaths defines which paths require idempotency handling
//
// Only mutating money-movement operations need it
var idempotentPaths = []string{
	"/api/v1/user/deposit",
	"/api/v1/user/withdraw",
	"/api/v1/user/transfer",
}

type responseCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b) // Capture for caching
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the cached response when a money-movement request
// carries an Idempotency-Key already seen for the same path. Requests
// without the header pass through unchanged.
func Idempotency(repo repository.IdempotencyRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requiresIdempotency(c.Request) {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(idempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		requestPath := normalizeRequestPath(c.Request.URL.Path)
		ctx := c.Request.Context()

		cached, err := repo.Get(ctx, idempotencyKey, requestPath)
		if errors.Is(err, models.ErrNotFound) {
			cached, err = nil, nil
		}
		if err != nil {
			logger.Error("failed to check idempotency cache", "error", err)
			c.Next()
			return
		}

		if cached != nil {
			logger.Debug("returning cached idempotent response",
				"key", idempotencyKey,
				"path", requestPath,
				"status", cached.ResponseStatus,
			)
			c.Header("X-Idempotent-Replayed", "true")
			c.Data(cached.ResponseStatus, "application/json", []byte(cached.ResponseBody))
			c.Abort()
			return
		}

		capture := &responseCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Next()

		if shouldCacheResponse(capture.Status()) {
			idemKey := &models.IdempotencyKey{
				Key:            idempotencyKey,
				RequestPath:    requestPath,
				ResponseStatus: capture.Status(),
				ResponseBody:   capture.body.String(),
				CreatedAt:      time.Now().UTC(),
			}

			if err := repo.Store(ctx, idemKey); err != nil {
				logger.Error("failed to store idempotency key",
					"error", err,
					"key", idempotencyKey,
				)
			}
		}
	}
}

func requiresIdempotency(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}

	for _, path := range idempotentPaths {
		if r.URL.Path == path {
			return true
		}
	}
	return false
}

func normalizeRequestPath(urlPath string) string {
	return strings.TrimSuffix(urlPath, "/")
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
