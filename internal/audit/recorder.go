// Package audit implements the audit port: an append-only trail of every
// state-changing or privileged operation. Writes are non-fatal to the
// triggering operation: a failed audit insert is logged and the operation's
// result stands.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/securebank-labs/securebank/internal/models"
	"github.com/securebank-labs/securebank/internal/repository"
)

type originKey struct{}

// Origin carries request metadata recorded alongside each entry
type Origin struct {
	IPAddress string
	UserAgent string
}

// WithOrigin attaches request origin metadata to the context. The HTTP layer
// sets it; Record reads it back.
func WithOrigin(ctx context.Context, origin Origin) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

func originFrom(ctx context.Context) Origin {
	if origin, ok := ctx.Value(originKey{}).(Origin); ok {
		return origin
	}
	return Origin{}
}

// Recorder writes audit entries through the audit repository
type Recorder struct {
	repo   repository.AuditRepository
	logger *slog.Logger
}

// NewRecorder creates a Recorder over the given repository
func NewRecorder(repo repository.AuditRepository, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record appends an audit entry. Failures are logged, never returned: audit
// unavailability must not block banking operations.
func (r *Recorder) Record(ctx context.Context, actorID uuid.UUID, actorRole, action string, targetAccountID *uuid.UUID, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	origin := originFrom(ctx)

	entry := &models.AuditLogEntry{
		ID:              uuid.New(),
		ActorID:         actorID,
		ActorRole:       actorRole,
		Action:          action,
		TargetAccountID: targetAccountID,
		Details:         details,
		IPAddress:       origin.IPAddress,
		UserAgent:       origin.UserAgent,
		CreatedAt:       time.Now().UTC(),
	}

	if err := r.repo.Insert(ctx, entry); err != nil {
		r.logger.Error("failed to write audit entry",
			"action", action,
			"actor_id", actorID,
			"error", err,
		)
	}
}
