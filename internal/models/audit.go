package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLogEntry is an append-only record of a state-changing or privileged
// action. Entries are never mutated or deleted.
type AuditLogEntry struct {
	CreatedAt       time.Time      `db:"created_at"`
	Details         map[string]any `db:"details"`
	TargetAccountID *uuid.UUID     `db:"target_account_id"`
	ActorRole       string         `db:"actor_role"`
	Action          string         `db:"action"`
	IPAddress       string         `db:"ip_address"`
	UserAgent       string         `db:"user_agent"`
	ID              uuid.UUID      `db:"id"`
	ActorID         uuid.UUID      `db:"actor_id"`
}
