package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/securebank-labs/securebank/internal/models"
)

// AuditRepository defines the interface for the append-only audit log
type AuditRepository interface {
	Insert(ctx context.Context, entry *models.AuditLogEntry) error
	List(ctx context.Context, offset, limit int) ([]*models.AuditLogEntry, error)
	Count(ctx context.Context) (int64, error)
}

type auditRepository struct {
	db DBTX
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db DBTX) AuditRepository {
	return &auditRepository{db: db}
}

// Insert appends an audit entry
func (r *auditRepository) Insert(ctx context.Context, entry *models.AuditLogEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_logs (id, actor_id, actor_role, action, target_account_id,
			details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.ActorRole,
		entry.Action,
		entry.TargetAccountID,
		details,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

// List returns a page of audit entries, newest first
func (r *auditRepository) List(ctx context.Context, offset, limit int) ([]*models.AuditLogEntry, error) {
	query := `
		SELECT id, actor_id, actor_role, action, target_account_id,
		       details, ip_address, user_agent, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditLogEntry
	for rows.Next() {
		var entry models.AuditLogEntry
		var details []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.ActorRole,
			&entry.Action,
			&entry.TargetAccountID,
			&details,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit details: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit rows: %w", err)
	}

	return entries, nil
}

// Count returns the total number of audit entries
func (r *auditRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}
