package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/securebank-labs/securebank/internal/models"
)

// uniqueViolation is the PostgreSQL error code raised when the partial unique
// index on pending (admin_id, account_id) pairs rejects a duplicate.
const uniqueViolation = "23505"

// AccessRequestRepository defines the interface for access request data access.
// All status changes go through conditional updates keyed on the current
// status, so concurrent deciders race safely: one wins, the rest observe
// models.ErrStaleStatus.
type AccessRequestRepository interface {
	Create(ctx context.Context, req *models.AccessRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AccessRequest, error)
	MarkGranted(ctx context.Context, id uuid.UUID, token string, grantedAt time.Time) error
	MarkDenied(ctx context.Context, id uuid.UUID, deniedAt time.Time) error
	MarkExpired(ctx context.Context, id uuid.UUID) error
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
	ListPendingByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.AccessRequest, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID, limit int) ([]*models.AccessRequest, error)
	CountByStatus(ctx context.Context, status models.AccessRequestStatus) (int64, error)
}

type accessRequestRepository struct {
	db DBTX
}

// NewAccessRequestRepository creates a new AccessRequestRepository
func NewAccessRequestRepository(db DBTX) AccessRequestRepository {
	return &accessRequestRepository{db: db}
}

const accessRequestColumns = `id, admin_id, account_id, reason, status,
	       permission_token, requested_at, expires_at, granted_at, denied_at`

// Create inserts a pending access request. Returns
// models.ErrDuplicatePendingRequest when a pending request already exists for
// the same (admin, account) pair.
func (r *accessRequestRepository) Create(ctx context.Context, req *models.AccessRequest) error {
	query := `
		INSERT INTO access_requests (id, admin_id, account_id, reason, status,
			requested_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.AdminID,
		req.AccountID,
		req.Reason,
		req.Status,
		req.RequestedAt,
		req.ExpiresAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return models.ErrDuplicatePendingRequest
		}
		return fmt.Errorf("failed to create access request: %w", err)
	}

	return nil
}

// FindByID retrieves an access request by its UUID
func (r *accessRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.AccessRequest, error) {
	query := `SELECT ` + accessRequestColumns + ` FROM access_requests WHERE id = $1`

	var req models.AccessRequest
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.AdminID,
		&req.AccountID,
		&req.Reason,
		&req.Status,
		&req.PermissionToken,
		&req.RequestedAt,
		&req.ExpiresAt,
		&req.GrantedAt,
		&req.DeniedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find access request: %w", err)
	}

	return &req, nil
}

func (r *accessRequestRepository) conditionalUpdate(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update access request status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrStaleStatus
	}

	return nil
}

// MarkGranted transitions a pending request to granted and stores the issued
// token. Exactly one concurrent caller can succeed.
func (r *accessRequestRepository) MarkGranted(ctx context.Context, id uuid.UUID, token string, grantedAt time.Time) error {
	query := `
		UPDATE access_requests
		SET status = 'granted', permission_token = $2, granted_at = $3
		WHERE id = $1 AND status = 'pending'
	`
	return r.conditionalUpdate(ctx, query, id, token, grantedAt)
}

// MarkDenied transitions a pending request to denied
func (r *accessRequestRepository) MarkDenied(ctx context.Context, id uuid.UUID, deniedAt time.Time) error {
	query := `
		UPDATE access_requests
		SET status = 'denied', denied_at = $2
		WHERE id = $1 AND status = 'pending'
	`
	return r.conditionalUpdate(ctx, query, id, deniedAt)
}

// MarkExpired transitions a pending request to expired
func (r *accessRequestRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE access_requests
		SET status = 'expired'
		WHERE id = $1 AND status = 'pending'
	`
	return r.conditionalUpdate(ctx, query, id)
}

// ExpirePending transitions every pending request past its expiry to expired
// and returns how many rows changed. Safe to run repeatedly.
func (r *accessRequestRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE access_requests
		SET status = 'expired'
		WHERE status = 'pending' AND expires_at < $1
	`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire pending requests: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *accessRequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]*models.AccessRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query access requests: %w", err)
	}
	defer rows.Close()

	var reqs []*models.AccessRequest
	for rows.Next() {
		var req models.AccessRequest
		if err := rows.Scan(
			&req.ID,
			&req.AdminID,
			&req.AccountID,
			&req.Reason,
			&req.Status,
			&req.PermissionToken,
			&req.RequestedAt,
			&req.ExpiresAt,
			&req.GrantedAt,
			&req.DeniedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan access request row: %w", err)
		}
		reqs = append(reqs, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate access request rows: %w", err)
	}

	return reqs, nil
}

// ListPendingByAccount returns an account's pending requests, newest first
func (r *accessRequestRepository) ListPendingByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.AccessRequest, error) {
	query := `SELECT ` + accessRequestColumns + `
		FROM access_requests
		WHERE account_id = $1 AND status = 'pending'
		ORDER BY requested_at DESC`
	return r.queryRequests(ctx, query, accountID)
}

// ListByAdmin returns an admin's requests across all accounts, newest first
func (r *accessRequestRepository) ListByAdmin(ctx context.Context, adminID uuid.UUID, limit int) ([]*models.AccessRequest, error) {
	query := `SELECT ` + accessRequestColumns + `
		FROM access_requests
		WHERE admin_id = $1
		ORDER BY requested_at DESC
		LIMIT $2`
	return r.queryRequests(ctx, query, adminID, limit)
}

// CountByStatus returns the number of requests currently in the given status
func (r *accessRequestRepository) CountByStatus(ctx context.Context, status models.AccessRequestStatus) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM access_requests WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count access requests: %w", err)
	}
	return count, nil
}
