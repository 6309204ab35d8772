package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/securebank-labs/securebank/internal/models"
)

// IdempotencyRepository stores processed request/response pairs so replayed
// mutating calls return the original response instead of re-executing.
type IdempotencyRepository interface {
	Get(ctx context.Context, key, requestPath string) (*models.IdempotencyKey, error)
	Store(ctx context.Context, idemKey *models.IdempotencyKey) error
}

type idempotencyRepository struct {
	db DBTX
}

// NewIdempotencyRepository creates a new IdempotencyRepository
func NewIdempotencyRepository(db DBTX) IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

// Get retrieves a stored response for a key and path, if one exists
func (r *idempotencyRepository) Get(ctx context.Context, key, requestPath string) (*models.IdempotencyKey, error) {
	query := `
		SELECT key, request_path, response_status, response_body, created_at
		FROM idempotency_keys
		WHERE key = $1 AND request_path = $2
	`

	var idemKey models.IdempotencyKey
	err := r.db.QueryRowContext(ctx, query, key, requestPath).Scan(
		&idemKey.Key,
		&idemKey.RequestPath,
		&idemKey.ResponseStatus,
		&idemKey.ResponseBody,
		&idemKey.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	return &idemKey, nil
}

// Store saves a response under a key. Concurrent duplicates lose the insert
// race silently; the stored response is the one that matters.
func (r *idempotencyRepository) Store(ctx context.Context, idemKey *models.IdempotencyKey) error {
	query := `
		INSERT INTO idempotency_keys (key, request_path, response_status, response_body)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key, request_path) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		idemKey.Key,
		idemKey.RequestPath,
		idemKey.ResponseStatus,
		idemKey.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}

	return nil
}
