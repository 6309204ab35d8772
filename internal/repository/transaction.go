package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/securebank-labs/securebank/internal/models"
)

// TransactionRepository defines the interface for ledger entry data access.
// Entries are append-only; there are no update or delete operations.
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*models.Transaction, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
	CountByAccountSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int64, error)
	ListByAccountSince(ctx context.Context, accountID uuid.UUID, since time.Time) ([]*models.Transaction, error)
	AverageBalanceAfter(ctx context.Context, accountID uuid.UUID) (int64, bool, error)
	CountFlaggedByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
	ListFlagged(ctx context.Context, limit int) ([]*models.Transaction, error)
	Count(ctx context.Context) (int64, error)
	CountFlagged(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type transactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db DBTX) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, account_id, direction, amount_cents, description,
	       balance_after_cents, is_flagged, fraud_score, counterparty_number, created_at`

// Create appends a ledger entry
func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, direction, amount_cents, description,
			balance_after_cents, is_flagged, fraud_score, counterparty_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		txn.ID,
		txn.AccountID,
		txn.Direction,
		txn.AmountCents,
		txn.Description,
		txn.BalanceAfterCents,
		txn.IsFlagged,
		txn.FraudScore,
		txn.CounterpartyNumber,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.AccountID,
			&txn.Direction,
			&txn.AmountCents,
			&txn.Description,
			&txn.BalanceAfterCents,
			&txn.IsFlagged,
			&txn.FraudScore,
			&txn.CounterpartyNumber,
			&txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}

	return txns, nil
}

// ListByAccount returns a page of an account's ledger entries, newest first
func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`
	return r.queryTransactions(ctx, query, accountID, offset, limit)
}

// CountByAccount returns the total number of ledger entries for an account
func (r *transactionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// CountByAccountSince counts an account's entries created at or after the given instant
func (r *transactionRepository) CountByAccountSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = $1 AND created_at >= $2`,
		accountID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions since %s: %w", since, err)
	}
	return count, nil
}

// ListByAccountSince returns all of an account's entries created at or after
// the given instant, newest first
func (r *transactionRepository) ListByAccountSince(ctx context.Context, accountID uuid.UUID, since time.Time) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`
	return r.queryTransactions(ctx, query, accountID, since)
}

// AverageBalanceAfter returns the mean of the account's balance snapshots.
// The second return value is false when the account has no entries.
func (r *transactionRepository) AverageBalanceAfter(ctx context.Context, accountID uuid.UUID) (int64, bool, error) {
	var avg *float64
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(balance_after_cents) FROM transactions WHERE account_id = $1`,
		accountID).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("failed to average balance snapshots: %w", err)
	}
	if avg == nil {
		return 0, false, nil
	}
	return int64(*avg), true, nil
}

// CountFlaggedByAccount counts an account's fraud-flagged entries
func (r *transactionRepository) CountFlaggedByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = $1 AND is_flagged`,
		accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count flagged transactions: %w", err)
	}
	return count, nil
}

// ListFlagged returns the most recent fraud-flagged entries across all accounts
func (r *transactionRepository) ListFlagged(ctx context.Context, limit int) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE is_flagged
		ORDER BY created_at DESC
		LIMIT $1`
	return r.queryTransactions(ctx, query, limit)
}

// Count returns the total number of ledger entries
func (r *transactionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// CountFlagged returns the total number of fraud-flagged entries
func (r *transactionRepository) CountFlagged(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE is_flagged`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count flagged transactions: %w", err)
	}
	return count, nil
}

// CountSince counts entries across all accounts created at or after the given instant
func (r *transactionRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE created_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions since %s: %w", since, err)
	}
	return count, nil
}
