package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/securebank-labs/securebank/internal/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	AdjustBalance(ctx context.Context, accountID uuid.UUID, deltaCents int64) error
	SetActive(ctx context.Context, accountID uuid.UUID, active bool) error
	ListByRole(ctx context.Context, role models.AccountRole, offset, limit int) ([]*models.Account, error)
	CountByRole(ctx context.Context, role models.AccountRole) (int64, error)
}

// accountRepository implements AccountRepository
type accountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db DBTX) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, name, email, phone, account_number, role,
	       balance_cents, is_active, created_at, updated_at`

func scanAccount(row *sql.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Phone,
		&account.AccountNumber,
		&account.Role,
		&account.BalanceCents,
		&account.IsActive,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &account, nil
}

// FindByID retrieves an account by its UUID
func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

// FindByIDForUpdate retrieves an account by UUID and takes its row lock.
// Must be called inside a transaction.
func (r *accountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

// FindByAccountNumber retrieves an account by its public account number
func (r *accountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, accountNumber))
}

// AdjustBalance atomically adjusts the balance by the given delta in cents.
// The balance_cents CHECK constraint rejects any update that would go negative.
func (r *accountRepository) AdjustBalance(ctx context.Context, accountID uuid.UUID, deltaCents int64) error {
	query := `
		UPDATE accounts
		SET balance_cents = balance_cents + $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, accountID, deltaCents)
	if err != nil {
		return fmt.Errorf("failed to adjust account balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// SetActive flips the active flag on an account
func (r *accountRepository) SetActive(ctx context.Context, accountID uuid.UUID, active bool) error {
	query := `UPDATE accounts SET is_active = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, accountID, active)
	if err != nil {
		return fmt.Errorf("failed to set account active flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ListByRole returns a page of accounts with the given role, newest first
func (r *accountRepository) ListByRole(ctx context.Context, role models.AccountRole, offset, limit int) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE role = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, role, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.ID,
			&account.Name,
			&account.Email,
			&account.Phone,
			&account.AccountNumber,
			&account.Role,
			&account.BalanceCents,
			&account.IsActive,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, &account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}

	return accounts, nil
}

// CountByRole returns the number of accounts with the given role
func (r *accountRepository) CountByRole(ctx context.Context, role models.AccountRole) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE role = $1`, role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}
