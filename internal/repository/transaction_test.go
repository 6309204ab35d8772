package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securebank-labs/securebank/internal/models"
)

func seedTransaction(t *testing.T, repo TransactionRepository, accountID uuid.UUID, direction models.TransactionDirection, amountCents, balanceAfter int64, flagged bool, createdAt time.Time) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		ID:                uuid.New(),
		AccountID:         accountID,
		Direction:         direction,
		AmountCents:       amountCents,
		Description:       "seed",
		BalanceAfterCents: balanceAfter,
		IsFlagged:         flagged,
		CreatedAt:         createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), txn))
	return txn
}

func TestTransactionRepository_ListByAccount(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTransactionRepository(database)
	ctx := context.Background()

	account := seedAccount(t, database, "ACC3000000001", models.RoleUser, 100_000)
	other := seedAccount(t, database, "ACC3000000002", models.RoleUser, 0)

	now := time.Now().UTC()
	seedTransaction(t, repo, account.ID, models.TransactionCredit, 10_000, 110_000, false, now.Add(-2*time.Hour))
	newest := seedTransaction(t, repo, account.ID, models.TransactionDebit, 5_000, 105_000, false, now.Add(-time.Hour))
	seedTransaction(t, repo, other.ID, models.TransactionCredit, 1_000, 1_000, false, now)

	txns, err := repo.ListByAccount(ctx, account.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, newest.ID, txns[0].ID, "newest first")

	total, err := repo.CountByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestTransactionRepository_CountByAccountSince(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTransactionRepository(database)
	ctx := context.Background()

	account := seedAccount(t, database, "ACC3000000003", models.RoleUser, 0)

	now := time.Now().UTC()
	seedTransaction(t, repo, account.ID, models.TransactionCredit, 1_000, 1_000, false, now.Add(-48*time.Hour))
	seedTransaction(t, repo, account.ID, models.TransactionDebit, 500, 500, false, now.Add(-time.Hour))

	count, err := repo.CountByAccountSince(ctx, account.ID, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTransactionRepository_AverageBalanceAfter(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTransactionRepository(database)
	ctx := context.Background()

	account := seedAccount(t, database, "ACC3000000004", models.RoleUser, 0)

	t.Run("no history", func(t *testing.T) {
		_, ok, err := repo.AverageBalanceAfter(ctx, account.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("with history", func(t *testing.T) {
		now := time.Now().UTC()
		seedTransaction(t, repo, account.ID, models.TransactionCredit, 10_000, 10_000, false, now.Add(-2*time.Hour))
		seedTransaction(t, repo, account.ID, models.TransactionCredit, 20_000, 30_000, false, now.Add(-time.Hour))

		avg, ok, err := repo.AverageBalanceAfter(ctx, account.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(20_000), avg)
	})
}

func TestTransactionRepository_FlaggedCounts(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTransactionRepository(database)
	ctx := context.Background()

	account := seedAccount(t, database, "ACC3000000005", models.RoleUser, 0)

	now := time.Now().UTC()
	seedTransaction(t, repo, account.ID, models.TransactionDebit, 90_000, 10_000, true, now.Add(-time.Hour))
	seedTransaction(t, repo, account.ID, models.TransactionDebit, 1_000, 9_000, false, now)

	flagged, err := repo.CountFlaggedByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), flagged)

	listed, err := repo.ListFlagged(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].IsFlagged)
}
