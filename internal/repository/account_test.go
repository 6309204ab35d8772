package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securebank-labs/securebank/internal/models"
)

func TestAccountRepository_FindByID(t *testing.T) {
	database := setupTestDB(t)
	repo := NewAccountRepository(database)
	ctx := context.Background()

	seeded := seedAccount(t, database, "ACC1000000001", models.RoleUser, 50_000)

	t.Run("existing account", func(t *testing.T) {
		account, err := repo.FindByID(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, seeded.AccountNumber, account.AccountNumber)
		assert.Equal(t, int64(50_000), account.BalanceCents)
		assert.Equal(t, models.RoleUser, account.Role)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestAccountRepository_FindByAccountNumber(t *testing.T) {
	database := setupTestDB(t)
	repo := NewAccountRepository(database)
	ctx := context.Background()

	seeded := seedAccount(t, database, "ACC1000000002", models.RoleUser, 0)

	account, err := repo.FindByAccountNumber(ctx, seeded.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, account.ID)

	_, err = repo.FindByAccountNumber(ctx, "ACC0000000000")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAccountRepository_AdjustBalance(t *testing.T) {
	database := setupTestDB(t)
	repo := NewAccountRepository(database)
	ctx := context.Background()

	seeded := seedAccount(t, database, "ACC1000000003", models.RoleUser, 10_000)

	require.NoError(t, repo.AdjustBalance(ctx, seeded.ID, 5_000))
	require.NoError(t, repo.AdjustBalance(ctx, seeded.ID, -2_500))

	account, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12_500), account.BalanceCents)
}

func TestAccountRepository_SetActive(t *testing.T) {
	database := setupTestDB(t)
	repo := NewAccountRepository(database)
	ctx := context.Background()

	seeded := seedAccount(t, database, "ACC1000000004", models.RoleUser, 0)

	require.NoError(t, repo.SetActive(ctx, seeded.ID, false))

	account, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.False(t, account.IsActive)
}

func TestAccountRepository_CountByRole(t *testing.T) {
	database := setupTestDB(t)
	repo := NewAccountRepository(database)
	ctx := context.Background()

	seedAccount(t, database, "ACC1000000005", models.RoleUser, 0)
	seedAccount(t, database, "ACC1000000006", models.RoleUser, 0)
	seedAccount(t, database, "ACC1000000007", models.RoleAdmin, 0)

	users, err := repo.CountByRole(ctx, models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(2), users)

	admins, err := repo.CountByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), admins)
}
