package repository

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/securebank-labs/securebank/internal/config"
	"github.com/securebank-labs/securebank/internal/db"
	"github.com/securebank-labs/securebank/internal/models"
)

// setupTestDB connects to the test database named by the SECUREBANK_TEST_*
// environment, applies the schema and wipes the tables. Tests are skipped
// when no database is reachable.
func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Host:            envOr("SECUREBANK_TEST_DB_HOST", "localhost"),
		Port:            envOr("SECUREBANK_TEST_DB_PORT", "5432"),
		User:            envOr("SECUREBANK_TEST_DB_USER", "postgres"),
		Password:        envOr("SECUREBANK_TEST_DB_PASSWORD", "postgres"),
		DBName:          envOr("SECUREBANK_TEST_DB_NAME", "securebank_test"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	database, err := db.Connect(context.Background(), &cfg, logger)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	runMigrations(t, database)
	truncateTables(t, database)

	return database
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runMigrations(t *testing.T, database *db.DB) {
	t.Helper()

	migrationPath := filepath.Join("..", "db", "migrations", "000001_init.up.sql")
	sqlBytes, err := os.ReadFile(migrationPath) // #nosec G304
	if err != nil {
		t.Fatalf("failed to read migration file: %v", err)
	}

	if _, err := database.ExecContext(context.Background(), string(sqlBytes)); err != nil {
		t.Logf("migration execution completed (tables may already exist): %v", err)
	}
}

func truncateTables(t *testing.T, database *db.DB) {
	t.Helper()

	tables := []string{
		"idempotency_keys",
		"outbox_messages",
		"audit_logs",
		"access_requests",
		"transactions",
		"accounts",
	}
	for _, table := range tables {
		if _, err := database.ExecContext(context.Background(), "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
}

// seedAccount inserts an account with the given role and balance
func seedAccount(t *testing.T, database *db.DB, accountNumber string, role models.AccountRole, balanceCents int64) *models.Account {
	t.Helper()

	account := &models.Account{
		ID:            uuid.New(),
		Name:          "Test " + accountNumber,
		Email:         accountNumber + "@example.com",
		AccountNumber: accountNumber,
		Role:          role,
		BalanceCents:  balanceCents,
		IsActive:      true,
	}

	_, err := database.ExecContext(context.Background(), `
		INSERT INTO accounts (id, name, email, account_number, role, balance_cents, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		account.ID, account.Name, account.Email, account.AccountNumber,
		account.Role, account.BalanceCents, account.IsActive,
	)
	if err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}

	return account
}
