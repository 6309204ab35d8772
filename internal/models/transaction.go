package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionDirection represents the direction of a ledger entry
type TransactionDirection string

const (
	TransactionCredit TransactionDirection = "credit"
	TransactionDebit  TransactionDirection = "debit"
)

// Transaction represents an immutable ledger entry for account activity.
//
// Rows are append-only: never updated, never deleted. Each row snapshots the
// balance after the mutation so the ledger can be verified independently.
type Transaction struct {
	CreatedAt          time.Time            `db:"created_at"`
	CounterpartyNumber *string              `db:"counterparty_number"`
	Description        string               `db:"description"`
	Direction          TransactionDirection `db:"direction"`
	AmountCents        int64                `db:"amount_cents"`
	BalanceAfterCents  int64                `db:"balance_after_cents"`
	FraudScore         float64              `db:"fraud_score"`
	IsFlagged          bool                 `db:"is_flagged"`
	ID                 uuid.UUID            `db:"id"`
	AccountID          uuid.UUID            `db:"account_id"`
}

// IdempotencyKey tracks processed requests to prevent duplicate transactions
type IdempotencyKey struct {
	CreatedAt      time.Time `db:"created_at"`
	Key            string    `db:"key"`
	RequestPath    string    `db:"request_path"`
	ResponseBody   string    `db:"response_body"`
	ResponseStatus int       `db:"response_status"`
}
