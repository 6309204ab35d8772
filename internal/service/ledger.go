package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/securebank-labs/securebank/internal/audit"
	"github.com/securebank-labs/securebank/internal/db"
	"github.com/securebank-labs/securebank/internal/lock"
	"github.com/securebank-labs/securebank/internal/models"
	"github.com/securebank-labs/securebank/internal/notification"
	"github.com/securebank-labs/securebank/internal/repository"
	"github.com/securebank-labs/securebank/internal/scoring"
)

// centsPerUnit converts minor-unit amounts to the major units the scoring
// functions operate on.
const centsPerUnit = 100

// LedgerService owns accounts and their transaction history. Every balance
// mutation runs inside a storage transaction holding the account row lock,
// under a per-account distributed lock, so concurrent mutations serialize
// and the sufficient-funds check can never act on a stale balance.
type LedgerService struct {
	db              *db.DB
	locks           *lock.Manager
	scorer          scoring.FraudScorer
	notifier        *notification.Notifier
	auditor         *audit.Recorder
	maxDepositCents int64
}

// NewLedgerService creates a LedgerService
func NewLedgerService(
	database *db.DB,
	locks *lock.Manager,
	scorer scoring.FraudScorer,
	notifier *notification.Notifier,
	auditor *audit.Recorder,
	maxDepositCents int64,
) *LedgerService {
	return &LedgerService{
		db:              database,
		locks:           locks,
		scorer:          scorer,
		notifier:        notifier,
		auditor:         auditor,
		maxDepositCents: maxDepositCents,
	}
}

// Deposit credits an account and appends the matching ledger entry.
// Deposits are not fraud-scored.
func (s *LedgerService) Deposit(ctx context.Context, accountID uuid.UUID, amountCents int64, description string) (*models.Transaction, error) {
	if err := ValidateDepositAmount(amountCents, s.maxDepositCents); err != nil {
		return nil, &ServiceError{Code: ErrCodeInvalidAmount, Message: err.Error()}
	}
	if description == "" {
		description = "Deposit"
	}

	release, err := s.locks.AcquireAccount(ctx, accountID)
	if err != nil {
		return nil, internalError("failed to acquire account lock: %v", err)
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, internalError("failed to start transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	txn, err := s.performDeposit(ctx,
		repository.NewAccountRepository(tx),
		repository.NewTransactionRepository(tx),
		repository.NewOutboxRepository(tx),
		accountID, amountCents, description,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, internalError("failed to commit transaction: %v", err)
	}

	s.auditor.Record(ctx, accountID, string(models.RoleUser), "deposit", nil, map[string]any{
		"amount_cents":   amountCents,
		"transaction_id": txn.ID.String(),
	})

	return txn, nil
}

// performDeposit contains the core deposit logic, run inside a transaction
func (s *LedgerService) performDeposit(
	ctx context.Context,
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
	accountID uuid.UUID,
	amountCents int64,
	description string,
) (*models.Transaction, error) {
	account, err := accounts.FindByIDForUpdate(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{Code: ErrCodeAccountNotFound, Message: "account not found"}
		}
		return nil, internalError("failed to load account: %v", err)
	}

	if !account.IsActive {
		return nil, &ServiceError{Code: ErrCodeAccountInactive, Message: "account is deactivated"}
	}

	if err := accounts.AdjustBalance(ctx, account.ID, amountCents); err != nil {
		return nil, internalError("failed to credit balance: %v", err)
	}
	newBalance := account.BalanceCents + amountCents

	txn := &models.Transaction{
		ID:                uuid.New(),
		AccountID:         account.ID,
		Direction:         models.TransactionCredit,
		AmountCents:       amountCents,
		Description:       description,
		BalanceAfterCents: newBalance,
		IsFlagged:         false,
		FraudScore:        0,
		CreatedAt:         time.Now().UTC(),
	}
	if err := transactions.Create(ctx, txn); err != nil {
		return nil, internalError("failed to record transaction: %v", err)
	}

	if err := s.notifier.TransactionAlert(ctx, outbox, account, models.TransactionCredit, amountCents, newBalance); err != nil {
		return nil, internalError("failed to stage transaction alert: %v", err)
	}

	return txn, nil
}

// Withdraw debits an account after a sufficient-funds check and attaches a
// fraud verdict to the ledger entry. A flagged withdrawal still completes;
// the verdict only annotates.
func (s *LedgerService) Withdraw(ctx context.Context, accountID uuid.UUID, amountCents int64, description string) (*models.Transaction, error) {
	if err := ValidateAmount(amountCents); err != nil {
		return nil, &ServiceError{Code: ErrCodeInvalidAmount, Message: err.Error()}
	}
	if description == "" {
		description = "Withdrawal"
	}

	release, err := s.locks.AcquireAccount(ctx, accountID)
	if err != nil {
		return nil, internalError("failed to acquire account lock: %v", err)
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, internalError("failed to start transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	txn, err := s.performWithdraw(ctx,
		repository.NewAccountRepository(tx),
		repository.NewTransactionRepository(tx),
		repository.NewOutboxRepository(tx),
		accountID, amountCents, description,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, internalError("failed to commit transaction: %v", err)
	}

	s.auditor.Record(ctx, accountID, string(models.RoleUser), "withdrawal", nil, map[string]any{
		"amount_cents":   amountCents,
		"transaction_id": txn.ID.String(),
		"fraud_flagged":  txn.IsFlagged,
	})

	return txn, nil
}

// performWithdraw contains the core withdrawal logic, run inside a transaction
func (s *LedgerService) performWithdraw(
	ctx context.Context,
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
	accountID uuid.UUID,
	amountCents int64,
	description string,
) (*models.Transaction, error) {
	account, err := accounts.FindByIDForUpdate(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{Code: ErrCodeAccountNotFound, Message: "account not found"}
		}
		return nil, internalError("failed to load account: %v", err)
	}

	if !account.IsActive {
		return nil, &ServiceError{Code: ErrCodeAccountInactive, Message: "account is deactivated"}
	}

	if account.BalanceCents < amountCents {
		return nil, &ServiceError{Code: ErrCodeInsufficientFunds, Message: "insufficient balance"}
	}

	now := time.Now().UTC()
	sameDayCount, err := transactions.CountByAccountSince(ctx, account.ID, startOfDay(now))
	if err != nil {
		return nil, internalError("failed to count same-day transactions: %v", err)
	}

	verdict := s.scorer.Score(scoring.FraudContext{
		Amount:        float64(amountCents) / centsPerUnit,
		Hour:          now.Hour(),
		BalanceBefore: float64(account.BalanceCents) / centsPerUnit,
		SameDayCount:  sameDayCount,
	})

	if err := accounts.AdjustBalance(ctx, account.ID, -amountCents); err != nil {
		return nil, internalError("failed to debit balance: %v", err)
	}
	newBalance := account.BalanceCents - amountCents

	txn := &models.Transaction{
		ID:                uuid.New(),
		AccountID:         account.ID,
		Direction:         models.TransactionDebit,
		AmountCents:       amountCents,
		Description:       description,
		BalanceAfterCents: newBalance,
		IsFlagged:         verdict.IsFraud,
		FraudScore:        verdict.FraudScore,
		CreatedAt:         now,
	}
	if err := transactions.Create(ctx, txn); err != nil {
		return nil, internalError("failed to record transaction: %v", err)
	}

	if err := s.notifier.TransactionAlert(ctx, outbox, account, models.TransactionDebit, amountCents, newBalance); err != nil {
		return nil, internalError("failed to stage transaction alert: %v", err)
	}

	return txn, nil
}

// Transfer moves funds between two accounts as one logical unit: both balance
// updates and both ledger entries commit together or not at all. Row locks
// are taken in account-id order so opposite-direction transfers cannot
// deadlock. Transfers are treated as trusted internal movement and are not
// fraud-scored.
func (s *LedgerService) Transfer(ctx context.Context, fromAccountID uuid.UUID, toAccountNumber string, amountCents int64, description string) (*models.Transaction, *models.Transaction, error) {
	if err := ValidateAmount(amountCents); err != nil {
		return nil, nil, &ServiceError{Code: ErrCodeInvalidAmount, Message: err.Error()}
	}
	if strings.TrimSpace(toAccountNumber) == "" {
		return nil, nil, &ServiceError{Code: ErrCodeInvalidAmount, Message: "recipient account number required"}
	}

	// Resolve the recipient up front so both distributed locks can be taken
	// in a fixed order.
	recipient, err := repository.NewAccountRepository(s.db).FindByAccountNumber(ctx, toAccountNumber)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, &ServiceError{Code: ErrCodeRecipientNotFound, Message: "recipient account not found"}
		}
		return nil, nil, internalError("failed to resolve recipient: %v", err)
	}
	if recipient.ID == fromAccountID {
		return nil, nil, &ServiceError{Code: ErrCodeSelfTransfer, Message: "cannot transfer to own account"}
	}

	first, second := orderIDs(fromAccountID, recipient.ID)
	releaseFirst, err := s.locks.AcquireAccount(ctx, first)
	if err != nil {
		return nil, nil, internalError("failed to acquire account lock: %v", err)
	}
	defer releaseFirst()
	releaseSecond, err := s.locks.AcquireAccount(ctx, second)
	if err != nil {
		return nil, nil, internalError("failed to acquire account lock: %v", err)
	}
	defer releaseSecond()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, nil, internalError("failed to start transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	debitTxn, creditTxn, err := s.performTransfer(ctx,
		repository.NewAccountRepository(tx),
		repository.NewTransactionRepository(tx),
		repository.NewOutboxRepository(tx),
		fromAccountID, recipient.ID, amountCents, description,
	)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, internalError("failed to commit transaction: %v", err)
	}

	s.auditor.Record(ctx, fromAccountID, string(models.RoleUser), "transfer", &recipient.ID, map[string]any{
		"amount_cents": amountCents,
		"to_account":   toAccountNumber,
	})

	return debitTxn, creditTxn, nil
}

// performTransfer contains the core transfer logic, run inside a transaction
func (s *LedgerService) performTransfer(
	ctx context.Context,
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
	fromAccountID, toAccountID uuid.UUID,
	amountCents int64,
	description string,
) (*models.Transaction, *models.Transaction, error) {
	// Row locks in fixed id order.
	locked := make(map[uuid.UUID]*models.Account, 2)
	first, second := orderIDs(fromAccountID, toAccountID)
	for _, id := range []uuid.UUID{first, second} {
		account, err := accounts.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, nil, &ServiceError{Code: ErrCodeRecipientNotFound, Message: "account not found"}
			}
			return nil, nil, internalError("failed to lock account: %v", err)
		}
		locked[id] = account
	}

	sender := locked[fromAccountID]
	recipient := locked[toAccountID]

	if !sender.IsActive || !recipient.IsActive {
		return nil, nil, &ServiceError{Code: ErrCodeAccountInactive, Message: "account is deactivated"}
	}

	if sender.BalanceCents < amountCents {
		return nil, nil, &ServiceError{Code: ErrCodeInsufficientFunds, Message: "insufficient balance"}
	}

	if err := accounts.AdjustBalance(ctx, sender.ID, -amountCents); err != nil {
		return nil, nil, internalError("failed to debit sender: %v", err)
	}
	if err := accounts.AdjustBalance(ctx, recipient.ID, amountCents); err != nil {
		return nil, nil, internalError("failed to credit recipient: %v", err)
	}

	senderBalance := sender.BalanceCents - amountCents
	recipientBalance := recipient.BalanceCents + amountCents
	now := time.Now().UTC()

	suffix := ""
	if description != "" {
		suffix = " - " + description
	}

	debitTxn := &models.Transaction{
		ID:                 uuid.New(),
		AccountID:          sender.ID,
		Direction:          models.TransactionDebit,
		AmountCents:        amountCents,
		Description:        fmt.Sprintf("Transfer to %s%s", recipient.AccountNumber, suffix),
		BalanceAfterCents:  senderBalance,
		CounterpartyNumber: &recipient.AccountNumber,
		CreatedAt:          now,
	}
	creditTxn := &models.Transaction{
		ID:                 uuid.New(),
		AccountID:          recipient.ID,
		Direction:          models.TransactionCredit,
		AmountCents:        amountCents,
		Description:        fmt.Sprintf("Transfer from %s%s", sender.AccountNumber, suffix),
		BalanceAfterCents:  recipientBalance,
		CounterpartyNumber: &sender.AccountNumber,
		CreatedAt:          now,
	}

	if err := transactions.Create(ctx, debitTxn); err != nil {
		return nil, nil, internalError("failed to record debit leg: %v", err)
	}
	if err := transactions.Create(ctx, creditTxn); err != nil {
		return nil, nil, internalError("failed to record credit leg: %v", err)
	}

	if err := s.notifier.TransactionAlert(ctx, outbox, sender, models.TransactionDebit, amountCents, senderBalance); err != nil {
		return nil, nil, internalError("failed to stage sender alert: %v", err)
	}
	if err := s.notifier.TransactionAlert(ctx, outbox, recipient, models.TransactionCredit, amountCents, recipientBalance); err != nil {
		return nil, nil, internalError("failed to stage recipient alert: %v", err)
	}

	return debitTxn, creditTxn, nil
}

// ListTransactions returns one page of an account's ledger, newest first,
// plus the total entry count.
func (s *LedgerService) ListTransactions(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]*models.Transaction, int64, error) {
	page, pageSize = NormalizePage(page, pageSize, 100)

	transactions := repository.NewTransactionRepository(s.db)

	txns, err := transactions.ListByAccount(ctx, accountID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, internalError("failed to list transactions: %v", err)
	}

	total, err := transactions.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, 0, internalError("failed to count transactions: %v", err)
	}

	return txns, total, nil
}

// GetAccount returns an account by id
func (s *LedgerService) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	account, err := repository.NewAccountRepository(s.db).FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{Code: ErrCodeAccountNotFound, Message: "account not found"}
		}
		return nil, internalError("failed to load account: %v", err)
	}
	return account, nil
}

func orderIDs(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
