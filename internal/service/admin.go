package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/securebank-labs/securebank/internal/audit"
	"github.com/securebank-labs/securebank/internal/db"
	"github.com/securebank-labs/securebank/internal/models"
	"github.com/securebank-labs/securebank/internal/repository"
)

// DashboardStats are the operational counters shown on the admin dashboard
type DashboardStats struct {
	TotalUsers          int64 `json:"total_users"`
	TotalTransactions   int64 `json:"total_transactions"`
	FlaggedTransactions int64 `json:"flagged_transactions"`
	TransactionsToday   int64 `json:"transactions_today"`
	PendingRequests     int64 `json:"pending_requests"`
	GrantedRequests     int64 `json:"granted_requests"`
}

// FlaggedTransaction pairs a flagged ledger entry with its owner details
type FlaggedTransaction struct {
	Transaction   *models.Transaction
	AccountNumber string
	OwnerName     string
}

// AdminService serves the operational surface: dashboard counters, customer
// listings, the flagged-transaction review queue, the audit trail and
// account activation. None of it touches balances.
type AdminService struct {
	db      *db.DB
	auditor *audit.Recorder
}

// NewAdminService creates an AdminService
func NewAdminService(database *db.DB, auditor *audit.Recorder) *AdminService {
	return &AdminService{db: database, auditor: auditor}
}

// Dashboard assembles the operational counters
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	accounts := repository.NewAccountRepository(s.db)
	transactions := repository.NewTransactionRepository(s.db)
	requests := repository.NewAccessRequestRepository(s.db)

	stats := &DashboardStats{}
	var err error

	if stats.TotalUsers, err = accounts.CountByRole(ctx, models.RoleUser); err != nil {
		return nil, internalError("failed to count users: %v", err)
	}
	if stats.TotalTransactions, err = transactions.Count(ctx); err != nil {
		return nil, internalError("failed to count transactions: %v", err)
	}
	if stats.FlaggedTransactions, err = transactions.CountFlagged(ctx); err != nil {
		return nil, internalError("failed to count flagged transactions: %v", err)
	}
	if stats.TransactionsToday, err = transactions.CountSince(ctx, startOfDay(time.Now().UTC())); err != nil {
		return nil, internalError("failed to count today's transactions: %v", err)
	}
	if stats.PendingRequests, err = requests.CountByStatus(ctx, models.AccessRequestPending); err != nil {
		return nil, internalError("failed to count pending requests: %v", err)
	}
	if stats.GrantedRequests, err = requests.CountByStatus(ctx, models.AccessRequestGranted); err != nil {
		return nil, internalError("failed to count granted requests: %v", err)
	}

	return stats, nil
}

// ListUsers returns one page of customer accounts plus the total count
func (s *AdminService) ListUsers(ctx context.Context, page, pageSize int) ([]*models.Account, int64, error) {
	page, pageSize = NormalizePage(page, pageSize, 100)

	accounts := repository.NewAccountRepository(s.db)

	users, err := accounts.ListByRole(ctx, models.RoleUser, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, internalError("failed to list users: %v", err)
	}
	total, err := accounts.CountByRole(ctx, models.RoleUser)
	if err != nil {
		return nil, 0, internalError("failed to count users: %v", err)
	}
	return users, total, nil
}

// FlaggedTransactions returns the review queue with owner details resolved
func (s *AdminService) FlaggedTransactions(ctx context.Context, limit int) ([]*FlaggedTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	txns, err := repository.NewTransactionRepository(s.db).ListFlagged(ctx, limit)
	if err != nil {
		return nil, internalError("failed to list flagged transactions: %v", err)
	}

	accounts := repository.NewAccountRepository(s.db)
	owners := make(map[uuid.UUID]*models.Account)

	result := make([]*FlaggedTransaction, 0, len(txns))
	for _, txn := range txns {
		owner, ok := owners[txn.AccountID]
		if !ok {
			owner, err = accounts.FindByID(ctx, txn.AccountID)
			if err != nil {
				return nil, internalError("failed to load account: %v", err)
			}
			owners[txn.AccountID] = owner
		}
		result = append(result, &FlaggedTransaction{
			Transaction:   txn,
			AccountNumber: owner.AccountNumber,
			OwnerName:     owner.Name,
		})
	}
	return result, nil
}

// AuditLogs returns one page of the audit trail, newest first
func (s *AdminService) AuditLogs(ctx context.Context, page, pageSize int) ([]*models.AuditLogEntry, int64, error) {
	page, pageSize = NormalizePage(page, pageSize, 100)

	auditRepo := repository.NewAuditRepository(s.db)

	entries, err := auditRepo.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, internalError("failed to list audit logs: %v", err)
	}
	total, err := auditRepo.Count(ctx)
	if err != nil {
		return nil, 0, internalError("failed to count audit logs: %v", err)
	}
	return entries, total, nil
}

// ToggleAccount flips a customer account's active flag. Deactivated
// accounts keep their history but reject balance mutations.
func (s *AdminService) ToggleAccount(ctx context.Context, adminID, accountID uuid.UUID) (*models.Account, error) {
	accounts := repository.NewAccountRepository(s.db)

	account, err := accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{Code: ErrCodeAccountNotFound, Message: "account not found"}
		}
		return nil, internalError("failed to load account: %v", err)
	}

	newState := !account.IsActive
	if err := accounts.SetActive(ctx, accountID, newState); err != nil {
		return nil, internalError("failed to update account state: %v", err)
	}
	account.IsActive = newState

	action := "deactivated_account"
	if newState {
		action = "activated_account"
	}
	s.auditor.Record(ctx, adminID, string(models.RoleAdmin), action, &accountID, nil)

	return account, nil
}
