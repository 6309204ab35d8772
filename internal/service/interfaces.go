package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/securebank-labs/securebank/internal/models"
	"github.com/securebank-labs/securebank/internal/scoring"
)

// Ledger is the money-movement surface consumed by the handlers
type Ledger interface {
	Deposit(ctx context.Context, accountID uuid.UUID, amountCents int64, description string) (*models.Transaction, error)
	Withdraw(ctx context.Context, accountID uuid.UUID, amountCents int64, description string) (*models.Transaction, error)
	Transfer(ctx context.Context, fromAccountID uuid.UUID, toAccountNumber string, amountCents int64, description string) (*models.Transaction, *models.Transaction, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]*models.Transaction, int64, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
}

// AccessDelegator is the consent-workflow surface consumed by the handlers
type AccessDelegator interface {
	Request(ctx context.Context, adminID, accountID uuid.UUID, reason string) (*models.AccessRequest, error)
	Decide(ctx context.Context, ownerID, requestID uuid.UUID, grant bool) (*models.AccessRequest, error)
	VerifyAndAuthorize(ctx context.Context, adminID, accountID uuid.UUID, tokenString string) (*AuthorizedView, error)
	ListPendingForAccount(ctx context.Context, accountID uuid.UUID) ([]*PendingRequest, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID, limit int) ([]*models.AccessRequest, error)
	FindForAdmin(ctx context.Context, adminID, requestID uuid.UUID) (*models.AccessRequest, error)
	SweepExpired(ctx context.Context) (int64, error)
}

// Insights is the analytics surface consumed by the handlers
type Insights interface {
	FraudCheck(ctx context.Context, accountID uuid.UUID, amountCents int64) (*FraudAssessment, error)
	LoanEligibility(ctx context.Context, accountID uuid.UUID, requestedCents int64) (*scoring.LoanVerdict, error)
	Spending(ctx context.Context, accountID uuid.UUID, days int) (*scoring.SpendingAnalysis, error)
	CreditScore(ctx context.Context, accountID uuid.UUID) (*scoring.CreditResult, error)
}

// Admin is the operational surface consumed by the handlers
type Admin interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	ListUsers(ctx context.Context, page, pageSize int) ([]*models.Account, int64, error)
	FlaggedTransactions(ctx context.Context, limit int) ([]*FlaggedTransaction, error)
	AuditLogs(ctx context.Context, page, pageSize int) ([]*models.AuditLogEntry, int64, error)
	ToggleAccount(ctx context.Context, adminID, accountID uuid.UUID) (*models.Account, error)
}

var (
	_ Ledger          = (*LedgerService)(nil)
	_ AccessDelegator = (*AccessService)(nil)
	_ Insights        = (*InsightService)(nil)
	_ Admin           = (*AdminService)(nil)
)
