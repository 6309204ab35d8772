package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/securebank-labs/securebank/internal/db"
	"github.com/securebank-labs/securebank/internal/models"
	"github.com/securebank-labs/securebank/internal/repository"
	"github.com/securebank-labs/securebank/internal/scoring"
)

// Risk levels reported by the fraud check endpoint
const (
	RiskHigh   = "HIGH"
	RiskMedium = "MEDIUM"
	RiskLow    = "LOW"
)

const defaultSpendingWindowDays = 90

// FraudAssessment is a what-if fraud verdict for a hypothetical debit
type FraudAssessment struct {
	Verdict   scoring.FraudVerdict
	RiskLevel string
}

// InsightService answers the analytical questions: hypothetical fraud
// checks, loan eligibility, spending breakdowns and the simulated credit
// score. The scoring itself is pure; this layer only assembles the account
// aggregates the scorers consume.
type InsightService struct {
	db     *db.DB
	scorer scoring.FraudScorer
}

// NewInsightService creates an InsightService
func NewInsightService(database *db.DB, scorer scoring.FraudScorer) *InsightService {
	return &InsightService{db: database, scorer: scorer}
}

// FraudCheck scores a hypothetical debit against the account's current
// state without moving money.
func (s *InsightService) FraudCheck(ctx context.Context, accountID uuid.UUID, amountCents int64) (*FraudAssessment, error) {
	if err := ValidateAmount(amountCents); err != nil {
		return nil, &ServiceError{Code: ErrCodeInvalidAmount, Message: err.Error()}
	}

	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sameDayCount, err := repository.NewTransactionRepository(s.db).CountByAccountSince(ctx, accountID, startOfDay(now))
	if err != nil {
		return nil, internalError("failed to count same-day transactions: %v", err)
	}

	verdict := s.scorer.Score(scoring.FraudContext{
		Amount:        float64(amountCents) / centsPerUnit,
		Hour:          now.Hour(),
		BalanceBefore: float64(account.BalanceCents) / centsPerUnit,
		SameDayCount:  sameDayCount,
	})

	level := RiskLow
	switch {
	case verdict.FraudScore >= 0.7:
		level = RiskHigh
	case verdict.FraudScore >= 0.4:
		level = RiskMedium
	}

	return &FraudAssessment{Verdict: verdict, RiskLevel: level}, nil
}

// LoanEligibility scores a loan application against the account's history
func (s *InsightService) LoanEligibility(ctx context.Context, accountID uuid.UUID, requestedCents int64) (*scoring.LoanVerdict, error) {
	if err := ValidateAmount(requestedCents); err != nil {
		return nil, &ServiceError{Code: ErrCodeInvalidAmount, Message: err.Error()}
	}

	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	ltx := repository.NewTransactionRepository(s.db)

	avgBalanceCents, hasHistory, err := ltx.AverageBalanceAfter(ctx, accountID)
	if err != nil {
		return nil, internalError("failed to compute average balance: %v", err)
	}
	if !hasHistory {
		avgBalanceCents = account.BalanceCents
	}

	now := time.Now().UTC()
	monthlyCount, err := ltx.CountByAccountSince(ctx, accountID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, internalError("failed to count recent transactions: %v", err)
	}

	verdict := scoring.ScoreLoan(scoring.LoanContext{
		AverageBalance:  float64(avgBalanceCents) / centsPerUnit,
		AccountAgeDays:  int(now.Sub(account.CreatedAt).Hours() / 24),
		MonthlyTxnCount: monthlyCount,
		RequestedAmount: float64(requestedCents) / centsPerUnit,
	})
	return &verdict, nil
}

// Spending summarises debit activity over the trailing window. A
// non-positive days value falls back to the 90-day default.
func (s *InsightService) Spending(ctx context.Context, accountID uuid.UUID, days int) (*scoring.SpendingAnalysis, error) {
	if _, err := s.loadAccount(ctx, accountID); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultSpendingWindowDays
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	txns, err := repository.NewTransactionRepository(s.db).ListByAccountSince(ctx, accountID, since)
	if err != nil {
		return nil, internalError("failed to list transactions: %v", err)
	}

	analysis := scoring.AnalyzeSpending(txns)
	return &analysis, nil
}

// CreditScore computes the simulated credit score from account aggregates
func (s *InsightService) CreditScore(ctx context.Context, accountID uuid.UUID) (*scoring.CreditResult, error) {
	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	ltx := repository.NewTransactionRepository(s.db)

	avgBalanceCents, hasHistory, err := ltx.AverageBalanceAfter(ctx, accountID)
	if err != nil {
		return nil, internalError("failed to compute average balance: %v", err)
	}
	if !hasHistory {
		avgBalanceCents = account.BalanceCents
	}

	now := time.Now().UTC()
	monthlyCount, err := ltx.CountByAccountSince(ctx, accountID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, internalError("failed to count recent transactions: %v", err)
	}

	flagged, err := ltx.CountFlaggedByAccount(ctx, accountID)
	if err != nil {
		return nil, internalError("failed to count flagged transactions: %v", err)
	}

	result := scoring.ScoreCredit(scoring.CreditContext{
		AverageBalance:  float64(avgBalanceCents) / centsPerUnit,
		AccountAgeDays:  int(now.Sub(account.CreatedAt).Hours() / 24),
		MonthlyTxnCount: monthlyCount,
		FlaggedCount:    flagged,
		HasHistory:      hasHistory,
	})
	return &result, nil
}

func (s *InsightService) loadAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	account, err := repository.NewAccountRepository(s.db).FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{Code: ErrCodeAccountNotFound, Message: "account not found"}
		}
		return nil, internalError("failed to load account: %v", err)
	}
	return account, nil
}
