package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/securebank-labs/securebank/internal/models"
)

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if acc := args.Get(0); acc != nil {
		return acc.(*models.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if acc := args.Get(0); acc != nil {
		return acc.(*models.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	args := m.Called(ctx, accountNumber)
	if acc := args.Get(0); acc != nil {
		return acc.(*models.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) AdjustBalance(ctx context.Context, accountID uuid.UUID, deltaCents int64) error {
	args := m.Called(ctx, accountID, deltaCents)
	return args.Error(0)
}

func (m *mockAccountRepo) SetActive(ctx context.Context, accountID uuid.UUID, active bool) error {
	args := m.Called(ctx, accountID, active)
	return args.Error(0)
}

func (m *mockAccountRepo) ListByRole(ctx context.Context, role models.AccountRole, offset, limit int) ([]*models.Account, error) {
	args := m.Called(ctx, role, offset, limit)
	if accs := args.Get(0); accs != nil {
		return accs.([]*models.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) CountByRole(ctx context.Context, role models.AccountRole) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

type mockTransactionRepo struct {
	mock.Mock
}

func (m *mockTransactionRepo) Create(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *mockTransactionRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, accountID, offset, limit)
	if txns := args.Get(0); txns != nil {
		return txns.([]*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTransactionRepo) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTransactionRepo) CountByAccountSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, accountID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTransactionRepo) ListByAccountSince(ctx context.Context, accountID uuid.UUID, since time.Time) ([]*models.Transaction, error) {
	args := m.Called(ctx, accountID, since)
	if txns := args.Get(0); txns != nil {
		return txns.([]*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTransactionRepo) AverageBalanceAfter(ctx context.Context, accountID uuid.UUID) (int64, bool, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockTransactionRepo) CountFlaggedByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTransactionRepo) ListFlagged(ctx context.Context, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, limit)
	if txns := args.Get(0); txns != nil {
		return txns.([]*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTransactionRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTransactionRepo) CountFlagged(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTransactionRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Enqueue(ctx context.Context, topic, key, payload string) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*models.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	if msgs := args.Get(0); msgs != nil {
		return msgs.([]*models.OutboxMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOutboxRepo) MarkSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) IncrementRetry(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockAccessRequestRepo struct {
	mock.Mock
}

func (m *mockAccessRequestRepo) Create(ctx context.Context, req *models.AccessRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockAccessRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.AccessRequest, error) {
	args := m.Called(ctx, id)
	if req := args.Get(0); req != nil {
		return req.(*models.AccessRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessRequestRepo) MarkGranted(ctx context.Context, id uuid.UUID, token string, grantedAt time.Time) error {
	args := m.Called(ctx, id, token, grantedAt)
	return args.Error(0)
}

func (m *mockAccessRequestRepo) MarkDenied(ctx context.Context, id uuid.UUID, deniedAt time.Time) error {
	args := m.Called(ctx, id, deniedAt)
	return args.Error(0)
}

func (m *mockAccessRequestRepo) MarkExpired(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAccessRequestRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAccessRequestRepo) ListPendingByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.AccessRequest, error) {
	args := m.Called(ctx, accountID)
	if reqs := args.Get(0); reqs != nil {
		return reqs.([]*models.AccessRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessRequestRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID, limit int) ([]*models.AccessRequest, error) {
	args := m.Called(ctx, adminID, limit)
	if reqs := args.Get(0); reqs != nil {
		return reqs.([]*models.AccessRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccessRequestRepo) CountByStatus(ctx context.Context, status models.AccessRequestStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}
