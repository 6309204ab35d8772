package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/securebank-labs/securebank/internal/middleware"
	"github.com/securebank-labs/securebank/internal/models"
	"github.com/securebank-labs/securebank/internal/service"
)

const testSessionSecret = "handlers-test-secret"

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Deposit(ctx context.Context, accountID uuid.UUID, amountCents int64, description string) (*models.Transaction, error) {
	args := m.Called(ctx, accountID, amountCents, description)
	if txn := args.Get(0); txn != nil {
		return txn.(*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLedger) Withdraw(ctx context.Context, accountID uuid.UUID, amountCents int64, description string) (*models.Transaction, error) {
	args := m.Called(ctx, accountID, amountCents, description)
	if txn := args.Get(0); txn != nil {
		return txn.(*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLedger) Transfer(ctx context.Context, fromAccountID uuid.UUID, toAccountNumber string, amountCents int64, description string) (*models.Transaction, *models.Transaction, error) {
	args := m.Called(ctx, fromAccountID, toAccountNumber, amountCents, description)
	var debit, credit *models.Transaction
	if txn := args.Get(0); txn != nil {
		debit = txn.(*models.Transaction)
	}
	if txn := args.Get(1); txn != nil {
		credit = txn.(*models.Transaction)
	}
	return debit, credit, args.Error(2)
}

func (m *mockLedger) ListTransactions(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]*models.Transaction, int64, error) {
	args := m.Called(ctx, accountID, page, pageSize)
	if txns := args.Get(0); txns != nil {
		return txns.([]*models.Transaction), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *mockLedger) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if acc := args.Get(0); acc != nil {
		return acc.(*models.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func testRouter(ledger service.Ledger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(ledger, nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	user := router.Group("/api/v1/user")
	user.Use(middleware.Authenticate(testSessionSecret))
	user.GET("/profile", h.Profile)
	user.POST("/deposit", h.Deposit)
	user.POST("/withdraw", h.Withdraw)
	user.POST("/transfer", h.Transfer)
	user.GET("/transactions", h.ListTransactions)
	return router
}

func bearerToken(t *testing.T, id uuid.UUID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  id.String(),
		"role": "user",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSessionSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestDepositEndpoint(t *testing.T) {
	userID := uuid.New()

	t.Run("parses the decimal amount into cents", func(t *testing.T) {
		ledger := new(mockLedger)
		router := testRouter(ledger)

		txn := &models.Transaction{
			ID:                uuid.New(),
			AccountID:         userID,
			Direction:         models.TransactionCredit,
			AmountCents:       15_050,
			Description:       "Paycheck",
			BalanceAfterCents: 25_050,
			CreatedAt:         time.Now().UTC(),
		}
		ledger.On("Deposit", mock.Anything, userID, int64(15_050), "Paycheck").Return(txn, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/user/deposit", bearerToken(t, userID),
			`{"amount": "150.50", "description": "Paycheck"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp struct {
			Transaction struct {
				Amount       string `json:"amount"`
				BalanceAfter string `json:"balance_after"`
				Direction    string `json:"direction"`
			} `json:"transaction"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "150.50", resp.Transaction.Amount)
		assert.Equal(t, "250.50", resp.Transaction.BalanceAfter)
		assert.Equal(t, "credit", resp.Transaction.Direction)
		ledger.AssertExpectations(t)
	})

	t.Run("sub-cent amounts are rejected", func(t *testing.T) {
		ledger := new(mockLedger)
		router := testRouter(ledger)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/user/deposit", bearerToken(t, userID),
			`{"amount": "10.999"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ledger.AssertNotCalled(t, "Deposit")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		router := testRouter(new(mockLedger))

		rec := doJSON(t, router, http.MethodPost, "/api/v1/user/deposit", "", `{"amount": "10.00"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestWithdrawEndpointErrorMapping(t *testing.T) {
	userID := uuid.New()

	cases := []struct {
		name       string
		code       string
		wantStatus int
	}{
		{"insufficient funds", service.ErrCodeInsufficientFunds, http.StatusBadRequest},
		{"account not found", service.ErrCodeAccountNotFound, http.StatusNotFound},
		{"deactivated account", service.ErrCodeAccountInactive, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := new(mockLedger)
			router := testRouter(ledger)
			ledger.On("Withdraw", mock.Anything, userID, int64(1_000), "").
				Return(nil, &service.ServiceError{Code: tc.code, Message: tc.name})

			rec := doJSON(t, router, http.MethodPost, "/api/v1/user/withdraw", bearerToken(t, userID),
				`{"amount": "10.00"}`)

			assert.Equal(t, tc.wantStatus, rec.Code)
			var resp struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp.Error)
		})
	}
}

func TestTransferEndpoint(t *testing.T) {
	userID := uuid.New()
	counterparty := "ACC9998887776"

	ledger := new(mockLedger)
	router := testRouter(ledger)

	debit := &models.Transaction{
		ID:                 uuid.New(),
		AccountID:          userID,
		Direction:          models.TransactionDebit,
		AmountCents:        50_000,
		BalanceAfterCents:  10_000,
		CounterpartyNumber: &counterparty,
		CreatedAt:          time.Now().UTC(),
	}
	credit := &models.Transaction{
		ID:                uuid.New(),
		Direction:         models.TransactionCredit,
		AmountCents:       50_000,
		BalanceAfterCents: 60_000,
		CreatedAt:         debit.CreatedAt,
	}
	ledger.On("Transfer", mock.Anything, userID, counterparty, int64(50_000), "rent").
		Return(debit, credit, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/user/transfer", bearerToken(t, userID),
		`{"to_account_number": "ACC9998887776", "amount": "500.00", "description": "rent"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Transaction struct {
			Counterparty string `json:"counterparty"`
			Direction    string `json:"direction"`
		} `json:"transaction"`
		Credited struct {
			Direction string `json:"direction"`
		} `json:"credited"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, counterparty, resp.Transaction.Counterparty)
	assert.Equal(t, "debit", resp.Transaction.Direction)
	assert.Equal(t, "credit", resp.Credited.Direction)
	ledger.AssertExpectations(t)
}
