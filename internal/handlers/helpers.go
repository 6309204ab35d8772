package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/securebank-labs/securebank/internal/models"
	"github.com/securebank-labs/securebank/internal/service"
)

// statusByCode maps service error codes to HTTP statuses
var statusByCode = map[string]int{
	service.ErrCodeInvalidAmount:     http.StatusBadRequest,
	service.ErrCodeInvalidReason:     http.StatusBadRequest,
	service.ErrCodeInvalidRequest:    http.StatusBadRequest,
	service.ErrCodeSelfTransfer:      http.StatusBadRequest,
	service.ErrCodeInsufficientFunds: http.StatusBadRequest,
	service.ErrCodeAccountNotFound:   http.StatusNotFound,
	service.ErrCodeRecipientNotFound: http.StatusNotFound,
	service.ErrCodeRequestNotFound:   http.StatusNotFound,
	service.ErrCodeAccountInactive:   http.StatusForbidden,
	service.ErrCodeAccessRevoked:     http.StatusForbidden,
	service.ErrCodeDuplicateRequest:  http.StatusConflict,
	service.ErrCodeRequestNotPending: http.StatusConflict,
	service.ErrCodeRequestExpired:    http.StatusGone,
	service.ErrCodeTokenInvalid:      http.StatusUnauthorized,
	service.ErrCodeTokenMismatch:     http.StatusUnauthorized,
	service.ErrCodeInternalError:     http.StatusInternalServerError,
}

// respondError translates a service error into the JSON error envelope.
// Internal details never reach the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	var svcErr *service.ServiceError
	if !errors.As(err, &svcErr) {
		svcErr = &service.ServiceError{Code: service.ErrCodeInternalError, Message: "internal error"}
	}

	status, ok := statusByCode[svcErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := svcErr.Message
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		message = "internal error"
	}

	c.JSON(status, gin.H{"error": svcErr.Code, "message": message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrCodeInvalidRequest, "message": message})
}

// parseAmount converts a decimal money string to cents, rejecting anything
// with sub-cent precision.
func parseAmount(raw string) (int64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %q", raw)
	}
	if !d.Equal(d.Round(2)) {
		return 0, fmt.Errorf("invalid amount: at most two decimal places allowed")
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart(), nil
}

// formatCents renders an amount in cents as a fixed two-decimal string
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// transactionView is the wire shape of a ledger entry
type transactionView struct {
	ID           string   `json:"id"`
	Direction    string   `json:"direction"`
	Amount       string   `json:"amount"`
	Description  string   `json:"description"`
	BalanceAfter string   `json:"balance_after"`
	Counterparty *string  `json:"counterparty,omitempty"`
	FraudScore   *float64 `json:"fraud_score,omitempty"`
	IsFlagged    bool     `json:"is_flagged"`
	CreatedAt    string   `json:"created_at"`
}

func toTransactionView(txn *models.Transaction) transactionView {
	view := transactionView{
		ID:           txn.ID.String(),
		Direction:    string(txn.Direction),
		Amount:       formatCents(txn.AmountCents),
		Description:  txn.Description,
		BalanceAfter: formatCents(txn.BalanceAfterCents),
		Counterparty: txn.CounterpartyNumber,
		IsFlagged:    txn.IsFlagged,
		CreatedAt:    txn.CreatedAt.Format(time.RFC3339),
	}
	if txn.Direction == models.TransactionDebit {
		score := txn.FraudScore
		view.FraudScore = &score
	}
	return view
}

func toTransactionViews(txns []*models.Transaction) []transactionView {
	views := make([]transactionView, 0, len(txns))
	for _, txn := range txns {
		views = append(views, toTransactionView(txn))
	}
	return views
}

// accountView is the wire shape of an account snapshot
type accountView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

func toAccountView(account *models.Account) accountView {
	return accountView{
		ID:            account.ID.String(),
		Name:          account.Name,
		Email:         account.Email,
		AccountNumber: account.AccountNumber,
		Balance:       formatCents(account.BalanceCents),
		IsActive:      account.IsActive,
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
	}
}

// accessRequestView is the wire shape of an access request
type accessRequestView struct {
	ID              string  `json:"id"`
	AdminID         string  `json:"admin_id"`
	AccountID       string  `json:"account_id"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	RequestedAt     string  `json:"requested_at"`
	ExpiresAt       string  `json:"expires_at"`
	GrantedAt       *string `json:"granted_at,omitempty"`
	DeniedAt        *string `json:"denied_at,omitempty"`
	PermissionToken *string `json:"permission_token,omitempty"`
}

func toAccessRequestView(req *models.AccessRequest) accessRequestView {
	view := accessRequestView{
		ID:              req.ID.String(),
		AdminID:         req.AdminID.String(),
		AccountID:       req.AccountID.String(),
		Reason:          req.Reason,
		Status:          string(req.Status),
		RequestedAt:     req.RequestedAt.Format(time.RFC3339),
		ExpiresAt:       req.ExpiresAt.Format(time.RFC3339),
		PermissionToken: req.PermissionToken,
	}
	if req.GrantedAt != nil {
		granted := req.GrantedAt.Format(time.RFC3339)
		view.GrantedAt = &granted
	}
	if req.DeniedAt != nil {
		denied := req.DeniedAt.Format(time.RFC3339)
		view.DeniedAt = &denied
	}
	return view
}
