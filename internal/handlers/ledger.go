package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/securebank-labs/securebank/internal/middleware"
)

type moneyRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

type transferRequest struct {
	ToAccountNumber string `json:"to_account_number" binding:"required"`
	Amount          string `json:"amount" binding:"required"`
	Description     string `json:"description"`
}

// Deposit handles POST /api/v1/user/deposit
func (h *Handler) Deposit(c *gin.Context) {
	var req moneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amount is required")
		return
	}

	amountCents, err := parseAmount(req.Amount)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	caller := middleware.CallerIdentity(c)
	txn, err := h.ledger.Deposit(c.Request.Context(), caller.ID, amountCents, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": toTransactionView(txn)})
}

// Withdraw handles POST /api/v1/user/withdraw
func (h *Handler) Withdraw(c *gin.Context) {
	var req moneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amount is required")
		return
	}

	amountCents, err := parseAmount(req.Amount)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	caller := middleware.CallerIdentity(c)
	txn, err := h.ledger.Withdraw(c.Request.Context(), caller.ID, amountCents, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := gin.H{"transaction": toTransactionView(txn)}
	if txn.IsFlagged {
		resp["warning"] = "This transaction has been flagged for review"
	}
	c.JSON(http.StatusCreated, resp)
}

// Transfer handles POST /api/v1/user/transfer
func (h *Handler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "to_account_number and amount are required")
		return
	}

	amountCents, err := parseAmount(req.Amount)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	caller := middleware.CallerIdentity(c)
	debit, credit, err := h.ledger.Transfer(c.Request.Context(), caller.ID, req.ToAccountNumber, amountCents, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transaction": toTransactionView(debit),
		"credited":    toTransactionView(credit),
	})
}

// Profile handles GET /api/v1/user/profile
func (h *Handler) Profile(c *gin.Context) {
	caller := middleware.CallerIdentity(c)
	account, err := h.ledger.GetAccount(c.Request.Context(), caller.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": toAccountView(account)})
}

// UserDashboard handles GET /api/v1/user/dashboard: the account snapshot,
// its most recent activity and any access requests awaiting a decision.
func (h *Handler) UserDashboard(c *gin.Context) {
	caller := middleware.CallerIdentity(c)
	ctx := c.Request.Context()

	account, err := h.ledger.GetAccount(ctx, caller.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	recent, _, err := h.ledger.ListTransactions(ctx, caller.ID, 1, 5)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pending, err := h.access.ListPendingForAccount(ctx, caller.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account":                 toAccountView(account),
		"recent_transactions":     toTransactionViews(recent),
		"pending_access_requests": len(pending),
	})
}

// ListTransactions handles GET /api/v1/user/transactions
func (h *Handler) ListTransactions(c *gin.Context) {
	caller := middleware.CallerIdentity(c)
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	txns, total, err := h.ledger.ListTransactions(c.Request.Context(), caller.ID, page, pageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": toTransactionViews(txns),
		"total":        total,
		"page":         page,
	})
}
