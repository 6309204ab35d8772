package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/securebank-labs/securebank/internal/middleware"
)

// Dashboard handles GET /api/v1/admin/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.admin.Dashboard(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ListUsers handles GET /api/v1/admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	users, total, err := h.admin.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	views := make([]accountView, 0, len(users))
	for _, user := range users {
		views = append(views, toAccountView(user))
	}
	c.JSON(http.StatusOK, gin.H{
		"users": views,
		"total": total,
		"page":  page,
	})
}

// FlaggedTransactions handles GET /api/v1/admin/flagged-transactions
func (h *Handler) FlaggedTransactions(c *gin.Context) {
	limit := queryInt(c, "limit", 50)

	flagged, err := h.admin.FlaggedTransactions(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	type flaggedView struct {
		Transaction   transactionView `json:"transaction"`
		AccountNumber string          `json:"account_number"`
		OwnerName     string          `json:"owner_name"`
	}
	views := make([]flaggedView, 0, len(flagged))
	for _, f := range flagged {
		views = append(views, flaggedView{
			Transaction:   toTransactionView(f.Transaction),
			AccountNumber: f.AccountNumber,
			OwnerName:     f.OwnerName,
		})
	}
	c.JSON(http.StatusOK, gin.H{"transactions": views})
}

// AuditLogs handles GET /api/v1/admin/audit-logs
func (h *Handler) AuditLogs(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 50)

	entries, total, err := h.admin.AuditLogs(c.Request.Context(), page, pageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	type entryView struct {
		ID              string         `json:"id"`
		ActorID         string         `json:"actor_id"`
		ActorRole       string         `json:"actor_role"`
		Action          string         `json:"action"`
		TargetAccountID *string        `json:"target_account_id,omitempty"`
		Details         map[string]any `json:"details,omitempty"`
		IPAddress       string         `json:"ip_address,omitempty"`
		UserAgent       string         `json:"user_agent,omitempty"`
		CreatedAt       string         `json:"created_at"`
	}
	views := make([]entryView, 0, len(entries))
	for _, entry := range entries {
		view := entryView{
			ID:        entry.ID.String(),
			ActorID:   entry.ActorID.String(),
			ActorRole: entry.ActorRole,
			Action:    entry.Action,
			Details:   entry.Details,
			IPAddress: entry.IPAddress,
			UserAgent: entry.UserAgent,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		}
		if entry.TargetAccountID != nil {
			target := entry.TargetAccountID.String()
			view.TargetAccountID = &target
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":  views,
		"total": total,
		"page":  page,
	})
}

// ToggleAccount handles POST /api/v1/admin/accounts/:id/toggle
func (h *Handler) ToggleAccount(c *gin.Context) {
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	caller := middleware.CallerIdentity(c)
	account, err := h.admin.ToggleAccount(c.Request.Context(), caller.ID, accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": toAccountView(account)})
}
