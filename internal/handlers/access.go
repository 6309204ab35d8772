package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/securebank-labs/securebank/internal/middleware"
)

const permissionTokenHeader = "X-Permission-Token"

type accessRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

// RequestAccess handles POST /api/v1/admin/accounts/:id/access-request
func (h *Handler) RequestAccess(c *gin.Context) {
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var body accessRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "reason is required")
		return
	}

	caller := middleware.CallerIdentity(c)
	req, err := h.access.Request(c.Request.Context(), caller.ID, accountID, body.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": toAccessRequestView(req)})
}

// ListOwnRequests handles GET /api/v1/admin/access-requests
func (h *Handler) ListOwnRequests(c *gin.Context) {
	caller := middleware.CallerIdentity(c)
	limit := queryInt(c, "limit", 50)

	reqs, err := h.access.ListByAdmin(c.Request.Context(), caller.ID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	views := make([]accessRequestView, 0, len(reqs))
	for _, req := range reqs {
		// Tokens travel only through the single-request poll endpoint.
		req.PermissionToken = nil
		views = append(views, toAccessRequestView(req))
	}
	c.JSON(http.StatusOK, gin.H{"requests": views})
}

// GetOwnRequest handles GET /api/v1/admin/access-requests/:id
func (h *Handler) GetOwnRequest(c *gin.Context) {
	requestID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	caller := middleware.CallerIdentity(c)
	req, err := h.access.FindForAdmin(c.Request.Context(), caller.ID, requestID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": toAccessRequestView(req)})
}

// ViewAccount handles GET /api/v1/admin/accounts/:id. The permission token
// issued on grant travels in the X-Permission-Token header.
func (h *Handler) ViewAccount(c *gin.Context) {
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	tokenString := c.GetHeader(permissionTokenHeader)
	if tokenString == "" {
		badRequest(c, "missing "+permissionTokenHeader+" header")
		return
	}

	caller := middleware.CallerIdentity(c)
	view, err := h.access.VerifyAndAuthorize(c.Request.Context(), caller.ID, accountID, tokenString)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account":      toAccountView(view.Account),
		"transactions": toTransactionViews(view.Transactions),
		"request_id":   view.RequestID.String(),
	})
}

// ListPendingRequests handles GET /api/v1/user/access-requests
func (h *Handler) ListPendingRequests(c *gin.Context) {
	caller := middleware.CallerIdentity(c)

	pending, err := h.access.ListPendingForAccount(c.Request.Context(), caller.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	type pendingView struct {
		Request   accessRequestView `json:"request"`
		AdminName string            `json:"admin_name"`
	}
	views := make([]pendingView, 0, len(pending))
	for _, p := range pending {
		views = append(views, pendingView{
			Request:   toAccessRequestView(p.Request),
			AdminName: p.AdminName,
		})
	}
	c.JSON(http.StatusOK, gin.H{"requests": views})
}

// GrantAccess handles POST /api/v1/user/access-requests/:id/grant
func (h *Handler) GrantAccess(c *gin.Context) {
	h.decide(c, true)
}

// DenyAccess handles POST /api/v1/user/access-requests/:id/deny
func (h *Handler) DenyAccess(c *gin.Context) {
	h.decide(c, false)
}

func (h *Handler) decide(c *gin.Context, grant bool) {
	requestID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	caller := middleware.CallerIdentity(c)
	req, err := h.access.Decide(c.Request.Context(), caller.ID, requestID, grant)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// The token is for the admin, not the granting owner.
	req.PermissionToken = nil
	c.JSON(http.StatusOK, gin.H{"request": toAccessRequestView(req)})
}
