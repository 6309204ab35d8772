package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/securebank-labs/securebank/internal/config"
	"github.com/securebank-labs/securebank/internal/db"
	"github.com/securebank-labs/securebank/internal/middleware"
	"github.com/securebank-labs/securebank/internal/repository"
)

// SetupRouter wires the HTTP surface: middleware, route groups and health
func SetupRouter(h *Handler, database *db.DB, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		if err := database.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.Authenticate(cfg.Auth.JWTSecret))
	api.Use(middleware.Idempotency(repository.NewIdempotencyRepository(database), logger))

	user := api.Group("/user")
	{
		user.GET("/profile", h.Profile)
		user.GET("/dashboard", h.UserDashboard)
		user.POST("/deposit", h.Deposit)
		user.POST("/withdraw", h.Withdraw)
		user.POST("/transfer", h.Transfer)
		user.GET("/transactions", h.ListTransactions)
		user.GET("/access-requests", h.ListPendingRequests)
		user.POST("/access-requests/:id/grant", h.GrantAccess)
		user.POST("/access-requests/:id/deny", h.DenyAccess)
	}

	insights := api.Group("/insights")
	{
		insights.POST("/fraud-check", h.FraudCheck)
		insights.POST("/loan-eligibility", h.LoanEligibility)
		insights.GET("/spending", h.Spending)
		insights.GET("/credit-score", h.CreditScore)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/dashboard", h.Dashboard)
		admin.GET("/users", h.ListUsers)
		admin.GET("/flagged-transactions", h.FlaggedTransactions)
		admin.GET("/audit-logs", h.AuditLogs)
		admin.GET("/access-requests", h.ListOwnRequests)
		admin.GET("/access-requests/:id", h.GetOwnRequest)
		admin.POST("/accounts/:id/access-request", h.RequestAccess)
		admin.GET("/accounts/:id", h.ViewAccount)
		admin.POST("/accounts/:id/toggle", h.ToggleAccount)
	}

	return router
}
