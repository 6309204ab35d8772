// Package handlers exposes the HTTP surface: customer ledger operations,
// the access-delegation workflow, financial insights and the admin
// operational endpoints.
package handlers

import (
	"log/slog"

	"github.com/securebank-labs/securebank/internal/service"
)

// Handler bundles the services behind the HTTP surface
type Handler struct {
	ledger   service.Ledger
	access   service.AccessDelegator
	insights service.Insights
	admin    service.Admin
	logger   *slog.Logger
}

// New creates a Handler
func New(
	ledger service.Ledger,
	access service.AccessDelegator,
	insights service.Insights,
	admin service.Admin,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		ledger:   ledger,
		access:   access,
		insights: insights,
		admin:    admin,
		logger:   logger,
	}
}
