package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/securebank-labs/securebank/internal/audit"
	"github.com/securebank-labs/securebank/internal/db"
	"github.com/securebank-labs/securebank/internal/models"
	"github.com/securebank-labs/securebank/internal/notification"
	"github.com/securebank-labs/securebank/internal/repository"
	"github.com/securebank-labs/securebank/internal/token"
)

// PendingRequest pairs an access request with the requesting admin's name
// for display to the account owner.
type PendingRequest struct {
	Request   *models.AccessRequest
	AdminName string
}

// AuthorizedView is the read an admin gets after presenting a valid,
// still-granted permission token: an account snapshot plus its most recent
// ledger entries.
type AuthorizedView struct {
	Account      *models.Account
	Transactions []*models.Transaction
	RequestID    uuid.UUID
}

// AccessService manages the owner-consent workflow: admins request read
// access, owners grant or deny, grants produce a signed capability token
// whose every use is re-checked against the live request status.
type AccessService struct {
	db            *db.DB
	issuer        *token.PermissionIssuer
	notifier      *notification.Notifier
	auditor       *audit.Recorder
	requestExpiry time.Duration
	recentTxns    int
}

// NewAccessService creates an AccessService
func NewAccessService(
	database *db.DB,
	issuer *token.PermissionIssuer,
	notifier *notification.Notifier,
	auditor *audit.Recorder,
	requestExpiry time.Duration,
	recentTxns int,
) *AccessService {
	return &AccessService{
		db:            database,
		issuer:        issuer,
		notifier:      notifier,
		auditor:       auditor,
		requestExpiry: requestExpiry,
		recentTxns:    recentTxns,
	}
}

// Request files an admin's request to read a customer account. At most one
// pending request may exist per admin/account pair; the partial unique index
// enforces that under concurrency.
func (s *AccessService) Request(ctx context.Context, adminID, accountID uuid.UUID, reason string) (*models.AccessRequest, error) {
	if err := ValidateReason(reason); err != nil {
		return nil, &ServiceError{Code: ErrCodeInvalidReason, Message: err.Error()}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, internalError("failed to start transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	req, err := s.performRequest(ctx,
		repository.NewAccountRepository(tx),
		repository.NewAccessRequestRepository(tx),
		repository.NewOutboxRepository(tx),
		adminID, accountID, reason,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, internalError("failed to commit transaction: %v", err)
	}

	s.auditor.Record(ctx, adminID, string(models.RoleAdmin), "requested_account_access", &accountID, map[string]any{
		"request_id": req.ID.String(),
		"reason":     reason,
	})

	return req, nil
}

// performRequest contains the core request logic, run inside a transaction
func (s *AccessService) performRequest(
	ctx context.Context,
	accounts repository.AccountRepository,
	requests repository.AccessRequestRepository,
	outbox repository.OutboxRepository,
	adminID, accountID uuid.UUID,
	reason string,
) (*models.AccessRequest, error) {
	owner, err := accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{Code: ErrCodeAccountNotFound, Message: "account not found"}
		}
		return nil, internalError("failed to load account: %v", err)
	}
	if owner.Role != models.RoleUser {
		return nil, &ServiceError{Code: ErrCodeAccountNotFound, Message: "account not found"}
	}

	admin, err := accounts.FindByID(ctx, adminID)
	if err != nil {
		return nil, internalError("failed to load admin account: %v", err)
	}

	now := time.Now().UTC()
	req := &models.AccessRequest{
		ID:          uuid.New(),
		AdminID:     adminID,
		AccountID:   accountID,
		Reason:      reason,
		Status:      models.AccessRequestPending,
		RequestedAt: now,
		ExpiresAt:   now.Add(s.requestExpiry),
	}
	if err := requests.Create(ctx, req); err != nil {
		if errors.Is(err, models.ErrDuplicatePendingRequest) {
			return nil, &ServiceError{Code: ErrCodeDuplicateRequest, Message: "a pending request for this account already exists"}
		}
		return nil, internalError("failed to create access request: %v", err)
	}

	if err := s.notifier.AccessRequested(ctx, outbox, owner, admin, reason, req.ID, req.ExpiresAt); err != nil {
		return nil, internalError("failed to stage notification: %v", err)
	}

	return req, nil
}

// Decide records the account owner's grant or deny. Only the owner of the
// targeted account may decide, only while the request is pending and
// unexpired. A grant issues the permission token; the conditional status
// update means concurrent decisions race safely and the loser sees
// request_not_pending.
func (s *AccessService) Decide(ctx context.Context, ownerID, requestID uuid.UUID, grant bool) (*models.AccessRequest, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, internalError("failed to start transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	req, err := s.performDecide(ctx,
		repository.NewAccountRepository(tx),
		repository.NewAccessRequestRepository(tx),
		repository.NewOutboxRepository(tx),
		ownerID, requestID, grant,
	)
	if err != nil {
		// An expired request is flipped to its terminal state as part of
		// reporting the error, so the expiry write must survive.
		var svcErr *ServiceError
		if errors.As(err, &svcErr) && svcErr.Code == ErrCodeRequestExpired {
			_ = tx.Commit()
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, internalError("failed to commit transaction: %v", err)
	}

	action := "deny_admin_access"
	if grant {
		action = "grant_admin_access"
	}
	s.auditor.Record(ctx, ownerID, string(models.RoleUser), action, &req.AccountID, map[string]any{
		"request_id": requestID.String(),
		"admin_id":   req.AdminID.String(),
	})

	return req, nil
}

// performDecide contains the core decision logic, run inside a transaction
func (s *AccessService) performDecide(
	ctx context.Context,
	accounts repository.AccountRepository,
	requests repository.AccessRequestRepository,
	outbox repository.OutboxRepository,
	ownerID, requestID uuid.UUID,
	grant bool,
) (*models.AccessRequest, error) {
	req, err := requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{Code: ErrCodeRequestNotFound, Message: "access request not found"}
		}
		return nil, internalError("failed to load access request: %v", err)
	}

	// A request targeting someone else's account is invisible to this owner.
	if req.AccountID != ownerID {
		return nil, &ServiceError{Code: ErrCodeRequestNotFound, Message: "access request not found"}
	}

	target := models.AccessRequestDenied
	if grant {
		target = models.AccessRequestGranted
	}
	if !req.Status.CanTransitionTo(target) {
		return nil, &ServiceError{Code: ErrCodeRequestNotPending, Message: "request has already been decided"}
	}

	now := time.Now().UTC()
	if now.After(req.ExpiresAt) {
		if err := requests.MarkExpired(ctx, req.ID); err != nil && !errors.Is(err, models.ErrStaleStatus) {
			return nil, internalError("failed to expire request: %v", err)
		}
		return nil, &ServiceError{Code: ErrCodeRequestExpired, Message: "request has expired"}
	}

	decision := "denied"
	if grant {
		signed, err := s.issuer.Issue(req.AdminID, req.AccountID, req.ID, now)
		if err != nil {
			return nil, internalError("failed to issue permission token: %v", err)
		}
		if err := requests.MarkGranted(ctx, req.ID, signed, now); err != nil {
			if errors.Is(err, models.ErrStaleStatus) {
				return nil, &ServiceError{Code: ErrCodeRequestNotPending, Message: "request has already been decided"}
			}
			return nil, internalError("failed to grant request: %v", err)
		}
		req.Status = models.AccessRequestGranted
		req.PermissionToken = &signed
		req.GrantedAt = &now
		decision = "granted"
	} else {
		if err := requests.MarkDenied(ctx, req.ID, now); err != nil {
			if errors.Is(err, models.ErrStaleStatus) {
				return nil, &ServiceError{Code: ErrCodeRequestNotPending, Message: "request has already been decided"}
			}
			return nil, internalError("failed to deny request: %v", err)
		}
		req.Status = models.AccessRequestDenied
		req.DeniedAt = &now
	}

	admin, err := accounts.FindByID(ctx, req.AdminID)
	if err != nil {
		return nil, internalError("failed to load admin account: %v", err)
	}
	owner, err := accounts.FindByID(ctx, ownerID)
	if err != nil {
		return nil, internalError("failed to load owner account: %v", err)
	}
	if err := s.notifier.AccessDecision(ctx, outbox, admin, owner, decision, req.ID); err != nil {
		return nil, internalError("failed to stage notification: %v", err)
	}

	return req, nil
}

// VerifyAndAuthorize exchanges a permission token for a read of the account
// it covers. The token must verify structurally and the backing request must
// still be granted, so a revoked or superseded grant cuts off access even
// inside the token's validity window.
func (s *AccessService) VerifyAndAuthorize(ctx context.Context, adminID uuid.UUID, accountID uuid.UUID, tokenString string) (*AuthorizedView, error) {
	view, err := s.performAuthorize(ctx,
		repository.NewAccountRepository(s.db),
		repository.NewAccessRequestRepository(s.db),
		repository.NewTransactionRepository(s.db),
		adminID, accountID, tokenString,
	)
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, adminID, string(models.RoleAdmin), "viewed_user_account", &accountID, map[string]any{
		"request_id": view.RequestID.String(),
	})

	return view, nil
}

// performAuthorize contains the core token-exchange logic
func (s *AccessService) performAuthorize(
	ctx context.Context,
	accounts repository.AccountRepository,
	requests repository.AccessRequestRepository,
	transactions repository.TransactionRepository,
	adminID, accountID uuid.UUID,
	tokenString string,
) (*AuthorizedView, error) {
	claims, err := s.issuer.Verify(tokenString)
	if err != nil {
		return nil, &ServiceError{Code: ErrCodeTokenInvalid, Message: "permission token is invalid or expired"}
	}

	if claims.AdminID != adminID || claims.AccountID != accountID {
		return nil, &ServiceError{Code: ErrCodeTokenMismatch, Message: "token does not cover this admin and account"}
	}

	req, err := requests.FindByID(ctx, claims.RequestID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{Code: ErrCodeAccessRevoked, Message: "access is no longer granted"}
		}
		return nil, internalError("failed to load access request: %v", err)
	}
	if req.Status != models.AccessRequestGranted {
		return nil, &ServiceError{Code: ErrCodeAccessRevoked, Message: "access is no longer granted"}
	}

	account, err := accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{Code: ErrCodeAccountNotFound, Message: "account not found"}
		}
		return nil, internalError("failed to load account: %v", err)
	}

	txns, err := transactions.ListByAccount(ctx, accountID, 0, s.recentTxns)
	if err != nil {
		return nil, internalError("failed to list transactions: %v", err)
	}

	return &AuthorizedView{
		Account:      account,
		Transactions: txns,
		RequestID:    claims.RequestID,
	}, nil
}

// ListPendingForAccount returns an owner's open requests with the requesting
// admins' names resolved.
func (s *AccessService) ListPendingForAccount(ctx context.Context, accountID uuid.UUID) ([]*PendingRequest, error) {
	requests := repository.NewAccessRequestRepository(s.db)
	accounts := repository.NewAccountRepository(s.db)

	pending, err := requests.ListPendingByAccount(ctx, accountID)
	if err != nil {
		return nil, internalError("failed to list pending requests: %v", err)
	}

	result := make([]*PendingRequest, 0, len(pending))
	names := make(map[uuid.UUID]string)
	for _, req := range pending {
		name, ok := names[req.AdminID]
		if !ok {
			admin, err := accounts.FindByID(ctx, req.AdminID)
			if err != nil {
				return nil, internalError("failed to load admin account: %v", err)
			}
			name = admin.Name
			names[req.AdminID] = name
		}
		result = append(result, &PendingRequest{Request: req, AdminName: name})
	}
	return result, nil
}

// ListByAdmin returns an admin's own requests, newest first
func (s *AccessService) ListByAdmin(ctx context.Context, adminID uuid.UUID, limit int) ([]*models.AccessRequest, error) {
	reqs, err := repository.NewAccessRequestRepository(s.db).ListByAdmin(ctx, adminID, limit)
	if err != nil {
		return nil, internalError("failed to list access requests: %v", err)
	}
	return reqs, nil
}

// FindForAdmin lets an admin poll one of their own requests. The permission
// token travels only on granted requests.
func (s *AccessService) FindForAdmin(ctx context.Context, adminID, requestID uuid.UUID) (*models.AccessRequest, error) {
	req, err := repository.NewAccessRequestRepository(s.db).FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &ServiceError{Code: ErrCodeRequestNotFound, Message: "access request not found"}
		}
		return nil, internalError("failed to load access request: %v", err)
	}
	if req.AdminID != adminID {
		return nil, &ServiceError{Code: ErrCodeRequestNotFound, Message: "access request not found"}
	}
	if req.Status != models.AccessRequestGranted {
		req.PermissionToken = nil
	}
	return req, nil
}

// SweepExpired flips every pending request past its deadline to expired.
// Run periodically; lazy expiry on Decide covers the window between sweeps.
func (s *AccessService) SweepExpired(ctx context.Context) (int64, error) {
	count, err := repository.NewAccessRequestRepository(s.db).ExpirePending(ctx, time.Now().UTC())
	if err != nil {
		return 0, internalError("failed to expire pending requests: %v", err)
	}
	return count, nil
}
