// Package notification implements the notification port as a transactional
// outbox enqueue. Events are staged in the same storage transaction as the
// mutation they describe; a mail worker consumes the Kafka topics the outbox
// sender publishes to. Delivery problems therefore never touch a committed
// mutation.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/securebank-labs/securebank/internal/config"
	"github.com/securebank-labs/securebank/internal/models"
	"github.com/securebank-labs/securebank/internal/repository"
)

// Notifier builds notification events and stages them on an outbox
type Notifier struct {
	topics config.KafkaTopicConfig
}

// NewNotifier creates a Notifier publishing to the configured topics
func NewNotifier(topics config.KafkaTopicConfig) *Notifier {
	return &Notifier{topics: topics}
}

type transactionAlert struct {
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Kind          string    `json:"kind"`
	AmountCents   int64     `json:"amount_cents"`
	BalanceCents  int64     `json:"balance_cents"`
	OccurredAt    time.Time `json:"occurred_at"`
	AccountNumber string    `json:"account_number"`
}

// TransactionAlert stages a balance-change alert for the account owner.
// Call with the outbox repository bound to the mutation's transaction.
func (n *Notifier) TransactionAlert(ctx context.Context, outbox repository.OutboxRepository, account *models.Account, direction models.TransactionDirection, amountCents, balanceCents int64) error {
	payload, err := json.Marshal(transactionAlert{
		Email:         account.Email,
		Name:          account.Name,
		Kind:          string(direction),
		AmountCents:   amountCents,
		BalanceCents:  balanceCents,
		OccurredAt:    time.Now().UTC(),
		AccountNumber: account.AccountNumber,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal transaction alert: %w", err)
	}

	return outbox.Enqueue(ctx, n.topics.TransactionAlerts, account.ID.String(), string(payload))
}

type accessRequested struct {
	OwnerEmail string    `json:"owner_email"`
	OwnerName  string    `json:"owner_name"`
	AdminName  string    `json:"admin_name"`
	Reason     string    `json:"reason"`
	RequestID  string    `json:"request_id"`
	GrantPath  string    `json:"grant_path"`
	DenyPath   string    `json:"deny_path"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// AccessRequested stages the owner-facing mail carrying distinct grant and
// deny action links for a new access request.
func (n *Notifier) AccessRequested(ctx context.Context, outbox repository.OutboxRepository, owner, admin *models.Account, reason string, requestID uuid.UUID, expiresAt time.Time) error {
	payload, err := json.Marshal(accessRequested{
		OwnerEmail: owner.Email,
		OwnerName:  owner.Name,
		AdminName:  admin.Name,
		Reason:     reason,
		RequestID:  requestID.String(),
		GrantPath:  fmt.Sprintf("/api/v1/user/access-requests/%s/grant", requestID),
		DenyPath:   fmt.Sprintf("/api/v1/user/access-requests/%s/deny", requestID),
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal access request notification: %w", err)
	}

	return outbox.Enqueue(ctx, n.topics.AccessRequests, requestID.String(), string(payload))
}

type accessDecision struct {
	AdminEmail string `json:"admin_email"`
	AdminName  string `json:"admin_name"`
	OwnerName  string `json:"owner_name"`
	Decision   string `json:"decision"`
	RequestID  string `json:"request_id"`
}

// AccessDecision stages the admin-facing mail reporting the owner's decision
func (n *Notifier) AccessDecision(ctx context.Context, outbox repository.OutboxRepository, admin, owner *models.Account, decision string, requestID uuid.UUID) error {
	payload, err := json.Marshal(accessDecision{
		AdminEmail: admin.Email,
		AdminName:  admin.Name,
		OwnerName:  owner.Name,
		Decision:   decision,
		RequestID:  requestID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal access decision notification: %w", err)
	}

	return outbox.Enqueue(ctx, n.topics.AccessDecisions, requestID.String(), string(payload))
}
