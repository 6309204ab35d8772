package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessRequestStatus represents the lifecycle state of an access request
type AccessRequestStatus string

const (
	AccessRequestPending AccessRequestStatus = "pending"
	AccessRequestGranted AccessRequestStatus = "granted"
	AccessRequestDenied  AccessRequestStatus = "denied"
	AccessRequestExpired AccessRequestStatus = "expired"
)

// validAccessTransitions encodes the request state machine. Granted, denied
// and expired are terminal.
var validAccessTransitions = map[AccessRequestStatus][]AccessRequestStatus{
	AccessRequestPending: {AccessRequestGranted, AccessRequestDenied, AccessRequestExpired},
}

// CanTransitionTo reports whether a status change is allowed by the state machine.
func (s AccessRequestStatus) CanTransitionTo(target AccessRequestStatus) bool {
	for _, allowed := range validAccessTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AccessRequest represents an admin's time-boxed request to read a customer
// account. Rows are retained forever for audit; only the status and the
// decision timestamps ever change, and only while the row is pending.
type AccessRequest struct {
	RequestedAt     time.Time           `db:"requested_at"`
	ExpiresAt       time.Time           `db:"expires_at"`
	GrantedAt       *time.Time          `db:"granted_at"`
	DeniedAt        *time.Time          `db:"denied_at"`
	PermissionToken *string             `db:"permission_token"`
	Reason          string              `db:"reason"`
	Status          AccessRequestStatus `db:"status"`
	ID              uuid.UUID           `db:"id"`
	AdminID         uuid.UUID           `db:"admin_id"`
	AccountID       uuid.UUID           `db:"account_id"`
}
