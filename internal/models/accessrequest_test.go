package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessRequestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    AccessRequestStatus
		to      AccessRequestStatus
		allowed bool
	}{
		{name: "pending to granted", from: AccessRequestPending, to: AccessRequestGranted, allowed: true},
		{name: "pending to denied", from: AccessRequestPending, to: AccessRequestDenied, allowed: true},
		{name: "pending to expired", from: AccessRequestPending, to: AccessRequestExpired, allowed: true},
		{name: "granted is terminal", from: AccessRequestGranted, to: AccessRequestDenied, allowed: false},
		{name: "denied is terminal", from: AccessRequestDenied, to: AccessRequestGranted, allowed: false},
		{name: "expired is terminal", from: AccessRequestExpired, to: AccessRequestGranted, allowed: false},
		{name: "no self transition", from: AccessRequestPending, to: AccessRequestPending, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}
