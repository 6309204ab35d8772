package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountRole distinguishes regular customers from bank administrators
type AccountRole string

const (
	RoleUser  AccountRole = "user"
	RoleAdmin AccountRole = "admin"
)

// Account represents a customer account with owner details and balance
type Account struct {
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
	Name          string      `db:"name"`
	Email         string      `db:"email"`
	Phone         string      `db:"phone"`
	AccountNumber string      `db:"account_number"`
	Role          AccountRole `db:"role"`
	BalanceCents  int64       `db:"balance_cents"`
	IsActive      bool        `db:"is_active"`
	ID            uuid.UUID   `db:"id"`
}
