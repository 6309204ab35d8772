// Package repository provides data access layer implementations for the bank.
package repository

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql methods the repositories need. Both
// *db.DB and *sql.Tx satisfy it, so a service can run a repository inside a
// transaction by constructing it around the tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
