package models

import "errors"

// Domain errors that can be returned by repositories
var (
	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePendingRequest indicates a pending access request already
	// exists for the same (admin, account) pair
	ErrDuplicatePendingRequest = errors.New("duplicate pending request")

	// ErrStaleStatus indicates a conditional status update matched no row,
	// meaning another caller decided the request first
	ErrStaleStatus = errors.New("stale status")
)
