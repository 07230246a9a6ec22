package domain

import "errors"

// Common domain errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Request queue errors
var (
	ErrRequestNotFound  = errors.New("transaction request not found")
	ErrAlreadyProcessed = errors.New("transaction request already processed")
	ErrDuplicateRequest = errors.New("transaction request already exists")
)

// Settlement errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidState      = errors.New("invalid state for settlement")
	ErrDataIntegrity     = errors.New("data integrity error")
	ErrPersistence       = errors.New("persistence error")
	ErrNotification      = errors.New("notification dispatch failed")
)

// Member errors
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrMemberInactive = errors.New("member is inactive")
)

// IsBenign reports whether err is a no-op outcome: the request was already
// consumed or never existed. Callers treat these as results, not failures.
func IsBenign(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed) || errors.Is(err, ErrRequestNotFound)
}

// IsFatal reports whether err must be surfaced for manual investigation.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDataIntegrity) || errors.Is(err, ErrPersistence)
}
