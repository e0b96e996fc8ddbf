package model

import "errors"

var (
	// Ledger related errors
	ErrEntryNotFound = errors.New("recovery entry not found")
	ErrPersistence   = errors.New("ledger persistence failure")

	// Restoration related errors
	ErrBlacklisted       = errors.New("item is blacklisted from restoration")
	ErrCapacityExceeded  = errors.New("destination holdings are full")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceService    = errors.New("balance service failure")
	ErrHoldingsService   = errors.New("holdings service failure")

	// Auth related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
