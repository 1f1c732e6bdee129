package domain

import "errors"

// Sentinel errors shared across layers.
var (
	// ErrInvalidQuery is returned when a fuzzy-find query carries no usable
	// criteria. Surfaced directly to the caller, never retried.
	ErrInvalidQuery = errors.New("at least one search field is required")

	// ErrNotFound is returned when the CRM has no record with the given id.
	ErrNotFound = errors.New("record not found")

	// ErrRemoteUnavailable wraps CRM API failures that are the remote's
	// fault (5xx, network) rather than the caller's.
	ErrRemoteUnavailable = errors.New("pipedrive API unavailable")

	// ErrBudgetExhausted is returned before dispatch when the API call
	// budget is spent and the budget action is "reject".
	ErrBudgetExhausted = errors.New("API call budget exhausted")
)
