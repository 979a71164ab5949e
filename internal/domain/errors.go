package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency. Callers classify
// failures with errors.Is; no error carries dynamic state.

var (
	// Authorization errors
	ErrUnauthorized       = errors.New("caller is not authorized for this operation")
	ErrNotTaskParticipant = errors.New("caller is neither requester nor provider of this task")

	// Validation errors
	ErrInvalidAmount      = errors.New("amount must be positive and meet the configured minimum")
	ErrInvalidParticipant = errors.New("participant is invalid for this operation")

	// Task escrow errors
	ErrTaskNotFound         = errors.New("escrow task not found")
	ErrTaskExists           = errors.New("escrow task already exists")
	ErrTaskAlreadyCompleted = errors.New("escrow task already settled")

	// Review escrow errors
	ErrReviewNotFound         = errors.New("review request not found")
	ErrReviewExists           = errors.New("review request already exists")
	ErrReviewAlreadyCompleted = errors.New("review request already settled")

	// Payment errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPaymentFailed     = errors.New("payment transfer failed")

	// Reserved errors. Kept for wire compatibility; the engine as written
	// never produces them: identifiers are storage-assigned so duplicates
	// cannot occur, settled escrows are guarded by status before any
	// transfer, and fee rates are compile-time constants.
	ErrEscrowAlreadyReleased = errors.New("escrow already released")
	ErrInvalidFeeRate        = errors.New("fee rate is out of range")
)
