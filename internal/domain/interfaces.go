package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// Ledger abstracts the double-entry book that custodies every balance the
// engine touches. Implemented by infra/ledger.Book.
type Ledger interface {
	// Transfer commits the given movements atomically and returns the
	// shared transfer ref. If any movement would overdraw its source
	// account, nothing is written and ErrInsufficientFunds is returned.
	Transfer(ctx context.Context, movements ...Movement) (string, error)

	// Deposit credits an account from outside the book. The external
	// contra account is allowed to go negative, so deposits never fail
	// for lack of funds.
	Deposit(ctx context.Context, to Principal, amount int64, memo string) (string, error)

	// Balance returns the current balance of an account. Accounts with
	// no entries report zero.
	Balance(ctx context.Context, account Principal) (int64, error)

	// History returns an account's entries, most recent first, capped
	// at limit (or all entries when limit <= 0).
	History(ctx context.Context, account Principal, limit int) ([]LedgerEntry, error)
}
