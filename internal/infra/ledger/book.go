// Package ledger implements the double-entry book that custodies every
// balance the engine touches. Every movement writes matched DEBIT/CREDIT
// entries sharing one transfer ref. SUM(debits) == SUM(credits) is an
// invariant.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/holdfast-io/holdfast/internal/domain"
	"github.com/holdfast-io/holdfast/internal/infra/sqlite"
)

// Book is the SQLite-backed ledger.
type Book struct {
	db  *sqlite.DB
	now func() time.Time // Injectable for tests
}

// NewBook creates a ledger over the given database.
func NewBook(db *sqlite.DB) *Book {
	return &Book{db: db, now: time.Now}
}

var _ domain.Ledger = (*Book)(nil)

// Transfer commits the given movements atomically under a fresh uuid ref.
// Balances are checked movement by movement in batch order, so a later
// movement may spend funds an earlier one delivered. If any source would
// overdraw, nothing is written.
func (b *Book) Transfer(ctx context.Context, movements ...domain.Movement) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(movements) == 0 {
		return "", fmt.Errorf("transfer requires at least one movement")
	}
	for _, m := range movements {
		if m.Amount <= 0 {
			return "", domain.ErrInvalidAmount
		}
		if m.From == "" || m.To == "" || m.From == m.To {
			return "", domain.ErrInvalidParticipant
		}
	}

	// Working balances for every account the batch touches
	balances := make(map[domain.Principal]int64)
	load := func(account domain.Principal) (int64, error) {
		if bal, ok := balances[account]; ok {
			return bal, nil
		}
		bal, err := b.db.LedgerBalance(account)
		if err != nil {
			return 0, fmt.Errorf("get balance %s: %w", account, err)
		}
		balances[account] = bal
		return bal, nil
	}

	ref := uuid.NewString()
	now := b.now()
	entries := make([]domain.LedgerEntry, 0, len(movements)*2)

	for _, m := range movements {
		fromBal, err := load(m.From)
		if err != nil {
			return "", err
		}
		// Only the external contra account may go negative
		if m.From != domain.AccountExternal && fromBal < m.Amount {
			return "", domain.ErrInsufficientFunds
		}
		toBal, err := load(m.To)
		if err != nil {
			return "", err
		}

		balances[m.From] = fromBal - m.Amount
		balances[m.To] = toBal + m.Amount

		entries = append(entries,
			domain.LedgerEntry{
				Ref: ref, Kind: m.Kind, Type: domain.EntryDebit,
				Account: m.From, Amount: m.Amount, Balance: balances[m.From],
				Memo: m.Memo, CreatedAt: now,
			},
			domain.LedgerEntry{
				Ref: ref, Kind: m.Kind, Type: domain.EntryCredit,
				Account: m.To, Amount: m.Amount, Balance: balances[m.To],
				Memo: m.Memo, CreatedAt: now,
			},
		)
	}

	if err := b.db.AppendLedgerEntries(entries); err != nil {
		return "", fmt.Errorf("append transfer: %w", err)
	}
	return ref, nil
}

// Deposit credits an account from outside the book. Inflows debit the
// external contra account, which is allowed to go negative.
func (b *Book) Deposit(ctx context.Context, to domain.Principal, amount int64, memo string) (string, error) {
	return b.Transfer(ctx, domain.Movement{
		From:   domain.AccountExternal,
		To:     to,
		Amount: amount,
		Kind:   domain.KindDeposit,
		Memo:   memo,
	})
}

// Balance returns the current balance of an account.
func (b *Book) Balance(ctx context.Context, account domain.Principal) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.db.LedgerBalance(account)
}

// History returns an account's entries, most recent first.
func (b *Book) History(ctx context.Context, account domain.Principal, limit int) ([]domain.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.db.LedgerEntries(account, limit)
}
