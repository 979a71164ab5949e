package escrow

import (
	"context"

	"github.com/holdfast-io/holdfast/internal/domain"
)

// Deposit credits a principal's spendable balance from the host
// environment. Returns the ledger ref of the inflow.
func (s *Service) Deposit(ctx context.Context, to domain.Principal, amount int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !to.Valid() {
		return "", domain.ErrInvalidParticipant
	}
	if amount <= 0 {
		return "", domain.ErrInvalidAmount
	}
	ref, err := s.lgr.Deposit(ctx, to, amount, "external deposit")
	if err != nil {
		return "", classifyTransferErr(err)
	}
	return ref, nil
}

// BalanceOf returns a principal's current spendable balance.
func (s *Service) BalanceOf(ctx context.Context, p domain.Principal) (int64, error) {
	if p == "" {
		return 0, domain.ErrInvalidParticipant
	}
	return s.lgr.Balance(ctx, p)
}

// HistoryOf returns a principal's ledger entries, most recent first.
func (s *Service) HistoryOf(ctx context.Context, p domain.Principal, limit int) ([]domain.LedgerEntry, error) {
	if p == "" {
		return nil, domain.ErrInvalidParticipant
	}
	if limit <= 0 {
		limit = 50
	}
	return s.lgr.History(ctx, p, limit)
}
