package escrow

import (
	"context"
	"fmt"

	"github.com/holdfast-io/holdfast/internal/domain"
)

// Treasury returns the fee accumulator with the configured owner attached.
func (s *Service) Treasury(ctx context.Context) (*domain.Treasury, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := s.db.Treasury()
	if err != nil {
		return nil, fmt.Errorf("get treasury: %w", err)
	}
	t.Owner = s.cfg.Owner
	return t, nil
}

// WithdrawTreasury pays accrued fees out of the vault to the owner. The
// treasury claim is taken first; if the payout transfer then fails, the
// claim is restored and ErrPaymentFailed reported.
func (s *Service) WithdrawTreasury(ctx context.Context, caller domain.Principal, amount int64) (*domain.Treasury, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller == "" || caller != s.cfg.Owner {
		return nil, domain.ErrUnauthorized
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	if err := s.db.WithdrawTreasury(amount); err != nil {
		return nil, err
	}

	if _, err := s.lgr.Transfer(ctx, domain.Movement{
		From:   domain.AccountVault,
		To:     caller,
		Amount: amount,
		Kind:   domain.KindWithdrawal,
		Memo:   "treasury withdrawal",
	}); err != nil {
		if restoreErr := s.db.RestoreTreasury(amount); restoreErr != nil {
			return nil, fmt.Errorf("restore treasury after failed payout: %v (payout: %w)", restoreErr, err)
		}
		return nil, classifyTransferErr(err)
	}

	t, err := s.db.Treasury()
	if err != nil {
		return nil, fmt.Errorf("get treasury: %w", err)
	}
	t.Owner = s.cfg.Owner
	return t, nil
}
