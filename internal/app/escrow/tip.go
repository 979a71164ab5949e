package escrow

import (
	"context"
	"fmt"

	"github.com/holdfast-io/holdfast/internal/app/fee"
	"github.com/holdfast-io/holdfast/internal/domain"
)

// SendTip transfers amount from sender to recipient, net of the tip fee.
// Tips settle immediately and leave no escrow row; the two ledger legs
// (net to the recipient, fee to the vault) commit atomically.
func (s *Service) SendTip(ctx context.Context, from, to domain.Principal, amount int64) (*domain.TipReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !from.Valid() || !to.Valid() || from == to {
		return nil, domain.ErrInvalidParticipant
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	f := fee.Tip(amount)
	movements := []domain.Movement{{
		From:   from,
		To:     to,
		Amount: amount - f,
		Kind:   domain.KindTip,
		Memo:   "tip",
	}}
	// Small tips floor to a zero fee and keep a single leg
	if f > 0 {
		movements = append(movements, domain.Movement{
			From:   from,
			To:     domain.AccountVault,
			Amount: f,
			Kind:   domain.KindFee,
			Memo:   "tip fee",
		})
	}

	ref, err := s.lgr.Transfer(ctx, movements...)
	if err != nil {
		return nil, classifyTransferErr(err)
	}

	if f > 0 {
		if err := s.db.AccrueTreasury(f); err != nil {
			return nil, fmt.Errorf("accrue tip fee: %w", err)
		}
	}

	return &domain.TipReceipt{
		Ref:    ref,
		From:   from,
		To:     to,
		Amount: amount,
		Fee:    f,
		Net:    amount - f,
	}, nil
}
