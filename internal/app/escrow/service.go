// Package escrow implements the settlement engine: task escrows with dual
// confirmation, review bounties released by the requester, stateless tips,
// and the platform fee treasury. All funds move through the book ledger;
// the vault account custodies every pending escrow plus accrued fees.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/holdfast-io/holdfast/internal/domain"
	"github.com/holdfast-io/holdfast/internal/infra/sqlite"
)

// seqCounter orders escrows of both kinds on one monotonic sequence.
const seqCounter = "escrow_seq"

// Config carries the service's operating parameters.
type Config struct {
	MinTaskPayment  int64            // Smallest accepted task escrow, in base units
	MinReviewBounty int64            // Smallest accepted review bounty, in base units
	Owner           domain.Principal // Sole principal allowed to withdraw fees
}

// Service is the settlement engine. A single mutex serializes every
// state-changing operation; reads go straight to storage.
type Service struct {
	mu  sync.Mutex
	db  *sqlite.DB
	lgr domain.Ledger
	cfg Config
	now func() time.Time // Injectable for tests
}

// NewService creates a settlement service over the given storage and ledger.
func NewService(db *sqlite.DB, lgr domain.Ledger, cfg Config) *Service {
	return &Service{db: db, lgr: lgr, cfg: cfg, now: time.Now}
}

// Owner returns the configured treasury owner.
func (s *Service) Owner() domain.Principal {
	return s.cfg.Owner
}

// classifyTransferErr keeps ledger sentinels callers can act on and folds
// everything else into ErrPaymentFailed.
func classifyTransferErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidParticipant):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}
}

// refundEscrow returns vault funds after a failed create. Best effort: the
// conservation health check flags anything this misses.
func (s *Service) refundEscrow(ctx context.Context, to domain.Principal, amount int64, memo string) {
	_, _ = s.lgr.Transfer(ctx, domain.Movement{
		From:   domain.AccountVault,
		To:     to,
		Amount: amount,
		Kind:   domain.KindEscrowRefund,
		Memo:   memo,
	})
}
