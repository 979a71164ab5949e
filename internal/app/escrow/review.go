package escrow

import (
	"context"
	"fmt"

	"github.com/holdfast-io/holdfast/internal/app/fee"
	"github.com/holdfast-io/holdfast/internal/domain"
)

// CreateReview posts a review bounty for an assigned reviewer and pulls the
// gross amount into the vault. Unlike tasks, the requester alone decides
// when the bounty releases.
func (s *Service) CreateReview(ctx context.Context, requester, reviewer domain.Principal, bounty int64) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !requester.Valid() || !reviewer.Valid() || requester == reviewer {
		return nil, domain.ErrInvalidParticipant
	}
	if bounty <= 0 || bounty < s.cfg.MinReviewBounty {
		return nil, domain.ErrInvalidAmount
	}

	if _, err := s.lgr.Transfer(ctx, domain.Movement{
		From:   requester,
		To:     domain.AccountVault,
		Amount: bounty,
		Kind:   domain.KindEscrowFund,
		Memo:   "review bounty",
	}); err != nil {
		return nil, classifyTransferErr(err)
	}

	seq, err := s.db.NextCounter(seqCounter)
	if err != nil {
		s.refundEscrow(ctx, requester, bounty, "review bounty rollback")
		return nil, fmt.Errorf("assign sequence: %w", err)
	}

	review := domain.Review{
		Requester:  requester,
		Reviewer:   reviewer,
		Bounty:     bounty,
		Fee:        fee.Review(bounty),
		Status:     domain.StatusPending,
		CreatedSeq: seq,
		CreatedAt:  s.now(),
	}
	id, err := s.db.InsertReview(review)
	if err != nil {
		s.refundEscrow(ctx, requester, bounty, "review bounty rollback")
		return nil, fmt.Errorf("insert review: %w", err)
	}
	review.ID = id
	return &review, nil
}

// CompleteReview releases the bounty payout to the reviewer and accrues the
// fee. Only the requester may complete, exactly once.
func (s *Service) CompleteReview(ctx context.Context, id int64, caller domain.Principal) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, err := s.db.GetReview(id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return nil, domain.ErrReviewNotFound
	}
	if caller != review.Requester {
		return nil, domain.ErrUnauthorized
	}
	if review.IsTerminal() {
		return nil, domain.ErrReviewAlreadyCompleted
	}

	if _, err := s.lgr.Transfer(ctx, domain.Movement{
		From:   domain.AccountVault,
		To:     review.Reviewer,
		Amount: review.Payout(),
		Kind:   domain.KindEscrowRelease,
		Memo:   fmt.Sprintf("review %d payout", review.ID),
	}); err != nil {
		return nil, classifyTransferErr(err)
	}

	settledAt := s.now()
	if err := s.db.SettleReview(review.ID, domain.StatusCompleted, settledAt, review.Fee); err != nil {
		return nil, fmt.Errorf("settle review: %w", err)
	}
	review.Status = domain.StatusCompleted
	review.SettledAt = settledAt
	return review, nil
}

// CancelReview voids a pending bounty and refunds the full gross amount to
// the requester. Only the requester may cancel, and no fee is charged.
func (s *Service) CancelReview(ctx context.Context, id int64, caller domain.Principal) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, err := s.db.GetReview(id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return nil, domain.ErrReviewNotFound
	}
	if caller != review.Requester {
		return nil, domain.ErrUnauthorized
	}
	if review.IsTerminal() {
		return nil, domain.ErrReviewAlreadyCompleted
	}

	if _, err := s.lgr.Transfer(ctx, domain.Movement{
		From:   domain.AccountVault,
		To:     review.Requester,
		Amount: review.Bounty,
		Kind:   domain.KindEscrowRefund,
		Memo:   fmt.Sprintf("review %d refund", review.ID),
	}); err != nil {
		return nil, classifyTransferErr(err)
	}

	settledAt := s.now()
	if err := s.db.SettleReview(review.ID, domain.StatusCancelled, settledAt, 0); err != nil {
		return nil, fmt.Errorf("settle review: %w", err)
	}
	review.Status = domain.StatusCancelled
	review.SettledAt = settledAt
	return review, nil
}

// GetReview retrieves a single review request.
func (s *Service) GetReview(ctx context.Context, id int64) (*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	review, err := s.db.GetReview(id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return nil, domain.ErrReviewNotFound
	}
	return review, nil
}

// IsReviewCompleted reports whether the review exists and has settled as
// completed. An unknown id reads as false rather than an error.
func (s *Service) IsReviewCompleted(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	review, err := s.db.GetReview(id)
	if err != nil {
		return false, fmt.Errorf("get review: %w", err)
	}
	return review != nil && review.Status == domain.StatusCompleted, nil
}

// ListReviews returns review requests, newest first, optionally filtered by
// status. A limit <= 0 defaults to 50.
func (s *Service) ListReviews(ctx context.Context, status domain.EscrowStatus, limit int) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.db.ListReviews(status, limit)
}
