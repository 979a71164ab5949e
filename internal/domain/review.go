package domain

import "time"

// Review is a single-party escrow: the requester posts a bounty for an
// assigned reviewer and releases it unilaterally when satisfied. There is
// no reviewer-side confirmation step.
type Review struct {
	ID         int64        `json:"id"`
	Requester  Principal    `json:"requester"`
	Reviewer   Principal    `json:"reviewer"`
	Bounty     int64        `json:"bounty"`
	Fee        int64        `json:"fee"`
	Status     EscrowStatus `json:"status"`
	CreatedSeq int64        `json:"created_seq"`
	CreatedAt  time.Time    `json:"created_at"`
	SettledAt  time.Time    `json:"settled_at,omitempty"`
}

// Payout is the amount the reviewer receives on release.
func (r *Review) Payout() int64 {
	return r.Bounty - r.Fee
}

// IsTerminal returns true if the review has reached a final state.
func (r *Review) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusCancelled || r.Status == StatusDisputed
}
