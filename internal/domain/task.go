// Package domain holds the engine's core types and sentinel errors.
// A Task is a paid unit of work that flows through the settlement engine:
// create, confirm (both sides), release. Cancel refunds instead.
package domain

import "time"

// EscrowStatus tracks an escrow through its lifecycle.
type EscrowStatus string

const (
	StatusPending   EscrowStatus = "PENDING"
	StatusCompleted EscrowStatus = "COMPLETED"
	StatusDisputed  EscrowStatus = "DISPUTED"
	StatusCancelled EscrowStatus = "CANCELLED"
)

// Task is a two-party escrow: the requester funds it at creation, and the
// payout releases to the provider once both parties have confirmed.
type Task struct {
	ID                 int64        `json:"id"`
	Requester          Principal    `json:"requester"`
	Provider           Principal    `json:"provider"`
	Amount             int64        `json:"amount"`
	Fee                int64        `json:"fee"`
	Status             EscrowStatus `json:"status"`
	RequesterConfirmed bool         `json:"requester_confirmed"`
	ProviderConfirmed  bool         `json:"provider_confirmed"`
	CreatedSeq         int64        `json:"created_seq"`
	CreatedAt          time.Time    `json:"created_at"`
	SettledAt          time.Time    `json:"settled_at,omitempty"`
}

// Payout is the amount the provider receives on release.
func (t *Task) Payout() int64 {
	return t.Amount - t.Fee
}

// IsTerminal returns true if the escrow has reached a final state.
func (t *Task) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusCancelled || t.Status == StatusDisputed
}

// Participant returns true if p is the requester or the provider.
func (t *Task) Participant(p Principal) bool {
	return p == t.Requester || p == t.Provider
}

// BothConfirmed returns true once requester and provider have each confirmed.
func (t *Task) BothConfirmed() bool {
	return t.RequesterConfirmed && t.ProviderConfirmed
}
