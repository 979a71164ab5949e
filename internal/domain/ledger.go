package domain

import "time"

// TransferKind labels the business reason behind a ledger movement.
type TransferKind string

const (
	KindDeposit       TransferKind = "DEPOSIT"
	KindEscrowFund    TransferKind = "ESCROW_FUND"
	KindEscrowRelease TransferKind = "ESCROW_RELEASE"
	KindEscrowRefund  TransferKind = "ESCROW_REFUND"
	KindTip           TransferKind = "TIP"
	KindFee           TransferKind = "FEE"
	KindWithdrawal    TransferKind = "WITHDRAWAL"
)

// EntryType distinguishes the two sides of a double-entry row.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// Movement is one requested transfer of value between two accounts.
// A batch of movements passed to Ledger.Transfer commits atomically.
type Movement struct {
	From   Principal    `json:"from"`
	To     Principal    `json:"to"`
	Amount int64        `json:"amount"`
	Kind   TransferKind `json:"kind"`
	Memo   string       `json:"memo,omitempty"`
}

// LedgerEntry is one recorded side of a movement. Every movement writes a
// matched DEBIT/CREDIT pair sharing a transfer ref.
type LedgerEntry struct {
	ID        int64        `json:"id"`
	Ref       string       `json:"ref"`
	Kind      TransferKind `json:"kind"`
	Type      EntryType    `json:"type"`
	Account   Principal    `json:"account"`
	Amount    int64        `json:"amount"`
	Balance   int64        `json:"balance"`
	Memo      string       `json:"memo,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
