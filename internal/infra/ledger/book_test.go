package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/holdfast-io/holdfast/internal/domain"
	"github.com/holdfast-io/holdfast/internal/infra/sqlite"
)

func newTestBook(t *testing.T) *Book {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBook(db)
}

// ─── Deposit Tests ──────────────────────────────────────────────────────────

func TestBook_DepositCreditsAccount(t *testing.T) {
	book := newTestBook(t)
	ctx := context.Background()

	ref, err := book.Deposit(ctx, "alice", 1_000_000, "top-up")
	if err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}
	if ref == "" {
		t.Error("Deposit() returned empty ref")
	}

	bal, err := book.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("Balance() error: %v", err)
	}
	if bal != 1_000_000 {
		t.Errorf("balance = %d, want 1000000", bal)
	}
}

func TestBook_DepositDebitsExternal(t *testing.T) {
	book := newTestBook(t)
	ctx := context.Background()

	if _, err := book.Deposit(ctx, "alice", 500, ""); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}

	// The contra account absorbs the inflow and may go negative
	bal, err := book.Balance(ctx, domain.AccountExternal)
	if err != nil {
		t.Fatalf("Balance() error: %v", err)
	}
	if bal != -500 {
		t.Errorf("external balance = %d, want -500", bal)
	}
}

func TestBook_DepositRejectsNonPositive(t *testing.T) {
	book := newTestBook(t)
	ctx := context.Background()

	for _, amount := range []int64{0, -1} {
		_, err := book.Deposit(ctx, "alice", amount, "")
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("Deposit(%d) = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

// ─── Transfer Tests ─────────────────────────────────────────────────────────

func TestBook_TransferMovesFunds(t *testing.T) {
	book := newTestBook(t)
	ctx := context.Background()

	if _, err := book.Deposit(ctx, "alice", 1000, ""); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}

	_, err := book.Transfer(ctx, domain.Movement{
		From: "alice", To: "bob", Amount: 300, Kind: domain.KindTip,
	})
	if err != nil {
		t.Fatalf("Transfer() error: %v", err)
	}

	aliceBal, _ := book.Balance(ctx, "alice")
	bobBal, _ := book.Balance(ctx, "bob")
	if aliceBal != 700 {
		t.Errorf("alice balance = %d, want 700", aliceBal)
	}
	if bobBal != 300 {
		t.Errorf("bob balance = %d, want 300", bobBal)
	}
}

func TestBook_TransferInsufficientFunds(t *testing.T) {
	book := newTestBook(t)
	ctx := context.Background()

	if _, err := book.Deposit(ctx, "alice", 100, ""); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}

	_, err := book.Transfer(ctx, domain.Movement{
		From: "alice", To: "bob", Amount: 101, Kind: domain.KindTip,
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Errorf("Transfer() = %v, want ErrInsufficientFunds", err)
	}

	// Nothing written
	bal, _ := book.Balance(ctx, "alice")
	if bal != 100 {
		t.Errorf("alice balance after failed transfer = %d, want 100", bal)
	}
}

func TestBook_TransferExactBalance(t *testing.T) {
	book := newTestBook(t)
	ctx := context.Background()

	if _, err := book.Deposit(ctx, "alice", 100, ""); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}

	_, err := book.Transfer(ctx, domain.Movement{
		From: "alice", To: "bob", Amount: 100, Kind: domain.KindTip,
	})
	if err != nil {
		t.Fatalf("Transfer() of exact balance error: %v", err)
	}

	bal, _ := book.Balance(ctx, "alice")
	if bal != 0 {
		t.Errorf("alice balance = %d, want 0", bal)
	}
}

func TestBook_TransferRejectsSelf(t *testing.T) {
	book := newTestBook(t)
	ctx := context.Background()

	_, err := book.Transfer(ctx, domain.Movement{
		From: "alice", To: "alice", Amount: 10, Kind: domain.KindTip,
	})
	if !errors.Is(err, domain.ErrInvalidParticipant) {
		t.Errorf("self transfer = %v, want ErrInvalidParticipant", err)
	}
}

func TestBook_MultiMovementAtomic(t *testing.T) {
	book := newTestBook(t)
	ctx := context.Background()

	if _, err := book.Deposit(ctx, "alice", 100, ""); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}

	// Second movement overdraws: the whole batch must be rejected
	_, err := book.Transfer(ctx,
		domain.Movement{From: "alice", To: "bob", Amount: 98, Kind: domain.KindTip},
		domain.Movement{From: "alice", To: domain.AccountVault, Amount: 3, Kind: domain.KindFee},
	)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("overdrawing batch = %v, want ErrInsufficientFunds", err)
	}

	aliceBal, _ := book.Balance(ctx, "alice")
	bobBal, _ := book.Balance(ctx, "bob")
	if aliceBal != 100 || bobBal != 0 {
		t.Errorf("balances after rejected batch = %d/%d, want 100/0", aliceBal, bobBal)
	}
}

func TestBook_MultiMovementSharesRef(t *testing.T) {
	book := newTestBook(t)
	ctx := context.Background()

	if _, err := book.Deposit(ctx, "alice", 100, ""); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}

	ref, err := book.Transfer(ctx,
		domain.Movement{From: "alice", To: "bob", Amount: 49, Kind: domain.KindTip},
		domain.Movement{From: "alice", To: domain.AccountVault, Amount: 1, Kind: domain.KindFee},
	)
	if err != nil {
		t.Fatalf("Transfer() error: %v", err)
	}

	entries, err := book.History(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	// Deposit credit plus two debits
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for _, e := range entries[:2] {
		if e.Ref != ref {
			t.Errorf("entry ref = %s, want %s", e.Ref, ref)
		}
		if e.Type != domain.EntryDebit {
			t.Errorf("entry type = %s, want DEBIT", e.Type)
		}
	}
}

func TestBook_RunningBalancesWithinBatch(t *testing.T) {
	book := newTestBook(t)
	ctx := context.Background()

	if _, err := book.Deposit(ctx, "alice", 100, ""); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}

	// bob receives 60 in the first movement and forwards 50 in the second;
	// the batch funds itself
	_, err := book.Transfer(ctx,
		domain.Movement{From: "alice", To: "bob", Amount: 60, Kind: domain.KindTip},
		domain.Movement{From: "bob", To: "carol", Amount: 50, Kind: domain.KindTip},
	)
	if err != nil {
		t.Fatalf("chained batch error: %v", err)
	}

	bobBal, _ := book.Balance(ctx, "bob")
	carolBal, _ := book.Balance(ctx, "carol")
	if bobBal != 10 {
		t.Errorf("bob balance = %d, want 10", bobBal)
	}
	if carolBal != 50 {
		t.Errorf("carol balance = %d, want 50", carolBal)
	}
}

// ─── History Tests ──────────────────────────────────────────────────────────

func TestBook_HistoryEmpty(t *testing.T) {
	book := newTestBook(t)

	entries, err := book.History(context.Background(), "nobody", 10)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("History() = %d entries, want 0", len(entries))
	}
}

// ─── Mock Ledger Tests ──────────────────────────────────────────────────────

func TestMockLedger_MatchesBookSemantics(t *testing.T) {
	mock := NewMockLedger()
	ctx := context.Background()

	if _, err := mock.Deposit(ctx, "alice", 100, ""); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}
	_, err := mock.Transfer(ctx, domain.Movement{
		From: "alice", To: "bob", Amount: 101, Kind: domain.KindTip,
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Errorf("overdraw = %v, want ErrInsufficientFunds", err)
	}

	bal, _ := mock.Balance(ctx, "alice")
	if bal != 100 {
		t.Errorf("alice balance = %d, want 100", bal)
	}
}

func TestMockLedger_FailNext(t *testing.T) {
	mock := NewMockLedger()
	ctx := context.Background()

	if _, err := mock.Deposit(ctx, "alice", 100, ""); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}

	mock.FailNext = true
	_, err := mock.Transfer(ctx, domain.Movement{
		From: "alice", To: "bob", Amount: 10, Kind: domain.KindTip,
	})
	if !errors.Is(err, domain.ErrPaymentFailed) {
		t.Errorf("injected failure = %v, want ErrPaymentFailed", err)
	}

	// Next call succeeds again
	if _, err := mock.Transfer(ctx, domain.Movement{
		From: "alice", To: "bob", Amount: 10, Kind: domain.KindTip,
	}); err != nil {
		t.Errorf("transfer after injected failure error: %v", err)
	}
}
