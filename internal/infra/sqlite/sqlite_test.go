package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/holdfast-io/holdfast/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func pendingTask(requester, provider domain.Principal, amount, fee, seq int64) domain.Task {
	return domain.Task{
		Requester:  requester,
		Provider:   provider,
		Amount:     amount,
		Fee:        fee,
		Status:     domain.StatusPending,
		CreatedSeq: seq,
		CreatedAt:  time.Now(),
	}
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	// Check file exists
	if _, err := os.Stat(filepath.Join(dir, "state.db")); os.IsNotExist(err) {
		t.Error("state.db should exist")
	}
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpen_SeedsTreasuryRow(t *testing.T) {
	db := newTestDB(t)

	tr, err := db.Treasury()
	if err != nil {
		t.Fatalf("Treasury() error: %v", err)
	}
	if tr.Balance != 0 || tr.LifetimeAccrued != 0 || tr.LifetimeWithdrawn != 0 {
		t.Errorf("fresh treasury = %+v, want all zeros", tr)
	}
}

// ─── Task CRUD ──────────────────────────────────────────────────────────────

func TestInsertTask_AssignsSequentialIDs(t *testing.T) {
	db := newTestDB(t)

	id1, err := db.InsertTask(pendingTask("alice", "bob", 1_000_000, 50_000, 1))
	if err != nil {
		t.Fatalf("InsertTask() error: %v", err)
	}
	id2, err := db.InsertTask(pendingTask("carol", "dave", 2_000_000, 100_000, 2))
	if err != nil {
		t.Fatalf("InsertTask() error: %v", err)
	}

	if id1 != 1 {
		t.Errorf("first task id = %d, want 1", id1)
	}
	if id2 != 2 {
		t.Errorf("second task id = %d, want 2", id2)
	}
}

func TestGetTask_RoundTrip(t *testing.T) {
	db := newTestDB(t)

	id, err := db.InsertTask(pendingTask("alice", "bob", 1_000_000, 50_000, 1))
	if err != nil {
		t.Fatalf("InsertTask() error: %v", err)
	}

	got, err := db.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetTask() returned nil")
	}
	if got.Requester != "alice" || got.Provider != "bob" {
		t.Errorf("participants = %s/%s, want alice/bob", got.Requester, got.Provider)
	}
	if got.Amount != 1_000_000 || got.Fee != 50_000 {
		t.Errorf("amount/fee = %d/%d, want 1000000/50000", got.Amount, got.Fee)
	}
	if got.Status != domain.StatusPending {
		t.Errorf("status = %s, want PENDING", got.Status)
	}
	if !got.SettledAt.IsZero() {
		t.Errorf("SettledAt = %v, want zero", got.SettledAt)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetTask(42)
	if err != nil {
		t.Fatalf("GetTask() error: %v", err)
	}
	if got != nil {
		t.Error("GetTask() should return nil for nonexistent task")
	}
}

func TestListTasks_FilterByStatus(t *testing.T) {
	db := newTestDB(t)

	for i := int64(1); i <= 3; i++ {
		if _, err := db.InsertTask(pendingTask("alice", "bob", 1_000_000, 50_000, i)); err != nil {
			t.Fatalf("InsertTask() error: %v", err)
		}
	}
	if err := db.SettleTask(2, domain.StatusCancelled, time.Now(), 0); err != nil {
		t.Fatalf("SettleTask() error: %v", err)
	}

	pending, err := db.ListTasks(domain.StatusPending, 10)
	if err != nil {
		t.Fatalf("ListTasks(PENDING) error: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("len(pending) = %d, want 2", len(pending))
	}

	all, err := db.ListTasks("", 10)
	if err != nil {
		t.Fatalf("ListTasks(all) error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
	// Newest first
	if all[0].ID != 3 {
		t.Errorf("first listed id = %d, want 3", all[0].ID)
	}
}

func TestUpdateTaskConfirmations(t *testing.T) {
	db := newTestDB(t)

	id, err := db.InsertTask(pendingTask("alice", "bob", 1_000_000, 50_000, 1))
	if err != nil {
		t.Fatalf("InsertTask() error: %v", err)
	}

	if err := db.UpdateTaskConfirmations(id, true, false); err != nil {
		t.Fatalf("UpdateTaskConfirmations() error: %v", err)
	}

	got, err := db.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask() error: %v", err)
	}
	if !got.RequesterConfirmed || got.ProviderConfirmed {
		t.Errorf("confirmations = %v/%v, want true/false",
			got.RequesterConfirmed, got.ProviderConfirmed)
	}
}

// ─── Task Settlement ────────────────────────────────────────────────────────

func TestSettleTask_AccruesFee(t *testing.T) {
	db := newTestDB(t)

	id, err := db.InsertTask(pendingTask("alice", "bob", 1_000_000, 50_000, 1))
	if err != nil {
		t.Fatalf("InsertTask() error: %v", err)
	}

	if err := db.SettleTask(id, domain.StatusCompleted, time.Now(), 50_000); err != nil {
		t.Fatalf("SettleTask() error: %v", err)
	}

	got, err := db.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask() error: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", got.Status)
	}
	if got.SettledAt.IsZero() {
		t.Error("SettledAt should be set")
	}

	tr, err := db.Treasury()
	if err != nil {
		t.Fatalf("Treasury() error: %v", err)
	}
	if tr.Balance != 50_000 || tr.LifetimeAccrued != 50_000 {
		t.Errorf("treasury balance/accrued = %d/%d, want 50000/50000",
			tr.Balance, tr.LifetimeAccrued)
	}
}

func TestSettleTask_ExactlyOnce(t *testing.T) {
	db := newTestDB(t)

	id, err := db.InsertTask(pendingTask("alice", "bob", 1_000_000, 50_000, 1))
	if err != nil {
		t.Fatalf("InsertTask() error: %v", err)
	}

	if err := db.SettleTask(id, domain.StatusCompleted, time.Now(), 50_000); err != nil {
		t.Fatalf("first SettleTask() error: %v", err)
	}

	err = db.SettleTask(id, domain.StatusCompleted, time.Now(), 50_000)
	if err != domain.ErrTaskAlreadyCompleted {
		t.Errorf("second SettleTask() = %v, want ErrTaskAlreadyCompleted", err)
	}

	// Fee must not double-accrue
	tr, err := db.Treasury()
	if err != nil {
		t.Fatalf("Treasury() error: %v", err)
	}
	if tr.Balance != 50_000 {
		t.Errorf("treasury balance = %d, want 50000", tr.Balance)
	}
}

func TestSettleTask_CancelAccruesNothing(t *testing.T) {
	db := newTestDB(t)

	id, err := db.InsertTask(pendingTask("alice", "bob", 1_000_000, 50_000, 1))
	if err != nil {
		t.Fatalf("InsertTask() error: %v", err)
	}

	if err := db.SettleTask(id, domain.StatusCancelled, time.Now(), 0); err != nil {
		t.Fatalf("SettleTask() error: %v", err)
	}

	tr, err := db.Treasury()
	if err != nil {
		t.Fatalf("Treasury() error: %v", err)
	}
	if tr.Balance != 0 || tr.LifetimeAccrued != 0 {
		t.Errorf("treasury after cancel = %+v, want zeros", tr)
	}
}

// ─── Review CRUD ────────────────────────────────────────────────────────────

func TestInsertReview_RoundTrip(t *testing.T) {
	db := newTestDB(t)

	id, err := db.InsertReview(domain.Review{
		Requester:  "alice",
		Reviewer:   "rex",
		Bounty:     500_000,
		Fee:        25_000,
		Status:     domain.StatusPending,
		CreatedSeq: 1,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertReview() error: %v", err)
	}
	if id != 1 {
		t.Errorf("first review id = %d, want 1", id)
	}

	got, err := db.GetReview(id)
	if err != nil {
		t.Fatalf("GetReview() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetReview() returned nil")
	}
	if got.Reviewer != "rex" || got.Bounty != 500_000 || got.Fee != 25_000 {
		t.Errorf("review = %+v, want rex/500000/25000", got)
	}
}

func TestGetReview_NotFound(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetReview(7)
	if err != nil {
		t.Fatalf("GetReview() error: %v", err)
	}
	if got != nil {
		t.Error("GetReview() should return nil for nonexistent review")
	}
}

func TestSettleReview_ExactlyOnce(t *testing.T) {
	db := newTestDB(t)

	id, err := db.InsertReview(domain.Review{
		Requester: "alice", Reviewer: "rex", Bounty: 500_000, Fee: 25_000,
		Status: domain.StatusPending, CreatedSeq: 1, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertReview() error: %v", err)
	}

	if err := db.SettleReview(id, domain.StatusCompleted, time.Now(), 25_000); err != nil {
		t.Fatalf("first SettleReview() error: %v", err)
	}
	err = db.SettleReview(id, domain.StatusCompleted, time.Now(), 25_000)
	if err != domain.ErrReviewAlreadyCompleted {
		t.Errorf("second SettleReview() = %v, want ErrReviewAlreadyCompleted", err)
	}

	tr, err := db.Treasury()
	if err != nil {
		t.Fatalf("Treasury() error: %v", err)
	}
	if tr.Balance != 25_000 {
		t.Errorf("treasury balance = %d, want 25000", tr.Balance)
	}
}

// ─── Treasury ───────────────────────────────────────────────────────────────

func TestWithdrawTreasury(t *testing.T) {
	db := newTestDB(t)

	id, err := db.InsertTask(pendingTask("alice", "bob", 1_000_000, 50_000, 1))
	if err != nil {
		t.Fatalf("InsertTask() error: %v", err)
	}
	if err := db.SettleTask(id, domain.StatusCompleted, time.Now(), 50_000); err != nil {
		t.Fatalf("SettleTask() error: %v", err)
	}

	if err := db.WithdrawTreasury(30_000); err != nil {
		t.Fatalf("WithdrawTreasury() error: %v", err)
	}

	tr, err := db.Treasury()
	if err != nil {
		t.Fatalf("Treasury() error: %v", err)
	}
	if tr.Balance != 20_000 {
		t.Errorf("balance = %d, want 20000", tr.Balance)
	}
	if tr.LifetimeAccrued != 50_000 {
		t.Errorf("accrued = %d, want 50000 (withdrawals must not shrink it)", tr.LifetimeAccrued)
	}
	if tr.LifetimeWithdrawn != 30_000 {
		t.Errorf("withdrawn = %d, want 30000", tr.LifetimeWithdrawn)
	}
}

func TestWithdrawTreasury_InsufficientFunds(t *testing.T) {
	db := newTestDB(t)

	err := db.WithdrawTreasury(1)
	if err != domain.ErrInsufficientFunds {
		t.Errorf("WithdrawTreasury() = %v, want ErrInsufficientFunds", err)
	}
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

func TestAppendLedgerEntries_AndBalance(t *testing.T) {
	db := newTestDB(t)

	now := time.Now()
	entries := []domain.LedgerEntry{
		{Ref: "ref-1", Kind: domain.KindDeposit, Type: domain.EntryDebit,
			Account: domain.AccountExternal, Amount: 100, Balance: -100, CreatedAt: now},
		{Ref: "ref-1", Kind: domain.KindDeposit, Type: domain.EntryCredit,
			Account: "alice", Amount: 100, Balance: 100, Memo: "top-up", CreatedAt: now},
	}
	if err := db.AppendLedgerEntries(entries); err != nil {
		t.Fatalf("AppendLedgerEntries() error: %v", err)
	}

	bal, err := db.LedgerBalance("alice")
	if err != nil {
		t.Fatalf("LedgerBalance() error: %v", err)
	}
	if bal != 100 {
		t.Errorf("alice balance = %d, want 100", bal)
	}

	extBal, err := db.LedgerBalance(domain.AccountExternal)
	if err != nil {
		t.Fatalf("LedgerBalance() error: %v", err)
	}
	if extBal != -100 {
		t.Errorf("external balance = %d, want -100", extBal)
	}
}

func TestLedgerBalance_UnknownAccount(t *testing.T) {
	db := newTestDB(t)

	bal, err := db.LedgerBalance("nobody")
	if err != nil {
		t.Fatalf("LedgerBalance() error: %v", err)
	}
	if bal != 0 {
		t.Errorf("balance = %d, want 0", bal)
	}
}

func TestLedgerEntries_NewestFirst(t *testing.T) {
	db := newTestDB(t)

	now := time.Now()
	for i, ref := range []string{"ref-a", "ref-b"} {
		entries := []domain.LedgerEntry{
			{Ref: ref, Kind: domain.KindDeposit, Type: domain.EntryDebit,
				Account: domain.AccountExternal, Amount: 10, Balance: int64(-10 * (i + 1)), CreatedAt: now},
			{Ref: ref, Kind: domain.KindDeposit, Type: domain.EntryCredit,
				Account: "alice", Amount: 10, Balance: int64(10 * (i + 1)), CreatedAt: now},
		}
		if err := db.AppendLedgerEntries(entries); err != nil {
			t.Fatalf("AppendLedgerEntries() error: %v", err)
		}
	}

	got, err := db.LedgerEntries("alice", 10)
	if err != nil {
		t.Fatalf("LedgerEntries() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(got))
	}
	if got[0].Ref != "ref-b" {
		t.Errorf("first entry ref = %s, want ref-b (newest first)", got[0].Ref)
	}
	if got[0].Balance != 20 {
		t.Errorf("latest balance = %d, want 20", got[0].Balance)
	}
}

// ─── Counters ───────────────────────────────────────────────────────────────

func TestNextCounter_StartsAtOne(t *testing.T) {
	db := newTestDB(t)

	v, err := db.NextCounter("escrow_seq")
	if err != nil {
		t.Fatalf("NextCounter() error: %v", err)
	}
	if v != 1 {
		t.Errorf("first counter value = %d, want 1", v)
	}

	v, err = db.NextCounter("escrow_seq")
	if err != nil {
		t.Fatalf("NextCounter() error: %v", err)
	}
	if v != 2 {
		t.Errorf("second counter value = %d, want 2", v)
	}
}

func TestNextCounter_IndependentNames(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.NextCounter("a"); err != nil {
		t.Fatalf("NextCounter(a) error: %v", err)
	}
	v, err := db.NextCounter("b")
	if err != nil {
		t.Fatalf("NextCounter(b) error: %v", err)
	}
	if v != 1 {
		t.Errorf("counter b = %d, want 1", v)
	}
}

// ─── Aggregates ─────────────────────────────────────────────────────────────

func TestPendingGross(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.InsertTask(pendingTask("alice", "bob", 1_000_000, 50_000, 1)); err != nil {
		t.Fatalf("InsertTask() error: %v", err)
	}
	if _, err := db.InsertReview(domain.Review{
		Requester: "alice", Reviewer: "rex", Bounty: 500_000, Fee: 25_000,
		Status: domain.StatusPending, CreatedSeq: 2, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("InsertReview() error: %v", err)
	}

	gross, err := db.PendingGross()
	if err != nil {
		t.Fatalf("PendingGross() error: %v", err)
	}
	if gross != 1_500_000 {
		t.Errorf("PendingGross() = %d, want 1500000", gross)
	}

	// Settling removes the task from the pending pool
	if err := db.SettleTask(1, domain.StatusCompleted, time.Now(), 50_000); err != nil {
		t.Fatalf("SettleTask() error: %v", err)
	}
	gross, err = db.PendingGross()
	if err != nil {
		t.Fatalf("PendingGross() error: %v", err)
	}
	if gross != 500_000 {
		t.Errorf("PendingGross() after settle = %d, want 500000", gross)
	}
}

func TestCountTasksByStatus(t *testing.T) {
	db := newTestDB(t)

	for i := int64(1); i <= 2; i++ {
		if _, err := db.InsertTask(pendingTask("alice", "bob", 1_000_000, 50_000, i)); err != nil {
			t.Fatalf("InsertTask() error: %v", err)
		}
	}
	if err := db.SettleTask(1, domain.StatusCompleted, time.Now(), 50_000); err != nil {
		t.Fatalf("SettleTask() error: %v", err)
	}

	counts, err := db.CountTasksByStatus()
	if err != nil {
		t.Fatalf("CountTasksByStatus() error: %v", err)
	}
	if counts[domain.StatusPending] != 1 {
		t.Errorf("pending count = %d, want 1", counts[domain.StatusPending])
	}
	if counts[domain.StatusCompleted] != 1 {
		t.Errorf("completed count = %d, want 1", counts[domain.StatusCompleted])
	}
}
