package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/holdfast-io/holdfast/internal/domain"
)

// ─── Mock Ledger (for testing without SQLite) ───────────────────────────────

// MockLedger implements domain.Ledger in memory with failure injection.
type MockLedger struct {
	mu        sync.Mutex
	balances  map[domain.Principal]int64
	transfers []domain.Movement

	// FailNext makes the next Transfer fail with ErrPaymentFailed
	// without recording anything.
	FailNext bool
}

// NewMockLedger creates an empty in-memory ledger.
func NewMockLedger() *MockLedger {
	return &MockLedger{balances: make(map[domain.Principal]int64)}
}

var _ domain.Ledger = (*MockLedger)(nil)

func (m *MockLedger) Transfer(ctx context.Context, movements ...domain.Movement) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return "", domain.ErrPaymentFailed
	}
	if len(movements) == 0 {
		return "", fmt.Errorf("transfer requires at least one movement")
	}

	// Validate the whole batch before touching balances
	working := make(map[domain.Principal]int64, len(m.balances))
	for k, v := range m.balances {
		working[k] = v
	}
	for _, mv := range movements {
		if mv.Amount <= 0 {
			return "", domain.ErrInvalidAmount
		}
		if mv.From == "" || mv.To == "" || mv.From == mv.To {
			return "", domain.ErrInvalidParticipant
		}
		if mv.From != domain.AccountExternal && working[mv.From] < mv.Amount {
			return "", domain.ErrInsufficientFunds
		}
		working[mv.From] -= mv.Amount
		working[mv.To] += mv.Amount
	}

	m.balances = working
	m.transfers = append(m.transfers, movements...)
	return uuid.NewString(), nil
}

func (m *MockLedger) Deposit(ctx context.Context, to domain.Principal, amount int64, memo string) (string, error) {
	return m.Transfer(ctx, domain.Movement{
		From: domain.AccountExternal, To: to, Amount: amount,
		Kind: domain.KindDeposit, Memo: memo,
	})
}

func (m *MockLedger) Balance(_ context.Context, account domain.Principal) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account], nil
}

func (m *MockLedger) History(_ context.Context, _ domain.Principal, _ int) ([]domain.LedgerEntry, error) {
	return nil, nil
}

// Movements returns every movement recorded so far, in commit order.
func (m *MockLedger) Movements() []domain.Movement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Movement, len(m.transfers))
	copy(out, m.transfers)
	return out
}
