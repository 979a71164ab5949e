package escrow

import (
	"context"
	"fmt"

	"github.com/holdfast-io/holdfast/internal/app/fee"
	"github.com/holdfast-io/holdfast/internal/domain"
)

// CreateTask opens a task escrow between requester and provider and pulls
// the gross amount into the vault. The payout releases only after both
// parties confirm.
func (s *Service) CreateTask(ctx context.Context, requester, provider domain.Principal, amount int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !requester.Valid() || !provider.Valid() || requester == provider {
		return nil, domain.ErrInvalidParticipant
	}
	if amount <= 0 || amount < s.cfg.MinTaskPayment {
		return nil, domain.ErrInvalidAmount
	}

	if _, err := s.lgr.Transfer(ctx, domain.Movement{
		From:   requester,
		To:     domain.AccountVault,
		Amount: amount,
		Kind:   domain.KindEscrowFund,
		Memo:   "task escrow",
	}); err != nil {
		return nil, classifyTransferErr(err)
	}

	seq, err := s.db.NextCounter(seqCounter)
	if err != nil {
		s.refundEscrow(ctx, requester, amount, "task escrow rollback")
		return nil, fmt.Errorf("assign sequence: %w", err)
	}

	task := domain.Task{
		Requester:  requester,
		Provider:   provider,
		Amount:     amount,
		Fee:        fee.Task(amount),
		Status:     domain.StatusPending,
		CreatedSeq: seq,
		CreatedAt:  s.now(),
	}
	id, err := s.db.InsertTask(task)
	if err != nil {
		s.refundEscrow(ctx, requester, amount, "task escrow rollback")
		return nil, fmt.Errorf("insert task: %w", err)
	}
	task.ID = id
	return &task, nil
}

// ConfirmTask records the caller's confirmation. Confirming twice is
// harmless. Once both parties have confirmed, the payout releases to the
// provider and the fee accrues to the treasury, exactly once.
func (s *Service) ConfirmTask(ctx context.Context, id int64, caller domain.Principal) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.db.GetTask(id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	if task.IsTerminal() {
		return nil, domain.ErrTaskAlreadyCompleted
	}
	if !task.Participant(caller) {
		return nil, domain.ErrNotTaskParticipant
	}

	switch caller {
	case task.Requester:
		task.RequesterConfirmed = true
	case task.Provider:
		task.ProviderConfirmed = true
	}
	if err := s.db.UpdateTaskConfirmations(task.ID, task.RequesterConfirmed, task.ProviderConfirmed); err != nil {
		return nil, fmt.Errorf("update confirmations: %w", err)
	}

	if !task.BothConfirmed() {
		return task, nil
	}

	// Both sides have agreed: release the payout. On transfer failure the
	// escrow stays PENDING with both flags set, so a later confirm retries
	// the release.
	if _, err := s.lgr.Transfer(ctx, domain.Movement{
		From:   domain.AccountVault,
		To:     task.Provider,
		Amount: task.Payout(),
		Kind:   domain.KindEscrowRelease,
		Memo:   fmt.Sprintf("task %d payout", task.ID),
	}); err != nil {
		return nil, classifyTransferErr(err)
	}

	settledAt := s.now()
	if err := s.db.SettleTask(task.ID, domain.StatusCompleted, settledAt, task.Fee); err != nil {
		return nil, fmt.Errorf("settle task: %w", err)
	}
	task.Status = domain.StatusCompleted
	task.SettledAt = settledAt
	return task, nil
}

// CancelTask voids a pending escrow and refunds the full gross amount to
// the requester. Only the requester may cancel, and no fee is charged.
func (s *Service) CancelTask(ctx context.Context, id int64, caller domain.Principal) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.db.GetTask(id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	if caller != task.Requester {
		return nil, domain.ErrUnauthorized
	}
	if task.IsTerminal() {
		return nil, domain.ErrTaskAlreadyCompleted
	}

	if _, err := s.lgr.Transfer(ctx, domain.Movement{
		From:   domain.AccountVault,
		To:     task.Requester,
		Amount: task.Amount,
		Kind:   domain.KindEscrowRefund,
		Memo:   fmt.Sprintf("task %d refund", task.ID),
	}); err != nil {
		return nil, classifyTransferErr(err)
	}

	settledAt := s.now()
	if err := s.db.SettleTask(task.ID, domain.StatusCancelled, settledAt, 0); err != nil {
		return nil, fmt.Errorf("settle task: %w", err)
	}
	task.Status = domain.StatusCancelled
	task.SettledAt = settledAt
	return task, nil
}

// GetTask retrieves a single task escrow.
func (s *Service) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	task, err := s.db.GetTask(id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// IsTaskCompleted reports whether the task exists and has settled as
// completed. An unknown id reads as false rather than an error.
func (s *Service) IsTaskCompleted(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	task, err := s.db.GetTask(id)
	if err != nil {
		return false, fmt.Errorf("get task: %w", err)
	}
	return task != nil && task.Status == domain.StatusCompleted, nil
}

// ListTasks returns task escrows, newest first, optionally filtered by
// status. A limit <= 0 defaults to 50.
func (s *Service) ListTasks(ctx context.Context, status domain.EscrowStatus, limit int) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.db.ListTasks(status, limit)
}
