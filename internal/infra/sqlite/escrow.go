package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/holdfast-io/holdfast/internal/domain"
)

// ─── Task Repository ────────────────────────────────────────────────────────

// InsertTask creates a new escrow task record and returns its assigned ID.
func (d *DB) InsertTask(task domain.Task) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO escrow_tasks (requester, provider, amount, fee, status, requester_confirmed, provider_confirmed, created_seq, created_at, settled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(task.Requester), string(task.Provider), task.Amount, task.Fee,
		string(task.Status), task.RequesterConfirmed, task.ProviderConfirmed,
		task.CreatedSeq, task.CreatedAt.Unix(), nullableUnix(task.SettledAt),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetTask retrieves an escrow task by ID. Returns (nil, nil) when absent.
func (d *DB) GetTask(id int64) (*domain.Task, error) {
	row := d.db.QueryRow(
		`SELECT id, requester, provider, amount, fee, status, requester_confirmed, provider_confirmed, created_seq, created_at, settled_at
		 FROM escrow_tasks WHERE id = ?`, id,
	)
	return scanEscrowTask(row)
}

// ListTasks returns escrow tasks, newest first, optionally filtered by status.
func (d *DB) ListTasks(status domain.EscrowStatus, limit int) ([]domain.Task, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = d.db.Query(
			`SELECT id, requester, provider, amount, fee, status, requester_confirmed, provider_confirmed, created_seq, created_at, settled_at
			 FROM escrow_tasks ORDER BY created_seq DESC LIMIT ?`, limit)
	} else {
		rows, err = d.db.Query(
			`SELECT id, requester, provider, amount, fee, status, requester_confirmed, provider_confirmed, created_seq, created_at, settled_at
			 FROM escrow_tasks WHERE status = ? ORDER BY created_seq DESC LIMIT ?`,
			string(status), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanEscrowTaskRows(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTaskConfirmations persists the two confirmation flags.
func (d *DB) UpdateTaskConfirmations(id int64, requester, provider bool) error {
	_, err := d.db.Exec(
		`UPDATE escrow_tasks SET requester_confirmed = ?, provider_confirmed = ? WHERE id = ?`,
		requester, provider, id,
	)
	return err
}

// SettleTask moves a pending task to a terminal status and, in the same
// transaction, accrues feeDelta into the treasury. The status guard makes
// settlement exactly-once: a task already out of PENDING is left untouched.
func (d *DB) SettleTask(id int64, status domain.EscrowStatus, settledAt time.Time, feeDelta int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.Exec(
		`UPDATE escrow_tasks SET status = ?, settled_at = ? WHERE id = ? AND status = ?`,
		string(status), settledAt.Unix(), id, string(domain.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("settle task: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrTaskAlreadyCompleted
	}

	if feeDelta > 0 {
		if _, err := tx.Exec(
			`UPDATE treasury SET balance = balance + ?, accrued = accrued + ? WHERE id = 1`,
			feeDelta, feeDelta,
		); err != nil {
			return fmt.Errorf("accrue fee: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settle: %w", err)
	}
	return nil
}

func scanEscrowTask(s scanner) (*domain.Task, error) {
	var t domain.Task
	var createdAt int64
	var settledAt sql.NullInt64

	err := s.Scan(&t.ID, &t.Requester, &t.Provider, &t.Amount, &t.Fee, &t.Status,
		&t.RequesterConfirmed, &t.ProviderConfirmed, &t.CreatedSeq, &createdAt, &settledAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}

	t.CreatedAt = time.Unix(createdAt, 0)
	if settledAt.Valid {
		t.SettledAt = time.Unix(settledAt.Int64, 0)
	}
	return &t, nil
}

func scanEscrowTaskRows(rows *sql.Rows) (*domain.Task, error) {
	return scanEscrowTask(rows)
}

// ─── Review Repository ──────────────────────────────────────────────────────

// InsertReview creates a new review request record and returns its assigned ID.
func (d *DB) InsertReview(review domain.Review) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO review_requests (requester, reviewer, bounty, fee, status, created_seq, created_at, settled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(review.Requester), string(review.Reviewer), review.Bounty, review.Fee,
		string(review.Status), review.CreatedSeq, review.CreatedAt.Unix(), nullableUnix(review.SettledAt),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetReview retrieves a review request by ID. Returns (nil, nil) when absent.
func (d *DB) GetReview(id int64) (*domain.Review, error) {
	row := d.db.QueryRow(
		`SELECT id, requester, reviewer, bounty, fee, status, created_seq, created_at, settled_at
		 FROM review_requests WHERE id = ?`, id,
	)
	return scanReview(row)
}

// ListReviews returns review requests, newest first, optionally filtered by status.
func (d *DB) ListReviews(status domain.EscrowStatus, limit int) ([]domain.Review, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = d.db.Query(
			`SELECT id, requester, reviewer, bounty, fee, status, created_seq, created_at, settled_at
			 FROM review_requests ORDER BY created_seq DESC LIMIT ?`, limit)
	} else {
		rows, err = d.db.Query(
			`SELECT id, requester, reviewer, bounty, fee, status, created_seq, created_at, settled_at
			 FROM review_requests WHERE status = ? ORDER BY created_seq DESC LIMIT ?`,
			string(status), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		r, err := scanReviewRows(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *r)
	}
	return reviews, rows.Err()
}

// SettleReview moves a pending review to a terminal status and, in the same
// transaction, accrues feeDelta into the treasury. Same exactly-once guard
// as SettleTask.
func (d *DB) SettleReview(id int64, status domain.EscrowStatus, settledAt time.Time, feeDelta int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.Exec(
		`UPDATE review_requests SET status = ?, settled_at = ? WHERE id = ? AND status = ?`,
		string(status), settledAt.Unix(), id, string(domain.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("settle review: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrReviewAlreadyCompleted
	}

	if feeDelta > 0 {
		if _, err := tx.Exec(
			`UPDATE treasury SET balance = balance + ?, accrued = accrued + ? WHERE id = 1`,
			feeDelta, feeDelta,
		); err != nil {
			return fmt.Errorf("accrue fee: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settle: %w", err)
	}
	return nil
}

func scanReview(s scanner) (*domain.Review, error) {
	var r domain.Review
	var createdAt int64
	var settledAt sql.NullInt64

	err := s.Scan(&r.ID, &r.Requester, &r.Reviewer, &r.Bounty, &r.Fee, &r.Status,
		&r.CreatedSeq, &createdAt, &settledAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan review: %w", err)
	}

	r.CreatedAt = time.Unix(createdAt, 0)
	if settledAt.Valid {
		r.SettledAt = time.Unix(settledAt.Int64, 0)
	}
	return &r, nil
}

func scanReviewRows(rows *sql.Rows) (*domain.Review, error) {
	return scanReview(rows)
}

// ─── Aggregates ─────────────────────────────────────────────────────────────

// PendingGross sums the gross amounts locked in pending escrows of both
// kinds. Used by the conservation health check.
func (d *DB) PendingGross() (int64, error) {
	var tasks, reviews int64
	err := d.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM escrow_tasks WHERE status = ?`,
		string(domain.StatusPending),
	).Scan(&tasks)
	if err != nil {
		return 0, err
	}
	err = d.db.QueryRow(
		`SELECT COALESCE(SUM(bounty), 0) FROM review_requests WHERE status = ?`,
		string(domain.StatusPending),
	).Scan(&reviews)
	if err != nil {
		return 0, err
	}
	return tasks + reviews, nil
}

// CountTasksByStatus returns escrow task counts keyed by status.
func (d *DB) CountTasksByStatus() (map[domain.EscrowStatus]int64, error) {
	rows, err := d.db.Query(`SELECT status, COUNT(*) FROM escrow_tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.EscrowStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.EscrowStatus(status)] = n
	}
	return counts, rows.Err()
}

// CountReviewsByStatus returns review request counts keyed by status.
func (d *DB) CountReviewsByStatus() (map[domain.EscrowStatus]int64, error) {
	rows, err := d.db.Query(`SELECT status, COUNT(*) FROM review_requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.EscrowStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.EscrowStatus(status)] = n
	}
	return counts, rows.Err()
}
