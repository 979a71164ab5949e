package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/holdfast-io/holdfast/internal/domain"
)

// ─── Book Ledger ────────────────────────────────────────────────────────────

// AppendLedgerEntries writes a batch of prepared ledger rows in one
// transaction. Callers compute running balances before calling; the batch
// either lands whole or not at all.
func (d *DB) AppendLedgerEntries(entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, e := range entries {
		if _, err := tx.Exec(
			`INSERT INTO ledger_entries (ref, kind, entry_type, account, amount, balance, memo, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Ref, string(e.Kind), string(e.Type), string(e.Account),
			e.Amount, e.Balance, nullStr(e.Memo), e.CreatedAt.Unix(),
		); err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger entries: %w", err)
	}
	return nil
}

// LedgerBalance returns the current balance for an account. Accounts with
// no entries report zero.
func (d *DB) LedgerBalance(account domain.Principal) (int64, error) {
	var balance sql.NullInt64
	err := d.db.QueryRow(
		`SELECT balance FROM ledger_entries WHERE account = ? ORDER BY id DESC LIMIT 1`,
		string(account),
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.Int64, nil
}

// LedgerEntries returns recent ledger entries for an account, newest first.
// A limit <= 0 returns all entries.
func (d *DB) LedgerEntries(account domain.Principal, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats negative LIMIT as unbounded
	}
	rows, err := d.db.Query(
		`SELECT id, ref, kind, entry_type, account, amount, balance, memo, created_at
		 FROM ledger_entries WHERE account = ? ORDER BY id DESC LIMIT ?`,
		string(account), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var memo sql.NullString
		var createdAt int64
		err := rows.Scan(&e.ID, &e.Ref, &e.Kind, &e.Type, &e.Account,
			&e.Amount, &e.Balance, &memo, &createdAt)
		if err != nil {
			return nil, err
		}
		if memo.Valid {
			e.Memo = memo.String
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
