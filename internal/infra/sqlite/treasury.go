package sqlite

import (
	"github.com/holdfast-io/holdfast/internal/domain"
)

// ─── Treasury ───────────────────────────────────────────────────────────────

// Treasury returns the platform fee accumulator. The owner principal is not
// stored here; the service layer fills it from configuration.
func (d *DB) Treasury() (*domain.Treasury, error) {
	var t domain.Treasury
	err := d.db.QueryRow(
		`SELECT balance, accrued, withdrawn FROM treasury WHERE id = 1`,
	).Scan(&t.Balance, &t.LifetimeAccrued, &t.LifetimeWithdrawn)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AccrueTreasury adds a freshly earned fee to the balance and the lifetime
// accrual. Used for stateless fees (tips); escrow settlements accrue inside
// SettleTask/SettleReview instead.
func (d *DB) AccrueTreasury(amount int64) error {
	_, err := d.db.Exec(
		`UPDATE treasury SET balance = balance + ?, accrued = accrued + ? WHERE id = 1`,
		amount, amount,
	)
	return err
}

// WithdrawTreasury deducts amount from the treasury balance. The balance
// guard in the WHERE clause keeps the row from ever going negative.
func (d *DB) WithdrawTreasury(amount int64) error {
	result, err := d.db.Exec(
		`UPDATE treasury SET balance = balance - ?, withdrawn = withdrawn + ?
		 WHERE id = 1 AND balance >= ?`,
		amount, amount, amount,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

// RestoreTreasury reverses a withdrawal claim whose payout transfer failed.
// Balance comes back and the lifetime withdrawn column is corrected;
// lifetime accrued is untouched.
func (d *DB) RestoreTreasury(amount int64) error {
	_, err := d.db.Exec(
		`UPDATE treasury SET balance = balance + ?, withdrawn = withdrawn - ? WHERE id = 1`,
		amount, amount,
	)
	return err
}
