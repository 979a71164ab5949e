package domain

// Treasury is the platform's fee accumulator. Balance is the withdrawable
// amount; the lifetime columns only ever grow.
type Treasury struct {
	Owner             Principal `json:"owner"`
	Balance           int64     `json:"balance"`
	LifetimeAccrued   int64     `json:"lifetime_accrued"`
	LifetimeWithdrawn int64     `json:"lifetime_withdrawn"`
}
