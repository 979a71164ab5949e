// Package fee computes the platform's cut of every settlement.
// Rates are fixed at compile time and applied with integer floor division,
// so payout + fee always reconstructs the gross amount exactly.
package fee

// Platform fee rates in whole percent. Valid range is 0 to 100.
const (
	TaskRatePct   = 5
	ReviewRatePct = 5
	TipRatePct    = 2
)

// Calc returns the platform fee for amount at the given whole-percent rate,
// rounded down. Callers validate amount before calling; rates are constants.
func Calc(amount int64, ratePct int64) int64 {
	return amount * ratePct / 100
}

// Task returns the platform fee withheld from a task escrow payout.
func Task(amount int64) int64 {
	return Calc(amount, TaskRatePct)
}

// Review returns the platform fee withheld from a review bounty payout.
func Review(bounty int64) int64 {
	return Calc(bounty, ReviewRatePct)
}

// Tip returns the platform fee withheld from a tip.
func Tip(amount int64) int64 {
	return Calc(amount, TipRatePct)
}
