package domain

import "strings"

// Principal is an opaque, unforgeable account identifier supplied by the
// host environment. The engine never inspects its contents beyond the
// reserved-prefix check below.
type Principal string

// Reserved system accounts. These belong to the engine itself and can never
// appear as a task participant, reviewer, tip recipient, or deposit target.
const (
	// AccountVault holds all escrowed funds plus accrued platform fees
	// until release, refund, or withdrawal resolves them.
	AccountVault Principal = "sys:escrow"

	// AccountExternal is the contra account for inflows from outside the
	// book ledger. Its balance is allowed to go negative.
	AccountExternal Principal = "sys:external"
)

// reservedPrefix marks principals owned by the engine.
const reservedPrefix = "sys:"

// Valid reports whether p can act as a transacting party.
func (p Principal) Valid() bool {
	return p != "" && !p.Reserved()
}

// Reserved reports whether p is one of the engine's own accounts.
func (p Principal) Reserved() bool {
	return strings.HasPrefix(string(p), reservedPrefix)
}
