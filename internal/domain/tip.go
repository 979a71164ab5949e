package domain

// TipReceipt summarizes a settled tip. Tips are stateless: the receipt is
// the only record beyond the ledger entries themselves.
type TipReceipt struct {
	Ref    string    `json:"ref"`
	From   Principal `json:"from"`
	To     Principal `json:"to"`
	Amount int64     `json:"amount"`
	Fee    int64     `json:"fee"`
	Net    int64     `json:"net"`
}
