package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Token is an SPL token account with an active delegate. Mint identifies it.
type Token struct {
	Mint            string `json:"mint"`
	Delegate        string `json:"delegate"`
	DelegatedAmount string `json:"delegatedAmount"`
	Owner           string `json:"owner"`
	Account         string `json:"account"`
	Decimals        uint8  `json:"decimals"`
}

// UIDelegatedAmount renders the raw base-unit allowance scaled by the mint decimals.
// The raw string is returned unchanged when it is not a decimal number.
func (t Token) UIDelegatedAmount() string {
	amount, err := decimal.NewFromString(t.DelegatedAmount)
	if err != nil {
		return t.DelegatedAmount
	}
	return amount.Shift(-int32(t.Decimals)).String()
}

// Receipt records a revocation transaction submitted and confirmed by this tool.
type Receipt struct {
	ID          string    `json:"id"`
	Signature   string    `json:"signature"`
	Owner       string    `json:"owner"`
	Mints       []string  `json:"mints"`
	Count       int       `json:"count"`
	SubmittedAt time.Time `json:"submittedAt"`
}
