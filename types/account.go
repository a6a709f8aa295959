package types

import (
	"github.com/holiman/uint256"
)

// Account is the persisted view of a single address in the ledger.
type Account struct {
	Address Address      `json:"address"`
	Balance *uint256.Int `json:"balance"`
	Staked  *uint256.Int `json:"staked"`
}

// IsEmpty reports whether the account holds neither a spendable nor a staked amount.
func (a *Account) IsEmpty() bool {
	return (a.Balance == nil || a.Balance.IsZero()) && (a.Staked == nil || a.Staked.IsZero())
}

// LedgerMeta holds the ledger scalars.
type LedgerMeta struct {
	Admin       Address      `json:"admin"`
	Paused      bool         `json:"paused"`
	TotalSupply *uint256.Int `json:"total_supply"`
}

// LedgerSnapshot is a full copy of ledger state, accounts ordered by address.
type LedgerSnapshot struct {
	Meta     LedgerMeta `json:"meta"`
	Accounts []*Account `json:"accounts"`
}
