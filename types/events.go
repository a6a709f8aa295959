package types

import (
	"time"

	"github.com/holiman/uint256"
)

// LedgerEvent describes one ledger operation that was applied and persisted.
type LedgerEvent struct {
	OpID      string
	Operation string
	Caller    Address
	Recipient Address
	Amount    *uint256.Int
	Paused    bool
	Timestamp time.Time
}

// Addresses returns the accounts the event touched, caller first.
func (e *LedgerEvent) Addresses() []Address {
	if e.Recipient == "" || e.Recipient == e.Caller {
		return []Address{e.Caller}
	}
	return []Address{e.Caller, e.Recipient}
}
