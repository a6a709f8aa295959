package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
)

// CheckInvariants verifies supply conservation across both sub-ledgers, the
// supply cap, and that the zero address holds nothing.
func (l *Ledger) CheckInvariants() error {
	sum := uint256.NewInt(0)
	for addr, bal := range l.balances {
		if addr.IsZero() {
			return fmt.Errorf("zero address holds balance %s", bal.Dec())
		}
		if _, overflow := sum.AddOverflow(sum, bal); overflow {
			return fmt.Errorf("balances overflow")
		}
	}
	for addr, st := range l.staked {
		if addr.IsZero() {
			return fmt.Errorf("zero address holds stake %s", st.Dec())
		}
		if _, overflow := sum.AddOverflow(sum, st); overflow {
			return fmt.Errorf("staked amounts overflow")
		}
	}

	if !sum.Eq(l.totalSupply) {
		return fmt.Errorf("total supply %s does not match held amount %s", l.totalSupply.Dec(), sum.Dec())
	}
	if l.totalSupply.Gt(maxSupply) {
		return fmt.Errorf("total supply %s exceeds max supply %d", l.totalSupply.Dec(), MaxSupply)
	}
	return nil
}
