// Package ledger implements the fan token state machine: balances, the staked
// sub-ledger, total supply and the admin-controlled pause flag.
//
// A Ledger is not safe for concurrent use. The host serializes calls against a
// single instance (see service.LedgerService).
package ledger

import (
	"github.com/holiman/uint256"

	"github.com/trueside/fantoken/types"
)

// MaxSupply caps the total number of tokens in circulation.
const MaxSupply = 100_000_000

var maxSupply = uint256.NewInt(MaxSupply)

// Ledger holds the balances, staked amounts and contract-level state of one token.
type Ledger struct {
	admin       types.Address
	paused      bool
	totalSupply *uint256.Int
	balances    map[types.Address]*uint256.Int
	staked      map[types.Address]*uint256.Int
}

// NewLedger creates an unpaused, empty ledger administered by admin.
func NewLedger(admin types.Address) *Ledger {
	return &Ledger{
		admin:       admin,
		totalSupply: uint256.NewInt(0),
		balances:    make(map[types.Address]*uint256.Int),
		staked:      make(map[types.Address]*uint256.Int),
	}
}

// IsAuthorizedAdmin reports whether caller may mint and toggle the pause flag.
func (l *Ledger) IsAuthorizedAdmin(caller types.Address) bool {
	return caller == l.admin
}

// Admin returns the identity fixed at construction.
func (l *Ledger) Admin() types.Address {
	return l.admin
}

// IsPaused reports whether transfer, burn, stake and unstake are currently rejected.
func (l *Ledger) IsPaused() bool {
	return l.paused
}

// TotalSupply returns a copy of the circulating supply.
func (l *Ledger) TotalSupply() *uint256.Int {
	return new(uint256.Int).Set(l.totalSupply)
}

// Balance returns a copy of the spendable balance of addr, zero when unknown.
func (l *Ledger) Balance(addr types.Address) *uint256.Int {
	return new(uint256.Int).Set(amountOf(l.balances, addr))
}

// Staked returns a copy of the staked amount of addr, zero when unknown.
func (l *Ledger) Staked(addr types.Address) *uint256.Int {
	return new(uint256.Int).Set(amountOf(l.staked, addr))
}

// amountOf makes the default-to-zero lookup explicit. The result must not be mutated.
func amountOf(m map[types.Address]*uint256.Int, addr types.Address) *uint256.Int {
	if v, ok := m[addr]; ok && v != nil {
		return v
	}
	return zero
}

var zero = uint256.NewInt(0)

// setAmount stores v under addr, dropping the entry when v is zero so absent and zero stay indistinguishable.
func setAmount(m map[types.Address]*uint256.Int, addr types.Address, v *uint256.Int) {
	if v.IsZero() {
		delete(m, addr)
		return
	}
	m[addr] = v
}

func orZero(amount *uint256.Int) *uint256.Int {
	if amount == nil {
		return zero
	}
	return amount
}

// mustAdd and mustSub guard arithmetic whose bounds were already checked by a precondition.
// A wrap here means a precondition is missing.
func mustAdd(a, b *uint256.Int) *uint256.Int {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		panic("ledger: amount overflow past precondition check")
	}
	return sum
}

func mustSub(a, b *uint256.Int) *uint256.Int {
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		panic("ledger: amount underflow past precondition check")
	}
	return diff
}
