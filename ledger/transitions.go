package ledger

import (
	"github.com/holiman/uint256"

	lerrors "github.com/trueside/fantoken/errors"
	"github.com/trueside/fantoken/types"
)

// Every transition checks all of its preconditions before touching state, so a
// returned error always leaves the ledger exactly as it was.

// SetPaused sets the pause flag and returns its new value.
func (l *Ledger) SetPaused(caller types.Address, pause bool) (bool, error) {
	if !l.IsAuthorizedAdmin(caller) {
		return false, lerrors.ErrNotAuthorized
	}
	l.paused = pause
	return pause, nil
}

// Mint creates amount new tokens for recipient. Mint is not gated by the pause flag.
func (l *Ledger) Mint(caller, recipient types.Address, amount *uint256.Int) (bool, error) {
	amount = orZero(amount)
	if !l.IsAuthorizedAdmin(caller) {
		return false, lerrors.ErrNotAuthorized
	}
	if recipient.IsZero() {
		return false, lerrors.ErrZeroAddress
	}
	newSupply, overflow := new(uint256.Int).AddOverflow(l.totalSupply, amount)
	if overflow || newSupply.Gt(maxSupply) {
		return false, lerrors.ErrMaxSupplyReached
	}

	setAmount(l.balances, recipient, mustAdd(amountOf(l.balances, recipient), amount))
	l.totalSupply = newSupply
	return true, nil
}

// Transfer moves amount from caller to recipient.
func (l *Ledger) Transfer(caller, recipient types.Address, amount *uint256.Int) (bool, error) {
	amount = orZero(amount)
	if l.paused {
		return false, lerrors.ErrPaused
	}
	if recipient.IsZero() {
		return false, lerrors.ErrZeroAddress
	}
	senderBal := amountOf(l.balances, caller)
	if senderBal.Lt(amount) {
		return false, lerrors.ErrInsufficientBalance
	}

	// debit before reading the recipient so a self-transfer nets to zero
	setAmount(l.balances, caller, mustSub(senderBal, amount))
	setAmount(l.balances, recipient, mustAdd(amountOf(l.balances, recipient), amount))
	return true, nil
}

// Burn destroys amount of the caller's spendable tokens.
func (l *Ledger) Burn(caller types.Address, amount *uint256.Int) (bool, error) {
	amount = orZero(amount)
	if l.paused {
		return false, lerrors.ErrPaused
	}
	balance := amountOf(l.balances, caller)
	if balance.Lt(amount) {
		return false, lerrors.ErrInsufficientBalance
	}

	setAmount(l.balances, caller, mustSub(balance, amount))
	l.totalSupply = mustSub(l.totalSupply, amount)
	return true, nil
}

// Stake locks amount of the caller's balance. Total supply is unchanged.
func (l *Ledger) Stake(caller types.Address, amount *uint256.Int) (bool, error) {
	amount = orZero(amount)
	if l.paused {
		return false, lerrors.ErrPaused
	}
	balance := amountOf(l.balances, caller)
	if balance.Lt(amount) {
		return false, lerrors.ErrInsufficientBalance
	}

	setAmount(l.balances, caller, mustSub(balance, amount))
	setAmount(l.staked, caller, mustAdd(amountOf(l.staked, caller), amount))
	return true, nil
}

// Unstake returns amount of the caller's staked tokens to its balance.
func (l *Ledger) Unstake(caller types.Address, amount *uint256.Int) (bool, error) {
	amount = orZero(amount)
	if l.paused {
		return false, lerrors.ErrPaused
	}
	staked := amountOf(l.staked, caller)
	if staked.Lt(amount) {
		return false, lerrors.ErrInsufficientStake
	}

	setAmount(l.staked, caller, mustSub(staked, amount))
	setAmount(l.balances, caller, mustAdd(amountOf(l.balances, caller), amount))
	return true, nil
}
