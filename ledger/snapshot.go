package ledger

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"github.com/trueside/fantoken/types"
)

// Snapshot returns a deep copy of the ledger with accounts sorted by address.
func (l *Ledger) Snapshot() *types.LedgerSnapshot {
	addrs := make(map[types.Address]struct{}, len(l.balances)+len(l.staked))
	for addr := range l.balances {
		addrs[addr] = struct{}{}
	}
	for addr := range l.staked {
		addrs[addr] = struct{}{}
	}

	accounts := make([]*types.Account, 0, len(addrs))
	for addr := range addrs {
		accounts = append(accounts, l.account(addr))
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Address < accounts[j].Address
	})

	return &types.LedgerSnapshot{
		Meta:     l.Meta(),
		Accounts: accounts,
	}
}

// Account returns a copy of the balance and staked amount held by addr.
func (l *Ledger) Account(addr types.Address) *types.Account {
	return l.account(addr)
}

func (l *Ledger) account(addr types.Address) *types.Account {
	return &types.Account{
		Address: addr,
		Balance: l.Balance(addr),
		Staked:  l.Staked(addr),
	}
}

// Meta returns a copy of the admin, pause flag and total supply.
func (l *Ledger) Meta() types.LedgerMeta {
	return types.LedgerMeta{
		Admin:       l.admin,
		Paused:      l.paused,
		TotalSupply: l.TotalSupply(),
	}
}

// FromSnapshot rebuilds a ledger from persisted state. The snapshot must satisfy every ledger invariant.
func FromSnapshot(snap *types.LedgerSnapshot) (*Ledger, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}

	l := NewLedger(snap.Meta.Admin)
	l.paused = snap.Meta.Paused
	l.totalSupply = new(uint256.Int).Set(orZero(snap.Meta.TotalSupply))

	seen := make(map[types.Address]struct{}, len(snap.Accounts))
	for _, acc := range snap.Accounts {
		if acc == nil {
			continue
		}
		if _, dup := seen[acc.Address]; dup {
			return nil, fmt.Errorf("duplicate account %s in snapshot", acc.Address)
		}
		seen[acc.Address] = struct{}{}
		setAmount(l.balances, acc.Address, new(uint256.Int).Set(orZero(acc.Balance)))
		setAmount(l.staked, acc.Address, new(uint256.Int).Set(orZero(acc.Staked)))
	}

	if err := l.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return l, nil
}

// Checkpoint captures the scalars and the named accounts so a transition touching only those accounts can be undone.
type Checkpoint struct {
	meta     types.LedgerMeta
	accounts []*types.Account
}

// Checkpoint records the current meta and the accounts in addrs.
func (l *Ledger) Checkpoint(addrs ...types.Address) *Checkpoint {
	cp := &Checkpoint{meta: l.Meta()}
	seen := make(map[types.Address]struct{}, len(addrs))
	for _, addr := range addrs {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		cp.accounts = append(cp.accounts, l.account(addr))
	}
	return cp
}

// Accounts returns the addresses captured by the checkpoint.
func (cp *Checkpoint) Accounts() []types.Address {
	addrs := make([]types.Address, 0, len(cp.accounts))
	for _, acc := range cp.accounts {
		addrs = append(addrs, acc.Address)
	}
	return addrs
}

// Revert restores the state captured by cp. The admin is never rewritten.
func (l *Ledger) Revert(cp *Checkpoint) {
	l.paused = cp.meta.Paused
	l.totalSupply = new(uint256.Int).Set(cp.meta.TotalSupply)
	for _, acc := range cp.accounts {
		setAmount(l.balances, acc.Address, new(uint256.Int).Set(acc.Balance))
		setAmount(l.staked, acc.Address, new(uint256.Int).Set(acc.Staked))
	}
}
