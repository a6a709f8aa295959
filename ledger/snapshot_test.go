package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trueside/fantoken/types"
)

func TestSnapshotRoundTrip(t *testing.T) {
	l := newFundedLedger(t, userB, 700)
	_, err := l.Mint(admin, userA, amt(300))
	require.NoError(t, err)
	_, err = l.Stake(userB, amt(200))
	require.NoError(t, err)
	_, err = l.SetPaused(admin, true)
	require.NoError(t, err)

	snap := l.Snapshot()
	require.Len(t, snap.Accounts, 2)
	assert.Equal(t, userA, snap.Accounts[0].Address)
	assert.Equal(t, userB, snap.Accounts[1].Address)
	assert.Equal(t, amt(500), snap.Accounts[1].Balance)
	assert.Equal(t, amt(200), snap.Accounts[1].Staked)
	assert.True(t, snap.Meta.Paused)

	restored, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, snap, restored.Snapshot())
	assert.Equal(t, admin, restored.Admin())

	// the snapshot is detached from the ledger it came from
	snap.Accounts[0].Balance.SetUint64(1)
	assert.Equal(t, amt(300), l.Balance(userA))
}

func TestFromSnapshotRejectsBrokenState(t *testing.T) {
	tests := []struct {
		name string
		snap *types.LedgerSnapshot
	}{
		{
			name: "supply mismatch",
			snap: &types.LedgerSnapshot{
				Meta:     types.LedgerMeta{Admin: admin, TotalSupply: amt(10)},
				Accounts: []*types.Account{{Address: userA, Balance: amt(9)}},
			},
		},
		{
			name: "above max supply",
			snap: &types.LedgerSnapshot{
				Meta:     types.LedgerMeta{Admin: admin, TotalSupply: amt(MaxSupply + 1)},
				Accounts: []*types.Account{{Address: userA, Balance: amt(MaxSupply + 1)}},
			},
		},
		{
			name: "zero address holds tokens",
			snap: &types.LedgerSnapshot{
				Meta:     types.LedgerMeta{Admin: admin, TotalSupply: amt(5)},
				Accounts: []*types.Account{{Address: types.ZeroAddress, Staked: amt(5)}},
			},
		},
		{
			name: "duplicate account",
			snap: &types.LedgerSnapshot{
				Meta: types.LedgerMeta{Admin: admin, TotalSupply: amt(2)},
				Accounts: []*types.Account{
					{Address: userA, Balance: amt(1)},
					{Address: userA, Balance: amt(1)},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSnapshot(tt.snap)
			assert.Error(t, err)
		})
	}

	_, err := FromSnapshot(nil)
	assert.Error(t, err)
}

func TestCheckpointRevert(t *testing.T) {
	l := newFundedLedger(t, userA, 1000)
	_, err := l.Stake(userA, amt(100))
	require.NoError(t, err)
	before := l.Snapshot()

	cp := l.Checkpoint(userA, userB, userA)
	assert.Equal(t, []types.Address{userA, userB}, cp.Accounts())

	_, err = l.Transfer(userA, userB, amt(250))
	require.NoError(t, err)
	_, err = l.Burn(userB, amt(50))
	require.NoError(t, err)
	_, err = l.Unstake(userA, amt(100))
	require.NoError(t, err)
	_, err = l.SetPaused(admin, true)
	require.NoError(t, err)

	l.Revert(cp)
	assert.Equal(t, before, l.Snapshot())
	assert.NoError(t, l.CheckInvariants())
}

func TestCheckInvariantsDetectsDrift(t *testing.T) {
	l := newFundedLedger(t, userA, 10)
	l.totalSupply = uint256.NewInt(11)
	assert.Error(t, l.CheckInvariants())
}
