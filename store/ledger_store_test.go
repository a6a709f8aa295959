package store

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trueside/fantoken/db"
	"github.com/trueside/fantoken/types"
)

const testAdmin types.Address = "ST1ADMIN00000000000000000000000000"

func newMemStore(t *testing.T) (*GenericLedgerStore, db.IterableProvider) {
	t.Helper()
	provider, err := db.NewMemLevelDBProvider()
	require.NoError(t, err)
	ls, err := NewGenericLedgerStore(provider)
	require.NoError(t, err)
	t.Cleanup(ls.MustClose)
	return ls, provider
}

func sampleSnapshot() *types.LedgerSnapshot {
	return &types.LedgerSnapshot{
		Meta: types.LedgerMeta{
			Admin:       testAdmin,
			Paused:      true,
			TotalSupply: uint256.NewInt(1500),
		},
		Accounts: []*types.Account{
			{Address: "ST2ALICE", Balance: uint256.NewInt(700), Staked: uint256.NewInt(300)},
			{Address: "ST3BOB", Balance: uint256.NewInt(500), Staked: new(uint256.Int)},
		},
	}
}

func TestNewGenericLedgerStoreRejectsNilProvider(t *testing.T) {
	_, err := NewGenericLedgerStore(nil)
	assert.Error(t, err)
}

func TestLoadEmptyStore(t *testing.T) {
	ls, _ := newMemStore(t)

	ok, err := ls.Initialized()
	require.NoError(t, err)
	assert.False(t, ok)

	snap, err := ls.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSaveAndLoad(t *testing.T) {
	ls, _ := newMemStore(t)
	want := sampleSnapshot()

	require.NoError(t, ls.Save(want))

	ok, err := ls.Initialized()
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := ls.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveReplacesStaleAccounts(t *testing.T) {
	ls, _ := newMemStore(t)
	require.NoError(t, ls.Save(sampleSnapshot()))

	next := &types.LedgerSnapshot{
		Meta: types.LedgerMeta{Admin: testAdmin, TotalSupply: uint256.NewInt(10)},
		Accounts: []*types.Account{
			{Address: "ST4CAROL", Balance: uint256.NewInt(10), Staked: new(uint256.Int)},
		},
	}
	require.NoError(t, ls.Save(next))

	got, err := ls.Load()
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestStoreChanges(t *testing.T) {
	ls, provider := newMemStore(t)
	require.NoError(t, ls.Save(sampleSnapshot()))

	meta := types.LedgerMeta{Admin: testAdmin, TotalSupply: uint256.NewInt(1000)}
	err := ls.StoreChanges(meta, []*types.Account{
		{Address: "ST2ALICE", Balance: uint256.NewInt(500), Staked: uint256.NewInt(0)},
		{Address: "ST3BOB", Balance: new(uint256.Int), Staked: new(uint256.Int)},
	})
	require.NoError(t, err)

	// emptied accounts are removed from the store
	has, err := provider.Has([]byte(PrefixAccount + "ST3BOB"))
	require.NoError(t, err)
	assert.False(t, has)

	got, err := ls.Load()
	require.NoError(t, err)
	assert.False(t, got.Meta.Paused)
	assert.Equal(t, uint256.NewInt(1000), got.Meta.TotalSupply)
	require.Len(t, got.Accounts, 1)
	assert.Equal(t, types.Address("ST2ALICE"), got.Accounts[0].Address)
	assert.Equal(t, uint256.NewInt(500), got.Accounts[0].Balance)
	assert.True(t, got.Accounts[0].Staked.IsZero())
}

func TestLoadRejectsCorruptRecords(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad meta json", MetaKeyLedger, "{not json"},
		{"bad supply", MetaKeyLedger, `{"admin":"x","paused":false,"total_supply":"-1"}`},
		{"bad balance", PrefixAccount + "ST2ALICE", `{"address":"ST2ALICE","balance":"abc","staked":"0"}`},
		{"mismatched key", PrefixAccount + "ST2ALICE", `{"address":"ST3BOB","balance":"1","staked":"0"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls, provider := newMemStore(t)
			require.NoError(t, ls.Save(sampleSnapshot()))
			require.NoError(t, provider.Put([]byte(tt.key), []byte(tt.value)))

			_, err := ls.Load()
			assert.Error(t, err)
		})
	}
}
