package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/trueside/fantoken/db"
	"github.com/trueside/fantoken/jsonx"
	"github.com/trueside/fantoken/logx"
	"github.com/trueside/fantoken/types"
	"github.com/trueside/fantoken/utils"
)

// LedgerStore persists ledger state between process runs.
type LedgerStore interface {
	Initialized() (bool, error)
	Load() (*types.LedgerSnapshot, error)
	Save(snapshot *types.LedgerSnapshot) error
	StoreChanges(meta types.LedgerMeta, accounts []*types.Account) error
	MustClose()
}

type metaRecord struct {
	Admin       string `json:"admin"`
	Paused      bool   `json:"paused"`
	TotalSupply string `json:"total_supply"`
}

type accountRecord struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Staked  string `json:"staked"`
}

type GenericLedgerStore struct {
	mu         sync.RWMutex
	dbProvider db.IterableProvider
}

func NewGenericLedgerStore(dbProvider db.IterableProvider) (*GenericLedgerStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericLedgerStore{
		dbProvider: dbProvider,
	}, nil
}

// Initialized reports whether a ledger has been saved to this store
func (ls *GenericLedgerStore) Initialized() (bool, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	return ls.dbProvider.Has([]byte(MetaKeyLedger))
}

// Load reads the full ledger. Returns both nil if nothing was saved yet.
func (ls *GenericLedgerStore) Load() (*types.LedgerSnapshot, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	data, err := ls.dbProvider.Get([]byte(MetaKeyLedger))
	if err != nil {
		return nil, fmt.Errorf("could not get ledger meta from db: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var mr metaRecord
	if err := jsonx.Unmarshal(data, &mr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger meta: %w", err)
	}
	supply, err := utils.Uint256FromString(mr.TotalSupply)
	if err != nil {
		return nil, fmt.Errorf("corrupt total supply: %w", err)
	}

	snap := &types.LedgerSnapshot{
		Meta: types.LedgerMeta{
			Admin:       types.Address(mr.Admin),
			Paused:      mr.Paused,
			TotalSupply: supply,
		},
	}

	var decodeErr error
	err = ls.dbProvider.IteratePrefix([]byte(PrefixAccount), func(key, value []byte) bool {
		acc, err := decodeAccount(key, value)
		if err != nil {
			decodeErr = err
			return false
		}
		snap.Accounts = append(snap.Accounts, acc)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	logx.Debug("LEDGER_STORE", fmt.Sprintf("Loaded ledger with %d accounts", len(snap.Accounts)))
	return snap, nil
}

// Save replaces everything in the store with snapshot
func (ls *GenericLedgerStore) Save(snapshot *types.LedgerSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	batch := ls.dbProvider.Batch()
	defer batch.Close()

	keep := make(map[string]struct{}, len(snapshot.Accounts))
	for _, acc := range snapshot.Accounts {
		keep[ls.getAccountKey(acc.Address)] = struct{}{}
	}
	err := ls.dbProvider.IteratePrefix([]byte(PrefixAccount), func(key, _ []byte) bool {
		if _, ok := keep[string(key)]; !ok {
			batch.Delete(append([]byte{}, key...))
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to scan existing accounts: %w", err)
	}

	if err := ls.putAll(batch, snapshot.Meta, snapshot.Accounts); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to write ledger snapshot to database: %w", err)
	}
	return nil
}

// StoreChanges writes meta and the given accounts in one batch. Empty accounts are deleted.
func (ls *GenericLedgerStore) StoreChanges(meta types.LedgerMeta, accounts []*types.Account) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	batch := ls.dbProvider.Batch()
	defer batch.Close()

	if err := ls.putAll(batch, meta, accounts); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to write ledger changes to database: %w", err)
	}
	return nil
}

func (ls *GenericLedgerStore) putAll(batch db.DatabaseBatch, meta types.LedgerMeta, accounts []*types.Account) error {
	metaData, err := jsonx.Marshal(metaRecord{
		Admin:       meta.Admin.String(),
		Paused:      meta.Paused,
		TotalSupply: utils.Uint256ToString(meta.TotalSupply),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal ledger meta: %w", err)
	}
	batch.Put([]byte(MetaKeyLedger), metaData)

	for _, acc := range accounts {
		key := []byte(ls.getAccountKey(acc.Address))
		if acc.IsEmpty() {
			batch.Delete(key)
			continue
		}
		accData, err := jsonx.Marshal(accountRecord{
			Address: acc.Address.String(),
			Balance: utils.Uint256ToString(acc.Balance),
			Staked:  utils.Uint256ToString(acc.Staked),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal account %s: %w", acc.Address, err)
		}
		batch.Put(key, accData)
	}
	return nil
}

func decodeAccount(key, value []byte) (*types.Account, error) {
	var ar accountRecord
	if err := jsonx.Unmarshal(value, &ar); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account %s: %w", key, err)
	}
	if want := strings.TrimPrefix(string(key), PrefixAccount); ar.Address != want {
		return nil, fmt.Errorf("account record %s stored under key %s", ar.Address, key)
	}
	balance, err := utils.Uint256FromString(ar.Balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for %s: %w", ar.Address, err)
	}
	staked, err := utils.Uint256FromString(ar.Staked)
	if err != nil {
		return nil, fmt.Errorf("corrupt staked amount for %s: %w", ar.Address, err)
	}
	return &types.Account{
		Address: types.Address(ar.Address),
		Balance: balance,
		Staked:  staked,
	}, nil
}

func (ls *GenericLedgerStore) MustClose() {
	err := ls.dbProvider.Close()
	if err != nil {
		logx.Error("LEDGER_STORE", "Failed to close db provider: "+err.Error())
	}
}

func (ls *GenericLedgerStore) getAccountKey(addr types.Address) string {
	return PrefixAccount + addr.String()
}
