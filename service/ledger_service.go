package service

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	lerrors "github.com/trueside/fantoken/errors"
	"github.com/trueside/fantoken/ledger"
	"github.com/trueside/fantoken/logx"
	"github.com/trueside/fantoken/monitoring"
	"github.com/trueside/fantoken/store"
	"github.com/trueside/fantoken/types"
	"github.com/trueside/fantoken/utils"
)

const (
	OpSetPaused = "set_paused"
	OpMint      = "mint"
	OpTransfer  = "transfer"
	OpBurn      = "burn"
	OpStake     = "stake"
	OpUnstake   = "unstake"
)

const resultStoreError = "store_error"

// Result describes the outcome of one ledger operation. Code is zero unless the ledger rejected it.
type Result struct {
	OpID      string                  `json:"op_id"`
	Operation string                  `json:"operation"`
	Caller    types.Address           `json:"caller"`
	Value     bool                    `json:"value"`
	Code      lerrors.LedgerErrorCode `json:"code,omitempty"`
}

// Status is the contract-level view served to readers.
type Status struct {
	Admin       types.Address `json:"admin"`
	Paused      bool          `json:"paused"`
	TotalSupply string        `json:"total_supply"`
	MaxSupply   string        `json:"max_supply"`
}

// LedgerService owns the ledger instance and serializes every call against it.
// Each accepted mutation is persisted before the call returns; when the write
// fails the in-memory change is reverted.
type LedgerService struct {
	mu     sync.RWMutex
	ledger *ledger.Ledger
	store  store.LedgerStore
	events *types.EventBus
}

// InitLedger deploys a fresh ledger administered by admin and saves it.
func InitLedger(ls store.LedgerStore, admin types.Address) (*LedgerService, error) {
	if admin == "" {
		return nil, fmt.Errorf("admin cannot be empty")
	}
	initialized, err := ls.Initialized()
	if err != nil {
		return nil, fmt.Errorf("failed to check store: %w", err)
	}
	if initialized {
		return nil, fmt.Errorf("ledger already initialized")
	}

	ld := ledger.NewLedger(admin)
	if err := ls.Save(ld.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to save new ledger: %w", err)
	}
	logx.Info("LEDGER_SERVICE", "Initialized ledger with admin "+admin.String())

	svc := &LedgerService{ledger: ld, store: ls}
	svc.publishState()
	return svc, nil
}

// NewLedgerService loads a previously initialized ledger from ls.
func NewLedgerService(ls store.LedgerStore) (*LedgerService, error) {
	snap, err := ls.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("ledger not initialized")
	}

	ld, err := ledger.FromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	logx.Info("LEDGER_SERVICE", fmt.Sprintf("Loaded ledger: admin=%s accounts=%d supply=%s paused=%t",
		snap.Meta.Admin, len(snap.Accounts), utils.Uint256ToString(snap.Meta.TotalSupply), snap.Meta.Paused))

	svc := &LedgerService{ledger: ld, store: ls}
	svc.publishState()
	return svc, nil
}

// SetEventBus makes every applied operation publish a LedgerEvent on eb.
func (s *LedgerService) SetEventBus(eb *types.EventBus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = eb
}

func (s *LedgerService) SetPaused(caller types.Address, pause bool) (*Result, error) {
	ev := &types.LedgerEvent{Operation: OpSetPaused, Caller: caller, Paused: pause}
	return s.apply(ev, nil, func(l *ledger.Ledger) (bool, error) {
		return l.SetPaused(caller, pause)
	})
}

func (s *LedgerService) Mint(caller, recipient types.Address, amount *uint256.Int) (*Result, error) {
	ev := &types.LedgerEvent{Operation: OpMint, Caller: caller, Recipient: recipient, Amount: amount}
	return s.apply(ev, []types.Address{recipient}, func(l *ledger.Ledger) (bool, error) {
		return l.Mint(caller, recipient, amount)
	})
}

func (s *LedgerService) Transfer(caller, recipient types.Address, amount *uint256.Int) (*Result, error) {
	ev := &types.LedgerEvent{Operation: OpTransfer, Caller: caller, Recipient: recipient, Amount: amount}
	return s.apply(ev, []types.Address{caller, recipient}, func(l *ledger.Ledger) (bool, error) {
		return l.Transfer(caller, recipient, amount)
	})
}

func (s *LedgerService) Burn(caller types.Address, amount *uint256.Int) (*Result, error) {
	ev := &types.LedgerEvent{Operation: OpBurn, Caller: caller, Amount: amount}
	return s.apply(ev, []types.Address{caller}, func(l *ledger.Ledger) (bool, error) {
		return l.Burn(caller, amount)
	})
}

func (s *LedgerService) Stake(caller types.Address, amount *uint256.Int) (*Result, error) {
	ev := &types.LedgerEvent{Operation: OpStake, Caller: caller, Amount: amount}
	return s.apply(ev, []types.Address{caller}, func(l *ledger.Ledger) (bool, error) {
		return l.Stake(caller, amount)
	})
}

func (s *LedgerService) Unstake(caller types.Address, amount *uint256.Int) (*Result, error) {
	ev := &types.LedgerEvent{Operation: OpUnstake, Caller: caller, Amount: amount}
	return s.apply(ev, []types.Address{caller}, func(l *ledger.Ledger) (bool, error) {
		return l.Unstake(caller, amount)
	})
}

// apply runs one transition under the write lock. touched must list every
// account the transition can modify.
func (s *LedgerService) apply(ev *types.LedgerEvent, touched []types.Address, fn func(l *ledger.Ledger) (bool, error)) (*Result, error) {
	start := time.Now()
	op, caller := ev.Operation, ev.Caller
	res := &Result{
		OpID:      uuid.NewString(),
		Operation: op,
		Caller:    caller,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.ledger.Checkpoint(touched...)
	value, err := fn(s.ledger)
	if err != nil {
		code, ok := lerrors.CodeOf(err)
		if !ok {
			logx.Error("LEDGER_SERVICE", fmt.Sprintf("op=%s id=%s caller=%s unexpected error: %v", op, res.OpID, caller, err))
			monitoring.RecordOperation(op, "unknown", time.Since(start))
			return res, err
		}
		res.Code = code
		logx.Warn("LEDGER_SERVICE", fmt.Sprintf("op=%s id=%s caller=%s rejected code=%d", op, res.OpID, caller, code))
		monitoring.RecordOperation(op, strconv.FormatUint(uint64(code), 10), time.Since(start))
		return res, err
	}

	accounts := make([]*types.Account, 0, len(touched))
	for _, addr := range cp.Accounts() {
		accounts = append(accounts, s.ledger.Account(addr))
	}
	if err := s.store.StoreChanges(s.ledger.Meta(), accounts); err != nil {
		s.ledger.Revert(cp)
		logx.Error("LEDGER_SERVICE", fmt.Sprintf("op=%s id=%s caller=%s persist failed, reverted: %v", op, res.OpID, caller, err))
		monitoring.RecordOperation(op, resultStoreError, time.Since(start))
		return res, fmt.Errorf("failed to persist %s: %w", op, err)
	}

	res.Value = value
	logx.Info("LEDGER_SERVICE", fmt.Sprintf("op=%s id=%s caller=%s ok supply=%s", op, res.OpID, caller, utils.Uint256ToString(s.ledger.TotalSupply())))
	monitoring.RecordOperation(op, monitoring.OperationResultOK, time.Since(start))
	s.publishState()

	if s.events != nil {
		ev.OpID = res.OpID
		ev.Timestamp = start
		if ev.Amount != nil {
			ev.Amount = new(uint256.Int).Set(ev.Amount)
		}
		s.events.Publish(ev)
	}
	return res, nil
}

func (s *LedgerService) publishState() {
	monitoring.SetTotalSupply(s.ledger.TotalSupply())
	monitoring.SetPaused(s.ledger.IsPaused())
}

func (s *LedgerService) Balance(addr types.Address) *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Balance(addr)
}

func (s *LedgerService) Staked(addr types.Address) *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Staked(addr)
}

func (s *LedgerService) Account(addr types.Address) *types.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Account(addr)
}

func (s *LedgerService) TotalSupply() *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.TotalSupply()
}

func (s *LedgerService) IsPaused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.IsPaused()
}

func (s *LedgerService) Admin() types.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Admin()
}

func (s *LedgerService) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta := s.ledger.Meta()
	return Status{
		Admin:       meta.Admin,
		Paused:      meta.Paused,
		TotalSupply: utils.Uint256ToString(meta.TotalSupply),
		MaxSupply:   strconv.FormatUint(ledger.MaxSupply, 10),
	}
}

// Snapshot returns a detached copy of the whole ledger.
func (s *LedgerService) Snapshot() *types.LedgerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Snapshot()
}

// Close releases the underlying store.
func (s *LedgerService) Close() {
	s.store.MustClose()
}
