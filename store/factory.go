package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/trueside/fantoken/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// BoltStoreType keeps the ledger in a single bbolt file
	BoltStoreType StoreType = "bolt"

	// RedisStoreType uses the Redis implementation
	RedisStoreType StoreType = "redis"

	// MemoryStoreType keeps everything in memory; state is lost on exit
	MemoryStoreType StoreType = "memory"
)

const boltFileName = "ledger.bolt"

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	// Type specifies which store implementation to use
	Type StoreType `json:"type" yaml:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `json:"directory" yaml:"directory"`

	// Address and DB select the Redis server (redis only)
	Address string `json:"address" yaml:"address"`
	DB      int    `json:"db" yaml:"db"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	if sc.Type == "" {
		return fmt.Errorf("store type cannot be empty")
	}

	switch sc.Type {
	case LevelDBStoreType, BoltStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty for %s store", sc.Type)
		}
		return nil
	case RedisStoreType:
		if sc.Address == "" {
			return fmt.Errorf("address cannot be empty for redis store")
		}
		return nil
	case MemoryStoreType:
		return nil
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// StoreFactory take responsibility to create store instances
type StoreFactory struct{}

// NewStoreFactory creates a new store factory
func NewStoreFactory() *StoreFactory {
	return &StoreFactory{}
}

// CreateStoreWithProvider creates the ledger store on top of the configured provider
func (sf *StoreFactory) CreateStoreWithProvider(config *StoreConfig) (LedgerStore, error) {
	provider, err := sf.CreateProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	ledgerStore, err := NewGenericLedgerStore(provider)
	if err != nil {
		_ = provider.Close()
		return nil, fmt.Errorf("failed to create ledger store: %w", err)
	}
	return ledgerStore, nil
}

// CreateProvider creates a database provider based on the configuration
func (sf *StoreFactory) CreateProvider(config *StoreConfig) (db.IterableProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Type {
	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)

	case BoltStoreType:
		if err := os.MkdirAll(config.Directory, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		return db.NewBoltProvider(filepath.Join(config.Directory, boltFileName))

	case RedisStoreType:
		return db.NewRedisProvider(config.Address, config.DB)

	case MemoryStoreType:
		return db.NewMemLevelDBProvider()

	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// Global factory instance
var globalFactory = NewStoreFactory()

// CreateStore creates a ledger store using the global factory
func CreateStore(config *StoreConfig) (LedgerStore, error) {
	return globalFactory.CreateStoreWithProvider(config)
}
