package config

import (
	"github.com/trueside/fantoken/store"
	"github.com/trueside/fantoken/types"
)

// LedgerConfig names the principal that deploys the contract
type LedgerConfig struct {
	Admin string `yaml:"admin"`
}

// ContractConfig holds the configuration from fantoken.yml
type ContractConfig struct {
	Ledger LedgerConfig      `yaml:"ledger"`
	Store  store.StoreConfig `yaml:"store"`
}

// ConfigFile is the top-level structure for fantoken.yml
type ConfigFile struct {
	Config ContractConfig `yaml:"config"`
}

func (c *ContractConfig) AdminAddress() types.Address {
	return types.Address(c.Ledger.Admin)
}

type APIConfig struct {
	ListenAddr string `ini:"listen_addr"`
}

type MetricsConfig struct {
	Enabled    bool   `ini:"enabled"`
	ListenAddr string `ini:"listen_addr"`
}

// OpsConfig controls the loopback listener that accepts mutations while serving
type OpsConfig struct {
	Enabled    bool   `ini:"enabled"`
	ListenAddr string `ini:"listen_addr"`
}

// ServerConfig holds the serve command settings from config.ini
type ServerConfig struct {
	API     APIConfig
	Ops     OpsConfig
	Metrics MetricsConfig
}
