package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/trueside/fantoken/logx"
)

// LoadContractConfig reads and validates the fantoken.yml file
func LoadContractConfig(path string) (*ContractConfig, error) {
	logx.Debug("CONFIG", "LoadContractConfig called with path: "+path)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}

	cfg := &cfgFile.Config
	cfg.Ledger.Admin = strings.TrimSpace(cfg.Ledger.Admin)
	if cfg.Store.Type == "" {
		cfg.Store.Type = DefaultStoreType
	}
	if cfg.Store.Directory == "" {
		cfg.Store.Directory = DefaultStoreDirectory
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logx.Info("CONFIG", fmt.Sprintf("Loaded contract config: admin=%s store=%s", cfg.Ledger.Admin, cfg.Store.Type))
	return cfg, nil
}

func (c *ContractConfig) Validate() error {
	if c.Ledger.Admin == "" {
		return fmt.Errorf("ledger.admin cannot be empty")
	}
	if c.AdminAddress().IsZero() {
		return fmt.Errorf("ledger.admin cannot be the zero address")
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("invalid store config: %w", err)
	}
	return nil
}

// LoadServerConfig reads the [api], [ops] and [metrics] sections from an .ini file. Missing or empty keys keep their defaults.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	serverCfg := DefaultServerConfig()
	if err := cfg.Section("api").StrictMapTo(&serverCfg.API); err != nil {
		return nil, err
	}
	if err := cfg.Section("ops").StrictMapTo(&serverCfg.Ops); err != nil {
		return nil, err
	}
	if err := cfg.Section("metrics").StrictMapTo(&serverCfg.Metrics); err != nil {
		return nil, err
	}

	if serverCfg.API.ListenAddr == "" {
		return nil, fmt.Errorf("api listen_addr cannot be empty")
	}
	if serverCfg.Ops.Enabled {
		if err := validateLoopbackAddr(serverCfg.Ops.ListenAddr); err != nil {
			return nil, fmt.Errorf("invalid ops listen_addr: %w", err)
		}
	}
	if serverCfg.Metrics.Enabled && serverCfg.Metrics.ListenAddr == "" {
		return nil, fmt.Errorf("metrics listen_addr cannot be empty when metrics are enabled")
	}
	return serverCfg, nil
}

func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		API: APIConfig{ListenAddr: DefaultAPIListenAddr},
		Ops: OpsConfig{
			Enabled:    true,
			ListenAddr: DefaultOpsListenAddr,
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: DefaultMetricsListenAddr,
		},
	}
}

// validateLoopbackAddr accepts host:port where host is localhost or a loopback IP
func validateLoopbackAddr(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("%s is not a loopback address", addr)
}
