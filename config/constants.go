package config

import "github.com/trueside/fantoken/store"

const (
	DefaultContractConfigPath = "config/fantoken.yml"
	DefaultServerConfigPath   = "config/config.ini"

	DefaultAPIListenAddr     = ":8080"
	DefaultMetricsListenAddr = ":9100"
	DefaultOpsListenAddr     = "127.0.0.1:8081"

	DefaultStoreDirectory = "data/ledger"
	DefaultStoreType      = store.LevelDBStoreType
)
