package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trueside/fantoken/config"
	lerrors "github.com/trueside/fantoken/errors"
	"github.com/trueside/fantoken/logx"
	"github.com/trueside/fantoken/service"
	"github.com/trueside/fantoken/store"
)

var (
	contractConfigPath string
	serverConfigPath   string
)

var rootCmd = &cobra.Command{
	Use:           "fantoken",
	Short:         "Fan token ledger CLI",
	Long:          "Command line interface for deploying, operating and serving a capped, stakeable fan token ledger.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&contractConfigPath, "config", "c", config.DefaultContractConfigPath, "path to fantoken.yml")
	rootCmd.PersistentFlags().StringVar(&serverConfigPath, "ini", config.DefaultServerConfigPath, "path to config.ini")
}

// Execute runs the root command. Rejected ledger operations exit with their error code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if code, ok := lerrors.CodeOf(err); ok {
		return int(code)
	}
	logx.Error("CMD", "Command execution failed: ", err)
	return 1
}

func openStore() (*config.ContractConfig, store.LedgerStore, error) {
	cfg, err := config.LoadContractConfig(contractConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	ls, err := store.CreateStore(&cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return cfg, ls, nil
}

func loadService() (*service.LedgerService, error) {
	_, ls, err := openStore()
	if err != nil {
		return nil, err
	}
	svc, err := service.NewLedgerService(ls)
	if err != nil {
		ls.MustClose()
		return nil, err
	}
	return svc, nil
}
