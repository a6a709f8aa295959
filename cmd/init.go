package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trueside/fantoken/logx"
	"github.com/trueside/fantoken/service"
	"github.com/trueside/fantoken/types"
)

var initAdmin string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Deploy a new ledger",
	Long: `Creates an empty, unpaused ledger in the configured store. The admin is
taken from ledger.admin in fantoken.yml unless --admin is given.
Fails if the store already holds a ledger.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ls, err := openStore()
		if err != nil {
			return err
		}

		admin := cfg.AdminAddress()
		if initAdmin != "" {
			admin = types.Address(initAdmin)
		}
		if admin.IsZero() {
			ls.MustClose()
			return fmt.Errorf("admin cannot be the zero address")
		}

		svc, err := service.InitLedger(ls, admin)
		if err != nil {
			ls.MustClose()
			return err
		}
		defer svc.Close()

		logx.Info("INIT", fmt.Sprintf("Ledger deployed with admin %s on %s store", admin, cfg.Store.Type))
		return printJSON(cmd, svc.Status())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initAdmin, "admin", "", "admin address (overrides ledger.admin)")
}
