package cmd

import (
	"github.com/spf13/cobra"

	"github.com/trueside/fantoken/api"
	"github.com/trueside/fantoken/types"
	"github.com/trueside/fantoken/utils"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Read ledger state",
}

var queryBalanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Liquid balance of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		addr := types.Address(args[0])
		return printJSON(cmd, api.AmountResponse{Address: addr.String(), Amount: utils.Uint256ToString(svc.Balance(addr))})
	},
}

var queryStakedCmd = &cobra.Command{
	Use:   "staked <address>",
	Short: "Staked amount of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		addr := types.Address(args[0])
		return printJSON(cmd, api.AmountResponse{Address: addr.String(), Amount: utils.Uint256ToString(svc.Staked(addr))})
	},
}

var querySupplyCmd = &cobra.Command{
	Use:   "supply",
	Short: "Tokens currently in existence",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		return printJSON(cmd, api.AmountResponse{Amount: utils.Uint256ToString(svc.TotalSupply())})
	},
}

var queryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Admin, pause flag and supply",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		return printJSON(cmd, svc.Status())
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(queryBalanceCmd, queryStakedCmd, querySupplyCmd, queryStatusCmd)
}
