package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trueside/fantoken/api"
	"github.com/trueside/fantoken/jsonx"
	"github.com/trueside/fantoken/service"
)

type opConfig struct {
	Caller string
	To     string
	Amount string
	Paused bool
	Server string
}

var opCfg opConfig

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Create tokens for a recipient (admin only)",
	Example: `  # Mint 1,000 tokens to a fan
  fantoken mint --caller ST1ADMIN --to ST2FAN -a 1_000

  # Same, through a running fantoken serve
  fantoken mint --caller ST1ADMIN --to ST2FAN -a 1_000 --server 127.0.0.1:8081`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, service.OpMint)
	},
}

var transferCmd = &cobra.Command{
	Use:     "transfer",
	Short:   "Move tokens from the caller to a recipient",
	Example: `  fantoken transfer --caller ST2FAN --to ST3FAN -a 250`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, service.OpTransfer)
	},
}

var burnCmd = &cobra.Command{
	Use:   "burn",
	Short: "Destroy tokens held by the caller",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, service.OpBurn)
	},
}

var stakeCmd = &cobra.Command{
	Use:   "stake",
	Short: "Lock part of the caller's balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, service.OpStake)
	},
}

var unstakeCmd = &cobra.Command{
	Use:   "unstake",
	Short: "Release previously staked tokens back to the caller's balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, service.OpUnstake)
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Set the pause flag (admin only)",
	Example: `  fantoken pause --caller ST1ADMIN --paused=true
  fantoken pause --caller ST1ADMIN --paused=false`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, service.OpSetPaused)
	},
}

func init() {
	for _, c := range []*cobra.Command{mintCmd, transferCmd, burnCmd, stakeCmd, unstakeCmd, pauseCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringVar(&opCfg.Caller, "caller", "", "address of the principal invoking the operation")
		_ = c.MarkFlagRequired("caller")
		c.Flags().StringVar(&opCfg.Server, "server", "", "ops address of a running fantoken serve; the store is not opened when set")
	}
	for _, c := range []*cobra.Command{mintCmd, transferCmd} {
		c.Flags().StringVarP(&opCfg.To, "to", "t", "", "address of recipient")
		_ = c.MarkFlagRequired("to")
	}
	for _, c := range []*cobra.Command{mintCmd, transferCmd, burnCmd, stakeCmd, unstakeCmd} {
		c.Flags().StringVarP(&opCfg.Amount, "amount", "a", "", "amount, '_' separators allowed")
		_ = c.MarkFlagRequired("amount")
	}
	pauseCmd.Flags().BoolVar(&opCfg.Paused, "paused", true, "new value of the pause flag")
}

// runOp applies op through a running server when --server is set, otherwise
// directly against the configured store.
func runOp(cmd *cobra.Command, op string) error {
	req := api.OpRequest{
		Caller: opCfg.Caller,
		To:     opCfg.To,
		Amount: opCfg.Amount,
		Paused: opCfg.Paused,
	}

	if opCfg.Server != "" {
		res, err := postOp(cmd.Context(), opCfg.Server, op, req)
		return reportResult(cmd, res, err)
	}

	svc, err := loadService()
	if err != nil {
		return fmt.Errorf("%w (pass --server when fantoken serve holds the store)", err)
	}
	defer svc.Close()

	res, err := api.ApplyOp(svc, op, req)
	return reportResult(cmd, res, err)
}

// reportResult prints res when there is one and passes err through, so a rejection still sets the exit status.
func reportResult(cmd *cobra.Command, res *service.Result, err error) error {
	if res != nil {
		if perr := printJSON(cmd, res); perr != nil {
			return perr
		}
	}
	return err
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := jsonx.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
