package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trueside/fantoken/api"
	"github.com/trueside/fantoken/config"
	"github.com/trueside/fantoken/exception"
	"github.com/trueside/fantoken/logx"
	"github.com/trueside/fantoken/monitoring"
	"github.com/trueside/fantoken/service"
	"github.com/trueside/fantoken/types"
	"github.com/trueside/fantoken/utils"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger over HTTP",
	Long: `Loads the ledger and serves account, supply and status queries.
While serving, this process is the only one holding the store. With
[ops] enabled = true in config.ini it accepts mutations from loopback
clients, which the mint, transfer, burn, stake, unstake and pause commands
reach with --server. Every applied operation is logged under EVENT.
When [metrics] enabled = true, prometheus metrics are served on their own
listener under /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverCfg, err := config.LoadServerConfig(serverConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load server config: %w", err)
		}
		if serverCfg.Metrics.Enabled {
			monitoring.InitMetrics()
		}

		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, svc, serverCfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve blocks until ctx is done or a listener fails.
func serve(ctx context.Context, svc *service.LedgerService, serverCfg *config.ServerConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 3)

	bus := types.NewEventBus()
	events := bus.Subscribe(types.AllAddresses)
	defer bus.Unsubscribe(types.AllAddresses, events)
	svc.SetEventBus(bus)
	defer svc.SetEventBus(nil)
	eventsDone := make(chan struct{})
	exception.SafeGo("event-log", func() {
		defer close(eventsDone)
		logEvents(ctx, events)
	})

	apiServer := api.NewAPIServer(svc, serverCfg.API.ListenAddr)
	exception.SafeGoWithPanic("api-server", func() {
		errCh <- apiServer.ListenAndServe()
	})

	var opsServer *api.OpsServer
	if serverCfg.Ops.Enabled {
		opsServer = api.NewOpsServer(svc, serverCfg.Ops.ListenAddr)
		exception.SafeGoWithPanic("ops-server", func() {
			if err := opsServer.ListenAndServe(); err != nil {
				errCh <- fmt.Errorf("ops server: %w", err)
			}
		})
	}

	var metricsServer *http.Server
	if serverCfg.Metrics.Enabled {
		mux := http.NewServeMux()
		monitoring.RegisterMetrics(mux)
		metricsServer = &http.Server{
			Addr:              serverCfg.Metrics.ListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		exception.SafeGo("metrics-server", func() {
			logx.Info("SERVE", "Metrics listen on "+serverCfg.Metrics.ListenAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		})
	}

	var runErr error
	select {
	case <-ctx.Done():
		logx.Info("SERVE", "Shutting down")
	case runErr = <-errCh:
		if runErr != nil {
			logx.Error("SERVE", "Listener failed: ", runErr)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if opsServer != nil {
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logx.Warn("SERVE", "Ops shutdown: ", err)
		}
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logx.Warn("SERVE", "API shutdown: ", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logx.Warn("SERVE", "Metrics shutdown: ", err)
		}
	}
	cancel()
	<-eventsDone
	return runErr
}

// logEvents writes every published ledger event to the log until ctx is done.
func logEvents(ctx context.Context, events <-chan *types.LedgerEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			line := fmt.Sprintf("op=%s id=%s caller=%s", ev.Operation, ev.OpID, ev.Caller)
			if ev.Recipient != "" {
				line += " to=" + ev.Recipient.String()
			}
			if ev.Amount != nil {
				line += " amount=" + utils.Uint256ToString(ev.Amount)
			}
			if ev.Operation == service.OpSetPaused {
				line += fmt.Sprintf(" paused=%t", ev.Paused)
			}
			logx.Info("EVENT", line)
		}
	}
}
