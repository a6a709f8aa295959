package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trueside/fantoken/logx"
)

// OperationResultOK labels operations that completed.
const OperationResultOK = "ok"

type ledgerPromMetrics struct {
	upUnixSeconds     prometheus.Gauge
	operationCount    *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	totalSupply       prometheus.Gauge
	paused            prometheus.Gauge
	panicCount        prometheus.Counter
}

func newLedgerPromMetrics() *ledgerPromMetrics {
	return &ledgerPromMetrics{
		upUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fantoken_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the ledger process start",
			},
		),
		operationCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fantoken_operation_count",
				Help: "The total number of ledger operations by outcome (ok or error code)",
			},
			[]string{"operation", "result"},
		),
		operationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "fantoken_operation_duration_seconds",
				Help: "Time spent applying and persisting a ledger operation",
			},
			[]string{"operation"},
		),
		totalSupply: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fantoken_total_supply",
				Help: "Tokens currently in existence",
			},
		),
		paused: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fantoken_paused",
				Help: "1 when the contract is paused",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fantoken_panic_count",
				Help: "The total number of recovered panics",
			},
		),
	}
}

var (
	ledgerMetrics *ledgerPromMetrics
	initOnce      sync.Once
)

// InitMetrics creates the collectors on the default registry. Recording before InitMetrics is a no-op.
func InitMetrics() {
	initOnce.Do(func() {
		ledgerMetrics = newLedgerPromMetrics()
		ledgerMetrics.upUnixSeconds.SetToCurrentTime()
	})
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func RecordOperation(operation, result string, duration time.Duration) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.operationCount.With(prometheus.Labels{
		"operation": operation,
		"result":    result,
	}).Inc()
	ledgerMetrics.operationDuration.With(prometheus.Labels{
		"operation": operation,
	}).Observe(duration.Seconds())
}

func SetTotalSupply(supply *uint256.Int) {
	if ledgerMetrics == nil || supply == nil {
		return
	}
	ledgerMetrics.totalSupply.Set(supply.Float64())
}

func SetPaused(paused bool) {
	if ledgerMetrics == nil {
		return
	}
	if paused {
		ledgerMetrics.paused.Set(1)
	} else {
		ledgerMetrics.paused.Set(0)
	}
}

func IncreasePanicCount() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.panicCount.Inc()
}
