package metrics

import (
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"

	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (o Outcome) String() string {
	return string(o)
}

// Engine operation labels.
const (
	OpStake          = "stake"
	OpWithdrawProfit = "withdraw_profit"
	OpExit           = "exit"
	OpWithdrawFunds  = "withdraw_funds"
	OpClaim          = "claim"
	OpSweep          = "sweep"
)

var (
	once          sync.Once
	metricsRouter *chi.Mux

	// Metric objects exist from package load so recording is safe before
	// Init; Init only registers them and starts the server.
	opsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staking_ops_total",
			Help: "Total number of staking engine operations by outcome.",
		},
		[]string{"op", "outcome"},
	)
	totalStakedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "staking_total_staked",
			Help: "Sum of all users' staked amounts, in base token units.",
		},
	)
	currentRateGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "staking_current_rate",
			Help: "Reward rate offered to newly joining stakers (1e18 scaled).",
		},
	)
	claimableRequestsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "staking_claimable_requests",
			Help: "Number of matured withdrawal requests awaiting claim.",
		},
	)
	ledgerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_client_latency_seconds",
			Help:    "Histogram of external ledger call durations in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"ledger", "method", "status"},
	)
	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_latency_seconds",
			Help:    "Histogram of db call durations in seconds.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "status"},
	)
)

// Init registers the metrics and starts the metrics server.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	go func() {
		log.Info().Msgf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

func registerMetrics() {
	prometheus.MustRegister(
		opsCounter,
		totalStakedGauge,
		currentRateGauge,
		claimableRequestsGauge,
		ledgerLatency,
		dbLatency,
	)
}

func RecordOp(op string, outcome Outcome) {
	opsCounter.WithLabelValues(op, outcome.String()).Inc()
}

func SetTotalStaked(total sdkmath.Int) {
	totalStakedGauge.Set(intToFloat(total))
}

func SetCurrentRate(rate sdkmath.Int) {
	currentRateGauge.Set(intToFloat(rate))
}

func SetClaimableRequests(count int) {
	claimableRequestsGauge.Set(float64(count))
}

func RecordLedgerLatency(ledger, method string, outcome Outcome, duration time.Duration) {
	ledgerLatency.WithLabelValues(ledger, method, outcome.String()).Observe(duration.Seconds())
}

func RecordDbLatency(method string, outcome Outcome, duration time.Duration) {
	dbLatency.WithLabelValues(method, outcome.String()).Observe(duration.Seconds())
}

func intToFloat(v sdkmath.Int) float64 {
	if v.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	return f
}
