package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hydro-labs/hydro-staking-engine/internal/api"
	"github.com/hydro-labs/hydro-staking-engine/internal/config"
	"github.com/hydro-labs/hydro-staking-engine/internal/db"
	dbmodel "github.com/hydro-labs/hydro-staking-engine/internal/db/model"
	"github.com/hydro-labs/hydro-staking-engine/internal/engine"
	"github.com/hydro-labs/hydro-staking-engine/internal/ledger"
	"github.com/hydro-labs/hydro-staking-engine/internal/ledger/evmledger"
	"github.com/hydro-labs/hydro-staking-engine/internal/observability/metrics"
	"github.com/hydro-labs/hydro-staking-engine/internal/observability/tracing"
	"github.com/hydro-labs/hydro-staking-engine/internal/queue"
	"github.com/hydro-labs/hydro-staking-engine/internal/services"
	"github.com/hydro-labs/hydro-staking-engine/pkg"
)

const shutdownTimeout = 10 * time.Second

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the Hydro staking engine server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up staking db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	qm, err := queue.NewQueueManager(&cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating queue manager")
	}
	defer qm.Shutdown()

	stakeToken, rewardToken, collection := buildLedgers(ctx, cfg, log)

	params, err := cfg.Engine.Params()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid engine parameters")
	}

	eng, err := engine.New(engine.Config{
		Owner:       cfg.Engine.Owner,
		Account:     cfg.Engine.Account,
		Params:      params,
		StakeToken:  stakeToken,
		RewardToken: rewardToken,
		Collection:  collection,
		StakeActive: cfg.Engine.StakeActive,
		Sink:        qm,
		Store:       services.NewMongoStore(dbClient),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating staking engine")
	}

	service := services.NewService(cfg, dbClient, qm, eng)
	if err := service.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("error while starting staking service")
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	apiServer := api.New(&cfg.Api, eng, dbClient, map[string]ledger.TokenLedger{
		"stake":  stakeToken,
		"reward": rewardToken,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shut down api server")
		}
	}()

	return apiServer.Start()
}

// buildLedgers connects the engine to its token contracts, or to in-memory
// ledgers when EVM is disabled.
func buildLedgers(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (ledger.TokenLedger, ledger.TokenLedger, ledger.CollectionOracle) {
	if !cfg.Evm.Enabled {
		log.Warn().Msg("EVM is disabled, running with in-memory ledgers")
		account := cfg.Engine.Account
		return ledger.NewLedger(account), ledger.NewLedger(account), ledger.NewCollection()
	}

	client, err := evmledger.NewClient(ctx, &cfg.Evm)
	if err != nil {
		log.Fatal().Err(err).Msg("error while connecting to evm node")
	}

	// The signing key must control the configured engine account, otherwise
	// pulled principal would land in a wallet the engine cannot pay out of.
	if pkg.NormalizeAddress(client.Account().Hex()) != pkg.NormalizeAddress(cfg.Engine.Account) {
		log.Fatal().
			Str("key_account", client.Account().Hex()).
			Str("engine_account", cfg.Engine.Account).
			Msg("evm signing key does not match the engine account")
	}

	stakeToken, err := evmledger.NewERC20(client, cfg.Evm.StakeToken, "stake_token")
	if err != nil {
		log.Fatal().Err(err).Msg("error while binding stake token contract")
	}
	rewardToken, err := evmledger.NewERC20(client, cfg.Evm.RewardToken, "reward_token")
	if err != nil {
		log.Fatal().Err(err).Msg("error while binding reward token contract")
	}
	collection, err := evmledger.NewERC721(client, cfg.Evm.GatingCollection)
	if err != nil {
		log.Fatal().Err(err).Msg("error while binding gating collection contract")
	}

	return stakeToken, rewardToken, collection
}
