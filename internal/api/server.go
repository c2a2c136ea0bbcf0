package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/hydro-labs/hydro-staking-engine/internal/config"
	"github.com/hydro-labs/hydro-staking-engine/internal/db"
	"github.com/hydro-labs/hydro-staking-engine/internal/engine"
	"github.com/hydro-labs/hydro-staking-engine/internal/ledger"
	"github.com/hydro-labs/hydro-staking-engine/internal/observability/tracing"
)

// Server exposes the staking engine over HTTP.
type Server struct {
	engine *engine.Engine
	db     db.DbInterface
	// tokens the admin sweep endpoint can address by name.
	tokens map[string]ledger.TokenLedger
	srv    *http.Server
}

func New(cfg *config.ApiConfig, eng *engine.Engine, database db.DbInterface, tokens map[string]ledger.TokenLedger) *Server {
	s := &Server{
		engine: eng,
		db:     database,
		tokens: tokens,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(traceMiddleware)

	router.Get("/healthcheck", s.handleHealthcheck)

	router.Route("/v1", func(r chi.Router) {
		r.Post("/stake", s.handleStake)
		r.Post("/withdraw-profit", s.handleWithdrawProfit)
		r.Post("/exit", s.handleExit)
		r.Post("/withdraw-funds", s.handleWithdrawFunds)
		r.Post("/claim", s.handleClaim)

		r.Get("/state", s.handleState)
		r.Get("/apy", s.handleApy)
		r.Get("/stakers/{address}", s.handleStaker)
		r.Get("/stakers/{address}/rewards", s.handleStakerRewards)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/stake-active", s.handleSetStakeActive)
			r.Post("/rate", s.handleSetRate)
			r.Post("/sweep", s.handleSweep)
			r.Post("/transfer-ownership", s.handleTransferOwnership)
			r.Post("/renounce-ownership", s.handleRenounceOwnership)
		})
	})

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.srv.Addr).Msg("Starting API server")

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// traceMiddleware gives every request a trace id carried in the zerolog
// context, so engine and store logs correlate back to the request.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(tracing.InjectTraceID(r.Context())))
	})
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, fmt.Errorf("database unreachable: %w", err))
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
