package services

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/hydro-labs/hydro-staking-engine/internal/config"
	"github.com/hydro-labs/hydro-staking-engine/internal/db"
	"github.com/hydro-labs/hydro-staking-engine/internal/engine"
	"github.com/hydro-labs/hydro-staking-engine/internal/queue"
)

type Service struct {
	cfg          *config.Config
	db           db.DbInterface
	queueManager *queue.QueueManager
	engine       *engine.Engine
	clock        clockwork.Clock
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	qm *queue.QueueManager,
	eng *engine.Engine,
) *Service {
	return &Service{
		cfg:          cfg,
		db:           db,
		queueManager: qm,
		engine:       eng,
		clock:        clockwork.NewRealClock(),
	}
}

func (s *Service) Engine() *engine.Engine {
	return s.engine
}

// Start restores persisted state into the engine and launches the background
// release checker. It must be called before the API starts serving.
func (s *Service) Start(ctx context.Context) error {
	if err := s.Bootstrap(ctx); err != nil {
		return err
	}

	s.StartReleaseChecker(ctx)

	return nil
}
