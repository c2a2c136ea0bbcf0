package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hydro-labs/hydro-staking-engine/internal/db"
	"github.com/hydro-labs/hydro-staking-engine/internal/engine"
)

// Bootstrap loads the persisted engine state and replays it into the engine.
// On a fresh database it persists the engine's initial state instead, so the
// global state document exists from the first start.
func (s *Service) Bootstrap(ctx context.Context) error {
	stateDoc, err := s.db.GetGlobalState(ctx)
	if err != nil {
		if db.IsNotFoundError(err) {
			log.Info().Msg("No persisted state found, starting with a fresh engine")
			return s.engine.PersistInitialState(ctx)
		}
		return fmt.Errorf("failed to load global state: %w", err)
	}

	global, err := SnapshotFromGlobalStateDocument(stateDoc)
	if err != nil {
		return err
	}

	userDocs, err := s.db.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load staker records: %w", err)
	}

	users := make([]engine.UserSnapshot, 0, len(userDocs))
	for _, doc := range userDocs {
		snapshot, err := SnapshotFromUserDocument(doc)
		if err != nil {
			return err
		}
		users = append(users, snapshot)
	}

	if err := s.engine.Restore(global, users); err != nil {
		return fmt.Errorf("failed to restore engine state: %w", err)
	}

	log.Info().
		Int("stakers", len(users)).
		Str("total_staked", global.TotalStaked.String()).
		Str("rate", global.Rate.String()).
		Msg("Restored engine state from database")

	return nil
}
