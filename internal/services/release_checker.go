package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hydro-labs/hydro-staking-engine/internal/observability/metrics"
	"github.com/hydro-labs/hydro-staking-engine/internal/types"
	"github.com/hydro-labs/hydro-staking-engine/internal/utils/poller"
)

// StartReleaseChecker launches the poller that watches for matured withdrawal
// requests and announces them to consumers.
func (s *Service) StartReleaseChecker(ctx context.Context) {
	releaseCheckerPoller := poller.NewPoller(
		s.cfg.Poller.ReleaseCheckerPollingInterval,
		s.checkReleases,
	)
	go releaseCheckerPoller.Start(ctx)
}

func (s *Service) checkReleases(ctx context.Context) error {
	now := s.clock.Now().Unix()

	claimable, err := s.db.FindClaimableRequests(ctx, now, s.cfg.Poller.ClaimableRequestsLimit)
	if err != nil {
		return fmt.Errorf("failed to find claimable requests: %w", err)
	}

	metrics.SetClaimableRequests(len(claimable))

	for _, doc := range claimable {
		if doc.Withdrawal == nil {
			continue
		}

		log.Debug().
			Str("staker", doc.Address).
			Str("amount", doc.Withdrawal.Amount).
			Int64("release_at", doc.Withdrawal.ReleaseAt).
			Msg("withdrawal request matured")

		event := types.Event{
			ID:        uuid.NewString(),
			Type:      types.EventWithdrawalClaimable,
			Staker:    doc.Address,
			Amount:    doc.Withdrawal.Amount,
			ReleaseAt: doc.Withdrawal.ReleaseAt,
			Timestamp: now,
		}
		if err := s.queueManager.Publish(ctx, event); err != nil {
			return fmt.Errorf("failed to publish claimable event: %w", err)
		}

		if err := s.db.MarkRequestNotified(ctx, doc.Address); err != nil {
			return fmt.Errorf("failed to mark request notified: %w", err)
		}
	}

	return nil
}
