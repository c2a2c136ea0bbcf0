package engine

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/hydro-labs/hydro-staking-engine/internal/observability/metrics"
	"github.com/hydro-labs/hydro-staking-engine/internal/types"
	"github.com/hydro-labs/hydro-staking-engine/pkg"
)

// Stake locks amount of the stake token for the caller. The caller must hold
// at least one token of the gating collection and must have pre-authorized
// the engine to pull the amount.
//
// On a first stake (zero amount on record) the caller's per-minute rate is
// frozen to the global rate in effect before this stake, and the global rate
// is stepped down by one RateStep. On a top-up the accrued reward is paid out
// immediately instead.
func (e *Engine) Stake(ctx context.Context, staker string, amount math.Int) error {
	if err := pkg.ValidateAddress(staker); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidAddress, err)
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	staker = pkg.NormalizeAddress(staker)

	// The gating check runs before any token movement, so a gated-out caller
	// never sees a partial mutation.
	held, err := e.collection.BalanceOf(ctx, staker)
	if err != nil {
		return fmt.Errorf("gating collection lookup: %w", err)
	}
	if held == 0 {
		return types.ErrNoGatingToken
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return types.ErrStakingInactive
	}

	now := e.clock.Now()
	u := e.user(staker)
	firstStake := !u.amount.IsPositive()

	if err := e.stakeToken.TransferFrom(ctx, staker, e.account, amount); err != nil {
		return fmt.Errorf("%w: stake pull: %w", types.ErrTransferFailed, err)
	}

	reward := math.ZeroInt()
	if firstStake {
		// Freeze the rate in effect before this staker dilutes it.
		u.ratePerMinute = e.rate
		e.syncRateLocked(false)
	} else {
		reward, err = e.payRewardLocked(ctx, staker, u, now)
		if err != nil {
			// The principal was already pulled; hand it back so the failed
			// operation leaves no partial state behind.
			if refundErr := e.stakeToken.Transfer(ctx, staker, amount); refundErr != nil {
				log.Error().Err(refundErr).Str("staker", staker).Msg("failed to refund stake pull after aborted payout")
			}
			return err
		}
	}

	u.amount = u.amount.Add(amount)
	u.checkpoint = now
	e.totalStaked = e.totalStaked.Add(amount)

	e.persistUser(ctx, staker)
	e.persistGlobal(ctx)
	metrics.RecordOp(metrics.OpStake, metrics.Success)

	e.emit(ctx, types.Event{Type: types.EventStaked, Staker: staker, Amount: amount.String(), Rate: u.ratePerMinute.String()})
	if reward.IsPositive() {
		e.emit(ctx, types.Event{Type: types.EventRewardPaid, Staker: staker, Amount: reward.String()})
	}

	return nil
}

// WithdrawProfit pays out the caller's entire accrued reward. The requested
// amount is only a minimum threshold: if the accrued reward is below it the
// operation rejects, otherwise the full reward is paid.
func (e *Engine) WithdrawProfit(ctx context.Context, staker string, amount math.Int) (math.Int, error) {
	if err := pkg.ValidateAddress(staker); err != nil {
		return math.Int{}, fmt.Errorf("%w: %w", types.ErrInvalidAddress, err)
	}
	if err := validAmount(amount); err != nil {
		return math.Int{}, err
	}
	staker = pkg.NormalizeAddress(staker)

	if !e.guard.enter() {
		return math.Int{}, types.ErrReentrantCall
	}
	defer e.guard.leave()

	e.mu.Lock()
	defer e.mu.Unlock()

	u, ok := e.users[staker]
	if !ok || !u.amount.IsPositive() {
		return math.Int{}, types.ErrNotStaker
	}

	now := e.clock.Now()
	reward, err := e.rewardsLocked(u, now)
	if err != nil {
		return math.Int{}, err
	}
	if reward.LT(amount) {
		return math.Int{}, types.ErrInsufficientAmount
	}

	if err := e.rewardToken.Transfer(ctx, staker, reward); err != nil {
		return math.Int{}, fmt.Errorf("%w: reward payout: %w", types.ErrTransferFailed, err)
	}
	u.checkpoint = now

	e.persistUser(ctx, staker)
	metrics.RecordOp(metrics.OpWithdrawProfit, metrics.Success)
	e.emit(ctx, types.Event{Type: types.EventRewardPaid, Staker: staker, Amount: reward.String()})

	return reward, nil
}
