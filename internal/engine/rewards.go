package engine

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/math"

	"github.com/hydro-labs/hydro-staking-engine/internal/types"
	"github.com/hydro-labs/hydro-staking-engine/pkg"
)

// rateScale is the 1e18 fixed-point scale of reward rates.
var rateScale = math.NewIntWithDecimal(1, 18)

// CurrentRewards returns the caller's unrealized reward:
//
//	floor(ratePerMinute * elapsedMinutes * amount / 1e18)
//
// It is a pure read with no side effects and is idempotent for identical
// inputs.
func (e *Engine) CurrentRewards(staker string) (math.Int, error) {
	if err := pkg.ValidateAddress(staker); err != nil {
		return math.Int{}, fmt.Errorf("%w: %w", types.ErrInvalidAddress, err)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	u, ok := e.users[pkg.NormalizeAddress(staker)]
	if !ok || !u.amount.IsPositive() {
		return math.Int{}, types.ErrNotStaker
	}

	return e.rewardsLocked(u, e.clock.Now())
}

// rewardsLocked computes the unrealized reward for a record with a nonzero
// stake. A checkpoint ahead of the clock is a broken invariant, never a user
// error.
func (e *Engine) rewardsLocked(u *userRecord, now time.Time) (math.Int, error) {
	if !u.amount.IsPositive() {
		return math.Int{}, fmt.Errorf("%w: reward read on zero stake", types.ErrCorruptedState)
	}
	if now.Before(u.checkpoint) {
		return math.Int{}, fmt.Errorf("%w: checkpoint ahead of clock", types.ErrCorruptedState)
	}

	elapsedMinutes := int64(now.Sub(u.checkpoint) / time.Minute)
	rewardPerUnit := u.ratePerMinute.MulRaw(elapsedMinutes)

	return rewardPerUnit.Mul(u.amount).Quo(rateScale), nil
}

// payRewardLocked realizes and pays out the caller's full accrued reward,
// resetting the checkpoint. Returns the amount paid (zero when nothing has
// accrued yet). State is only mutated after the transfer succeeded, so a
// ledger failure aborts with no partial change.
func (e *Engine) payRewardLocked(ctx context.Context, staker string, u *userRecord, now time.Time) (math.Int, error) {
	reward, err := e.rewardsLocked(u, now)
	if err != nil {
		return math.Int{}, err
	}

	if reward.IsPositive() {
		if err := e.rewardToken.Transfer(ctx, staker, reward); err != nil {
			return math.Int{}, fmt.Errorf("%w: reward payout: %w", types.ErrTransferFailed, err)
		}
	}
	u.checkpoint = now

	return reward, nil
}
