package engine

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/math"

	"github.com/hydro-labs/hydro-staking-engine/internal/observability/metrics"
	"github.com/hydro-labs/hydro-staking-engine/internal/types"
	"github.com/hydro-labs/hydro-staking-engine/pkg"
)

// Exit is a full unstake: the accrued reward is paid out, the whole principal
// is moved into a delayed withdrawal request, and the global rate is stepped
// back up.
func (e *Engine) Exit(ctx context.Context, staker string) (math.Int, error) {
	if err := pkg.ValidateAddress(staker); err != nil {
		return math.Int{}, fmt.Errorf("%w: %w", types.ErrInvalidAddress, err)
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
	// Checked before any payout so a rejected exit leaves no partial state.
	if u.withdrawal.Pending {
		return math.Int{}, types.ErrPendingRequest
	}

	now := e.clock.Now()
	reward, err := e.payRewardLocked(ctx, staker, u, now)
	if err != nil {
		return math.Int{}, err
	}

	principal := u.amount
	u.amount = math.ZeroInt()
	e.placeWithdrawalRequestLocked(ctx, staker, u, principal, now)
	e.syncRateLocked(true)
	e.totalStaked = e.totalStaked.Sub(principal)

	e.persistUser(ctx, staker)
	e.persistGlobal(ctx)
	metrics.RecordOp(metrics.OpExit, metrics.Success)
	if reward.IsPositive() {
		e.emit(ctx, types.Event{Type: types.EventRewardPaid, Staker: staker, Amount: reward.String()})
	}

	return reward, nil
}

// WithdrawFunds is a partial unstake: amount moves into a delayed withdrawal
// request and the full accrued reward is paid out. If the remaining stake
// hits exactly zero the global rate steps back up, mirroring a full exit.
func (e *Engine) WithdrawFunds(ctx context.Context, staker string, amount math.Int) error {
	if err := pkg.ValidateAddress(staker); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidAddress, err)
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	staker = pkg.NormalizeAddress(staker)

	if !e.guard.enter() {
		return types.ErrReentrantCall
	}
	defer e.guard.leave()

	e.mu.Lock()
	defer e.mu.Unlock()

	u, ok := e.users[staker]
	if !ok || !u.amount.IsPositive() {
		return types.ErrNotStaker
	}
	if amount.GT(u.amount) {
		return types.ErrInsufficientAmount
	}
	if u.withdrawal.Pending {
		return types.ErrPendingRequest
	}

	// The reward is computed once and reused; nothing mutates between the
	// read and the payout.
	now := e.clock.Now()
	reward, err := e.payRewardLocked(ctx, staker, u, now)
	if err != nil {
		return err
	}

	e.placeWithdrawalRequestLocked(ctx, staker, u, amount, now)
	u.amount = u.amount.Sub(amount)
	e.totalStaked = e.totalStaked.Sub(amount)
	if u.amount.IsZero() {
		e.syncRateLocked(true)
	}

	e.persistUser(ctx, staker)
	e.persistGlobal(ctx)
	metrics.RecordOp(metrics.OpWithdrawFunds, metrics.Success)
	if reward.IsPositive() {
		e.emit(ctx, types.Event{Type: types.EventRewardPaid, Staker: staker, Amount: reward.String()})
	}

	return nil
}

// placeWithdrawalRequestLocked records the queue-of-one withdrawal request.
// Callers must have verified no request is pending.
func (e *Engine) placeWithdrawalRequestLocked(ctx context.Context, staker string, u *userRecord, amount math.Int, now time.Time) {
	u.withdrawal = WithdrawalRequest{
		Amount:    amount,
		Pending:   true,
		ReleaseAt: now.Add(e.params.WithdrawalDelay),
	}

	e.emit(ctx, types.Event{
		Type:      types.EventWithdrawalRequested,
		Staker:    staker,
		Amount:    amount.String(),
		ReleaseAt: u.withdrawal.ReleaseAt.Unix(),
	})
}

// ClaimHydro releases a matured withdrawal request, returning the principal
// to the caller. The request is zeroed before the transfer; a failed transfer
// restores it so the operation stays all-or-nothing.
func (e *Engine) ClaimHydro(ctx context.Context, staker string) (math.Int, error) {
	if err := pkg.ValidateAddress(staker); err != nil {
		return math.Int{}, fmt.Errorf("%w: %w", types.ErrInvalidAddress, err)
	}
	staker = pkg.NormalizeAddress(staker)

	if !e.guard.enter() {
		return math.Int{}, types.ErrReentrantCall
	}
	defer e.guard.leave()

	e.mu.Lock()
	defer e.mu.Unlock()

	u, ok := e.users[staker]
	if !ok || !u.withdrawal.Pending {
		return math.Int{}, types.ErrNoPendingRequest
	}
	if e.clock.Now().Before(u.withdrawal.ReleaseAt) {
		return math.Int{}, types.ErrRequestNotMatured
	}

	// Zero first so a re-entrant claim can never see the live request.
	request := u.withdrawal
	u.withdrawal = WithdrawalRequest{Amount: math.ZeroInt()}

	if err := e.stakeToken.Transfer(ctx, staker, request.Amount); err != nil {
		u.withdrawal = request
		return math.Int{}, fmt.Errorf("%w: principal release: %w", types.ErrTransferFailed, err)
	}

	e.persistUser(ctx, staker)
	metrics.RecordOp(metrics.OpClaim, metrics.Success)
	e.emit(ctx, types.Event{Type: types.EventPrincipalClaimed, Staker: staker, Amount: request.Amount.String()})

	return request.Amount, nil
}
