package engine

import (
	"context"
	"fmt"

	"cosmossdk.io/math"

	"github.com/hydro-labs/hydro-staking-engine/internal/ledger"
	"github.com/hydro-labs/hydro-staking-engine/internal/observability/metrics"
	"github.com/hydro-labs/hydro-staking-engine/internal/types"
	"github.com/hydro-labs/hydro-staking-engine/pkg"
)

func (e *Engine) requireOwnerLocked(caller string) error {
	if pkg.NormalizeAddress(caller) != e.owner {
		return types.ErrNotOwner
	}
	return nil
}

// SetStakeActive opens or closes the staking gate.
func (e *Engine) SetStakeActive(ctx context.Context, caller string, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwnerLocked(caller); err != nil {
		return err
	}
	if e.active == active {
		return nil
	}
	e.active = active

	e.persistGlobal(ctx)
	event := types.EventStakingPaused
	if active {
		event = types.EventStakingResumed
	}
	e.emit(ctx, types.Event{Type: event})

	return nil
}

// SetRate force-sets the rate offered to newly joining stakers. The MaxRate
// ceiling holds even under an admin override.
func (e *Engine) SetRate(ctx context.Context, caller string, rate math.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwnerLocked(caller); err != nil {
		return err
	}
	if rate.IsNil() || rate.IsNegative() || rate.GT(e.params.MaxRate) {
		return types.ErrRateOutOfRange
	}
	e.rate = rate

	e.persistGlobal(ctx)
	e.emit(ctx, types.Event{Type: types.EventRateChanged, Rate: rate.String()})

	return nil
}

// SweepToken moves the engine's entire balance on an arbitrary token ledger
// to the owner. Used to recover tokens sent to the engine by mistake.
func (e *Engine) SweepToken(ctx context.Context, caller string, token ledger.TokenLedger) (math.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwnerLocked(caller); err != nil {
		return math.Int{}, err
	}

	balance, err := token.BalanceOf(ctx, e.account)
	if err != nil {
		return math.Int{}, fmt.Errorf("sweep balance lookup: %w", err)
	}
	if !balance.IsPositive() {
		return math.ZeroInt(), nil
	}

	if err := token.Transfer(ctx, e.owner, balance); err != nil {
		return math.Int{}, fmt.Errorf("%w: sweep: %w", types.ErrTransferFailed, err)
	}
	metrics.RecordOp(metrics.OpSweep, metrics.Success)

	return balance, nil
}

// TransferOwnership hands the administrator role to a new account.
func (e *Engine) TransferOwnership(ctx context.Context, caller, newOwner string) error {
	if err := pkg.ValidateAddress(newOwner); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidAddress, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwnerLocked(caller); err != nil {
		return err
	}
	e.owner = pkg.NormalizeAddress(newOwner)

	e.persistGlobal(ctx)
	return nil
}

// RenounceOwnership relinquishes the administrator role to the null holder,
// permanently disabling privileged operations.
func (e *Engine) RenounceOwnership(ctx context.Context, caller string) error {
	return e.TransferOwnership(ctx, caller, pkg.ZeroAddress)
}
