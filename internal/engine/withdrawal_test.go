package engine

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-labs/hydro-staking-engine/internal/types"
	"github.com/hydro-labs/hydro-staking-engine/pkg"
)

func TestExitRejections(t *testing.T) {
	e, f := newTestEngine(t)
	ctx := t.Context()

	t.Run("non staker", func(t *testing.T) {
		_, err := e.Exit(ctx, pkg.RandAddress())
		require.ErrorIs(t, err, types.ErrNotStaker)
	})

	t.Run("pending request blocks a second exit", func(t *testing.T) {
		deposit := math.NewIntWithDecimal(100, 18)
		staker := f.newStaker(deposit.MulRaw(2))
		require.NoError(t, e.Stake(ctx, staker, deposit))

		_, err := e.Exit(ctx, staker)
		require.NoError(t, err)

		// stake again while the request is outstanding, then try to exit
		require.NoError(t, e.Stake(ctx, staker, deposit))
		_, err = e.Exit(ctx, staker)
		require.ErrorIs(t, err, types.ErrPendingRequest)

		// the rejected exit left the stake untouched
		u, _ := e.User(staker)
		assert.Equal(t, deposit, u.Amount)
	})
}

func TestWithdrawFunds(t *testing.T) {
	e, f := newTestEngine(t)
	ctx := t.Context()
	params := testParams()

	deposit := math.NewIntWithDecimal(100, 18)
	staker := f.newStaker(deposit)
	require.NoError(t, e.Stake(ctx, staker, deposit))

	f.clock.Advance(30 * time.Minute)

	part := math.NewIntWithDecimal(40, 18)
	require.NoError(t, e.WithdrawFunds(ctx, staker, part))

	u, _ := e.User(staker)
	assert.Equal(t, deposit.Sub(part), u.Amount)
	require.True(t, u.Withdrawal.Pending)
	assert.Equal(t, part, u.Withdrawal.Amount)
	assert.Equal(t, f.clock.Now().Add(params.WithdrawalDelay), u.Withdrawal.ReleaseAt)
	assert.Equal(t, deposit.Sub(part), e.TotalStaked())

	// the full accrued reward was paid alongside
	expected := params.MaxRate.MulRaw(30).Mul(deposit).Quo(math.NewIntWithDecimal(1, 18))
	assert.Equal(t, expected, balanceOf(t, f.reward, staker))

	// partial withdrawal does not step the rate back up
	assert.Equal(t, params.MaxRate.Sub(params.RateStep), e.Rate())

	t.Run("second request while pending", func(t *testing.T) {
		err := e.WithdrawFunds(ctx, staker, math.NewInt(1))
		require.ErrorIs(t, err, types.ErrPendingRequest)
	})
}

func TestWithdrawFundsOverdraw(t *testing.T) {
	e, f := newTestEngine(t)
	ctx := t.Context()

	deposit := math.NewIntWithDecimal(100, 18)
	staker := f.newStaker(deposit)
	require.NoError(t, e.Stake(ctx, staker, deposit))

	err := e.WithdrawFunds(ctx, staker, deposit.AddRaw(1))
	require.ErrorIs(t, err, types.ErrInsufficientAmount)

	// rejected with no state change
	u, _ := e.User(staker)
	assert.Equal(t, deposit, u.Amount)
	assert.False(t, u.Withdrawal.Pending)
	assert.Equal(t, deposit, e.TotalStaked())
}

func TestWithdrawFundsToZeroStepsRateUp(t *testing.T) {
	e, f := newTestEngine(t)
	ctx := t.Context()
	params := testParams()

	deposit := math.NewIntWithDecimal(100, 18)
	staker := f.newStaker(deposit)
	require.NoError(t, e.Stake(ctx, staker, deposit))
	require.Equal(t, params.MaxRate.Sub(params.RateStep), e.Rate())

	// withdrawing the entire stake mirrors a full exit
	require.NoError(t, e.WithdrawFunds(ctx, staker, deposit))

	u, _ := e.User(staker)
	assert.True(t, u.Amount.IsZero())
	assert.Equal(t, params.MaxRate, e.Rate())

	t.Run("non staker afterwards", func(t *testing.T) {
		err := e.WithdrawFunds(ctx, staker, math.NewInt(1))
		require.ErrorIs(t, err, types.ErrNotStaker)
	})
}

func TestClaimHydro(t *testing.T) {
	e, f := newTestEngine(t)
	ctx := t.Context()
	params := testParams()

	deposit := math.NewIntWithDecimal(100, 18)
	staker := f.newStaker(deposit)
	require.NoError(t, e.Stake(ctx, staker, deposit))
	_, err := e.Exit(ctx, staker)
	require.NoError(t, err)

	t.Run("before maturity", func(t *testing.T) {
		_, err := e.ClaimHydro(ctx, staker)
		require.ErrorIs(t, err, types.ErrRequestNotMatured)

		f.clock.Advance(params.WithdrawalDelay - time.Second)
		_, err = e.ClaimHydro(ctx, staker)
		require.ErrorIs(t, err, types.ErrRequestNotMatured)
	})

	t.Run("at maturity pays exactly once", func(t *testing.T) {
		f.clock.Advance(time.Second)

		claimed, err := e.ClaimHydro(ctx, staker)
		require.NoError(t, err)
		assert.Equal(t, deposit, claimed)
		assert.Equal(t, deposit, balanceOf(t, f.stake, staker))

		u, _ := e.User(staker)
		assert.False(t, u.Withdrawal.Pending)
		assert.True(t, u.Withdrawal.Amount.IsZero())
	})

	t.Run("second claim rejects", func(t *testing.T) {
		_, err := e.ClaimHydro(ctx, staker)
		require.ErrorIs(t, err, types.ErrNoPendingRequest)
		assert.Equal(t, deposit, balanceOf(t, f.stake, staker))
	})

	t.Run("no request at all", func(t *testing.T) {
		_, err := e.ClaimHydro(ctx, pkg.RandAddress())
		require.ErrorIs(t, err, types.ErrNoPendingRequest)
	})
}

func TestClaimHydroTransferFailureRestoresRequest(t *testing.T) {
	e, f := newTestEngine(t)
	ctx := t.Context()
	params := testParams()

	deposit := math.NewIntWithDecimal(100, 18)
	staker := f.newStaker(deposit)
	require.NoError(t, e.Stake(ctx, staker, deposit))
	_, err := e.Exit(ctx, staker)
	require.NoError(t, err)

	// drain the engine's stake-token balance so the release transfer fails
	require.NoError(t, f.stake.Transfer(ctx, pkg.RandAddress(), deposit))

	f.clock.Advance(params.WithdrawalDelay)
	_, err = e.ClaimHydro(ctx, staker)
	require.ErrorIs(t, err, types.ErrTransferFailed)

	// the request survives the failed release
	u, _ := e.User(staker)
	require.True(t, u.Withdrawal.Pending)
	assert.Equal(t, deposit, u.Withdrawal.Amount)

	// refund the engine and the claim succeeds
	f.stake.Mint(f.account, deposit)
	claimed, err := e.ClaimHydro(ctx, staker)
	require.NoError(t, err)
	assert.Equal(t, deposit, claimed)
}
