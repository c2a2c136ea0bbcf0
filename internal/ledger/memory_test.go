package ledger

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-labs/hydro-staking-engine/pkg"
)

func TestLedgerTransfer(t *testing.T) {
	ctx := t.Context()
	engine := pkg.RandAddress()
	user := pkg.RandAddress()

	l := NewLedger(engine)
	l.Mint(engine, math.NewInt(100))

	require.NoError(t, l.Transfer(ctx, user, math.NewInt(40)))

	balance, err := l.BalanceOf(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(40), balance)

	balance, err = l.BalanceOf(ctx, engine)
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(60), balance)

	// overdraw
	err = l.Transfer(ctx, user, math.NewInt(61))
	require.Error(t, err)
}

func TestLedgerTransferFrom(t *testing.T) {
	ctx := t.Context()
	engine := pkg.RandAddress()
	user := pkg.RandAddress()

	l := NewLedger(engine)
	l.Mint(user, math.NewInt(100))

	// no allowance yet
	err := l.TransferFrom(ctx, user, engine, math.NewInt(10))
	require.Error(t, err)

	l.Approve(user, engine, math.NewInt(50))
	require.NoError(t, l.TransferFrom(ctx, user, engine, math.NewInt(30)))

	// allowance is consumed
	err = l.TransferFrom(ctx, user, engine, math.NewInt(30))
	require.Error(t, err)

	balance, err := l.BalanceOf(ctx, engine)
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(30), balance)
}

func TestCollection(t *testing.T) {
	ctx := t.Context()
	owner := pkg.RandAddress()

	c := NewCollection()

	count, err := c.BalanceOf(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, count)

	c.Mint(owner)
	c.Mint(owner)

	count, err = c.BalanceOf(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	c.Burn(owner)
	c.Burn(owner)
	c.Burn(owner)

	count, err = c.BalanceOf(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, count)
}
