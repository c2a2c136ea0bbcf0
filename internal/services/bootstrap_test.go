package services

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-labs/hydro-staking-engine/internal/config"
	"github.com/hydro-labs/hydro-staking-engine/internal/db/model"
	"github.com/hydro-labs/hydro-staking-engine/internal/engine"
	"github.com/hydro-labs/hydro-staking-engine/internal/ledger"
)

const (
	testOwner   = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	testAccount = "0x2546BcD3c84621e976D8185a91A922aE77ECEc30"
	testStaker  = "0xbDA5747bFD65F08deb54cb465eB87D40e51B197E"
)

func newTestEngine(t *testing.T, store engine.Store) *engine.Engine {
	t.Helper()

	eng, err := engine.New(engine.Config{
		Owner:   testOwner,
		Account: testAccount,
		Params: engine.Params{
			MaxRate:         math.NewInt(1_000_000_000_000),
			RateStep:        math.NewInt(50_000_000_000),
			RewardDivisor:   math.NewIntWithDecimal(1, 18),
			WithdrawalDelay: 7 * 24 * time.Hour,
		},
		StakeToken:  ledger.NewLedger(testAccount),
		RewardToken: ledger.NewLedger(testAccount),
		Collection:  ledger.NewCollection(),
		StakeActive: true,
		Store:       store,
	})
	require.NoError(t, err)
	return eng
}

func newTestService(db *fakeDb, eng *engine.Engine) *Service {
	return NewService(&config.Config{}, db, nil, eng)
}

func TestBootstrapFreshDatabase(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDb()
	eng := newTestEngine(t, NewMongoStore(fake))

	svc := newTestService(fake, eng)
	require.NoError(t, svc.Bootstrap(ctx))

	// The initial global state must now exist in the store.
	require.NotNil(t, fake.global)
	assert.Equal(t, testOwner, fake.global.Owner)
	assert.Equal(t, "1000000000000", fake.global.Rate)
	assert.Equal(t, "0", fake.global.TotalStaked)
	assert.True(t, fake.global.StakeActive)
}

func TestBootstrapRestoresState(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDb()
	fake.global = &model.GlobalStateDocument{
		ID:          model.GlobalStateDocumentID,
		Owner:       testOwner,
		Rate:        "950000000000",
		TotalStaked: "1000",
		StakeActive: true,
	}
	fake.users[testStaker] = &model.UserDocument{
		Address:       testStaker,
		Amount:        "1000",
		Checkpoint:    1_700_000_000,
		RatePerMinute: "1000000000000",
	}

	eng := newTestEngine(t, NewMongoStore(fake))
	svc := newTestService(fake, eng)
	require.NoError(t, svc.Bootstrap(ctx))

	assert.Equal(t, math.NewInt(950_000_000_000), eng.Rate())
	assert.Equal(t, math.NewInt(1000), eng.TotalStaked())

	user, ok := eng.User(testStaker)
	require.True(t, ok)
	assert.Equal(t, math.NewInt(1000), user.Amount)
	assert.Equal(t, math.NewInt(1_000_000_000_000), user.RatePerMinute)
}

func TestBootstrapRejectsCorruptState(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDb()
	fake.global = &model.GlobalStateDocument{
		ID:          model.GlobalStateDocumentID,
		Owner:       testOwner,
		Rate:        "950000000000",
		TotalStaked: "999", // does not match the staker sum
		StakeActive: true,
	}
	fake.users[testStaker] = &model.UserDocument{
		Address:       testStaker,
		Amount:        "1000",
		Checkpoint:    1_700_000_000,
		RatePerMinute: "1000000000000",
	}

	eng := newTestEngine(t, NewMongoStore(fake))
	svc := newTestService(fake, eng)
	require.Error(t, svc.Bootstrap(ctx))
}
