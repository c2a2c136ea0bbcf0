package services

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-labs/hydro-staking-engine/internal/db"
	"github.com/hydro-labs/hydro-staking-engine/internal/db/model"
	"github.com/hydro-labs/hydro-staking-engine/internal/engine"
	"github.com/hydro-labs/hydro-staking-engine/internal/ledger"
	"github.com/hydro-labs/hydro-staking-engine/internal/types"
	"github.com/hydro-labs/hydro-staking-engine/pkg"
)

// fakeDb is an in-memory DbInterface for service tests.
type fakeDb struct {
	users  map[string]*model.UserDocument
	global *model.GlobalStateDocument
}

func newFakeDb() *fakeDb {
	return &fakeDb{users: make(map[string]*model.UserDocument)}
}

func (f *fakeDb) Ping(ctx context.Context) error { return nil }

func (f *fakeDb) SaveUser(ctx context.Context, user *model.UserDocument) error {
	// Merge like a $set update: omitempty drops a nil withdrawal from
	// the payload, so the stored request survives the merge on its own.
	copied := *user
	if user.Withdrawal != nil {
		withdrawal := *user.Withdrawal
		copied.Withdrawal = &withdrawal
	} else if prev, ok := f.users[user.Address]; ok {
		copied.Withdrawal = prev.Withdrawal
	}
	// Database.SaveUser pairs the update with an $unset for nil withdrawals.
	if user.Withdrawal == nil {
		copied.Withdrawal = nil
	}
	f.users[user.Address] = &copied
	return nil
}

func (f *fakeDb) GetUser(ctx context.Context, address string) (*model.UserDocument, error) {
	user, ok := f.users[address]
	if !ok {
		return nil, &db.NotFoundError{Key: address, Message: "staker not found"}
	}
	return user, nil
}

func (f *fakeDb) GetAllUsers(ctx context.Context) ([]*model.UserDocument, error) {
	users := make([]*model.UserDocument, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeDb) SaveGlobalState(ctx context.Context, state *model.GlobalStateDocument) error {
	copied := *state
	f.global = &copied
	return nil
}

func (f *fakeDb) GetGlobalState(ctx context.Context) (*model.GlobalStateDocument, error) {
	if f.global == nil {
		return nil, &db.NotFoundError{Key: model.GlobalStateDocumentID, Message: "global state not found"}
	}
	return f.global, nil
}

func (f *fakeDb) FindClaimableRequests(ctx context.Context, now int64, limit int64) ([]*model.UserDocument, error) {
	var claimable []*model.UserDocument
	for _, u := range f.users {
		if u.Withdrawal != nil && !u.Withdrawal.Notified && u.Withdrawal.ReleaseAt <= now {
			claimable = append(claimable, u)
			if int64(len(claimable)) == limit {
				break
			}
		}
	}
	return claimable, nil
}

func (f *fakeDb) MarkRequestNotified(ctx context.Context, address string) error {
	user, ok := f.users[address]
	if !ok || user.Withdrawal == nil {
		return &db.NotFoundError{Key: address, Message: "staker has no pending withdrawal"}
	}
	user.Withdrawal.Notified = true
	return nil
}

func TestUserSnapshotRoundTrip(t *testing.T) {
	checkpoint := time.Unix(1_700_000_000, 0).UTC()
	snapshot := engine.UserSnapshot{
		Address:       "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		Amount:        math.NewIntWithDecimal(42, 18),
		Checkpoint:    checkpoint,
		RatePerMinute: math.NewInt(1_000_000_000_000),
		Withdrawal: engine.WithdrawalRequest{
			Amount:    math.NewIntWithDecimal(7, 18),
			Pending:   true,
			ReleaseAt: checkpoint.Add(7 * 24 * time.Hour),
		},
	}

	doc := UserDocumentFromSnapshot(snapshot)
	require.NotNil(t, doc.Withdrawal)
	assert.Equal(t, "42000000000000000000", doc.Amount)

	restored, err := SnapshotFromUserDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, snapshot, restored)
}

func TestUserSnapshotNoWithdrawal(t *testing.T) {
	snapshot := engine.UserSnapshot{
		Address:       "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		Amount:        math.NewInt(100),
		Checkpoint:    time.Unix(1_700_000_000, 0).UTC(),
		RatePerMinute: math.NewInt(5),
		Withdrawal:    engine.WithdrawalRequest{Amount: math.ZeroInt()},
	}

	doc := UserDocumentFromSnapshot(snapshot)
	assert.Nil(t, doc.Withdrawal)

	restored, err := SnapshotFromUserDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, snapshot, restored)
}

func TestUserSnapshotCorruptDocument(t *testing.T) {
	doc := &model.UserDocument{
		Address:       "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		Amount:        "not-a-number",
		RatePerMinute: "5",
	}
	_, err := SnapshotFromUserDocument(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid integer value")
}

func TestMongoStoreSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDb()
	store := NewMongoStore(fake)

	snapshot := engine.UserSnapshot{
		Address:       pkg.RandAddress(),
		Amount:        math.NewInt(int64(gofakeit.Number(1, 1_000_000))),
		Checkpoint:    time.Unix(int64(gofakeit.Number(1_600_000_000, 1_700_000_000)), 0).UTC(),
		RatePerMinute: math.NewInt(int64(gofakeit.Number(1, 1_000_000_000))),
		Withdrawal:    engine.WithdrawalRequest{Amount: math.ZeroInt()},
	}

	require.NoError(t, store.SaveUser(ctx, snapshot))

	doc, err := fake.GetUser(ctx, snapshot.Address)
	require.NoError(t, err)

	loaded, err := SnapshotFromUserDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, snapshot, loaded)
}

func TestMongoStoreClearsClaimedWithdrawal(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDb()
	clock := clockwork.NewFakeClock()

	stake := ledger.NewLedger(testAccount)
	reward := ledger.NewLedger(testAccount)
	nft := ledger.NewCollection()
	newEngine := func() *engine.Engine {
		eng, err := engine.New(engine.Config{
			Owner:   testOwner,
			Account: testAccount,
			Params: engine.Params{
				MaxRate:         math.NewInt(1_000_000_000_000),
				RateStep:        math.NewInt(50_000_000_000),
				RewardDivisor:   math.NewIntWithDecimal(1, 18),
				WithdrawalDelay: 7 * 24 * time.Hour,
			},
			StakeToken:  stake,
			RewardToken: reward,
			Collection:  nft,
			StakeActive: true,
			Store:       NewMongoStore(fake),
			Clock:       clock,
		})
		require.NoError(t, err)
		return eng
	}

	stake.Mint(testStaker, math.NewInt(100))
	stake.Approve(testStaker, testAccount, math.NewInt(100))
	nft.Mint(testStaker)

	eng := newEngine()
	require.NoError(t, eng.Stake(ctx, testStaker, math.NewInt(100)))

	_, err := eng.Exit(ctx, testStaker)
	require.NoError(t, err)

	clock.Advance(7*24*time.Hour + time.Minute)
	released, err := eng.ClaimHydro(ctx, testStaker)
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(100), released)

	// The claimed request must be gone from the store as well, not only
	// from the in-memory ledger.
	saved, err := fake.GetUser(ctx, testStaker)
	require.NoError(t, err)
	assert.Nil(t, saved.Withdrawal)

	due, err := fake.FindClaimableRequests(ctx, clock.Now().Unix(), 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	// A restart must not resurrect the request into a second payout.
	restarted := newEngine()
	svc := newTestService(fake, restarted)
	require.NoError(t, svc.Bootstrap(ctx))

	_, err = restarted.ClaimHydro(ctx, testStaker)
	require.ErrorIs(t, err, types.ErrNoPendingRequest)
}

func TestMongoStorePreservesNotifiedMarker(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDb()
	store := NewMongoStore(fake)

	staker := "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	releaseAt := time.Unix(1_700_000_000, 0).UTC()
	snapshot := engine.UserSnapshot{
		Address:       staker,
		Amount:        math.NewInt(100),
		Checkpoint:    releaseAt,
		RatePerMinute: math.NewInt(5),
		Withdrawal: engine.WithdrawalRequest{
			Amount:    math.NewInt(50),
			Pending:   true,
			ReleaseAt: releaseAt,
		},
	}

	require.NoError(t, store.SaveUser(ctx, snapshot))
	require.NoError(t, fake.MarkRequestNotified(ctx, staker))

	// Saving the same request again must not reset the marker.
	require.NoError(t, store.SaveUser(ctx, snapshot))
	saved, err := fake.GetUser(ctx, staker)
	require.NoError(t, err)
	require.NotNil(t, saved.Withdrawal)
	assert.True(t, saved.Withdrawal.Notified)

	// A changed request is a new one and must be announced again.
	snapshot.Withdrawal.Amount = math.NewInt(75)
	require.NoError(t, store.SaveUser(ctx, snapshot))
	saved, err = fake.GetUser(ctx, staker)
	require.NoError(t, err)
	assert.False(t, saved.Withdrawal.Notified)
}
