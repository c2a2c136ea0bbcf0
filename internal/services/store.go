package services

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/math"

	"github.com/hydro-labs/hydro-staking-engine/internal/db"
	"github.com/hydro-labs/hydro-staking-engine/internal/db/model"
	"github.com/hydro-labs/hydro-staking-engine/internal/engine"
)

// MongoStore mirrors committed engine state into MongoDB. The engine is the
// ledger of record; the store is a read model for the API and the release
// checker.
type MongoStore struct {
	db db.DbInterface
}

func NewMongoStore(db db.DbInterface) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) SaveUser(ctx context.Context, user engine.UserSnapshot) error {
	doc := UserDocumentFromSnapshot(user)

	// A notified marker lives only in the store. Carry it over unless the
	// request itself changed, otherwise the release checker would publish
	// the same claimable event again.
	if doc.Withdrawal != nil {
		existing, err := s.db.GetUser(ctx, user.Address)
		if err == nil && existing.Withdrawal != nil &&
			existing.Withdrawal.ReleaseAt == doc.Withdrawal.ReleaseAt &&
			existing.Withdrawal.Amount == doc.Withdrawal.Amount {
			doc.Withdrawal.Notified = existing.Withdrawal.Notified
		} else if err != nil && !db.IsNotFoundError(err) {
			return err
		}
	}

	return s.db.SaveUser(ctx, doc)
}

func (s *MongoStore) SaveGlobalState(ctx context.Context, state engine.GlobalSnapshot) error {
	return s.db.SaveGlobalState(ctx, &model.GlobalStateDocument{
		Owner:       state.Owner,
		Rate:        state.Rate.String(),
		TotalStaked: state.TotalStaked.String(),
		StakeActive: state.StakeActive,
	})
}

func UserDocumentFromSnapshot(user engine.UserSnapshot) *model.UserDocument {
	doc := &model.UserDocument{
		Address:       user.Address,
		Amount:        user.Amount.String(),
		Checkpoint:    user.Checkpoint.Unix(),
		RatePerMinute: user.RatePerMinute.String(),
	}
	if user.Withdrawal.Pending {
		doc.Withdrawal = &model.WithdrawalDocument{
			Amount:    user.Withdrawal.Amount.String(),
			ReleaseAt: user.Withdrawal.ReleaseAt.Unix(),
		}
	}
	return doc
}

func SnapshotFromUserDocument(doc *model.UserDocument) (engine.UserSnapshot, error) {
	amount, err := parseInt(doc.Amount)
	if err != nil {
		return engine.UserSnapshot{}, fmt.Errorf("staker %s: %w", doc.Address, err)
	}
	rate, err := parseInt(doc.RatePerMinute)
	if err != nil {
		return engine.UserSnapshot{}, fmt.Errorf("staker %s: %w", doc.Address, err)
	}

	snapshot := engine.UserSnapshot{
		Address:       doc.Address,
		Amount:        amount,
		Checkpoint:    time.Unix(doc.Checkpoint, 0).UTC(),
		RatePerMinute: rate,
		Withdrawal:    engine.WithdrawalRequest{Amount: math.ZeroInt()},
	}

	if doc.Withdrawal != nil {
		withdrawalAmount, err := parseInt(doc.Withdrawal.Amount)
		if err != nil {
			return engine.UserSnapshot{}, fmt.Errorf("staker %s withdrawal: %w", doc.Address, err)
		}
		snapshot.Withdrawal = engine.WithdrawalRequest{
			Amount:    withdrawalAmount,
			Pending:   true,
			ReleaseAt: time.Unix(doc.Withdrawal.ReleaseAt, 0).UTC(),
		}
	}

	return snapshot, nil
}

func SnapshotFromGlobalStateDocument(doc *model.GlobalStateDocument) (engine.GlobalSnapshot, error) {
	rate, err := parseInt(doc.Rate)
	if err != nil {
		return engine.GlobalSnapshot{}, fmt.Errorf("global rate: %w", err)
	}
	totalStaked, err := parseInt(doc.TotalStaked)
	if err != nil {
		return engine.GlobalSnapshot{}, fmt.Errorf("global total staked: %w", err)
	}

	return engine.GlobalSnapshot{
		Owner:       doc.Owner,
		Rate:        rate,
		TotalStaked: totalStaked,
		StakeActive: doc.StakeActive,
	}, nil
}

func parseInt(s string) (math.Int, error) {
	v, ok := math.NewIntFromString(s)
	if !ok {
		return math.Int{}, fmt.Errorf("invalid integer value %q", s)
	}
	return v, nil
}
