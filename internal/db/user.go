package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hydro-labs/hydro-staking-engine/internal/db/model"
)

// SaveUser upserts the staker document. The engine is the ledger of record,
// so the latest snapshot always wins. A nil withdrawal must unset the stored
// subdocument, a plain $set would leave the claimed request behind.
func (db *Database) SaveUser(ctx context.Context, user *model.UserDocument) error {
	filter := bson.M{"_id": user.Address}
	update := bson.M{"$set": user}
	if user.Withdrawal == nil {
		update["$unset"] = bson.M{"withdrawal": ""}
	}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.UserCollection).
		UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) GetUser(ctx context.Context, address string) (*model.UserDocument, error) {
	filter := bson.M{"_id": address}
	res := db.collection(model.UserCollection).
		FindOne(ctx, filter)

	var user model.UserDocument
	err := res.Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     address,
				Message: "staker not found",
			}
		}
		return nil, err
	}

	return &user, nil
}

func (db *Database) GetAllUsers(ctx context.Context) ([]*model.UserDocument, error) {
	cursor, err := db.collection(model.UserCollection).
		Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*model.UserDocument
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (db *Database) FindClaimableRequests(ctx context.Context, now int64, limit int64) ([]*model.UserDocument, error) {
	filter := bson.M{
		"withdrawal.release_at": bson.M{"$lte": now},
		"withdrawal.notified":   false,
	}
	opts := options.Find().SetLimit(limit)

	cursor, err := db.collection(model.UserCollection).
		Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*model.UserDocument
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (db *Database) MarkRequestNotified(ctx context.Context, address string) error {
	filter := bson.M{
		"_id":        address,
		"withdrawal": bson.M{"$ne": nil},
	}
	update := bson.M{
		"$set": bson.M{"withdrawal.notified": true},
	}

	res := db.collection(model.UserCollection).
		FindOneAndUpdate(ctx, filter, update)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return &NotFoundError{
				Key:     address,
				Message: "staker has no pending withdrawal",
			}
		}
		return res.Err()
	}

	return nil
}
