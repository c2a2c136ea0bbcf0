package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hydro-labs/hydro-staking-engine/internal/db/model"
)

func (db *Database) SaveGlobalState(ctx context.Context, state *model.GlobalStateDocument) error {
	state.ID = model.GlobalStateDocumentID

	filter := bson.M{"_id": model.GlobalStateDocumentID}
	update := bson.M{"$set": state}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.GlobalStateCollection).
		UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) GetGlobalState(ctx context.Context) (*model.GlobalStateDocument, error) {
	filter := bson.M{"_id": model.GlobalStateDocumentID}
	res := db.collection(model.GlobalStateCollection).
		FindOne(ctx, filter)

	var state model.GlobalStateDocument
	err := res.Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.GlobalStateDocumentID,
				Message: "global state not found",
			}
		}
		return nil, err
	}

	return &state, nil
}
