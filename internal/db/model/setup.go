package model

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hydro-labs/hydro-staking-engine/internal/config"
)

// Setup applies the collection indexes. It is idempotent and safe to run on
// every service start.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() {
		_ = client.Disconnect(ctx)
	}()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	database := client.Database(cfg.DbName)

	// The release checker scans for matured, unnotified requests.
	userIndexes := database.Collection(UserCollection).Indexes()
	_, err = userIndexes.CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "withdrawal.release_at", Value: 1},
			{Key: "withdrawal.notified", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create withdrawal index: %w", err)
	}

	return nil
}
