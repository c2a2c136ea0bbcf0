package db

import (
	"context"

	"github.com/hydro-labs/hydro-staking-engine/internal/db/model"
)

type DbInterface interface {
	Ping(ctx context.Context) error
	SaveUser(ctx context.Context, user *model.UserDocument) error
	GetUser(ctx context.Context, address string) (*model.UserDocument, error)
	GetAllUsers(ctx context.Context) ([]*model.UserDocument, error)
	SaveGlobalState(ctx context.Context, state *model.GlobalStateDocument) error
	GetGlobalState(ctx context.Context) (*model.GlobalStateDocument, error)
	// FindClaimableRequests returns stakers whose pending withdrawal matured
	// at or before now (unix seconds) and has not been notified yet.
	FindClaimableRequests(ctx context.Context, now int64, limit int64) ([]*model.UserDocument, error)
	MarkRequestNotified(ctx context.Context, address string) error
}
