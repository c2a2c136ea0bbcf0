package db

import (
	"context"
	"time"

	"github.com/hydro-labs/hydro-staking-engine/internal/db/model"
	"github.com/hydro-labs/hydro-staking-engine/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SaveUser(ctx context.Context, user *model.UserDocument) error {
	return d.run("SaveUser", func() error {
		return d.db.SaveUser(ctx, user)
	})
}

func (d *DbWithMetrics) GetUser(ctx context.Context, address string) (result *model.UserDocument, err error) {
	//nolint:errcheck
	d.run("GetUser", func() error {
		result, err = d.db.GetUser(ctx, address)
		return err
	})
	return
}

func (d *DbWithMetrics) GetAllUsers(ctx context.Context) (result []*model.UserDocument, err error) {
	//nolint:errcheck
	d.run("GetAllUsers", func() error {
		result, err = d.db.GetAllUsers(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) SaveGlobalState(ctx context.Context, state *model.GlobalStateDocument) error {
	return d.run("SaveGlobalState", func() error {
		return d.db.SaveGlobalState(ctx, state)
	})
}

func (d *DbWithMetrics) GetGlobalState(ctx context.Context) (result *model.GlobalStateDocument, err error) {
	//nolint:errcheck
	d.run("GetGlobalState", func() error {
		result, err = d.db.GetGlobalState(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) FindClaimableRequests(ctx context.Context, now int64, limit int64) (result []*model.UserDocument, err error) {
	//nolint:errcheck
	d.run("FindClaimableRequests", func() error {
		result, err = d.db.FindClaimableRequests(ctx, now, limit)
		return err
	})
	return
}

func (d *DbWithMetrics) MarkRequestNotified(ctx context.Context, address string) error {
	return d.run("MarkRequestNotified", func() error {
		return d.db.MarkRequestNotified(ctx, address)
	})
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and an error if any. It returns the error from the lambda function for convenience
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	outcome := metrics.Success
	if err != nil {
		outcome = metrics.Error
	}
	metrics.RecordDbLatency(method, outcome, duration)
	return err
}
