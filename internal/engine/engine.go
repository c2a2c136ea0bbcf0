// Package engine implements the Hydro staking engine: per-user stake records
// accruing KVS rewards at a per-user frozen rate, a global time-decaying rate
// parameter, and a time-delayed withdrawal queue-of-one per user. The engine
// is the ledger of record; the store and event sink are mirrors.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/hydro-labs/hydro-staking-engine/internal/ledger"
	"github.com/hydro-labs/hydro-staking-engine/internal/observability/metrics"
	"github.com/hydro-labs/hydro-staking-engine/internal/types"
	"github.com/hydro-labs/hydro-staking-engine/pkg"
)

// maxAmountBits bounds every accepted amount and rate. Wider values are
// rejected rather than wrapped or silently truncated.
const maxAmountBits = 128

// Params are the engine's global constants.
type Params struct {
	// MaxRate is the ceiling for the decaying reward rate, in reward units
	// per staked-token-unit per minute, scaled by 1e18.
	MaxRate math.Int

	// RateStep is the fixed decrement/increment applied per rate-sync event.
	RateStep math.Int

	// RewardDivisor normalizes the per-minute rate into an annualized
	// percentage for the APY view.
	RewardDivisor math.Int

	// WithdrawalDelay is the time a withdrawal request must age before the
	// principal can be claimed.
	WithdrawalDelay time.Duration
}

func (p Params) Validate() error {
	if p.MaxRate.IsNil() || !p.MaxRate.IsPositive() || p.MaxRate.BigInt().BitLen() > maxAmountBits {
		return errors.New("max rate must be positive and within range")
	}
	if p.RateStep.IsNil() || !p.RateStep.IsPositive() || p.RateStep.GT(p.MaxRate) {
		return errors.New("rate step must be positive and not exceed max rate")
	}
	if p.RewardDivisor.IsNil() || !p.RewardDivisor.IsPositive() {
		return errors.New("reward divisor must be positive")
	}
	if p.WithdrawalDelay <= 0 {
		return errors.New("withdrawal delay must be positive")
	}
	return nil
}

// EventSink receives engine events after the state change they describe has
// been committed.
type EventSink interface {
	Publish(ctx context.Context, event types.Event) error
}

// Store mirrors committed engine state to durable storage.
type Store interface {
	SaveUser(ctx context.Context, user UserSnapshot) error
	SaveGlobalState(ctx context.Context, state GlobalSnapshot) error
}

// Config wires an Engine to its collaborators.
type Config struct {
	// Owner is the administrator account.
	Owner string

	// Account is the engine's own account on the token ledgers; staked
	// principal is pulled into it and rewards are paid out of it.
	Account string

	Params Params

	StakeToken  ledger.TokenLedger
	RewardToken ledger.TokenLedger
	Collection  ledger.CollectionOracle

	// StakeActive is the initial state of the staking gate.
	StakeActive bool

	// Clock defaults to the real clock when nil.
	Clock clockwork.Clock

	// Sink and Store are optional mirrors.
	Sink  EventSink
	Store Store
}

func (cfg *Config) Validate() error {
	if err := pkg.ValidateAddress(cfg.Owner); err != nil {
		return err
	}
	if err := pkg.ValidateAddress(cfg.Account); err != nil {
		return err
	}
	if cfg.StakeToken == nil {
		return errors.New("stake token ledger is required")
	}
	if cfg.RewardToken == nil {
		return errors.New("reward token ledger is required")
	}
	if cfg.Collection == nil {
		return errors.New("collection oracle is required")
	}
	return cfg.Params.Validate()
}

// Engine holds all staking state. Every state-changing operation executes
// under a single mutex, so concurrent calls observe a single serialized
// stream of mutations.
type Engine struct {
	mu    sync.RWMutex
	guard reentrancyGuard

	params      Params
	account     string
	stakeToken  ledger.TokenLedger
	rewardToken ledger.TokenLedger
	collection  ledger.CollectionOracle
	clock       clockwork.Clock
	sink        EventSink
	store       Store

	owner       string
	rate        math.Int
	totalStaked math.Int
	active      bool
	users       map[string]*userRecord
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &Engine{
		params:      cfg.Params,
		account:     pkg.NormalizeAddress(cfg.Account),
		stakeToken:  cfg.StakeToken,
		rewardToken: cfg.RewardToken,
		collection:  cfg.Collection,
		clock:       cfg.Clock,
		sink:        cfg.Sink,
		store:       cfg.Store,
		owner:       pkg.NormalizeAddress(cfg.Owner),
		rate:        cfg.Params.MaxRate,
		totalStaked: math.ZeroInt(),
		active:      cfg.StakeActive,
		users:       make(map[string]*userRecord),
	}, nil
}

// Restore replaces engine state with previously persisted snapshots. It is
// meant for bootstrap, before the engine starts serving operations.
func (e *Engine) Restore(global GlobalSnapshot, users []UserSnapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if global.Rate.IsNil() || global.Rate.IsNegative() || global.Rate.GT(e.params.MaxRate) {
		return types.ErrRateOutOfRange
	}

	restored := make(map[string]*userRecord, len(users))
	total := math.ZeroInt()
	for _, u := range users {
		if err := pkg.ValidateAddress(u.Address); err != nil {
			return err
		}
		restored[pkg.NormalizeAddress(u.Address)] = recordFromSnapshot(u)
		total = total.Add(u.Amount)
	}
	if !total.Equal(global.TotalStaked) {
		return types.ErrCorruptedState
	}

	e.owner = pkg.NormalizeAddress(global.Owner)
	e.rate = global.Rate
	e.totalStaked = global.TotalStaked
	e.active = global.StakeActive
	e.users = restored

	return nil
}

// user returns the caller's record, creating a zero-valued one lazily.
func (e *Engine) user(address string) *userRecord {
	u, ok := e.users[address]
	if !ok {
		u = newUserRecord()
		e.users[address] = u
	}
	return u
}

// validAmount rejects nil, non-positive and out-of-range amounts.
func validAmount(amount math.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount
	}
	if amount.BigInt().BitLen() > maxAmountBits {
		return types.ErrAmountOutOfRange
	}
	return nil
}

// emit publishes an event to the sink. The state change is already committed
// at this point, so sink failures are logged, not propagated.
func (e *Engine) emit(ctx context.Context, event types.Event) {
	if e.sink == nil {
		return
	}

	event.ID = uuid.NewString()
	event.Timestamp = e.clock.Now().Unix()
	if err := e.sink.Publish(ctx, event); err != nil {
		log.Error().Err(err).Str("type", event.Type.String()).Msg("failed to publish engine event")
	}
}

// persistUser mirrors a user record to the store.
func (e *Engine) persistUser(ctx context.Context, address string) {
	if e.store == nil {
		return
	}

	if err := e.store.SaveUser(ctx, e.users[address].snapshot(address)); err != nil {
		log.Error().Err(err).Str("staker", address).Msg("failed to persist user record")
	}
}

// persistGlobal mirrors global state to the store and refreshes the gauges.
func (e *Engine) persistGlobal(ctx context.Context) {
	metrics.SetTotalStaked(e.totalStaked)
	metrics.SetCurrentRate(e.rate)

	if e.store == nil {
		return
	}

	state := GlobalSnapshot{
		Owner:       e.owner,
		Rate:        e.rate,
		TotalStaked: e.totalStaked,
		StakeActive: e.active,
	}
	if err := e.store.SaveGlobalState(ctx, state); err != nil {
		log.Error().Err(err).Msg("failed to persist global state")
	}
}

// PersistInitialState writes the engine's starting state to the store. Unlike
// the post-commit mirrors it propagates store failures, so a fresh deployment
// fails loudly instead of running without its read model.
func (e *Engine) PersistInitialState(ctx context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.store == nil {
		return nil
	}

	return e.store.SaveGlobalState(ctx, GlobalSnapshot{
		Owner:       e.owner,
		Rate:        e.rate,
		TotalStaked: e.totalStaked,
		StakeActive: e.active,
	})
}
