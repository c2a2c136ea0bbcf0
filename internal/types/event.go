package types

type EventTypes string

func (e EventTypes) String() string {
	return string(e)
}

const (
	EventStaked              EventTypes = "hydro.staking.v1.EventStaked"
	EventRewardPaid          EventTypes = "hydro.staking.v1.EventRewardPaid"
	EventWithdrawalRequested EventTypes = "hydro.staking.v1.EventWithdrawalRequested"
	EventWithdrawalClaimable EventTypes = "hydro.staking.v1.EventWithdrawalClaimable"
	EventPrincipalClaimed    EventTypes = "hydro.staking.v1.EventPrincipalClaimed"
	EventRateChanged         EventTypes = "hydro.staking.v1.EventRateChanged"
	EventStakingPaused       EventTypes = "hydro.staking.v1.EventStakingPaused"
	EventStakingResumed      EventTypes = "hydro.staking.v1.EventStakingResumed"
)

// Event is the engine's outbound event envelope. Integer amounts are carried
// as decimal strings so consumers never lose precision on 1e18-scaled values.
type Event struct {
	ID        string     `json:"id"`
	Type      EventTypes `json:"type"`
	Staker    string     `json:"staker,omitempty"`
	Amount    string     `json:"amount,omitempty"`
	Rate      string     `json:"rate,omitempty"`
	ReleaseAt int64      `json:"release_at,omitempty"`
	Timestamp int64      `json:"timestamp"`
}
