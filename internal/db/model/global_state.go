package model

const GlobalStateCollection = "global_state"

// GlobalStateDocumentID is the fixed primary key of the singleton document.
const GlobalStateDocumentID = "global"

type GlobalStateDocument struct {
	ID          string `bson:"_id"`
	Owner       string `bson:"owner"`
	Rate        string `bson:"rate"`
	TotalStaked string `bson:"total_staked"`
	StakeActive bool   `bson:"stake_active"`
}
