package model

const UserCollection = "user"

// UserDocument mirrors one engine user record. Amounts are stored as decimal
// strings so 1e18-scaled values survive the round trip untouched.
type UserDocument struct {
	Address       string              `bson:"_id"` // Primary key
	Amount        string              `bson:"amount"`
	Checkpoint    int64               `bson:"checkpoint"`
	RatePerMinute string              `bson:"rate_per_minute"`
	Withdrawal    *WithdrawalDocument `bson:"withdrawal,omitempty"`
}

// WithdrawalDocument is the queue-of-one pending withdrawal request.
type WithdrawalDocument struct {
	Amount    string `bson:"amount"`
	ReleaseAt int64  `bson:"release_at"`
	// Notified marks the request after the release checker has published a
	// claimable event for it.
	Notified bool `bson:"notified"`
}
