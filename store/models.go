package store

import "time"

// Work types as stored on the profile.
const (
	WorkTypeEmployed     = "EMPLOYED"
	WorkTypeSelfEmployed = "SELF_EMPLOYED"
	WorkTypeBusiness     = "BUSINESS"
)

// Sync sources recorded on plan writes.
const (
	SyncSourceManual = "manual"
	SyncSourceReset  = "reset"
)

// User is the profile document. Field names match the mobile client's
// document schema, including the capitalized AiCredits/AiScanCount keys.
type User struct {
	ID              string     `bson:"_id"`
	Email           string     `bson:"email"`
	Name            string     `bson:"name"`
	Photo           string     `bson:"photo"`
	Plan            string     `bson:"plan"`
	AiCredits       int        `bson:"AiCredits"`
	AiScanCount     int        `bson:"AiScanCount"`
	ReferralCount   int        `bson:"referralCount"`
	ReferredBy      string     `bson:"referredBy,omitempty"`
	TermsAccepted   bool       `bson:"termsAccepted"`
	Jurisdiction    string     `bson:"jurisdiction,omitempty"`
	TaxBody         string     `bson:"taxBody,omitempty"`
	WorkType        string     `bson:"workType,omitempty"`
	FCMToken        string     `bson:"fcmToken,omitempty"`
	LastSyncAt      *time.Time `bson:"lastSyncAt,omitempty"`
	LastSyncSource  string     `bson:"lastSyncSource,omitempty"`
	LastWebhookType string     `bson:"lastWebhookType,omitempty"`
	LastResetAt     *time.Time `bson:"lastResetAt,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt"`
}

// Referral is an append-only audit record of a successful referral reward.
type Referral struct {
	ID           string    `bson:"_id"`
	InviterID    string    `bson:"inviterId"`
	InviteeID    string    `bson:"inviteeId"`
	InviteeEmail string    `bson:"inviteeEmail"`
	RewardAmount int       `bson:"rewardAmount"`
	Status       string    `bson:"status"`
	Type         string    `bson:"type"`
	Timestamp    time.Time `bson:"timestamp"`
}

// Referral record values; both sides of a referral receive the reward.
const (
	ReferralStatusCompleted = "completed"
	ReferralTypeDualReward  = "dual_reward"
)
