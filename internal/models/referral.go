package models

import (
	"time"

	"github.com/google/uuid"
)

// ReferralCode is a client's shareable code. One code per profile.
type ReferralCode struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Code        string
	RewardCents int64
	CreatedAt   time.Time
}

// Referral links a referrer to the client they brought in, with the reward
// owed to the referrer and whether it has been paid out.
type Referral struct {
	ID          uuid.UUID
	ReferrerID  uuid.UUID
	ReferredID  uuid.UUID
	Code        string
	RewardCents int64
	RewardPaid  bool
	CreatedAt   time.Time
}
