package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// PromoCode is a redeemable pool of free photos. Each redemption grants
// PhotosPerRedemption to the redeeming user and draws them from the pool.
type PromoCode struct {
	ID                  uuid.UUID
	Code                string
	PhotosPerRedemption int
	PoolTotal           int
	PoolRemaining       int
	Active              bool
	ExpiresAt           sql.NullTime
	CreatedAt           time.Time
}

// UserPromoUsage is one user's credit balance from a single redemption.
// Credits are consumed oldest grant first.
type UserPromoUsage struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	PromoCodeID     uuid.UUID
	PhotosGranted   int
	PhotosRemaining int
	PhotosUsed      int
	CreatedAt       time.Time
}
