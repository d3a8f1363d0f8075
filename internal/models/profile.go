package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Profile extends a Supabase auth user with billing data and the studio's
// per-client flags. The ID is the auth user id.
type Profile struct {
	ID              uuid.UUID
	Email           string
	FullName        sql.NullString
	IsVIP           bool
	DeferredBilling bool
	BillingName     sql.NullString
	BillingAddress  sql.NullString
	BillingCity     sql.NullString
	BillingPostal   sql.NullString
	BillingCountry  sql.NullString
	VATNumber       sql.NullString
	AdminNotes      sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ClientSummary is a profile with the order/invoice aggregates shown on the
// admin clients screen.
type ClientSummary struct {
	Profile
	OrderCount        int
	UnbilledPhotos    int
	OutstandingCents  int64
}
