package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Order is a retouching order. A completed order with AmountCents == 0 owned
// by a VIP deferred-billing profile is billed later by the monthly sweep;
// InvoicedAt being set excludes it from the sweep.
type Order struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	PhotoCount        int
	FreePhotosUsed    int
	AmountCents       int64
	Currency          string
	Status            OrderStatus
	Instructions      sql.NullString
	CheckoutSessionID sql.NullString
	CreatedAt         time.Time
	CompletedAt       sql.NullTime
	DeliveredAt       sql.NullTime
	InvoicedAt        sql.NullTime
}

// OrderFile is an uploaded original belonging to an order.
type OrderFile struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	UserID      uuid.UUID
	Filename    string
	StoragePath string
	StorageURL  string
	FileSize    sql.NullInt64
	MimeType    string
	CreatedAt   time.Time
}

// DeliveredFile is a retouched final uploaded by the studio for an order.
type DeliveredFile struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	UserID      uuid.UUID
	Filename    string
	StoragePath string
	StorageURL  string
	FileSize    sql.NullInt64
	MimeType    string
	CreatedAt   time.Time
}
