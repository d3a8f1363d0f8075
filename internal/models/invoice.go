package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// DeferredInvoice is an invoice issued to a client, either synthesized at
// payment confirmation (already paid) or by the monthly deferred-billing
// sweep (pending). ArchivedAt is a soft-delete marker, never a hard delete.
type DeferredInvoice struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	TotalCents  int64
	Currency    string
	Status      InvoiceStatus
	IssuedAt    time.Time
	DueAt       time.Time
	PaidAt      sql.NullTime
	ArchivedAt  sql.NullTime
	CreatedAt   time.Time
}

// InvoiceItem is a single line on a deferred invoice. OrderID links the line
// back to the order it bills, when there is one.
type InvoiceItem struct {
	ID             uuid.UUID
	InvoiceID      uuid.UUID
	Description    string
	Quantity       int
	UnitPriceCents int64
	TotalCents     int64
	OrderID        uuid.NullUUID
	CreatedAt      time.Time
}
