package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

// RealtimeClient publishes order lifecycle events that the client app
// subscribes to. Database updates trigger Supabase Realtime on their own;
// these explicit events carry presentation payloads the rows do not.
type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Go client has no direct Realtime publish; row changes on orders and
	// deferred_invoices reach subscribers through postgres_changes. Kept as
	// the single seam for explicit broadcasts if the REST endpoint is wired.
	return nil
}

func (r *RealtimeClient) PublishUserEvent(userID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("user:%s", userID.String())
	return r.PublishEvent(channel, event, payload)
}

// Event payloads

func OrderCompletedPayload(orderID uuid.UUID, amountCents int64) map[string]interface{} {
	return map[string]interface{}{
		"order_id":     orderID.String(),
		"status":       "completed",
		"amount_cents": amountCents,
	}
}

func OrderDeliveredPayload(orderID uuid.UUID, fileCount int) map[string]interface{} {
	return map[string]interface{}{
		"order_id":   orderID.String(),
		"status":     "delivered",
		"file_count": fileCount,
	}
}

func InvoiceIssuedPayload(invoiceID uuid.UUID, totalCents int64) map[string]interface{} {
	return map[string]interface{}{
		"invoice_id":  invoiceID.String(),
		"status":      "pending",
		"total_cents": totalCents,
	}
}
