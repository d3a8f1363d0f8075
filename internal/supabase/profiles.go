package supabase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"retouchlab-backend/internal/models"
)

const profileColumns = `id, email, full_name, is_vip, deferred_billing, billing_name, billing_address,
	billing_city, billing_postal, billing_country, vat_number, admin_notes, created_at, updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }, p *models.Profile) error {
	return row.Scan(&p.ID, &p.Email, &p.FullName, &p.IsVIP, &p.DeferredBilling,
		&p.BillingName, &p.BillingAddress, &p.BillingCity, &p.BillingPostal,
		&p.BillingCountry, &p.VATNumber, &p.AdminNotes, &p.CreatedAt, &p.UpdatedAt)
}

func (d *DatabaseClient) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	row := d.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE id = $1
	`, userID)
	if err := scanProfile(row, &p); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// ListClients returns every profile with the aggregates the admin clients
// screen shows: order count, photos awaiting the sweep and the sum of
// outstanding invoices.
func (d *DatabaseClient) ListClients(ctx context.Context) ([]models.ClientSummary, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+profilePrefixedColumns+`,
			COALESCE(o.order_count, 0),
			COALESCE(o.unbilled_photos, 0),
			COALESCE(i.outstanding_cents, 0)
		FROM profiles p
		LEFT JOIN (
			SELECT user_id,
				COUNT(*) AS order_count,
				SUM(photo_count) FILTER (WHERE status = 'completed' AND amount_cents = 0 AND invoiced_at IS NULL) AS unbilled_photos
			FROM orders GROUP BY user_id
		) o ON o.user_id = p.id
		LEFT JOIN (
			SELECT user_id, SUM(total_cents) AS outstanding_cents
			FROM deferred_invoices
			WHERE status IN ('pending', 'overdue') AND archived_at IS NULL
			GROUP BY user_id
		) i ON i.user_id = p.id
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.ClientSummary
	for rows.Next() {
		var c models.ClientSummary
		if err := rows.Scan(&c.ID, &c.Email, &c.FullName, &c.IsVIP, &c.DeferredBilling,
			&c.BillingName, &c.BillingAddress, &c.BillingCity, &c.BillingPostal,
			&c.BillingCountry, &c.VATNumber, &c.AdminNotes, &c.CreatedAt, &c.UpdatedAt,
			&c.OrderCount, &c.UnbilledPhotos, &c.OutstandingCents); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

const profilePrefixedColumns = `p.id, p.email, p.full_name, p.is_vip, p.deferred_billing, p.billing_name,
	p.billing_address, p.billing_city, p.billing_postal, p.billing_country, p.vat_number, p.admin_notes,
	p.created_at, p.updated_at`

// UpdateClient applies the non-nil fields of the admin edit form.
func (d *DatabaseClient) UpdateClient(ctx context.Context, userID uuid.UUID, req *models.UpdateClientRequest) error {
	set := func(column string, value interface{}) error {
		_, err := d.db.ExecContext(ctx,
			fmt.Sprintf(`UPDATE profiles SET %s = $1, updated_at = NOW() WHERE id = $2`, column),
			value, userID)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", column, err)
		}
		return nil
	}

	if req.IsVIP != nil {
		if err := set("is_vip", *req.IsVIP); err != nil {
			return err
		}
	}
	if req.DeferredBilling != nil {
		if err := set("deferred_billing", *req.DeferredBilling); err != nil {
			return err
		}
	}
	if req.FullName != nil {
		if err := set("full_name", *req.FullName); err != nil {
			return err
		}
	}
	if req.BillingName != nil {
		if err := set("billing_name", *req.BillingName); err != nil {
			return err
		}
	}
	if req.BillingAddress != nil {
		if err := set("billing_address", *req.BillingAddress); err != nil {
			return err
		}
	}
	if req.BillingCity != nil {
		if err := set("billing_city", *req.BillingCity); err != nil {
			return err
		}
	}
	if req.BillingPostal != nil {
		if err := set("billing_postal", *req.BillingPostal); err != nil {
			return err
		}
	}
	if req.BillingCountry != nil {
		if err := set("billing_country", *req.BillingCountry); err != nil {
			return err
		}
	}
	if req.VATNumber != nil {
		if err := set("vat_number", *req.VATNumber); err != nil {
			return err
		}
	}
	if req.AdminNotes != nil {
		if err := set("admin_notes", *req.AdminNotes); err != nil {
			return err
		}
	}
	return nil
}
