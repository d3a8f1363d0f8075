package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"retouchlab-backend/internal/models"
)

var ErrInvoiceNotArchived = errors.New("invoice is not archived")

const invoiceColumns = `id, user_id, total_cents, currency, status, issued_at, due_at, paid_at, archived_at, created_at`

func scanInvoice(row interface{ Scan(...interface{}) error }) (*models.DeferredInvoice, error) {
	var inv models.DeferredInvoice
	err := row.Scan(&inv.ID, &inv.UserID, &inv.TotalCents, &inv.Currency, &inv.Status,
		&inv.IssuedAt, &inv.DueAt, &inv.PaidAt, &inv.ArchivedAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateInvoiceWithItems inserts an invoice and its items in one transaction
// and stamps invoiced_at on every order an item references, guarded by
// invoiced_at IS NULL so an order can never be billed twice. A crash cannot
// leave an invoice without items or a stamped order without an invoice.
func (d *DatabaseClient) CreateInvoiceWithItems(ctx context.Context, inv *models.DeferredInvoice, items []models.InvoiceItem) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO deferred_invoices (id, user_id, total_cents, currency, status, issued_at, due_at, paid_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, inv.ID, inv.UserID, inv.TotalCents, inv.Currency, inv.Status, inv.IssuedAt, inv.DueAt, inv.PaidAt)
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		for _, item := range items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO invoice_items (id, invoice_id, description, quantity, unit_price_cents, total_cents, order_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, item.ID, inv.ID, item.Description, item.Quantity, item.UnitPriceCents, item.TotalCents, item.OrderID)
			if err != nil {
				return fmt.Errorf("failed to create invoice item: %w", err)
			}

			if item.OrderID.Valid {
				res, err := tx.ExecContext(ctx, `
					UPDATE orders SET invoiced_at = $1 WHERE id = $2 AND invoiced_at IS NULL
				`, inv.IssuedAt, item.OrderID.UUID)
				if err != nil {
					return fmt.Errorf("failed to stamp order: %w", err)
				}
				affected, err := res.RowsAffected()
				if err != nil {
					return fmt.Errorf("failed to stamp order: %w", err)
				}
				if affected == 0 {
					return fmt.Errorf("order %s already invoiced", item.OrderID.UUID)
				}
			}
		}

		return nil
	})
}

func (d *DatabaseClient) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.DeferredInvoice, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+` FROM deferred_invoices WHERE id = $1
	`, invoiceID)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return inv, nil
}

// ListInvoicesByUser returns a client's non-archived invoices.
func (d *DatabaseClient) ListInvoicesByUser(ctx context.Context, userID uuid.UUID) ([]models.DeferredInvoice, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+` FROM deferred_invoices
		WHERE user_id = $1 AND archived_at IS NULL
		ORDER BY issued_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// ListAllInvoices returns every invoice; archived ones only when asked, which
// is what backs the admin trash screen.
func (d *DatabaseClient) ListAllInvoices(ctx context.Context, archived bool) ([]models.DeferredInvoice, error) {
	clause := "archived_at IS NULL"
	if archived {
		clause = "archived_at IS NOT NULL"
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+` FROM deferred_invoices
		WHERE `+clause+`
		ORDER BY issued_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	return collectInvoices(rows)
}

func collectInvoices(rows *sql.Rows) ([]models.DeferredInvoice, error) {
	var invoices []models.DeferredInvoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (d *DatabaseClient) GetInvoiceItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceItem, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, invoice_id, description, quantity, unit_price_cents, total_cents, order_id, created_at
		FROM invoice_items WHERE invoice_id = $1 ORDER BY created_at
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice items: %w", err)
	}
	defer rows.Close()

	var items []models.InvoiceItem
	for rows.Next() {
		var item models.InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity,
			&item.UnitPriceCents, &item.TotalCents, &item.OrderID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (d *DatabaseClient) MarkInvoicePaid(ctx context.Context, invoiceID uuid.UUID, paidAt time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE deferred_invoices SET status = $1, paid_at = $2 WHERE id = $3
	`, models.InvoiceStatusPaid, paidAt, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	return nil
}

func (d *DatabaseClient) MarkInvoiceOverdue(ctx context.Context, invoiceID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE deferred_invoices SET status = $1 WHERE id = $2 AND status = 'pending'
	`, models.InvoiceStatusOverdue, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to mark invoice overdue: %w", err)
	}
	return nil
}

// ArchiveInvoice soft-deletes; the row stays for the trash screen.
func (d *DatabaseClient) ArchiveInvoice(ctx context.Context, invoiceID uuid.UUID, archivedAt time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE deferred_invoices SET archived_at = $1 WHERE id = $2 AND archived_at IS NULL
	`, archivedAt, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to archive invoice: %w", err)
	}
	return nil
}

func (d *DatabaseClient) RestoreInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE deferred_invoices SET archived_at = NULL WHERE id = $1
	`, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to restore invoice: %w", err)
	}
	return nil
}

// DeleteArchivedInvoice hard-deletes an invoice from the trash. It refuses to
// delete an invoice that has not been archived first.
func (d *DatabaseClient) DeleteArchivedInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	res, err := d.db.ExecContext(ctx, `
		DELETE FROM deferred_invoices WHERE id = $1 AND archived_at IS NOT NULL
	`, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if affected == 0 {
		return ErrInvoiceNotArchived
	}
	return nil
}

// ResetDeferredBilling clears invoiced_at on a user's swept orders inside
// [from, to) and archives the pending sweep invoices those orders were billed
// on, so the sweep can be re-run after a correction. Returns the number of
// orders released.
func (d *DatabaseClient) ResetDeferredBilling(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	var released int64
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id FROM orders
			WHERE user_id = $1 AND status = 'completed' AND amount_cents = 0
			  AND completed_at >= $2 AND completed_at < $3 AND invoiced_at IS NOT NULL
			FOR UPDATE
		`, userID, from, to)
		if err != nil {
			return fmt.Errorf("failed to select swept orders: %w", err)
		}
		var orderIDs []uuid.UUID
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan order id: %w", err)
			}
			orderIDs = append(orderIDs, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to select swept orders: %w", err)
		}
		if len(orderIDs) == 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE deferred_invoices SET archived_at = NOW()
			WHERE user_id = $1 AND status = 'pending' AND archived_at IS NULL
			  AND id IN (SELECT invoice_id FROM invoice_items WHERE order_id = ANY($2))
		`, userID, pq.Array(orderIDs))
		if err != nil {
			return fmt.Errorf("failed to archive invoices: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE orders SET invoiced_at = NULL WHERE id = ANY($1)
		`, pq.Array(orderIDs))
		if err != nil {
			return fmt.Errorf("failed to release orders: %w", err)
		}
		released, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to release orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}
