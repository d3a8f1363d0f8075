package supabase

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"retouchlab-backend/internal/models"
)

const orderColumns = `id, user_id, photo_count, free_photos_used, amount_cents, currency,
	status, instructions, checkout_session_id, created_at, completed_at, delivered_at, invoiced_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.PhotoCount, &o.FreePhotosUsed, &o.AmountCents, &o.Currency,
		&o.Status, &o.Instructions, &o.CheckoutSessionID, &o.CreatedAt, &o.CompletedAt,
		&o.DeliveredAt, &o.InvoicedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (d *DatabaseClient) CreateOrder(ctx context.Context, o *models.Order) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, photo_count, free_photos_used, amount_cents, currency,
			status, instructions, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, o.ID, o.UserID, o.PhotoCount, o.FreePhotosUsed, o.AmountCents, o.Currency,
		o.Status, o.Instructions, o.CreatedAt, o.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2
	`, orderID, userID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// GetOrderByID fetches an order without an owner check. Used by the payment
// confirmation path, where the caller is identified by session metadata.
func (d *DatabaseClient) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1
	`, orderID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func (d *DatabaseClient) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (d *DatabaseClient) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (d *DatabaseClient) AttachCheckoutSession(ctx context.Context, orderID uuid.UUID, sessionID string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE orders SET checkout_session_id = $1 WHERE id = $2
	`, sessionID, orderID)
	if err != nil {
		return fmt.Errorf("failed to attach checkout session: %w", err)
	}
	return nil
}

func (d *DatabaseClient) CompleteOrder(ctx context.Context, orderID uuid.UUID, completedAt time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, completed_at = $2 WHERE id = $3
	`, models.OrderStatusCompleted, completedAt, orderID)
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
	}
	return nil
}

func (d *DatabaseClient) MarkOrderDelivered(ctx context.Context, orderID uuid.UUID, deliveredAt time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, delivered_at = $2 WHERE id = $3
	`, models.OrderStatusDelivered, deliveredAt, orderID)
	if err != nil {
		return fmt.Errorf("failed to mark order delivered: %w", err)
	}
	return nil
}

// ListUnbilledDeferredOrders returns completed zero-amount orders inside
// [from, to) whose owner has deferred billing enabled and that have not been
// swept into an invoice yet.
func (d *DatabaseClient) ListUnbilledDeferredOrders(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+orderPrefixedColumns+`
		FROM orders o
		JOIN profiles p ON p.id = o.user_id
		WHERE o.status = 'completed'
		  AND o.amount_cents = 0
		  AND o.invoiced_at IS NULL
		  AND o.completed_at >= $1 AND o.completed_at < $2
		  AND p.deferred_billing = TRUE
		ORDER BY o.user_id, o.completed_at
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list unbilled orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

const orderPrefixedColumns = `o.id, o.user_id, o.photo_count, o.free_photos_used, o.amount_cents, o.currency,
	o.status, o.instructions, o.checkout_session_id, o.created_at, o.completed_at, o.delivered_at, o.invoiced_at`

func (d *DatabaseClient) CreateOrderFile(ctx context.Context, file *models.OrderFile) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO order_files (id, order_id, user_id, filename, storage_path, storage_url, file_size, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, file.ID, file.OrderID, file.UserID, file.Filename, file.StoragePath, file.StorageURL,
		file.FileSize, file.MimeType)
	if err != nil {
		return fmt.Errorf("failed to create order file: %w", err)
	}
	return nil
}

func (d *DatabaseClient) CreateDeliveredFile(ctx context.Context, file *models.DeliveredFile) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO delivered_files (id, order_id, user_id, filename, storage_path, storage_url, file_size, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, file.ID, file.OrderID, file.UserID, file.Filename, file.StoragePath, file.StorageURL,
		file.FileSize, file.MimeType)
	if err != nil {
		return fmt.Errorf("failed to create delivered file: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetOrderFiles(ctx context.Context, orderID uuid.UUID) ([]models.OrderFile, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, order_id, user_id, filename, storage_path, storage_url, file_size, mime_type, created_at
		FROM order_files WHERE order_id = $1 ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order files: %w", err)
	}
	defer rows.Close()

	var files []models.OrderFile
	for rows.Next() {
		var f models.OrderFile
		if err := rows.Scan(&f.ID, &f.OrderID, &f.UserID, &f.Filename, &f.StoragePath,
			&f.StorageURL, &f.FileSize, &f.MimeType, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (d *DatabaseClient) GetDeliveredFiles(ctx context.Context, orderID uuid.UUID) ([]models.DeliveredFile, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, order_id, user_id, filename, storage_path, storage_url, file_size, mime_type, created_at
		FROM delivered_files WHERE order_id = $1 ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivered files: %w", err)
	}
	defer rows.Close()

	var files []models.DeliveredFile
	for rows.Next() {
		var f models.DeliveredFile
		if err := rows.Scan(&f.ID, &f.OrderID, &f.UserID, &f.Filename, &f.StoragePath,
			&f.StorageURL, &f.FileSize, &f.MimeType, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
