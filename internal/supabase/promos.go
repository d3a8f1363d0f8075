package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"retouchlab-backend/internal/models"
)

var (
	ErrPromoNotAvailable  = errors.New("promo code not available")
	ErrPromoAlreadyUsed   = errors.New("promo code already redeemed by this user")
	ErrInsufficientCredit = errors.New("not enough promo credits")
)

const promoColumns = `id, code, photos_per_redemption, pool_total, pool_remaining, active, expires_at, created_at`

func (d *DatabaseClient) CreatePromoCode(ctx context.Context, p *models.PromoCode) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO promo_codes (id, code, photos_per_redemption, pool_total, pool_remaining, active, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Code, p.PhotosPerRedemption, p.PoolTotal, p.PoolRemaining, p.Active, p.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListPromoCodes(ctx context.Context) ([]models.PromoCode, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+promoColumns+` FROM promo_codes ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	defer rows.Close()

	var codes []models.PromoCode
	for rows.Next() {
		var p models.PromoCode
		if err := rows.Scan(&p.ID, &p.Code, &p.PhotosPerRedemption, &p.PoolTotal,
			&p.PoolRemaining, &p.Active, &p.ExpiresAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		codes = append(codes, p)
	}
	return codes, rows.Err()
}

func (d *DatabaseClient) UpdatePromoCode(ctx context.Context, id uuid.UUID, active *bool, poolRemaining *int) error {
	if active != nil {
		if _, err := d.db.ExecContext(ctx,
			`UPDATE promo_codes SET active = $1 WHERE id = $2`, *active, id); err != nil {
			return fmt.Errorf("failed to update promo code: %w", err)
		}
	}
	if poolRemaining != nil {
		if _, err := d.db.ExecContext(ctx,
			`UPDATE promo_codes SET pool_remaining = $1 WHERE id = $2`, *poolRemaining, id); err != nil {
			return fmt.Errorf("failed to update promo code: %w", err)
		}
	}
	return nil
}

func (d *DatabaseClient) DeletePromoCode(ctx context.Context, id uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM promo_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete promo code: %w", err)
	}
	return nil
}

// RedeemPromoCode grants the code's per-redemption photos to the user, drawing
// them from the code's pool. One redemption per user per code.
func (d *DatabaseClient) RedeemPromoCode(ctx context.Context, userID uuid.UUID, code string) (*models.UserPromoUsage, error) {
	var usage *models.UserPromoUsage
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var p models.PromoCode
		err := tx.QueryRowContext(ctx, `
			SELECT `+promoColumns+` FROM promo_codes WHERE code = $1 FOR UPDATE
		`, code).Scan(&p.ID, &p.Code, &p.PhotosPerRedemption, &p.PoolTotal,
			&p.PoolRemaining, &p.Active, &p.ExpiresAt, &p.CreatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPromoNotAvailable
			}
			return fmt.Errorf("failed to look up promo code: %w", err)
		}

		if !p.Active || p.PoolRemaining < p.PhotosPerRedemption {
			return ErrPromoNotAvailable
		}
		if p.ExpiresAt.Valid && p.ExpiresAt.Time.Before(time.Now()) {
			return ErrPromoNotAvailable
		}

		var already int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM user_promo_usage WHERE user_id = $1 AND promo_code_id = $2
		`, userID, p.ID).Scan(&already)
		if err != nil {
			return fmt.Errorf("failed to check redemption: %w", err)
		}
		if already > 0 {
			return ErrPromoAlreadyUsed
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE promo_codes SET pool_remaining = pool_remaining - $1 WHERE id = $2
		`, p.PhotosPerRedemption, p.ID); err != nil {
			return fmt.Errorf("failed to draw from pool: %w", err)
		}

		u := &models.UserPromoUsage{
			ID:              uuid.New(),
			UserID:          userID,
			PromoCodeID:     p.ID,
			PhotosGranted:   p.PhotosPerRedemption,
			PhotosRemaining: p.PhotosPerRedemption,
			CreatedAt:       time.Now(),
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_promo_usage (id, user_id, promo_code_id, photos_granted, photos_remaining, photos_used, created_at)
			VALUES ($1, $2, $3, $4, $5, 0, $6)
		`, u.ID, u.UserID, u.PromoCodeID, u.PhotosGranted, u.PhotosRemaining, u.CreatedAt); err != nil {
			return fmt.Errorf("failed to record redemption: %w", err)
		}

		usage = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return usage, nil
}

// AvailablePromoPhotos is the user's free-photo balance across all grants.
func (d *DatabaseClient) AvailablePromoPhotos(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := d.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(photos_remaining), 0) FROM user_promo_usage WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum promo credits: %w", err)
	}
	return total, nil
}

// ConsumePromoCredits deducts photos from the user's grants, oldest grant
// first, inside one transaction.
func (d *DatabaseClient) ConsumePromoCredits(ctx context.Context, userID uuid.UUID, photos int) error {
	if photos <= 0 {
		return nil
	}
	return d.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, photos_remaining FROM user_promo_usage
			WHERE user_id = $1 AND photos_remaining > 0
			ORDER BY created_at
			FOR UPDATE
		`, userID)
		if err != nil {
			return fmt.Errorf("failed to load promo grants: %w", err)
		}

		type grant struct {
			id        uuid.UUID
			remaining int
		}
		var grants []grant
		for rows.Next() {
			var g grant
			if err := rows.Scan(&g.id, &g.remaining); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan promo grant: %w", err)
			}
			grants = append(grants, g)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to load promo grants: %w", err)
		}

		left := photos
		for _, g := range grants {
			if left == 0 {
				break
			}
			take := g.remaining
			if take > left {
				take = left
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE user_promo_usage
				SET photos_remaining = photos_remaining - $1, photos_used = photos_used + $1
				WHERE id = $2
			`, take, g.id); err != nil {
				return fmt.Errorf("failed to consume promo credits: %w", err)
			}
			left -= take
		}

		if left > 0 {
			return ErrInsufficientCredit
		}
		return nil
	})
}
