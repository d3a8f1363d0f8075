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
	ErrReferralCodeNotFound = errors.New("referral code not found")
	ErrSelfReferral         = errors.New("cannot apply your own referral code")
	ErrAlreadyReferred      = errors.New("user was already referred")
)

// GetOrCreateReferralCode returns the user's shareable code, minting one on
// first request.
func (d *DatabaseClient) GetOrCreateReferralCode(ctx context.Context, userID uuid.UUID, code string, rewardCents int64) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	err := d.db.QueryRowContext(ctx, `
		SELECT id, user_id, code, reward_cents, created_at FROM referral_codes WHERE user_id = $1
	`, userID).Scan(&rc.ID, &rc.UserID, &rc.Code, &rc.RewardCents, &rc.CreatedAt)
	if err == nil {
		return &rc, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get referral code: %w", err)
	}

	rc = models.ReferralCode{
		ID:          uuid.New(),
		UserID:      userID,
		Code:        code,
		RewardCents: rewardCents,
		CreatedAt:   time.Now(),
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO referral_codes (id, user_id, code, reward_cents, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rc.ID, rc.UserID, rc.Code, rc.RewardCents, rc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create referral code: %w", err)
	}
	return &rc, nil
}

// ApplyReferralCode links the referred user to the code owner. A user can be
// referred once; applying your own code is rejected.
func (d *DatabaseClient) ApplyReferralCode(ctx context.Context, referredID uuid.UUID, code string) (*models.Referral, error) {
	var referral *models.Referral
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var rc models.ReferralCode
		err := tx.QueryRowContext(ctx, `
			SELECT id, user_id, code, reward_cents, created_at FROM referral_codes WHERE code = $1
		`, code).Scan(&rc.ID, &rc.UserID, &rc.Code, &rc.RewardCents, &rc.CreatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReferralCodeNotFound
			}
			return fmt.Errorf("failed to look up referral code: %w", err)
		}

		if rc.UserID == referredID {
			return ErrSelfReferral
		}

		var already int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM referrals WHERE referred_id = $1
		`, referredID).Scan(&already)
		if err != nil {
			return fmt.Errorf("failed to check referral: %w", err)
		}
		if already > 0 {
			return ErrAlreadyReferred
		}

		r := &models.Referral{
			ID:          uuid.New(),
			ReferrerID:  rc.UserID,
			ReferredID:  referredID,
			Code:        rc.Code,
			RewardCents: rc.RewardCents,
			CreatedAt:   time.Now(),
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO referrals (id, referrer_id, referred_id, code, reward_cents, reward_paid, created_at)
			VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		`, r.ID, r.ReferrerID, r.ReferredID, r.Code, r.RewardCents, r.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create referral: %w", err)
		}

		referral = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return referral, nil
}

func (d *DatabaseClient) ListReferrals(ctx context.Context) ([]models.Referral, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, referrer_id, referred_id, code, reward_cents, reward_paid, created_at
		FROM referrals ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	defer rows.Close()

	var referrals []models.Referral
	for rows.Next() {
		var r models.Referral
		if err := rows.Scan(&r.ID, &r.ReferrerID, &r.ReferredID, &r.Code,
			&r.RewardCents, &r.RewardPaid, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		referrals = append(referrals, r)
	}
	return referrals, rows.Err()
}

func (d *DatabaseClient) MarkReferralPaid(ctx context.Context, referralID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE referrals SET reward_paid = TRUE WHERE id = $1
	`, referralID)
	if err != nil {
		return fmt.Errorf("failed to mark referral paid: %w", err)
	}
	return nil
}
