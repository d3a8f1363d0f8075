package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"retouchlab-backend/internal/models"
	"retouchlab-backend/internal/payments"
	"retouchlab-backend/internal/supabase"
)

var (
	ErrNoPhotos       = errors.New("order must contain at least one photo")
	ErrSessionNotPaid = errors.New("checkout session is not paid")
	ErrBadSession     = errors.New("checkout session metadata is invalid")
)

// Store is the slice of the database layer the billing flow uses.
type Store interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetPricing(ctx context.Context) (*models.PricingSettings, error)
	AvailablePromoPhotos(ctx context.Context, userID uuid.UUID) (int, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	CompleteOrder(ctx context.Context, orderID uuid.UUID, completedAt time.Time) error
	AttachCheckoutSession(ctx context.Context, orderID uuid.UUID, sessionID string) error
	ConsumePromoCredits(ctx context.Context, userID uuid.UUID, photos int) error
	CreateInvoiceWithItems(ctx context.Context, inv *models.DeferredInvoice, items []models.InvoiceItem) error
}

type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, p payments.CheckoutParams) (*payments.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*payments.CheckoutSession, error)
}

type Notifier interface {
	OrderPaid(ctx context.Context, email string, orderID string, photoCount int, amountCents int64, currency string) error
}

type Publisher interface {
	PublishUserEvent(userID uuid.UUID, event string, payload map[string]interface{}) error
}

type BillingService struct {
	store    Store
	payments PaymentProvider
	notifier Notifier
	realtime Publisher
	logger   *zap.SugaredLogger
}

func NewBillingService(store Store, provider PaymentProvider, notifier Notifier, realtime Publisher, logger *zap.SugaredLogger) *BillingService {
	return &BillingService{
		store:    store,
		payments: provider,
		notifier: notifier,
		realtime: realtime,
		logger:   logger,
	}
}

// GateResult is the payment-gate decision for a new order.
type GateResult struct {
	Order       *models.Order
	CheckoutURL string
}

// PaymentRequired reports whether the client must be redirected to checkout.
func (r *GateResult) PaymentRequired() bool {
	return r.CheckoutURL != ""
}

// CreateOrder runs the payment gate. VIP clients with deferred billing get a
// completed zero-amount order billed by the monthly sweep (unless
// forcePayment makes them pay like everyone else). Everyone else is charged
// photo count minus available promo credits at the current price per photo;
// a fully covered order completes immediately, otherwise a checkout session
// is created and its URL returned.
func (s *BillingService) CreateOrder(ctx context.Context, userID uuid.UUID, photoCount int, instructions string, forcePayment bool) (*GateResult, error) {
	if photoCount <= 0 {
		return nil, ErrNoPhotos
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	pricing, err := s.store.GetPricing(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}

	now := time.Now()
	order := &models.Order{
		ID:         uuid.New(),
		UserID:     userID,
		PhotoCount: photoCount,
		Currency:   pricing.Currency,
		CreatedAt:  now,
	}
	if instructions != "" {
		order.Instructions = sql.NullString{String: instructions, Valid: true}
	}

	if profile.IsVIP && profile.DeferredBilling && !forcePayment {
		// Deferred billing: no charge now, the sweep bills the month's photos.
		// Promo credits stay untouched on this path.
		order.AmountCents = 0
		order.Status = models.OrderStatusCompleted
		order.CompletedAt = sql.NullTime{Time: now, Valid: true}
		if err := s.store.CreateOrder(ctx, order); err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
		return &GateResult{Order: order}, nil
	}

	freeAvailable, err := s.store.AvailablePromoPhotos(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load promo credits: %w", err)
	}
	freeUsed := freeAvailable
	if freeUsed > photoCount {
		freeUsed = photoCount
	}
	toCharge := photoCount - freeUsed

	order.FreePhotosUsed = freeUsed
	order.AmountCents = int64(toCharge) * pricing.PricePerPhotoCents

	if order.AmountCents == 0 {
		// Fully covered by promo credits: no checkout, deduct right away.
		order.Status = models.OrderStatusCompleted
		order.CompletedAt = sql.NullTime{Time: now, Valid: true}
		if err := s.store.CreateOrder(ctx, order); err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
		if err := s.store.ConsumePromoCredits(ctx, userID, freeUsed); err != nil {
			s.logger.Errorw("failed to consume promo credits", "order_id", order.ID, "error", err)
		}
		return &GateResult{Order: order}, nil
	}

	order.Status = models.OrderStatusPending
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	sess, err := s.payments.CreateCheckoutSession(ctx, payments.CheckoutParams{
		OrderID:         order.ID.String(),
		UserID:          userID.String(),
		Quantity:        toCharge,
		UnitAmountCents: pricing.PricePerPhotoCents,
		Currency:        pricing.Currency,
		ProductName:     "Photo retouching",
		CustomerEmail:   profile.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if err := s.store.AttachCheckoutSession(ctx, order.ID, sess.ID); err != nil {
		s.logger.Errorw("failed to attach checkout session", "order_id", order.ID, "error", err)
	}
	order.CheckoutSessionID = sql.NullString{String: sess.ID, Valid: true}

	return &GateResult{Order: order, CheckoutURL: sess.URL}, nil
}

// ConfirmResult reports what a payment confirmation did.
type ConfirmResult struct {
	Order            *models.Order
	AlreadyConfirmed bool
	InvoiceID        uuid.NullUUID
}

// ConfirmPayment settles an order after the client returns from checkout. It
// retrieves the session, requires it to be paid, and completes the order. A
// second call for the same session finds the order already completed and does
// nothing, so invoices and credit deductions happen exactly once.
func (s *BillingService) ConfirmPayment(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	sess, err := s.payments.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	if sess.PaymentStatus != payments.PaymentStatusPaid {
		return nil, ErrSessionNotPaid
	}

	orderID, err := uuid.Parse(sess.Metadata["order_id"])
	if err != nil {
		return nil, ErrBadSession
	}
	userID, err := uuid.Parse(sess.Metadata["user_id"])
	if err != nil {
		return nil, ErrBadSession
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrBadSession
	}

	if order.Status != models.OrderStatusPending {
		return &ConfirmResult{Order: order, AlreadyConfirmed: true}, nil
	}

	now := time.Now()
	if err := s.store.CompleteOrder(ctx, order.ID, now); err != nil {
		return nil, fmt.Errorf("complete order: %w", err)
	}
	order.Status = models.OrderStatusCompleted
	order.CompletedAt = sql.NullTime{Time: now, Valid: true}

	profile, err := s.store.GetProfile(ctx, order.UserID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	// Everything past this point is best-effort: the order is paid and
	// completed, the rest is reconciled by the admin screens if it fails.
	if err := s.notifier.OrderPaid(ctx, profile.Email, order.ID.String(), order.PhotoCount, order.AmountCents, order.Currency); err != nil {
		s.logger.Warnw("failed to send payment notification", "order_id", order.ID, "error", err)
	}

	if order.FreePhotosUsed > 0 {
		if err := s.store.ConsumePromoCredits(ctx, order.UserID, order.FreePhotosUsed); err != nil {
			s.logger.Errorw("failed to consume promo credits", "order_id", order.ID, "error", err)
		}
	}

	result := &ConfirmResult{Order: order}

	if !profile.DeferredBilling {
		invoiceID, err := s.synthesizeInvoice(ctx, order, now)
		if err != nil {
			s.logger.Errorw("failed to synthesize invoice", "order_id", order.ID, "error", err)
		} else {
			result.InvoiceID = uuid.NullUUID{UUID: invoiceID, Valid: true}
		}
	}

	if err := s.realtime.PublishUserEvent(order.UserID, "order_completed",
		supabase.OrderCompletedPayload(order.ID, order.AmountCents)); err != nil {
		s.logger.Warnw("failed to publish order event", "order_id", order.ID, "error", err)
	}

	return result, nil
}

// synthesizeInvoice records the already-settled charge as a paid invoice with
// a single line item, for non-deferred clients only.
func (s *BillingService) synthesizeInvoice(ctx context.Context, order *models.Order, now time.Time) (uuid.UUID, error) {
	charged := order.PhotoCount - order.FreePhotosUsed
	unitPrice := int64(0)
	if charged > 0 {
		unitPrice = order.AmountCents / int64(charged)
	}

	inv := &models.DeferredInvoice{
		ID:         uuid.New(),
		UserID:     order.UserID,
		TotalCents: order.AmountCents,
		Currency:   order.Currency,
		Status:     models.InvoiceStatusPaid,
		IssuedAt:   now,
		DueAt:      now,
		PaidAt:     sql.NullTime{Time: now, Valid: true},
	}
	item := models.InvoiceItem{
		ID:             uuid.New(),
		InvoiceID:      inv.ID,
		Description:    fmt.Sprintf("Photo retouching (%d photos)", charged),
		Quantity:       charged,
		UnitPriceCents: unitPrice,
		TotalCents:     order.AmountCents,
		OrderID:        uuid.NullUUID{UUID: order.ID, Valid: true},
	}

	if err := s.store.CreateInvoiceWithItems(ctx, inv, []models.InvoiceItem{item}); err != nil {
		return uuid.Nil, err
	}
	return inv.ID, nil
}
