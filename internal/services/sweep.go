package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"retouchlab-backend/internal/models"
	"retouchlab-backend/internal/supabase"
)

// SweepStore is the slice of the database layer the monthly sweep uses.
type SweepStore interface {
	ListUnbilledDeferredOrders(ctx context.Context, from, to time.Time) ([]models.Order, error)
	GetPricing(ctx context.Context) (*models.PricingSettings, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	CreateInvoiceWithItems(ctx context.Context, inv *models.DeferredInvoice, items []models.InvoiceItem) error
	ResetDeferredBilling(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error)
}

type InvoiceNotifier interface {
	InvoiceIssued(ctx context.Context, email string, invoiceID string, totalCents int64, currency string, dueAt time.Time) error
}

// SweepReport summarizes one sweep run.
type SweepReport struct {
	UsersInvoiced  int
	OrdersInvoiced int
	TotalCents     int64
}

// SweepService aggregates a month of completed, unbilled VIP orders into one
// pending invoice per user.
type SweepService struct {
	store    SweepStore
	notifier InvoiceNotifier
	realtime Publisher
	logger   *zap.SugaredLogger
}

const invoiceDueDays = 14

func NewSweepService(store SweepStore, notifier InvoiceNotifier, realtime Publisher, logger *zap.SugaredLogger) *SweepService {
	return &SweepService{
		store:    store,
		notifier: notifier,
		realtime: realtime,
		logger:   logger,
	}
}

// MonthWindow returns [start of month, start of next month) for the month
// containing ref.
func MonthWindow(ref time.Time) (time.Time, time.Time) {
	from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return from, from.AddDate(0, 1, 0)
}

// Run sweeps the calendar month containing ref. Orders already stamped with
// invoiced_at are excluded by the query and the stamp is re-checked inside
// the invoice transaction, so running twice cannot bill an order twice.
func (s *SweepService) Run(ctx context.Context, ref time.Time) (*SweepReport, error) {
	from, to := MonthWindow(ref)

	orders, err := s.store.ListUnbilledDeferredOrders(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list unbilled orders: %w", err)
	}

	report := &SweepReport{}
	if len(orders) == 0 {
		return report, nil
	}

	pricing, err := s.store.GetPricing(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}

	byUser := make(map[uuid.UUID][]models.Order)
	var userOrder []uuid.UUID
	for _, o := range orders {
		if _, seen := byUser[o.UserID]; !seen {
			userOrder = append(userOrder, o.UserID)
		}
		byUser[o.UserID] = append(byUser[o.UserID], o)
	}

	now := time.Now()
	for _, userID := range userOrder {
		userOrders := byUser[userID]
		if err := s.invoiceUser(ctx, userID, userOrders, pricing, now, report); err != nil {
			// One failing user must not block the rest of the run.
			s.logger.Errorw("sweep failed for user", "user_id", userID, "error", err)
		}
	}

	s.logger.Infow("deferred-billing sweep finished",
		"month", from.Format("2006-01"),
		"users_invoiced", report.UsersInvoiced,
		"orders_invoiced", report.OrdersInvoiced,
		"total_cents", report.TotalCents,
	)
	return report, nil
}

func (s *SweepService) invoiceUser(ctx context.Context, userID uuid.UUID, orders []models.Order, pricing *models.PricingSettings, now time.Time, report *SweepReport) error {
	inv := &models.DeferredInvoice{
		ID:       uuid.New(),
		UserID:   userID,
		Currency: pricing.Currency,
		Status:   models.InvoiceStatusPending,
		IssuedAt: now,
		DueAt:    now.AddDate(0, 0, invoiceDueDays),
	}

	var items []models.InvoiceItem
	for _, o := range orders {
		lineTotal := int64(o.PhotoCount) * pricing.PricePerPhotoCents
		items = append(items, models.InvoiceItem{
			ID:             uuid.New(),
			InvoiceID:      inv.ID,
			Description:    fmt.Sprintf("Photo retouching (%d photos, order of %s)", o.PhotoCount, o.CreatedAt.Format("2 Jan 2006")),
			Quantity:       o.PhotoCount,
			UnitPriceCents: pricing.PricePerPhotoCents,
			TotalCents:     lineTotal,
			OrderID:        uuid.NullUUID{UUID: o.ID, Valid: true},
		})
		inv.TotalCents += lineTotal
	}

	if err := s.store.CreateInvoiceWithItems(ctx, inv, items); err != nil {
		return err
	}

	report.UsersInvoiced++
	report.OrdersInvoiced += len(orders)
	report.TotalCents += inv.TotalCents

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		s.logger.Warnw("failed to load profile for invoice notification", "user_id", userID, "error", err)
		return nil
	}
	if err := s.notifier.InvoiceIssued(ctx, profile.Email, inv.ID.String(), inv.TotalCents, inv.Currency, inv.DueAt); err != nil {
		s.logger.Warnw("failed to send invoice notification", "invoice_id", inv.ID, "error", err)
	}
	if err := s.realtime.PublishUserEvent(userID, "invoice_issued",
		supabase.InvoiceIssuedPayload(inv.ID, inv.TotalCents)); err != nil {
		s.logger.Warnw("failed to publish invoice event", "invoice_id", inv.ID, "error", err)
	}
	return nil
}

// Reset releases a user's swept orders for the month containing ref and
// archives the matching pending invoices, so the month can be swept again.
func (s *SweepService) Reset(ctx context.Context, userID uuid.UUID, ref time.Time) (int64, error) {
	from, to := MonthWindow(ref)
	released, err := s.store.ResetDeferredBilling(ctx, userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("reset deferred billing: %w", err)
	}
	s.logger.Infow("deferred billing reset", "user_id", userID, "month", from.Format("2006-01"), "orders_released", released)
	return released, nil
}
