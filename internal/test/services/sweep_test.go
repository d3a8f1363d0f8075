package services_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retouchlab-backend/internal/models"
	"retouchlab-backend/internal/services"
)

type stubSweepStore struct {
	unbilled []models.Order
	pricing  *models.PricingSettings

	listedFrom, listedTo time.Time
	invoices             []*models.DeferredInvoice
	invoiceItems         [][]models.InvoiceItem
	resetUser            uuid.UUID
	resetFrom, resetTo   time.Time
	released             int64
}

func (s *stubSweepStore) ListUnbilledDeferredOrders(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	s.listedFrom, s.listedTo = from, to
	return s.unbilled, nil
}

func (s *stubSweepStore) GetPricing(ctx context.Context) (*models.PricingSettings, error) {
	return s.pricing, nil
}

func (s *stubSweepStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return &models.Profile{ID: userID, Email: "vip@example.com"}, nil
}

func (s *stubSweepStore) CreateInvoiceWithItems(ctx context.Context, inv *models.DeferredInvoice, items []models.InvoiceItem) error {
	s.invoices = append(s.invoices, inv)
	s.invoiceItems = append(s.invoiceItems, items)
	// Mirror the production behavior: invoiced orders leave the unbilled set.
	remaining := s.unbilled[:0]
	for _, o := range s.unbilled {
		billed := false
		for _, item := range items {
			if item.OrderID.Valid && item.OrderID.UUID == o.ID {
				billed = true
			}
		}
		if !billed {
			remaining = append(remaining, o)
		}
	}
	s.unbilled = remaining
	return nil
}

func (s *stubSweepStore) ResetDeferredBilling(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	s.resetUser = userID
	s.resetFrom, s.resetTo = from, to
	return s.released, nil
}

type stubInvoiceNotifier struct {
	issued int
}

func (n *stubInvoiceNotifier) InvoiceIssued(ctx context.Context, email string, invoiceID string, totalCents int64, currency string, dueAt time.Time) error {
	n.issued++
	return nil
}

func deferredOrder(userID uuid.UUID, photos int, completedAt time.Time) models.Order {
	return models.Order{
		ID:          uuid.New(),
		UserID:      userID,
		PhotoCount:  photos,
		Currency:    "eur",
		Status:      models.OrderStatusCompleted,
		CreatedAt:   completedAt,
		CompletedAt: sql.NullTime{Time: completedAt, Valid: true},
	}
}

func TestSweep_OneInvoicePerUser(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()
	march := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	store := &stubSweepStore{
		pricing: &models.PricingSettings{PricePerPhotoCents: 1400, Currency: "eur"},
		unbilled: []models.Order{
			deferredOrder(userA, 3, march),
			deferredOrder(userA, 2, march.AddDate(0, 0, 5)),
			deferredOrder(userB, 4, march.AddDate(0, 0, 1)),
		},
	}
	notifier := &stubInvoiceNotifier{}
	svc := services.NewSweepService(store, notifier, &stubPublisher{}, zap.NewNop().Sugar())

	report, err := svc.Run(context.Background(), march)
	require.NoError(t, err)

	assert.Equal(t, 2, report.UsersInvoiced)
	assert.Equal(t, 3, report.OrdersInvoiced)
	assert.Equal(t, int64(9*1400), report.TotalCents)
	assert.Equal(t, 2, notifier.issued)

	require.Len(t, store.invoices, 2)
	first := store.invoices[0]
	assert.Equal(t, userA, first.UserID)
	assert.Equal(t, int64(5*1400), first.TotalCents)
	assert.Equal(t, models.InvoiceStatusPending, first.Status)
	assert.Len(t, store.invoiceItems[0], 2)

	second := store.invoices[1]
	assert.Equal(t, userB, second.UserID)
	assert.Equal(t, int64(4*1400), second.TotalCents)
}

func TestSweep_WindowCoversCalendarMonth(t *testing.T) {
	store := &stubSweepStore{
		pricing: &models.PricingSettings{PricePerPhotoCents: 1400, Currency: "eur"},
	}
	svc := services.NewSweepService(store, &stubInvoiceNotifier{}, &stubPublisher{}, zap.NewNop().Sugar())

	ref := time.Date(2026, time.February, 28, 23, 59, 0, 0, time.UTC)
	_, err := svc.Run(context.Background(), ref)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), store.listedFrom)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), store.listedTo)
}

func TestSweep_SecondRunIssuesNothing(t *testing.T) {
	userA := uuid.New()
	march := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	store := &stubSweepStore{
		pricing:  &models.PricingSettings{PricePerPhotoCents: 1400, Currency: "eur"},
		unbilled: []models.Order{deferredOrder(userA, 3, march)},
	}
	svc := services.NewSweepService(store, &stubInvoiceNotifier{}, &stubPublisher{}, zap.NewNop().Sugar())

	first, err := svc.Run(context.Background(), march)
	require.NoError(t, err)
	assert.Equal(t, 1, first.UsersInvoiced)

	second, err := svc.Run(context.Background(), march)
	require.NoError(t, err)
	assert.Equal(t, 0, second.UsersInvoiced)
	assert.Equal(t, int64(0), second.TotalCents)
	assert.Len(t, store.invoices, 1)
}

func TestReset_PassesMonthWindow(t *testing.T) {
	store := &stubSweepStore{
		pricing:  &models.PricingSettings{PricePerPhotoCents: 1400, Currency: "eur"},
		released: 2,
	}
	svc := services.NewSweepService(store, &stubInvoiceNotifier{}, &stubPublisher{}, zap.NewNop().Sugar())

	userID := uuid.New()
	ref := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	released, err := svc.Reset(context.Background(), userID, ref)
	require.NoError(t, err)

	assert.Equal(t, int64(2), released)
	assert.Equal(t, userID, store.resetUser)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), store.resetFrom)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), store.resetTo)
}
