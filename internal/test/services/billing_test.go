package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retouchlab-backend/internal/models"
	"retouchlab-backend/internal/payments"
	"retouchlab-backend/internal/services"
)

type stubStore struct {
	profile     *models.Profile
	pricing     *models.PricingSettings
	promoPhotos int

	orders          map[uuid.UUID]*models.Order
	created         []*models.Order
	completed       []uuid.UUID
	attachedSession map[uuid.UUID]string
	consumedCredits int
	invoices        []*models.DeferredInvoice
	invoiceItems    [][]models.InvoiceItem
}

func newStubStore() *stubStore {
	return &stubStore{
		profile: &models.Profile{
			ID:    uuid.New(),
			Email: "client@example.com",
		},
		pricing: &models.PricingSettings{
			PricePerPhotoCents: 1400,
			Currency:           "eur",
		},
		orders:          make(map[uuid.UUID]*models.Order),
		attachedSession: make(map[uuid.UUID]string),
	}
}

func (s *stubStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.profile, nil
}

func (s *stubStore) GetPricing(ctx context.Context) (*models.PricingSettings, error) {
	return s.pricing, nil
}

func (s *stubStore) AvailablePromoPhotos(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.promoPhotos, nil
}

func (s *stubStore) CreateOrder(ctx context.Context, o *models.Order) error {
	s.created = append(s.created, o)
	s.orders[o.ID] = o
	return nil
}

func (s *stubStore) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, errors.New("order not found")
	}
	return o, nil
}

func (s *stubStore) CompleteOrder(ctx context.Context, orderID uuid.UUID, completedAt time.Time) error {
	s.completed = append(s.completed, orderID)
	return nil
}

func (s *stubStore) AttachCheckoutSession(ctx context.Context, orderID uuid.UUID, sessionID string) error {
	s.attachedSession[orderID] = sessionID
	return nil
}

func (s *stubStore) ConsumePromoCredits(ctx context.Context, userID uuid.UUID, photos int) error {
	s.consumedCredits += photos
	return nil
}

func (s *stubStore) CreateInvoiceWithItems(ctx context.Context, inv *models.DeferredInvoice, items []models.InvoiceItem) error {
	s.invoices = append(s.invoices, inv)
	s.invoiceItems = append(s.invoiceItems, items)
	return nil
}

type stubPayments struct {
	session   *payments.CheckoutSession
	created   int
	retrieved string
}

func (p *stubPayments) CreateCheckoutSession(ctx context.Context, params payments.CheckoutParams) (*payments.CheckoutSession, error) {
	p.created++
	return &payments.CheckoutSession{
		ID:  "cs_test_123",
		URL: "https://checkout.example/cs_test_123",
	}, nil
}

func (p *stubPayments) GetCheckoutSession(ctx context.Context, sessionID string) (*payments.CheckoutSession, error) {
	p.retrieved = sessionID
	if p.session == nil {
		return nil, errors.New("no such session")
	}
	return p.session, nil
}

type stubNotifier struct {
	paid int
}

func (n *stubNotifier) OrderPaid(ctx context.Context, email string, orderID string, photoCount int, amountCents int64, currency string) error {
	n.paid++
	return nil
}

type stubPublisher struct {
	events []string
}

func (p *stubPublisher) PublishUserEvent(userID uuid.UUID, event string, payload map[string]interface{}) error {
	p.events = append(p.events, event)
	return nil
}

func newBillingService(store *stubStore, pay *stubPayments) (*services.BillingService, *stubNotifier, *stubPublisher) {
	notifier := &stubNotifier{}
	publisher := &stubPublisher{}
	svc := services.NewBillingService(store, pay, notifier, publisher, zap.NewNop().Sugar())
	return svc, notifier, publisher
}

func TestCreateOrder_VIPDeferredSkipsPayment(t *testing.T) {
	store := newStubStore()
	store.profile.IsVIP = true
	store.profile.DeferredBilling = true
	store.promoPhotos = 5

	pay := &stubPayments{}
	svc, _, _ := newBillingService(store, pay)

	result, err := svc.CreateOrder(context.Background(), store.profile.ID, 3, "", false)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCompleted, result.Order.Status)
	assert.Equal(t, int64(0), result.Order.AmountCents)
	assert.False(t, result.PaymentRequired())
	assert.Equal(t, 0, pay.created)
	// Promo credits are not touched on the deferred path.
	assert.Equal(t, 0, result.Order.FreePhotosUsed)
	assert.Equal(t, 0, store.consumedCredits)
}

func TestCreateOrder_VIPForcePaymentGoesToCheckout(t *testing.T) {
	store := newStubStore()
	store.profile.IsVIP = true
	store.profile.DeferredBilling = true

	pay := &stubPayments{}
	svc, _, _ := newBillingService(store, pay)

	result, err := svc.CreateOrder(context.Background(), store.profile.ID, 2, "", true)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, result.Order.Status)
	assert.Equal(t, int64(2800), result.Order.AmountCents)
	assert.True(t, result.PaymentRequired())
	assert.Equal(t, 1, pay.created)
}

func TestCreateOrder_PromoCreditsReduceCharge(t *testing.T) {
	store := newStubStore()
	store.promoPhotos = 1

	pay := &stubPayments{}
	svc, _, _ := newBillingService(store, pay)

	result, err := svc.CreateOrder(context.Background(), store.profile.ID, 3, "natural skin", false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Order.FreePhotosUsed)
	assert.Equal(t, int64(2800), result.Order.AmountCents)
	assert.Equal(t, models.OrderStatusPending, result.Order.Status)
	assert.Equal(t, "https://checkout.example/cs_test_123", result.CheckoutURL)
	assert.Equal(t, "cs_test_123", store.attachedSession[result.Order.ID])
	// Credits are only deducted once the payment settles.
	assert.Equal(t, 0, store.consumedCredits)
}

func TestCreateOrder_CreditsCoverEverything(t *testing.T) {
	store := newStubStore()
	store.promoPhotos = 5

	pay := &stubPayments{}
	svc, _, _ := newBillingService(store, pay)

	result, err := svc.CreateOrder(context.Background(), store.profile.ID, 2, "", false)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCompleted, result.Order.Status)
	assert.Equal(t, int64(0), result.Order.AmountCents)
	assert.Equal(t, 2, result.Order.FreePhotosUsed)
	assert.False(t, result.PaymentRequired())
	assert.Equal(t, 0, pay.created)
	assert.Equal(t, 2, store.consumedCredits)
}

func TestCreateOrder_RejectsEmptyOrder(t *testing.T) {
	store := newStubStore()
	svc, _, _ := newBillingService(store, &stubPayments{})

	_, err := svc.CreateOrder(context.Background(), store.profile.ID, 0, "", false)
	assert.ErrorIs(t, err, services.ErrNoPhotos)
}

func paidSessionFor(order *models.Order, userID uuid.UUID) *payments.CheckoutSession {
	return &payments.CheckoutSession{
		ID:            "cs_test_123",
		PaymentStatus: payments.PaymentStatusPaid,
		Metadata: map[string]string{
			"order_id": order.ID.String(),
			"user_id":  userID.String(),
		},
	}
}

func pendingOrder(store *stubStore, freeUsed int, amountCents int64) *models.Order {
	order := &models.Order{
		ID:             uuid.New(),
		UserID:         store.profile.ID,
		PhotoCount:     3,
		FreePhotosUsed: freeUsed,
		AmountCents:    amountCents,
		Currency:       "eur",
		Status:         models.OrderStatusPending,
		CreatedAt:      time.Now(),
	}
	store.orders[order.ID] = order
	return order
}

func TestConfirmPayment_RejectsUnpaidSession(t *testing.T) {
	store := newStubStore()
	order := pendingOrder(store, 0, 4200)

	pay := &stubPayments{session: &payments.CheckoutSession{
		ID:            "cs_test_123",
		PaymentStatus: "unpaid",
		Metadata: map[string]string{
			"order_id": order.ID.String(),
			"user_id":  store.profile.ID.String(),
		},
	}}
	svc, notifier, _ := newBillingService(store, pay)

	_, err := svc.ConfirmPayment(context.Background(), "cs_test_123")
	assert.ErrorIs(t, err, services.ErrSessionNotPaid)
	assert.Empty(t, store.completed)
	assert.Equal(t, 0, notifier.paid)
}

func TestConfirmPayment_CompletesAndSynthesizesInvoice(t *testing.T) {
	store := newStubStore()
	order := pendingOrder(store, 1, 2800)

	pay := &stubPayments{session: paidSessionFor(order, store.profile.ID)}
	svc, notifier, publisher := newBillingService(store, pay)

	result, err := svc.ConfirmPayment(context.Background(), "cs_test_123")
	require.NoError(t, err)

	assert.False(t, result.AlreadyConfirmed)
	assert.Equal(t, models.OrderStatusCompleted, result.Order.Status)
	assert.Equal(t, []uuid.UUID{order.ID}, store.completed)
	assert.Equal(t, 1, notifier.paid)
	assert.Equal(t, 1, store.consumedCredits)
	assert.Contains(t, publisher.events, "order_completed")

	require.Len(t, store.invoices, 1)
	inv := store.invoices[0]
	assert.Equal(t, models.InvoiceStatusPaid, inv.Status)
	assert.Equal(t, int64(2800), inv.TotalCents)
	assert.True(t, result.InvoiceID.Valid)
	require.Len(t, store.invoiceItems[0], 1)
	assert.Equal(t, order.ID, store.invoiceItems[0][0].OrderID.UUID)
}

func TestConfirmPayment_DeferredProfileGetsNoInvoice(t *testing.T) {
	store := newStubStore()
	store.profile.IsVIP = true
	store.profile.DeferredBilling = true
	order := pendingOrder(store, 0, 2800)

	pay := &stubPayments{session: paidSessionFor(order, store.profile.ID)}
	svc, _, _ := newBillingService(store, pay)

	result, err := svc.ConfirmPayment(context.Background(), "cs_test_123")
	require.NoError(t, err)

	assert.Empty(t, store.invoices)
	assert.False(t, result.InvoiceID.Valid)
}

func TestConfirmPayment_SecondCallIsIdempotent(t *testing.T) {
	store := newStubStore()
	order := pendingOrder(store, 0, 4200)

	pay := &stubPayments{session: paidSessionFor(order, store.profile.ID)}
	svc, notifier, _ := newBillingService(store, pay)

	first, err := svc.ConfirmPayment(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.False(t, first.AlreadyConfirmed)

	// The order is completed now, so the second call must not complete,
	// notify or invoice again.
	second, err := svc.ConfirmPayment(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.True(t, second.AlreadyConfirmed)

	assert.Len(t, store.completed, 1)
	assert.Equal(t, 1, notifier.paid)
	assert.Len(t, store.invoices, 1)
}

func TestConfirmPayment_WrongOwnerRejected(t *testing.T) {
	store := newStubStore()
	order := pendingOrder(store, 0, 1400)

	pay := &stubPayments{session: paidSessionFor(order, uuid.New())}
	svc, _, _ := newBillingService(store, pay)

	_, err := svc.ConfirmPayment(context.Background(), "cs_test_123")
	assert.ErrorIs(t, err, services.ErrBadSession)
}
