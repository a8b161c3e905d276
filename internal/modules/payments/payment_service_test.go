package payments

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"food-delivery-backend/internal/models"
	"food-delivery-backend/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeOrderStore struct {
	orders        map[string]*models.Order
	markCalls     int
	markErr       error
	lastMarkedRef string
}

func newFakeOrderStore(orders ...*models.Order) *fakeOrderStore {
	store := &fakeOrderStore{orders: map[string]*models.Order{}}
	for _, o := range orders {
		store.orders[o.ID] = o
	}
	return store
}

func (f *fakeOrderStore) FindByID(_ context.Context, orderID string) (*models.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return order, nil
}

func (f *fakeOrderStore) MarkPaymentCompleted(_ context.Context, orderID, paymentRef string, paidAt time.Time) (*models.Order, error) {
	f.markCalls++
	f.lastMarkedRef = paymentRef
	if f.markErr != nil {
		return nil, f.markErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	order.PaymentStatus = models.PaymentStatusCompleted
	order.PaymentRef = &paymentRef
	order.PaidAt = &paidAt
	return order, nil
}

type fakeProvider struct {
	createErr   error
	lastRequest *SessionRequest
	session     *Session

	retrieveErr error
	status      *SessionStatus
}

func (f *fakeProvider) CreateSession(_ context.Context, req SessionRequest) (*Session, error) {
	f.lastRequest = &req
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.session != nil {
		return f.session, nil
	}
	return &Session{ID: "cs_test_1", URL: "https://pay.example.com/cs_test_1"}, nil
}

func (f *fakeProvider) RetrieveSession(_ context.Context, _ string) (*SessionStatus, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	return f.status, nil
}

type sentEmail struct {
	to, subject, text, html string
}

type channelEmailer struct {
	sent chan sentEmail
}

func (e *channelEmailer) SendEmail(_ context.Context, to, subject, text, html string) error {
	e.sent <- sentEmail{to: to, subject: subject, text: text, html: html}
	return nil
}

type countingPublisher struct {
	calls int
}

func (p *countingPublisher) PublishOrderEvent(_ context.Context, _, _ string, _ interface{}) error {
	p.calls++
	return nil
}

func testOrder() *models.Order {
	return &models.Order{
		ID:           "order-1",
		RestaurantID: "rest-1",
		Items: []models.OrderItem{
			{Name: "Margherita", Quantity: 2, Price: 9.50, TotalPrice: 19.00},
			{Name: "Tiramisu", Quantity: 1, Price: 5.00, TotalPrice: 5.00},
		},
		Subtotal:      24.00,
		DeliveryFee:   3.50,
		Total:         27.50,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.OrderStatusPreparing,
	}
}

// --- tests ---

func TestBuildCheckoutLines(t *testing.T) {
	t.Parallel()

	t.Run("unit prices become rounded minor units", func(t *testing.T) {
		t.Parallel()
		order := testOrder()
		order.Items[0].Price = 9.999 // rounds up, never truncates

		lines := BuildCheckoutLines(order)
		require.Len(t, lines, 3)
		assert.Equal(t, int64(1000), lines[0].UnitAmount)
		assert.Equal(t, int64(2), lines[0].Quantity)
		assert.Equal(t, int64(500), lines[1].UnitAmount)
	})

	t.Run("positive delivery fee gets its own line", func(t *testing.T) {
		t.Parallel()
		lines := BuildCheckoutLines(testOrder())
		require.Len(t, lines, 3)
		assert.Equal(t, "Delivery fee", lines[2].Name)
		assert.Equal(t, int64(350), lines[2].UnitAmount)
		assert.Equal(t, int64(1), lines[2].Quantity)
	})

	t.Run("zero delivery fee produces no fee line", func(t *testing.T) {
		t.Parallel()
		order := testOrder()
		order.DeliveryFee = 0

		lines := BuildCheckoutLines(order)
		assert.Len(t, lines, 2)
	})

	t.Run("negative and non-finite fees are dropped", func(t *testing.T) {
		t.Parallel()
		for _, fee := range []float64{-1, math.Inf(1), math.NaN()} {
			order := testOrder()
			order.DeliveryFee = fee
			assert.Len(t, BuildCheckoutLines(order), 2)
		}
	})
}

func TestCreateCheckoutSession(t *testing.T) {
	t.Parallel()

	t.Run("returns session handle and carries the order in metadata", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{}
		svc := NewService(newFakeOrderStore(testOrder()), provider, "https://shop.example.com", nil, nil, nil)

		resp, err := svc.CreateCheckoutSession(context.Background(), "order-1", "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "cs_test_1", resp.SessionID)
		assert.Equal(t, "https://pay.example.com/cs_test_1", resp.RedirectURL)

		require.NotNil(t, provider.lastRequest)
		assert.Equal(t, "order-1", provider.lastRequest.Metadata["order_id"])
		assert.Equal(t, "alice@example.com", provider.lastRequest.CustomerEmail)
		assert.Equal(t, "https://shop.example.com/order-confirmed/order-1", provider.lastRequest.SuccessURL)
		assert.Equal(t, "https://shop.example.com/checkout?order=order-1", provider.lastRequest.CancelURL)
		assert.Len(t, provider.lastRequest.Lines, 3)
	})

	t.Run("missing order reports not found", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeOrderStore(), &fakeProvider{}, "https://shop.example.com", nil, nil, nil)

		_, err := svc.CreateCheckoutSession(context.Background(), "order-missing", "")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("provider failure surfaces as external-service error", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{createErr: errors.New("provider down")}
		svc := NewService(newFakeOrderStore(testOrder()), provider, "https://shop.example.com", nil, nil, nil)

		_, err := svc.CreateCheckoutSession(context.Background(), "order-1", "")
		assert.ErrorIs(t, err, models.ErrExternalService)
	})
}

func TestVerifyPayment(t *testing.T) {
	t.Parallel()

	paidStatus := func() *SessionStatus {
		return &SessionStatus{
			Paid:            true,
			PaymentIntentID: "pi_123",
			Metadata:        map[string]string{"order_id": "order-1"},
		}
	}

	t.Run("settles the order on first verification", func(t *testing.T) {
		t.Parallel()
		store := newFakeOrderStore(testOrder())
		publisher := &countingPublisher{}
		svc := NewService(store, &fakeProvider{status: paidStatus()}, "", publisher, nil, nil)

		resp, err := svc.VerifyPayment(context.Background(), "cs_test_1")
		require.NoError(t, err)
		assert.True(t, resp.Paid)

		order := store.orders["order-1"]
		assert.Equal(t, models.PaymentStatusCompleted, order.PaymentStatus)
		require.NotNil(t, order.PaymentRef)
		assert.Equal(t, "pi_123", *order.PaymentRef)
		assert.NotNil(t, order.PaidAt)
		assert.Equal(t, 1, store.markCalls)
		assert.Equal(t, 1, publisher.calls)
	})

	t.Run("re-verification applies no duplicate side effects", func(t *testing.T) {
		t.Parallel()
		store := newFakeOrderStore(testOrder())
		publisher := &countingPublisher{}
		svc := NewService(store, &fakeProvider{status: paidStatus()}, "", publisher, nil, nil)

		first, err := svc.VerifyPayment(context.Background(), "cs_test_1")
		require.NoError(t, err)
		second, err := svc.VerifyPayment(context.Background(), "cs_test_1")
		require.NoError(t, err)

		assert.True(t, first.Paid)
		assert.True(t, second.Paid)
		assert.Equal(t, 1, store.markCalls)
		assert.Equal(t, 1, publisher.calls)
	})

	t.Run("unpaid session leaves the order untouched", func(t *testing.T) {
		t.Parallel()
		store := newFakeOrderStore(testOrder())
		svc := NewService(store, &fakeProvider{status: &SessionStatus{Paid: false}}, "", nil, nil, nil)

		resp, err := svc.VerifyPayment(context.Background(), "cs_test_1")
		require.NoError(t, err)
		assert.False(t, resp.Paid)
		assert.Equal(t, 0, store.markCalls)
		assert.Equal(t, models.PaymentStatusPending, store.orders["order-1"].PaymentStatus)
	})

	t.Run("provider error is never reported as paid", func(t *testing.T) {
		t.Parallel()
		store := newFakeOrderStore(testOrder())
		svc := NewService(store, &fakeProvider{retrieveErr: errors.New("timeout")}, "", nil, nil, nil)

		resp, err := svc.VerifyPayment(context.Background(), "cs_test_1")
		assert.ErrorIs(t, err, models.ErrExternalService)
		assert.Nil(t, resp)
		assert.Equal(t, 0, store.markCalls)
	})

	t.Run("session without order metadata is rejected", func(t *testing.T) {
		t.Parallel()
		status := &SessionStatus{Paid: true, PaymentIntentID: "pi_123", Metadata: map[string]string{}}
		svc := NewService(newFakeOrderStore(testOrder()), &fakeProvider{status: status}, "", nil, nil, nil)

		_, err := svc.VerifyPayment(context.Background(), "cs_test_1")
		assert.Error(t, err)
	})

	t.Run("receipt email is rendered and sent on first settlement only", func(t *testing.T) {
		t.Parallel()
		order := testOrder()
		order.Address = models.DeliveryAddress{
			Name: "Alice", Street: "1 Main St", City: "Springfield", Email: "alice@example.com",
		}
		store := newFakeOrderStore(order)
		templates, err := email.NewTemplateManager()
		require.NoError(t, err)
		emailer := &channelEmailer{sent: make(chan sentEmail, 1)}
		svc := NewService(store, &fakeProvider{status: paidStatus()}, "", nil, emailer, templates)

		_, err = svc.VerifyPayment(context.Background(), "cs_test_1")
		require.NoError(t, err)

		select {
		case msg := <-emailer.sent:
			assert.Equal(t, "alice@example.com", msg.to)
			assert.Contains(t, msg.html, order.ID)
			assert.Contains(t, msg.html, "Alice")
		case <-time.After(2 * time.Second):
			t.Fatal("receipt email was not sent")
		}

		// Re-verification takes the idempotent path and sends nothing.
		_, err = svc.VerifyPayment(context.Background(), "cs_test_1")
		require.NoError(t, err)
		select {
		case <-emailer.sent:
			t.Fatal("unexpected second receipt email")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("failed settlement write surfaces to the caller", func(t *testing.T) {
		t.Parallel()
		store := newFakeOrderStore(testOrder())
		store.markErr = errors.New("db down")
		svc := NewService(store, &fakeProvider{status: paidStatus()}, "", nil, nil, nil)

		_, err := svc.VerifyPayment(context.Background(), "cs_test_1")
		assert.Error(t, err)
	})
}
