package payments

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"food-delivery-backend/internal/models"
	"food-delivery-backend/internal/platform/events"
	"food-delivery-backend/pkg/email"
	"food-delivery-backend/pkg/logging"
)

// providerTimeout bounds every payment-provider call so a hung provider can
// never hold a request open indefinitely.
const providerTimeout = 15 * time.Second

const metadataOrderID = "order_id"

// OrderStore is the slice of order storage the reconciliation flow needs.
type OrderStore interface {
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	MarkPaymentCompleted(ctx context.Context, orderID, paymentRef string, paidAt time.Time) (*models.Order, error)
}

// EventPublisher mirrors the orders module's publisher contract.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, eventType, orderID string, payload interface{}) error
}

// Emailer sends transactional mail.
type Emailer interface {
	SendEmail(ctx context.Context, to, subject, plainTextContent, htmlContent string) error
}

// CheckoutResponse is returned from CreateCheckoutSession.
type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"url"`
}

// VerifyResponse is returned from VerifyPayment.
type VerifyResponse struct {
	Paid bool `json:"paid"`
}

// ServiceInterface defines the payment reconciliation contract.
type ServiceInterface interface {
	CreateCheckoutSession(ctx context.Context, orderID, customerEmail string) (*CheckoutResponse, error)
	VerifyPayment(ctx context.Context, sessionID string) (*VerifyResponse, error)
}

// Service reconciles orders with the external payment provider.
type Service struct {
	store        OrderStore
	provider     ProviderClient
	clientOrigin string
	publisher    EventPublisher
	emailer      Emailer
	templates    *email.TemplateManager
}

func NewService(store OrderStore, provider ProviderClient, clientOrigin string, publisher EventPublisher, emailer Emailer, templates *email.TemplateManager) *Service {
	return &Service{
		store:        store,
		provider:     provider,
		clientOrigin: clientOrigin,
		publisher:    publisher,
		emailer:      emailer,
		templates:    templates,
	}
}

// CreateCheckoutSession opens a hosted checkout session for an order: one
// line per order item at the item's unit price in minor units, plus one line
// for the delivery fee when it is a positive finite number. The order ID
// rides along as session metadata so the outcome can be correlated back.
func (s *Service) CreateCheckoutSession(ctx context.Context, orderID, customerEmail string) (*CheckoutResponse, error) {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines := BuildCheckoutLines(order)

	pctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	sess, err := s.provider.CreateSession(pctx, SessionRequest{
		Lines:         lines,
		CustomerEmail: customerEmail,
		SuccessURL:    fmt.Sprintf("%s/order-confirmed/%s", s.clientOrigin, order.ID),
		CancelURL:     fmt.Sprintf("%s/checkout?order=%s", s.clientOrigin, order.ID),
		Metadata:      map[string]string{metadataOrderID: order.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExternalService, err)
	}

	return &CheckoutResponse{SessionID: sess.ID, RedirectURL: sess.URL}, nil
}

// BuildCheckoutLines converts an order into provider line items. Unit prices
// are multiplied by 100 and rounded to the nearest integer (minor currency
// units). The delivery fee becomes its own line only when positive and finite.
func BuildCheckoutLines(order *models.Order) []CheckoutLine {
	lines := make([]CheckoutLine, 0, len(order.Items)+1)
	for _, item := range order.Items {
		lines = append(lines, CheckoutLine{
			Name:       item.Name,
			UnitAmount: int64(math.Round(item.Price * 100)),
			Quantity:   int64(item.Quantity),
		})
	}
	if fee := order.DeliveryFee; fee > 0 && !math.IsInf(fee, 0) && !math.IsNaN(fee) {
		lines = append(lines, CheckoutLine{
			Name:       "Delivery fee",
			UnitAmount: int64(math.Round(fee * 100)),
			Quantity:   1,
		})
	}
	return lines
}

// VerifyPayment queries the provider for the session's outcome. When the
// provider reports the payment settled, the associated order is marked
// completed (payment reference and settlement timestamp recorded) before
// success is returned. The operation is idempotent: re-verifying an
// already-settled session re-asserts the same state and applies no duplicate
// side effects. A provider error is never reinterpreted as a paid result.
func (s *Service) VerifyPayment(ctx context.Context, sessionID string) (*VerifyResponse, error) {
	pctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	status, err := s.provider.RetrieveSession(pctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExternalService, err)
	}

	if !status.Paid {
		return &VerifyResponse{Paid: false}, nil
	}

	orderID := status.Metadata[metadataOrderID]
	if orderID == "" {
		return nil, fmt.Errorf("payment session %s carries no order reference", sessionID)
	}

	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Already settled with the same reference: nothing left to apply.
	if order.PaymentStatus.Settled() && order.PaymentRef != nil && *order.PaymentRef == status.PaymentIntentID {
		return &VerifyResponse{Paid: true}, nil
	}

	updated, err := s.store.MarkPaymentCompleted(ctx, orderID, status.PaymentIntentID, time.Now().UTC())
	if err != nil {
		// The provider settled but we could not record it; surface the
		// failure so the caller retries rather than trusting a stale order.
		return nil, fmt.Errorf("recording settled payment for order %s: %w", orderID, err)
	}

	s.publish(ctx, events.TypeOrderPaymentCompleted, updated.ID, map[string]interface{}{
		"payment_ref": status.PaymentIntentID,
	})
	s.sendReceiptEmail(updated)

	return &VerifyResponse{Paid: true}, nil
}

func (s *Service) publish(ctx context.Context, eventType, orderID string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, eventType, orderID, payload); err != nil {
		logging.FromContext(ctx).Warn("payment event publish failed",
			"type", eventType, "order_id", orderID, "error", err)
	}
}

func (s *Service) sendReceiptEmail(order *models.Order) {
	if s.emailer == nil || order.Address.Email == "" {
		return
	}
	subject := "Payment received"
	text := fmt.Sprintf("We received your payment of %.2f for order %s. Bon appetit!",
		order.Total, order.ID)

	var html string
	if s.templates != nil {
		rendered, err := s.templates.GeneratePaymentReceiptHTML(email.OrderTemplateData{
			Name:    order.Address.Name,
			OrderID: order.ID,
			Total:   order.Total,
		})
		if err != nil {
			slog.Warn("payment receipt template failed", "order_id", order.ID, "error", err)
		} else {
			html = rendered
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.emailer.SendEmail(ctx, order.Address.Email, subject, text, html); err != nil {
			logging.FromContext(ctx).Warn("payment receipt email failed",
				"order_id", order.ID, "error", err)
		}
	}()
}
