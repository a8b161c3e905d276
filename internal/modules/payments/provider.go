package payments

import "context"

// CheckoutLine is one price/quantity line of a hosted checkout session.
// UnitAmount is in the provider's minor currency unit (cents).
type CheckoutLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest is everything needed to open a hosted checkout session.
type SessionRequest struct {
	Lines         []CheckoutLine
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Session is the provider's handle on a created checkout session.
type Session struct {
	ID  string
	URL string
}

// SessionStatus is the provider's view of a session queried later.
type SessionStatus struct {
	Paid            bool
	PaymentIntentID string
	Metadata        map[string]string
}

// ProviderClient is the contract this system expects from the payment
// provider. The Stripe implementation lives in stripe_client.go; tests use
// an in-package fake.
type ProviderClient interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}
