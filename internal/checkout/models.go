package checkout

import (
	"context"

	"github.com/stripe/stripe-go/v76"
)

// Bridge creates checkout sessions and verifies payments with the processor
type Bridge interface {
	// Configured reports a Configuration error when the bridge cannot reach
	// the processor at all, without making a call
	Configured() error
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	VerifyPayment(ctx context.Context, id string) (*PaymentVerification, error)
}

// LineItem is one priced line of a checkout session
type LineItem struct {
	Description string
	UnitAmount  int64 // minor currency units
	Quantity    int
}

type SessionRequest struct {
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string

	// IdempotencyKey makes retries of the same session creation safe
	IdempotencyKey string
}

type Session struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type PaymentVerification struct {
	ID          string            `json:"id"`
	Status      PaymentStatus     `json:"status"`
	AmountTotal int64             `json:"amount_total"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// sessionPaymentStatus folds a checkout session into pending, succeeded or failed
func sessionPaymentStatus(cs *stripe.CheckoutSession) PaymentStatus {
	switch {
	case cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return PaymentStatusSucceeded
	case cs.Status == stripe.CheckoutSessionStatusExpired:
		return PaymentStatusFailed
	default:
		return PaymentStatusPending
	}
}

func sessionEmail(cs *stripe.CheckoutSession) string {
	if cs.CustomerDetails != nil && cs.CustomerDetails.Email != "" {
		return cs.CustomerDetails.Email
	}
	return cs.CustomerEmail
}

func intentPaymentStatus(pi *stripe.PaymentIntent) PaymentStatus {
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return PaymentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return PaymentStatusFailed
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		// a declined attempt drops the intent back to requires_payment_method
		if pi.LastPaymentError != nil {
			return PaymentStatusFailed
		}
		return PaymentStatusPending
	default:
		return PaymentStatusPending
	}
}

const (
	EventSessionCompleted = "checkout.session.completed"
	EventSessionExpired   = "checkout.session.expired"
)

// WebhookResult reports what the dispatcher did with an event
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	SessionID string `json:"session_id,omitempty"`
	Handled   bool   `json:"handled"`
}
