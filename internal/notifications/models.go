package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeCheckoutCompleted NotificationType = "CHECKOUT_COMPLETED"
	NotificationTypeCheckoutExpired   NotificationType = "CHECKOUT_EXPIRED"
)

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityMedium NotificationPriority = "MEDIUM"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

// CheckoutNotification describes a payment processor event for downstream
// listeners. It is informational; nothing in this service consumes it.
type CheckoutNotification struct {
	ID       uuid.UUID            `json:"id"`
	Type     NotificationType     `json:"type"`
	Priority NotificationPriority `json:"priority"`

	// Processor context
	ProviderEventID string `json:"provider_event_id"`
	SessionID       string `json:"session_id"`
	PaymentStatus   string `json:"payment_status,omitempty"`
	AmountTotal     int64  `json:"amount_total,omitempty"`
	Currency        string `json:"currency,omitempty"`
	CustomerEmail   string `json:"customer_email,omitempty"`

	// Reservation context, echoed from the session metadata
	ReservationID string `json:"reservation_id,omitempty"`
	ShowID        string `json:"show_id,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type NotificationBuilder struct {
	notification *CheckoutNotification
}

func NewNotificationBuilder() *NotificationBuilder {
	now := time.Now().UTC()
	return &NotificationBuilder{
		notification: &CheckoutNotification{
			ID:         uuid.New(),
			CreatedAt:  now,
			OccurredAt: now,
		},
	}
}

func (nb *NotificationBuilder) WithType(notType NotificationType) *NotificationBuilder {
	nb.notification.Type = notType
	nb.notification.Priority = GetDefaultPriority(notType)
	return nb
}

func (nb *NotificationBuilder) WithSession(providerEventID, sessionID, paymentStatus string) *NotificationBuilder {
	nb.notification.ProviderEventID = providerEventID
	nb.notification.SessionID = sessionID
	nb.notification.PaymentStatus = paymentStatus
	return nb
}

func (nb *NotificationBuilder) WithAmount(amountTotal int64, currency string) *NotificationBuilder {
	nb.notification.AmountTotal = amountTotal
	nb.notification.Currency = currency
	return nb
}

func (nb *NotificationBuilder) WithCustomer(email string) *NotificationBuilder {
	nb.notification.CustomerEmail = email
	return nb
}

func (nb *NotificationBuilder) WithReservation(reservationID, showID string) *NotificationBuilder {
	nb.notification.ReservationID = reservationID
	nb.notification.ShowID = showID
	return nb
}

func (nb *NotificationBuilder) OccurredAt(t time.Time) *NotificationBuilder {
	if !t.IsZero() {
		nb.notification.OccurredAt = t.UTC()
	}
	return nb
}

func (nb *NotificationBuilder) Build() *CheckoutNotification {
	return nb.notification
}

func GetDefaultPriority(notType NotificationType) NotificationPriority {
	switch notType {
	case NotificationTypeCheckoutCompleted:
		return NotificationPriorityHigh
	case NotificationTypeCheckoutExpired:
		return NotificationPriorityLow
	default:
		return NotificationPriorityMedium
	}
}

// GetPartitionKey keeps every event of one checkout session on one partition
func (n *CheckoutNotification) GetPartitionKey() string {
	if n.SessionID != "" {
		return n.SessionID
	}
	return n.ID.String()
}

func (n *CheckoutNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
