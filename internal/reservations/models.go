package reservations

import (
	"time"

	"tixbridge/internal/checkout"
)

// PriceSource decides where the unit price of a reservation comes from.
// There is no fallback from one source to the other.
type PriceSource string

const (
	PriceSourceUpstream PriceSource = "upstream"
	PriceSourceCaller   PriceSource = "caller"
)

const (
	CheckoutStatusCreated     = "created"
	CheckoutStatusUnavailable = "unavailable"
)

// Request is one reservation attempt. It only lives for the call.
type Request struct {
	ShowID        string
	Quantity      int
	UnitPrice     float64 // caller asserted; used only with PriceSourceCaller
	CustomerEmail string
}

type CheckoutHandle struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// Result is returned to the caller and never stored
type Result struct {
	ReservationID  string          `json:"reservation_id"`
	SeatID         string          `json:"seat_id"`
	ShowID         string          `json:"show_id"`
	ShowTitle      string          `json:"show_title"`
	Section        string          `json:"section"`
	Quantity       int             `json:"quantity"`
	UnitPrice      float64         `json:"unit_price"`
	TotalPrice     float64         `json:"total_price"`
	Checkout       *CheckoutHandle `json:"checkout"`
	CheckoutStatus string          `json:"checkout_status"`
	CreatedAt      time.Time       `json:"created_at"`
}

type Confirmation struct {
	ReservationID string                 `json:"reservation_id"`
	PaymentToken  string                 `json:"payment_token"`
	Status        checkout.PaymentStatus `json:"status"`
	AmountTotal   int64                  `json:"amount_total"`
	Currency      string                 `json:"currency,omitempty"`
	VerifiedAt    time.Time              `json:"verified_at"`
}
