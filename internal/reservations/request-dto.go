package reservations

// reservation request payload; quantity is range checked by the service so a
// zero quantity reports INVALID_QUANTITY rather than a validation error
type ReserveRequest struct {
	ShowID   string  `json:"show_id" validate:"required,max=64"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price" validate:"gte=0"`
	Email    string  `json:"email,omitempty" validate:"omitempty,email"`
}

// payment confirmation payload
type ConfirmRequest struct {
	PaymentToken string `json:"payment_token" validate:"required,max=255"`
}

func (r ReserveRequest) toRequest() Request {
	return Request{
		ShowID:        r.ShowID,
		Quantity:      r.Quantity,
		UnitPrice:     r.Price,
		CustomerEmail: r.Email,
	}
}
