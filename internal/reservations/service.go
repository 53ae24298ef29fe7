package reservations

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"tixbridge/internal/checkout"
	"tixbridge/internal/shared/apperr"
	"tixbridge/internal/shows"
	"tixbridge/pkg/logger"
)

type Service interface {
	Reserve(ctx context.Context, req Request) (*Result, error)
	Confirm(ctx context.Context, reservationID, paymentToken string) (*Confirmation, error)
}

const (
	minorUnitsPerUnit = 100

	// ceiling for a checkout total in minor units, well below math.MaxInt64
	maxMinorUnits = float64(1 << 62)
)

type ServiceConfig struct {
	PriceSource            PriceSource
	CheckoutFailureIsFatal bool
	SuccessURL             string
	CancelURL              string
}

// service validates against a freshly fetched snapshot of the listing. Nothing
// holds inventory between calls, so two concurrent reservations can both pass.
type service struct {
	shows  shows.Service
	bridge checkout.Bridge
	ids    IDGenerator
	config ServiceConfig
	log    *logger.Logger
	now    func() time.Time
}

func NewService(showService shows.Service, bridge checkout.Bridge, ids IDGenerator, cfg ServiceConfig, log *logger.Logger) Service {
	if cfg.PriceSource == "" {
		cfg.PriceSource = PriceSourceUpstream
	}
	if ids == nil {
		ids = NewIDGenerator()
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		shows:  showService,
		bridge: bridge,
		ids:    ids,
		config: cfg,
		log:    log.WithComponent("reservations"),
		now:    time.Now,
	}
}

func (s *service) Reserve(ctx context.Context, req Request) (*Result, error) {
	const op = "reservations.Reserve"

	showID := strings.TrimSpace(req.ShowID)
	if showID == "" {
		return nil, apperr.InvalidRequest(op, "show id is required")
	}
	if req.Quantity <= 0 {
		return nil, apperr.InvalidQuantity(op, "quantity must be positive, got %d", req.Quantity)
	}
	// A bridge that can never succeed is a server fault, not a degraded checkout
	if err := s.bridge.Configured(); err != nil {
		return nil, err
	}

	// Step 1: Refetch the listing
	show, err := s.shows.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	// Step 2: Validate inventory against this snapshot
	if req.Quantity > show.AvailableSeats {
		return nil, apperr.InvalidQuantity(op, "requested %d seats but only %d available", req.Quantity, show.AvailableSeats)
	}

	// Step 3: Resolve unit price
	unitPrice, err := s.resolveUnitPrice(ctx, show, req)
	if err != nil {
		return nil, err
	}

	// Step 4: Synthesize identities
	reservationID, err := s.ids.ReservationID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reservation id: %w", err)
	}
	seatID, err := s.ids.SeatID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate seat id: %w", err)
	}

	result := &Result{
		ReservationID:  reservationID,
		SeatID:         seatID,
		ShowID:         show.ID,
		ShowTitle:      show.Title,
		Section:        shows.GeneralAdmissionName,
		Quantity:       req.Quantity,
		UnitPrice:      unitPrice,
		TotalPrice:     unitPrice * float64(req.Quantity),
		CheckoutStatus: CheckoutStatusUnavailable,
		CreatedAt:      s.now().UTC(),
	}

	// Step 5: Hand off to checkout
	session, err := s.bridge.CreateSession(ctx, checkout.SessionRequest{
		LineItems: []checkout.LineItem{{
			Description: show.Title + " - " + shows.GeneralAdmissionName,
			UnitAmount:  int64(unitPrice) * minorUnitsPerUnit,
			Quantity:    req.Quantity,
		}},
		SuccessURL:    s.config.SuccessURL,
		CancelURL:     s.config.CancelURL,
		CustomerEmail: req.CustomerEmail,
		Metadata: map[string]string{
			"reservation_id": reservationID,
			"seat_id":        seatID,
			"show_id":        show.ID,
		},
		IdempotencyKey: reservationID,
	})
	switch {
	case err == nil:
		result.Checkout = &CheckoutHandle{URL: session.URL, SessionID: session.ID}
		result.CheckoutStatus = CheckoutStatusCreated
	case apperr.Is(err, apperr.KindConfiguration), s.config.CheckoutFailureIsFatal:
		return nil, err
	default:
		s.log.LogCheckoutDegraded(ctx, reservationID, err)
	}

	s.log.LogReservationCreated(ctx, reservationID, show.ID, req.Quantity, result.TotalPrice, result.Checkout != nil)
	return result, nil
}

// resolveUnitPrice returns a whole-unit price from the configured source only
func (s *service) resolveUnitPrice(ctx context.Context, show *shows.Show, req Request) (float64, error) {
	const op = "reservations.Reserve"

	var price float64
	switch s.config.PriceSource {
	case PriceSourceCaller:
		price = req.UnitPrice
	default:
		price = show.Price
		if req.UnitPrice > 0 && math.Round(req.UnitPrice) != show.Price {
			s.log.DebugContext(ctx, "Ignoring caller asserted price",
				slog.String("show_id", show.ID),
				slog.Float64("asserted", req.UnitPrice),
				slog.Float64("upstream", show.Price),
			)
		}
	}

	price = math.Round(price)
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, apperr.PriceUnavailable(op, "no usable %s price for show %s", s.config.PriceSource, show.ID)
	}
	// the checkout total is charged in minor units and must fit an int64
	if price > maxMinorUnits/minorUnitsPerUnit/float64(req.Quantity) {
		return 0, apperr.InvalidRequest(op, "unit price %.0f is too large for %d seats", price, req.Quantity)
	}
	return price, nil
}

func (s *service) Confirm(ctx context.Context, reservationID, paymentToken string) (*Confirmation, error) {
	const op = "reservations.Confirm"

	reservationID = strings.TrimSpace(reservationID)
	paymentToken = strings.TrimSpace(paymentToken)
	if reservationID == "" {
		return nil, apperr.InvalidRequest(op, "reservation id is required")
	}
	if paymentToken == "" {
		return nil, apperr.InvalidRequest(op, "payment token is required")
	}

	verification, err := s.bridge.VerifyPayment(ctx, paymentToken)
	if err != nil {
		return nil, err
	}
	if owner := verification.Metadata["reservation_id"]; owner != "" && owner != reservationID {
		return nil, apperr.InvalidRequest(op, "payment %s does not belong to reservation %s", paymentToken, reservationID)
	}

	s.log.InfoContext(ctx, "Reservation payment verified",
		slog.String("reservation_id", reservationID),
		slog.String("payment_token", paymentToken),
		slog.String("status", string(verification.Status)),
	)

	return &Confirmation{
		ReservationID: reservationID,
		PaymentToken:  paymentToken,
		Status:        verification.Status,
		AmountTotal:   verification.AmountTotal,
		Currency:      verification.Currency,
		VerifiedAt:    s.now().UTC(),
	}, nil
}
