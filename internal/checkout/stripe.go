package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"tixbridge/internal/shared/apperr"
	"tixbridge/pkg/logger"
)

// StripeConfig is passed explicitly so the bridge never reads the environment
type StripeConfig struct {
	BaseURL    string
	SecretKey  string
	Currency   string
	SuccessURL string
	CancelURL  string
	Timeout    time.Duration
}

// StripeBridge talks to a Stripe-compatible checkout API
type StripeBridge struct {
	config   StripeConfig
	sessions session.Client
	intents  paymentintent.Client
	log      *logger.Logger
}

var _ Bridge = (*StripeBridge)(nil)

// NewStripeBridge creates a checkout bridge. A nil http.Client uses a default one.
func NewStripeBridge(cfg StripeConfig, client *http.Client, log *logger.Logger) *StripeBridge {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = stripe.APIURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	cfg.Currency = strings.ToLower(cfg.Currency)
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.GetDefault()
	}
	log = log.WithComponent("checkout")

	// Retries stay off: the reservation flow decides what a failed call means
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(cfg.BaseURL),
		HTTPClient:        client,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     stripeLogger{log: log},
		EnableTelemetry:   stripe.Bool(false),
	})

	return &StripeBridge{
		config:   cfg,
		sessions: session.Client{B: backend, Key: cfg.SecretKey},
		intents:  paymentintent.Client{B: backend, Key: cfg.SecretKey},
		log:      log,
	}
}

// Configured fails when no secret key is set
func (s *StripeBridge) Configured() error {
	if s.config.SecretKey == "" {
		return apperr.Configuration("checkout.Configured", "checkout secret key is not configured")
	}
	return nil
}

// CreateSession creates a hosted checkout session in payment mode
func (s *StripeBridge) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	const op = "checkout.CreateSession"

	if err := s.Configured(); err != nil {
		return nil, err
	}
	if len(req.LineItems) == 0 {
		return nil, apperr.InvalidRequest(op, "at least one line item is required")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(firstNonEmpty(req.SuccessURL, s.config.SuccessURL)),
		CancelURL:  stripe.String(firstNonEmpty(req.CancelURL, s.config.CancelURL)),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for i, item := range req.LineItems {
		if item.UnitAmount <= 0 || item.Quantity <= 0 {
			return nil, apperr.InvalidRequest(op, "line item %d needs a positive amount and quantity", i)
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.config.Currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(firstNonEmpty(item.Description, "Ticket")),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	params.Context = ctx

	start := time.Now()
	cs, err := s.sessions.New(params)
	err = mapStripeError(op, err)
	s.log.LogUpstreamCall(ctx, op, map[string]string{"line_items": strconv.Itoa(len(req.LineItems))}, boolCount(err == nil), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if cs.ID == "" || cs.URL == "" {
		return nil, apperr.Upstream(op, "checkout session response is missing id or url", nil)
	}
	return &Session{ID: cs.ID, URL: cs.URL}, nil
}

// VerifyPayment looks up a checkout session (cs_...) or payment intent (pi_...)
func (s *StripeBridge) VerifyPayment(ctx context.Context, id string) (*PaymentVerification, error) {
	const op = "checkout.VerifyPayment"

	if err := s.Configured(); err != nil {
		return nil, err
	}

	id = strings.TrimSpace(id)
	if !strings.HasPrefix(id, "cs_") && !strings.HasPrefix(id, "pi_") {
		return nil, apperr.InvalidRequest(op, "payment token must be a checkout session or payment intent id")
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	var (
		result *PaymentVerification
		err    error
	)
	if strings.HasPrefix(id, "cs_") {
		params := &stripe.CheckoutSessionParams{}
		params.Context = ctx
		var cs *stripe.CheckoutSession
		if cs, err = s.sessions.Get(id, params); err == nil {
			result = &PaymentVerification{
				ID:          cs.ID,
				Status:      sessionPaymentStatus(cs),
				AmountTotal: cs.AmountTotal,
				Currency:    string(cs.Currency),
				Metadata:    cs.Metadata,
			}
		}
	} else {
		params := &stripe.PaymentIntentParams{}
		params.Context = ctx
		var pi *stripe.PaymentIntent
		if pi, err = s.intents.Get(id, params); err == nil {
			result = &PaymentVerification{
				ID:          pi.ID,
				Status:      intentPaymentStatus(pi),
				AmountTotal: pi.Amount,
				Currency:    string(pi.Currency),
				Metadata:    pi.Metadata,
			}
		}
	}

	err = mapStripeError(op, err)
	s.log.LogUpstreamCall(ctx, op, map[string]string{"id": id}, boolCount(err == nil), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// mapStripeError turns processor failures into application error kinds
func mapStripeError(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *stripe.Error
	if !errors.As(err, &se) {
		return apperr.Upstream(op, "request failed", transportCause(err))
	}

	status := se.HTTPStatusCode
	msg := se.Msg
	if msg == "" {
		msg = http.StatusText(status)
	}
	msg = fmt.Sprintf("processor responded %d: %s", status, msg)

	switch {
	case status == http.StatusNotFound:
		return apperr.New(apperr.KindNotFound, op, msg)
	case status >= 500, status == 0, status == http.StatusUnauthorized, status == http.StatusForbidden, status == http.StatusTooManyRequests:
		// bad credentials on our side are not the caller's fault
		return apperr.Upstream(op, msg, nil)
	default:
		return apperr.New(apperr.KindInvalidRequest, op, msg)
	}
}

// transportCause keeps the cause of a transport error without the request URL
func transportCause(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// stripeLogger routes the client library's own logging into ours
type stripeLogger struct {
	log *logger.Logger
}

func (l stripeLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l stripeLogger) Infof(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l stripeLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

// Errorf stays at debug; failed calls are already logged by LogUpstreamCall
func (l stripeLogger) Errorf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func boolCount(ok bool) int {
	if ok {
		return 1
	}
	return 0
}
