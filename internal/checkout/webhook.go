package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"tixbridge/internal/notifications"
	"tixbridge/internal/shared/apperr"
	"tixbridge/pkg/logger"
)

// SignatureHeader carries "t=<unix>,v1=<hex hmac>" for each webhook delivery
const SignatureHeader = "Stripe-Signature"

// WebhookVerifier checks webhook signatures against the shared secret
type WebhookVerifier struct {
	secret    string
	tolerance time.Duration
}

func NewWebhookVerifier(secret string, tolerance time.Duration) *WebhookVerifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &WebhookVerifier{secret: secret, tolerance: tolerance}
}

// Verify authenticates payload against the signature header. Nothing in the
// payload is decoded before the signature matches.
func (v *WebhookVerifier) Verify(payload []byte, header string) error {
	const op = "checkout.VerifyWebhook"

	if v.secret == "" {
		return apperr.Configuration(op, "webhook secret is not configured")
	}

	err := webhook.ValidatePayloadWithTolerance(payload, header, v.secret, v.tolerance)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, webhook.ErrTooOld):
		return apperr.InvalidSignature(op, "timestamp outside tolerance")
	case errors.Is(err, webhook.ErrNoValidSignature):
		return apperr.InvalidSignature(op, "signature mismatch")
	default:
		return apperr.InvalidSignature(op, "%s", err.Error())
	}
}

// ConstructEvent verifies the payload and then decodes it
func (v *WebhookVerifier) ConstructEvent(payload []byte, header string) (*stripe.Event, error) {
	if err := v.Verify(payload, header); err != nil {
		return nil, err
	}
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, apperr.InvalidRequest("checkout.ConstructEvent", "webhook payload is not a valid event")
	}
	if event.ID == "" || event.Type == "" {
		return nil, apperr.InvalidRequest("checkout.ConstructEvent", "webhook event is missing id or type")
	}
	return &event, nil
}

// Sign builds a signature header for payload, as the processor would
func Sign(secret string, timestamp time.Time, payload []byte) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: timestamp,
	}).Header
}

// WebhookHandler verifies events and dispatches them by kind. Dispatch only
// logs and publishes; no reservation state exists to update.
type WebhookHandler struct {
	verifier  *WebhookVerifier
	publisher notifications.Publisher
	log       *logger.Logger
}

func NewWebhookHandler(verifier *WebhookVerifier, publisher notifications.Publisher, log *logger.Logger) *WebhookHandler {
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &WebhookHandler{verifier: verifier, publisher: publisher, log: log.WithComponent("checkout_webhook")}
}

func (h *WebhookHandler) Handle(ctx context.Context, payload []byte, header string) (*WebhookResult, error) {
	event, err := h.verifier.ConstructEvent(payload, header)
	if err != nil {
		return nil, err
	}

	eventType := string(event.Type)
	result := &WebhookResult{EventID: event.ID, EventType: eventType}

	var notType notifications.NotificationType
	switch eventType {
	case EventSessionCompleted:
		notType = notifications.NotificationTypeCheckoutCompleted
	case EventSessionExpired:
		notType = notifications.NotificationTypeCheckoutExpired
	default:
		h.log.LogWebhookEvent(ctx, event.ID, eventType, "", false)
		return result, nil
	}

	var session stripe.CheckoutSession
	if event.Data == nil || json.Unmarshal(event.Data.Raw, &session) != nil || session.ID == "" {
		return nil, apperr.InvalidRequest("checkout.HandleWebhook", "event %s carries no checkout session", event.ID)
	}
	result.SessionID = session.ID
	result.Handled = true
	h.log.LogWebhookEvent(ctx, event.ID, eventType, session.ID, true)

	notification := notifications.NewNotificationBuilder().
		WithType(notType).
		WithSession(event.ID, session.ID, string(session.PaymentStatus)).
		WithAmount(session.AmountTotal, string(session.Currency)).
		WithCustomer(sessionEmail(&session)).
		WithReservation(session.Metadata["reservation_id"], session.Metadata["show_id"]).
		OccurredAt(time.Unix(event.Created, 0)).
		Build()

	if err := h.publisher.PublishCheckoutEvent(ctx, notification); err != nil {
		h.log.WithError(err).WarnContext(ctx, "Failed to publish checkout notification",
			"event_id", event.ID,
			"session_id", session.ID,
		)
	}
	return result, nil
}
