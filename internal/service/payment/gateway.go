package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

var (
	ErrNotConfigured = errors.New("webhook secret is not configured")
	ErrMalformed     = errors.New("malformed webhook event")
)

type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeRejected  Outcome = "rejected"
)

type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func (e Event) OrderID() string {
	return e.Data.Object.Metadata["order_id"]
}

type Orders interface {
	ConfirmOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ExpireOrder(ctx context.Context, id uuid.UUID) (bool, error)
}

// EventStore remembers which webhook events were already handled. Markers
// only short-circuit redeliveries; ConfirmOrder and ExpireOrder are
// idempotent on their own.
type EventStore interface {
	EventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) error
}

type WebhookUseCase interface {
	Handle(ctx context.Context, signature string, body []byte) (Outcome, error)
}

type Gateway struct {
	orders    Orders
	events    EventStore
	secret    string
	tolerance time.Duration
	eventTTL  time.Duration
	log       *zap.Logger
	now       func() time.Time
}

var _ WebhookUseCase = (*Gateway)(nil)

type GatewayOption func(*Gateway)

func WithEventStore(store EventStore, ttl time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.events = store
		if ttl > 0 {
			g.eventTTL = ttl
		}
	}
}

func WithTolerance(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.tolerance = d
	}
}

func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.now = now
	}
}

func NewGateway(orders Orders, secret string, log *zap.Logger, opts ...GatewayOption) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gateway{
		orders:    orders,
		secret:    secret,
		tolerance: 5 * time.Minute,
		eventTTL:  24 * time.Hour,
		log:       log.With(zap.String("service", "payments")),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Handle verifies and dispatches one webhook delivery. A nil error means the
// delivery must be acknowledged; the outcome tells what happened to it.
func (g *Gateway) Handle(ctx context.Context, signature string, body []byte) (Outcome, error) {
	if g.secret == "" {
		g.log.Error("webhook received but no secret is configured")
		return "", ErrNotConfigured
	}
	if err := VerifySignature(signature, body, g.secret, g.tolerance, g.now()); err != nil {
		metrics.TrackWebhook("unknown", "bad_signature")
		g.log.Warn("webhook signature rejected", zap.Error(err))
		return "", err
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.TrackWebhook("unknown", "malformed")
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if event.ID == "" || event.Type == "" {
		metrics.TrackWebhook("unknown", "malformed")
		return "", fmt.Errorf("%w: id and type are required", ErrMalformed)
	}

	log := g.log.With(zap.String("event_id", event.ID), zap.String("event_type", event.Type))

	if g.events != nil {
		seen, err := g.events.EventProcessed(ctx, event.ID)
		switch {
		case err != nil:
			log.Warn("event store unavailable, dispatching without dedupe", zap.Error(err))
		case seen:
			log.Info("duplicate webhook event acknowledged")
			metrics.TrackWebhook(event.Type, string(OutcomeDuplicate))
			return OutcomeDuplicate, nil
		}
	}

	outcome, err := g.dispatch(ctx, log, event)
	if err != nil {
		metrics.TrackWebhook(event.Type, "error")
		return "", err
	}

	if g.events != nil {
		// the order change is committed even if the caller went away
		if err := g.events.MarkEventProcessed(context.WithoutCancel(ctx), event.ID, g.eventTTL); err != nil {
			log.Warn("failed to record webhook event", zap.Error(err))
		}
	}
	metrics.TrackWebhook(event.Type, string(outcome))
	return outcome, nil
}

func (g *Gateway) dispatch(ctx context.Context, log *zap.Logger, event Event) (Outcome, error) {
	switch event.Type {
	case EventCheckoutCompleted, EventCheckoutExpired:
	default:
		log.Debug("webhook event type not handled")
		return OutcomeIgnored, nil
	}

	orderID, err := uuid.Parse(event.OrderID())
	if err != nil {
		log.Warn("webhook event without a valid order id", zap.String("order_id", event.OrderID()))
		return OutcomeIgnored, nil
	}
	log = log.With(zap.String("order_id", orderID.String()))

	if event.Type == EventCheckoutExpired {
		expired, err := g.orders.ExpireOrder(ctx, orderID)
		if err != nil {
			log.Error("failed to cancel order for expired checkout", zap.Error(err))
			return "", err
		}
		if !expired {
			return OutcomeIgnored, nil
		}
		return OutcomeProcessed, nil
	}

	if _, err := g.orders.ConfirmOrder(ctx, orderID); err != nil {
		if isBusinessError(err) {
			log.Warn("payment for order could not be applied", zap.Error(err))
			return OutcomeRejected, nil
		}
		log.Error("failed to confirm order", zap.Error(err))
		return "", err
	}
	return OutcomeProcessed, nil
}

func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrInventoryExhausted) ||
		errors.Is(err, domain.ErrSeatTaken) ||
		errors.Is(err, domain.ErrValidation)
}
