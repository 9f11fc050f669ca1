package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/airtickets/internal/kafka"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{log: log.With(zap.String("service", "email"))}
}

// Compose renders the notification for an order event. ok is false for
// events nobody is told about.
func Compose(event kafka.OrderEvent) (Message, bool) {
	var subject, lead string
	switch event.Type {
	case kafka.EventOrderCreated:
		subject = "Your order is reserved"
		lead = fmt.Sprintf("Complete the payment before %s or the reservation is released.",
			event.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"))
	case kafka.EventOrderConfirmed:
		subject = "Your tickets are issued"
		lead = fmt.Sprintf("%d ticket(s) issued, total %s.", event.Tickets, event.TotalPrice)
	case kafka.EventOrderCancelled:
		subject = "Your order was cancelled"
		lead = "The order was cancelled and its seats were released."
	case kafka.EventOrderExpired:
		subject = "Your reservation expired"
		lead = "No payment arrived in time, so the reservation was released."
	default:
		return Message{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order %s, flight %d", event.OrderID, event.FlightID)
	if event.ReturnFlightID != nil {
		fmt.Fprintf(&b, ", return flight %d", *event.ReturnFlightID)
	}
	b.WriteString(".\n")
	b.WriteString(lead)

	return Message{To: event.UserID, Subject: subject, Body: b.String()}, true
}

func (s *Sender) Send(ctx context.Context, event kafka.OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, ok := Compose(event)
	if !ok {
		s.log.Debug("no notification for event", zap.String("type", event.Type))
		return nil
	}
	if msg.To == "" {
		s.log.Warn("order event without recipient", zap.String("order_id", event.OrderID))
		return nil
	}
	s.log.Info("notification sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("order_id", event.OrderID),
	)
	return nil
}
