package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Ticket struct {
	ID         int64           `json:"id"`
	OrderID    uuid.UUID       `json:"order_id"`
	FlightID   int64           `json:"flight_id"`
	Direction  Direction       `json:"direction"`
	SeatClass  SeatClass       `json:"seat_class"`
	SeatNumber string          `json:"seat_number"`
	Price      decimal.Decimal `json:"price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// IssueTickets materializes one ticket per staged request of the order.
// Requests whose direction has no flight on the order are skipped.
func IssueTickets(o *Order, now time.Time) []Ticket {
	tickets := make([]Ticket, 0, len(o.Requests))
	for _, r := range o.Requests {
		flightID, ok := o.FlightFor(r.Direction)
		if !ok {
			continue
		}
		tickets = append(tickets, Ticket{
			OrderID:    o.ID,
			FlightID:   flightID,
			Direction:  r.Direction,
			SeatClass:  r.SeatClass,
			SeatNumber: r.SeatNumber,
			Price:      r.Price,
			CreatedAt:  now,
		})
	}
	return tickets
}
