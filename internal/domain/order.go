package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusBooked    OrderStatus = "booked"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusCancelled
}

type TicketType string

const (
	TicketTypeOneWay    TicketType = "one_way"
	TicketTypeRoundTrip TicketType = "round_trip"
)

type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionReturn   Direction = "return"
)

// transitions lists every legal status change. Cancelling a confirmed order
// is allowed and releases its seats.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusBooked:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusCancelled},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TicketRequest is a staged ticket waiting for confirmation.
type TicketRequest struct {
	Direction  Direction       `json:"direction"`
	SeatClass  SeatClass       `json:"seat_class"`
	SeatNumber string          `json:"seat_number"`
	Price      decimal.Decimal `json:"price"`
}

type Order struct {
	ID             uuid.UUID       `json:"id"`
	UserID         string          `json:"user_id"`
	FlightID       int64           `json:"flight_id"`
	ReturnFlightID *int64          `json:"return_flight_id,omitempty"`
	TicketType     TicketType      `json:"ticket_type"`
	Status         OrderStatus     `json:"status"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Requests       []TicketRequest `json:"requests"`
	Tickets        []Ticket        `json:"tickets,omitempty"`
	ExpiresAt      time.Time       `json:"expires_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// FlightFor resolves the flight a ticket in the given direction travels on.
func (o *Order) FlightFor(d Direction) (int64, bool) {
	switch d {
	case DirectionOutbound:
		return o.FlightID, true
	case DirectionReturn:
		if o.ReturnFlightID == nil {
			return 0, false
		}
		return *o.ReturnFlightID, true
	}
	return 0, false
}

func (o *Order) TransitionTo(to OrderStatus) error {
	if !CanTransition(o.Status, to) {
		return &TransitionError{OrderID: o.ID, From: o.Status, To: to}
	}
	o.Status = to
	return nil
}

// OwnedBy reports whether userID is the order owner.
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID != "" && o.UserID == userID
}

// Total sums the prices of the staged requests.
func Total(requests []TicketRequest) decimal.Decimal {
	total := decimal.Zero
	for _, r := range requests {
		total = total.Add(r.Price)
	}
	return total
}
