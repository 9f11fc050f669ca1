package repository

import (
	"context"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/google/uuid"
)

type PGTicketRepository struct {
	db querier
}

func NewTicketRepository(db querier) TicketRepository {
	return &PGTicketRepository{db: db}
}

func (r *PGTicketRepository) CreateBatch(ctx context.Context, tickets []domain.Ticket) error {
	for i := range tickets {
		t := &tickets[i]
		err := r.db.QueryRow(ctx, `INSERT INTO tickets (order_id, flight_id, direction, seat_class, seat_number, price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`, t.OrderID, t.FlightID, t.Direction, t.SeatClass, t.SeatNumber, t.Price, t.CreatedAt).
			Scan(&t.ID)
		if isUniqueViolation(err) {
			return &domain.SeatTakenError{FlightID: t.FlightID, SeatNumber: t.SeatNumber}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PGTicketRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT id, order_id, flight_id, direction, seat_class, seat_number, price, created_at
		FROM tickets WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.OrderID, &t.FlightID, &t.Direction, &t.SeatClass, &t.SeatNumber, &t.Price, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *PGTicketRepository) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE order_id=$1`, orderID)
	return err
}

func (r *PGTicketRepository) SeatTaken(ctx context.Context, flightID int64, seatNumber string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE flight_id=$1 AND seat_number=$2)`, flightID, seatNumber).Scan(&taken)
	return taken, err
}

var _ TicketRepository = (*PGTicketRepository)(nil)
