package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PGOrderRepository struct {
	db querier
}

func NewOrderRepository(db querier) OrderRepository {
	return &PGOrderRepository{db: db}
}

const orderColumns = `id, user_id, flight_id, return_flight_id, ticket_type, status, total_price, staged_requests, expires_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		staged []byte
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.FlightID, &o.ReturnFlightID, &o.TicketType, &o.Status, &o.TotalPrice,
		&staged, &o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if len(staged) > 0 {
		if err := json.Unmarshal(staged, &o.Requests); err != nil {
			return nil, fmt.Errorf("decode staged requests of order %s: %w", o.ID, err)
		}
	}
	return &o, nil
}

func encodeRequests(requests []domain.TicketRequest) ([]byte, error) {
	if requests == nil {
		requests = []domain.TicketRequest{}
	}
	return json.Marshal(requests)
}

func (r *PGOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	staged, err := encodeRequests(o.Requests)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `INSERT INTO orders (id, user_id, flight_id, return_flight_id, ticket_type, status, total_price, staged_requests, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.FlightID, o.ReturnFlightID, o.TicketType, o.Status, o.TotalPrice, staged, o.ExpiresAt).
		Scan(&o.CreatedAt, &o.UpdatedAt)
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	return err
}

func (r *PGOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return o, nil
}

func (r *PGOrderRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return o, nil
}

func (r *PGOrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if userID != "" {
		query += ` WHERE user_id=$1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *PGOrderRepository) Update(ctx context.Context, o *domain.Order) error {
	staged, err := encodeRequests(o.Requests)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `UPDATE orders SET status=$1, total_price=$2, staged_requests=$3, updated_at=now()
		WHERE id=$4 RETURNING updated_at`, o.Status, o.TotalPrice, staged, o.ID).Scan(&o.UpdatedAt)
	return notFound(err)
}

func (r *PGOrderRepository) ListExpired(ctx context.Context, deadline time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM orders WHERE status=$1 AND expires_at <= $2 ORDER BY expires_at LIMIT $3`,
		domain.OrderStatusBooked, deadline, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ OrderRepository = (*PGOrderRepository)(nil)
