package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
)

type PGFlightRepository struct {
	db querier
}

func NewFlightRepository(db querier) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, airplane_id, departure_airport_id, arrival_airport_id, departure_time, arrival_time, status,
	capacity_economy, capacity_business, capacity_first_class,
	available_economy, available_business, available_first_class,
	created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.AirplaneID, &f.DepartureAirportID, &f.ArrivalAirportID,
		&f.DepartureTime, &f.ArrivalTime, &f.Status,
		&f.Capacity.Economy, &f.Capacity.Business, &f.Capacity.FirstClass,
		&f.Available.Economy, &f.Available.Business, &f.Available.FirstClass,
		&f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context, filter FlightFilter) ([]domain.Flight, error) {
	var (
		where []string
		args  []any
	)
	if filter.DepartureAirportID != 0 {
		args = append(args, filter.DepartureAirportID)
		where = append(where, fmt.Sprintf("departure_airport_id = $%d", len(args)))
	}
	if filter.ArrivalAirportID != 0 {
		args = append(args, filter.ArrivalAirportID)
		where = append(where, fmt.Sprintf("arrival_airport_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + flightColumns + ` FROM flights`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY departure_time`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, airplane_id, departure_airport_id, arrival_airport_id, departure_time, arrival_time, status,
		capacity_economy, capacity_business, capacity_first_class,
		available_economy, available_business, available_first_class)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`,
		f.FlightNumber, f.AirplaneID, f.DepartureAirportID, f.ArrivalAirportID, f.DepartureTime, f.ArrivalTime, f.Status,
		f.Capacity.Economy, f.Capacity.Business, f.Capacity.FirstClass,
		f.Available.Economy, f.Available.Business, f.Available.FirstClass).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	switch {
	case isUniqueViolation(err):
		return domain.NewValidationError("flight_number", "already exists")
	case isForeignKeyViolation(err):
		return domain.NewValidationError("", "referenced airplane or airport does not exist")
	}
	return err
}

func (r *PGFlightRepository) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `UPDATE flights SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+flightColumns, status, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (r *PGFlightRepository) BookSeat(ctx context.Context, flightID int64, class domain.SeatClass) (bool, error) {
	available, _, err := seatColumns(class)
	if err != nil {
		return false, err
	}
	res, err := r.db.Exec(ctx, fmt.Sprintf(`UPDATE flights SET %[1]s = %[1]s - 1, updated_at = now() WHERE id=$1 AND %[1]s > 0`, available), flightID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *PGFlightRepository) ReleaseSeat(ctx context.Context, flightID int64, class domain.SeatClass) (bool, error) {
	available, capacity, err := seatColumns(class)
	if err != nil {
		return false, err
	}
	res, err := r.db.Exec(ctx, fmt.Sprintf(`UPDATE flights SET %[1]s = %[1]s + 1, updated_at = now() WHERE id=$1 AND %[1]s < %[2]s`, available, capacity), flightID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

// seatColumns maps a class to its counter columns. Only these fixed names
// are ever interpolated into SQL.
func seatColumns(class domain.SeatClass) (available, capacity string, err error) {
	switch class {
	case domain.SeatClassEconomy:
		return "available_economy", "capacity_economy", nil
	case domain.SeatClassBusiness:
		return "available_business", "capacity_business", nil
	case domain.SeatClassFirst:
		return "available_first_class", "capacity_first_class", nil
	}
	return "", "", domain.NewValidationError("seat_class", fmt.Sprintf("unknown seat class %q", class))
}

var _ FlightRepository = (*PGFlightRepository)(nil)
