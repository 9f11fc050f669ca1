package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/google/uuid"
)

type FlightFilter struct {
	DepartureAirportID int64
	ArrivalAirportID   int64
	Status             domain.FlightStatus
}

type FlightRepository interface {
	List(ctx context.Context, filter FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error)
	// BookSeat takes one seat of the class. It reports false without
	// touching the counter when the class is sold out.
	BookSeat(ctx context.Context, flightID int64, class domain.SeatClass) (bool, error)
	// ReleaseSeat returns one seat of the class. It reports false when the
	// counter is already at capacity.
	ReleaseSeat(ctx context.Context, flightID int64, class domain.SeatClass) (bool, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// GetForUpdate loads the order and locks its row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// ListByUser returns the user's orders, newest first. An empty userID
	// lists every order.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	ListExpired(ctx context.Context, deadline time.Time, limit int) ([]uuid.UUID, error)
}

type TicketRepository interface {
	CreateBatch(ctx context.Context, tickets []domain.Ticket) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Ticket, error)
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) error
	SeatTaken(ctx context.Context, flightID int64, seatNumber string) (bool, error)
}

type CatalogRepository interface {
	CreateCountry(ctx context.Context, c *domain.Country) error
	ListCountries(ctx context.Context) ([]domain.Country, error)
	CreateAirport(ctx context.Context, a *domain.Airport) error
	ListAirports(ctx context.Context) ([]domain.Airport, error)
	CreateAirline(ctx context.Context, a *domain.Airline) error
	ListAirlines(ctx context.Context) ([]domain.Airline, error)
	CreateAirplane(ctx context.Context, a *domain.Airplane) error
	ListAirplanes(ctx context.Context) ([]domain.Airplane, error)
	GetAirplane(ctx context.Context, id int64) (*domain.Airplane, error)
}

// Store groups the repositories over one datastore. Repositories returned by
// the Store passed to a WithinTx callback share that transaction.
type Store interface {
	Flights() FlightRepository
	Orders() OrderRepository
	Tickets() TicketRepository
	Catalog() CatalogRepository
	WithinTx(ctx context.Context, fn func(Store) error) error
}
