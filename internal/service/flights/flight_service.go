package flights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/validation"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	List(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error)
}

// FlightCache holds the unfiltered flight list.
type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type CreateFlightInput struct {
	FlightNumber       string              `json:"flight_number" validate:"required,max=16"`
	AirplaneID         int64               `json:"airplane_id" validate:"required,gt=0"`
	DepartureAirportID int64               `json:"departure_airport_id" validate:"required,gt=0"`
	ArrivalAirportID   int64               `json:"arrival_airport_id" validate:"required,gt=0,nefield=DepartureAirportID"`
	DepartureTime      time.Time           `json:"departure_time" validate:"required"`
	ArrivalTime        time.Time           `json:"arrival_time" validate:"required,gtfield=DepartureTime"`
	Status             domain.FlightStatus `json:"status" validate:"omitempty,oneof=scheduled boarding departed delayed cancelled"`
}

type FlightService struct {
	flights repository.FlightRepository
	catalog repository.CatalogRepository
	cache   FlightCache
	log     *zap.Logger
}

var _ FlightUseCase = (*FlightService)(nil)

func NewFlightService(flights repository.FlightRepository, catalog repository.CatalogRepository, cache FlightCache, log *zap.Logger) *FlightService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FlightService{
		flights: flights,
		catalog: catalog,
		cache:   cache,
		log:     log.With(zap.String("service", "flights")),
	}
}

// List serves the unfiltered list from cache when possible. Filtered
// queries always hit the repository.
func (s *FlightService) List(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown flight status")
	}
	cacheable := s.cache != nil && filter == (repository.FlightFilter{})

	if cacheable {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			s.log.Warn("flights cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := s.flights.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.Warn("flights cache write failed", zap.Error(err))
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.flights.GetByID(ctx, id)
}

// Create registers a flight. Seat capacity is copied from the airplane and
// never follows later airplane edits.
func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	input.FlightNumber = strings.ToUpper(strings.TrimSpace(input.FlightNumber))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = domain.FlightStatusScheduled
	}

	airplane, err := s.catalog.GetAirplane(ctx, input.AirplaneID)
	if err != nil {
		return nil, fmt.Errorf("airplane %d: %w", input.AirplaneID, err)
	}
	if airplane.Seats.Total() == 0 {
		return nil, domain.NewValidationError("airplane_id", "airplane has no seats")
	}

	flight := &domain.Flight{
		FlightNumber:       input.FlightNumber,
		AirplaneID:         airplane.ID,
		DepartureAirportID: input.DepartureAirportID,
		ArrivalAirportID:   input.ArrivalAirportID,
		DepartureTime:      input.DepartureTime.UTC(),
		ArrivalTime:        input.ArrivalTime.UTC(),
		Status:             input.Status,
		Capacity:           airplane.Seats,
		Available:          airplane.Seats,
	}
	if err := s.flights.Create(ctx, flight); err != nil {
		return nil, err
	}

	s.log.Info("flight created", zap.Int64("flight_id", flight.ID), zap.String("flight_number", flight.FlightNumber))
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "unknown flight status")
	}
	flight, err := s.flights.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("failed to invalidate flights cache", zap.Error(err))
	}
}
