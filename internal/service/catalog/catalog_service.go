package catalog

import (
	"context"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/validation"
	"go.uber.org/zap"
)

type CatalogUseCase interface {
	CreateCountry(ctx context.Context, input CountryInput) (*domain.Country, error)
	ListCountries(ctx context.Context) ([]domain.Country, error)
	CreateAirport(ctx context.Context, input AirportInput) (*domain.Airport, error)
	ListAirports(ctx context.Context) ([]domain.Airport, error)
	CreateAirline(ctx context.Context, input AirlineInput) (*domain.Airline, error)
	ListAirlines(ctx context.Context) ([]domain.Airline, error)
	CreateAirplane(ctx context.Context, input AirplaneInput) (*domain.Airplane, error)
	ListAirplanes(ctx context.Context) ([]domain.Airplane, error)
}

type CountryInput struct {
	Slug string `json:"slug" validate:"omitempty,max=64"`
	Name string `json:"name" validate:"required,max=255"`
}

type AirportInput struct {
	Slug      string `json:"slug" validate:"omitempty,max=64"`
	Name      string `json:"name" validate:"required,max=255"`
	City      string `json:"city" validate:"required,max=255"`
	CountryID int64  `json:"country_id" validate:"required,gt=0"`
}

type AirlineInput struct {
	Slug          string `json:"slug" validate:"omitempty,max=64"`
	Name          string `json:"name" validate:"required,max=100"`
	HomeAirportID *int64 `json:"home_airport_id" validate:"omitempty,gt=0"`
}

type AirplaneInput struct {
	Slug       string `json:"slug" validate:"omitempty,max=64"`
	Model      string `json:"model" validate:"required,max=100"`
	AirlineID  int64  `json:"airline_id" validate:"required,gt=0"`
	Economy    int    `json:"economy" validate:"gte=0,max=1000"`
	Business   int    `json:"business" validate:"gte=0,max=200"`
	FirstClass int    `json:"first_class" validate:"gte=0,max=50"`
}

type CatalogService struct {
	repo repository.CatalogRepository
	log  *zap.Logger
}

var _ CatalogUseCase = (*CatalogService)(nil)

func NewCatalogService(repo repository.CatalogRepository, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{repo: repo, log: log.With(zap.String("service", "catalog"))}
}

// slugFor keeps an explicit slug (normalized) or derives one from name.
func slugFor(explicit, name string) (string, error) {
	source := explicit
	if source == "" {
		source = name
	}
	slug := Slugify(source)
	if slug == "" {
		return "", domain.NewValidationError("slug", "cannot derive a slug from "+source)
	}
	return slug, nil
}

func (s *CatalogService) CreateCountry(ctx context.Context, input CountryInput) (*domain.Country, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	slug, err := slugFor(input.Slug, input.Name)
	if err != nil {
		return nil, err
	}
	country := &domain.Country{Slug: slug, Name: input.Name}
	if err := s.repo.CreateCountry(ctx, country); err != nil {
		return nil, err
	}
	s.log.Info("country created", zap.Int64("id", country.ID), zap.String("slug", slug))
	return country, nil
}

func (s *CatalogService) ListCountries(ctx context.Context) ([]domain.Country, error) {
	return s.repo.ListCountries(ctx)
}

func (s *CatalogService) CreateAirport(ctx context.Context, input AirportInput) (*domain.Airport, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	slug, err := slugFor(input.Slug, input.Name)
	if err != nil {
		return nil, err
	}
	airport := &domain.Airport{Slug: slug, Name: input.Name, City: input.City, CountryID: input.CountryID}
	if err := s.repo.CreateAirport(ctx, airport); err != nil {
		return nil, err
	}
	s.log.Info("airport created", zap.Int64("id", airport.ID), zap.String("slug", slug))
	return airport, nil
}

func (s *CatalogService) ListAirports(ctx context.Context) ([]domain.Airport, error) {
	return s.repo.ListAirports(ctx)
}

func (s *CatalogService) CreateAirline(ctx context.Context, input AirlineInput) (*domain.Airline, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	slug, err := slugFor(input.Slug, input.Name)
	if err != nil {
		return nil, err
	}
	airline := &domain.Airline{Slug: slug, Name: input.Name, HomeAirportID: input.HomeAirportID}
	if err := s.repo.CreateAirline(ctx, airline); err != nil {
		return nil, err
	}
	s.log.Info("airline created", zap.Int64("id", airline.ID), zap.String("slug", slug))
	return airline, nil
}

func (s *CatalogService) ListAirlines(ctx context.Context) ([]domain.Airline, error) {
	return s.repo.ListAirlines(ctx)
}

func (s *CatalogService) CreateAirplane(ctx context.Context, input AirplaneInput) (*domain.Airplane, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	seats := domain.ClassSeats{Economy: input.Economy, Business: input.Business, FirstClass: input.FirstClass}
	if seats.Total() == 0 {
		return nil, domain.NewValidationError("economy", "an airplane needs at least one seat")
	}
	slug, err := slugFor(input.Slug, input.Model)
	if err != nil {
		return nil, err
	}
	airplane := &domain.Airplane{Slug: slug, Model: input.Model, AirlineID: input.AirlineID, Seats: seats}
	if err := s.repo.CreateAirplane(ctx, airplane); err != nil {
		return nil, err
	}
	s.log.Info("airplane created", zap.Int64("id", airplane.ID), zap.String("slug", slug), zap.Int("seats", seats.Total()))
	return airplane, nil
}

func (s *CatalogService) ListAirplanes(ctx context.Context) ([]domain.Airplane, error) {
	return s.repo.ListAirplanes(ctx)
}
