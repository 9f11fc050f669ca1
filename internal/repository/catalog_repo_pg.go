package repository

import (
	"context"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
)

type PGCatalogRepository struct {
	db querier
}

func NewCatalogRepository(db querier) CatalogRepository {
	return &PGCatalogRepository{db: db}
}

// createErr maps constraint violations on catalog inserts to caller faults.
func createErr(err error) error {
	switch {
	case isUniqueViolation(err):
		return domain.NewValidationError("slug", "already exists")
	case isForeignKeyViolation(err):
		return domain.NewValidationError("", "referenced entity does not exist")
	}
	return err
}

func (r *PGCatalogRepository) CreateCountry(ctx context.Context, c *domain.Country) error {
	err := r.db.QueryRow(ctx, `INSERT INTO countries (slug, name) VALUES ($1, $2) RETURNING id`, c.Slug, c.Name).Scan(&c.ID)
	return createErr(err)
}

func (r *PGCatalogRepository) ListCountries(ctx context.Context) ([]domain.Country, error) {
	rows, err := r.db.Query(ctx, `SELECT id, slug, name FROM countries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Country, error) {
		var c domain.Country
		err := row.Scan(&c.ID, &c.Slug, &c.Name)
		return c, err
	})
}

func (r *PGCatalogRepository) CreateAirport(ctx context.Context, a *domain.Airport) error {
	err := r.db.QueryRow(ctx, `INSERT INTO airports (slug, name, city, country_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		a.Slug, a.Name, a.City, a.CountryID).Scan(&a.ID)
	return createErr(err)
}

func (r *PGCatalogRepository) ListAirports(ctx context.Context) ([]domain.Airport, error) {
	rows, err := r.db.Query(ctx, `SELECT id, slug, name, city, country_id FROM airports ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Airport, error) {
		var a domain.Airport
		err := row.Scan(&a.ID, &a.Slug, &a.Name, &a.City, &a.CountryID)
		return a, err
	})
}

func (r *PGCatalogRepository) CreateAirline(ctx context.Context, a *domain.Airline) error {
	err := r.db.QueryRow(ctx, `INSERT INTO airlines (slug, name, home_airport_id) VALUES ($1, $2, $3) RETURNING id`,
		a.Slug, a.Name, a.HomeAirportID).Scan(&a.ID)
	return createErr(err)
}

func (r *PGCatalogRepository) ListAirlines(ctx context.Context) ([]domain.Airline, error) {
	rows, err := r.db.Query(ctx, `SELECT id, slug, name, home_airport_id FROM airlines ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Airline, error) {
		var a domain.Airline
		err := row.Scan(&a.ID, &a.Slug, &a.Name, &a.HomeAirportID)
		return a, err
	})
}

func (r *PGCatalogRepository) CreateAirplane(ctx context.Context, a *domain.Airplane) error {
	err := r.db.QueryRow(ctx, `INSERT INTO airplanes (slug, model, airline_id, seats_economy, seats_business, seats_first_class)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		a.Slug, a.Model, a.AirlineID, a.Seats.Economy, a.Seats.Business, a.Seats.FirstClass).Scan(&a.ID)
	return createErr(err)
}

const airplaneColumns = `id, slug, model, airline_id, seats_economy, seats_business, seats_first_class`

func scanAirplane(row pgx.Row) (domain.Airplane, error) {
	var a domain.Airplane
	err := row.Scan(&a.ID, &a.Slug, &a.Model, &a.AirlineID, &a.Seats.Economy, &a.Seats.Business, &a.Seats.FirstClass)
	return a, err
}

func (r *PGCatalogRepository) ListAirplanes(ctx context.Context) ([]domain.Airplane, error) {
	rows, err := r.db.Query(ctx, `SELECT `+airplaneColumns+` FROM airplanes ORDER BY model`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Airplane, error) {
		return scanAirplane(row)
	})
}

func (r *PGCatalogRepository) GetAirplane(ctx context.Context, id int64) (*domain.Airplane, error) {
	a, err := scanAirplane(r.db.QueryRow(ctx, `SELECT `+airplaneColumns+` FROM airplanes WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

var _ CatalogRepository = (*PGCatalogRepository)(nil)
