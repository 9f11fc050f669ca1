package memory

import (
	"context"
	"sort"

	"github.com/Domenick1991/airtickets/internal/domain"
)

type catalogRepo struct{ s *Store }

var errSlugExists = domain.NewValidationError("slug", "already exists")

func (r *catalogRepo) CreateCountry(_ context.Context, c *domain.Country) error {
	defer r.s.lock()()
	for _, existing := range r.s.data.countries {
		if existing.Slug == c.Slug {
			return errSlugExists
		}
	}
	c.ID = r.s.data.id()
	r.s.data.countries[c.ID] = *c
	return nil
}

func (r *catalogRepo) ListCountries(_ context.Context) ([]domain.Country, error) {
	defer r.s.lock()()
	out := make([]domain.Country, 0, len(r.s.data.countries))
	for _, c := range r.s.data.countries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *catalogRepo) CreateAirport(_ context.Context, a *domain.Airport) error {
	defer r.s.lock()()
	if _, ok := r.s.data.countries[a.CountryID]; !ok {
		return domain.NewValidationError("country_id", "country does not exist")
	}
	for _, existing := range r.s.data.airports {
		if existing.Slug == a.Slug {
			return errSlugExists
		}
	}
	a.ID = r.s.data.id()
	r.s.data.airports[a.ID] = *a
	return nil
}

func (r *catalogRepo) ListAirports(_ context.Context) ([]domain.Airport, error) {
	defer r.s.lock()()
	out := make([]domain.Airport, 0, len(r.s.data.airports))
	for _, a := range r.s.data.airports {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *catalogRepo) CreateAirline(_ context.Context, a *domain.Airline) error {
	defer r.s.lock()()
	if a.HomeAirportID != nil {
		if _, ok := r.s.data.airports[*a.HomeAirportID]; !ok {
			return domain.NewValidationError("home_airport_id", "airport does not exist")
		}
	}
	for _, existing := range r.s.data.airlines {
		if existing.Slug == a.Slug {
			return errSlugExists
		}
	}
	a.ID = r.s.data.id()
	r.s.data.airlines[a.ID] = *a
	return nil
}

func (r *catalogRepo) ListAirlines(_ context.Context) ([]domain.Airline, error) {
	defer r.s.lock()()
	out := make([]domain.Airline, 0, len(r.s.data.airlines))
	for _, a := range r.s.data.airlines {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *catalogRepo) CreateAirplane(_ context.Context, a *domain.Airplane) error {
	defer r.s.lock()()
	if _, ok := r.s.data.airlines[a.AirlineID]; !ok {
		return domain.NewValidationError("airline_id", "airline does not exist")
	}
	for _, existing := range r.s.data.airplanes {
		if existing.Slug == a.Slug {
			return errSlugExists
		}
	}
	a.ID = r.s.data.id()
	r.s.data.airplanes[a.ID] = *a
	return nil
}

func (r *catalogRepo) ListAirplanes(_ context.Context) ([]domain.Airplane, error) {
	defer r.s.lock()()
	out := make([]domain.Airplane, 0, len(r.s.data.airplanes))
	for _, a := range r.s.data.airplanes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out, nil
}

func (r *catalogRepo) GetAirplane(_ context.Context, id int64) (*domain.Airplane, error) {
	defer r.s.lock()()
	a, ok := r.s.data.airplanes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}
