// Package memory is an in-process Store used by the memory database driver
// and by tests. Transactions run one at a time and roll back by restoring a
// snapshot.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/google/uuid"
)

type state struct {
	flights   map[int64]domain.Flight
	orders    map[uuid.UUID]domain.Order
	tickets   map[int64]domain.Ticket
	countries map[int64]domain.Country
	airports  map[int64]domain.Airport
	airlines  map[int64]domain.Airline
	airplanes map[int64]domain.Airplane
	nextID    int64
}

func newState() *state {
	return &state{
		flights:   make(map[int64]domain.Flight),
		orders:    make(map[uuid.UUID]domain.Order),
		tickets:   make(map[int64]domain.Ticket),
		countries: make(map[int64]domain.Country),
		airports:  make(map[int64]domain.Airport),
		airlines:  make(map[int64]domain.Airline),
		airplanes: make(map[int64]domain.Airplane),
	}
}

// clone copies the maps. Stored values own their slices, so a shallow copy
// per entry is enough.
func (s *state) clone() *state {
	c := &state{
		flights:   make(map[int64]domain.Flight, len(s.flights)),
		orders:    make(map[uuid.UUID]domain.Order, len(s.orders)),
		tickets:   make(map[int64]domain.Ticket, len(s.tickets)),
		countries: make(map[int64]domain.Country, len(s.countries)),
		airports:  make(map[int64]domain.Airport, len(s.airports)),
		airlines:  make(map[int64]domain.Airline, len(s.airlines)),
		airplanes: make(map[int64]domain.Airplane, len(s.airplanes)),
		nextID:    s.nextID,
	}
	for k, v := range s.flights {
		c.flights[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	for k, v := range s.countries {
		c.countries[k] = v
	}
	for k, v := range s.airports {
		c.airports[k] = v
	}
	for k, v := range s.airlines {
		c.airlines[k] = v
	}
	for k, v := range s.airplanes {
		c.airplanes[k] = v
	}
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

type Store struct {
	mu   *sync.Mutex
	data *state
	inTx bool
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, data: newState(), now: time.Now}
}

// lock serializes access outside transactions. Inside a transaction the
// mutex is already held.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Flights() repository.FlightRepository { return &flightRepo{s} }
func (s *Store) Orders() repository.OrderRepository { return &orderRepo{s} }
func (s *Store) Tickets() repository.TicketRepository { return &ticketRepo{s} }
func (s *Store) Catalog() repository.CatalogRepository { return &catalogRepo{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&Store{mu: s.mu, data: s.data, inTx: true, now: s.now}); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

type flightRepo struct{ s *Store }

func (r *flightRepo) List(_ context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	defer r.s.lock()()
	flights := make([]domain.Flight, 0, len(r.s.data.flights))
	for _, f := range r.s.data.flights {
		if filter.DepartureAirportID != 0 && f.DepartureAirportID != filter.DepartureAirportID {
			continue
		}
		if filter.ArrivalAirportID != 0 && f.ArrivalAirportID != filter.ArrivalAirportID {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		flights = append(flights, f)
	}
	sort.Slice(flights, func(i, j int) bool {
		if flights[i].DepartureTime.Equal(flights[j].DepartureTime) {
			return flights[i].ID < flights[j].ID
		}
		return flights[i].DepartureTime.Before(flights[j].DepartureTime)
	})
	return flights, nil
}

func (r *flightRepo) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	defer r.s.lock()()
	f, ok := r.s.data.flights[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

func (r *flightRepo) Create(_ context.Context, f *domain.Flight) error {
	defer r.s.lock()()
	for _, existing := range r.s.data.flights {
		if existing.FlightNumber == f.FlightNumber {
			return domain.NewValidationError("flight_number", "already exists")
		}
	}
	now := r.s.now()
	f.ID = r.s.data.id()
	f.CreatedAt, f.UpdatedAt = now, now
	r.s.data.flights[f.ID] = *f
	return nil
}

func (r *flightRepo) UpdateStatus(_ context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error) {
	defer r.s.lock()()
	f, ok := r.s.data.flights[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	f.Status = status
	f.UpdatedAt = r.s.now()
	r.s.data.flights[id] = f
	return &f, nil
}

func (r *flightRepo) BookSeat(_ context.Context, flightID int64, class domain.SeatClass) (bool, error) {
	defer r.s.lock()()
	if !class.Valid() {
		return false, domain.NewValidationError("seat_class", "unknown seat class")
	}
	f, ok := r.s.data.flights[flightID]
	if !ok || f.Available.Get(class) <= 0 {
		return false, nil
	}
	f.Available.Set(class, f.Available.Get(class)-1)
	f.UpdatedAt = r.s.now()
	r.s.data.flights[flightID] = f
	return true, nil
}

func (r *flightRepo) ReleaseSeat(_ context.Context, flightID int64, class domain.SeatClass) (bool, error) {
	defer r.s.lock()()
	if !class.Valid() {
		return false, domain.NewValidationError("seat_class", "unknown seat class")
	}
	f, ok := r.s.data.flights[flightID]
	if !ok || f.Available.Get(class) >= f.Capacity.Get(class) {
		return false, nil
	}
	f.Available.Set(class, f.Available.Get(class)+1)
	f.UpdatedAt = r.s.now()
	r.s.data.flights[flightID] = f
	return true, nil
}

type orderRepo struct{ s *Store }

func copyOrder(o domain.Order) domain.Order {
	if o.Requests != nil {
		o.Requests = append([]domain.TicketRequest(nil), o.Requests...)
	}
	if o.ReturnFlightID != nil {
		id := *o.ReturnFlightID
		o.ReturnFlightID = &id
	}
	o.Tickets = nil
	return o
}

func (r *orderRepo) Create(_ context.Context, o *domain.Order) error {
	defer r.s.lock()()
	if _, ok := r.s.data.flights[o.FlightID]; !ok {
		return domain.ErrNotFound
	}
	if o.ReturnFlightID != nil {
		if _, ok := r.s.data.flights[*o.ReturnFlightID]; !ok {
			return domain.ErrNotFound
		}
	}
	now := r.s.now()
	o.CreatedAt, o.UpdatedAt = now, now
	r.s.data.orders[o.ID] = copyOrder(*o)
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	defer r.s.lock()()
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	o = copyOrder(o)
	return &o, nil
}

// GetForUpdate needs no extra locking: transactions already hold the store.
func (r *orderRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	defer r.s.lock()()
	orders := make([]domain.Order, 0)
	for _, o := range r.s.data.orders {
		if userID != "" && o.UserID != userID {
			continue
		}
		orders = append(orders, copyOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (r *orderRepo) Update(_ context.Context, o *domain.Order) error {
	defer r.s.lock()()
	stored, ok := r.s.data.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = o.Status
	stored.TotalPrice = o.TotalPrice
	stored.Requests = o.Requests
	stored.UpdatedAt = r.s.now()
	o.UpdatedAt = stored.UpdatedAt
	r.s.data.orders[o.ID] = copyOrder(stored)
	return nil
}

func (r *orderRepo) ListExpired(_ context.Context, deadline time.Time, limit int) ([]uuid.UUID, error) {
	defer r.s.lock()()
	var expired []domain.Order
	for _, o := range r.s.data.orders {
		if o.Status == domain.OrderStatusBooked && !o.ExpiresAt.After(deadline) {
			expired = append(expired, o)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ExpiresAt.Before(expired[j].ExpiresAt) })
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	ids := make([]uuid.UUID, 0, len(expired))
	for _, o := range expired {
		ids = append(ids, o.ID)
	}
	return ids, nil
}

type ticketRepo struct{ s *Store }

func (r *ticketRepo) CreateBatch(_ context.Context, tickets []domain.Ticket) error {
	defer r.s.lock()()
	taken := make(map[string]bool, len(r.s.data.tickets))
	for _, t := range r.s.data.tickets {
		taken[seatKey(t.FlightID, t.SeatNumber)] = true
	}
	for _, t := range tickets {
		key := seatKey(t.FlightID, t.SeatNumber)
		if taken[key] {
			return &domain.SeatTakenError{FlightID: t.FlightID, SeatNumber: t.SeatNumber}
		}
		taken[key] = true
	}
	for i := range tickets {
		tickets[i].ID = r.s.data.id()
		r.s.data.tickets[tickets[i].ID] = tickets[i]
	}
	return nil
}

func (r *ticketRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]domain.Ticket, error) {
	defer r.s.lock()()
	tickets := make([]domain.Ticket, 0)
	for _, t := range r.s.data.tickets {
		if t.OrderID == orderID {
			tickets = append(tickets, t)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets, nil
}

func (r *ticketRepo) DeleteByOrder(_ context.Context, orderID uuid.UUID) error {
	defer r.s.lock()()
	for id, t := range r.s.data.tickets {
		if t.OrderID == orderID {
			delete(r.s.data.tickets, id)
		}
	}
	return nil
}

func (r *ticketRepo) SeatTaken(_ context.Context, flightID int64, seatNumber string) (bool, error) {
	defer r.s.lock()()
	for _, t := range r.s.data.tickets {
		if t.FlightID == flightID && t.SeatNumber == seatNumber {
			return true, nil
		}
	}
	return false, nil
}

func seatKey(flightID int64, seat string) string {
	return strconv.FormatInt(flightID, 10) + "/" + seat
}

var _ repository.Store = (*Store)(nil)
