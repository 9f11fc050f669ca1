package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/repository/memory"
	"github.com/Domenick1991/airtickets/internal/service/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func (m *MockProducer) published(eventType string) int {
	n := 0
	for _, call := range m.Calls {
		if e, ok := call.Arguments.Get(3).(kafka.OrderEvent); ok && e.Type == eventType && call.Arguments.String(1) == "orders" {
			n++
		}
	}
	return n
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, orderID uuid.UUID, delay time.Duration) error {
	args := m.Called(ctx, orderID, delay)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc       *OrderService
	store     *memory.Store
	producer  *MockProducer
	scheduler *MockScheduler
	cache     *MockCache
	clock     *clock
	outbound  *domain.Flight
	inbound   *domain.Flight
}

const expiry = 60 * time.Second

func newFixture(t *testing.T, seats domain.ClassSeats) *fixture {
	t.Helper()
	f := &fixture{
		store:     memory.NewStore(),
		producer:  &MockProducer{},
		scheduler: &MockScheduler{},
		cache:     &MockCache{},
		clock:     &clock{t: time.Now().Truncate(time.Second)},
	}
	f.producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.scheduler.On("Schedule", mock.Anything, mock.Anything, expiry).Return(nil).Maybe()
	f.cache.On("InvalidateFlights", mock.Anything).Return(nil).Maybe()

	f.svc = NewOrderService(f.store, inventory.NewLedger(nil), domain.DefaultPrices(), expiry, nil,
		WithProducer(f.producer, "orders"),
		WithNotificationsTopic("notifications"),
		WithCache(f.cache),
		WithScheduler(f.scheduler),
		WithClock(f.clock.Now),
		WithSweepBatchSize(2),
	)

	f.outbound = f.addFlight(t, "SU100", f.clock.Now().Add(24*time.Hour), seats)
	f.inbound = f.addFlight(t, "SU101", f.clock.Now().Add(72*time.Hour), seats)
	return f
}

func (f *fixture) addFlight(t *testing.T, number string, departure time.Time, seats domain.ClassSeats) *domain.Flight {
	t.Helper()
	flight := &domain.Flight{
		FlightNumber:       number,
		DepartureAirportID: 1,
		ArrivalAirportID:   2,
		DepartureTime:      departure,
		ArrivalTime:        departure.Add(3 * time.Hour),
		Status:             domain.FlightStatusScheduled,
		Capacity:           seats,
		Available:          seats,
	}
	require.NoError(t, f.store.Flights().Create(context.Background(), flight))
	return flight
}

func (f *fixture) available(t *testing.T, flightID int64) domain.ClassSeats {
	t.Helper()
	flight, err := f.store.Flights().GetByID(context.Background(), flightID)
	require.NoError(t, err)
	return flight.Available
}

func (f *fixture) roundTrip() CreateOrderInput {
	ret := f.inbound.ID
	return CreateOrderInput{
		FlightID:       f.outbound.ID,
		ReturnFlightID: &ret,
		TicketType:     domain.TicketTypeRoundTrip,
		Tickets: []TicketRequestInput{
			{Direction: domain.DirectionOutbound, SeatClass: domain.SeatClassEconomy, SeatNumber: "12A"},
			{Direction: domain.DirectionReturn, SeatClass: domain.SeatClassBusiness, SeatNumber: "2C"},
		},
	}
}

func (f *fixture) oneWay(class domain.SeatClass, seat string) CreateOrderInput {
	return CreateOrderInput{
		FlightID:   f.outbound.ID,
		TicketType: domain.TicketTypeOneWay,
		Tickets:    []TicketRequestInput{{SeatClass: class, SeatNumber: seat}},
	}
}

var defaultSeats = domain.ClassSeats{Economy: 10, Business: 4, FirstClass: 2}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, "user-1", f.roundTrip())
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusBooked, order.Status)
	assert.Equal(t, f.clock.Now().Add(expiry), order.ExpiresAt)
	require.Len(t, order.Requests, 2)
	assert.True(t, order.Requests[0].Price.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, order.Requests[1].Price.Equal(decimal.RequireFromString("250.00")))
	assert.True(t, order.TotalPrice.IsZero())
	assert.Empty(t, order.Tickets)

	assert.Equal(t, defaultSeats, f.available(t, f.outbound.ID), "creation must not touch inventory")
	assert.Equal(t, defaultSeats, f.available(t, f.inbound.ID))

	f.scheduler.AssertCalled(t, "Schedule", ctx, order.ID, expiry)
	assert.Equal(t, 1, f.producer.published(kafka.EventOrderCreated))
	f.producer.AssertCalled(t, "Publish", ctx, "notifications", order.ID.String(), mock.Anything)

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Requests, 2)
}

func TestOrderService_CreateOrder_ValidationErrors(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()
	same := f.outbound.ID
	early := f.addFlight(t, "SU102", f.outbound.DepartureTime.Add(time.Hour), defaultSeats)

	testCases := []struct {
		name   string
		mutate func(*CreateOrderInput)
	}{
		{"one way with return flight", func(in *CreateOrderInput) { in.TicketType = domain.TicketTypeOneWay }},
		{"round trip without return flight", func(in *CreateOrderInput) { in.ReturnFlightID = nil }},
		{"return equals outbound", func(in *CreateOrderInput) { in.ReturnFlightID = &same }},
		{"return departs before outbound arrives", func(in *CreateOrderInput) { in.ReturnFlightID = &early.ID }},
		{"round trip without return ticket", func(in *CreateOrderInput) { in.Tickets = in.Tickets[:1] }},
		{"duplicate seat", func(in *CreateOrderInput) {
			in.Tickets = append(in.Tickets, TicketRequestInput{Direction: domain.DirectionOutbound, SeatClass: domain.SeatClassFirst, SeatNumber: "12A"})
		}},
		{"unknown seat class", func(in *CreateOrderInput) { in.Tickets[0].SeatClass = "premium" }},
		{"no tickets", func(in *CreateOrderInput) { in.Tickets = nil }},
		{"unknown ticket type", func(in *CreateOrderInput) { in.TicketType = "multi_city" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := f.roundTrip()
			tc.mutate(&input)

			order, err := f.svc.CreateOrder(ctx, "user-1", input)
			assert.Nil(t, order)
			assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
		})
	}
}

func TestOrderService_CreateOrder_OneWayRejectsReturnTickets(t *testing.T) {
	f := newFixture(t, defaultSeats)
	input := f.oneWay(domain.SeatClassEconomy, "1A")
	input.Tickets[0].Direction = domain.DirectionReturn

	_, err := f.svc.CreateOrder(context.Background(), "user-1", input)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrderService_CreateOrder_UnknownFlight(t *testing.T) {
	f := newFixture(t, defaultSeats)
	input := f.oneWay(domain.SeatClassEconomy, "1A")
	input.FlightID = 999

	_, err := f.svc.CreateOrder(context.Background(), "user-1", input)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderService_CreateOrder_DepartedFlight(t *testing.T) {
	f := newFixture(t, defaultSeats)
	past := f.addFlight(t, "SU001", f.clock.Now().Add(-time.Hour), defaultSeats)
	input := f.oneWay(domain.SeatClassEconomy, "1A")
	input.FlightID = past.ID

	_, err := f.svc.CreateOrder(context.Background(), "user-1", input)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrderService_CreateOrder_NotEnoughSeats(t *testing.T) {
	f := newFixture(t, domain.ClassSeats{Economy: 5, FirstClass: 1})
	input := f.oneWay(domain.SeatClassFirst, "1A")
	input.Tickets = append(input.Tickets, TicketRequestInput{SeatClass: domain.SeatClassFirst, SeatNumber: "1B"})

	_, err := f.svc.CreateOrder(context.Background(), "user-1", input)
	assert.ErrorIs(t, err, domain.ErrInventoryExhausted)
}

func TestOrderService_CreateOrder_SeatAlreadyTicketed(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	first, err := f.svc.CreateOrder(ctx, "user-1", f.oneWay(domain.SeatClassEconomy, "7F"))
	require.NoError(t, err)
	_, err = f.svc.ConfirmOrder(ctx, first.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(ctx, "user-2", f.oneWay(domain.SeatClassEconomy, "7F"))
	assert.ErrorIs(t, err, domain.ErrSeatTaken)
}

func TestOrderService_CreateOrder_SchedulerFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, defaultSeats)
	f.scheduler.ExpectedCalls = nil
	f.scheduler.On("Schedule", mock.Anything, mock.Anything, expiry).Return(errors.New("temporal unavailable")).Once()

	order, err := f.svc.CreateOrder(context.Background(), "user-1", f.oneWay(domain.SeatClassEconomy, "1A"))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusBooked, order.Status)
	f.scheduler.AssertExpectations(t)
}

func TestOrderService_ConfirmOrder_Success(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, "user-1", f.roundTrip())
	require.NoError(t, err)

	confirmed, err := f.svc.ConfirmOrder(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusConfirmed, confirmed.Status)
	assert.Equal(t, "350.00", confirmed.TotalPrice.StringFixed(2))
	assert.Empty(t, confirmed.Requests)
	require.Len(t, confirmed.Tickets, 2)
	assert.Equal(t, f.outbound.ID, confirmed.Tickets[0].FlightID)
	assert.Equal(t, f.inbound.ID, confirmed.Tickets[1].FlightID)
	assert.Equal(t, domain.SeatClassBusiness, confirmed.Tickets[1].SeatClass)

	assert.Equal(t, defaultSeats.Economy-1, f.available(t, f.outbound.ID).Economy)
	assert.Equal(t, defaultSeats.Business-1, f.available(t, f.inbound.ID).Business)

	assert.Equal(t, 1, f.producer.published(kafka.EventOrderConfirmed))
	f.cache.AssertCalled(t, "InvalidateFlights", ctx)

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Tickets, 2)
	assert.Empty(t, stored.Requests)
}

func TestOrderService_ConfirmOrder_Idempotent(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, "user-1", f.roundTrip())
	require.NoError(t, err)

	_, err = f.svc.ConfirmOrder(ctx, order.ID)
	require.NoError(t, err)
	again, err := f.svc.ConfirmOrder(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusConfirmed, again.Status)
	assert.Len(t, again.Tickets, 2)
	assert.Equal(t, defaultSeats.Economy-1, f.available(t, f.outbound.ID).Economy)
	assert.Equal(t, 1, f.producer.published(kafka.EventOrderConfirmed))
}

func TestOrderService_ConfirmOrder_ConcurrentSameOrder(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, "user-1", f.roundTrip())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ConfirmOrder(ctx, order.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tickets, err := f.store.Tickets().ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
	assert.Equal(t, defaultSeats.Economy-1, f.available(t, f.outbound.ID).Economy)
	assert.Equal(t, defaultSeats.Business-1, f.available(t, f.inbound.ID).Business)
}

func TestOrderService_ConfirmOrder_LastSeatRace(t *testing.T) {
	f := newFixture(t, domain.ClassSeats{Economy: 5, FirstClass: 1})
	ctx := context.Background()

	const n = 8
	ids := make([]uuid.UUID, n)
	for i := range ids {
		order, err := f.svc.CreateOrder(ctx, "user-1", f.oneWay(domain.SeatClassFirst, string(rune('A'+i))))
		require.NoError(t, err)
		ids[i] = order.ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		exhausted int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.svc.ConfirmOrder(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInventoryExhausted):
				exhausted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, exhausted)
	assert.Equal(t, 0, f.available(t, f.outbound.ID).FirstClass)

	booked := 0
	for _, id := range ids {
		o, err := f.svc.GetOrder(ctx, id)
		require.NoError(t, err)
		if o.Status == domain.OrderStatusBooked {
			booked++
			assert.Len(t, o.Requests, 1, "rejected orders keep their staged requests")
		}
	}
	assert.Equal(t, n-1, booked)
}

func TestOrderService_ConfirmOrder_PartialShortfallReleases(t *testing.T) {
	f := newFixture(t, domain.ClassSeats{Economy: 3, Business: 1})
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, "user-1", f.roundTrip())
	require.NoError(t, err)

	blocker := f.oneWay(domain.SeatClassBusiness, "1A")
	blocker.FlightID = f.inbound.ID
	other, err := f.svc.CreateOrder(ctx, "user-2", blocker)
	require.NoError(t, err)
	_, err = f.svc.ConfirmOrder(ctx, other.ID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmOrder(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInventoryExhausted)

	assert.Equal(t, 3, f.available(t, f.outbound.ID).Economy, "outbound seat booked in the failed pass is released")
	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusBooked, stored.Status)
}

func TestOrderService_ConfirmOrder_Cancelled(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, "user-1", f.roundTrip())
	require.NoError(t, err)
	_, err = f.svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmOrder(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, defaultSeats, f.available(t, f.outbound.ID))
}

func TestOrderService_ConfirmOrder_FlightNoLongerBookable(t *testing.T) {
	tests := []struct {
		name   string
		change func(t *testing.T, f *fixture)
	}{
		{
			name: "return flight cancelled",
			change: func(t *testing.T, f *fixture) {
				_, err := f.store.Flights().UpdateStatus(context.Background(), f.inbound.ID, domain.FlightStatusCancelled)
				require.NoError(t, err)
			},
		},
		{
			name: "outbound departed",
			change: func(t *testing.T, f *fixture) {
				f.clock.Advance(48 * time.Hour)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, defaultSeats)
			ctx := context.Background()
			order, err := f.svc.CreateOrder(ctx, "user-1", f.roundTrip())
			require.NoError(t, err)

			tt.change(t, f)
			_, err = f.svc.ConfirmOrder(ctx, order.ID)

			assert.ErrorIs(t, err, domain.ErrValidation)
			stored, err := f.svc.GetOrder(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusBooked, stored.Status)
			assert.Empty(t, stored.Tickets)
			assert.Equal(t, defaultSeats, f.available(t, f.outbound.ID))
			assert.Equal(t, defaultSeats, f.available(t, f.inbound.ID))
		})
	}
}

func TestOrderService_ConfirmOrder_NotFound(t *testing.T) {
	f := newFixture(t, defaultSeats)
	_, err := f.svc.ConfirmOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderService_CancelOrder_ConfirmedReleasesSeats(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, "user-1", f.roundTrip())
	require.NoError(t, err)
	_, err = f.svc.ConfirmOrder(ctx, order.ID)
	require.NoError(t, err)

	cancelled, err := f.svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	assert.Equal(t, defaultSeats, f.available(t, f.outbound.ID))
	assert.Equal(t, defaultSeats, f.available(t, f.inbound.ID))

	tickets, err := f.store.Tickets().ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, tickets)
	assert.Equal(t, 1, f.producer.published(kafka.EventOrderCancelled))

	_, err = f.svc.CancelOrder(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestOrderService_CancelOrder_Booked(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, "user-1", f.roundTrip())
	require.NoError(t, err)

	cancelled, err := f.svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Empty(t, cancelled.Requests)
	assert.Equal(t, defaultSeats, f.available(t, f.outbound.ID))
}

func TestOrderService_ExpireOrder(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, "user-1", f.roundTrip())
	require.NoError(t, err)
	f.clock.Advance(expiry + time.Second)

	expired, err := f.svc.ExpireOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, expired)

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, stored.Status)
	assert.Empty(t, stored.Requests)
	assert.Equal(t, defaultSeats, f.available(t, f.outbound.ID))
	assert.Equal(t, 1, f.producer.published(kafka.EventOrderExpired))

	expired, err = f.svc.ExpireOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, expired)

	expired, err = f.svc.ExpireOrder(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestOrderService_ExpireOrder_ConfirmedIsNoop(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, "user-1", f.roundTrip())
	require.NoError(t, err)
	_, err = f.svc.ConfirmOrder(ctx, order.ID)
	require.NoError(t, err)

	expired, err := f.svc.ExpireOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, expired)

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, stored.Status)
	assert.Len(t, stored.Tickets, 2)
}

func TestOrderService_ConfirmVersusExpireRace(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		order, err := f.svc.CreateOrder(ctx, "user-1", f.oneWay(domain.SeatClassEconomy, string(rune('A'+i))))
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.svc.ConfirmOrder(ctx, order.ID)
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			}
		}()
		go func() {
			defer wg.Done()
			_, err := f.svc.ExpireOrder(ctx, order.ID)
			assert.NoError(t, err)
		}()
		wg.Wait()

		stored, err := f.svc.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		tickets, err := f.store.Tickets().ListByOrder(ctx, order.ID)
		require.NoError(t, err)
		switch stored.Status {
		case domain.OrderStatusConfirmed:
			assert.Len(t, tickets, 1)
		case domain.OrderStatusCancelled:
			assert.Empty(t, tickets)
		default:
			t.Fatalf("order left in %s", stored.Status)
		}

		if stored.Status == domain.OrderStatusConfirmed {
			_, err = f.svc.CancelOrder(ctx, order.ID)
			require.NoError(t, err)
		}
		assert.Equal(t, defaultSeats.Economy, f.available(t, f.outbound.ID).Economy)
	}
}

func TestOrderService_ExpireStaleOrders(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	var stale []uuid.UUID
	for i := 0; i < 5; i++ {
		order, err := f.svc.CreateOrder(ctx, "user-1", f.oneWay(domain.SeatClassEconomy, string(rune('A'+i))))
		require.NoError(t, err)
		stale = append(stale, order.ID)
	}
	f.clock.Advance(expiry)
	fresh, err := f.svc.CreateOrder(ctx, "user-1", f.oneWay(domain.SeatClassEconomy, "Z"))
	require.NoError(t, err)
	f.clock.Advance(time.Second)

	n, err := f.svc.ExpireStaleOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	for _, id := range stale {
		o, err := f.svc.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCancelled, o.Status)
	}
	o, err := f.svc.GetOrder(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusBooked, o.Status)
}

func TestOrderService_ListOrders(t *testing.T) {
	f := newFixture(t, defaultSeats)
	ctx := context.Background()

	mine, err := f.svc.CreateOrder(ctx, "user-1", f.oneWay(domain.SeatClassEconomy, "1A"))
	require.NoError(t, err)
	_, err = f.svc.ConfirmOrder(ctx, mine.ID)
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(ctx, "user-2", f.oneWay(domain.SeatClassEconomy, "1B"))
	require.NoError(t, err)

	list, err := f.svc.ListOrders(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
	assert.Len(t, list[0].Tickets, 1)

	all, err := f.svc.ListOrders(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
