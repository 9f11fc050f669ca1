package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/metrics"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/service/inventory"
	"github.com/Domenick1991/airtickets/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderUseCase interface {
	CreateOrder(ctx context.Context, userID string, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
	ConfirmOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ExpireOrder(ctx context.Context, id uuid.UUID) (bool, error)
	ExpireStaleOrders(ctx context.Context) (int, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type FlightsCache interface {
	InvalidateFlights(ctx context.Context) error
}

// Scheduler arranges a one-shot ExpireOrder call after delay.
type Scheduler interface {
	Schedule(ctx context.Context, orderID uuid.UUID, delay time.Duration) error
}

type TicketRequestInput struct {
	Direction  domain.Direction `json:"direction" validate:"required,oneof=outbound return"`
	SeatClass  domain.SeatClass `json:"seat_class" validate:"required,oneof=economy business first_class"`
	SeatNumber string           `json:"seat_number" validate:"required,max=8"`
}

type CreateOrderInput struct {
	FlightID       int64                `json:"flight_id" validate:"required,gt=0"`
	ReturnFlightID *int64               `json:"return_flight_id" validate:"omitempty,gt=0"`
	TicketType     domain.TicketType    `json:"ticket_type" validate:"required,oneof=one_way round_trip"`
	Tickets        []TicketRequestInput `json:"tickets" validate:"required,min=1,max=10,dive"`
}

type OrderService struct {
	store              repository.Store
	ledger             *inventory.Ledger
	prices             domain.PriceTable
	expiry             time.Duration
	log                *zap.Logger
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	cache              FlightsCache
	scheduler          Scheduler
	sweepBatch         int
	now                func() time.Time
}

type OrderServiceOption func(*OrderService)

func WithProducer(p Producer, topic string) OrderServiceOption {
	return func(s *OrderService) {
		s.producer = p
		s.eventsTopic = topic
	}
}

func WithNotificationsTopic(topic string) OrderServiceOption {
	return func(s *OrderService) {
		s.notificationsTopic = topic
	}
}

func WithCache(c FlightsCache) OrderServiceOption {
	return func(s *OrderService) {
		s.cache = c
	}
}

func WithScheduler(sched Scheduler) OrderServiceOption {
	return func(s *OrderService) {
		s.scheduler = sched
	}
}

func WithSweepBatchSize(n int) OrderServiceOption {
	return func(s *OrderService) {
		if n > 0 {
			s.sweepBatch = n
		}
	}
}

func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *OrderService) {
		s.now = now
	}
}

func NewOrderService(
	store repository.Store,
	ledger *inventory.Ledger,
	prices domain.PriceTable,
	expiry time.Duration,
	log *zap.Logger,
	opts ...OrderServiceOption,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	service := &OrderService{
		store:      store,
		ledger:     ledger,
		prices:     prices,
		expiry:     expiry,
		log:        log.With(zap.String("service", "orders")),
		sweepBatch: 100,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *OrderService) CreateOrder(ctx context.Context, userID string, input CreateOrderInput) (*domain.Order, error) {
	for i := range input.Tickets {
		if input.Tickets[i].Direction == "" {
			input.Tickets[i].Direction = domain.DirectionOutbound
		}
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, domain.ErrForbidden
	}
	if err := checkItinerary(input); err != nil {
		return nil, err
	}

	now := s.now()
	flights := s.store.Flights()

	outbound, err := flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, fmt.Errorf("flight %d: %w", input.FlightID, err)
	}
	if err := outbound.Bookable(now); err != nil {
		return nil, err
	}
	byID := map[int64]*domain.Flight{outbound.ID: outbound}

	if input.ReturnFlightID != nil {
		ret, err := flights.GetByID(ctx, *input.ReturnFlightID)
		if err != nil {
			return nil, fmt.Errorf("return flight %d: %w", *input.ReturnFlightID, err)
		}
		if err := ret.Bookable(now); err != nil {
			return nil, err
		}
		if !ret.DepartureTime.After(outbound.ArrivalTime) {
			return nil, domain.NewValidationError("return_flight_id", "return flight must depart after the outbound flight arrives")
		}
		byID[ret.ID] = ret
	}

	order := &domain.Order{
		ID:             uuid.New(),
		UserID:         userID,
		FlightID:       input.FlightID,
		ReturnFlightID: input.ReturnFlightID,
		TicketType:     input.TicketType,
		Status:         domain.OrderStatusBooked,
		ExpiresAt:      now.Add(s.expiry),
	}

	wanted := make(map[inventory.Hold]int)
	for _, t := range input.Tickets {
		flightID, _ := order.FlightFor(t.Direction)
		wanted[inventory.Hold{FlightID: flightID, Class: t.SeatClass}]++

		taken, err := s.store.Tickets().SeatTaken(ctx, flightID, t.SeatNumber)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &domain.SeatTakenError{FlightID: flightID, SeatNumber: t.SeatNumber}
		}

		order.Requests = append(order.Requests, domain.TicketRequest{
			Direction:  t.Direction,
			SeatClass:  t.SeatClass,
			SeatNumber: t.SeatNumber,
			Price:      s.prices.Price(t.SeatClass),
		})
	}
	for hold, n := range wanted {
		if byID[hold.FlightID].Available.Get(hold.Class) < n {
			return nil, &domain.ExhaustedError{FlightID: hold.FlightID, Class: hold.Class}
		}
	}

	if err := s.store.Orders().Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	metrics.TrackTransition(string(domain.OrderStatusBooked), "created")

	if s.scheduler != nil {
		if err := s.scheduler.Schedule(ctx, order.ID, s.expiry); err != nil {
			s.log.Warn("failed to schedule order expiry, sweeper will pick it up",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
	s.publish(ctx, kafka.EventOrderCreated, order)
	return order, nil
}

// checkItinerary enforces ticket type rules that need no datastore.
func checkItinerary(input CreateOrderInput) error {
	switch input.TicketType {
	case domain.TicketTypeOneWay:
		if input.ReturnFlightID != nil {
			return domain.NewValidationError("return_flight_id", "one_way orders cannot have a return flight")
		}
	case domain.TicketTypeRoundTrip:
		if input.ReturnFlightID == nil {
			return domain.NewValidationError("return_flight_id", "round_trip orders require a return flight")
		}
		if *input.ReturnFlightID == input.FlightID {
			return domain.NewValidationError("return_flight_id", "return flight must differ from the outbound flight")
		}
	}

	seen := make(map[domain.Direction]map[string]bool, 2)
	for _, t := range input.Tickets {
		if t.Direction == domain.DirectionReturn && input.TicketType == domain.TicketTypeOneWay {
			return domain.NewValidationError("tickets", "one_way orders only take outbound tickets")
		}
		if seen[t.Direction] == nil {
			seen[t.Direction] = make(map[string]bool)
		}
		if seen[t.Direction][t.SeatNumber] {
			return domain.NewValidationError("tickets", fmt.Sprintf("seat %s requested twice for the %s flight", t.SeatNumber, t.Direction))
		}
		seen[t.Direction][t.SeatNumber] = true
	}

	if input.TicketType == domain.TicketTypeRoundTrip &&
		(len(seen[domain.DirectionOutbound]) == 0 || len(seen[domain.DirectionReturn]) == 0) {
		return domain.NewValidationError("tickets", "round_trip orders need at least one outbound and one return ticket")
	}
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachTickets(ctx, s.store, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders returns the user's orders. An empty userID lists all orders.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if err := s.attachTickets(ctx, s.store, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *OrderService) attachTickets(ctx context.Context, store repository.Store, order *domain.Order) error {
	if order.Status != domain.OrderStatusConfirmed {
		return nil
	}
	tickets, err := store.Tickets().ListByOrder(ctx, order.ID)
	if err != nil {
		return err
	}
	order.Tickets = tickets
	return nil
}

// ConfirmOrder books the seats, issues tickets and moves the order to
// confirmed. Confirming an already confirmed order changes nothing.
func (s *OrderService) ConfirmOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	start := time.Now()
	var (
		result  *domain.Order
		changed bool
	)

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		changed = false
		order, err := tx.Orders().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		switch order.Status {
		case domain.OrderStatusConfirmed:
			result = order
			return s.attachTickets(ctx, tx, order)
		case domain.OrderStatusCancelled:
			return &domain.TransitionError{OrderID: order.ID, From: order.Status, To: domain.OrderStatusConfirmed}
		}

		if err := s.checkBookable(ctx, tx, order); err != nil {
			return err
		}

		holds := make([]inventory.Hold, 0, len(order.Requests))
		for _, r := range order.Requests {
			flightID, ok := order.FlightFor(r.Direction)
			if !ok {
				return fmt.Errorf("order %s has a %s ticket but no matching flight", order.ID, r.Direction)
			}
			holds = append(holds, inventory.Hold{FlightID: flightID, Class: r.SeatClass})
		}
		if err := s.ledger.Book(ctx, tx.Flights(), holds); err != nil {
			return err
		}

		tickets := domain.IssueTickets(order, s.now())
		if err := tx.Tickets().CreateBatch(ctx, tickets); err != nil {
			return err
		}

		if err := order.TransitionTo(domain.OrderStatusConfirmed); err != nil {
			return err
		}
		order.TotalPrice = domain.Total(order.Requests)
		order.Requests = nil
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}

		order.Tickets = tickets
		result = order
		changed = true
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInventoryExhausted) {
			s.log.Info("order confirmation rejected", zap.String("order_id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	if changed {
		metrics.ObserveConfirm(time.Since(start).Seconds())
		metrics.TrackTransition(string(domain.OrderStatusConfirmed), "payment")
		s.log.Info("order confirmed", zap.String("order_id", id.String()), zap.Int("tickets", len(result.Tickets)))
		s.invalidateFlights(ctx)
		s.publish(ctx, kafka.EventOrderConfirmed, result)
	}
	return result, nil
}

// checkBookable rejects payments for flights that departed or were
// cancelled after the order was placed.
func (s *OrderService) checkBookable(ctx context.Context, tx repository.Store, order *domain.Order) error {
	ids := []int64{order.FlightID}
	if order.ReturnFlightID != nil {
		ids = append(ids, *order.ReturnFlightID)
	}
	now := s.now()
	for _, id := range ids {
		flight, err := tx.Flights().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("load flight %d: %w", id, err)
		}
		if err := flight.Bookable(now); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var result *domain.Order
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.cancel(ctx, tx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TrackTransition(string(domain.OrderStatusCancelled), "user")
	s.invalidateFlights(ctx)
	s.publish(ctx, kafka.EventOrderCancelled, result)
	return result, nil
}

// ExpireOrder cancels the order if it is still booked. It reports whether
// anything changed; missing or already settled orders are a no-op.
func (s *OrderService) ExpireOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	var expired *domain.Order
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		expired = nil
		order, err := tx.Orders().GetForUpdate(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusBooked {
			return nil
		}
		if err := s.cancel(ctx, tx, order); err != nil {
			return err
		}
		expired = order
		return nil
	})
	if err != nil || expired == nil {
		return false, err
	}

	metrics.TrackTransition(string(domain.OrderStatusCancelled), "expired")
	s.log.Info("order expired", zap.String("order_id", id.String()))
	s.publish(ctx, kafka.EventOrderExpired, expired)
	return true, nil
}

// ExpireStaleOrders expires booked orders past their deadline in batches and
// returns how many it expired.
func (s *OrderService) ExpireStaleOrders(ctx context.Context) (int, error) {
	total := 0
	for {
		ids, err := s.store.Orders().ListExpired(ctx, s.now(), s.sweepBatch)
		if err != nil {
			return total, err
		}

		var failed error
		for _, id := range ids {
			ok, err := s.ExpireOrder(ctx, id)
			if err != nil {
				s.log.Error("failed to expire order", zap.String("order_id", id.String()), zap.Error(err))
				failed = err
				continue
			}
			if ok {
				total++
			}
		}
		if failed != nil {
			return total, failed
		}
		if len(ids) < s.sweepBatch {
			return total, nil
		}
	}
}

// cancel moves order to cancelled inside tx. Confirmed orders give their
// seats back and lose their tickets.
func (s *OrderService) cancel(ctx context.Context, tx repository.Store, order *domain.Order) error {
	from := order.Status
	if err := order.TransitionTo(domain.OrderStatusCancelled); err != nil {
		return err
	}

	if from == domain.OrderStatusConfirmed {
		tickets, err := tx.Tickets().ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		holds := make([]inventory.Hold, 0, len(tickets))
		for _, t := range tickets {
			flightID, ok := order.FlightFor(t.Direction)
			if !ok {
				flightID = t.FlightID
			}
			holds = append(holds, inventory.Hold{FlightID: flightID, Class: t.SeatClass})
		}
		if err := s.ledger.Release(ctx, tx.Flights(), holds); err != nil {
			return err
		}
		if err := tx.Tickets().DeleteByOrder(ctx, order.ID); err != nil {
			return err
		}
	}

	order.Requests = nil
	order.Tickets = nil
	return tx.Orders().Update(ctx, order)
}

func (s *OrderService) invalidateFlights(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("failed to invalidate flights cache", zap.Error(err))
	}
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *domain.Order) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.OrderEvent{
		Type:           eventType,
		OrderID:        order.ID.String(),
		UserID:         order.UserID,
		FlightID:       order.FlightID,
		ReturnFlightID: order.ReturnFlightID,
		Status:         string(order.Status),
		TotalPrice:     order.TotalPrice.StringFixed(2),
		Tickets:        len(order.Tickets),
		ExpiresAt:      order.ExpiresAt,
		OccurredAt:     s.now(),
	}
	key := order.ID.String()
	if err := s.producer.Publish(ctx, s.eventsTopic, key, event); err != nil {
		s.log.Warn("failed to publish order event", zap.String("type", eventType), zap.String("order_id", key), zap.Error(err))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.log.Warn("failed to publish notification", zap.String("type", eventType), zap.String("order_id", key), zap.Error(err))
		}
	}
}

var _ OrderUseCase = (*OrderService)(nil)
