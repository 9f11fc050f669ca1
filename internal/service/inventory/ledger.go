// Package inventory keeps per-flight, per-class seat counters.
package inventory

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/metrics"
	"github.com/Domenick1991/airtickets/internal/repository"
	"go.uber.org/zap"
)

// Hold is one seat of a class on a flight.
type Hold struct {
	FlightID int64
	Class    domain.SeatClass
}

// Ledger books and releases seats through a FlightRepository. Callers pass
// the repository explicitly so the counters move inside their transaction.
type Ledger struct {
	log *zap.Logger
}

func NewLedger(log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{log: log.With(zap.String("component", "inventory"))}
}

func (l *Ledger) BookSeat(ctx context.Context, flights repository.FlightRepository, h Hold) (bool, error) {
	ok, err := flights.BookSeat(ctx, h.FlightID, h.Class)
	if err != nil {
		return false, fmt.Errorf("book %s seat on flight %d: %w", h.Class, h.FlightID, err)
	}
	metrics.TrackSeat("book", string(h.Class), ok)
	return ok, nil
}

func (l *Ledger) ReleaseSeat(ctx context.Context, flights repository.FlightRepository, h Hold) (bool, error) {
	ok, err := flights.ReleaseSeat(ctx, h.FlightID, h.Class)
	if err != nil {
		return false, fmt.Errorf("release %s seat on flight %d: %w", h.Class, h.FlightID, err)
	}
	metrics.TrackSeat("release", string(h.Class), ok)
	if !ok {
		l.log.Warn("seat release ignored, class already at capacity",
			zap.Int64("flight_id", h.FlightID), zap.String("seat_class", string(h.Class)))
	}
	return ok, nil
}

// Book takes every hold or none. On the first shortfall the seats booked so
// far are released and an ExhaustedError is returned.
func (l *Ledger) Book(ctx context.Context, flights repository.FlightRepository, holds []Hold) error {
	booked := make([]Hold, 0, len(holds))
	for _, h := range holds {
		ok, err := l.BookSeat(ctx, flights, h)
		if err == nil && ok {
			booked = append(booked, h)
			continue
		}
		if relErr := l.Release(ctx, flights, booked); relErr != nil {
			l.log.Error("compensating release failed", zap.Error(relErr))
		}
		if err != nil {
			return err
		}
		return &domain.ExhaustedError{FlightID: h.FlightID, Class: h.Class}
	}
	return nil
}

func (l *Ledger) Release(ctx context.Context, flights repository.FlightRepository, holds []Hold) error {
	for _, h := range holds {
		if _, err := l.ReleaseSeat(ctx, flights, h); err != nil {
			return err
		}
	}
	return nil
}
