package expiry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type StaleExpirer interface {
	ExpireStaleOrders(ctx context.Context) (int, error)
}

// Sweeper periodically expires every booked order past its deadline.
type Sweeper struct {
	expirer  StaleExpirer
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(expirer StaleExpirer, interval time.Duration, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{expirer: expirer, interval: interval, log: log.With(zap.String("component", "sweeper"))}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.expirer.ExpireStaleOrders(ctx)
	if err != nil {
		s.log.Error("expire orders error", zap.Error(err))
	}
	if n > 0 {
		s.log.Info("expired orders", zap.Int("count", n))
	}
}
