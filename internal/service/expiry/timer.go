// Package expiry cancels orders that were not confirmed in time.
package expiry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Expirer interface {
	ExpireOrder(ctx context.Context, id uuid.UUID) (bool, error)
}

var ErrStopped = errors.New("scheduler stopped")

// TimerScheduler runs one in-process timer per order. Timers do not survive
// a restart; the Sweeper covers that gap.
type TimerScheduler struct {
	mu      sync.Mutex
	expirer Expirer
	timers  map[uuid.UUID]*time.Timer
	stopped bool
	running sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	log     *zap.Logger
}

func NewTimerScheduler(log *zap.Logger) *TimerScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TimerScheduler{
		timers:  make(map[uuid.UUID]*time.Timer),
		ctx:     ctx,
		cancel:  cancel,
		timeout: 30 * time.Second,
		log:     log.With(zap.String("component", "timer_scheduler")),
	}
}

// Attach sets the target of fired timers. It is separate from the
// constructor because the order service itself takes the scheduler.
func (s *TimerScheduler) Attach(e Expirer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expirer = e
}

func (s *TimerScheduler) Schedule(_ context.Context, orderID uuid.UUID, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if old, ok := s.timers[orderID]; ok {
		old.Stop()
	}
	s.timers[orderID] = time.AfterFunc(delay, func() { s.fire(orderID) })
	return nil
}

func (s *TimerScheduler) fire(orderID uuid.UUID) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.timers, orderID)
	expirer := s.expirer
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()

	if expirer == nil {
		s.log.Warn("no expirer attached, dropping timer", zap.String("order_id", orderID.String()))
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	expired, err := expirer.ExpireOrder(ctx, orderID)
	if err != nil {
		s.log.Error("order expiry failed", zap.String("order_id", orderID.String()), zap.Error(err))
		return
	}
	if expired {
		s.log.Info("order expired by timer", zap.String("order_id", orderID.String()))
	}
}

// Pending reports how many timers have not fired yet.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending timer, rejects new ones and waits for expiries
// already in progress, whose context it cancels.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.cancel()
	s.running.Wait()
}
