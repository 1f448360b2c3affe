package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the tick period used until one is configured.
const DefaultInterval = 100 * time.Millisecond

// TickFunc is invoked once per scheduler cycle.
type TickFunc func() error

// Scheduler runs a TickFunc periodically on its own goroutine: wait the
// interval, tick, repeat. A Scheduler is reusable; Start after Stop begins a
// fresh cycle. Ticks never overlap.
//
// The tick function must not call back into the Scheduler that runs it.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	tick     TickFunc
	cancel   context.CancelFunc
	done     chan struct{}

	ticks  atomic.Uint64
	logger *slog.Logger
}

// NewScheduler returns a stopped scheduler. A nil logger uses slog.Default().
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{interval: DefaultInterval, logger: logger}
}

// Start begins ticking at the given interval, stopping any previous cycle
// first. A non-positive interval keeps the stored one.
func (s *Scheduler) Start(interval time.Duration, tick TickFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if interval > 0 {
		s.interval = interval
	}
	s.startLocked(tick)
}

// Stop cancels the cycle and waits for the loop to exit. A tick that is
// already running completes first; no tick starts after Stop returns.
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopLocked() {
		s.logger.Debug("Scheduler stopped.", "ticks", s.ticks.Load())
	}
}

// SetInterval changes the tick period. A running scheduler restarts its cycle
// with the new period; a stopped one keeps it for the next Start.
func (s *Scheduler) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
	if s.cancel == nil {
		return
	}
	s.startLocked(s.tick)
}

// Running reports whether a cycle is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Interval returns the configured tick period.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Ticks returns the number of completed ticks since construction.
func (s *Scheduler) Ticks() uint64 { return s.ticks.Load() }

func (s *Scheduler) startLocked(tick TickFunc) {
	s.stopLocked()
	if tick == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.tick, s.cancel, s.done = tick, cancel, done
	s.logger.Debug("Scheduler started.", "interval", s.interval)
	go s.loop(ctx, s.interval, tick, done)
}

func (s *Scheduler) stopLocked() bool {
	if s.cancel == nil {
		return false
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
	return true
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, tick TickFunc, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		// Cancellation may race with the timer; never start a tick after it.
		if ctx.Err() != nil {
			return
		}
		if err := s.runTick(tick); err != nil {
			s.logger.Error("Tick failed, continuing.", "error", err)
		}
		s.ticks.Add(1)
		timer.Reset(interval)
	}
}

func (s *Scheduler) runTick(tick TickFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panicked: %v", r)
		}
	}()
	return tick()
}
