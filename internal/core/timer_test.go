package core

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestSchedulerStopHaltsTicks(t *testing.T) {
	s := NewScheduler(testLogger(&bytes.Buffer{}))
	var count atomic.Int64

	s.Start(50*time.Millisecond, func() error {
		count.Add(1)
		return nil
	})
	require.True(t, s.Running())
	require.Eventually(t, func() bool { return count.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	require.False(t, s.Running())
	stopped := count.Load()
	require.LessOrEqual(t, stopped, int64(3), "ticks ran away before Stop returned")

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, stopped, count.Load(), "tick ran after Stop returned")
	require.Equal(t, uint64(stopped), s.Ticks())
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := NewScheduler(nil)
	s.Stop()
	s.Start(time.Hour, func() error { return nil })
	s.Stop()
	s.Stop()
	require.False(t, s.Running())
}

func TestSchedulerRestartNeverOverlaps(t *testing.T) {
	s := NewScheduler(testLogger(&bytes.Buffer{}))
	var inflight, overlaps, count atomic.Int64
	tick := func() error {
		if inflight.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(2 * time.Millisecond)
		inflight.Add(-1)
		count.Add(1)
		return nil
	}

	for i := 0; i < 20; i++ {
		s.Start(time.Millisecond, tick)
		time.Sleep(3 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return count.Load() >= 5 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	require.Zero(t, overlaps.Load())
	require.Zero(t, inflight.Load())
}

func TestSchedulerContinuesAfterFailingTick(t *testing.T) {
	var logs bytes.Buffer
	s := NewScheduler(testLogger(&logs))
	var count atomic.Int64

	s.Start(5*time.Millisecond, func() error {
		n := count.Add(1)
		if n%2 == 1 {
			return errors.New("boom")
		}
		panic("kaboom")
	})
	require.Eventually(t, func() bool { return count.Load() >= 4 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	out := logs.String()
	require.Contains(t, out, "Tick failed")
	require.Contains(t, out, "boom")
	require.Contains(t, out, "tick panicked: kaboom")

	// Internal state survived the failures: the scheduler can be reused.
	before := count.Load()
	s.Start(5*time.Millisecond, func() error {
		count.Add(1)
		return nil
	})
	require.Eventually(t, func() bool { return count.Load() > before }, 2*time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestSchedulerSetIntervalWhileStopped(t *testing.T) {
	s := NewScheduler(nil)
	require.Equal(t, DefaultInterval, s.Interval())

	s.SetInterval(20 * time.Millisecond)
	s.SetInterval(0)
	require.False(t, s.Running())
	require.Equal(t, 20*time.Millisecond, s.Interval())

	var count atomic.Int64
	s.Start(0, func() error {
		count.Add(1)
		return nil
	})
	defer s.Stop()
	require.Equal(t, 20*time.Millisecond, s.Interval())
	require.Eventually(t, func() bool { return count.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestSchedulerSetIntervalWhileRunning(t *testing.T) {
	s := NewScheduler(testLogger(&bytes.Buffer{}))
	first := make(chan time.Time, 1)
	s.Start(time.Hour, func() error {
		select {
		case first <- time.Now():
		default:
		}
		return nil
	})
	defer s.Stop()

	changed := time.Now()
	s.SetInterval(60 * time.Millisecond)
	require.True(t, s.Running())

	select {
	case at := <-first:
		waited := at.Sub(changed)
		require.GreaterOrEqual(t, waited, 55*time.Millisecond, "new interval shortened the wait")
		require.Less(t, waited, 2*time.Second)
	case <-time.After(3 * time.Second):
		t.Fatal("no tick after shortening the interval")
	}
}

func TestSchedulerIgnoresNilTick(t *testing.T) {
	s := NewScheduler(nil)
	s.Start(time.Millisecond, nil)
	require.False(t, s.Running())
}

func TestSchedulerLogsLifecycle(t *testing.T) {
	var logs bytes.Buffer
	s := NewScheduler(testLogger(&logs))
	s.Start(time.Hour, func() error { return nil })
	s.Stop()
	out := logs.String()
	require.True(t, strings.Contains(out, "Scheduler started.") && strings.Contains(out, "Scheduler stopped."), out)
}
