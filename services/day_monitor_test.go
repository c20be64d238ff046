package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconciler struct {
	calls atomic.Int32
}

func (f *fakeReconciler) Reconcile(userID uint, cols ...Collection) (*Collections, error) {
	f.calls.Add(1)
	return &Collections{}, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func newTestMonitor(r Reconciler, clock *fakeClock) *DayBoundaryMonitor {
	m := NewDayBoundaryMonitor(1, r)
	m.interval = 2 * time.Millisecond
	m.now = clock.Now
	return m
}

func TestDayBoundaryMonitor_FiresOncePerRollover(t *testing.T) {
	rec := &fakeReconciler{}
	clock := &fakeClock{now: time.Date(2026, 3, 14, 23, 58, 0, 0, time.UTC)}
	m := newTestMonitor(rec, clock)

	m.Start(context.Background())
	defer m.Stop()

	// same date: no reconciliation however many ticks pass
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 0, rec.calls.Load())

	// midnight passes
	clock.Set(time.Date(2026, 3, 15, 0, 0, 30, 0, time.UTC))
	require.Eventually(t, func() bool { return rec.calls.Load() == 1 }, time.Second, time.Millisecond)

	// stays at exactly one until the next rollover
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, rec.calls.Load())

	clock.Set(time.Date(2026, 3, 16, 7, 0, 0, 0, time.UTC))
	require.Eventually(t, func() bool { return rec.calls.Load() == 2 }, time.Second, time.Millisecond)
}

func TestDayBoundaryMonitor_StopPreventsFurtherFires(t *testing.T) {
	rec := &fakeReconciler{}
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	m := newTestMonitor(rec, clock)

	m.Start(context.Background())
	m.Stop()

	// the session is gone; a later rollover must not reconcile
	clock.Set(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 0, rec.calls.Load())
}

func TestDayBoundaryMonitor_ContextCancelStops(t *testing.T) {
	rec := &fakeReconciler{}
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	m := newTestMonitor(rec, clock)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	cancel()
	<-m.done

	clock.Set(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 0, rec.calls.Load())
}

func TestDayBoundaryMonitor_StartIsIdempotentUntilStop(t *testing.T) {
	rec := &fakeReconciler{}
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	m := newTestMonitor(rec, clock)

	m.Start(context.Background())
	m.Start(context.Background()) // no second goroutine
	m.Stop()
}
