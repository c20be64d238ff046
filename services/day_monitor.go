package services

import (
	"context"
	"log"
	"time"
)

// Reconciler is the slice of CommitCoordinator the monitor needs.
type Reconciler interface {
	Reconcile(userID uint, cols ...Collection) (*Collections, error)
}

// DayBoundaryMonitor polls the calendar date and forces a full
// reconciliation when it changes, so day-scoped views never show
// yesterday's data. One monitor per authenticated session; it stops
// with the session's context and never fires after that.
type DayBoundaryMonitor struct {
	userID     uint
	reconciler Reconciler
	interval   time.Duration
	now        func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

const dayMonitorInterval = 60 * time.Second

func NewDayBoundaryMonitor(userID uint, r Reconciler) *DayBoundaryMonitor {
	return &DayBoundaryMonitor{
		userID:     userID,
		reconciler: r,
		interval:   dayMonitorInterval,
		now:        time.Now,
	}
}

// Start launches the polling loop. Calling Start twice is a no-op until
// Stop.
func (m *DayBoundaryMonitor) Start(ctx context.Context) {
	if m.cancel != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.run(ctx)
}

// Stop cancels the loop and waits for it to exit.
func (m *DayBoundaryMonitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
}

func (m *DayBoundaryMonitor) run(ctx context.Context) {
	defer close(m.done)

	lastDate := m.now().Format("2006-01-02")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			today := m.now().Format("2006-01-02")
			if today == lastDate {
				continue
			}
			lastDate = today
			if _, err := m.reconciler.Reconcile(m.userID); err != nil {
				log.Printf("day-rollover reconcile failed for user %d: %v", m.userID, err)
			}
		}
	}
}
