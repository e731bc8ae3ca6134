package sched

import (
	"context"
	"sync"
	"time"
)

// Loop is a single-goroutine actor that fires queued callbacks on the wall
// clock and runs events posted from other goroutines, one at a time.
// The queue returned by Scheduler must only be used from inside the loop.
type Loop struct {
	queue  *Queue
	clock  func() time.Time
	events chan func()

	done     chan struct{}
	doneOnce sync.Once
}

// NewLoop creates a loop driven by clock. A nil clock means time.Now.
func NewLoop(clock func() time.Time) *Loop {
	if clock == nil {
		clock = time.Now
	}
	return &Loop{
		queue:  NewQueue(clock()),
		clock:  clock,
		events: make(chan func(), 128),
		done:   make(chan struct{}),
	}
}

// Scheduler returns the loop's queue. Only call its methods from callbacks
// or events executing on the loop.
func (l *Loop) Scheduler() Scheduler {
	return l.queue
}

// Post hands fn to the loop. It blocks while the event buffer is full and
// returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Done is closed once Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run processes timers and posted events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer l.doneOnce.Do(func() { close(l.done) })

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		l.queue.AdvanceTo(l.clock())

		var wake <-chan time.Time
		if at, ok := l.queue.NextDeadline(); ok {
			d := at.Sub(l.clock())
			if d < 0 {
				d = 0
			}
			timer.Reset(d)
			wake = timer.C
		}

		select {
		case <-ctx.Done():
			return
		case fn := <-l.events:
			timer.Stop()
			// Bring the clock up to date so the event sees current time.
			l.queue.AdvanceTo(l.clock())
			fn()
		case <-wake:
		}
	}
}
