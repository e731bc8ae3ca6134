package sched

import "time"

// Group tracks the callbacks one owner schedules so they can be canceled
// together. Fired callbacks drop out of the group automatically.
type Group struct {
	s       Scheduler
	pending map[TaskID]struct{}
}

// Compile-time check that Group implements Scheduler.
var _ Scheduler = (*Group)(nil)

// NewGroup creates a group scheduling through s.
func NewGroup(s Scheduler) *Group {
	return &Group{
		s:       s,
		pending: make(map[TaskID]struct{}),
	}
}

// Now returns the underlying scheduler's time.
func (g *Group) Now() time.Time {
	return g.s.Now()
}

// Schedule schedules fn through the underlying scheduler and tracks it.
func (g *Group) Schedule(delay time.Duration, fn func()) TaskID {
	var id TaskID
	id = g.s.Schedule(delay, func() {
		delete(g.pending, id)
		fn()
	})
	g.pending[id] = struct{}{}
	return id
}

// Cancel cancels one tracked callback.
func (g *Group) Cancel(id TaskID) {
	if _, ok := g.pending[id]; !ok {
		return
	}
	delete(g.pending, id)
	g.s.Cancel(id)
}

// CancelAll cancels every callback still pending and returns how many there were.
func (g *Group) CancelAll() int {
	n := len(g.pending)
	for id := range g.pending {
		g.s.Cancel(id)
	}
	clear(g.pending)
	return n
}

// Pending returns the number of tracked callbacks that have not fired.
func (g *Group) Pending() int {
	return len(g.pending)
}
