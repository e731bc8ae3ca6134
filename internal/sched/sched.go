// Package sched runs delayed callbacks on a single logical actor.
//
// A Queue holds pending callbacks ordered by deadline and fires them when its
// clock is advanced, either by hand (tests, replays) or by a Loop that follows
// the wall clock and also executes events posted from other goroutines.
// A Group tracks every callback scheduled on behalf of one owner so they can
// all be canceled at once.
package sched

import (
	"container/heap"
	"time"
)

// TaskID identifies a scheduled callback. The zero value is never issued.
type TaskID uint64

// Scheduler runs callbacks after a delay and cancels pending ones.
// Implementations are not safe for concurrent use; all calls must come from
// the goroutine that owns the scheduler (usually from inside a callback).
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time
	// Schedule arranges for fn to run once delay has elapsed.
	Schedule(delay time.Duration, fn func()) TaskID
	// Cancel drops a pending callback. Unknown or already fired IDs are ignored.
	Cancel(id TaskID)
}

// task is a pending callback in the queue.
type task struct {
	id    TaskID
	at    time.Time
	seq   uint64 // insertion order, breaks deadline ties
	fn    func()
	index int // position in the heap, -1 once removed
}

// taskHeap orders tasks by deadline, then by insertion order.
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Queue is a deadline-ordered set of callbacks driven by an explicit clock.
type Queue struct {
	now    time.Time
	tasks  taskHeap
	byID   map[TaskID]*task
	nextID TaskID
	seq    uint64
}

// Compile-time check that Queue implements Scheduler.
var _ Scheduler = (*Queue)(nil)

// NewQueue creates an empty queue whose clock starts at start.
func NewQueue(start time.Time) *Queue {
	return &Queue{
		now:  start,
		byID: make(map[TaskID]*task),
	}
}

// Now returns the queue clock.
func (q *Queue) Now() time.Time {
	return q.now
}

// Schedule adds fn to run at Now()+delay. Negative delays are treated as zero.
// Callbacks scheduled for the same instant run in scheduling order.
func (q *Queue) Schedule(delay time.Duration, fn func()) TaskID {
	if delay < 0 {
		delay = 0
	}
	q.nextID++
	q.seq++
	t := &task{
		id:  q.nextID,
		at:  q.now.Add(delay),
		seq: q.seq,
		fn:  fn,
	}
	heap.Push(&q.tasks, t)
	q.byID[t.id] = t
	return t.id
}

// Cancel removes a pending callback.
func (q *Queue) Cancel(id TaskID) {
	t, ok := q.byID[id]
	if !ok {
		return
	}
	delete(q.byID, id)
	if t.index >= 0 {
		heap.Remove(&q.tasks, t.index)
	}
}

// Pending returns the number of callbacks waiting to fire.
func (q *Queue) Pending() int {
	return len(q.tasks)
}

// NextDeadline returns the deadline of the earliest pending callback.
func (q *Queue) NextDeadline() (time.Time, bool) {
	if len(q.tasks) == 0 {
		return time.Time{}, false
	}
	return q.tasks[0].at, true
}

// AdvanceTo moves the clock forward to t, firing every callback whose
// deadline is at or before t in deadline order. While a callback runs, Now
// reports that callback's deadline, so anything it schedules is measured
// from the moment it fired. Returns the number of callbacks fired.
// The clock never moves backward.
func (q *Queue) AdvanceTo(t time.Time) int {
	fired := 0
	for len(q.tasks) > 0 {
		next := q.tasks[0]
		if next.at.After(t) {
			break
		}
		heap.Pop(&q.tasks)
		delete(q.byID, next.id)
		if next.at.After(q.now) {
			q.now = next.at
		}
		next.fn()
		fired++
	}
	if t.After(q.now) {
		q.now = t
	}
	return fired
}

// Advance moves the clock forward by d. See AdvanceTo.
func (q *Queue) Advance(d time.Duration) int {
	return q.AdvanceTo(q.now.Add(d))
}
