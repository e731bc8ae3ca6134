package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestQueueFiresInDeadlineOrder(t *testing.T) {
	q := NewQueue(epoch)
	var order []string

	q.Schedule(30*time.Millisecond, func() { order = append(order, "c") })
	q.Schedule(10*time.Millisecond, func() { order = append(order, "a") })
	q.Schedule(20*time.Millisecond, func() { order = append(order, "b") })
	q.Schedule(10*time.Millisecond, func() { order = append(order, "a2") })

	fired := q.Advance(25 * time.Millisecond)
	assert.Equal(t, 3, fired)
	assert.Equal(t, []string{"a", "a2", "b"}, order)
	assert.Equal(t, epoch.Add(25*time.Millisecond), q.Now())
	assert.Equal(t, 1, q.Pending())

	q.Advance(5 * time.Millisecond)
	assert.Equal(t, []string{"a", "a2", "b", "c"}, order)
	assert.Equal(t, 0, q.Pending())
}

func TestQueueNowDuringCallback(t *testing.T) {
	q := NewQueue(epoch)
	var seen []time.Duration

	var tick func()
	tick = func() {
		seen = append(seen, q.Now().Sub(epoch))
		if len(seen) < 3 {
			q.Schedule(20*time.Millisecond, tick)
		}
	}
	q.Schedule(20*time.Millisecond, tick)

	// A single large advance still fires the self-rescheduling chain on its
	// own cadence rather than collapsing it.
	q.Advance(time.Second)
	assert.Equal(t, []time.Duration{20 * time.Millisecond, 40 * time.Millisecond, 60 * time.Millisecond}, seen)
}

func TestQueueCancel(t *testing.T) {
	q := NewQueue(epoch)
	ran := false
	id := q.Schedule(10*time.Millisecond, func() { ran = true })

	q.Cancel(id)
	// Canceling twice, or an ID that was never issued, is harmless.
	q.Cancel(id)
	q.Cancel(TaskID(999))

	q.Advance(time.Second)
	assert.False(t, ran)
	_, ok := q.NextDeadline()
	assert.False(t, ok)
}

func TestQueueClockNeverGoesBack(t *testing.T) {
	q := NewQueue(epoch)
	q.Advance(time.Second)
	q.AdvanceTo(epoch)
	assert.Equal(t, epoch.Add(time.Second), q.Now())
}

func TestQueueNegativeDelay(t *testing.T) {
	q := NewQueue(epoch)
	ran := false
	q.Schedule(-time.Second, func() { ran = true })
	q.Advance(0)
	assert.True(t, ran)
}

func TestGroupCancelAll(t *testing.T) {
	q := NewQueue(epoch)
	g := NewGroup(q)
	other := false
	q.Schedule(50*time.Millisecond, func() { other = true })

	fired := 0
	for i := 1; i <= 4; i++ {
		g.Schedule(time.Duration(i)*10*time.Millisecond, func() { fired++ })
	}
	require.Equal(t, 4, g.Pending())

	q.Advance(15 * time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 3, g.Pending(), "fired callbacks leave the group")

	assert.Equal(t, 3, g.CancelAll())
	assert.Equal(t, 0, g.CancelAll(), "second cancel is a no-op")

	q.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.True(t, other, "callbacks outside the group are untouched")
}

func TestGroupCancelOne(t *testing.T) {
	q := NewQueue(epoch)
	g := NewGroup(q)
	ran := false
	id := g.Schedule(10*time.Millisecond, func() { ran = true })
	g.Cancel(id)
	assert.Equal(t, 0, g.Pending())
	q.Advance(time.Second)
	assert.False(t, ran)
}

func TestLoopRunsPostedEventsAndTimers(t *testing.T) {
	l := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var timerFired atomic.Bool
	ok := l.Post(func() {
		l.Scheduler().Schedule(5*time.Millisecond, func() { timerFired.Store(true) })
	})
	require.True(t, ok)

	assert.Eventually(t, timerFired.Load, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	assert.False(t, l.Post(func() {}), "post after stop is rejected")
}

func TestLoopSerializesEvents(t *testing.T) {
	l := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var inside, overlaps, count atomic.Int32
	for i := 0; i < 50; i++ {
		go l.Post(func() {
			if inside.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(100 * time.Microsecond)
			inside.Add(-1)
			count.Add(1)
		})
	}

	assert.Eventually(t, func() bool { return count.Load() == 50 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, overlaps.Load())
}
