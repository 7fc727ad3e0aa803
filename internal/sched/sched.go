// Package sched provides the scheduling primitives the column engine runs
// on: an animation frame queue and policies for writing widths to the
// document.
package sched

import "time"

// FrameScheduler runs callbacks on the next animation frame, passing the frame
// time.
type FrameScheduler interface {
	RequestFrame(fn func(now time.Time))
}

// FrameQueue is a FrameScheduler whose frames are driven by the host: every
// callback requested before a call to Flush runs during that call.
type FrameQueue struct {
	pending []func(time.Time)
}

func (q *FrameQueue) RequestFrame(fn func(time.Time)) {
	q.pending = append(q.pending, fn)
}

// Pending reports whether any callbacks await the next frame.
func (q *FrameQueue) Pending() bool {
	return len(q.pending) > 0
}

// Flush runs the callbacks requested so far, returning the number run.
// Callbacks requested while flushing are deferred to the following frame.
func (q *FrameQueue) Flush(now time.Time) int {
	pending := q.pending
	q.pending = nil
	for _, fn := range pending {
		fn(now)
	}
	return len(pending)
}

// WritePolicy decides when a document write runs.
type WritePolicy interface {
	Write(fn func())
}

// Immediate runs writes straight away.
type Immediate struct{}

func (Immediate) Write(fn func()) { fn() }

// IdleQueue holds writes until the host reports an idle slot.
type IdleQueue struct {
	writes []func()
}

func (q *IdleQueue) Write(fn func()) {
	q.writes = append(q.writes, fn)
}

// Pending reports whether any writes are waiting for an idle slot.
func (q *IdleQueue) Pending() bool {
	return len(q.writes) > 0
}

// Drain runs the queued writes in the order they were queued.
func (q *IdleQueue) Drain() int {
	writes := q.writes
	q.writes = nil
	for _, fn := range writes {
		fn()
	}
	return len(writes)
}

// Clock returns the current time.
type Clock func() time.Time
