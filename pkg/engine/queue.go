package engine

import "sync/atomic"

// DefaultQueueDepth is the number of commands a Queue holds by default.
const DefaultQueueDepth = 16

// Queue hands commands from other goroutines to the goroutine that runs the
// engine. When it is full the oldest command is dropped, so the newest state,
// such as the latest scene, always gets through.
type Queue struct {
	ch      chan Command
	dropped atomic.Uint64
}

// NewQueue creates a Queue holding depth commands. A depth below 1 uses
// DefaultQueueDepth.
func NewQueue(depth int) *Queue {
	if depth < 1 {
		depth = DefaultQueueDepth
	}
	return &Queue{ch: make(chan Command, depth)}
}

// Push queues cmd without blocking. It reports whether an older command had
// to be dropped to make room.
func (q *Queue) Push(cmd Command) bool {
	var dropped bool
	for {
		select {
		case q.ch <- cmd:
			return dropped
		default:
		}
		select {
		case old := <-q.ch:
			q.dropped.Add(1)
			dropped = true
			logger.Warnf("command queue full, dropped %s", old.Kind)
		default:
		}
	}
}

// Dropped returns how many commands were dropped so far.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Drain applies every queued command to e in order and returns how many were
// applied. Failing commands are logged and skipped. It must be called from
// the goroutine that runs e.
func (q *Queue) Drain(e *Engine) int {
	var n int
	for {
		select {
		case cmd := <-q.ch:
			if err := e.Dispatch(cmd); err != nil {
				logger.Warnf("command %s: %v", cmd.Kind, err)
			}
			n++
		default:
			return n
		}
	}
}
