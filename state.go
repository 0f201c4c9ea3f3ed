package serialqueue

import "sync/atomic"

// schedulerState is the queue's scheduling state, always read and written
// under scheduler_lock (see queue.go). It is stored as an atomic, which
// makes a read from outside that lock race-free; every read and transition
// in this package happens while holding scheduler_lock.
type schedulerState uint32

const (
	// stateIdle: no drain is owed to the pool and async_queue was empty at
	// the last scheduler_lock release.
	stateIdle schedulerState = iota
	// stateScheduled: a drain has been submitted to the pool but has not
	// started popping items yet.
	stateScheduled
	// stateProcessing: a drain is actively popping and running items.
	stateProcessing
)

// String renders the state for logs and test failure messages.
func (s schedulerState) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateScheduled:
		return "Scheduled"
	case stateProcessing:
		return "Processing"
	default:
		return "Unknown"
	}
}

// fastState wraps an atomic.Uint32 holding a schedulerState. All mutating
// methods are expected to be called only while holding scheduler_lock; it
// adds no locking of its own; it exists so that a read (load) from outside
// that lock would not be flagged by the Go race detector.
type fastState struct {
	v atomic.Uint32
}

func (s *fastState) load() schedulerState {
	return schedulerState(s.v.Load())
}

func (s *fastState) store(v schedulerState) {
	s.v.Store(uint32(v))
}
