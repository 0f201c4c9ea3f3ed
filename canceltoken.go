package serialqueue

import "sync/atomic"

// CancelToken is a one-shot, idempotent disposable wrapping arbitrary
// cleanup. Disposing it more than once is a no-op: the first call takes
// ownership of the cleanup function atomically, and every later call
// observes it already taken.
//
// [Queue.SubmitAsync] and [Queue.SubmitAfter] return a CancelToken
// ([Queue.SubmitSync] returns none, since its work has finished by the
// time it returns). Disposing one
// attempts a best-effort removal of the associated work: if the work has
// already started or finished, disposal simply does nothing.
type CancelToken struct {
	// taken guards cleanup: CompareAndSwap(false, true) wins the race to
	// run it exactly once.
	taken   atomic.Bool
	cleanup func()
}

// noopToken is what newCancelToken returns when there is no cleanup to
// wrap; disposing it does nothing.
var noopToken = &CancelToken{}

func init() {
	noopToken.taken.Store(true)
}

// newCancelToken wraps cleanup in a CancelToken. cleanup may be nil, in
// which case Dispose is always a no-op.
func newCancelToken(cleanup func()) *CancelToken {
	if cleanup == nil {
		return noopToken
	}
	return &CancelToken{cleanup: cleanup}
}

// Dispose runs the wrapped cleanup exactly once. Safe to call any number of
// times, from any goroutine, at any point in the token's lifecycle.
func (t *CancelToken) Dispose() {
	if t == nil {
		return
	}
	if t.taken.CompareAndSwap(false, true) {
		cleanup := t.cleanup
		t.cleanup = nil
		if cleanup != nil {
			cleanup()
		}
	}
}

