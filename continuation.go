package serialqueue

import "github.com/joeycumines/serialqueue/internal/gstack"

// installContinuationHook is called by drain when CooperativeContinuations
// is enabled. It has nothing to install globally — the bridge works purely
// by inspecting, at the moment a [Future.Then] callback is registered,
// which queue (if any) is innermost on the calling goroutine's queue
// stack (see gstack). Go has no language-level awaited-continuation hook
// for drain to install and later restore, so the bridge is instead read
// eagerly at registration time, which is equivalent for every case this
// package's Future produces suspension points for.
//
// The return value exists only so drain's defer can be written uniformly
// with the case where a real ambient-hook install/restore were needed; it
// currently does nothing.
func installContinuationHook(*Queue) func() {
	return nil
}

// continuationBridge routes a Future's settlement callback back onto the
// queue that was active when the callback was registered, using
// submit_async (fire-and-forget, "post") or submit_sync (block until
// run, "send").
type continuationBridge struct {
	queue *Queue
}

// captureBridge records the innermost queue on the calling goroutine's
// stack, to be used later by Future.Then if CooperativeContinuations is
// enabled on that queue. Returns nil if no queue is active, or if the
// active queue has the feature disabled — in both cases the continuation
// simply runs on whatever goroutine settles the Future, matching the
// behaviour when the feature is off.
func captureBridge() *continuationBridge {
	inner := gstack.Current().Innermost()
	q, ok := inner.(*Queue)
	if !ok || q == nil {
		return nil
	}
	if q.features&CooperativeContinuations == 0 {
		return nil
	}
	return &continuationBridge{queue: q}
}

// post dispatches fn through submit_async on the captured queue. Errors
// (the queue having since been disposed) are delivered to the queue's
// unhandled-error sink rather than silently dropped, matching the
// "never re-thrown from a pool worker" policy for async work.
func (b *continuationBridge) post(fn func()) {
	if _, err := b.queue.SubmitAsync(fn); err != nil {
		b.queue.sink.deliver(b.queue, b.queue.unhandledErrorCallback(), err)
	}
}

// send dispatches fn through submit_sync on the captured queue, blocking
// the caller (the goroutine resolving the Future) until fn completes.
func (b *continuationBridge) send(fn func()) {
	_ = b.queue.SubmitSync(fn)
}
