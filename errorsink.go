package serialqueue

import (
	"time"

	catrate "github.com/joeycumines/go-catrate"
)

// errorSinkRates bounds how often a single queue will forward unhandled
// panics to its callback and to the structured logger. A work item that
// panics on every drain tick (a stuck retry loop, a bad deserializer) must
// not be allowed to flood either one: the drain loop only needs to
// survive, not to individually report every panic.
var errorSinkRates = map[time.Duration]int{
	time.Second: 5,
	time.Minute: 100,
}

// errorSink delivers panics recovered from async/delayed work items to the
// queue's registered callback, rate-limited per queue via catrate so a
// pathological work item cannot turn into a logging storm.
type errorSink struct {
	limiter *catrate.Limiter
}

func newErrorSink() *errorSink {
	return &errorSink{limiter: catrate.NewLimiter(errorSinkRates)}
}

// deliver invokes onError (if non-nil) and logs, unless the per-queue rate
// limit for category "panic" has been exceeded, in which case the error is
// still counted in the logger at debug level but not forwarded to onError.
func (s *errorSink) deliver(q *Queue, onError func(error), err error) {
	_, allowed := s.limiter.Allow("panic")
	logger := getGlobalLogger()
	if !allowed {
		if logger.IsEnabled(LevelDebug) {
			logger.Log(LogEntry{
				Level:    LevelDebug,
				Category: "panic",
				QueueID:  q.id,
				Message:  "unhandled error suppressed by rate limit",
				Err:      err,
			})
		}
		return
	}
	if logger.IsEnabled(LevelError) {
		logger.Log(LogEntry{
			Level:    LevelError,
			Category: "panic",
			QueueID:  q.id,
			Message:  "unhandled error from async work item",
			Err:      err,
		})
	}
	if onError != nil {
		onError(err)
	}
}
