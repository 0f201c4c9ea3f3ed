package serialqueue

// SubmitSyncValue runs fn on the caller's goroutine via SubmitSync and
// returns its result, capturing (T, error) into a slot that the
// submitted closure fills before SubmitSync returns.
func SubmitSyncValue[T any](q *Queue, fn func() (T, error)) (T, error) {
	var (
		val T
		err error
	)
	if subErr := q.SubmitSync(func() {
		val, err = fn()
	}); subErr != nil {
		var zero T
		return zero, subErr
	}
	return val, err
}

// SubmitAsyncValue runs fn asynchronously and delivers its result through
// the returned Future, which a caller may await via Future.Then (routed
// back onto q when CooperativeContinuations is enabled and Then is called
// from within a queue-bound work item) or consume directly.
func SubmitAsyncValue[T any](q *Queue, fn func() (T, error)) (*Future[T], *CancelToken, error) {
	future, settle := NewFuture[T]()
	token, err := q.SubmitAsync(func() {
		val, fnErr := fn()
		settle(val, fnErr)
	})
	if err != nil {
		var zero T
		settle(zero, err)
		return future, nil, err
	}
	return future, token, nil
}
