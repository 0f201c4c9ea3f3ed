package serialqueue

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCancelTokenDisposeRunsCleanupOnce(t *testing.T) {
	var calls atomic.Int32
	token := newCancelToken(func() { calls.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token.Dispose()
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
}

func TestCancelTokenNilCleanupIsNoop(t *testing.T) {
	token := newCancelToken(nil)
	token.Dispose() // must not panic
	require.Same(t, noopToken, token)
}

func TestCancelTokenNilReceiverIsNoop(t *testing.T) {
	var token *CancelToken
	token.Dispose() // must not panic
}
