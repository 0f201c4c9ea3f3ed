package serialqueue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultPoolSubmitRunsWork(t *testing.T) {
	p := NewDefaultPool(2)
	defer p.Close()

	done := make(chan struct{})
	p.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit never ran")
	}
}

func TestDefaultPoolScheduleAfterOrdering(t *testing.T) {
	p := NewDefaultPool(4)
	defer p.Close()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(3)

	p.ScheduleAfter(30*time.Millisecond, func() {
		mu.Lock()
		order = append(order, 3)
		mu.Unlock()
		wg.Done()
	})
	p.ScheduleAfter(10*time.Millisecond, func() {
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
		wg.Done()
	})
	p.ScheduleAfter(20*time.Millisecond, func() {
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		wg.Done()
	})

	waitOrTimeout(t, &wg, 2*time.Second)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("fire order = %v, want [1 2 3]", order)
	}
}

func TestDefaultPoolScheduleAfterCancel(t *testing.T) {
	p := NewDefaultPool(2)
	defer p.Close()

	var ran atomic.Bool
	token := p.ScheduleAfter(50*time.Millisecond, func() { ran.Store(true) })
	token.Dispose()

	time.Sleep(150 * time.Millisecond)
	if ran.Load() {
		t.Fatal("cancelled pool timer still fired")
	}
}

func waitOrTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for work")
	}
}
