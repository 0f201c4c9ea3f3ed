package serialqueue

import (
	"container/heap"
	"runtime"
	"sync"
	"time"
)

// Pool is the external collaborator the dispatch engine consumes. It is
// not part of the core's correctness story — any implementation that
// honours this contract works — but every Queue needs one, so this
// package ships DefaultPool.
type Pool interface {
	// Submit schedules work for execution on some worker. No ordering or
	// delay guarantees relative to other submissions.
	Submit(work func())

	// ScheduleAfter schedules work to run after at least delay has
	// elapsed. The returned token cancels the timer if Dispose is called
	// before it fires; disposing after it has fired is a no-op.
	ScheduleAfter(delay time.Duration, work func()) *CancelToken
}

// DefaultPool is a bounded goroutine pool: a fixed number of long-lived
// worker goroutines draining a shared job channel, plus one timer
// goroutine managing a min-heap of pending delayed submissions. It is
// deliberately unfair and unordered across queues; the only promise is
// that every Submit eventually runs.
type DefaultPool struct {
	jobs chan func()

	wake      wakeSignal
	timerMu   sync.Mutex
	timers    timerHeap
	nextID    uint64
	closeOnce sync.Once
	done      chan struct{}
}

var (
	sharedPoolOnce sync.Once
	sharedPool     *DefaultPool
)

// defaultPool returns the process-wide shared DefaultPool used when a
// Queue is constructed without WithPool, created lazily on first use.
func defaultPool() Pool {
	sharedPoolOnce.Do(func() {
		sharedPool = NewDefaultPool(0)
	})
	return sharedPool
}

// NewDefaultPool creates a DefaultPool with the given number of worker
// goroutines. workers <= 0 selects runtime.GOMAXPROCS(0).
func NewDefaultPool(workers int) *DefaultPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &DefaultPool{
		jobs:   make(chan func(), 1024),
		nextID: 1,
		done:   make(chan struct{}),
	}
	p.wake = newWakeSignal()
	for i := 0; i < workers; i++ {
		go p.runWorker()
	}
	go p.runTimers()
	return p
}

func (p *DefaultPool) runWorker() {
	for job := range p.jobs {
		job()
	}
}

// Submit implements Pool.
func (p *DefaultPool) Submit(work func()) {
	p.jobs <- work
}

// pendingTimer is one entry in the pool's timer heap.
type pendingTimer struct {
	id        uint64
	when      time.Time
	work      func()
	cancelled bool
	index     int // heap index, maintained by container/heap
}

type timerHeap []*pendingTimer

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].when.Before(h[j].when) }
func (h timerHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x any) {
	t := x.(*pendingTimer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// ScheduleAfter implements Pool.
func (p *DefaultPool) ScheduleAfter(delay time.Duration, work func()) *CancelToken {
	t := &pendingTimer{
		when: time.Now().Add(delay),
		work: work,
	}
	p.timerMu.Lock()
	t.id = p.nextID
	p.nextID++
	heap.Push(&p.timers, t)
	earliest := p.timers[0] == t
	p.timerMu.Unlock()

	if earliest {
		p.wake.signal()
	}

	return newCancelToken(func() {
		p.timerMu.Lock()
		t.cancelled = true
		p.timerMu.Unlock()
	})
}

// runTimers is the pool's single timer goroutine: it sleeps until the
// earliest pending timer is due, or until woken early because a new,
// earlier timer was scheduled (the self-pipe wake idiom, see
// pool_unix.go/pool_other.go).
func (p *DefaultPool) runTimers() {
	for {
		p.timerMu.Lock()
		var sleep time.Duration
		if len(p.timers) == 0 {
			sleep = time.Hour
		} else {
			sleep = time.Until(p.timers[0].when)
			if sleep < 0 {
				sleep = 0
			}
		}
		p.timerMu.Unlock()

		select {
		case <-p.done:
			return
		case <-p.wake.channel():
			p.wake.drain()
			continue
		case <-time.After(sleep):
		}

		p.fireDue()
	}
}

func (p *DefaultPool) fireDue() {
	now := time.Now()
	var due []*pendingTimer
	p.timerMu.Lock()
	for len(p.timers) > 0 && !p.timers[0].when.After(now) {
		t := heap.Pop(&p.timers).(*pendingTimer)
		if !t.cancelled {
			due = append(due, t)
		}
	}
	p.timerMu.Unlock()

	for _, t := range due {
		p.Submit(t.work)
	}
}

// Close stops the worker and timer goroutines. The shared default pool is
// process-lifetime and is never closed by Queue.Dispose; Close is for
// pools created explicitly via NewDefaultPool in tests or short-lived
// programs.
func (p *DefaultPool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		close(p.jobs)
		p.wake.close()
	})
}
