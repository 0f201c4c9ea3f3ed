//go:build unix

package serialqueue

import (
	"sync"

	"golang.org/x/sys/unix"
)

// wakeSignal wakes the timer goroutine early when a new, earlier timer is
// scheduled while it is parked in time.After. On unix the signal is a
// write to a non-blocking self-pipe; a pump goroutine relays each read
// from the pipe onto the buffered channel ch that runTimers selects on.
type wakeSignal struct {
	readFD, writeFD int
	ch              chan struct{}
	closeOnce       sync.Once
}

func newWakeSignal() wakeSignal {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		// Fall back to a channel-only signal; correctness is unaffected,
		// only the wake latency under heavy contention.
		return wakeSignal{ch: make(chan struct{}, 1)}
	}
	_ = unix.SetNonblock(fds[0], true)
	_ = unix.SetNonblock(fds[1], true)
	w := wakeSignal{readFD: fds[0], writeFD: fds[1], ch: make(chan struct{}, 1)}
	go w.pump()
	return w
}

// pump relays readability on the pipe to ch, so runTimers can still use a
// uniform select over channels regardless of platform.
func (w *wakeSignal) pump() {
	if w.readFD == 0 && w.writeFD == 0 {
		return
	}
	buf := make([]byte, 8)
	for {
		n, err := unix.Read(w.readFD, buf)
		if n > 0 {
			select {
			case w.ch <- struct{}{}:
			default:
			}
		}
		if err != nil {
			return
		}
	}
}

func (w *wakeSignal) signal() {
	if w.writeFD != 0 {
		_, _ = unix.Write(w.writeFD, []byte{1})
		return
	}
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

func (w *wakeSignal) channel() <-chan struct{} { return w.ch }

func (w *wakeSignal) drain() {}

func (w *wakeSignal) close() {
	w.closeOnce.Do(func() {
		if w.readFD != 0 {
			_ = unix.Close(w.readFD)
		}
		if w.writeFD != 0 {
			_ = unix.Close(w.writeFD)
		}
	})
}
