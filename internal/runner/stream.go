package runner

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// stallWriter relays the program's stdout and calls cancel when nothing has
// been written for timeout. Every non-empty write rearms the timer.
type stallWriter struct {
	w       io.Writer
	timer   *time.Timer
	timeout time.Duration
	cancel  func()

	mu      sync.Mutex
	stalled bool
}

func newStallWriter(w io.Writer, timeout time.Duration, cancel func()) *stallWriter {
	sw := &stallWriter{w: w, timeout: timeout, cancel: cancel}
	if timeout > 0 {
		sw.timer = time.AfterFunc(timeout, sw.fire)
	}
	return sw
}

func (sw *stallWriter) Write(p []byte) (int, error) {
	if len(p) > 0 && sw.timer != nil {
		sw.timer.Reset(sw.timeout)
	}
	return sw.w.Write(p)
}

func (sw *stallWriter) fire() {
	sw.mu.Lock()
	sw.stalled = true
	sw.mu.Unlock()
	if sw.cancel != nil {
		sw.cancel()
	}
}

// Stalled reports whether the timer fired.
func (sw *stallWriter) Stalled() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.stalled
}

func (sw *stallWriter) Stop() {
	if sw.timer != nil {
		sw.timer.Stop()
	}
}

// isTerminal reports whether r is a terminal-backed file.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
