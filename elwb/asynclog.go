package elwb

import "sync"

// logTask is a deferred structured-log call: a level-tagged closure that
// writes through a *Logger once it reaches the flusher goroutine.
type logTask func(l *Logger)

// AsyncSink buffers submitted log calls into a bounded ring and flushes them
// from a dedicated goroutine, so a slow logger backend (a serial console, in
// the firmware this was ported from) never blocks the submitter. The round
// engines in this package log directly to their configured Logger and do
// not route their log calls through an AsyncSink. This supplements the ambient logging
// stack with the moral equivalent of the original firmware's debug-print
// ring buffer (core/dev/debug-print.h), which decouples message production
// from a UART flush task for the same reason.
type AsyncSink struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buf     []logTask
	head    int
	n       int
	target  *Logger
	closed  bool
	dropped uint64
}

// NewAsyncSink starts a flusher goroutine that drains buffered log tasks
// into target. capacity bounds the number of pending tasks; once full,
// further submissions are dropped and counted (see Dropped), mirroring the
// original's willingness to drop a debug message rather than block.
func NewAsyncSink(target *Logger, capacity int) *AsyncSink {
	if capacity < 1 {
		capacity = 1
	}
	s := &AsyncSink{buf: make([]logTask, capacity), target: target}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Submit enqueues a log task without blocking. It returns false, and
// increments Dropped, if the ring is full.
func (s *AsyncSink) Submit(task logTask) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.n == len(s.buf) {
		s.dropped++
		return false
	}
	s.buf[(s.head+s.n)%len(s.buf)] = task
	s.n++
	s.cond.Signal()
	return true
}

// Dropped returns the number of log tasks discarded due to a full ring.
func (s *AsyncSink) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close stops the flusher goroutine after draining any pending tasks.
func (s *AsyncSink) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *AsyncSink) run() {
	for {
		s.mu.Lock()
		for s.n == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.n == 0 && s.closed {
			s.mu.Unlock()
			return
		}
		task := s.buf[s.head]
		s.buf[s.head] = nil
		s.head = (s.head + 1) % len(s.buf)
		s.n--
		s.mu.Unlock()

		task(s.target)
	}
}
