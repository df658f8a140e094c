//go:build linux

package elwb

import (
	"time"

	"golang.org/x/sys/unix"
)

// linuxClock backs WaitUntilHF with a timerfd, the same family of direct
// unix syscalls the teacher's Linux poller (poller_linux.go) uses for
// precise, syscall-driven wakeups instead of a generic time.Timer channel.
// Each wait arms the timerfd as a relative timer for the time remaining
// until the deadline and blocks in a single read(2) until it expires, which
// is a closer match to "wait until this HF deadline" than epoll-driven fd
// readiness.
type linuxClock struct {
	*portableClock
	fd int
}

// NewRealClock returns the platform's real-time Clock implementation. On
// Linux it is backed by a timerfd; if timerfd creation fails (e.g. a
// sandboxed environment without CLOCK_MONOTONIC access), it falls back to
// the portable time.Timer implementation.
func NewRealClock() Clock {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC)
	if err != nil {
		return newPortableClock()
	}
	return &linuxClock{portableClock: newPortableClock(), fd: fd}
}

func (c *linuxClock) WaitUntilHF(deadline time.Duration) { c.waitUntil(deadline) }
func (c *linuxClock) SleepLF(deadline time.Duration)     { c.waitUntil(deadline) }

func (c *linuxClock) waitUntil(deadline time.Duration) {
	remaining := deadline - time.Since(c.start)
	if remaining <= 0 {
		return
	}
	spec := unix.ItimerSpec{Value: unix.NsecToTimespec(remaining.Nanoseconds())}
	if err := unix.TimerfdSettime(c.fd, 0, &spec, nil); err != nil {
		time.Sleep(remaining)
		return
	}
	var buf [8]byte
	for {
		_, err := unix.Read(c.fd, buf[:])
		if err == nil || err != unix.EINTR {
			return
		}
	}
}

// Close releases the underlying timerfd.
func (c *linuxClock) Close() error {
	return unix.Close(c.fd)
}
