package elwb

import (
	"sync"
	"time"
)

// FakeClock is a deterministic Clock for tests: NowHF/NowLF are driven by
// Advance rather than wall-clock time, and WaitUntilHF/SleepLF return as
// soon as the clock has been advanced past the requested deadline. This
// mirrors the teacher's use of an injected fake poller in timer tests
// instead of sleeping in real time.
type FakeClock struct {
	mu   sync.Mutex
	cond *sync.Cond
	now  time.Duration
	hfHz int64
	lfHz int64
}

// NewFakeClock returns a FakeClock starting at t=0 with the given
// HF/LF resolutions (in Hz).
func NewFakeClock(hfHz, lfHz int64) *FakeClock {
	c := &FakeClock{hfHz: hfHz, lfHz: lfHz}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *FakeClock) NowHF() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) NowLF() time.Duration {
	return c.NowHF()
}

func (c *FakeClock) HFHz() int64 { return c.hfHz }
func (c *FakeClock) LFHz() int64 { return c.lfHz }

// Advance moves the clock forward by d and wakes any waiters whose
// deadline has now elapsed.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	c.cond.Broadcast()
	c.mu.Unlock()
}

func (c *FakeClock) WaitUntilHF(deadline time.Duration) { c.waitUntil(deadline) }
func (c *FakeClock) SleepLF(deadline time.Duration)     { c.waitUntil(deadline) }

func (c *FakeClock) waitUntil(deadline time.Duration) {
	c.mu.Lock()
	for c.now < deadline {
		c.cond.Wait()
	}
	c.mu.Unlock()
}
