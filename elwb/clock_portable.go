package elwb

import "time"

// portableClock implements Clock with time.Since and time.Sleep, used as
// the fallback real-time implementation on platforms without a timerfd-style
// primitive (see clock_linux.go for the Linux fast path). The fake clock
// used in deterministic tests (clock_fake.go) is a separate implementation.
type portableClock struct {
	start time.Time
}

func newPortableClock() *portableClock {
	return &portableClock{start: time.Now()}
}

func (c *portableClock) NowHF() time.Duration { return time.Since(c.start) }
func (c *portableClock) NowLF() time.Duration { return time.Since(c.start) }
func (c *portableClock) HFHz() int64          { return int64(time.Second) }
func (c *portableClock) LFHz() int64          { return 1 }

func (c *portableClock) WaitUntilHF(deadline time.Duration) { c.sleepUntil(deadline) }
func (c *portableClock) SleepLF(deadline time.Duration)      { c.sleepUntil(deadline) }

func (c *portableClock) sleepUntil(deadline time.Duration) {
	if remaining := deadline - time.Since(c.start); remaining > 0 {
		time.Sleep(remaining)
	}
}
