package elwb

import "time"

// Clock exposes the two monotonic counters the round engine is built on,
// per the timebase component (C2): a high-frequency counter for sub-slot
// scheduling, and a low-frequency counter that survives deep sleep and is
// used for inter-round anchoring. Real deployments back HF with a radio
// timer and LF with an RTC; this package only needs the monotonic,
// absolute-deadline contract described here.
//
// HFHz and LFHz are the respective tick rates; HFLFRatio = HFHz/LFHz.
type Clock interface {
	// NowHF returns the current high-frequency time.
	NowHF() time.Duration
	// NowLF returns the current low-frequency time.
	NowLF() time.Duration
	// HFHz returns the high-frequency counter's resolution, in Hz.
	HFHz() int64
	// LFHz returns the low-frequency counter's resolution, in Hz.
	LFHz() int64
	// WaitUntilHF blocks the calling goroutine until the high-frequency
	// clock reaches deadline; there is no cancellation, so a wait always
	// runs to its deadline. Suspension
	// points are exactly the ones enumerated in the concurrency model:
	// before each slot, at the inter-slot gap, and at the post-round sleep.
	WaitUntilHF(deadline time.Duration)
	// SleepLF blocks until the low-frequency clock reaches deadline. Used
	// for the inter-round sleep and the bootstrap deep-sleep.
	SleepLF(deadline time.Duration)
}

// HFLFRatio reports clk.HFHz()/clk.LFHz(), the conversion factor between
// the two timebases (§4.2).
func HFLFRatio(clk Clock) int64 {
	lf := clk.LFHz()
	if lf == 0 {
		return 0
	}
	return clk.HFHz() / lf
}
