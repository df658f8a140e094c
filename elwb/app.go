package elwb

import (
	"context"
	"time"
)

// engine is the behaviour Application needs from whichever role
// (HostEngine or SourceEngine) it wraps.
type engine interface {
	Run(ctx context.Context)
	Send(payload []byte) error
	Recv() (sender uint16, f Frame, ok bool)
	RcvBufferCount() int
	SendBufferCount() int
	Stats() Stats
	GetTime() (rxTimestamp time.Duration, globalSeconds uint32)
	GetTimestampUS() uint64
}

var (
	_ engine = (*SourceEngine)(nil)
	_ engine = (*HostEngine)(nil)
)

// Application is the public surface the embedding program uses (§6
// Application API): start the round engine with pre/post hooks, exchange
// frames with it, and read back timing and statistics.
type Application struct {
	eng    engine
	shared *roundShared

	cancel context.CancelFunc
	done   chan struct{}
}

// NewHostApplication wraps a HostEngine.
func NewHostApplication(cfg Config, transport SlotTransport, policy Policy) *Application {
	e := NewHostEngine(cfg, transport, policy)
	return &Application{eng: e, shared: e.roundShared}
}

// NewSourceApplication wraps a SourceEngine for selfID.
func NewSourceApplication(cfg Config, selfID uint16, transport SlotTransport) *Application {
	e := NewSourceEngine(cfg, selfID, transport)
	return &Application{eng: e, shared: e.roundShared}
}

// Start initializes the queues (already done at construction) and arms the
// first round, running pre/post hooks around each round as described in
// §4.6/§4.7 step 1 and step 6. It returns as soon as the round engine's
// goroutine is launched; call Stop to tear it down.
func (a *Application) Start(pre, post HookFunc) {
	a.shared.pre = pre
	a.shared.post = post
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	go func() {
		defer close(a.done)
		a.eng.Run(ctx)
	}()
}

// Stop cancels the round engine and waits for its goroutine to exit.
func (a *Application) Stop() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
	a.shared.close()
}

// Send enqueues payload for transmission in this node's next owned slot.
// It returns ErrQueueFull if the outbound queue is at capacity, or
// ErrBadFrame if payload is empty or exceeds MaxDataPktLen.
func (a *Application) Send(payload []byte) error {
	return a.eng.Send(payload)
}

// Recv returns the oldest pending inbound frame and the node id it came
// from. ok is false if nothing is pending.
func (a *Application) Recv() (sender uint16, payload []byte, ok bool) {
	s, f, ok := a.eng.Recv()
	if !ok {
		return 0, nil, false
	}
	return s, f.Bytes(), true
}

// RcvBufferCount and SendBufferCount report the number of frames currently
// queued in each direction.
func (a *Application) RcvBufferCount() int  { return a.eng.RcvBufferCount() }
func (a *Application) SendBufferCount() int { return a.eng.SendBufferCount() }

// GetTime reports the global time, in seconds, as of the rxTimestamp
// instant it also returns.
func (a *Application) GetTime() (rxTimestamp time.Duration, globalSeconds uint32) {
	return a.eng.GetTime()
}

// GetTimestampUS reports the current time in microseconds (§6).
func (a *Application) GetTimestampUS() uint64 { return a.eng.GetTimestampUS() }

// Stats returns a read-only snapshot of the engine's counters.
func (a *Application) Stats() Stats { return a.eng.Stats() }
