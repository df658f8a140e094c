package elwb

import (
	"sync"
	"time"
)

// HookFunc is the application's pre-/post-process callback, run at the
// preprocess window and, on idle (DACK) rounds, right after the round
// finishes (§4.6 step 1 and step 6, §4.7 step 1 and step 6).
type HookFunc func()

// SinkFunc receives a frame diverted away from the inbound queue. A frame is
// diverted only when a SinkFunc is installed on the engine's roundShared;
// Config.WriteToSink does not install one.
type SinkFunc func(sender uint16, payload []byte)

// acceptFilter decides whether a frame received in a data slot should be
// accepted, by sender id. The default, per §4.6 step 4, accepts only the
// host and slot id 0.
type acceptFilter func(senderID uint16) bool

func defaultAcceptFilter(cfg Config) acceptFilter {
	return func(senderID uint16) bool {
		return senderID == cfg.HostID || senderID == 0
	}
}

// roundShared holds the fields the host and source round engines both
// need, factored out so the two roles share one round-bookkeeping type
// instead of a single branchy function (the original's node_run branches
// on HOST_ID but otherwise shares its slot-iteration code; this rewrite
// keeps the "same skeleton, different role" shape as two cooperating types
// over a common struct, which is the idiomatic Go translation of that
// branch).
type roundShared struct {
	cfg       Config
	transport SlotTransport
	clock     Clock
	logger    *Logger
	warn      *warnLimiter

	inQueue  *inboundRing
	inMu     sync.Mutex
	inDrop   *dropCounter
	outQueue Queue
	outWorker *XmemWorker // non-nil only when outQueue is an ExternalQueue

	stats statCounters

	mu         sync.Mutex
	globalTime uint32 // seconds, last Schedule.Time observed/published
	tRefLF     time.Duration
	periodIdle time.Duration
	running    time.Duration // the currently running (possibly updated) period

	sink    SinkFunc
	pre     HookFunc
	post    HookFunc
	preArmed bool
}

func newRoundShared(cfg Config, transport SlotTransport) *roundShared {
	r := &roundShared{
		cfg:        cfg,
		transport:  transport,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		warn:       newWarnLimiter(),
		inQueue:    newInboundRing(cfg.InSize),
		inDrop:     &dropCounter{},
		periodIdle: cfg.SchedPeriodIdle,
		running:    cfg.SchedPeriodIdle,
	}
	if cfg.UseExternalMemory && cfg.ExternalStorage != nil {
		r.outWorker = NewXmemWorker(cfg.ExternalStorage)
		r.outQueue = NewExternalQueue(r.outWorker, cfg.OutSize)
	} else {
		r.outQueue = NewRAMQueue(cfg.OutSize)
	}
	return r
}

// close releases resources started at construction time: the
// external-memory worker goroutine, if the outbound queue is xmem-backed.
func (r *roundShared) close() {
	if r.outWorker != nil {
		r.outWorker.Close()
	}
}

// deliver routes a received data-slot payload either to the external sink,
// if one is installed, or the inbound queue (§4.6 step 4, §4.7 step 3).
// Config.WriteToSink is not consulted. A payload of length 0 or over
// MaxDataPktLen is dropped with a warning instead of being queued.
func (r *roundShared) deliver(senderID uint16, payload []byte) {
	if r.sink != nil {
		r.sink(senderID, payload)
		return
	}
	if len(payload) == 0 || len(payload) > MaxDataPktLen {
		if r.warn.allow("bad_frame") {
			r.logger.Warning().Int("sender", int(senderID)).Int("len", len(payload)).Log("elwb: malformed frame, dropping")
		}
		return
	}
	r.inMu.Lock()
	ok := r.inQueue.Push(inboundEntry{sender: senderID, frame: NewFrame(payload)})
	r.inMu.Unlock()
	if !ok {
		r.stats.rxBufDrop.Add(1)
		r.inDrop.incr()
		if r.warn.allow("rxbuf_full") {
			r.logger.Warning().Int("sender", int(senderID)).Int("len", len(payload)).Log("elwb: inbound queue full, dropping frame")
		}
	}
}

// recv pops the oldest pending inbound frame along with its sender, per
// the application API's recv(out_buf, out_sender, out_stream).
func (r *roundShared) recv() (uint16, Frame, bool) {
	r.inMu.Lock()
	e, ok := r.inQueue.Pop()
	r.inMu.Unlock()
	if !ok {
		return 0, Frame{}, false
	}
	return e.sender, e.frame, true
}

// inCount returns the number of frames currently queued inbound.
func (r *roundShared) inCount() int {
	r.inMu.Lock()
	defer r.inMu.Unlock()
	return r.inQueue.Len()
}

// send enqueues payload on the outbound queue, counting a drop against
// TxBufDrop exactly once per dropped frame, the same way deliver counts
// RxBufDrop on the inbound side (testable property 5).
func (r *roundShared) send(payload []byte) error {
	err := r.outQueue.Put(payload)
	if err == ErrQueueFull {
		r.stats.txBufDrop.Add(1)
	}
	return err
}

// runPreprocess invokes the app's pre-process hook (if any) and waits the
// configured preprocess window, per step 1 of both round engines.
func (r *roundShared) runPreprocess() {
	if r.pre != nil {
		r.pre()
	}
	if r.cfg.TPreprocess > 0 {
		r.clock.WaitUntilHF(r.clock.NowHF() + r.cfg.TPreprocess)
	}
}

// runPostprocess polls the app's post-process hook on an idle round and
// re-arms the preprocess window for the next round (step 6).
func (r *roundShared) runPostprocess() {
	if r.post != nil {
		r.post()
	}
	r.preArmed = true
}
