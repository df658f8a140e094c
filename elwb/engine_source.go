package elwb

import (
	"context"
	"time"
)

// driftBound is the maximum per-round clock-drift correction a source will
// apply in one step (§4.6: "bounded to |drift|<100 ticks, applied at half
// the observed rate"); ticks here are HF ticks.
const driftBound = 100

// driftDamping is the fraction (1/driftDamping) of the observed drift
// applied per round, so a single noisy reception can't desynchronize the
// local clock in one step.
const driftDamping = 2

// SourceEngine runs the per-round state machine of a source node (§4.6): it
// receives a schedule each round, recovers timing drift against it,
// participates in whichever data/contention/request slots the schedule
// assigns it, and sleeps until the next round.
type SourceEngine struct {
	*roundShared

	selfID uint16
	fsm    *SyncFSM

	haveRef        bool
	tRefHF         time.Duration // current HF instant of round start, corrected
	predictedHF    time.Duration // this round's anchor as predicted before receiving
	havePrediction bool
	driftHF        time.Duration // last applied per-round drift correction

	lastSyncedLF     time.Duration // clock.NowLF() at the last successful sync
	lastGlobalAtSync uint32        // global_time as of the last successful sync

	firstEverSent bool

	schedule Schedule
}

// NewSourceEngine constructs a SourceEngine for selfID, communicating over
// transport.
func NewSourceEngine(cfg Config, selfID uint16, transport SlotTransport) *SourceEngine {
	return &SourceEngine{
		roundShared: newRoundShared(cfg, transport),
		selfID:      selfID,
		fsm:         NewSyncFSM(cfg.TGuard, cfg.TGuard1, cfg.TGuard2),
	}
}

// Run drives rounds back to back until ctx is cancelled.
func (e *SourceEngine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e.step(ctx)
	}
}

// step executes exactly one round (or, from BOOTSTRAP, one bootstrap
// listen-and-possibly-sleep cycle) of the source role.
func (e *SourceEngine) step(ctx context.Context) {
	e.runPreprocess()

	if e.fsm.State() == Bootstrap {
		e.bootstrap(ctx)
		return
	}

	if e.haveRef {
		e.predictedHF = e.tRefHF + e.running
		e.havePrediction = true
	} else {
		e.havePrediction = false
	}

	e.receiveSchedule()

	if e.fsm.State() == Bootstrap {
		// A miss that drops back to BOOTSTRAP restarts the bootstrap loop
		// on the next step, without sleeping.
		return
	}
	if e.fsm.State() != Synced {
		// Unsynced(2): wait out the guard-widened window and try again next
		// round without touching data slots, per §4.6 "missed schedule"
		// edge case.
		e.sleepUntilNextRound()
		return
	}

	e.recoverTime()
	e.runSlots()

	if e.schedule.Dack {
		e.runPostprocess()
	}

	e.sleepUntilNextRound()
}

// bootstrap repeatedly listens for a schedule with no time reference to
// anchor against. If TSilent elapses with nothing received, it deep-sleeps
// for TDeepsleep and tries again, per §4.6 step 2's bootstrap loop.
func (e *SourceEngine) bootstrap(ctx context.Context) {
	deadline := e.clock.NowHF() + e.cfg.TSilent
	for e.clock.NowHF() < deadline {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e.transport.Recv(0, e.cfg.TxCntSched, true, false)
		e.clock.WaitUntilHF(e.clock.NowHF() + e.cfg.TSched)
		e.transport.Stop()
		res := e.transport.Result()
		if res.NRx > 0 {
			if sched, err := Parse(res.Payload[:res.PayloadLen]); err == nil {
				e.adoptSchedule(sched, res)
				e.fsm.Step(EventRcvd)
				e.lastSyncedLF = e.clock.NowLF()
				e.lastGlobalAtSync = e.globalTime
				return
			}
			if e.warn.allow("bad_schedule") {
				e.logger.Warning().Log("elwb: malformed schedule during bootstrap")
			}
		}
	}
	e.logger.Info().Dur("silence", e.cfg.TSilent).Log("elwb: bootstrap silent, deep sleeping")
	e.clock.SleepLF(e.clock.NowLF() + e.cfg.TDeepsleep)
	e.stats.sleepCnt.Add(1)
}

// receiveSchedule opens a schedule-slot receive window sized by the current
// sync state's guard interval and feeds the outcome into the sync FSM
// (§4.5, §4.6 step 2).
func (e *SourceEngine) receiveSchedule() {
	guard := e.fsm.GuardInterval()
	if e.haveRef {
		e.clock.WaitUntilHF(e.tRefHF + e.running - guard)
	}
	e.transport.Recv(0, e.cfg.TxCntSched, true, false)
	e.clock.WaitUntilHF(e.clock.NowHF() + e.cfg.TSched + 2*guard)
	e.transport.Stop()
	res := e.transport.Result()

	if res.NRx == 0 {
		e.fsm.Step(EventMissed)
		if e.fsm.State() == Bootstrap {
			// Edge case: missed schedule while already at the edge of
			// resync tolerance restarts bootstrap immediately, no sleep.
			return
		}
		// Edge case: a missed data-round schedule still advances the
		// anchor by one idle period, so the next attempt lands where the
		// round would have been had it not been missed.
		if e.haveRef {
			e.tRefHF += e.periodIdle
		}
		return
	}

	sched, err := Parse(res.Payload[:res.PayloadLen])
	if err != nil {
		e.fsm.Step(EventMissed)
		if e.warn.allow("bad_schedule") {
			e.logger.Warning().Log("elwb: malformed schedule, treating as missed")
		}
		return
	}
	e.adoptSchedule(sched, res)
	e.fsm.Step(EventRcvd)
	e.lastSyncedLF = e.clock.NowLF()
	e.lastGlobalAtSync = e.globalTime
}

// adoptSchedule records a freshly received schedule and, if the transport
// reported an updated time reference, anchors tRefHF to it.
func (e *SourceEngine) adoptSchedule(sched Schedule, res SlotResult) {
	e.schedule = sched
	e.globalTime = sched.Time
	e.running = PeriodToDuration(sched.Period)
	if e.running <= 0 {
		e.running = e.periodIdle
	}
	if res.TRefUpdated {
		e.tRefHF = res.TRef + e.cfg.TRefOfs
		e.haveRef = true
	}
}

// recoverTime applies a bounded, damped correction towards the observed
// reference, per §4.6 step 3: drift is clamped to driftBound HF ticks and
// only half of it (driftDamping) is applied per round, so a single noisy
// reception cannot desynchronize the local clock.
func (e *SourceEngine) recoverTime() {
	if !e.haveRef || !e.havePrediction {
		return
	}
	drift := e.tRefHF - e.predictedHF
	if drift > driftBound {
		drift = driftBound
	} else if drift < -driftBound {
		drift = -driftBound
	}
	e.driftHF = drift / driftDamping
	e.tRefHF = e.predictedHF + e.driftHF
}

// runSlots walks the schedule's slot list, sending in any slot this source
// owns and receiving (and, per §4.6 step 4, accepting only from the host)
// in every other data slot, then handles the contention/request slot if the
// schedule carries one.
func (e *SourceEngine) runSlots() {
	slotDur := e.cfg.TCont
	if e.schedule.Sack {
		slotDur = e.cfg.TData
	}
	t := e.tRefHF + e.cfg.TSched + e.cfg.TGap
	accept := defaultAcceptFilter(e.cfg)

	for _, owner := range e.schedule.Slots {
		e.clock.WaitUntilHF(t)
		if owner == e.selfID {
			e.sendDataSlot()
		} else {
			e.recvDataSlot(accept, owner)
		}
		t += slotDur + e.cfg.TGap
	}

	if e.schedule.Cont {
		e.clock.WaitUntilHF(t)
		e.sendContentionSlot()
		t += e.cfg.TCont + e.cfg.TGap
	}

	if e.schedule.Cont || e.schedule.Sack {
		e.clock.WaitUntilHF(t)
		e.recvSecondSchedule(t)
	}
}

// sendDataSlot transmits the head of the outbound queue (or an empty flood,
// if nothing is pending — a source still floods its assigned slot even with
// no payload, so relays downstream don't treat the round as having failed).
func (e *SourceEngine) sendDataSlot() {
	f, err := e.outQueue.Get()
	var payload []byte
	if err == nil {
		payload = f.Bytes()
	}
	e.transport.Send(e.selfID, payload, len(payload), e.cfg.TxCntData, false, false)
	e.clock.WaitUntilHF(e.clock.NowHF() + e.cfg.TData)
	e.transport.Stop()
	if err == nil {
		e.stats.pckCnt.Add(1)
	}
}

func (e *SourceEngine) recvDataSlot(accept acceptFilter, owner uint16) {
	e.transport.Recv(0, e.cfg.TxCntData, false, false)
	e.clock.WaitUntilHF(e.clock.NowHF() + e.cfg.TData)
	e.transport.Stop()
	res := e.transport.Result()
	if res.NRx == 0 {
		return
	}
	// owner is whichever node Schedule.Slots assigned this slot to; the
	// accept filter decides whether this node cares about that sender at
	// all (§4.6 step 4).
	if !accept(owner) {
		return
	}
	e.deliver(owner, res.Payload[:res.PayloadLen])
}

// sendContentionSlot places a stream request if this node has pending
// outbound traffic; per §3/§6, the request carries the outstanding-frame
// count and, the first time this node ever contends, its own node id.
func (e *SourceEngine) sendContentionSlot() {
	outstanding := uint8(e.outQueue.Count())
	if outstanding == 0 {
		e.transport.Recv(0, e.cfg.TxCntSched, false, false)
		e.clock.WaitUntilHF(e.clock.NowHF() + e.cfg.TCont)
		e.transport.Stop()
		return
	}
	buf := EncodeStreamRequest(outstanding, e.selfID, !e.firstEverSent)
	e.transport.Send(e.selfID, buf, len(buf), e.cfg.TxCntSched, false, false)
	e.clock.WaitUntilHF(e.clock.NowHF() + e.cfg.TCont)
	e.transport.Stop()
	e.firstEverSent = true
}

// recvSecondSchedule listens for the optional second schedule the host sends
// after a contention slot or a SACK data round, carrying a recomputed period
// (§4.4's second-schedule frame; period 0 means "no change").
func (e *SourceEngine) recvSecondSchedule(at time.Duration) {
	e.transport.Recv(2, e.cfg.TxCntSched, false, false)
	e.clock.WaitUntilHF(at + e.cfg.TSched)
	e.transport.Stop()
	res := e.transport.Result()
	if res.NRx == 0 {
		return
	}
	if period, ok := DecodeSecondSchedule(res.Payload[:res.PayloadLen]); ok && period != 0 {
		e.running = PeriodToDuration(period)
	}
}

func (e *SourceEngine) sleepUntilNextRound() {
	e.clock.SleepLF(e.clock.NowLF() + e.running)
	e.stats.sleepCnt.Add(1)
}

// Send enqueues payload for transmission in this source's next owned data
// slot, or its next contention opportunity if it currently owns no slot.
func (e *SourceEngine) Send(payload []byte) error {
	return e.send(payload)
}

// Recv returns the oldest pending inbound frame along with its sender. ok
// is false if nothing is pending.
func (e *SourceEngine) Recv() (sender uint16, f Frame, ok bool) {
	return e.recv()
}

// RcvBufferCount returns the number of frames pending in the inbound queue.
func (e *SourceEngine) RcvBufferCount() int { return e.inCount() }

// SendBufferCount returns the number of frames pending in the outbound
// queue.
func (e *SourceEngine) SendBufferCount() int { return e.outQueue.Count() }

// Stats returns a snapshot of this engine's counters.
func (e *SourceEngine) Stats() Stats { return e.stats.snapshot(e.fsm) }

// State reports the current sync state.
func (e *SourceEngine) State() SyncState { return e.fsm.State() }

// GetTime reports the global time, in seconds, as of the reference instant
// it returns (§6 get_time(out_rx_timestamp)).
func (e *SourceEngine) GetTime() (rxTimestamp time.Duration, globalSeconds uint32) {
	if e.fsm.State() == Synced && e.haveRef {
		return e.tRefHF, e.globalTime
	}
	return e.lastSyncedLF, e.lastGlobalAtSync
}

// GetTimestampUS reports the current time in microseconds: while SYNCED it
// extrapolates from the just-received time reference; once desynced it
// extrapolates from the low-frequency clock's drift against the last
// successful sync instead (§6).
func (e *SourceEngine) GetTimestampUS() uint64 {
	if e.fsm.State() == Synced && e.haveRef {
		elapsed := e.clock.NowHF() - e.tRefHF
		return uint64(e.globalTime)*1e6 + uint64(elapsed.Microseconds())
	}
	elapsed := e.clock.NowLF() - e.lastSyncedLF
	return uint64(e.lastGlobalAtSync)*1e6 + uint64(elapsed.Microseconds())
}
