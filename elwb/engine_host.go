package elwb

import (
	"context"
	"time"
)

// HostEngine runs the per-round state machine of the host node (§4.7): it
// computes and broadcasts the schedule, runs every data slot as the one
// fixed receiver (accepting from whichever source owns that slot), collects
// contention-slot requests for the policy, and optionally follows up with a
// second schedule before sleeping until the next round.
type HostEngine struct {
	*roundShared

	policy     Policy
	requests   []StreamRequest
	served     []uint16
	lastServed []uint16

	schedule   Schedule
	anchorHF   time.Duration
	haveAnchor bool
}

// NewHostEngine constructs a HostEngine broadcasting over transport and
// allocating slots via policy.
func NewHostEngine(cfg Config, transport SlotTransport, policy Policy) *HostEngine {
	policy.Init(cfg)
	return &HostEngine{
		roundShared: newRoundShared(cfg, transport),
		policy:      policy,
	}
}

// Run drives rounds back to back until ctx is cancelled.
func (e *HostEngine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e.step()
	}
}

// step executes one host round per §4.7's step sequence.
func (e *HostEngine) step() {
	e.runPreprocess()

	e.globalTime = uint32(e.clock.NowLF() / time.Second)
	in := RoundInput{GlobalTime: e.globalTime, Requests: e.requests, Served: e.lastServed}
	e.requests = nil

	e.schedule = e.policy.Compute(in)
	e.running = PeriodToDuration(e.schedule.Period)
	if e.running <= 0 {
		e.running = e.periodIdle
	}

	e.broadcastSchedule()
	e.anchorHF = e.clock.NowHF()
	e.haveAnchor = true

	e.served = nil
	e.runSlots()

	// A second schedule follows either a contention slot (period=0
	// handshake, §4.7 step 4) or a SACK data round's completion (the AE
	// policy's data->idle ack, §4.8 S6); both funnel through the same
	// PrepareSack call, with this round's served-node list now populated.
	if e.schedule.Cont || e.schedule.Sack {
		if e.schedule.Cont && len(e.requests) > 0 {
			e.stats.srqCnt.Add(1)
		}
		sackIn := RoundInput{GlobalTime: e.globalTime, Requests: in.Requests, Served: e.served}
		period, send := e.policy.PrepareSack(sackIn)
		if send {
			e.broadcastSecondSchedule(period)
		}
	}

	if e.schedule.Dack {
		e.runPostprocess()
	}

	e.lastServed = e.served

	e.clock.SleepLF(e.clock.NowLF() + e.running)
	e.stats.sleepCnt.Add(1)
}

func (e *HostEngine) broadcastSchedule() {
	buf := make([]byte, MaxPktLen)
	n, err := e.schedule.Encode(buf, e.cfg.SchedCompress)
	if err != nil {
		// A policy-produced schedule that doesn't fit is a programmer
		// error in the policy, not a runtime condition the protocol can
		// recover from mid-round; fall back to an empty, no-slot
		// schedule so the round still completes.
		if e.warn.allow("bad_schedule_encode") {
			e.logger.Warning().Log("elwb: policy produced an unencodable schedule, broadcasting empty")
		}
		e.schedule = Schedule{Time: e.schedule.Time, Period: e.schedule.Period}
		n, _ = e.schedule.Encode(buf, false)
	}
	e.transport.Send(e.cfg.HostID, buf, n, e.cfg.TxCntSched, true, false)
	e.clock.WaitUntilHF(e.clock.NowHF() + e.cfg.TSched)
	e.transport.Stop()
}

// runSlots walks the schedule's slot list, receiving from whichever source
// owns each slot (or sending, for slot 0, the host's own queued traffic),
// then services the contention slot if the schedule carries one (§4.7
// step 3).
func (e *HostEngine) runSlots() {
	slotDur := e.cfg.TCont
	if e.schedule.Sack {
		slotDur = e.cfg.TData
	}
	t := e.anchorHF + e.cfg.TSched + e.cfg.TGap

	for _, owner := range e.schedule.Slots {
		e.clock.WaitUntilHF(t)
		if owner == e.cfg.HostID {
			e.sendHostSlot()
		} else {
			e.recvDataSlot(owner)
		}
		t += slotDur + e.cfg.TGap
	}

	if e.schedule.Cont {
		e.clock.WaitUntilHF(t)
		e.recvContentionSlot()
	}
}

func (e *HostEngine) sendHostSlot() {
	f, err := e.outQueue.Get()
	var payload []byte
	if err == nil {
		payload = f.Bytes()
	}
	e.transport.Send(e.cfg.HostID, payload, len(payload), e.cfg.TxCntData, false, false)
	e.clock.WaitUntilHF(e.clock.NowHF() + e.cfg.TData)
	e.transport.Stop()
	if err == nil {
		e.stats.pckCnt.Add(1)
	}
}

func (e *HostEngine) recvDataSlot(owner uint16) {
	e.transport.Recv(0, e.cfg.TxCntData, false, false)
	e.clock.WaitUntilHF(e.clock.NowHF() + e.cfg.TData)
	e.transport.Stop()
	res := e.transport.Result()
	if res.NRx == 0 {
		return
	}
	e.stats.pckCnt.Add(1)
	e.served = append(e.served, owner)
	e.deliver(owner, res.Payload[:res.PayloadLen])
}

// recvContentionSlot listens for a stream request, handing anything
// received to the policy immediately (so it can already be reflected in
// PrepareSack's decision for this same round) and to e.requests for the
// next Compute call.
func (e *HostEngine) recvContentionSlot() {
	e.transport.Recv(0, e.cfg.TxCntSched, false, false)
	e.clock.WaitUntilHF(e.clock.NowHF() + e.cfg.TCont)
	e.transport.Stop()
	res := e.transport.Result()
	if res.NRx == 0 {
		return
	}
	// The contention slot is an anonymous flood: in the 1-byte request
	// form the host has no way to attribute a sender (see StreamRequest's
	// doc comment), so NodeID comes through only via the 2-byte
	// first-ever form that embeds it.
	req, ok := DecodeStreamRequest(0, res.Payload[:res.PayloadLen])
	if !ok {
		if e.warn.allow("bad_request") {
			e.logger.Warning().Log("elwb: malformed stream request")
		}
		return
	}
	if err := e.policy.OnRequest(req); err != nil {
		e.stats.rxStreamDrop.Add(1)
		if e.warn.allow("stream_table_full") {
			e.logger.Warning().Int("node", int(req.NodeID)).Log("elwb: stream request dropped, table full")
		}
		return
	}
	e.requests = append(e.requests, req)
}

func (e *HostEngine) broadcastSecondSchedule(period uint16) {
	b := EncodeSecondSchedule(period)
	e.transport.Send(e.cfg.HostID, b[:], len(b), e.cfg.TxCntSched, false, false)
	e.clock.WaitUntilHF(e.clock.NowHF() + e.cfg.TSched)
	e.transport.Stop()
}

// Send enqueues payload for transmission in the host's own slot 0.
func (e *HostEngine) Send(payload []byte) error {
	return e.send(payload)
}

// Recv returns the oldest pending inbound frame along with its sender. ok
// is false if nothing is pending.
func (e *HostEngine) Recv() (sender uint16, f Frame, ok bool) {
	return e.recv()
}

// RcvBufferCount returns the number of frames pending in the inbound queue.
func (e *HostEngine) RcvBufferCount() int { return e.inCount() }

// SendBufferCount returns the number of frames pending in the outbound
// queue.
func (e *HostEngine) SendBufferCount() int { return e.outQueue.Count() }

// Stats returns a snapshot of this engine's counters. The host has no sync
// FSM of its own (it is always the time reference), so BootstrapCnt and
// UnsyncedCnt are always zero.
func (e *HostEngine) Stats() Stats { return e.stats.snapshot(nil) }

// GetTime reports the global time, in seconds, as of the current round's
// anchor (§6 get_time(out_rx_timestamp)); the host is always its own time
// reference.
func (e *HostEngine) GetTime() (rxTimestamp time.Duration, globalSeconds uint32) {
	return e.anchorHF, e.globalTime
}

// GetTimestampUS reports the current time in microseconds, extrapolated
// from the current round's anchor (§6).
func (e *HostEngine) GetTimestampUS() uint64 {
	if !e.haveAnchor {
		return uint64(e.globalTime) * 1e6
	}
	elapsed := e.clock.NowHF() - e.anchorHF
	return uint64(e.globalTime)*1e6 + uint64(elapsed.Microseconds())
}
