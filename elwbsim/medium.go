// Package elwbsim is an in-process stand-in for the Glossy flooding layer
// that every slot in the round engine is built on. The protocol treats
// Glossy as opaque (the engine only ever starts a slot, waits, stops it,
// and reads back SlotResult), so a simulated medium only needs to deliver
// whatever one node Sends to every other node that was Recving during the
// same slot window — good enough for exercising a host and several
// sources in one process, without a radio (tests, cmd/elwb-trafficgen).
package elwbsim

import (
	"sync"

	"github.com/arvind-india/elwb/elwb"
)

// Medium is a shared broadcast point for one elwb network: every
// Transport built from the same Medium sees the most recent flood any
// other Transport sent.
type Medium struct {
	mu   sync.Mutex
	seq  uint64
	from uint16
	buf  []byte
}

// NewMedium returns an empty, ready-to-use Medium.
func NewMedium() *Medium {
	return &Medium{}
}

// Transport is one node's view of a Medium, implementing
// elwb.SlotTransport. A Transport is not safe for concurrent use by more
// than one goroutine, matching the "one slot at a time" contract the
// engine already assumes.
type Transport struct {
	id  uint16
	med *Medium
	clk elwb.Clock

	mode    txMode
	armedAt uint64
	sync    bool
	result  elwb.SlotResult
}

type txMode int

const (
	modeIdle txMode = iota
	modeSend
	modeRecv
)

// NewTransport returns a Transport for node id, broadcasting over med and
// stamping time references from clk (the same Clock the node's
// Application was constructed with, so TRef values line up).
func NewTransport(id uint16, med *Medium, clk elwb.Clock) *Transport {
	return &Transport{id: id, med: med, clk: clk}
}

func (t *Transport) Send(initiatorID uint16, buf []byte, n int, nTx int, withSync, withRFCal bool) {
	t.mode = modeSend
	payload := make([]byte, n)
	copy(payload, buf[:n])

	t.med.mu.Lock()
	t.med.seq++
	t.med.from = initiatorID
	t.med.buf = payload
	t.med.mu.Unlock()
}

func (t *Transport) Recv(expectedLen int, nTx int, withSync, withRFCal bool) {
	t.mode = modeRecv
	t.sync = withSync

	t.med.mu.Lock()
	t.armedAt = t.med.seq
	t.med.mu.Unlock()
}

// Stop settles the current slot: a Send leaves no reception of its own
// (the initiator doesn't hear itself), and a Recv picks up whatever was
// broadcast since the matching Recv call, if anything.
func (t *Transport) Stop() {
	switch t.mode {
	case modeSend:
		t.result = elwb.SlotResult{}
	case modeRecv:
		t.med.mu.Lock()
		seq, from, buf := t.med.seq, t.med.from, t.med.buf
		t.med.mu.Unlock()

		if seq == t.armedAt || from == t.id {
			t.result = elwb.SlotResult{}
			break
		}
		res := elwb.SlotResult{
			NRx:        1,
			NRxStarted: 1,
			PayloadLen: len(buf),
			Payload:    buf,
		}
		if t.sync {
			res.TRefUpdated = true
			res.TRef = t.clk.NowHF()
		}
		t.result = res
	}
	t.mode = modeIdle
}

func (t *Transport) Result() elwb.SlotResult { return t.result }
