package elwb

import "sync/atomic"

// Stats is the read-only snapshot exposed by Application.Stats. Per the
// concurrency model, the round engine is its sole writer; readers may
// snapshot but never mutate it, so every field is updated through an
// atomic and Stats itself is returned by value.
type Stats struct {
	PckCnt       uint64 // data packets successfully relayed through this node
	RxBufDrop    uint64 // frames dropped because the inbound queue was full
	TxBufDrop    uint64 // frames dropped because the outbound queue was full
	BootstrapCnt uint32 // number of times the sync FSM entered BOOTSTRAP
	SleepCnt     uint64 // number of inter-round sleeps taken
	UnsyncedCnt  uint32 // number of SYNCED -> UNSYNCED transitions
	SrqCnt       uint64 // host: number of request rounds triggered by contention
	RxStreamDrop uint64 // host/scheduler: requests dropped (stream table full or unknown node overflow)
}

// statCounters holds the live atomics backing a Stats snapshot.
type statCounters struct {
	pckCnt       atomic.Uint64
	rxBufDrop    atomic.Uint64
	txBufDrop    atomic.Uint64
	sleepCnt     atomic.Uint64
	srqCnt       atomic.Uint64
	rxStreamDrop atomic.Uint64
}

// snapshot reads fsm's transition counters alongside the live atomics to
// produce an immutable Stats value.
func (c *statCounters) snapshot(fsm *SyncFSM) Stats {
	s := Stats{
		PckCnt:    c.pckCnt.Load(),
		RxBufDrop: c.rxBufDrop.Load(),
		TxBufDrop: c.txBufDrop.Load(),
		SleepCnt:  c.sleepCnt.Load(),
		SrqCnt:    c.srqCnt.Load(),
		RxStreamDrop: c.rxStreamDrop.Load(),
	}
	if fsm != nil {
		s.BootstrapCnt = fsm.BootstrapCount()
		s.UnsyncedCnt = fsm.UnsyncedCount()
	}
	return s
}
