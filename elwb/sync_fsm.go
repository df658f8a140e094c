package elwb

import (
	"sync/atomic"
	"time"
)

// SyncState is one of the four states a source cycles through as it
// receives, or misses, schedules. It mirrors the shape of the teacher's
// LoopState: a small integer enum with a String method and an atomically
// guarded holder, adapted from a lock-free event-loop state machine to this
// package's simpler two-event (RCVD/MISSED) transition table.
type SyncState int32

const (
	Bootstrap SyncState = iota
	Synced
	Unsynced
	Unsynced2
)

func (s SyncState) String() string {
	switch s {
	case Bootstrap:
		return "BOOTSTRAP"
	case Synced:
		return "SYNCED"
	case Unsynced:
		return "UNSYNCED"
	case Unsynced2:
		return "UNSYNCED2"
	default:
		return "UNKNOWN"
	}
}

// SyncEvent drives SyncFSM transitions.
type SyncEvent int

const (
	EventRcvd SyncEvent = iota
	EventMissed
)

// syncTransitions implements the table in §4.5 exactly: RCVD always lands
// in SYNCED; MISSED walks SYNCED -> UNSYNCED -> UNSYNCED2 -> BOOTSTRAP,
// looping BOOTSTRAP back to itself.
var syncTransitions = [4][2]SyncState{
	Bootstrap: {EventRcvd: Synced, EventMissed: Bootstrap},
	Synced:    {EventRcvd: Synced, EventMissed: Unsynced},
	Unsynced:  {EventRcvd: Synced, EventMissed: Unsynced2},
	Unsynced2: {EventRcvd: Synced, EventMissed: Bootstrap},
}

// SyncFSM is the per-source state machine of §4.5. It owns the guard-time
// selection and the resync/bootstrap counters read by Stats.
type SyncFSM struct {
	state        atomic.Int32
	guardBase    time.Duration
	guard1       time.Duration
	guard2       time.Duration
	unsyncedCnt  atomic.Uint32
	bootstrapCnt atomic.Uint32
}

// NewSyncFSM constructs a SyncFSM starting in BOOTSTRAP, with the guard
// intervals for SYNCED, UNSYNCED and UNSYNCED2 given as its arguments.
func NewSyncFSM(guardSynced, guardUnsynced1, guardUnsynced2 time.Duration) *SyncFSM {
	f := &SyncFSM{guardBase: guardSynced, guard1: guardUnsynced1, guard2: guardUnsynced2}
	f.state.Store(int32(Bootstrap))
	return f
}

// State returns the current state.
func (f *SyncFSM) State() SyncState { return SyncState(f.state.Load()) }

// Step applies ev to the state machine per the transition table and
// returns the new state. Transitions into UNSYNCED increment UnsyncedCount;
// transitions into BOOTSTRAP increment BootstrapCount and reset the guard
// selection back to its base, per §4.5 ("resets internal timing").
func (f *SyncFSM) Step(ev SyncEvent) SyncState {
	from := f.State()
	to := syncTransitions[from][ev]
	f.state.Store(int32(to))
	if to == Unsynced && from != Unsynced {
		f.unsyncedCnt.Add(1)
	}
	if to == Bootstrap && from != Bootstrap {
		f.bootstrapCnt.Add(1)
	}
	return to
}

// GuardInterval returns the guard time associated with the current state.
// BOOTSTRAP has no receive guard of its own (the bootstrap loop instead
// runs back-to-back unknown-initiator receives), so it reports the same
// base guard as SYNCED.
func (f *SyncFSM) GuardInterval() time.Duration {
	switch f.State() {
	case Unsynced:
		return f.guard1
	case Unsynced2:
		return f.guard2
	default:
		return f.guardBase
	}
}

// UnsyncedCount and BootstrapCount report the transition counters surfaced
// through Stats.
func (f *SyncFSM) UnsyncedCount() uint32  { return f.unsyncedCnt.Load() }
func (f *SyncFSM) BootstrapCount() uint32 { return f.bootstrapCnt.Load() }
