package elwb

// RoundInput is what a Policy needs to compute the next schedule: the
// host's current global time, whatever stream requests arrived during the
// previous round's contention or request slot (nil if none), and the node
// ids that successfully transmitted in a round's data slots: for Compute,
// those of the previous round; for the PrepareSack call right after a
// round, those of that round.
type RoundInput struct {
	GlobalTime uint32
	Requests   []StreamRequest
	Served     []uint16
}

// Policy is the host scheduler's pluggable slot-allocation strategy (C8).
// All three of this package's scheduling behaviours — constant-period
// static allocation, acknowledgment-coupled AE, and load-adaptive eLWB —
// implement this same small interface, letting the host round engine stay
// entirely agnostic of how slots get assigned.
type Policy interface {
	// Init prepares policy state from cfg; called once before the first
	// round.
	Init(cfg Config)

	// Compute returns the schedule to broadcast at the start of the
	// upcoming round, given in.
	Compute(in RoundInput) Schedule

	// OnRequest records a single stream request observed in a contention
	// or request slot, returning ErrStreamTableFull if admitting it would
	// exceed MaxNStreams.
	OnRequest(req StreamRequest) error

	// PrepareSack is called after a round that had a contention slot or
	// was a SACK data round, and reports whether a second schedule should
	// be sent and, if so, the period it should carry (0 meaning "no
	// change").
	PrepareSack(in RoundInput) (period uint16, send bool)
}
