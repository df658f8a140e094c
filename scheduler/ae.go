package scheduler

import "github.com/arvind-india/elwb/elwb"

// aePhase is one of the AE policy's three round types (§4.8 "AE").
type aePhase int

const (
	aeIdle aePhase = iota
	aeRequest
	aeData
)

// AE is the acknowledgement-coupled policy: idle rounds carry only a
// contention slot; observed contention promotes to a request round (one
// slot per known stream, short period); the request round's responses
// promote to a data round (one slot per active stream, SACK set); and the
// data round's completion demotes served streams back to idle, realigning
// the period to the base cadence.
type AE struct {
	cfg   elwb.Config
	table *Table

	phase aePhase

	// unknownServedCnt counts data received, in a SACK round, attributed
	// to a node no longer in the stream table. The original firmware logs
	// this ("data received from unknown stream") but proceeds regardless;
	// this policy preserves that behaviour and surfaces it as a counter
	// rather than an error, since the original's intent here was never
	// made clear.
	unknownServedCnt uint64
}

// NewAE constructs an AE policy.
func NewAE() *AE { return &AE{} }

func (p *AE) Init(cfg elwb.Config) {
	p.cfg = cfg
	p.table = NewTable(elwb.MaxNStreams)
	p.phase = aeIdle
}

// OnRequest admits req into the stream table. A request observed during an
// idle round is itself the contention signal that promotes idle->request
// (§4.8: "on observing contention activity, transition to request").
func (p *AE) OnRequest(req elwb.StreamRequest) error {
	if err := p.table.Admit(req.NodeID, req.Outstanding); err != nil {
		return err
	}
	if p.phase == aeIdle {
		p.phase = aeRequest
	}
	return nil
}

// Compute returns the next schedule for whichever phase the policy is
// currently in. It advances the phase itself only on the request->data
// edge; idle->request happens in OnRequest and data->idle in PrepareSack,
// both called by the host engine at the end of the round that observed the
// triggering condition.
func (p *AE) Compute(in elwb.RoundInput) elwb.Schedule {
	switch p.phase {
	case aeRequest:
		p.table.Activate()
		known := p.table.Known()
		p.phase = aeData
		return elwb.Schedule{
			Time:   in.GlobalTime,
			Period: elwb.DurationToPeriod(p.cfg.TReqRound),
			Slots:  known,
			Sack:   false,
		}
	case aeData:
		active := p.table.Active()
		if len(active) > elwb.MaxDataSlots {
			active = active[:elwb.MaxDataSlots]
		}
		return elwb.Schedule{
			Time:   in.GlobalTime,
			Period: elwb.DurationToPeriod(p.cfg.TData),
			Slots:  active,
			Sack:   true,
		}
	default: // aeIdle
		return elwb.Schedule{
			Time:   in.GlobalTime,
			Period: elwb.DurationToPeriod(p.cfg.SchedPeriodIdle),
			Cont:   true,
		}
	}
}

// PrepareSack implements the data->idle edge: every stream that
// transmitted during the just-completed data round (in.Served) is
// deactivated, and the next schedule realigns to
// SchedPeriodIdle - TReqRound - 1 (§4.8), which the caller must fold into
// the period it passes to the transport's second-schedule frame.
func (p *AE) PrepareSack(in elwb.RoundInput) (period uint16, send bool) {
	if p.phase != aeData {
		return 0, false
	}
	for _, id := range in.Served {
		if !p.table.Deactivate(id) {
			p.unknownServedCnt++
			if p.cfg.Logger != nil {
				p.cfg.Logger.Warning().Int("node", int(id)).Log("elwb: data received from unknown stream")
			}
		}
	}
	p.phase = aeIdle

	// Realign to the base cadence: SCHED_PERIOD_IDLE - T_REQ_ROUND - 1
	// tick, computed in period-scale units per §4.8/§4.3 SUPPLEMENTED
	// FEATURES, so the "-1" matches the original firmware's single-tick
	// arithmetic rather than an arbitrary duration.
	idleUnits := int(elwb.DurationToPeriod(p.cfg.SchedPeriodIdle))
	reqUnits := int(elwb.DurationToPeriod(p.cfg.TReqRound))
	realign := idleUnits - reqUnits - 1
	if realign < 0 {
		realign = 0
	}
	return uint16(realign), true
}

// UnknownServedCount returns the number of times PrepareSack observed a
// served node id with no corresponding stream-table entry.
func (p *AE) UnknownServedCount() uint64 { return p.unknownServedCnt }
