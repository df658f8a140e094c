package scheduler

import "github.com/arvind-india/elwb/elwb"

// roundKind is the eLWB dynamic policy's current round type.
type roundKind int

const (
	kindData    roundKind = iota // SACK set, paced at T_DATA
	kindRequest                  // short, follows detected contention
)

// Dynamic is the load-adaptive eLWB policy (§4.8 "eLWB dynamic"): streams
// carry an outstanding-count, the policy aggregates demand into per-node
// data-slot allocations bounded by MaxDataSlots (round-robin once demand
// exceeds that), and the round-type bit alternates between short request
// rounds (following detected contention) and T_DATA-paced data rounds. A
// DACK bit marks idle-anchor rounds — ones with no demand at all.
type Dynamic struct {
	cfg   elwb.Config
	table *Table

	kind        roundKind
	contentionSeen bool
	rotation    int // round-robin cursor into the demand list, across rounds
}

// NewDynamic constructs a Dynamic (eLWB) policy.
func NewDynamic() *Dynamic { return &Dynamic{} }

func (p *Dynamic) Init(cfg elwb.Config) {
	p.cfg = cfg
	p.table = NewTable(elwb.MaxNStreams)
	p.kind = kindData
}

// OnRequest admits req and flags that contention was observed this round,
// which Compute uses to decide whether the next round should be a request
// round.
func (p *Dynamic) OnRequest(req elwb.StreamRequest) error {
	if err := p.table.Admit(req.NodeID, req.Outstanding); err != nil {
		return err
	}
	p.contentionSeen = true
	return nil
}

// Compute allocates slots in node-id order to streams with outstanding
// demand, round-robining the cursor across rounds once demand exceeds
// MaxDataSlots so every backlogged stream eventually gets served (§4.8
// "allocation is round-robin across remaining demand").
func (p *Dynamic) Compute(in elwb.RoundInput) elwb.Schedule {
	for _, id := range in.Served {
		if i, ok := p.table.indexOf(id); ok {
			p.table.entries[i].Outstanding = 0
			p.table.entries[i].State = Inactive
		}
	}

	p.table.Activate()
	entries := p.table.Entries()

	var demand []uint16
	for _, e := range entries {
		if e.State == Active && e.Outstanding > 0 {
			demand = append(demand, e.NodeID)
		}
	}

	if len(demand) == 0 {
		p.kind = kindData
		return elwb.Schedule{
			Time:   in.GlobalTime,
			Period: elwb.DurationToPeriod(p.cfg.SchedPeriodIdle),
			Cont:   true,
			Dack:   true,
		}
	}

	if p.contentionSeen && p.kind == kindData {
		p.kind = kindRequest
		p.contentionSeen = false
		return elwb.Schedule{
			Time:   in.GlobalTime,
			Period: elwb.DurationToPeriod(p.cfg.TCont),
			Slots:  p.table.Known(),
		}
	}

	p.kind = kindData
	slots := rotateAllocate(demand, elwb.MaxDataSlots, &p.rotation)
	return elwb.Schedule{
		Time:   in.GlobalTime,
		Period: elwb.DurationToPeriod(p.cfg.TData),
		Slots:  slots,
		Sack:   true,
	}
}

// rotateAllocate returns up to max node ids from demand, starting at
// *cursor and wrapping, advancing *cursor past what it returned so the
// next call continues where this one left off (round-robin over backlog
// that exceeds one round's slot budget).
func rotateAllocate(demand []uint16, max int, cursor *int) []uint16 {
	if len(demand) <= max {
		*cursor = 0
		return demand
	}
	out := make([]uint16, 0, max)
	n := len(demand)
	start := *cursor % n
	for i := 0; i < max; i++ {
		out = append(out, demand[(start+i)%n])
	}
	*cursor = (start + max) % n
	return out
}

// PrepareSack reports the period for the second-schedule frame following
// the idle round's contention slot: 0 ("no change") unless a request
// arrived, in which case the next round is already a recomputed request
// round and that period is surfaced here (§4.7 step 4).
func (p *Dynamic) PrepareSack(elwb.RoundInput) (period uint16, send bool) {
	if !p.contentionSeen {
		return 0, false
	}
	return elwb.DurationToPeriod(p.cfg.TCont), true
}
