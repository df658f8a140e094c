package scheduler

import "github.com/arvind-india/elwb/elwb"

// Static is the constant-period policy: the period never changes
// (SchedPeriodIdle throughout) and every active stream gets exactly one
// data slot per round, up to MaxDataSlots (§4.8 "Static").
type Static struct {
	cfg   elwb.Config
	table *Table
}

// NewStatic constructs a Static policy.
func NewStatic() *Static { return &Static{} }

func (p *Static) Init(cfg elwb.Config) {
	p.cfg = cfg
	p.table = NewTable(elwb.MaxNStreams)
}

func (p *Static) OnRequest(req elwb.StreamRequest) error {
	return p.table.Admit(req.NodeID, req.Outstanding)
}

func (p *Static) Compute(in elwb.RoundInput) elwb.Schedule {
	p.table.Activate()
	active := p.table.Active()
	if len(active) > elwb.MaxDataSlots {
		active = active[:elwb.MaxDataSlots]
	}
	return elwb.Schedule{
		Time:   in.GlobalTime,
		Period: elwb.DurationToPeriod(p.cfg.SchedPeriodIdle),
		Slots:  active,
	}
}

// PrepareSack is a no-op for Static: the policy never issues a second
// schedule.
func (p *Static) PrepareSack(elwb.RoundInput) (period uint16, send bool) { return 0, false }
