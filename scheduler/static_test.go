package scheduler

import (
	"testing"

	"github.com/arvind-india/elwb/elwb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSchedulesEveryActiveStreamEachRound(t *testing.T) {
	cfg := elwb.NewConfig(elwb.WithClock(elwb.NewFakeClock(1e9, 1e9)))
	p := NewStatic()
	p.Init(cfg)

	require.NoError(t, p.OnRequest(elwb.StreamRequest{NodeID: 3, Outstanding: 1}))
	require.NoError(t, p.OnRequest(elwb.StreamRequest{NodeID: 1, Outstanding: 1}))

	sched := p.Compute(elwb.RoundInput{GlobalTime: 1})
	assert.Equal(t, []uint16{1, 3}, sched.Slots)
	assert.Equal(t, elwb.DurationToPeriod(cfg.SchedPeriodIdle), sched.Period)

	// The period never changes on a second round.
	sched2 := p.Compute(elwb.RoundInput{GlobalTime: 2})
	assert.Equal(t, sched.Period, sched2.Period)
}

func TestStaticPrepareSackNeverSends(t *testing.T) {
	p := NewStatic()
	p.Init(elwb.NewConfig())
	_, send := p.PrepareSack(elwb.RoundInput{})
	assert.False(t, send)
}

func TestStaticCapsAtMaxDataSlots(t *testing.T) {
	cfg := elwb.NewConfig()
	p := NewStatic()
	p.Init(cfg)
	// The default table holds MaxNStreams entries, which equals
	// MaxDataSlots; a larger table lets the streams outnumber the slots.
	p.table = NewTable(elwb.MaxDataSlots + 5)
	for i := 0; i < elwb.MaxDataSlots+5; i++ {
		require.NoError(t, p.OnRequest(elwb.StreamRequest{NodeID: uint16(i + 1), Outstanding: 1}))
	}
	sched := p.Compute(elwb.RoundInput{GlobalTime: 1})
	assert.Len(t, sched.Slots, elwb.MaxDataSlots)
}
