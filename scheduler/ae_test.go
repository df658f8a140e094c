package scheduler

import (
	"testing"

	"github.com/arvind-india/elwb/elwb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAEIdleRequestDataCycle(t *testing.T) {
	cfg := elwb.NewConfig()
	p := NewAE()
	p.Init(cfg)

	idle := p.Compute(elwb.RoundInput{GlobalTime: 1})
	assert.True(t, idle.Cont)
	assert.Equal(t, elwb.DurationToPeriod(cfg.SchedPeriodIdle), idle.Period)

	require.NoError(t, p.OnRequest(elwb.StreamRequest{NodeID: 4, Outstanding: 1}))

	reqRound := p.Compute(elwb.RoundInput{GlobalTime: 2})
	assert.Equal(t, []uint16{4}, reqRound.Slots)
	assert.Equal(t, elwb.DurationToPeriod(cfg.TReqRound), reqRound.Period)
	assert.False(t, reqRound.Sack)

	dataRound := p.Compute(elwb.RoundInput{GlobalTime: 3})
	assert.Equal(t, []uint16{4}, dataRound.Slots)
	assert.True(t, dataRound.Sack)
	assert.Equal(t, elwb.DurationToPeriod(cfg.TData), dataRound.Period)
}

func TestAEPrepareSackDeactivatesServedStreamsAndRealigns(t *testing.T) {
	cfg := elwb.NewConfig()
	p := NewAE()
	p.Init(cfg)
	require.NoError(t, p.OnRequest(elwb.StreamRequest{NodeID: 4, Outstanding: 1}))
	p.Compute(elwb.RoundInput{GlobalTime: 1}) // request round
	p.Compute(elwb.RoundInput{GlobalTime: 2}) // data round, phase -> aeData

	period, send := p.PrepareSack(elwb.RoundInput{Served: []uint16{4}})
	require.True(t, send)

	idleUnits := int(elwb.DurationToPeriod(cfg.SchedPeriodIdle))
	reqUnits := int(elwb.DurationToPeriod(cfg.TReqRound))
	assert.Equal(t, uint16(idleUnits-reqUnits-1), period)
	assert.Equal(t, uint64(0), p.UnknownServedCount())

	// Deactivated, so the following round is idle again.
	next := p.Compute(elwb.RoundInput{GlobalTime: 3})
	assert.True(t, next.Cont)
}

func TestAEPrepareSackCountsUnknownServedNode(t *testing.T) {
	cfg := elwb.NewConfig()
	p := NewAE()
	p.Init(cfg)
	require.NoError(t, p.OnRequest(elwb.StreamRequest{NodeID: 4, Outstanding: 1}))
	p.Compute(elwb.RoundInput{GlobalTime: 1})
	p.Compute(elwb.RoundInput{GlobalTime: 2})

	_, send := p.PrepareSack(elwb.RoundInput{Served: []uint16{4, 99}})
	assert.True(t, send)
	assert.Equal(t, uint64(1), p.UnknownServedCount())
}

func TestAEPrepareSackNoopOutsideDataPhase(t *testing.T) {
	p := NewAE()
	p.Init(elwb.NewConfig())
	_, send := p.PrepareSack(elwb.RoundInput{})
	assert.False(t, send)
}
