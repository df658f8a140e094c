package elwb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncFSMTransitionTable(t *testing.T) {
	f := NewSyncFSM(time.Millisecond, 2*time.Millisecond, 4*time.Millisecond)
	assert.Equal(t, Bootstrap, f.State())

	assert.Equal(t, Synced, f.Step(EventRcvd))
	assert.Equal(t, Unsynced, f.Step(EventMissed))
	assert.Equal(t, Unsynced2, f.Step(EventMissed))
	assert.Equal(t, Bootstrap, f.Step(EventMissed))
	assert.Equal(t, Bootstrap, f.Step(EventMissed))

	assert.Equal(t, uint32(1), f.UnsyncedCount())
	assert.Equal(t, uint32(1), f.BootstrapCount())
}

func TestSyncFSMRcvdAlwaysSyncs(t *testing.T) {
	f := NewSyncFSM(time.Millisecond, 2*time.Millisecond, 4*time.Millisecond)
	f.Step(EventMissed)
	f.Step(EventMissed)
	assert.Equal(t, Unsynced2, f.State())
	assert.Equal(t, Synced, f.Step(EventRcvd))
}

func TestSyncFSMGuardIntervalPerState(t *testing.T) {
	f := NewSyncFSM(time.Millisecond, 2*time.Millisecond, 4*time.Millisecond)
	assert.Equal(t, time.Millisecond, f.GuardInterval()) // BOOTSTRAP uses base

	f.Step(EventRcvd)
	assert.Equal(t, time.Millisecond, f.GuardInterval()) // SYNCED

	f.Step(EventMissed)
	assert.Equal(t, 2*time.Millisecond, f.GuardInterval()) // UNSYNCED

	f.Step(EventMissed)
	assert.Equal(t, 4*time.Millisecond, f.GuardInterval()) // UNSYNCED2
}

func TestSyncStateString(t *testing.T) {
	assert.Equal(t, "BOOTSTRAP", Bootstrap.String())
	assert.Equal(t, "SYNCED", Synced.String())
	assert.Equal(t, "UNSYNCED", Unsynced.String())
	assert.Equal(t, "UNSYNCED2", Unsynced2.String())
}
