package scheduler

import (
	"testing"

	"github.com/arvind-india/elwb/elwb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAdmitOrdersByNodeID(t *testing.T) {
	tbl := NewTable(4)
	require.NoError(t, tbl.Admit(5, 1))
	require.NoError(t, tbl.Admit(2, 1))
	require.NoError(t, tbl.Admit(9, 1))

	var ids []uint16
	for _, e := range tbl.Entries() {
		ids = append(ids, e.NodeID)
	}
	assert.Equal(t, []uint16{2, 5, 9}, ids)
}

func TestTableAdmitFullRejectsNewNode(t *testing.T) {
	tbl := NewTable(1)
	require.NoError(t, tbl.Admit(1, 1))
	assert.ErrorIs(t, tbl.Admit(2, 1), elwb.ErrStreamTableFull)
	// Re-admitting a known node must still succeed even at capacity.
	assert.NoError(t, tbl.Admit(1, 2))
}

func TestTableActivateOnlyPromotesPending(t *testing.T) {
	tbl := NewTable(4)
	require.NoError(t, tbl.Admit(1, 1))
	tbl.Activate()
	assert.Equal(t, []uint16{1}, tbl.Active())

	tbl.Deactivate(1)
	assert.Empty(t, tbl.Active())
	// Deactivated entries stay Pending==false and Inactive until re-admitted.
	require.NoError(t, tbl.Admit(1, 1))
	tbl.Activate()
	assert.Equal(t, []uint16{1}, tbl.Active())
}

func TestTableDeactivateReportsUnknownNode(t *testing.T) {
	tbl := NewTable(4)
	require.NoError(t, tbl.Admit(1, 1))
	assert.True(t, tbl.Deactivate(1))
	assert.False(t, tbl.Deactivate(42))
}

func TestTableKnownIncludesInactiveEntries(t *testing.T) {
	tbl := NewTable(4)
	require.NoError(t, tbl.Admit(1, 1))
	require.NoError(t, tbl.Admit(2, 1))
	tbl.Activate()
	tbl.Deactivate(1)
	assert.Equal(t, []uint16{1, 2}, tbl.Known())
	assert.Equal(t, []uint16{2}, tbl.Active())
}
