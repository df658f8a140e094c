// Package scheduler implements the host's pluggable slot-allocation
// policies (static, AE, eLWB dynamic), each satisfying elwb.Policy.
package scheduler

import (
	"sort"

	"github.com/arvind-india/elwb/elwb"
)

// State is a stream entry's lifecycle stage, per the data model's
// StreamEntry.
type State int

const (
	Inactive State = iota
	Pending
	Active
	Waiting
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Pending:
		return "pending"
	case Active:
		return "active"
	case Waiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// Entry is one node's admission record in the host's stream table.
type Entry struct {
	NodeID      uint16
	Outstanding uint8
	LastServed  uint32
	State       State
}

// Table is the host's stream table: an ordered-by-node-id list of Entry
// values, per the data model ("ordered list by node_id for deterministic
// slot ordering"). Entries persist from first request until explicitly
// removed by the owning policy; they are never silently garbage collected.
type Table struct {
	entries []Entry
	max     int
}

// NewTable constructs an empty Table bounded at max entries.
func NewTable(max int) *Table {
	return &Table{max: max}
}

// indexOf returns the slice index of nodeID's entry, and whether it exists.
func (t *Table) indexOf(nodeID uint16) (int, bool) {
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].NodeID >= nodeID })
	if i < len(t.entries) && t.entries[i].NodeID == nodeID {
		return i, true
	}
	return i, false
}

// Admit records a request from nodeID, reactivating an inactive entry or
// inserting a new one in node-id order. It returns elwb.ErrStreamTableFull
// if nodeID is new and the table is already at capacity.
func (t *Table) Admit(nodeID uint16, outstanding uint8) error {
	i, ok := t.indexOf(nodeID)
	if ok {
		t.entries[i].Outstanding = outstanding
		if t.entries[i].State == Inactive {
			t.entries[i].State = Pending
		}
		return nil
	}
	if len(t.entries) >= t.max {
		return elwb.ErrStreamTableFull
	}
	t.entries = append(t.entries, Entry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = Entry{NodeID: nodeID, Outstanding: outstanding, State: Pending}
	return nil
}

// Activate promotes every Pending entry to Active, the request->data
// transition in the AE and eLWB policies.
func (t *Table) Activate() {
	for i := range t.entries {
		if t.entries[i].State == Pending {
			t.entries[i].State = Active
		}
	}
}

// Deactivate marks nodeID's entry Inactive (served, no longer scheduled),
// leaving it in the table per the data model's "retained, not removed".
// found is false if nodeID has no entry (the table changed between when
// the round's slot list was computed and when it was served).
func (t *Table) Deactivate(nodeID uint16) (found bool) {
	if i, ok := t.indexOf(nodeID); ok {
		t.entries[i].State = Inactive
		return true
	}
	return false
}

// Active returns the node ids currently Active, in table (node-id) order.
func (t *Table) Active() []uint16 {
	var out []uint16
	for _, e := range t.entries {
		if e.State == Active {
			out = append(out, e.NodeID)
		}
	}
	return out
}

// Known returns every node id ever admitted, active or not, in table order
// — used by the AE request round, which allocates one slot per known
// stream regardless of activation state.
func (t *Table) Known() []uint16 {
	out := make([]uint16, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.NodeID
	}
	return out
}

// Len returns the number of entries currently tracked.
func (t *Table) Len() int { return len(t.entries) }

// Entries exposes a read-only view of the table, in node-id order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
