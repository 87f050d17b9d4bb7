package audit

import (
	"sort"
	"time"

	"github.com/yawlrun/yawlrun/net"
)

// ElementSnapshot is the reconstructed view of one element at a point in
// time, folded from the key-event stream.
type ElementSnapshot struct {
	ElementKind ElementKind
	ElementID   net.ID
	WorkflowID  net.ID
	TaskName    string
	State       string
	CanceledBy  *net.ID
	LastEventAt time.Time
}

// WorkflowStateAtTime reconstructs every element's state as of timestamp by
// folding key-events whose Timestamp <= timestamp, optionally filtered to
// one workflow. Later events for the same ElementID overwrite earlier ones,
// so the fold reconstructs the same state the persisted snapshot had at T.
func WorkflowStateAtTime(
	events []*KeyEvent,
	workflowID *net.ID,
	timestamp time.Time,
) map[net.ID]*ElementSnapshot {
	ordered := sortedByTime(events)
	result := make(map[net.ID]*ElementSnapshot)
	for _, ev := range ordered {
		if ev.Timestamp.After(timestamp) {
			continue
		}
		if workflowID != nil && ev.WorkflowID != *workflowID {
			continue
		}
		snap := result[ev.ElementID]
		if snap == nil {
			snap = &ElementSnapshot{
				ElementKind: ev.ElementKind,
				ElementID:   ev.ElementID,
				WorkflowID:  ev.WorkflowID,
				TaskName:    ev.TaskName,
			}
			result[ev.ElementID] = snap
		}
		snap.State = ev.State
		snap.LastEventAt = ev.Timestamp
		if ev.Kind == KeyEventCancel {
			snap.CanceledBy = ev.CanceledBy
		}
	}
	return result
}

// ChildWorkflowInstancesAtTime returns the workflow ids of every
// sub-workflow spawned under taskName (optionally filtered by
// workflowName) that was live (created, not yet terminal as of timestamp)
// according to the key-event stream.
func ChildWorkflowInstancesAtTime(
	events []*KeyEvent,
	taskName string,
	workflowName *string,
	timestamp time.Time,
) []net.ID {
	type childState struct {
		workflowID net.ID
		name       string
		terminal   bool
		created    bool
	}
	children := make(map[net.ID]*childState)
	for _, ev := range sortedByTime(events) {
		if ev.Timestamp.After(timestamp) {
			continue
		}
		if ev.ElementKind != ElementWorkflow || ev.TaskName != taskName {
			continue
		}
		cs, ok := children[ev.ElementID]
		if !ok {
			cs = &childState{workflowID: ev.ElementID}
			children[ev.ElementID] = cs
		}
		if ev.Kind == KeyEventCreate {
			cs.created = true
			if name, ok := ev.Attributes["workflowName"].(string); ok {
				cs.name = name
			}
		}
		if ev.State == "completed" || ev.State == "canceled" {
			cs.terminal = true
		}
	}
	var out []net.ID
	for _, cs := range children {
		if !cs.created || cs.terminal {
			continue
		}
		if workflowName != nil && cs.name != *workflowName {
			continue
		}
		out = append(out, cs.workflowID)
	}
	return out
}

func sortedByTime(events []*KeyEvent) []*KeyEvent {
	out := make([]*KeyEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
