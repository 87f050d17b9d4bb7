package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yawlrun/yawlrun/net"
)

func TestWorkflowStateAtTime(t *testing.T) {
	wf := net.MustNewID()
	task := net.MustNewID()
	t0 := time.Now()

	events := []*KeyEvent{
		{ElementKind: ElementTask, ElementID: task, WorkflowID: wf, State: "enabled", Timestamp: t0},
		{ElementKind: ElementTask, ElementID: task, WorkflowID: wf, State: "started", Timestamp: t0.Add(time.Second)},
		{ElementKind: ElementTask, ElementID: task, WorkflowID: wf, State: "completed", Timestamp: t0.Add(2 * time.Second)},
	}

	t.Run("Should reflect only events at or before the target time", func(t *testing.T) {
		snap := WorkflowStateAtTime(events, &wf, t0.Add(1500*time.Millisecond))
		require.Contains(t, snap, task)
		assert.Equal(t, "started", snap[task].State)
	})

	t.Run("Should reflect the final event at a later time", func(t *testing.T) {
		snap := WorkflowStateAtTime(events, &wf, t0.Add(10*time.Second))
		assert.Equal(t, "completed", snap[task].State)
	})

	t.Run("Should ignore events from other workflows", func(t *testing.T) {
		other := net.MustNewID()
		snap := WorkflowStateAtTime(events, &other, t0.Add(10*time.Second))
		assert.Empty(t, snap)
	})
}

func TestChildWorkflowInstancesAtTime(t *testing.T) {
	child := net.MustNewID()
	t0 := time.Now()
	events := []*KeyEvent{
		{
			ElementKind: ElementWorkflow, ElementID: child, TaskName: "composite1",
			Kind: KeyEventCreate, Timestamp: t0, Attributes: map[string]any{"workflowName": "subwf"},
		},
	}

	t.Run("Should list a live child instance", func(t *testing.T) {
		ids := ChildWorkflowInstancesAtTime(events, "composite1", nil, t0.Add(time.Minute))
		require.Len(t, ids, 1)
		assert.Equal(t, child, ids[0])
	})

	t.Run("Should exclude a terminated child", func(t *testing.T) {
		terminalEvents := append(append([]*KeyEvent(nil), events...), &KeyEvent{
			ElementKind: ElementWorkflow, ElementID: child, TaskName: "composite1",
			State: "completed", Timestamp: t0.Add(time.Second),
		})
		ids := ChildWorkflowInstancesAtTime(terminalEvents, "composite1", nil, t0.Add(time.Minute))
		assert.Empty(t, ids)
	})
}
