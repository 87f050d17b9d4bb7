package testfixtures

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yawlrun/yawlrun/net"
)

// LinearNet is a minimal start -> task -> end net: one AND-join/AND-split
// task with an automated work-item offer.
type LinearNet struct {
	WorkflowID net.ID
	Start      *net.Condition
	End        *net.Condition
	Task       *net.Task
}

// NewLinearNet builds (but does not persist) a LinearNet named taskName.
func NewLinearNet(taskName string) *LinearNet {
	wfID := net.MustNewID()
	start := &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: "start", IsStart: true, Marking: 1}
	end := &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: "end", IsEnd: true}
	task := &net.Task{
		ID: net.MustNewID(), WorkflowID: wfID, Name: taskName,
		Kind: net.TaskKindRegular, JoinType: net.JoinAND, SplitType: net.SplitAND,
		State: net.TaskEnabled,
		WorkItemTemplate: &net.WorkItemTemplate{
			DefaultOffer: net.Offer{Kind: net.OfferAutomated},
		},
	}
	return &LinearNet{WorkflowID: wfID, Start: start, End: end, Task: task}
}

// Persist writes the net's conditions, task, and connecting edges through
// tx, committing on success.
func (l *LinearNet) Persist(t *testing.T, h *Harness) {
	t.Helper()
	tx, err := h.Marking.Begin(t.Context())
	require.NoError(t, err)
	require.NoError(t, tx.CreateCondition(t.Context(), l.Start))
	require.NoError(t, tx.CreateCondition(t.Context(), l.End))
	require.NoError(t, tx.CreateTask(t.Context(), l.Task))
	require.NoError(t, tx.CreateFlowEdge(t.Context(), &net.FlowEdge{
		ID: net.MustNewID(), WorkflowID: l.WorkflowID, Kind: net.FlowConditionToTask,
		FromID: l.Start.ID, ToID: l.Task.ID,
	}))
	require.NoError(t, tx.CreateFlowEdge(t.Context(), &net.FlowEdge{
		ID: net.MustNewID(), WorkflowID: l.WorkflowID, Kind: net.FlowTaskToCondition,
		FromID: l.Task.ID, ToID: l.End.ID,
	}))
	require.NoError(t, tx.Commit(t.Context()))
}

// XORBranch is one outcome of an XOR-split task: an output condition and
// the edge feeding it.
type XORBranch struct {
	Name      string
	Condition *net.Condition
}

// XORSplitNet is a start condition feeding a single XOR-split task with N
// mutually exclusive output conditions, one per branch name given.
type XORSplitNet struct {
	WorkflowID net.ID
	Start      *net.Condition
	Task       *net.Task
	Branches   []XORBranch
}

// NewXORSplitNet builds (but does not persist) an XORSplitNet whose task
// routes to one of branchNames via routerExpr.
func NewXORSplitNet(taskName, routerExpr string, branchNames ...string) *XORSplitNet {
	wfID := net.MustNewID()
	start := &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: "start", IsStart: true, Marking: 1}
	expr := routerExpr
	task := &net.Task{
		ID: net.MustNewID(), WorkflowID: wfID, Name: taskName,
		Kind: net.TaskKindRegular, JoinType: net.JoinAND, SplitType: net.SplitXOR,
		State: net.TaskEnabled, RouterExpr: &expr,
		WorkItemTemplate: &net.WorkItemTemplate{
			DefaultOffer: net.Offer{Kind: net.OfferAutomated},
		},
	}
	branches := make([]XORBranch, len(branchNames))
	for i, name := range branchNames {
		branches[i] = XORBranch{
			Name:      name,
			Condition: &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: name, IsEnd: true},
		}
	}
	return &XORSplitNet{WorkflowID: wfID, Start: start, Task: task, Branches: branches}
}

// Persist writes the net's conditions, task, and connecting edges through
// tx, committing on success.
func (x *XORSplitNet) Persist(t *testing.T, h *Harness) {
	t.Helper()
	tx, err := h.Marking.Begin(t.Context())
	require.NoError(t, err)
	require.NoError(t, tx.CreateCondition(t.Context(), x.Start))
	require.NoError(t, tx.CreateTask(t.Context(), x.Task))
	require.NoError(t, tx.CreateFlowEdge(t.Context(), &net.FlowEdge{
		ID: net.MustNewID(), WorkflowID: x.WorkflowID, Kind: net.FlowConditionToTask,
		FromID: x.Start.ID, ToID: x.Task.ID,
	}))
	for _, b := range x.Branches {
		require.NoError(t, tx.CreateCondition(t.Context(), b.Condition))
		require.NoError(t, tx.CreateFlowEdge(t.Context(), &net.FlowEdge{
			ID: net.MustNewID(), WorkflowID: x.WorkflowID, Kind: net.FlowTaskToCondition,
			FromID: x.Task.ID, ToID: b.Condition.ID,
		}))
	}
	require.NoError(t, tx.Commit(t.Context()))
}
