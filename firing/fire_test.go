package firing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditmem "github.com/yawlrun/yawlrun/audit/memstore"
	"github.com/yawlrun/yawlrun/ctxrun"
	markingmem "github.com/yawlrun/yawlrun/marking/memstore"
	"github.com/yawlrun/yawlrun/net"
)

func TestFireAndCompleteTask_ANDJoinANDSplit(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	astore := auditmem.NewStore()

	wfID := net.MustNewID()
	start := &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: "start", IsStart: true, Marking: 1}
	end := &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: "end", IsEnd: true}
	task := &net.Task{
		ID: net.MustNewID(), WorkflowID: wfID, Name: "approve",
		Kind: net.TaskKindRegular, JoinType: net.JoinAND, SplitType: net.SplitAND,
		State: net.TaskEnabled,
		WorkItemTemplate: &net.WorkItemTemplate{
			DefaultOffer: net.Offer{Kind: net.OfferAutomated},
		},
	}

	txn, err := mstore.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.CreateCondition(ctx, start))
	require.NoError(t, txn.CreateCondition(ctx, end))
	require.NoError(t, txn.CreateTask(ctx, task))
	require.NoError(t, txn.CreateFlowEdge(ctx, &net.FlowEdge{
		ID: net.MustNewID(), WorkflowID: wfID, Kind: net.FlowConditionToTask, FromID: start.ID, ToID: task.ID,
	}))
	require.NoError(t, txn.CreateFlowEdge(ctx, &net.FlowEdge{
		ID: net.MustNewID(), WorkflowID: wfID, Kind: net.FlowTaskToCondition, FromID: task.ID, ToID: end.ID,
	}))
	require.NoError(t, txn.Commit(ctx))

	rc, err := ctxrun.Open(ctx, mstore, astore, "fire", "approval", "v1")
	require.NoError(t, err)
	wi, err := Fire(rc, task)
	require.NoError(t, err)
	require.NotNil(t, wi)
	assert.Equal(t, net.TaskStarted, task.State)
	require.NoError(t, rc.Commit())

	// start condition must now be empty.
	txn2, err := mstore.Begin(ctx)
	require.NoError(t, err)
	s, err := txn2.GetCondition(ctx, start.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(0), s.Marking)
	require.NoError(t, txn2.Rollback(ctx))

	router, err := NewRouter()
	require.NoError(t, err)
	rc2, err := ctxrun.Open(ctx, mstore, astore, "complete", "approval", "v1")
	require.NoError(t, err)
	require.NoError(t, CompleteTask(rc2, task, router, nil, ""))
	require.NoError(t, rc2.Commit())

	txn3, err := mstore.Begin(ctx)
	require.NoError(t, err)
	e, err := txn3.GetCondition(ctx, end.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), e.Marking)
	require.NoError(t, txn3.Rollback(ctx))
}

func TestFire_RejectsDisabledTask(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	astore := auditmem.NewStore()
	rc, err := ctxrun.Open(ctx, mstore, astore, "fire", "approval", "v1")
	require.NoError(t, err)
	task := &net.Task{ID: net.MustNewID(), State: net.TaskDisabled, JoinType: net.JoinAND}
	_, err = Fire(rc, task)
	assert.Error(t, err)
}

func TestXORSplit_RouterChoosesOneOutput(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	astore := auditmem.NewStore()

	wfID := net.MustNewID()
	approve := &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: "approve-out"}
	reject := &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: "reject-out"}
	expr := `payload.decision == "approve" ? "approve-out" : "reject-out"`
	task := &net.Task{
		ID: net.MustNewID(), WorkflowID: wfID, Name: "decide",
		Kind: net.TaskKindRegular, JoinType: net.JoinXOR, SplitType: net.SplitXOR,
		State: net.TaskStarted, RouterExpr: &expr,
	}

	txn, err := mstore.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.CreateCondition(ctx, approve))
	require.NoError(t, txn.CreateCondition(ctx, reject))
	require.NoError(t, txn.CreateTask(ctx, task))
	require.NoError(t, txn.CreateFlowEdge(ctx, &net.FlowEdge{
		ID: net.MustNewID(), WorkflowID: wfID, Kind: net.FlowTaskToCondition, FromID: task.ID, ToID: approve.ID,
	}))
	require.NoError(t, txn.CreateFlowEdge(ctx, &net.FlowEdge{
		ID: net.MustNewID(), WorkflowID: wfID, Kind: net.FlowTaskToCondition, FromID: task.ID, ToID: reject.ID,
	}))
	require.NoError(t, txn.Commit(ctx))

	router, err := NewRouter()
	require.NoError(t, err)
	rc, err := ctxrun.Open(ctx, mstore, astore, "complete", "approval", "v1")
	require.NoError(t, err)
	require.NoError(t, CompleteTask(rc, task, router, map[string]any{"decision": "approve"}, ""))
	require.NoError(t, rc.Commit())

	txn2, err := mstore.Begin(ctx)
	require.NoError(t, err)
	a, err := txn2.GetCondition(ctx, approve.ID)
	require.NoError(t, err)
	r, err := txn2.GetCondition(ctx, reject.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), a.Marking)
	assert.Equal(t, int32(0), r.Marking)
	require.NoError(t, txn2.Rollback(ctx))
}
