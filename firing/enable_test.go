package firing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	markingmem "github.com/yawlrun/yawlrun/marking/memstore"
	"github.com/yawlrun/yawlrun/net"
)

func TestRecomputeEnablement_ANDJoin(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	wfID := net.MustNewID()
	a := &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: "a"}
	b := &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: "b"}
	task := &net.Task{ID: net.MustNewID(), WorkflowID: wfID, Name: "join", JoinType: net.JoinAND, State: net.TaskDisabled}

	txn, err := mstore.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.CreateCondition(ctx, a))
	require.NoError(t, txn.CreateCondition(ctx, b))
	require.NoError(t, txn.CreateTask(ctx, task))
	require.NoError(t, txn.CreateFlowEdge(ctx, &net.FlowEdge{ID: net.MustNewID(), WorkflowID: wfID, Kind: net.FlowConditionToTask, FromID: a.ID, ToID: task.ID}))
	require.NoError(t, txn.CreateFlowEdge(ctx, &net.FlowEdge{ID: net.MustNewID(), WorkflowID: wfID, Kind: net.FlowConditionToTask, FromID: b.ID, ToID: task.ID}))
	_, err = txn.ProduceTokens(ctx, a.ID, 1)
	require.NoError(t, err)
	require.NoError(t, RecomputeEnablement(ctx, txn, txn, task))
	assert.Equal(t, net.TaskDisabled, task.State, "one of two AND inputs marked should not enable")

	_, err = txn.ProduceTokens(ctx, b.ID, 1)
	require.NoError(t, err)
	require.NoError(t, RecomputeEnablement(ctx, txn, txn, task))
	assert.Equal(t, net.TaskEnabled, task.State, "both AND inputs marked should enable")
	require.NoError(t, txn.Commit(ctx))
}

func TestOrJoinReady_WaitsForPendingProducer(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	wfID := net.MustNewID()

	upstream := &net.Task{ID: net.MustNewID(), WorkflowID: wfID, Name: "upstream", JoinType: net.JoinAND, State: net.TaskEnabled}
	a := &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: "a"}
	b := &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: "b"}
	join := &net.Task{ID: net.MustNewID(), WorkflowID: wfID, Name: "or-join", JoinType: net.JoinOR, State: net.TaskDisabled}

	txn, err := mstore.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.CreateTask(ctx, upstream))
	require.NoError(t, txn.CreateCondition(ctx, a))
	require.NoError(t, txn.CreateCondition(ctx, b))
	require.NoError(t, txn.CreateTask(ctx, join))
	require.NoError(t, txn.CreateFlowEdge(ctx, &net.FlowEdge{ID: net.MustNewID(), WorkflowID: wfID, Kind: net.FlowTaskToCondition, FromID: upstream.ID, ToID: b.ID}))
	require.NoError(t, txn.CreateFlowEdge(ctx, &net.FlowEdge{ID: net.MustNewID(), WorkflowID: wfID, Kind: net.FlowConditionToTask, FromID: a.ID, ToID: join.ID}))
	require.NoError(t, txn.CreateFlowEdge(ctx, &net.FlowEdge{ID: net.MustNewID(), WorkflowID: wfID, Kind: net.FlowConditionToTask, FromID: b.ID, ToID: join.ID}))

	_, err = txn.ProduceTokens(ctx, a.ID, 1)
	require.NoError(t, err)
	require.NoError(t, RecomputeEnablement(ctx, txn, txn, join))
	assert.Equal(t, net.TaskDisabled, join.State, "must wait while upstream can still mark b")

	upstream.State = net.TaskComplete
	require.NoError(t, txn.UpdateTask(ctx, upstream))
	require.NoError(t, RecomputeEnablement(ctx, txn, txn, join))
	assert.Equal(t, net.TaskEnabled, join.State, "fires once the only pending producer is terminal")
	require.NoError(t, txn.Commit(ctx))
}
