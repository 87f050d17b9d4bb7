package cancel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditmem "github.com/yawlrun/yawlrun/audit/memstore"
	"github.com/yawlrun/yawlrun/ctxrun"
	markingmem "github.com/yawlrun/yawlrun/marking/memstore"
	"github.com/yawlrun/yawlrun/net"
)

func TestRegion_CancelsTasksWorkItemsAndResetsMarking(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	astore := auditmem.NewStore()
	wfID := net.MustNewID()

	inRegionTask := &net.Task{ID: net.MustNewID(), WorkflowID: wfID, Name: "inner", State: net.TaskStarted}
	cond := &net.Condition{ID: net.MustNewID(), WorkflowID: wfID, Name: "pending", Marking: 2}
	wi := &net.WorkItem{ID: net.MustNewID(), TaskID: inRegionTask.ID, WorkflowID: wfID, State: net.WorkItemStarted}
	owner := net.MustNewID()

	region := &net.CancellationRegion{
		ID: net.MustNewID(), WorkflowID: wfID, OwnerID: owner,
		TaskIDs: []net.ID{inRegionTask.ID}, ConditionIDs: []net.ID{cond.ID},
	}

	txn, err := mstore.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.CreateTask(ctx, inRegionTask))
	require.NoError(t, txn.CreateCondition(ctx, cond))
	require.NoError(t, txn.CreateWorkItem(ctx, wi))
	require.NoError(t, txn.CreateCancellationRegion(ctx, region))
	require.NoError(t, txn.Commit(ctx))

	rc, err := ctxrun.Open(ctx, mstore, astore, "cancelRegion", "approval", "v1")
	require.NoError(t, err)
	require.NoError(t, Region(rc, region, owner))
	require.NoError(t, rc.Commit())

	txn2, err := mstore.Begin(ctx)
	require.NoError(t, err)
	gotTask, err := txn2.GetTask(ctx, inRegionTask.ID)
	require.NoError(t, err)
	assert.Equal(t, net.TaskCanceled, gotTask.State)

	gotItem, err := txn2.GetWorkItem(ctx, wi.ID)
	require.NoError(t, err)
	assert.Equal(t, net.WorkItemCanceled, gotItem.State)
	require.NotNil(t, gotItem.CanceledBy)
	assert.Equal(t, owner, *gotItem.CanceledBy)

	gotCond, err := txn2.GetCondition(ctx, cond.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(0), gotCond.Marking)
	require.NoError(t, txn2.Rollback(ctx))
}

func TestRegion_LeavesDisabledAndFailedTasksUntouched(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	astore := auditmem.NewStore()
	wfID := net.MustNewID()
	owner := net.MustNewID()
	disabledTask := &net.Task{ID: net.MustNewID(), WorkflowID: wfID, Name: "never-enabled", State: net.TaskDisabled}
	failedTask := &net.Task{ID: net.MustNewID(), WorkflowID: wfID, Name: "blew-up", State: net.TaskFailed}
	region := &net.CancellationRegion{
		ID: net.MustNewID(), WorkflowID: wfID, OwnerID: owner,
		TaskIDs: []net.ID{disabledTask.ID, failedTask.ID},
	}

	txn, err := mstore.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.CreateTask(ctx, disabledTask))
	require.NoError(t, txn.CreateTask(ctx, failedTask))
	require.NoError(t, txn.Commit(ctx))

	rc, err := ctxrun.Open(ctx, mstore, astore, "cancelRegion", "approval", "v1")
	require.NoError(t, err)
	require.NoError(t, Region(rc, region, owner))
	require.NoError(t, rc.Commit())

	txn2, err := mstore.Begin(ctx)
	require.NoError(t, err)
	gotDisabled, err := txn2.GetTask(ctx, disabledTask.ID)
	require.NoError(t, err)
	assert.Equal(t, net.TaskDisabled, gotDisabled.State, "a task that never enabled must not be canceled")
	gotFailed, err := txn2.GetTask(ctx, failedTask.ID)
	require.NoError(t, err)
	assert.Equal(t, net.TaskFailed, gotFailed.State, "a failed task must not be reverted to canceled")
	require.NoError(t, txn2.Rollback(ctx))
}

func TestRegion_IdempotentOnAlreadyTerminalTask(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	astore := auditmem.NewStore()
	wfID := net.MustNewID()
	owner := net.MustNewID()
	completedTask := &net.Task{ID: net.MustNewID(), WorkflowID: wfID, Name: "done", State: net.TaskComplete}
	region := &net.CancellationRegion{ID: net.MustNewID(), WorkflowID: wfID, OwnerID: owner, TaskIDs: []net.ID{completedTask.ID}}

	txn, err := mstore.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.CreateTask(ctx, completedTask))
	require.NoError(t, txn.Commit(ctx))

	rc, err := ctxrun.Open(ctx, mstore, astore, "cancelRegion", "approval", "v1")
	require.NoError(t, err)
	require.NoError(t, Region(rc, region, owner))
	require.NoError(t, rc.Commit())

	txn2, err := mstore.Begin(ctx)
	require.NoError(t, err)
	got, err := txn2.GetTask(ctx, completedTask.ID)
	require.NoError(t, err)
	assert.Equal(t, net.TaskComplete, got.State, "a completed task must not be reverted to canceled")
	require.NoError(t, txn2.Rollback(ctx))
}
