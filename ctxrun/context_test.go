package ctxrun

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yawlrun/yawlrun/audit"
	auditmem "github.com/yawlrun/yawlrun/audit/memstore"
	markingmem "github.com/yawlrun/yawlrun/marking/memstore"
	"github.com/yawlrun/yawlrun/net"
)

func TestOpen_CommitPersistsTraceSpansAndEvents(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	astore := auditmem.NewStore()

	rc, err := Open(ctx, mstore, astore, "initializeWorkItem", "approval", "v1")
	require.NoError(t, err)

	closeSpan := rc.OpenSpan("validatePayload", map[string]any{"taskName": "approve"})
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind:        audit.KeyEventCreate,
		ElementKind: audit.ElementWorkItem,
		ElementID:   net.MustNewID(),
		WorkflowID:  net.MustNewID(),
		TaskName:    "approve",
		State:       "initialized",
	})
	closeSpan()

	require.NoError(t, rc.Commit())

	events, err := astore.GetKeyEvents(ctx, rc.TraceID())
	require.NoError(t, err)
	require.Len(t, events, 1)

	roots, err := astore.GetRootSpans(ctx, rc.TraceID())
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "initializeWorkItem", roots[0].Name)

	children, err := astore.GetChildSpans(ctx, rc.TraceID(), roots[0].ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "validatePayload", children[0].Name)
}

func TestRollback_WritesNothing(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	astore := auditmem.NewStore()

	rc, err := Open(ctx, mstore, astore, "cancelWorkItem", "approval", "v1")
	require.NoError(t, err)
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind:        audit.KeyEventCancel,
		ElementKind: audit.ElementWorkItem,
		ElementID:   net.MustNewID(),
		WorkflowID:  net.MustNewID(),
	})

	require.NoError(t, rc.Rollback())

	events, err := astore.GetKeyEvents(ctx, rc.TraceID())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRequireInternal(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	astore := auditmem.NewStore()

	rc, err := Open(ctx, mstore, astore, "completeWorkItem", "approval", "v1")
	require.NoError(t, err)
	defer rc.Rollback()

	assert.Error(t, rc.RequireInternal())
	assert.NoError(t, rc.Internal().RequireInternal())
}

func TestQueuePostCommit_RunsOnlyAfterCommit(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	astore := auditmem.NewStore()

	var ran bool
	rc, err := Open(ctx, mstore, astore, "startWorkItem", "approval", "v1")
	require.NoError(t, err)
	rc.QueuePostCommit(func(_ context.Context) { ran = true })
	require.NoError(t, rc.Commit())
	assert.True(t, ran)
}
