package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/net"
)

func TestStore_ConditionMarking(t *testing.T) {
	s := NewStore()
	ctx := t.Context()

	condID := net.MustNewID()
	txn, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.CreateCondition(ctx, &net.Condition{ID: condID, Name: "start", IsStart: true}))
	require.NoError(t, txn.Commit(ctx))

	t.Run("Should produce tokens", func(t *testing.T) {
		txn, err := s.Begin(ctx)
		require.NoError(t, err)
		defer txn.Rollback(ctx)
		c, err := txn.ProduceTokens(ctx, condID, 1)
		require.NoError(t, err)
		assert.Equal(t, int32(1), c.Marking)
		require.NoError(t, txn.Commit(ctx))
	})

	t.Run("Should refuse to consume past zero", func(t *testing.T) {
		txn, err := s.Begin(ctx)
		require.NoError(t, err)
		defer txn.Rollback(ctx)
		_, err = txn.ConsumeTokens(ctx, condID, 5)
		var engErr *errs.Error
		require.ErrorAs(t, err, &engErr)
		assert.Equal(t, errs.CodeStructuralIntegrity, engErr.Code)
	})

	t.Run("Should not leak a rolled-back write", func(t *testing.T) {
		txn, err := s.Begin(ctx)
		require.NoError(t, err)
		_, err = txn.ProduceTokens(ctx, condID, 10)
		require.NoError(t, err)
		require.NoError(t, txn.Rollback(ctx))

		txn2, err := s.Begin(ctx)
		require.NoError(t, err)
		defer txn2.Rollback(ctx)
		c, err := txn2.GetCondition(ctx, condID)
		require.NoError(t, err)
		assert.Equal(t, int32(1), c.Marking)
	})
}

func TestStore_NotFound(t *testing.T) {
	s := NewStore()
	ctx := t.Context()
	txn, err := s.Begin(ctx)
	require.NoError(t, err)
	defer txn.Rollback(ctx)

	_, err = txn.GetWorkflow(ctx, "missing")
	var engErr *errs.Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, errs.CodeEntityNotFound, engErr.Code)
}

func TestStore_WorkItemsByOffer(t *testing.T) {
	s := NewStore()
	ctx := t.Context()
	txn, err := s.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, txn.CreateWorkItem(ctx, &net.WorkItem{
		ID:    net.MustNewID(),
		State: net.WorkItemOffered,
		Offer: net.Offer{Kind: net.OfferHuman, RequiredScope: "wf:staff"},
	}))
	require.NoError(t, txn.CreateWorkItem(ctx, &net.WorkItem{
		ID:    net.MustNewID(),
		State: net.WorkItemOffered,
		Offer: net.Offer{Kind: net.OfferHuman, RequiredScope: "wf:admin"},
	}))
	require.NoError(t, txn.Commit(ctx))

	txn2, err := s.Begin(ctx)
	require.NoError(t, err)
	defer txn2.Rollback(ctx)
	items, err := txn2.ListWorkItemsByOffer(ctx, "wf:staff", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "wf:staff", items[0].Offer.RequiredScope)
}
