package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditmem "github.com/yawlrun/yawlrun/audit/memstore"
	"github.com/yawlrun/yawlrun/ctxrun"
	markingmem "github.com/yawlrun/yawlrun/marking/memstore"
	"github.com/yawlrun/yawlrun/net"
)

func TestScope_Contains(t *testing.T) {
	assert.True(t, Scope("finance.invoices").Contains("finance.invoices.approve"))
	assert.True(t, Scope("finance.invoices").Contains("finance.invoices"))
	assert.False(t, Scope("finance.invoices").Contains("finance.payroll"))
}

func TestPolicy_AndOrNot(t *testing.T) {
	ctx := t.Context()
	actor := Actor{UserID: "u1", Groups: []string{"reviewers"}, Scopes: []Scope{"finance.invoices"}}

	and := And(RequireScope("finance.invoices.approve"), RequireGroup("reviewers"))
	ok, err := and.Evaluate(ctx, actor)
	assert.NoError(t, err)
	assert.True(t, ok)

	or := Or(RequireScope("nope"), RequireGroup("reviewers"))
	ok, err = or.Evaluate(ctx, actor)
	assert.NoError(t, err)
	assert.True(t, ok)

	not := Not(RequireGroup("admins"))
	ok, err = not.Evaluate(ctx, actor)
	assert.NoError(t, err)
	assert.True(t, ok)
}

type staticResolver struct{ actor Actor }

func (s staticResolver) Resolve(_ context.Context, _ string) (Actor, error) { return s.actor, nil }

func TestAuthorizeClaim_DeniesUnregisteredScope(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	astore := auditmem.NewStore()
	wi := &net.WorkItem{
		ID: net.MustNewID(), State: net.WorkItemOffered,
		Offer: net.Offer{Kind: net.OfferHuman, RequiredScope: "finance.invoices.approve"},
	}
	txn, err := mstore.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.CreateWorkItem(ctx, wi))
	require.NoError(t, txn.Commit(ctx))

	reg := NewRegistry(staticResolver{actor: Actor{UserID: "u1"}})
	rc, err := ctxrun.Open(ctx, mstore, astore, "startWorkItem", "approval", "v1")
	require.NoError(t, err)
	err = AuthorizeClaim(ctx, rc, reg, wi, "u1")
	assert.Error(t, err)
}

func TestAuthorizeClaim_AllowsMatchingPolicy(t *testing.T) {
	ctx := t.Context()
	mstore := markingmem.NewStore()
	astore := auditmem.NewStore()
	wi := &net.WorkItem{
		ID: net.MustNewID(), State: net.WorkItemOffered,
		Offer: net.Offer{Kind: net.OfferHuman, RequiredScope: "finance.invoices.approve"},
	}
	txn, err := mstore.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.CreateWorkItem(ctx, wi))
	require.NoError(t, txn.Commit(ctx))

	reg := NewRegistry(staticResolver{actor: Actor{UserID: "u1", Scopes: []Scope{"finance.invoices"}}})
	reg.Register("finance.invoices.approve", RequireScope("finance.invoices.approve"))

	rc, err := ctxrun.Open(ctx, mstore, astore, "startWorkItem", "approval", "v1")
	require.NoError(t, err)
	require.NoError(t, AuthorizeClaim(ctx, rc, reg, wi, "u1"))
	require.NoError(t, rc.Commit())
	assert.Equal(t, net.WorkItemClaimed, wi.State)
}
