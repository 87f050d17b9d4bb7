package testfixtures

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	auditmem "github.com/yawlrun/yawlrun/audit/memstore"
	"github.com/yawlrun/yawlrun/authz"
	markingmem "github.com/yawlrun/yawlrun/marking/memstore"
	"github.com/yawlrun/yawlrun/net"
	"github.com/yawlrun/yawlrun/version"
)

// AllowAllResolver resolves any user ID to an Actor whose single scope is
// the literal "*". Scope.Contains gives "*" no wildcard meaning, so the
// actor only satisfies a scope check for "*" itself or scopes below it.
type AllowAllResolver struct{}

// Resolve implements authz.ActorResolver.
func (AllowAllResolver) Resolve(_ context.Context, userID string) (authz.Actor, error) {
	return authz.Actor{UserID: userID, Scopes: []authz.Scope{"*"}}, nil
}

// LinearDefinition builds a start -> (AND-join/AND-split task) -> end
// version.Definition, the same shape as LinearNet but expressed as a
// declarative definition for Manager-level tests.
func LinearDefinition(t *testing.T, name, taskName string) *version.Definition {
	t.Helper()
	def, err := version.NewBuilder(name, "v1").
		Condition("start", true, false).
		Condition("end", false, true).
		Task(version.TaskSpec{
			Name: taskName, Kind: net.TaskKindRegular, JoinType: net.JoinAND, SplitType: net.SplitAND,
			WorkItemTemplate: &net.WorkItemTemplate{DefaultOffer: net.Offer{Kind: net.OfferAutomated}},
		}).
		Edge(net.FlowConditionToTask, "start", taskName).
		Edge(net.FlowTaskToCondition, taskName, "end").
		Build()
	require.NoError(t, err)
	return def
}

// NewManager builds a Manager over fresh in-memory stores and an
// authorization registry with no policy registered, so every claim that
// AuthorizeClaim evaluates for a human offer is refused. It suits tests
// that only care about workflow-net mechanics.
func NewManager(t *testing.T) *version.Manager {
	t.Helper()
	m, err := version.NewManager(markingmem.NewStore(), auditmem.NewStore(), authz.NewRegistry(AllowAllResolver{}))
	require.NoError(t, err)
	return m
}
