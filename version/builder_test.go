package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yawlrun/yawlrun/net"
)

func buildLinearDefinition(t *testing.T) *Definition {
	t.Helper()
	def, err := NewBuilder("approval", "v1").
		Condition("start", true, false).
		Condition("end", false, true).
		Task(TaskSpec{
			Name: "approve", Kind: net.TaskKindRegular, JoinType: net.JoinAND, SplitType: net.SplitAND,
			WorkItemTemplate: &net.WorkItemTemplate{DefaultOffer: net.Offer{Kind: net.OfferHuman, RequiredScope: "finance.invoices.approve"}},
		}).
		Edge(net.FlowConditionToTask, "start", "approve").
		Edge(net.FlowTaskToCondition, "approve", "end").
		Build()
	require.NoError(t, err)
	return def
}

func TestBuilder_RequiresExactlyOneStartAndEnd(t *testing.T) {
	_, err := NewBuilder("bad", "v1").
		Condition("s1", true, false).
		Condition("s2", true, false).
		Build()
	assert.Error(t, err)
}

func TestBuilder_RejectsUnknownEdgeReference(t *testing.T) {
	_, err := NewBuilder("bad", "v1").
		Condition("start", true, true).
		Edge(net.FlowConditionToTask, "start", "ghost").
		Build()
	assert.Error(t, err)
}

func TestBuilder_XORSplitRequiresRouter(t *testing.T) {
	_, err := NewBuilder("bad", "v1").
		Condition("start", true, false).
		Condition("a", false, false).
		Condition("b", false, true).
		Task(TaskSpec{Name: "decide", Kind: net.TaskKindRegular, JoinType: net.JoinAND, SplitType: net.SplitXOR}).
		Edge(net.FlowConditionToTask, "start", "decide").
		Edge(net.FlowTaskToCondition, "decide", "a").
		Edge(net.FlowTaskToCondition, "decide", "b").
		Build()
	assert.Error(t, err)
}

func TestBuilder_CompositeTaskRequiresSubWorkflowName(t *testing.T) {
	_, err := NewBuilder("bad", "v1").
		Condition("start", true, false).
		Condition("end", false, true).
		Task(TaskSpec{Name: "review", Kind: net.TaskKindComposite}).
		Edge(net.FlowConditionToTask, "start", "review").
		Edge(net.FlowTaskToCondition, "review", "end").
		Build()
	assert.Error(t, err)
}

func TestBuilder_TaskToTaskEdgeSynthesizesImplicitCondition(t *testing.T) {
	def, err := NewBuilder("chain", "v1").
		Condition("start", true, false).
		Condition("end", false, true).
		Task(TaskSpec{Name: "first", Kind: net.TaskKindRegular, JoinType: net.JoinAND, SplitType: net.SplitAND}).
		Task(TaskSpec{Name: "second", Kind: net.TaskKindRegular, JoinType: net.JoinAND, SplitType: net.SplitAND}).
		Edge(net.FlowConditionToTask, "start", "first").
		Edge(net.FlowTaskToTask, "first", "second").
		Edge(net.FlowTaskToCondition, "second", "end").
		Build()
	require.NoError(t, err)

	var implicit *ConditionSpec
	for i := range def.Conditions {
		if def.Conditions[i].IsImplicit {
			implicit = &def.Conditions[i]
		}
	}
	require.NotNil(t, implicit)
	assert.False(t, implicit.IsStart)
	assert.False(t, implicit.IsEnd)

	var sawFirstToImplicit, sawImplicitToSecond bool
	for _, e := range def.Edges {
		assert.NotEqual(t, net.FlowTaskToTask, e.Kind, "task-to-task edges must not survive Build")
		if e.Kind == net.FlowTaskToCondition && e.From == "first" && e.To == implicit.Name {
			sawFirstToImplicit = true
		}
		if e.Kind == net.FlowConditionToTask && e.From == implicit.Name && e.To == "second" {
			sawImplicitToSecond = true
		}
	}
	assert.True(t, sawFirstToImplicit)
	assert.True(t, sawImplicitToSecond)

	elements, err := instantiate(def)
	require.NoError(t, err)
	assert.Len(t, elements.Conditions, 3)
}

func TestBuilder_TaskToTaskEdgeRejectsUnknownTask(t *testing.T) {
	_, err := NewBuilder("bad", "v1").
		Condition("start", true, true).
		Task(TaskSpec{Name: "first", Kind: net.TaskKindRegular, JoinType: net.JoinAND, SplitType: net.SplitAND}).
		Edge(net.FlowTaskToTask, "first", "ghost").
		Build()
	assert.Error(t, err)
}

func TestInstantiate_ProducesFreshIDsEachTime(t *testing.T) {
	def := buildLinearDefinition(t)
	e1, err := instantiate(def)
	require.NoError(t, err)
	e2, err := instantiate(def)
	require.NoError(t, err)
	assert.NotEqual(t, e1.Workflow.ID, e2.Workflow.ID)
	assert.Equal(t, len(e1.Tasks), len(e2.Tasks))
	assert.NotEqual(t, e1.Tasks[0].ID, e2.Tasks[0].ID)
}
