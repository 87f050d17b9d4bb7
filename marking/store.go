// Package marking implements the marking store: a transactional
// mapping from condition identity to marking count, and from task/work-item
// identity to state. All reads within one execution context see a
// consistent snapshot; writes are staged until commit.
package marking

import (
	"context"

	"github.com/yawlrun/yawlrun/net"
)

// Store opens transactions against the marking store. Concrete
// implementations: memstore (in-process, default) and the Postgres-backed
// store under store/postgres.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is the transactional handle ctxrun.Context mediates all reads and
// writes through. No façade in package net writes directly; only a Tx can
// mutate the store.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	CreateWorkflow(ctx context.Context, w *net.Workflow) error
	GetWorkflow(ctx context.Context, id net.ID) (*net.Workflow, error)
	UpdateWorkflow(ctx context.Context, w *net.Workflow) error
	ListChildWorkflows(ctx context.Context, parentWorkflowID net.ID, taskName string) ([]*net.Workflow, error)

	CreateCondition(ctx context.Context, c *net.Condition) error
	GetCondition(ctx context.Context, id net.ID) (*net.Condition, error)
	ListConditionsByWorkflow(ctx context.Context, workflowID net.ID) ([]*net.Condition, error)
	// ProduceTokens adds n (n>=0) tokens to condition id and returns the
	// updated row. ConsumeTokens removes n tokens and returns
	// errs.ErrStructuralIntegrity if that would make marking negative.
	ProduceTokens(ctx context.Context, id net.ID, n int32) (*net.Condition, error)
	ConsumeTokens(ctx context.Context, id net.ID, n int32) (*net.Condition, error)
	ResetMarking(ctx context.Context, id net.ID) (*net.Condition, error)

	CreateTask(ctx context.Context, t *net.Task) error
	GetTask(ctx context.Context, id net.ID) (*net.Task, error)
	GetTaskByName(ctx context.Context, workflowID net.ID, name string) (*net.Task, error)
	ListTasksByWorkflow(ctx context.Context, workflowID net.ID) ([]*net.Task, error)
	UpdateTask(ctx context.Context, t *net.Task) error

	CreateWorkItem(ctx context.Context, wi *net.WorkItem) error
	GetWorkItem(ctx context.Context, id net.ID) (*net.WorkItem, error)
	ListWorkItemsByTask(ctx context.Context, taskID net.ID) ([]*net.WorkItem, error)
	ListWorkItemsByOffer(ctx context.Context, scope, groupID string) ([]*net.WorkItem, error)
	ListWorkItemsByAggregate(ctx context.Context, aggregateID string) ([]*net.WorkItem, error)
	UpdateWorkItem(ctx context.Context, wi *net.WorkItem) error

	CreateFlowEdge(ctx context.Context, e *net.FlowEdge) error
	InputsOf(ctx context.Context, taskID net.ID) ([]*net.FlowEdge, error)
	OutputsOf(ctx context.Context, taskID net.ID) ([]*net.FlowEdge, error)
	DownstreamTasksOf(ctx context.Context, conditionID net.ID) ([]*net.Task, error)
	UpstreamTasksOf(ctx context.Context, conditionID net.ID) ([]*net.Task, error)

	CreateCancellationRegion(ctx context.Context, r *net.CancellationRegion) error
	GetCancellationRegionByOwner(ctx context.Context, ownerID net.ID) (*net.CancellationRegion, error)
}
