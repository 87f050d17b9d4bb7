// Package memstore is the in-process implementation of marking.Store used
// by the engine's own unit tests and as the default runtime backend for
// hosts that do not need cross-process durability. It serializes all
// transactions behind a single mutex (a conservative superset of the
// spec's "single-writer per workflow per transaction" requirement) and
// hands every transaction a deep-cloned working set, so mid-transaction
// mutation never leaks to concurrent readers.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/marking"
	"github.com/yawlrun/yawlrun/net"
)

type tables struct {
	workflows  map[net.ID]*net.Workflow
	conditions map[net.ID]*net.Condition
	tasks      map[net.ID]*net.Task
	workItems  map[net.ID]*net.WorkItem
	edges      map[net.ID]*net.FlowEdge
	regions    map[net.ID]*net.CancellationRegion
}

func newTables() *tables {
	return &tables{
		workflows:  make(map[net.ID]*net.Workflow),
		conditions: make(map[net.ID]*net.Condition),
		tasks:      make(map[net.ID]*net.Task),
		workItems:  make(map[net.ID]*net.WorkItem),
		edges:      make(map[net.ID]*net.FlowEdge),
		regions:    make(map[net.ID]*net.CancellationRegion),
	}
}

func (t *tables) clone() *tables {
	out := newTables()
	for k, v := range t.workflows {
		out.workflows[k] = v.Clone()
	}
	for k, v := range t.conditions {
		out.conditions[k] = v.Clone()
	}
	for k, v := range t.tasks {
		out.tasks[k] = v.Clone()
	}
	for k, v := range t.workItems {
		out.workItems[k] = v.Clone()
	}
	for k, v := range t.edges {
		out.edges[k] = v.Clone()
	}
	for k, v := range t.regions {
		out.regions[k] = v.Clone()
	}
	return out
}

// Store is the in-process marking.Store implementation.
type Store struct {
	mu   sync.Mutex
	data *tables
}

// NewStore returns an empty in-process marking store.
func NewStore() *Store {
	return &Store{data: newTables()}
}

// Begin serializes against any other in-flight transaction on this store
// and hands back a snapshot the caller can freely mutate until Commit.
func (s *Store) Begin(_ context.Context) (marking.Tx, error) {
	s.mu.Lock()
	return &tx{store: s, work: s.data.clone()}, nil
}

type tx struct {
	store    *Store
	work     *tables
	finished bool
}

func (t *tx) Commit(_ context.Context) error {
	if t.finished {
		return fmt.Errorf("memstore: transaction already finished")
	}
	t.finished = true
	t.store.data = t.work
	t.store.mu.Unlock()
	return nil
}

func (t *tx) Rollback(_ context.Context) error {
	if t.finished {
		return nil
	}
	t.finished = true
	t.store.mu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------
// Workflow
// -----------------------------------------------------------------------------

func (t *tx) CreateWorkflow(_ context.Context, w *net.Workflow) error {
	t.work.workflows[w.ID] = w.Clone()
	return nil
}

func (t *tx) GetWorkflow(_ context.Context, id net.ID) (*net.Workflow, error) {
	w, ok := t.work.workflows[id]
	if !ok {
		return nil, errs.NotFound("workflow", id.String())
	}
	return w.Clone(), nil
}

func (t *tx) UpdateWorkflow(_ context.Context, w *net.Workflow) error {
	if _, ok := t.work.workflows[w.ID]; !ok {
		return errs.NotFound("workflow", w.ID.String())
	}
	t.work.workflows[w.ID] = w.Clone()
	return nil
}

func (t *tx) ListChildWorkflows(_ context.Context, parentWorkflowID net.ID, taskName string) ([]*net.Workflow, error) {
	var out []*net.Workflow
	for _, w := range t.work.workflows {
		if w.Parent.WorkflowID == parentWorkflowID && w.Parent.TaskName == taskName {
			out = append(out, w.Clone())
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Condition
// -----------------------------------------------------------------------------

func (t *tx) CreateCondition(_ context.Context, c *net.Condition) error {
	t.work.conditions[c.ID] = c.Clone()
	return nil
}

func (t *tx) GetCondition(_ context.Context, id net.ID) (*net.Condition, error) {
	c, ok := t.work.conditions[id]
	if !ok {
		return nil, errs.NotFound("condition", id.String())
	}
	return c.Clone(), nil
}

func (t *tx) ListConditionsByWorkflow(_ context.Context, workflowID net.ID) ([]*net.Condition, error) {
	var out []*net.Condition
	for _, c := range t.work.conditions {
		if c.WorkflowID == workflowID {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (t *tx) ProduceTokens(_ context.Context, id net.ID, n int32) (*net.Condition, error) {
	c, ok := t.work.conditions[id]
	if !ok {
		return nil, errs.NotFound("condition", id.String())
	}
	if n < 0 {
		return nil, errs.New(errs.CodeStructuralIntegrity, fmt.Errorf("produce negative tokens %d", n), nil)
	}
	next := int64(c.Marking) + int64(n)
	if next > int64(^uint32(0)>>1) {
		return nil, errs.New(errs.CodeStructuralIntegrity,
			fmt.Errorf("condition %s marking overflow", id), map[string]any{"condition": id.String()})
	}
	c.Marking = int32(next)
	t.work.conditions[id] = c
	return c.Clone(), nil
}

func (t *tx) ConsumeTokens(_ context.Context, id net.ID, n int32) (*net.Condition, error) {
	c, ok := t.work.conditions[id]
	if !ok {
		return nil, errs.NotFound("condition", id.String())
	}
	if n < 0 || c.Marking-n < 0 {
		return nil, errs.New(errs.CodeStructuralIntegrity,
			fmt.Errorf("condition %s marking would go negative (have %d, consume %d)", id, c.Marking, n),
			map[string]any{"condition": id.String(), "marking": c.Marking, "consume": n},
		)
	}
	c.Marking -= n
	t.work.conditions[id] = c
	return c.Clone(), nil
}

func (t *tx) ResetMarking(_ context.Context, id net.ID) (*net.Condition, error) {
	c, ok := t.work.conditions[id]
	if !ok {
		return nil, errs.NotFound("condition", id.String())
	}
	c.Marking = 0
	t.work.conditions[id] = c
	return c.Clone(), nil
}

// -----------------------------------------------------------------------------
// Task
// -----------------------------------------------------------------------------

func (t *tx) CreateTask(_ context.Context, task *net.Task) error {
	t.work.tasks[task.ID] = task.Clone()
	return nil
}

func (t *tx) GetTask(_ context.Context, id net.ID) (*net.Task, error) {
	task, ok := t.work.tasks[id]
	if !ok {
		return nil, errs.NotFound("task", id.String())
	}
	return task.Clone(), nil
}

func (t *tx) GetTaskByName(_ context.Context, workflowID net.ID, name string) (*net.Task, error) {
	for _, task := range t.work.tasks {
		if task.WorkflowID == workflowID && task.Name == name {
			return task.Clone(), nil
		}
	}
	return nil, errs.NotFound("task", name)
}

func (t *tx) ListTasksByWorkflow(_ context.Context, workflowID net.ID) ([]*net.Task, error) {
	var out []*net.Task
	for _, task := range t.work.tasks {
		if task.WorkflowID == workflowID {
			out = append(out, task.Clone())
		}
	}
	return out, nil
}

func (t *tx) UpdateTask(_ context.Context, task *net.Task) error {
	if _, ok := t.work.tasks[task.ID]; !ok {
		return errs.NotFound("task", task.ID.String())
	}
	t.work.tasks[task.ID] = task.Clone()
	return nil
}

// -----------------------------------------------------------------------------
// WorkItem
// -----------------------------------------------------------------------------

func (t *tx) CreateWorkItem(_ context.Context, wi *net.WorkItem) error {
	t.work.workItems[wi.ID] = wi.Clone()
	return nil
}

func (t *tx) GetWorkItem(_ context.Context, id net.ID) (*net.WorkItem, error) {
	wi, ok := t.work.workItems[id]
	if !ok {
		return nil, errs.NotFound("workItem", id.String())
	}
	return wi.Clone(), nil
}

func (t *tx) ListWorkItemsByTask(_ context.Context, taskID net.ID) ([]*net.WorkItem, error) {
	var out []*net.WorkItem
	for _, wi := range t.work.workItems {
		if wi.TaskID == taskID {
			out = append(out, wi.Clone())
		}
	}
	return out, nil
}

func (t *tx) ListWorkItemsByOffer(_ context.Context, scope, groupID string) ([]*net.WorkItem, error) {
	var out []*net.WorkItem
	for _, wi := range t.work.workItems {
		if wi.Offer.Kind != net.OfferHuman {
			continue
		}
		if scope != "" && wi.Offer.RequiredScope != scope {
			continue
		}
		if groupID != "" && wi.Offer.RequiredGroup != groupID {
			continue
		}
		out = append(out, wi.Clone())
	}
	return out, nil
}

func (t *tx) ListWorkItemsByAggregate(_ context.Context, aggregateID string) ([]*net.WorkItem, error) {
	var out []*net.WorkItem
	for _, wi := range t.work.workItems {
		if wi.AggregateID != nil && *wi.AggregateID == aggregateID {
			out = append(out, wi.Clone())
		}
	}
	return out, nil
}

func (t *tx) UpdateWorkItem(_ context.Context, wi *net.WorkItem) error {
	if _, ok := t.work.workItems[wi.ID]; !ok {
		return errs.NotFound("workItem", wi.ID.String())
	}
	t.work.workItems[wi.ID] = wi.Clone()
	return nil
}

// -----------------------------------------------------------------------------
// FlowEdge
// -----------------------------------------------------------------------------

func (t *tx) CreateFlowEdge(_ context.Context, e *net.FlowEdge) error {
	t.work.edges[e.ID] = e.Clone()
	return nil
}

func (t *tx) InputsOf(_ context.Context, taskID net.ID) ([]*net.FlowEdge, error) {
	var out []*net.FlowEdge
	for _, e := range t.work.edges {
		if e.Kind == net.FlowConditionToTask && e.ToID == taskID {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (t *tx) OutputsOf(_ context.Context, taskID net.ID) ([]*net.FlowEdge, error) {
	var out []*net.FlowEdge
	for _, e := range t.work.edges {
		if e.Kind == net.FlowTaskToCondition && e.FromID == taskID {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (t *tx) DownstreamTasksOf(_ context.Context, conditionID net.ID) ([]*net.Task, error) {
	var taskIDs []net.ID
	for _, e := range t.work.edges {
		if e.Kind == net.FlowConditionToTask && e.FromID == conditionID {
			taskIDs = append(taskIDs, e.ToID)
		}
	}
	var out []*net.Task
	for _, id := range taskIDs {
		if task, ok := t.work.tasks[id]; ok {
			out = append(out, task.Clone())
		}
	}
	return out, nil
}

func (t *tx) UpstreamTasksOf(_ context.Context, conditionID net.ID) ([]*net.Task, error) {
	var taskIDs []net.ID
	for _, e := range t.work.edges {
		if e.Kind == net.FlowTaskToCondition && e.ToID == conditionID {
			taskIDs = append(taskIDs, e.FromID)
		}
	}
	var out []*net.Task
	for _, id := range taskIDs {
		if task, ok := t.work.tasks[id]; ok {
			out = append(out, task.Clone())
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// CancellationRegion
// -----------------------------------------------------------------------------

func (t *tx) CreateCancellationRegion(_ context.Context, r *net.CancellationRegion) error {
	t.work.regions[r.ID] = r.Clone()
	return nil
}

func (t *tx) GetCancellationRegionByOwner(_ context.Context, ownerID net.ID) (*net.CancellationRegion, error) {
	for _, r := range t.work.regions {
		if r.OwnerID == ownerID {
			return r.Clone(), nil
		}
	}
	return nil, errs.NotFound("cancellationRegion", ownerID.String())
}
