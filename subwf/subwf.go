// Package subwf implements composite and dynamic-composite task
// spawning: a composite task's firing creates one child workflow
// parented by {parentWorkflowID, taskName, generation}; the child's
// completion propagates into the parent task's completion; CascadeCancel
// cancels a child when called. Canceling the parent composite task (via a
// cancellation region or CancelRootWorkflow on the parent) does not by
// itself cancel its child workflow.
package subwf

import (
	"context"
	"sort"

	"github.com/yawlrun/yawlrun/audit"
	"github.com/yawlrun/yawlrun/ctxrun"
	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/firing"
	"github.com/yawlrun/yawlrun/net"
)

// Elements is the fully materialized net for one workflow definition, as
// produced by a Factory. It is persisted verbatim for the new child
// workflow instance.
type Elements struct {
	Workflow            *net.Workflow
	Conditions          []*net.Condition
	Tasks               []*net.Task
	Edges               []*net.FlowEdge
	CancellationRegions []*net.CancellationRegion
}

// Factory materializes a fresh net instance for a named workflow
// definition. version.Manager implements this; subwf depends only on the
// interface to avoid importing version, which itself depends on subwf.
type Factory interface {
	Instantiate(ctx context.Context, definitionName string) (*Elements, error)
}

// ChooseDynamicType resolves which workflow definition a
// dynamic-composite task instantiates. Absent an explicit selector, the
// first name registered on the task is used.
func ChooseDynamicType(t *net.Task) (string, error) {
	if len(t.SubWorkflowNames) == 0 {
		return "", errs.New(errs.CodeConfiguration, nil,
			map[string]any{"task": t.Name, "reason": "dynamic composite task has no candidate workflow types"})
	}
	return t.SubWorkflowNames[0], nil
}

// Spawn creates a new child workflow for parentTask, firing it (consuming
// its input tokens exactly like firing.Fire, but with no work item
// template: a composite task's "work" is its child workflow). The
// generation number is read from parentTask.NextGeneration and
// incremented, so repeated firings of the same task (inside a loop)
// produce a monotonically increasing sequence.
func Spawn(rc *ctxrun.Context, parentTask *net.Task, factory Factory, definitionName string) (*net.Workflow, error) {
	if err := rc.RequireInternal(); err != nil {
		return nil, err
	}
	close := rc.OpenSpan("spawn:"+parentTask.Name, map[string]any{"definitionName": definitionName})
	defer close()
	ctx := rc.GoContext()
	tx := rc.Tx()

	elements, err := factory.Instantiate(ctx, definitionName)
	if err != nil {
		return nil, err
	}
	generation := parentTask.NextGeneration
	parentTask.NextGeneration++

	child := elements.Workflow
	child.Parent = net.ParentRef{
		WorkflowID: parentTask.WorkflowID,
		TaskName:   parentTask.Name,
		Generation: generation,
	}
	child.State = net.WorkflowStarted

	if err := tx.CreateWorkflow(ctx, child); err != nil {
		return nil, err
	}
	for _, c := range elements.Conditions {
		if err := tx.CreateCondition(ctx, c); err != nil {
			return nil, err
		}
	}
	for _, tk := range elements.Tasks {
		if err := tx.CreateTask(ctx, tk); err != nil {
			return nil, err
		}
	}
	for _, e := range elements.Edges {
		if err := tx.CreateFlowEdge(ctx, e); err != nil {
			return nil, err
		}
	}
	for _, r := range elements.CancellationRegions {
		if err := tx.CreateCancellationRegion(ctx, r); err != nil {
			return nil, err
		}
	}
	if _, err := tx.ProduceTokens(ctx, child.StartConditionID, 1); err != nil {
		return nil, err
	}
	for _, tk := range elements.Tasks {
		if err := firing.RecomputeEnablement(ctx, tx, tx, tk); err != nil {
			return nil, err
		}
	}

	parentTask.State = net.TaskStarted
	if err := tx.UpdateTask(ctx, parentTask); err != nil {
		return nil, err
	}

	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind: audit.KeyEventCreate, ElementKind: audit.ElementWorkflow,
		ElementID: child.ID, WorkflowID: child.ID, TaskName: parentTask.Name,
		State:      string(child.State),
		Attributes: map[string]any{"workflowName": definitionName, "generation": generation},
	})
	return child, nil
}

// OnChildCompleted fires when a child workflow reaches the completed
// state: it looks up the parent task named in the child's ParentRef and
// completes it, propagating tokens into the parent workflow the same way
// any other task completion would.
func OnChildCompleted(rc *ctxrun.Context, child *net.Workflow, router *firing.Router) error {
	if err := rc.RequireInternal(); err != nil {
		return err
	}
	if child.Parent.IsZero() {
		return nil
	}
	ctx := rc.GoContext()
	tx := rc.Tx()
	parentTask, err := tx.GetTaskByName(ctx, child.Parent.WorkflowID, child.Parent.TaskName)
	if err != nil {
		return err
	}
	if parentTask.State != net.TaskStarted {
		return nil
	}
	return firing.CompleteTask(rc, parentTask, router, nil, "")
}

// CascadeCancel cancels every enabled or started task inside
// childWorkflowID, with its non-terminal work items, then marks the
// workflow canceled unless it is already terminal. version.Manager calls
// it from CancelRootWorkflow and CancelWorkflow.
func CascadeCancel(rc *ctxrun.Context, childWorkflowID net.ID, canceledBy net.ID) error {
	ctx := rc.GoContext()
	tx := rc.Tx()
	tasks, err := tx.ListTasksByWorkflow(ctx, childWorkflowID)
	if err != nil {
		return err
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	for _, t := range tasks {
		if t.State != net.TaskEnabled && t.State != net.TaskStarted {
			continue
		}
		items, err := tx.ListWorkItemsByTask(ctx, t.ID)
		if err != nil {
			return err
		}
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
		for _, wi := range items {
			if wi.IsTerminal() {
				continue
			}
			cb := canceledBy
			wi.State = net.WorkItemCanceled
			wi.CanceledBy = &cb
			if err := tx.UpdateWorkItem(ctx, wi); err != nil {
				return err
			}
			rc.EmitKeyEvent(&audit.KeyEvent{
				Kind: audit.KeyEventCancel, ElementKind: audit.ElementWorkItem,
				ElementID: wi.ID, WorkflowID: wi.WorkflowID, TaskName: t.Name,
				State: string(wi.State), CanceledBy: &cb,
			})
		}
		cb := canceledBy
		t.State = net.TaskCanceled
		if err := tx.UpdateTask(ctx, t); err != nil {
			return err
		}
		rc.EmitKeyEvent(&audit.KeyEvent{
			Kind: audit.KeyEventCancel, ElementKind: audit.ElementTask,
			ElementID: t.ID, WorkflowID: t.WorkflowID, TaskName: t.Name,
			State: string(t.State), CanceledBy: &cb,
		})
	}
	child, err := tx.GetWorkflow(ctx, childWorkflowID)
	if err != nil {
		return err
	}
	if child.IsTerminal() {
		return nil
	}
	child.State = net.WorkflowCanceled
	if err := tx.UpdateWorkflow(ctx, child); err != nil {
		return err
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind: audit.KeyEventCancel, ElementKind: audit.ElementWorkflow,
		ElementID: child.ID, WorkflowID: child.ID,
		State: string(child.State), CanceledBy: &canceledBy,
	})
	return nil
}
