package net

import "time"

// Workflow is the row backing a single workflow-net instance.
//
// Invariants: a non-root workflow has exactly one
// composite/dynamic-composite parent task (ParentRef non-zero);
// completed/canceled is terminal; the start and end conditions named in
// the definition must exist (checked by version.Builder at registration,
// not here).
type Workflow struct {
	ID               ID            `json:"id"`
	DefinitionName   string        `json:"definitionName"`
	DefinitionVer    string        `json:"definitionVersion"`
	Parent           ParentRef     `json:"parent,omitempty"`
	State            WorkflowState `json:"state"`
	CreatedAt        time.Time     `json:"createdAt"`
	StartedAt        *time.Time    `json:"startedAt,omitempty"`
	TerminatedAt     *time.Time    `json:"terminatedAt,omitempty"`
	StartConditionID ID            `json:"startConditionId"`
	EndConditionID   ID            `json:"endConditionId"`
}

// IsRoot reports whether w has no composite-task parent.
func (w *Workflow) IsRoot() bool { return w.Parent.IsZero() }

// IsTerminal reports whether w is in a terminal state.
func (w *Workflow) IsTerminal() bool {
	return w.State == WorkflowComplete || w.State == WorkflowCanceled
}

// Condition is the row backing a place in the workflow net.
//
// Invariants: marking >= 0; the start condition is initialized
// to 1 when the workflow starts; firing rules preserve token conservation
// modulo split/join semantics.
type Condition struct {
	ID         ID     `json:"id"`
	WorkflowID ID     `json:"workflowId"`
	Name       string `json:"name"`
	Marking    int32  `json:"marking"`
	IsStart    bool   `json:"isStart"`
	IsEnd      bool   `json:"isEnd"`
	IsImplicit bool   `json:"isImplicit"`
}

// Task is the row backing a transition in the workflow net.
//
// Invariants: exactly one of {regular, dummy, composite,
// dynamic-composite}; XOR/OR split requires a router; state monotonically
// progresses with one exception: canceled may interrupt {enabled, started}.
type Task struct {
	ID         ID        `json:"id"`
	WorkflowID ID        `json:"workflowId"`
	Name       string    `json:"name"`
	Kind       TaskKind  `json:"kind"`
	JoinType   JoinType  `json:"joinType"`
	SplitType  SplitType `json:"splitType"`
	State      TaskState `json:"state"`
	RouterExpr *string   `json:"routerExpr,omitempty"`

	// WorkItemTemplate is non-nil for TaskKindRegular/TaskKindDummy.
	WorkItemTemplate *WorkItemTemplate `json:"workItemTemplate,omitempty"`

	// Composite/dynamic-composite task fields.
	SubWorkflowNames []string `json:"subWorkflowNames,omitempty"`
	NextGeneration   int      `json:"nextGeneration,omitempty"`

	// CancellationRegionID, if set, names the CancellationRegion this task
	// owns; owner termination triggers cancellation of the whole region.
	CancellationRegionID *ID `json:"cancellationRegionId,omitempty"`
}

// WorkItemTemplate describes the static shape of work items a regular or
// dummy task instantiates at fire time.
type WorkItemTemplate struct {
	AutoTrigger  bool  `json:"autoTrigger,omitempty"`
	DefaultOffer Offer `json:"defaultOffer"`
}

// FlowEdge is a typed connection between two net elements. A task->task
// edge is materialized as an implicit Condition during construction
// (version.Builder), so by the time it reaches the marking store every
// edge is condition<->task.
type FlowEdge struct {
	ID         ID       `json:"id"`
	WorkflowID ID       `json:"workflowId"`
	Kind       FlowKind `json:"kind"`
	FromID     ID       `json:"fromId"`
	ToID       ID       `json:"toId"`
}

// CancellationRegion is an owner-scoped subgraph cancelled atomically on
// owner termination.
type CancellationRegion struct {
	ID         ID   `json:"id"`
	WorkflowID ID   `json:"workflowId"`
	OwnerID    ID   `json:"ownerId"` // a Task or Condition id
	TaskIDs    []ID `json:"taskIds"`
	ConditionIDs []ID `json:"conditionIds"`
}
