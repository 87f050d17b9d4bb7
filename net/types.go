package net

import "time"

// JoinType governs how a Task consumes tokens from its input Conditions.
type JoinType string

const (
	JoinAND JoinType = "AND"
	JoinXOR JoinType = "XOR"
	JoinOR  JoinType = "OR"
)

// SplitType governs how a Task produces tokens into its output Conditions.
type SplitType string

const (
	SplitAND SplitType = "AND"
	SplitXOR SplitType = "XOR"
	SplitOR  SplitType = "OR"
)

// TaskKind is the discriminant for task.Config's `type` field:
// exactly one of {regular, dummy, composite, dynamic-composite}.
type TaskKind string

const (
	TaskKindRegular          TaskKind = "task"
	TaskKindDummy            TaskKind = "dummyTask"
	TaskKindComposite        TaskKind = "compositeTask"
	TaskKindDynamicComposite TaskKind = "dynamicCompositeTask"
)

// TaskState is the lifecycle state of a Task (transition).
type TaskState string

const (
	TaskDisabled TaskState = "disabled"
	TaskEnabled  TaskState = "enabled"
	TaskStarted  TaskState = "started"
	TaskComplete TaskState = "completed"
	TaskFailed   TaskState = "failed"
	TaskCanceled TaskState = "canceled"
)

// WorkflowState is the lifecycle state of a Workflow.
type WorkflowState string

const (
	WorkflowInitialized WorkflowState = "initialized"
	WorkflowStarted     WorkflowState = "started"
	WorkflowComplete    WorkflowState = "completed"
	WorkflowCanceled    WorkflowState = "canceled"
)

// WorkItemState is the lifecycle state of a WorkItem.
type WorkItemState string

const (
	WorkItemInitialized WorkItemState = "initialized"
	WorkItemOffered     WorkItemState = "offered"
	WorkItemClaimed     WorkItemState = "claimed"
	WorkItemStarted     WorkItemState = "started"
	WorkItemComplete    WorkItemState = "completed"
	WorkItemFailed      WorkItemState = "failed"
	WorkItemCanceled    WorkItemState = "canceled"
)

// OfferKind discriminates how a WorkItem is offered.
type OfferKind string

const (
	OfferAutomated OfferKind = "automated"
	OfferHuman     OfferKind = "human"
)

// Offer describes who may pick up a WorkItem.
type Offer struct {
	Kind           OfferKind `json:"kind"`
	RequiredScope  string    `json:"requiredScope,omitempty"`
	RequiredGroup  string    `json:"requiredGroupId,omitempty"`
}

// ClaimKind discriminates the binding of a WorkItem to an actor.
type ClaimKind string

const (
	ClaimNone      ClaimKind = "none"
	ClaimAutomated ClaimKind = "automated"
	ClaimHuman     ClaimKind = "human"
)

// Claim binds a WorkItem to a specific actor, or to the system.
type Claim struct {
	Kind    ClaimKind `json:"kind"`
	UserID  string    `json:"userId,omitempty"`
	ClaimAt time.Time `json:"claimedAt,omitempty"`
}

// FlowKind discriminates a FlowEdge's endpoints.
type FlowKind string

const (
	FlowConditionToTask FlowKind = "condition_to_task"
	FlowTaskToCondition FlowKind = "task_to_condition"
	FlowTaskToTask      FlowKind = "task_to_task"
)

// ParentRef identifies the composite task that spawned a sub-workflow.
type ParentRef struct {
	WorkflowID ID     `json:"workflowId"`
	TaskName   string `json:"taskName"`
	Generation int    `json:"generation"`
}

// IsZero reports whether the ParentRef is unset (i.e. this is a root workflow).
func (p ParentRef) IsZero() bool {
	return p.WorkflowID.IsZero() && p.TaskName == "" && p.Generation == 0
}
