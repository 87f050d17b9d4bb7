package net

import "time"

// WorkItem is the executable instantiation of a Task, bearing payload,
// offer, and claim.
//
// Invariants: started ⇒ claim present; completed/failed/canceled is
// terminal; human offers require a human claim before start; at most one
// claim per item; auto-trigger may be set at most once.
type WorkItem struct {
	ID         ID            `json:"id"`
	TaskID     ID            `json:"taskId"`
	WorkflowID ID            `json:"workflowId"`
	State      WorkItemState `json:"state"`

	Offer Offer `json:"offer"`
	Claim Claim `json:"claim"`

	Payload      map[string]any `json:"payload,omitempty"`
	AggregateID  *string        `json:"aggregateId,omitempty"`
	Priority     *int           `json:"priority,omitempty"`
	AutoTrigger  bool           `json:"autoTrigger,omitempty"`
	AutoTriggerSet bool         `json:"-"`

	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CanceledBy  *ID        `json:"canceledBy,omitempty"`
}

// IsTerminal reports whether the WorkItem is in completed/failed/canceled.
func (w *WorkItem) IsTerminal() bool {
	switch w.State {
	case WorkItemComplete, WorkItemFailed, WorkItemCanceled:
		return true
	default:
		return false
	}
}

// Status renders the derived public status union
// `status ∈ {pending, claimed, completed}`.
func (w *WorkItem) Status() string {
	if w.State == WorkItemComplete {
		return "completed"
	}
	if w.Claim.Kind != ClaimNone {
		return "claimed"
	}
	return "pending"
}

// Metadata renders the work-item metadata shape exposed to external
// consumers.
type Metadata struct {
	ID              ID             `json:"id"`
	WorkItemID      ID             `json:"workItemId"`
	AggregateID     *string        `json:"aggregateId,omitempty"`
	TaskName        string         `json:"taskName"`
	TaskType        TaskKind       `json:"taskType"`
	Status          string         `json:"status"`
	RequiredScope   string         `json:"requiredScope,omitempty"`
	RequiredGroupID string         `json:"requiredGroupId,omitempty"`
	ClaimedBy       *string        `json:"claimedBy,omitempty"`
	Priority        *int           `json:"priority,omitempty"`
	Payload         map[string]any `json:"payload,omitempty"`
}

// ToMetadata projects a WorkItem plus its owning Task into the external
// metadata shape.
func (w *WorkItem) ToMetadata(taskName string, taskType TaskKind) *Metadata {
	m := &Metadata{
		ID:          w.ID,
		WorkItemID:  w.ID,
		AggregateID: w.AggregateID,
		TaskName:    taskName,
		TaskType:    taskType,
		Status:      w.Status(),
		Priority:    w.Priority,
		Payload:     w.Payload,
	}
	if w.Offer.Kind == OfferHuman {
		m.RequiredScope = w.Offer.RequiredScope
		m.RequiredGroupID = w.Offer.RequiredGroup
	}
	if w.Claim.Kind == ClaimHuman {
		userID := w.Claim.UserID
		m.ClaimedBy = &userID
	}
	return m
}
