// Package audit implements the trace/span/key-event tree: every API
// call opens a span tree under one trace; key events are lightweight
// projections of significant spans, kept as a separate append-only log
// indexed by trace and by element, enabling time-travel replay.
package audit

import (
	"time"

	"github.com/yawlrun/yawlrun/net"
)

// Trace is the envelope for one user-initiated operation.
type Trace struct {
	ID              net.ID    `json:"id"`
	WorkflowName    string    `json:"workflowName"`
	WorkflowVersion string    `json:"workflowVersion"`
	Operation       string    `json:"operation"`
	StartedAt       time.Time `json:"startedAt"`
}

// Span is one node of the span tree nested under a Trace by ParentSpanID.
type Span struct {
	ID           net.ID         `json:"id"`
	TraceID      net.ID         `json:"traceId"`
	ParentSpanID *net.ID        `json:"parentSpanId,omitempty"`
	Name         string         `json:"name"`
	Start        time.Time      `json:"start"`
	End          *time.Time     `json:"end,omitempty"`
	Attributes   map[string]any `json:"attributes,omitempty"`
}

// KeyEventKind enumerates the significant spans projected into the
// key-event log.
type KeyEventKind string

const (
	KeyEventCreate   KeyEventKind = "create"
	KeyEventEnable   KeyEventKind = "enable"
	KeyEventFire     KeyEventKind = "fire"
	KeyEventOffer    KeyEventKind = "offer"
	KeyEventClaim    KeyEventKind = "claim"
	KeyEventStart    KeyEventKind = "start"
	KeyEventComplete KeyEventKind = "complete"
	KeyEventFail     KeyEventKind = "fail"
	KeyEventCancel   KeyEventKind = "cancel"
)

// ElementKind names which element a KeyEvent refers to.
type ElementKind string

const (
	ElementWorkflow ElementKind = "workflow"
	ElementTask     ElementKind = "task"
	ElementCondition ElementKind = "condition"
	ElementWorkItem ElementKind = "workItem"
)

// KeyEvent is a compact, queryable record of a significant state change —
// the substrate for time-travel reconstruction.
type KeyEvent struct {
	ID          net.ID         `json:"id"`
	TraceID     net.ID         `json:"traceId"`
	SpanID      net.ID         `json:"spanId"`
	Timestamp   time.Time      `json:"timestamp"`
	Kind        KeyEventKind   `json:"kind"`
	ElementKind ElementKind    `json:"elementKind"`
	ElementID   net.ID         `json:"elementId"`
	WorkflowID  net.ID         `json:"workflowId"`
	TaskName    string         `json:"taskName,omitempty"`
	State       string         `json:"state,omitempty"`
	CanceledBy  *net.ID        `json:"canceledBy,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}
