package audit

import (
	"context"

	"github.com/yawlrun/yawlrun/net"
)

// Store persists traces, spans and key-events, and backs the audit read
// API: getRootSpans, getChildSpans, getKeyEvents, getWorkflowStateAtTime,
// getChildWorkflowInstances.
type Store interface {
	SaveTrace(ctx context.Context, t *Trace) error
	SaveSpans(ctx context.Context, spans []*Span) error
	SaveKeyEvents(ctx context.Context, events []*KeyEvent) error

	GetRootSpans(ctx context.Context, traceID net.ID) ([]*Span, error)
	GetChildSpans(ctx context.Context, traceID, parentSpanID net.ID) ([]*Span, error)
	GetKeyEvents(ctx context.Context, traceID net.ID) ([]*KeyEvent, error)
}
