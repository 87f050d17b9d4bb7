// Package ctxrun implements the execution context: a short-lived
// object scoped to one transactional mutation. It resolves the marking
// store transaction, opens a root trace span, accumulates audit key-events,
// and is the only legitimate mediator between the element model and the
// database — no other package writes to marking.Tx directly once a
// Context exists for the operation.
package ctxrun

import (
	"context"
	"time"

	"github.com/yawlrun/yawlrun/audit"
	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/logger"
	"github.com/yawlrun/yawlrun/marking"
	"github.com/yawlrun/yawlrun/net"
)

// Context is the per-transaction mutation handle.
type Context struct {
	goCtx      context.Context
	store      marking.Store
	auditStore audit.Store
	tx         marking.Tx

	trace     *audit.Trace
	spans     []*audit.Span
	spanStack []net.ID
	events    []*audit.KeyEvent

	postCommit []func(context.Context)
	internal   bool
	closed     bool
}

// Open begins a marking-store transaction and a new trace rooted at a span
// named after operation. The caller must eventually call Commit or
// Rollback exactly once.
func Open(
	goCtx context.Context,
	store marking.Store,
	auditStore audit.Store,
	operation, workflowName, workflowVersion string,
) (*Context, error) {
	tx, err := store.Begin(goCtx)
	if err != nil {
		return nil, errs.New(errs.CodeStructuralIntegrity, err, nil)
	}
	traceID := net.MustNewID()
	rc := &Context{
		goCtx:      goCtx,
		store:      store,
		auditStore: auditStore,
		tx:         tx,
		trace: &audit.Trace{
			ID:              traceID,
			WorkflowName:    workflowName,
			WorkflowVersion: workflowVersion,
			Operation:       operation,
			StartedAt:       time.Now(),
		},
	}
	rc.OpenSpan(operation, nil)
	return rc, nil
}

// Internal marks rc as a trusted internal caller and returns it, so the
// engine can recurse into itself (e.g. spawning a composite task's child
// workflow, or completing a parent task when that child finishes) without
// forking the transaction, trace, or accumulated spans/events. Once a
// Context is marked internal for an operation it stays internal for the
// rest of that operation's lifetime.
func (rc *Context) Internal() *Context {
	rc.internal = true
	return rc
}

// RequireInternal returns an error unless rc was produced by Internal(),
// so public entry points can refuse to perform a mutation that is only
// valid when the engine calls itself recursively.
func (rc *Context) RequireInternal() error {
	if !rc.internal {
		return errs.New(errs.CodeNotInternalMutation,
			nil, map[string]any{"operation": rc.trace.Operation})
	}
	return nil
}

// GoContext returns the underlying context.Context, carrying the logger and
// cancellation/deadline.
func (rc *Context) GoContext() context.Context { return rc.goCtx }

// Tx exposes the transactional handle to the firing/cancel/authz/subwf
// packages that implement the actual state transitions.
func (rc *Context) Tx() marking.Tx { return rc.tx }

// TraceID returns the id of the trace this Context's spans/events belong to.
func (rc *Context) TraceID() net.ID { return rc.trace.ID }

// Log returns the context-scoped logger.
func (rc *Context) Log() logger.Logger { return logger.FromContext(rc.goCtx) }

// OpenSpan starts a new span nested under the currently open span (or root
// if none is open), pushes it onto the span stack, and returns a closer
// that must be called to end it.
func (rc *Context) OpenSpan(name string, attrs map[string]any) func() {
	span := &audit.Span{
		ID:         net.MustNewID(),
		TraceID:    rc.trace.ID,
		Name:       name,
		Start:      time.Now(),
		Attributes: attrs,
	}
	if len(rc.spanStack) > 0 {
		parent := rc.spanStack[len(rc.spanStack)-1]
		span.ParentSpanID = &parent
	}
	rc.spans = append(rc.spans, span)
	rc.spanStack = append(rc.spanStack, span.ID)
	return func() {
		now := time.Now()
		span.End = &now
		if len(rc.spanStack) > 0 {
			rc.spanStack = rc.spanStack[:len(rc.spanStack)-1]
		}
	}
}

// currentSpanID returns the innermost open span, or the root span if the
// stack has unwound (should not happen within a well-formed operation).
func (rc *Context) currentSpanID() net.ID {
	if len(rc.spanStack) > 0 {
		return rc.spanStack[len(rc.spanStack)-1]
	}
	if len(rc.spans) > 0 {
		return rc.spans[0].ID
	}
	return ""
}

// EmitKeyEvent stages a key-event against the current span. Staged events
// are only persisted on a successful Commit; a rolled-back transaction
// writes no events.
func (rc *Context) EmitKeyEvent(ev *audit.KeyEvent) {
	ev.TraceID = rc.trace.ID
	ev.SpanID = rc.currentSpanID()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	rc.events = append(rc.events, ev)
}

// QueuePostCommit queues fn to run, in FIFO order, only after a
// successful Commit.
func (rc *Context) QueuePostCommit(fn func(context.Context)) {
	rc.postCommit = append(rc.postCommit, fn)
}

// Commit flushes the marking-store transaction and, only if that succeeds,
// persists the accumulated trace/spans/key-events and runs queued
// post-commit hooks.
func (rc *Context) Commit() error {
	if rc.closed {
		return errs.New(errs.CodeConstraintViolation, nil, map[string]any{"reason": "context already closed"})
	}
	rc.closed = true
	if err := rc.tx.Commit(rc.goCtx); err != nil {
		return err
	}
	if rc.auditStore != nil {
		if err := rc.auditStore.SaveTrace(rc.goCtx, rc.trace); err != nil {
			return err
		}
		if err := rc.auditStore.SaveSpans(rc.goCtx, rc.spans); err != nil {
			return err
		}
		if err := rc.auditStore.SaveKeyEvents(rc.goCtx, rc.events); err != nil {
			return err
		}
	}
	for _, fn := range rc.postCommit {
		fn(rc.goCtx)
	}
	return nil
}

// Rollback aborts the marking-store transaction; no spans or key-events are
// persisted and no post-commit hooks run.
func (rc *Context) Rollback() error {
	if rc.closed {
		return nil
	}
	rc.closed = true
	return rc.tx.Rollback(rc.goCtx)
}
