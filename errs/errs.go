// Package errs implements the engine's typed error taxonomy.
// Every engine error is constructed through New with one of the Code
// constants below, carries a stable code, a human message, a context map of
// the relevant ids, and wraps its cause for errors.Is/As.
package errs

import "fmt"

// Code identifies one of the closed set of error classes the engine can
// raise. Callers branch on Code (or on the Err* sentinels below), never on
// Message text.
type Code string

const (
	// CodeEntityNotFound: workflow/task/condition/work-item missing for the given id.
	CodeEntityNotFound Code = "ENTITY_NOT_FOUND"
	// CodeInvalidStateTransition: operation forbidden by the element's current state.
	CodeInvalidStateTransition Code = "INVALID_STATE_TRANSITION"
	// CodeConfiguration: static violation of workflow definition.
	CodeConfiguration Code = "CONFIGURATION"
	// CodeStructuralIntegrity: invariant violation discovered at runtime.
	CodeStructuralIntegrity Code = "STRUCTURAL_INTEGRITY"
	// CodeDataIntegrity: uniqueness conflict.
	CodeDataIntegrity Code = "DATA_INTEGRITY"
	// CodeConstraintViolation: operation disallowed by invariants.
	CodeConstraintViolation Code = "CONSTRAINT_VIOLATION"
	// CodeNotInternalMutation: internal operation invoked outside a trusted context.
	CodeNotInternalMutation Code = "NOT_INTERNAL_MUTATION"
	// CodePolicyDeny: authorization refused by a named policy.
	CodePolicyDeny Code = "POLICY_DENY"
	// CodeWorkflowDeprecated: root initialization of a deprecated version.
	CodeWorkflowDeprecated Code = "WORKFLOW_DEPRECATED"
)

// Error is the concrete type every engine error is constructed as.
type Error struct {
	Message string
	Code    Code
	Details map[string]any
	cause   error
}

// New builds an *Error for code, wrapping cause (may be nil) and attaching
// details (may be nil).
func New(code Code, cause error, details map[string]any) *Error {
	msg := string(code)
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Message: msg, Code: code, Details: details, cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is reports whether target is an *Error with the same Code, so
// errors.Is(err, errs.New(errs.CodeEntityNotFound, nil, nil)) works without
// callers needing to compare Details or Message.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// AsMap renders the error as a plain map suitable for a JSON response body
// or an audit key-event attribute bag.
func (e *Error) AsMap() map[string]any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"message": e.Message,
		"code":    string(e.Code),
		"details": e.Details,
	}
}

// sentinel constructs a bare *Error of the given code for use with errors.Is.
func sentinel(code Code) *Error { return &Error{Code: code} }

var (
	ErrEntityNotFound          = sentinel(CodeEntityNotFound)
	ErrInvalidStateTransition  = sentinel(CodeInvalidStateTransition)
	ErrConfiguration           = sentinel(CodeConfiguration)
	ErrStructuralIntegrity     = sentinel(CodeStructuralIntegrity)
	ErrDataIntegrity           = sentinel(CodeDataIntegrity)
	ErrConstraintViolation     = sentinel(CodeConstraintViolation)
	ErrNotInternalMutation     = sentinel(CodeNotInternalMutation)
	ErrPolicyDeny              = sentinel(CodePolicyDeny)
	ErrWorkflowDeprecated      = sentinel(CodeWorkflowDeprecated)
)

// NotFound builds an EntityNotFound error naming the kind and id missing.
func NotFound(kind, id string) *Error {
	return New(CodeEntityNotFound, fmt.Errorf("%s %q not found", kind, id), map[string]any{
		"kind": kind,
		"id":   id,
	})
}

// InvalidTransition builds an InvalidStateTransition error.
func InvalidTransition(kind, id, from, to string) *Error {
	return New(CodeInvalidStateTransition,
		fmt.Errorf("%s %q cannot transition from %s to %s", kind, id, from, to),
		map[string]any{"kind": kind, "id": id, "from": from, "to": to},
	)
}
