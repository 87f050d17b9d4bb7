// Package net implements the workflow-net element model: the plain data
// types for Workflow/Condition/Task/WorkItem and their enumerated states.
// It holds no store reference and performs no mutation; state transitions
// live in the packages that mediate against a marking store.
package net

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

// ID is an opaque entity identifier backed by a KSUID, so ids sort
// roughly by creation time without a separate timestamp column.
type ID string

func (id ID) String() string { return string(id) }

// IsZero reports whether id is the unset zero value.
func (id ID) IsZero() bool { return id == "" }

// NewID mints a fresh, randomly generated ID.
func NewID() (ID, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return ID(id.String()), nil
}

// MustNewID is NewID but panics on failure; only safe at process-fatal
// construction time (builders, test fixtures).
func MustNewID() ID {
	id, err := NewID()
	if err != nil {
		panic(err)
	}
	return id
}

// ParseID validates s is a well-formed ID.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("empty id")
	}
	if _, err := ksuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(s), nil
}
