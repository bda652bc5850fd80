// internal/models/errors.go
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. Every stage failure is converted into a
// ProcessingResult at the point closest to its origin; these types let
// the orchestrator and callers distinguish the cause.

var (
	// ErrDuplicate marks a record already processed. Informational, not a defect.
	ErrDuplicate = errors.New("duplicate record")

	// ErrClientNotFound is a hard stop requiring an upstream data fix.
	ErrClientNotFound = errors.New("client not found")
)

// ValidationError carries the structural/business-rule failures for one record.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// PersistenceError wraps a storage failure inside a chunk transaction.
// It triggers rollback of the enclosing chunk.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CollaboratorError wraps an allocation, pricing, or parsing failure.
// Caught at the ProcessOne/ProcessFile boundary, never propagated as a panic.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator failed: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
