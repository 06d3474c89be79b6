package services

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError covers a missing node, configuration, manufacturing
// type or snapshot, and a parent that belongs to a different
// manufacturing type than the caller claimed.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// DuplicateNameError means a sibling under the same parent already
// uses the encoded segment.
type DuplicateNameError struct {
	Segment  string
	ParentID *uuid.UUID
}

func (e *DuplicateNameError) Error() string {
	if e.ParentID == nil {
		return fmt.Sprintf("a root node with segment %q already exists", e.Segment)
	}
	return fmt.Sprintf("a sibling with segment %q already exists under parent %s", e.Segment, *e.ParentID)
}

// CircularReferenceError means a move would make a node its own
// ancestor.
type CircularReferenceError struct {
	NodeID      uuid.UUID
	NewParentID uuid.UUID
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("moving node %s under %s would create a cycle", e.NodeID, e.NewParentID)
}

// HasChildrenError rejects a non-cascading delete of a non-leaf node.
type HasChildrenError struct {
	NodeID uuid.UUID
}

func (e *HasChildrenError) Error() string {
	return fmt.Sprintf("node %s has children; delete requires cascade", e.NodeID)
}

// ValidationError covers a selection value that does not fit the
// node's data type, or broken formula text supplied at edit time.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// CalculationError attributes a formula failure to the configuration,
// selection and node it came from, so callers never see an
// unattributed formula error.
type CalculationError struct {
	ConfigurationID uuid.UUID
	SelectionID     uuid.UUID
	NodeID          uuid.UUID
	Formula         string
	Err             error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("calculation failed for configuration %s: node %s, selection %s, formula %q: %v",
		e.ConfigurationID, e.NodeID, e.SelectionID, e.Formula, e.Err)
}

func (e *CalculationError) Unwrap() error { return e.Err }
