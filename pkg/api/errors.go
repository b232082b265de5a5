package api

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// TaskError wraps a failure returned by a task's execute operation (or by
// a logic decision / trigger evaluation), tagged with the failing
// component's name and kind. The wrapped error is the opaque payload
// supplied by the caller's task body; unwrap with errors.Is / errors.As.
type TaskError struct {
	Component string
	Kind      Kind
	Err       error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s %q failed: %v", e.Kind, e.Component, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// NewTaskError wraps err as a TaskError for the named component.
func NewTaskError(component string, kind Kind, err error) *TaskError {
	return &TaskError{Component: component, Kind: kind, Err: err}
}

// GroupError aggregates the failures of one or more children of a
// parallel group. Every failed child contributes an entry, in declaration
// order, so a single join failure still identifies each failing branch.
type GroupError struct {
	Group string
	errs  *multierror.Error
}

// NewGroupError builds a GroupError from the given child errors. Nil
// entries are skipped; it returns nil if no error remains.
func NewGroupError(group string, errs ...error) *GroupError {
	var merr *multierror.Error
	for _, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if merr == nil {
		return nil
	}
	return &GroupError{Group: group, errs: merr}
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("group %q: %v", e.Group, e.errs)
}

// Unwrap exposes the aggregated child errors to errors.Is / errors.As.
func (e *GroupError) Unwrap() []error {
	return e.errs.WrappedErrors()
}

// Failures returns the aggregated child errors in declaration order.
func (e *GroupError) Failures() []error {
	return e.errs.WrappedErrors()
}
