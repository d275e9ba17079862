package manager

import (
	"errors"
	"fmt"
)

// QueryError reports that a fetch or duplicate-check query failed.
//
// Query failure is deliberately distinct from "no records matched": an
// empty fetch returns an empty slice with a nil error, while a failed
// query returns a QueryError. Callers that need to distinguish the two
// can, which the original conflated-absent design did not allow.
type QueryError struct {
	// Entity names the collection the query ran against.
	Entity string

	// Err is the underlying store error.
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Entity, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// CommitError reports that committing pending session changes failed.
//
// A failed commit must never be swallowed: persisted and in-memory state
// may have diverged and the caller has to decide how to proceed. The
// manager surfaces the error instead of terminating the process.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit failed: %v", e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// IsQueryFailure returns true if the error is a query failure.
// Uses errors.As to handle wrapped errors.
func IsQueryFailure(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

// IsCommitFailure returns true if the error is a commit failure.
// Uses errors.As to handle wrapped errors.
func IsCommitFailure(err error) bool {
	var ce *CommitError
	return errors.As(err, &ce)
}
