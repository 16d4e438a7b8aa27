package models

import "fmt"

// ValidationError reports missing or malformed input. It is raised before any
// write is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a reference to a record that does not exist.
type NotFoundError struct {
	Collection Collection
	ID         string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s record %s not found", e.Collection, e.ID)
}

// InsufficientStockError reports a sale that would drive a batch's available
// packets negative. The batch is left untouched.
type InsufficientStockError struct {
	BatchID   string
	Requested int
	Available int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("batch %s has %d packets available, %d requested", e.BatchID, e.Available, e.Requested)
}

// PersistenceError wraps a failure of the underlying document store. All
// write paths surface it to the caller; none are swallowed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }
