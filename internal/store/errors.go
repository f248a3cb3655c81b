package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// The store never leaks driver errors: everything crossing the package
// boundary is one of the kinds below.

// NotFoundError reports that an entity with the given id does not exist.
// Callers cannot distinguish "never existed" from "already deleted".
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

// InvalidDataError reports input rejected by validation before any write.
type InvalidDataError struct {
	Field  string
	Reason string
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CircularReferenceError reports a group parent assignment that would loop.
type CircularReferenceError struct {
	GroupID  int64
	ParentID int64
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference detected: group %d cannot have parent %d (would create loop)", e.GroupID, e.ParentID)
}

// ForeignKeyError reports a reference to a row that does not exist.
type ForeignKeyError struct {
	Field        string
	ReferencedID int64
}

func (e *ForeignKeyError) Error() string {
	return fmt.Sprintf("%s references non-existent ID %d", e.Field, e.ReferencedID)
}

var (
	// ErrDatabaseLocked indicates storage-engine contention. Callers are
	// expected to retry with backoff; the store never retries internally.
	ErrDatabaseLocked = errors.New("database is locked by another process, please try again")

	// ErrConnectionFailed indicates the underlying handle is unusable.
	ErrConnectionFailed = errors.New("database connection failed")
)

// InternalError wraps a store failure that has no more specific kind.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("database error: %v", e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// translate maps driver-native errors onto the taxonomy. Errors already in
// the taxonomy pass through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var nf *NotFoundError
	var id *InvalidDataError
	var cr *CircularReferenceError
	var fk *ForeignKeyError
	if errors.As(err, &nf) || errors.As(err, &id) || errors.As(err, &cr) || errors.As(err, &fk) ||
		errors.Is(err, ErrDatabaseLocked) || errors.Is(err, ErrConnectionFailed) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: "record", ID: 0}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY"):
		return &ForeignKeyError{Field: "unknown", ReferencedID: 0}
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "SQLITE_BUSY"):
		return ErrDatabaseLocked
	case errors.Is(err, sql.ErrConnDone):
		return ErrConnectionFailed
	}
	return &InternalError{Err: err}
}
