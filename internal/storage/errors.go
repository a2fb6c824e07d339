// Package storage defines the Calendar/Entry storage contract consumed
// (not implemented) by the cached repository decorator, plus its
// StorageError kinds: NotFound, AlreadyExists, InvalidData,
// ConnectionFailed, QueryFailed.
package storage

import "fmt"

// ErrorKind discriminates the StorageError kinds.
type ErrorKind string

const (
	NotFound         ErrorKind = "NotFound"
	AlreadyExists    ErrorKind = "AlreadyExists"
	InvalidData      ErrorKind = "InvalidData"
	ConnectionFailed ErrorKind = "ConnectionFailed"
	QueryFailed      ErrorKind = "QueryFailed"
)

// Error is the error type every storage contract implementation returns.
type Error struct {
	Kind     ErrorKind
	Resource string // "calendar" or "entry"
	ID       string
	Reason   string
	Cause    error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("storage: %s %s %q: %s", e.Kind, e.Resource, e.ID, e.Reason)
	}
	return fmt.Sprintf("storage: %s %s %q", e.Kind, e.Resource, e.ID)
}

func (e *Error) Unwrap() error { return e.Cause }

// Retryable reports whether the operation that produced this error is
// worth retrying with backoff. Only ConnectionFailed is transient by
// construction (NotFound/AlreadyExists/InvalidData/QueryFailed reflect
// the state of the data, not a blip in reaching the backend).
func (e *Error) Retryable() bool { return e.Kind == ConnectionFailed }

func NewNotFound(resource, id string) *Error {
	return &Error{Kind: NotFound, Resource: resource, ID: id}
}

func NewAlreadyExists(resource, id string) *Error {
	return &Error{Kind: AlreadyExists, Resource: resource, ID: id}
}

func NewInvalidData(resource, id, reason string) *Error {
	return &Error{Kind: InvalidData, Resource: resource, ID: id, Reason: reason}
}

func NewConnectionFailed(resource string, cause error) *Error {
	return &Error{Kind: ConnectionFailed, Resource: resource, Cause: cause}
}

func NewQueryFailed(resource string, cause error) *Error {
	return &Error{Kind: QueryFailed, Resource: resource, Cause: cause}
}

// Is allows errors.Is(err, &storage.Error{Kind: storage.NotFound}) style
// checks: any *Error target matches when its Kind equals e's Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func IsNotFound(err error) bool      { return kindOf(err) == NotFound }
func IsAlreadyExists(err error) bool { return kindOf(err) == AlreadyExists }
func IsInvalidData(err error) bool   { return kindOf(err) == InvalidData }

func kindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}
