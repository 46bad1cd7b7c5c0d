// Package shelferr defines the structured error kinds shared by the list,
// membership and favorites services. Expected failures are returned as *Error
// values so callers can branch on the kind; infrastructure faults (storage
// unavailable, broken connection) stay plain wrapped errors.
package shelferr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnauthenticated   Kind = "unauthenticated"
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindOwnership         Kind = "ownership"
	KindUniqueness        Kind = "uniqueness_violation"
	KindCapacity          Kind = "capacity_exceeded"
	KindDuplicate         Kind = "duplicate_membership"
	KindInvalidMembers    Kind = "invalid_members"
	KindIncompleteReorder Kind = "incomplete_reorder"
)

// Error is an expected, caller-visible failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" if err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
