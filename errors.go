// Package relgen holds the runtime pieces shared by generated relationship
// resolvers. The build-time pipeline lives under compiler/.
package relgen

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for resolver execution.
var (
	// ErrUnauthorized is returned when a to-one relation exists in the store
	// but the caller's authorization filter hid it.
	ErrUnauthorized = errors.New("relgen: unauthorized")
)

// UnauthorizedError represents a relation that was found but filtered out by
// authorization rules.
type UnauthorizedError struct {
	typeName  string
	fieldName string
}

// Error returns the error string.
func (e *UnauthorizedError) Error() string {
	if e.typeName == "" {
		return "relgen: not authorized to access relation"
	}
	return fmt.Sprintf("relgen: not authorized to access %s.%s", e.typeName, e.fieldName)
}

// Is reports whether the target error matches UnauthorizedError.
// This allows errors.Is(err, ErrUnauthorized) to return true.
func (e *UnauthorizedError) Is(err error) bool {
	return err == ErrUnauthorized
}

// TypeName returns the type that owns the relation field.
func (e *UnauthorizedError) TypeName() string { return e.typeName }

// FieldName returns the relation field name.
func (e *UnauthorizedError) FieldName() string { return e.fieldName }

// NewUnauthorizedError returns a new UnauthorizedError for the given relation field.
func NewUnauthorizedError(typeName, fieldName string) *UnauthorizedError {
	return &UnauthorizedError{typeName: typeName, fieldName: fieldName}
}

// IsUnauthorized returns true if the error is an UnauthorizedError.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	var e *UnauthorizedError
	return errors.As(err, &e) || errors.Is(err, ErrUnauthorized)
}
